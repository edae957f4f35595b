package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/emails"
	"github.com/gatherly/backend/internal/events"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/internal/tickets"
	"github.com/gatherly/backend/pkg/currency"
	"github.com/gatherly/backend/pkg/queue"
)

// EmailProcessor processes ticket confirmation email jobs: load the ticket
// and event, render the message, deliver it and record the attempt.
type EmailProcessor struct {
	ticketRepo *tickets.Repository
	eventRepo  *events.Repository
	emailRepo  *emails.Repository
	mailer     *emails.Mailer
	queue      *queue.Queue
	logger     *zap.Logger
}

// NewEmailProcessor creates a ticket email processor.
func NewEmailProcessor(
	ticketRepo *tickets.Repository,
	eventRepo *events.Repository,
	emailRepo *emails.Repository,
	mailer *emails.Mailer,
	q *queue.Queue,
	logger *zap.Logger,
) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{
		ticketRepo: ticketRepo,
		eventRepo:  eventRepo,
		emailRepo:  emailRepo,
		mailer:     mailer,
		queue:      q,
		logger:     logger,
	}
}

// Process executes one ticket email job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeTicketEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.TicketEmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	t, err := p.ticketRepo.GetByID(ctx, payload.TicketID)
	if err != nil {
		return fmt.Errorf("ticket not found: %s", payload.TicketID)
	}
	ev, err := p.eventRepo.GetByID(ctx, t.EventID)
	if err != nil {
		return fmt.Errorf("event not found: %s", t.EventID)
	}

	subject := fmt.Sprintf("Your ticket for %s", ev.Name)
	body := renderTicketEmail(t, ev, payload.RecipientName)

	log := &models.EmailLog{
		TicketID:  t.ID,
		Recipient: payload.RecipientEmail,
		Subject:   subject,
	}
	if err := p.emailRepo.Create(ctx, log); err != nil {
		return fmt.Errorf("create email log: %w", err)
	}

	if err := p.mailer.Send(payload.RecipientEmail, subject, body); err != nil {
		if markErr := p.emailRepo.MarkFailed(ctx, log.ID, err.Error()); markErr != nil {
			p.logger.Error("mark email failed", zap.Error(markErr), zap.String("log_id", log.ID.String()))
		}
		return fmt.Errorf("send email: %w", err)
	}
	if err := p.emailRepo.MarkSent(ctx, log.ID, time.Now()); err != nil {
		p.logger.Error("mark email sent", zap.Error(err), zap.String("log_id", log.ID.String()))
	}

	p.logger.Info("ticket email sent",
		zap.String("ticket_id", t.ID.String()),
		zap.String("recipient", payload.RecipientEmail))
	return nil
}

func renderTicketEmail(t *models.Ticket, ev *models.Event, name string) string {
	if name == "" {
		name = t.CustomerName
	}
	return fmt.Sprintf(`Hi %s,

Your ticket for %s is confirmed.

Event:    %s
When:     %s
Where:    %s
Type:     %s
Price:    %s

Show this code at the door:

    %s

See you there!
Gatherly
`, name, ev.Name, ev.Name,
		ev.DateTime.Format("Monday, 2 January 2006 15:04 MST"),
		ev.Location, t.TicketType,
		currency.FormatIDRDecimal(t.Price),
		t.QRCode)
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
