package realtime

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(eventID uuid.UUID) *Client {
	return &Client{
		ID:      uuid.New().String(),
		EventID: eventID,
		send:    make(chan WSMessage, 8),
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	eventID := uuid.New()

	c1 := newTestClient(eventID)
	c2 := newTestClient(eventID)
	hub.Register(c1)
	hub.Register(c2)
	assert.Equal(t, 2, hub.ViewerCount(eventID))

	hub.Unregister(c1)
	assert.Equal(t, 1, hub.ViewerCount(eventID))
	hub.Unregister(c2)
	assert.Equal(t, 0, hub.ViewerCount(eventID))
}

func TestHubBroadcastReachesOnlyRoom(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	eventA := uuid.New()
	eventB := uuid.New()

	inRoom := newTestClient(eventA)
	outside := newTestClient(eventB)
	hub.Register(inRoom)
	hub.Register(outside)

	hub.Broadcast(eventA, EventTicketCheckedIn, map[string]string{"qr": "abc"})

	select {
	case msg := <-inRoom.send:
		assert.Equal(t, EventTicketCheckedIn, msg.Event)
		var payload map[string]string
		require.NoError(t, json.Unmarshal(msg.Data, &payload))
		assert.Equal(t, "abc", payload["qr"])
	default:
		t.Fatal("expected a message in the event room")
	}

	select {
	case <-outside.send:
		t.Fatal("client in another room must not receive the message")
	default:
	}
}

func TestHubBroadcastSkipsFullBuffers(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	eventID := uuid.New()

	slow := &Client{ID: "slow", EventID: eventID, send: make(chan WSMessage)}
	hub.Register(slow)

	// Unbuffered channel with no reader: the broadcast must not block.
	done := make(chan struct{})
	go func() {
		hub.Broadcast(eventID, EventTicketIssued, map[string]int{"n": 1})
		close(done)
	}()
	<-done
}

func TestHubBroadcastDuringRegisterUnregister(t *testing.T) {
	// Scanners connect and drop while check-ins stream; run under -race.
	hub := NewHub(zap.NewNop(), nil, nil)
	eventID := uuid.New()
	hub.Register(newTestClient(eventID))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			hub.Broadcast(eventID, EventTicketCheckedIn, map[string]int{"n": i})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			c := newTestClient(eventID)
			hub.Register(c)
			hub.Unregister(c)
		}
	}()
	wg.Wait()
}

// loopbackFeed routes published messages straight to the subscribed handler,
// matching Redis pub/sub delivering a message back to its publisher.
type loopbackFeed struct {
	mu       sync.Mutex
	handlers map[uuid.UUID]func(event string, payload []byte)
}

func newLoopbackFeed() *loopbackFeed {
	return &loopbackFeed{handlers: make(map[uuid.UUID]func(string, []byte))}
}

func (l *loopbackFeed) PublishEventFeed(eventID uuid.UUID, event string, payload []byte) error {
	l.mu.Lock()
	handler := l.handlers[eventID]
	l.mu.Unlock()
	if handler != nil {
		handler(event, payload)
	}
	return nil
}

func (l *loopbackFeed) SubscribeEventFeed(eventID uuid.UUID, handler func(event string, payload []byte)) (func(), error) {
	l.mu.Lock()
	l.handlers[eventID] = handler
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		delete(l.handlers, eventID)
		l.mu.Unlock()
	}, nil
}

func TestBroadcastAndPublishDeliversExactlyOnce(t *testing.T) {
	feed := newLoopbackFeed()
	hub := NewHub(zap.NewNop(), feed, feed)
	eventID := uuid.New()
	c := newTestClient(eventID)
	hub.Register(c)

	hub.BroadcastAndPublish(eventID, EventTicketCheckedIn, map[string]string{"qr": "abc"})

	require.Len(t, c.send, 1, "one check-in must reach the client a single time")
	msg := <-c.send
	assert.Equal(t, EventTicketCheckedIn, msg.Event)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(msg.Data, &payload))
	assert.Equal(t, "abc", payload["qr"])
}

type failingPublisher struct{}

func (failingPublisher) PublishEventFeed(uuid.UUID, string, []byte) error {
	return errors.New("redis down")
}

func TestBroadcastAndPublishFallsBackWhenPublishFails(t *testing.T) {
	hub := NewHub(zap.NewNop(), failingPublisher{}, nil)
	eventID := uuid.New()
	c := newTestClient(eventID)
	hub.Register(c)

	hub.BroadcastAndPublish(eventID, EventTicketIssued, map[string]string{"id": "t1"})

	require.Len(t, c.send, 1)
	assert.Equal(t, EventTicketIssued, (<-c.send).Event)
}
