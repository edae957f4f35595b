package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePosterFileType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		filename    string
		ok          bool
	}{
		{"jpeg by content type", "image/jpeg", "poster.bin", true},
		{"png by extension", "", "poster.png", true},
		{"webp by extension", "application/octet-stream", "poster.webp", true},
		{"uppercase extension", "", "POSTER.JPG", true},
		{"pdf rejected", "application/pdf", "poster.pdf", false},
		{"svg rejected", "image/svg+xml", "poster.svg", false},
		{"no hints", "", "poster", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ok, ValidatePosterFileType(tt.contentType, tt.filename))
		})
	}
}

func TestPosterKey(t *testing.T) {
	key := PosterKey("ev-123", "banner.png")
	assert.Equal(t, "posters/ev-123/banner.png", key)

	// Path traversal in the filename is stripped.
	key = PosterKey("ev-123", "../../etc/passwd")
	assert.Equal(t, "posters/ev-123/passwd", key)
}
