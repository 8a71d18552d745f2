package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

const (
	PublishSucceeded = "success"
	PublishFailed    = "failed"
)

// Publish is one attempt to push a compiled README to GitHub.
type Publish struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Username      string    `json:"username"`
	Status        string    `json:"status"` // PublishSucceeded or PublishFailed
	ContentSHA256 string    `json:"content_sha256"`
	ContentBytes  int       `json:"content_bytes"`
	Error         string    `json:"error,omitempty"`
}
