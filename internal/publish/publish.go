// Package publish pushes a compiled profile README to GitHub and records
// the outcome.
package publish

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/readmepro/internal/profile"
	"github.com/kalambet/readmepro/internal/readme"
	"github.com/kalambet/readmepro/internal/storage"
)

var (
	// ErrNoUsername is returned when the profile has no GitHub username.
	ErrNoUsername = errors.New("profile has no GitHub username")
	// ErrNoToken is returned when no GitHub token is configured.
	ErrNoToken = errors.New("no GitHub token configured")
	// ErrPublishFailed is returned when GitHub rejected the write.
	ErrPublishFailed = errors.New("publishing README failed")
)

// Pusher writes README content to a user's profile repository.
type Pusher interface {
	CreateOrUpdateReadme(ctx context.Context, username, content, token string) bool
}

// History records publish attempts.
type History interface {
	SavePublish(p storage.Publish) error
}

// Recorder receives compile and publish measurements.
type Recorder interface {
	ObserveCompile(d time.Duration)
	IncPublish(result string)
}

// Service compiles a snapshot and publishes it.
type Service struct {
	pusher   Pusher
	history  History
	recorder Recorder
	logger   *slog.Logger
}

// NewService creates a publisher. history and recorder may be nil.
func NewService(pusher Pusher, history History, recorder Recorder) *Service {
	return &Service{
		pusher:   pusher,
		history:  history,
		recorder: recorder,
		logger:   slog.Default(),
	}
}

// Publish compiles s and writes it to {username}/{username}/README.md with
// token. Every attempt that reaches GitHub is recorded in the history.
func (svc *Service) Publish(ctx context.Context, s profile.State, token string) (storage.Publish, error) {
	if s.Username == "" {
		return storage.Publish{}, ErrNoUsername
	}
	if token == "" {
		return storage.Publish{}, ErrNoToken
	}

	content := Compile(s, svc.recorder)
	sum := sha256.Sum256([]byte(content))
	rec := storage.Publish{
		ID:            uuid.New().String(),
		CreatedAt:     time.Now().UTC(),
		Username:      s.Username,
		Status:        storage.PublishSucceeded,
		ContentSHA256: hex.EncodeToString(sum[:]),
		ContentBytes:  len(content),
	}

	var err error
	if !svc.pusher.CreateOrUpdateReadme(ctx, s.Username, content, token) {
		rec.Status = storage.PublishFailed
		rec.Error = ErrPublishFailed.Error()
		err = ErrPublishFailed
	}
	if svc.recorder != nil {
		svc.recorder.IncPublish(rec.Status)
	}

	if svc.history != nil {
		if herr := svc.history.SavePublish(rec); herr != nil {
			svc.logger.Warn("recording publish failed", "username", rec.Username, "error", herr)
		}
	}
	svc.logger.Info("readme published", "username", rec.Username, "status", rec.Status, "bytes", rec.ContentBytes)
	return rec, err
}

// Compile renders s and reports the duration to r when r is non-nil.
func Compile(s profile.State, r Recorder) string {
	start := time.Now()
	out := readme.Compile(s)
	if r != nil {
		r.ObserveCompile(time.Since(start))
	}
	return out
}
