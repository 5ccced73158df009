// Package store persists finished editorial sessions.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/techronicle/newsroom/internal/transcript"
)

// ErrNotFound is returned when a session id is unknown.
var ErrNotFound = errors.New("store: session not found")

// SessionHead is the listing view of an archived session.
type SessionHead struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Turns      int       `json:"turns"`
	Selected   int       `json:"selected"`
	Forced     bool      `json:"forced"`
}

// Store archives session summaries and serves them back.
type Store interface {
	SaveSession(ctx context.Context, summary transcript.Summary) error
	GetSession(ctx context.Context, id string) (transcript.Summary, error)
	ListSessions(ctx context.Context, limit int) ([]SessionHead, error)
	Close()
}

func headOf(s transcript.Summary) SessionHead {
	return SessionHead{
		ID:         s.SessionID,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
		Turns:      len(s.Turns),
		Selected:   len(s.SelectedItems),
		Forced:     s.Forced,
	}
}
