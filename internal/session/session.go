// Package session stores login sessions server-side. The browser only holds
// a signed reference to a session id; deleting the record logs the user out
// everywhere that id was presented.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/go-roster/pkg/crypto"
)

const idBytes = 32

var ErrNotFound = errors.New("session not found")

type Session struct {
	ID        string    `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type Store interface {
	Create(ctx context.Context, s *Session) error
	// Get returns ErrNotFound for missing and expired sessions.
	Get(ctx context.Context, id string) (*Session, error)
	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, id string) error
}

// New builds a session for userID with a fresh random id.
func New(userID uuid.UUID, ttl time.Duration) (*Session, error) {
	id, err := crypto.GenerateToken(idBytes)
	if err != nil {
		return nil, fmt.Errorf("generating session id: %w", err)
	}
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*DatabaseStore)(nil)
)
