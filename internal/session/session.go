// Package session holds per-browser form state across requests.
package session

import (
	"time"

	"github.com/google/uuid"
)

// Session is the explicit state the two stages operate on. UserPrompt is the
// raw idea text; EnhancedPrompt is set only by a successful enhancement and
// cleared by reset. Generation reads EnhancedPrompt and never writes it.
type Session struct {
	ID             string    `json:"id"`
	UserPrompt     string    `json:"userPrompt"`
	EnhancedPrompt string    `json:"enhancedPrompt"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// New returns a fresh empty session.
func New() Session {
	now := time.Now().UTC()
	return Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Store persists sessions between requests.
type Store interface {
	Get(id string) (Session, bool, error)
	Save(Session) error
	Delete(id string) error
}
