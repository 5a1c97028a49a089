package repository

import (
	"context"

	"github.com/drumil32/thumbnail-maker-backend/internal/config"
	"github.com/drumil32/thumbnail-maker-backend/internal/conversation"
	"github.com/drumil32/thumbnail-maker-backend/internal/entity"
	gocache "github.com/patrickmn/go-cache"
)

// SessionMemory keeps live conversation sessions in an in-memory TTL
// cache. Conversations are deliberately not persisted across restarts.
type SessionMemory struct {
	cache *gocache.Cache
}

func NewSessionMemory(cfg config.SessionConfig) *SessionMemory {
	return &SessionMemory{
		cache: gocache.New(cfg.TTL, cfg.CleanupInterval),
	}
}

// Get retrieves a session by ID
func (r *SessionMemory) Get(ctx context.Context, id string) (*conversation.Session, error) {
	v, ok := r.cache.Get(id)
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	return v.(*conversation.Session), nil
}

// Set stores a session and refreshes its TTL
func (r *SessionMemory) Set(ctx context.Context, session *conversation.Session) error {
	r.cache.SetDefault(session.ID, session)
	return nil
}

// Delete removes a session
func (r *SessionMemory) Delete(ctx context.Context, id string) error {
	r.cache.Delete(id)
	return nil
}
