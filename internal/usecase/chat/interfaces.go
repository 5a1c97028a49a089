package chat

import (
	"context"

	"github.com/drumil32/thumbnail-maker-backend/internal/conversation"
	"github.com/drumil32/thumbnail-maker-backend/internal/entity"
)

// GenerationConnector is the boundary to the remote image-generation
// service. Implementations fold service failures into the result instead
// of returning an error.
type GenerationConnector interface {
	Generate(ctx context.Context, fields *entity.FieldSet) *entity.GenerationResult
	FollowUp(ctx context.Context, instruction, currentURL string) *entity.GenerationResult
	Download(ctx context.Context, url string) ([]byte, string, error)
}

// SessionStore holds live sessions for the duration of a conversation
type SessionStore interface {
	Get(ctx context.Context, id string) (*conversation.Session, error)
	Set(ctx context.Context, session *conversation.Session) error
	Delete(ctx context.Context, id string) error
}
