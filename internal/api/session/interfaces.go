package session

import (
	"context"

	"github.com/drumil32/thumbnail-maker-backend/internal/conversation"
	"github.com/drumil32/thumbnail-maker-backend/internal/entity"
)

// ChatUsecase defines the session controller operations consumed by the
// HTTP handlers
type ChatUsecase interface {
	StartSession(ctx context.Context) (*entity.SessionSnapshot, error)
	GetSession(ctx context.Context, id string) (*entity.SessionSnapshot, error)
	SelectOption(ctx context.Context, id, optionID string) (*entity.SessionSnapshot, error)
	UpdateImages(ctx context.Context, id, slot string, items []entity.ImageItem) (*entity.SessionSnapshot, error)
	ImagesDone(ctx context.Context, id string) (*entity.SessionSnapshot, error)
	UpdateStyle(ctx context.Context, id, themeColor, category string) (*entity.SessionSnapshot, error)
	StyleDone(ctx context.Context, id string) (*entity.SessionSnapshot, error)
	Confirm(ctx context.Context, id string) (*entity.SessionSnapshot, error)
	RequestEdit(ctx context.Context, id string) (*entity.SessionSnapshot, error)
	SubmitDescription(ctx context.Context, id, text string) (*entity.SessionSnapshot, []conversation.Effect, error)
	OpenFollowUp(ctx context.Context, id string) (*entity.SessionSnapshot, error)
	SubmitFollowUp(ctx context.Context, id, text string) (*entity.SessionSnapshot, []conversation.Effect, error)
	ExecuteEffects(ctx context.Context, id string, effects []conversation.Effect)
	DownloadResult(ctx context.Context, id string) ([]byte, string, error)
	Reset(ctx context.Context, id string) (*entity.SessionSnapshot, error)
	EndSession(ctx context.Context, id string) error
}
