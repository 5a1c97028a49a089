package chat

import (
	"github.com/drumil32/thumbnail-maker-backend/internal/conversation"
	"github.com/drumil32/thumbnail-maker-backend/internal/entity"
)

func toSnapshot(s *conversation.Session) *entity.SessionSnapshot {
	snap := &entity.SessionSnapshot{
		SessionID:    s.ID,
		Step:         string(s.Step),
		Messages:     s.Messages(),
		InputEnabled: s.InputEnabled(),
		Placeholder:  s.Placeholder(),
		CanSubmit:    s.InputEnabled(),
		Pending:      s.Pending,
		UpdatedAt:    s.UpdatedAt,
	}

	if s.Result != nil {
		snap.ResultURL = s.Result.URL
	}

	return snap
}
