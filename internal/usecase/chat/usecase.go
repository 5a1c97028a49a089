package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/drumil32/thumbnail-maker-backend/internal/conversation"
	"github.com/drumil32/thumbnail-maker-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Usecase is the session controller: the sole mutator of session
// aggregates. User events are routed through the state machine under a
// per-session lock; network effects returned by the machine are executed
// with ExecuteEffects, outside the lock.
type Usecase struct {
	store     SessionStore
	machine   *conversation.Machine
	generator GenerationConnector
	logger    *zap.Logger

	locks sync.Map // session ID -> *sync.Mutex
}

func NewUsecase(
	store SessionStore,
	machine *conversation.Machine,
	generator GenerationConnector,
	logger *zap.Logger,
) *Usecase {
	return &Usecase{
		store:     store,
		machine:   machine,
		generator: generator,
		logger:    logger,
	}
}

// StartSession creates a new conversation seeded with the greeting
func (uc *Usecase) StartSession(ctx context.Context) (*entity.SessionSnapshot, error) {
	session := conversation.NewSession()

	if err := uc.store.Set(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	ctxzap.Info(ctx, "session started", zap.String("session_id", session.ID))

	return toSnapshot(session), nil
}

// GetSession returns the current read-only snapshot
func (uc *Usecase) GetSession(ctx context.Context, id string) (*entity.SessionSnapshot, error) {
	snapshot, _, err := uc.apply(ctx, id, nil)
	return snapshot, err
}

// SelectOption applies an option click
func (uc *Usecase) SelectOption(ctx context.Context, id, optionID string) (*entity.SessionSnapshot, error) {
	snapshot, _, err := uc.apply(ctx, id, &conversation.Event{
		Kind:     conversation.EventOptionSelected,
		OptionID: optionID,
	})
	return snapshot, err
}

// UpdateImages replaces the contents of one image slot
func (uc *Usecase) UpdateImages(ctx context.Context, id, slot string, items []entity.ImageItem) (*entity.SessionSnapshot, error) {
	snapshot, _, err := uc.apply(ctx, id, &conversation.Event{
		Kind:  conversation.EventImagesUpdated,
		Slot:  slot,
		Items: items,
	})
	return snapshot, err
}

// ImagesDone tries to advance out of the image-collection step
func (uc *Usecase) ImagesDone(ctx context.Context, id string) (*entity.SessionSnapshot, error) {
	snapshot, _, err := uc.apply(ctx, id, &conversation.Event{Kind: conversation.EventImagesDone})
	return snapshot, err
}

// UpdateStyle records a theme color and/or category selection
func (uc *Usecase) UpdateStyle(ctx context.Context, id, themeColor, category string) (*entity.SessionSnapshot, error) {
	snapshot, _, err := uc.apply(ctx, id, &conversation.Event{
		Kind:       conversation.EventStyleUpdated,
		ThemeColor: themeColor,
		Category:   category,
	})
	return snapshot, err
}

// StyleDone tries to advance out of the style step
func (uc *Usecase) StyleDone(ctx context.Context, id string) (*entity.SessionSnapshot, error) {
	snapshot, _, err := uc.apply(ctx, id, &conversation.Event{Kind: conversation.EventStyleDone})
	return snapshot, err
}

// Confirm accepts the collected style and moves on to the description
func (uc *Usecase) Confirm(ctx context.Context, id string) (*entity.SessionSnapshot, error) {
	return uc.SelectOption(ctx, id, conversation.OptionConfirm)
}

// RequestEdit returns from confirmation to the style step
func (uc *Usecase) RequestEdit(ctx context.Context, id string) (*entity.SessionSnapshot, error) {
	return uc.SelectOption(ctx, id, conversation.OptionEditStyle)
}

// SubmitDescription submits the final description. On success the
// returned effects carry the pending generation call; the caller runs
// them with ExecuteEffects (synchronously or in the background).
func (uc *Usecase) SubmitDescription(ctx context.Context, id, text string) (*entity.SessionSnapshot, []conversation.Effect, error) {
	return uc.apply(ctx, id, &conversation.Event{
		Kind: conversation.EventTextSubmitted,
		Text: text,
	})
}

// OpenFollowUp opens the follow-up panel on the result step
func (uc *Usecase) OpenFollowUp(ctx context.Context, id string) (*entity.SessionSnapshot, error) {
	snapshot, _, err := uc.apply(ctx, id, &conversation.Event{Kind: conversation.EventFollowUpOpened})
	return snapshot, err
}

// SubmitFollowUp submits a revision instruction against the current
// result. Effects are executed by the caller, like SubmitDescription.
func (uc *Usecase) SubmitFollowUp(ctx context.Context, id, text string) (*entity.SessionSnapshot, []conversation.Effect, error) {
	return uc.apply(ctx, id, &conversation.Event{
		Kind: conversation.EventTextSubmitted,
		Text: text,
	})
}

// Reset starts the conversation over, clearing everything
func (uc *Usecase) Reset(ctx context.Context, id string) (*entity.SessionSnapshot, error) {
	snapshot, _, err := uc.apply(ctx, id, &conversation.Event{Kind: conversation.EventReset})
	return snapshot, err
}

// EndSession discards a conversation entirely. Unlike Reset, the session
// ID becomes invalid.
func (uc *Usecase) EndSession(ctx context.Context, id string) error {
	mu := uc.sessionLock(id)
	mu.Lock()
	defer mu.Unlock()

	if _, err := uc.store.Get(ctx, id); err != nil {
		return err
	}
	if err := uc.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	uc.locks.Delete(id)

	ctxzap.Info(ctx, "session ended", zap.String("session_id", id))
	return nil
}

// DownloadResult fetches the generated image bytes for streaming
func (uc *Usecase) DownloadResult(ctx context.Context, id string) ([]byte, string, error) {
	mu := uc.sessionLock(id)
	mu.Lock()
	session, err := uc.store.Get(ctx, id)
	if err != nil {
		mu.Unlock()
		return nil, "", err
	}

	if session.Result == nil || session.Result.URL == "" {
		mu.Unlock()
		return nil, "", entity.ErrNoGeneratedResult
	}
	url := session.Result.URL
	mu.Unlock()

	return uc.generator.Download(ctx, url)
}

// ExecuteEffects runs the network calls described by the machine and
// feeds each settled result back in as a new transition. Exactly one
// settling message is appended per call.
func (uc *Usecase) ExecuteEffects(ctx context.Context, id string, effects []conversation.Effect) {
	for _, effect := range effects {
		var (
			result   *entity.GenerationResult
			followUp bool
		)

		switch effect.Kind {
		case conversation.EffectGenerate:
			result = uc.generator.Generate(ctx, &effect.Fields)
		case conversation.EffectFollowUp:
			result = uc.generator.FollowUp(ctx, effect.Instruction, effect.ImageURL)
			followUp = true
		default:
			ctxzap.Error(ctx, "unknown effect kind", zap.String("kind", string(effect.Kind)))
			continue
		}

		if _, _, err := uc.apply(ctx, id, &conversation.Event{
			Kind:     conversation.EventGenerationSettled,
			Result:   result,
			FollowUp: followUp,
			Seq:      effect.Seq,
		}); err != nil {
			// Session was reset or expired while the call was in flight;
			// the result has nowhere to land.
			ctxzap.Warn(ctx, "dropping settled generation result",
				zap.String("session_id", id),
				zap.Error(err),
			)
		}
	}
}

// apply locks the session, routes the event through the machine (nil
// event = snapshot only), stores the updated aggregate, and returns a
// snapshot taken under the lock
func (uc *Usecase) apply(ctx context.Context, id string, ev *conversation.Event) (*entity.SessionSnapshot, []conversation.Effect, error) {
	mu := uc.sessionLock(id)
	mu.Lock()
	defer mu.Unlock()

	session, err := uc.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var effects []conversation.Effect
	if ev != nil {
		effects, err = uc.machine.Apply(session, *ev)
		if err != nil {
			return nil, nil, err
		}

		if err := uc.store.Set(ctx, session); err != nil {
			return nil, nil, fmt.Errorf("store session: %w", err)
		}
	}

	return toSnapshot(session), effects, nil
}

func (uc *Usecase) sessionLock(id string) *sync.Mutex {
	mu, _ := uc.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
