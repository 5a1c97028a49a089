package conversation

import (
	"time"

	"github.com/drumil32/thumbnail-maker-backend/internal/entity"
	"github.com/google/uuid"
)

// Session is the owned aggregate for one conversation: field set, timeline
// and current step. It is mutated only through Machine.Apply; everything
// else reads snapshots.
type Session struct {
	ID           string
	Step         Step
	Fields       entity.FieldSet
	Timeline     []entity.Message
	Result       *entity.GenerationResult
	FollowUpOpen bool
	Pending      bool
	// CallSeq numbers generation calls. A settle only lands when it
	// carries the current number, so a call issued before a reset can
	// never be mistaken for a later one.
	CallSeq   uint64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession creates a fresh session with the initial greeting seeded
func NewSession() *Session {
	now := time.Now()
	s := &Session{
		ID:        uuid.New().String(),
		Step:      StepAskImages,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.seedGreeting()
	return s
}

// seedGreeting appends the opening bot turns of a conversation
func (s *Session) seedGreeting() {
	s.appendBot(MsgGreeting, entity.KindText, nil)
	s.appendBot(MsgAskImages, entity.KindOptions, &entity.MessagePayload{
		Options: []entity.Option{
			{ID: OptionAddImages, Label: "Add images"},
			{ID: OptionSkipImages, Label: "Skip for now"},
		},
	})
}

func (s *Session) appendBot(content string, kind entity.MessageKind, payload *entity.MessagePayload) {
	s.append(entity.SenderBot, content, kind, payload)
}

func (s *Session) appendUser(content string) {
	s.append(entity.SenderUser, content, entity.KindText, nil)
}

func (s *Session) append(sender entity.Sender, content string, kind entity.MessageKind, payload *entity.MessagePayload) {
	s.Timeline = append(s.Timeline, entity.Message{
		ID:        uuid.New().String(),
		Sender:    sender,
		Content:   content,
		Kind:      kind,
		Payload:   payload,
		CreatedAt: time.Now(),
	})
	s.UpdatedAt = time.Now()
}

// Messages returns a read-only copy of the timeline
func (s *Session) Messages() []entity.Message {
	out := make([]entity.Message, len(s.Timeline))
	copy(out, s.Timeline)
	return out
}

// InputEnabled reports whether free-text input is currently accepted
func (s *Session) InputEnabled() bool {
	if s.Pending {
		return false
	}
	switch s.Step {
	case StepFinalDescription:
		return true
	case StepResult:
		return s.FollowUpOpen
	default:
		return false
	}
}

// Placeholder returns the input affordance text for the current step
func (s *Session) Placeholder() string {
	if !s.InputEnabled() {
		return ""
	}
	if s.Step == StepResult {
		return PlaceholderFollowUp
	}
	return PlaceholderDescription
}

// styleInputsPayload builds the style widget payload with the fixed
// option catalogs
func styleInputsPayload() *entity.MessagePayload {
	return &entity.MessagePayload{
		Style: &entity.StyleInputsConfig{
			Colors:     entity.PresetColors,
			Gradients:  entity.PresetGradients,
			Categories: entity.Categories,
		},
	}
}

// imageSlotsPayload builds the image-collection widget payload
func imageSlotsPayload(maxIcons int) *entity.MessagePayload {
	return &entity.MessagePayload{
		ImageSlots: []entity.ImageSlotInfo{
			{Name: SlotBackground, Label: "Background Image", MaxCount: 1},
			{Name: SlotMajor, Label: "Major Image", MaxCount: 1},
			{Name: SlotIcons, Label: "Image Icons", MaxCount: maxIcons, RequiresDescription: true},
		},
	}
}
