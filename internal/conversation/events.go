package conversation

import "github.com/drumil32/thumbnail-maker-backend/internal/entity"

// EventKind identifies a user- or network-driven event fed into the machine
type EventKind string

const (
	EventOptionSelected    EventKind = "option-selected"
	EventImagesUpdated     EventKind = "images-updated"
	EventImagesDone        EventKind = "images-done"
	EventStyleUpdated      EventKind = "style-updated"
	EventStyleDone         EventKind = "style-done"
	EventTextSubmitted     EventKind = "text-submitted"
	EventFollowUpOpened    EventKind = "follow-up-opened"
	EventGenerationSettled EventKind = "generation-settled"
	EventReset             EventKind = "reset"
)

// Option identifiers used in options messages
const (
	OptionAddImages  = "add-images"
	OptionSkipImages = "skip-images"
	OptionConfirm    = "confirm"
	OptionEditStyle  = "edit-style"
)

// Image slot names, matching the generation request form field names
const (
	SlotBackground = "bgImg"
	SlotMajor      = "majorImg"
	SlotIcons      = "imgIcons"
)

// Event is a single discrete input to the state machine. Only the fields
// matching the kind are read.
type Event struct {
	Kind EventKind

	// option-selected
	OptionID string

	// images-updated
	Slot  string
	Items []entity.ImageItem

	// style-updated
	ThemeColor string
	Category   string

	// text-submitted
	Text string

	// generation-settled
	Result   *entity.GenerationResult
	FollowUp bool
	Seq      uint64
}

// EffectKind identifies a side effect the driver must execute after a
// transition. Effects are descriptions, never executed by the machine
// itself.
type EffectKind string

const (
	EffectGenerate EffectKind = "generate"
	EffectFollowUp EffectKind = "follow-up"
)

// Effect describes one pending network call. Seq identifies the call;
// the driver carries it back in the generation-settled event so the
// machine can tell a live settle from a superseded one.
type Effect struct {
	Kind EffectKind
	Seq  uint64

	// generate
	Fields entity.FieldSet

	// follow-up
	Instruction string
	ImageURL    string
}
