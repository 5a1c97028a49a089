package conversation

import (
	"fmt"
	"strings"

	"github.com/drumil32/thumbnail-maker-backend/internal/entity"
	"github.com/drumil32/thumbnail-maker-backend/internal/pkg/validator"
)

// Machine applies events to a session and produces side-effect
// descriptions. Transitions never run speculatively: a step only advances
// once its gating validation passes, and every network effect is preceded
// by a synchronously appended "working" bot message.
type Machine struct {
	validator *validator.Validator
	maxIcons  int
}

type transitionFunc func(m *Machine, s *Session, ev Event) ([]Effect, error)

// dispatch maps event kinds to transition functions
var dispatch = map[EventKind]transitionFunc{
	EventOptionSelected:    (*Machine).onOptionSelected,
	EventImagesUpdated:     (*Machine).onImagesUpdated,
	EventImagesDone:        (*Machine).onImagesDone,
	EventStyleUpdated:      (*Machine).onStyleUpdated,
	EventStyleDone:         (*Machine).onStyleDone,
	EventTextSubmitted:     (*Machine).onTextSubmitted,
	EventFollowUpOpened:    (*Machine).onFollowUpOpened,
	EventGenerationSettled: (*Machine).onGenerationSettled,
	EventReset:             (*Machine).onReset,
}

func NewMachine(v *validator.Validator, maxIcons int) *Machine {
	return &Machine{
		validator: v,
		maxIcons:  maxIcons,
	}
}

// Apply routes an event through the dispatch table, mutating the session
// and returning the effects the driver must execute
func (m *Machine) Apply(s *Session, ev Event) ([]Effect, error) {
	fn, ok := dispatch[ev.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown event kind %q", entity.ErrInvalidEvent, ev.Kind)
	}
	return fn(m, s, ev)
}

func (m *Machine) onOptionSelected(s *Session, ev Event) ([]Effect, error) {
	switch s.Step {
	case StepAskImages:
		switch ev.OptionID {
		case OptionAddImages:
			s.appendUser("Add images")
			s.Step = StepCollectImages
			s.appendBot(MsgCollectImages, entity.KindImageCollection, imageSlotsPayload(m.maxIcons))
			return nil, nil
		case OptionSkipImages:
			s.appendUser("Skip for now")
			return m.enterStyleStep(s), nil
		}
		return nil, fmt.Errorf("%w: %q", entity.ErrUnknownOption, ev.OptionID)

	case StepConfirmation:
		switch ev.OptionID {
		case OptionConfirm:
			s.appendUser("Looks good")
			s.Step = StepFinalDescription
			s.appendBot(MsgAskDescription, entity.KindText, nil)
			return nil, nil
		case OptionEditStyle:
			s.appendUser("Change the style")
			return m.enterStyleStep(s), nil
		}
		return nil, fmt.Errorf("%w: %q", entity.ErrUnknownOption, ev.OptionID)
	}

	return nil, fmt.Errorf("%w: option click in step %q", entity.ErrInvalidEvent, s.Step)
}

func (m *Machine) enterStyleStep(s *Session) []Effect {
	s.Step = StepCollectInputs
	s.appendBot(MsgChooseStyle, entity.KindStyleInputs, styleInputsPayload())
	return nil
}

func (m *Machine) onImagesUpdated(s *Session, ev Event) ([]Effect, error) {
	if s.Step != StepCollectImages {
		return nil, fmt.Errorf("%w: image update in step %q", entity.ErrInvalidEvent, s.Step)
	}

	switch ev.Slot {
	case SlotBackground:
		item := firstPresent(ev.Items)
		s.Fields.BgImg = item
	case SlotMajor:
		item := firstPresent(ev.Items)
		s.Fields.MajorImg = item
	case SlotIcons:
		icons := make([]entity.ImageItem, 0, len(ev.Items))
		for _, it := range ev.Items {
			if it.Present() {
				icons = append(icons, it)
			}
		}
		s.Fields.ImgIcons = icons
	default:
		return nil, fmt.Errorf("%w: %q", entity.ErrUnknownImageSlot, ev.Slot)
	}

	return nil, nil
}

func firstPresent(items []entity.ImageItem) *entity.ImageItem {
	for i := range items {
		if items[i].Present() {
			it := items[i]
			return &it
		}
	}
	return nil
}

func (m *Machine) onImagesDone(s *Session, ev Event) ([]Effect, error) {
	if s.Step != StepCollectImages {
		return nil, fmt.Errorf("%w: images-done in step %q", entity.ErrInvalidEvent, s.Step)
	}

	if violations := m.validator.Images(&s.Fields); len(violations) > 0 {
		s.appendBot(combineViolations(violations), entity.KindText, nil)
		return nil, nil
	}

	s.appendUser("Done with images")
	return m.enterStyleStep(s), nil
}

func (m *Machine) onStyleUpdated(s *Session, ev Event) ([]Effect, error) {
	if s.Step != StepCollectInputs {
		return nil, fmt.Errorf("%w: style update in step %q", entity.ErrInvalidEvent, s.Step)
	}

	if ev.ThemeColor != "" {
		s.Fields.ThemeColor = ev.ThemeColor
	}
	if ev.Category != "" {
		s.Fields.Category = ev.Category
	}

	return nil, nil
}

func (m *Machine) onStyleDone(s *Session, ev Event) ([]Effect, error) {
	if s.Step != StepCollectInputs {
		return nil, fmt.Errorf("%w: style-done in step %q", entity.ErrInvalidEvent, s.Step)
	}

	if violations := m.validator.Style(&s.Fields); len(violations) > 0 {
		s.appendBot(combineViolations(violations), entity.KindText, nil)
		return nil, nil
	}

	s.appendUser("Style is set")
	s.Step = StepConfirmation
	s.appendBot(
		fmt.Sprintf(MsgConfirmation, s.Fields.ThemeColor, categoryLabel(s.Fields.Category)),
		entity.KindOptions,
		&entity.MessagePayload{
			Options: []entity.Option{
				{ID: OptionConfirm, Label: "Confirm"},
				{ID: OptionEditStyle, Label: "Edit style"},
			},
		},
	)
	return nil, nil
}

func (m *Machine) onTextSubmitted(s *Session, ev Event) ([]Effect, error) {
	if s.Pending {
		return nil, entity.ErrGenerationPending
	}

	switch {
	case s.Step == StepFinalDescription:
		return m.submitDescription(s, ev.Text)
	case s.Step == StepResult && s.FollowUpOpen:
		return m.submitFollowUp(s, ev.Text)
	case s.Step == StepResult:
		return nil, entity.ErrFollowUpNotOpened
	}

	return nil, fmt.Errorf("%w: step %q", entity.ErrInputNotAccepted, s.Step)
}

func (m *Machine) submitDescription(s *Session, text string) ([]Effect, error) {
	if violations := m.validator.Description(text); len(violations) > 0 {
		s.appendBot(combineViolations(violations), entity.KindText, nil)
		return nil, nil
	}

	s.Fields.FinalDescription = strings.TrimSpace(text)
	s.appendUser(s.Fields.FinalDescription)

	s.Step = StepGenerating
	s.Pending = true
	s.CallSeq++
	s.appendBot(MsgWorkingGenerate, entity.KindText, nil)

	return []Effect{{Kind: EffectGenerate, Seq: s.CallSeq, Fields: s.Fields}}, nil
}

func (m *Machine) submitFollowUp(s *Session, text string) ([]Effect, error) {
	if s.Result == nil || s.Result.URL == "" {
		return nil, entity.ErrNoGeneratedResult
	}

	if violations := m.validator.FollowUp(text); len(violations) > 0 {
		s.appendBot(combineViolations(violations), entity.KindText, nil)
		return nil, nil
	}

	instruction := strings.TrimSpace(text)
	s.appendUser(instruction)

	s.Pending = true
	s.CallSeq++
	s.appendBot(MsgWorkingFollowUp, entity.KindText, nil)

	return []Effect{{
		Kind:        EffectFollowUp,
		Seq:         s.CallSeq,
		Instruction: instruction,
		ImageURL:    s.Result.URL,
	}}, nil
}

func (m *Machine) onFollowUpOpened(s *Session, ev Event) ([]Effect, error) {
	if s.Step != StepResult {
		return nil, fmt.Errorf("%w: follow-up in step %q", entity.ErrInvalidEvent, s.Step)
	}
	if s.Result == nil || s.Result.URL == "" {
		return nil, entity.ErrNoGeneratedResult
	}

	s.FollowUpOpen = true
	return nil, nil
}

func (m *Machine) onGenerationSettled(s *Session, ev Event) ([]Effect, error) {
	if !s.Pending {
		// Stale settle, e.g. after a reset. Dropped by the driver.
		return nil, fmt.Errorf("%w: no call in flight", entity.ErrInvalidEvent)
	}
	if ev.Seq != s.CallSeq {
		// Result of a call superseded by a reset and a fresh submission
		return nil, fmt.Errorf("%w: result belongs to call %d, current call is %d",
			entity.ErrInvalidEvent, ev.Seq, s.CallSeq)
	}
	if ev.Result == nil {
		return nil, fmt.Errorf("%w: settle without result", entity.ErrInvalidEvent)
	}

	s.Pending = false

	if ev.FollowUp {
		return m.settleFollowUp(s, ev.Result)
	}
	return m.settleGenerate(s, ev.Result)
}

func (m *Machine) settleGenerate(s *Session, res *entity.GenerationResult) ([]Effect, error) {
	if !res.Success {
		// The submitted description is retained for editing.
		s.Step = StepFinalDescription
		s.appendBot(fmt.Sprintf(MsgGenerationFailed, failureReason(res)), entity.KindText, nil)
		return nil, nil
	}

	s.Step = StepResult
	s.Result = res
	s.appendBot(resultContent(res), entity.KindResult, &entity.MessagePayload{ResultURL: res.URL})
	return nil, nil
}

func (m *Machine) settleFollowUp(s *Session, res *entity.GenerationResult) ([]Effect, error) {
	if !res.Success {
		s.appendBot(fmt.Sprintf(MsgFollowUpFailed, failureReason(res)), entity.KindText, nil)
		return nil, nil
	}

	s.Result = res
	s.FollowUpOpen = false
	s.appendBot(resultContent(res), entity.KindResult, &entity.MessagePayload{ResultURL: res.URL})
	return nil, nil
}

func (m *Machine) onReset(s *Session, ev Event) ([]Effect, error) {
	s.Step = StepAskImages
	s.Fields = entity.FieldSet{}
	s.Timeline = nil
	s.Result = nil
	s.FollowUpOpen = false
	s.Pending = false
	// CallSeq survives the reset so a settle from a call issued before
	// it can never match a call issued after
	s.seedGreeting()
	return nil, nil
}

func combineViolations(violations []string) string {
	return MsgValidationIntro + "\n• " + strings.Join(violations, "\n• ")
}

func resultContent(res *entity.GenerationResult) string {
	if res.Message != "" {
		return res.Message
	}
	return MsgResultReady
}

func failureReason(res *entity.GenerationResult) string {
	if res.Error != "" {
		return res.Error
	}
	if res.Message != "" {
		return res.Message
	}
	return "the service returned an error"
}

func categoryLabel(id string) string {
	for _, c := range entity.Categories {
		if c.ID == id {
			return c.Label
		}
	}
	return id
}
