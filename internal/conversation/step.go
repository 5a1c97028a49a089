package conversation

// Step is the enumerated conversation phase. It is the single source of
// truth for what input and actions are currently allowed.
type Step string

const (
	StepAskImages        Step = "ask-images"
	StepCollectImages    Step = "collect-images"
	StepCollectInputs    Step = "collect-inputs"
	StepConfirmation     Step = "confirmation"
	StepFinalDescription Step = "final-description"
	StepGenerating       Step = "generating"
	StepResult           Step = "result"
)
