package conversation

// Bot copy for the guided thumbnail conversation
const (
	MsgGreeting = `👋 Let's create your YouTube thumbnail! I'll walk you through a few quick steps: images, style, and a final description.`

	MsgAskImages = `First, would you like to add images? A background, a major subject, and up to five icons are all optional, but descriptions make them more impactful.`

	MsgCollectImages = `Great! Upload your images below. Add a description to each one; icon images require a description before we move on.`

	MsgChooseStyle = `Now let's choose your theme color and category. Both are required to create the perfect thumbnail style.`

	MsgConfirmation = `Here's what we have so far: theme color %s, category %s. Ready to continue?`

	MsgAskDescription = `Perfect! Now add a final description for your thumbnail. This defines the overall message and must be between 10 and 500 characters.`

	MsgWorkingGenerate = `🎨 Generating your thumbnail... this can take a moment.`

	MsgWorkingFollowUp = `🎨 Revising your thumbnail...`

	MsgResultReady = `Here's your thumbnail! You can download it, ask for a revision, or start over.`

	MsgGenerationFailed = `❌ Generation failed: %s. Please adjust your description and try again.`

	MsgFollowUpFailed = `❌ Revision failed: %s. Your current thumbnail is unchanged, so you can try again.`

	MsgValidationIntro = `⚠️ Before we continue, please fix the following:`

	PlaceholderDescription = `Describe your thumbnail's main message, tone, and purpose...`

	PlaceholderFollowUp = `Describe what you'd like to change about the thumbnail...`
)
