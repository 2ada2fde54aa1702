package domain

// Prompt is the text handed to the completion client: a fixed instruction
// segment and the user content assembled from the context blocks.
type Prompt struct {
	Instruction string
	Content     string
}

// String renders the prompt for offline previews.
func (p Prompt) String() string {
	if p.Content == "" {
		return p.Instruction
	}
	return p.Instruction + "\n\n" + p.Content
}

// CompletionResult is the successful answer from the completion endpoint.
type CompletionResult struct {
	Text             string
	Model            string
	RequestBody      []byte
	PromptTokens     int
	CompletionTokens int
}

// Outcome is everything the presenter needs after a successful pipeline run.
type Outcome struct {
	Prompt  Prompt
	Bundle  ContextBundle
	Result  *CompletionResult
	Offline bool
	// RequestBody is the outgoing request JSON, set only when DebugRequest is on.
	RequestBody []byte
}
