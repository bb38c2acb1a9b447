package port

// LLM represents a language model for text generation.
type LLM interface {
	// Generate generates text based on the prompt. Single-shot: no streaming,
	// no conversation state.
	Generate(prompt string) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}
