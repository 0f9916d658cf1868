package questiongen

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxPriorQuestions is the maximum number of already-asked questions
	// included in the prompt for deduplication.
	MaxPriorQuestions int

	// MaxExamples is the maximum number of style examples included when a
	// request is style-aligned.
	MaxExamples int

	// Strict requires at least four options on every question.
	Strict bool

	// StructuredOutput sends the candidate schema to the provider so it
	// can use its native JSON mode. Extraction still runs on the result.
	StructuredOutput bool
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:         1024,
		Temperature:       0.7,
		MaxPriorQuestions: 10,
		MaxExamples:       3,
	}
}

// contract returns the validation contract for a request.
func (c Config) contract(req Request) Contract {
	if c.Strict || req.StyleAligned {
		return StrictContract()
	}
	return DefaultContract()
}
