package llm

// Role tags one turn of the prompt.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single prompt turn.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest carries one answer-generation call. Model overrides the
// provider's configured default when set; MaxTokens and Temperature are
// passed through to the API.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// CompletionResponse is the generated text plus the token usage the API
// reported for the call.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
}
