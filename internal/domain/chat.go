package domain

// Chat roles as the Gemini API spells them.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ChatMessage is the provider-agnostic chat message shape used by the
// orchestrator and the LLM integration.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
