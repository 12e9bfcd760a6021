package domain

// Role identifies the author of a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message is a single entry of the conversation log.
// The log is sent to backends as-is, so the json tags match the common wire shape.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Vars are the named arguments used to render a template.
type Vars map[string]any

// Metadata describes the prompt that produced a turn.
// Executors may use it for diagnostics; it never changes how a turn is dispatched.
type Metadata struct {
	PromptName string         `json:"prompt_name,omitempty"`
	Template   string         `json:"template,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// Argument documents one template variable.
type Argument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// PromptInfo describes a prompt for catalogues such as the MCP prompt list.
type PromptInfo struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Arguments   []Argument `json:"arguments,omitempty"`
}
