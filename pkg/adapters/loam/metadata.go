package loam

// PromptMetadata is the frontmatter of a prompt document.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
type PromptMetadata struct {
	// Name overrides the document path as the prompt name.
	Name        string             `json:"name" mapstructure:"name"`
	Description string             `json:"description" mapstructure:"description"`
	Arguments   []ArgumentMetadata `json:"arguments" mapstructure:"arguments"`
	Tags        []string           `json:"tags" mapstructure:"tags"`
}

type ArgumentMetadata struct {
	Name        string `json:"name" mapstructure:"name"`
	Description string `json:"description" mapstructure:"description"`
	Required    bool   `json:"required" mapstructure:"required"`
}
