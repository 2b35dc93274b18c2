package personas

// Persona maps an agent identifier to a voice and an optional spoken-text
// template.
type Persona struct {
	Name        string `yaml:"name"        json:"name"`
	Description string `yaml:"description" json:"description,omitempty"`
	VoiceID     string `yaml:"voice_id"    json:"voice_id,omitempty"`

	// Template renders the final spoken text. It receives a SpeechContext;
	// when empty the message is spoken unchanged.
	Template string `yaml:"template" json:"template,omitempty"`
}

// SpeechContext is the data available in persona template expressions.
type SpeechContext struct {
	Agent   string
	Message string
}
