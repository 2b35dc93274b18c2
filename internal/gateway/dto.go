package gateway

import "github.com/voicenotify/voicenotify/internal/speech/engine"

// NotifyRequest is the request body for queueing a spoken notification.
type NotifyRequest struct {
	Message      string `json:"message"`
	VoiceEnabled *bool  `json:"voice_enabled,omitempty"` // nil means enabled
	VoiceID      string `json:"voice_id,omitempty"`
	Agent        string `json:"agent,omitempty"`
}

// StatusResponse is the standard success/error response shape.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// VoicesResponse lists the voices of the active backend.
type VoicesResponse struct {
	Backend string         `json:"backend"`
	Voices  []engine.Voice `json:"voices"`
}

// BackendsResponse reports probe results for every registered backend.
type BackendsResponse struct {
	Active   string          `json:"active"`
	Backends map[string]bool `json:"backends"`
}
