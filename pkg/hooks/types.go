package hooks

import "github.com/voicenotify/voicenotify/pkg/events"

// HookConfig describes how to call an external hook endpoint.
type HookConfig struct {
	URL        string             `yaml:"url"         json:"url"`
	AuthType   string             `yaml:"auth_type"   json:"auth_type"`   // "bearer", "hmac", "none"
	AuthSecret string             `yaml:"auth_secret" json:"auth_secret"` // token or HMAC key
	TimeoutSec int                `yaml:"timeout_sec" json:"timeout_sec"`
	Headers    map[string]string  `yaml:"headers"     json:"headers,omitempty"`
	Events     []events.EventType `yaml:"events"      json:"events,omitempty"` // empty matches all
}

// Matches reports whether the hook subscribes to the given event type.
func (c HookConfig) Matches(t events.EventType) bool {
	if len(c.Events) == 0 {
		return true
	}
	for _, e := range c.Events {
		if e == t {
			return true
		}
	}
	return false
}

// HookRequest is the payload sent to a hook endpoint.
type HookRequest struct {
	NotificationID string `json:"notification_id"`
	Event          string `json:"event"`
	Agent          string `json:"agent,omitempty"`
	Backend        string `json:"backend,omitempty"`
	Message        string `json:"message,omitempty"`
	Error          string `json:"error,omitempty"`
	DurationMs     int64  `json:"duration_ms,omitempty"`
}

// HookResponse is the expected response from a hook endpoint. Endpoints may
// return an empty body; both fields are optional.
type HookResponse struct {
	Status string         `json:"status,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}
