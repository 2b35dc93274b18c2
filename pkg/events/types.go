package events

import (
	"encoding/json"
	"time"
)

// EventType identifies the kind of event flowing through the system.
type EventType string

const (
	NotificationQueued EventType = "notification.queued"
	SpeechStarted      EventType = "speech.started"
	SpeechCompleted    EventType = "speech.completed"
	SpeechFailed       EventType = "speech.failed"
	HookResult         EventType = "hook.result"
	HookError          EventType = "hook.error"
	SystemError        EventType = "error"
)

// Envelope is the standard event wrapper published to the event bus.
type Envelope struct {
	ID             string            `json:"id"`
	Type           EventType         `json:"type"`
	Source         string            `json:"source"`
	NotificationID string            `json:"notification_id"`
	Timestamp      time.Time         `json:"timestamp"`
	Data           json.RawMessage   `json:"data"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// NotificationQueuedData is the payload for notification.queued events.
type NotificationQueuedData struct {
	Agent      string `json:"agent,omitempty"`
	Voice      string `json:"voice,omitempty"`
	Backend    string `json:"backend"`
	QueueDepth int    `json:"queue_depth"`
}

// SpeechStartedData is the payload for speech.started events.
type SpeechStartedData struct {
	Text    string `json:"text"`
	Voice   string `json:"voice,omitempty"`
	Backend string `json:"backend"`
}

// SpeechCompletedData is the payload for speech.completed events.
type SpeechCompletedData struct {
	Text       string `json:"text"`
	Voice      string `json:"voice,omitempty"`
	Backend    string `json:"backend"`
	DurationMs int64  `json:"duration_ms"`
}

// SpeechFailedData is the payload for speech.failed events.
type SpeechFailedData struct {
	Backend string `json:"backend"`
	Error   string `json:"error"`
}

// HookResultData is the payload for hook.result events.
type HookResultData struct {
	HookURL    string                 `json:"hook_url"`
	StatusCode int                    `json:"status_code"`
	Response   map[string]interface{} `json:"response,omitempty"`
}

// HookErrorData is the payload for hook.error events.
type HookErrorData struct {
	HookURL string `json:"hook_url"`
	Error   string `json:"error"`
}
