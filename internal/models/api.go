package models

type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	Retryable bool              `json:"retryable,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error       APIError `json:"error"`
	RawResponse string   `json:"rawResponse,omitempty"`
}

// WSMessage is one event on the live message feed.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

const (
	EventMessageCreated  = "message_created"
	EventMessagesCleared = "messages_cleared"
)
