package types

// Envelope is the success body: every 2xx response carries its payload
// under "data".
type Envelope[T any] struct {
	Data T `json:"data"`
}

// Message is the payload of deletes and logout.
type Message struct {
	Message string `json:"message"`
}

// NewMessage wraps text in a Message envelope payload.
func NewMessage(text string) Message {
	return Message{Message: text}
}

// APIError mirrors pkg/errors metadata on the wire. Details is omitted when
// the code does not expose them.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
