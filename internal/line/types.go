// internal/line/types.go
package line

// WebhookBody is the decoded body of one webhook delivery from the LINE
// platform: zero or more events.
type WebhookBody struct {
	Events []Event `json:"events"`
}

// Event is one messaging-platform event. ReplyToken is a single-use
// credential scoped to this event; it is required to send exactly one reply.
type Event struct {
	Type       string   `json:"type"`
	ReplyToken string   `json:"replyToken,omitempty"`
	Message    *Message `json:"message,omitempty"`
}

// Message is the message attached to a message-type event.
type Message struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// IsTextMessage reports whether the event is a text message carrying a
// reply token, i.e. something the dispatcher can act on. Everything else is
// silently dropped.
func (e Event) IsTextMessage() bool {
	return e.Type == "message" && e.ReplyToken != "" &&
		e.Message != nil && e.Message.Type == "text"
}
