// Package line speaks the LINE Messaging API: the inbound webhook event
// shapes and the outbound reply endpoint.
package line

// WebhookRequest is the body of a webhook delivery from the LINE platform.
// Fields the bot does not use are left undeclared and ignored by the decoder.
type WebhookRequest struct {
	Events []Event `json:"events"`
}

// Event is one entry in a webhook delivery. Only type "message" with a text
// message is processed; everything else is counted and skipped.
type Event struct {
	Type       string  `json:"type"`
	Message    Message `json:"message"`
	Source     Source  `json:"source"`
	ReplyToken string  `json:"replyToken"`
}

// Message is the message payload of a message event.
type Message struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Source identifies where an event came from. Exactly which ID fields are
// populated depends on whether the bot was messaged in a group, a room, or
// a 1:1 chat.
type Source struct {
	Type    string `json:"type"`
	GroupID string `json:"groupId"`
	RoomID  string `json:"roomId"`
	UserID  string `json:"userId"`
}

// UnknownChatID is the sentinel chat ID used when an event's source carries
// no identifier at all. Distinct unidentifiable senders collapse into this
// one bucket; callers are expected to log when it is hit.
const UnknownChatID = "unknown"

// IsTextMessage reports whether the event is a text message the bot can
// process.
func (e Event) IsTextMessage() bool {
	return e.Type == "message" && e.Message.Type == "text"
}

// ChatID derives the conversation key for the event: the group ID if
// present, else the room ID, else the user ID, else UnknownChatID.
func (e Event) ChatID() string {
	switch {
	case e.Source.GroupID != "":
		return e.Source.GroupID
	case e.Source.RoomID != "":
		return e.Source.RoomID
	case e.Source.UserID != "":
		return e.Source.UserID
	default:
		return UnknownChatID
	}
}
