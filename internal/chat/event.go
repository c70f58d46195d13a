package chat

import (
	"encoding/json"
	"errors"
)

// Wire format: every frame in either direction is an Envelope. Inbound frames
// are a closed set of event kinds; anything else is answered with an error
// event and dropped.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client-to-server events.
const (
	EventSendMessage       = "send-message"
	EventSendGroupMessage  = "send-group-message"
	EventJoinGroup         = "join-group"
	EventLeaveGroup        = "leave-group"
	EventTypingStart       = "typing-start"
	EventTypingStop        = "typing-stop"
	EventDeleteForMe       = "delete-message-for-me"
	EventDeleteForEveryone = "delete-message-for-everyone"
)

// Server-to-client events.
const (
	EventReceiveMessage      = "receive-message"
	EventMessageSent         = "message-sent"
	EventReceiveGroupMessage = "receive-group-message"
	EventUserTyping          = "user-typing"
	EventUserOnline          = "user-online"
	EventUserOffline         = "user-offline"
	EventMessageDeleted      = "message-deleted"
	EventError               = "error"
)

type SendMessagePayload struct {
	Receiver string `json:"receiver"`
	Content  string `json:"content"`
}

type GroupMessagePayload struct {
	GroupID string `json:"groupId"`
	Content string `json:"content"`
}

type GroupPayload struct {
	GroupID string `json:"groupId"`
}

type TypingPayload struct {
	ChatID  string `json:"chatId"`
	IsGroup bool   `json:"isGroup"`
}

type DeletePayload struct {
	MessageID string `json:"messageId"`
}

type PresencePayload struct {
	UserID string `json:"userId"`
}

type TypingEventPayload struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	ChatID   string `json:"chatId"`
	IsTyping bool   `json:"isTyping"`
}

type DeletedPayload struct {
	MessageID  string `json:"messageId"`
	DeletedFor string `json:"deletedFor"` // "me" or "everyone"
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// ErrorFrame builds an encoded error event for callers outside the hub's
// dispatch path, such as a refused handshake.
func ErrorFrame(message string) []byte {
	return encode(EventError, ErrorPayload{Message: message})
}

// unmarshalPayload decodes an inbound payload; a missing payload is treated
// as malformed rather than zero-valued.
func unmarshalPayload(data json.RawMessage, into any) error {
	if len(data) == 0 {
		return errEmptyPayload
	}
	return json.Unmarshal(data, into)
}

var errEmptyPayload = errors.New("empty payload")

// encode marshals an outbound frame. Payloads are our own closed types, so a
// marshal failure is a programming error; it yields an empty error frame
// rather than a panic.
func encode(event string, data any) []byte {
	payload, err := json.Marshal(data)
	if err != nil {
		out, _ := json.Marshal(Envelope{Event: EventError})
		return out
	}
	out, _ := json.Marshal(Envelope{Event: event, Data: payload})
	return out
}
