// Package chat is the real-time messaging core: it binds authenticated
// connections to rooms, fans out direct and group messages through the shared
// messaging service, and tracks presence and typing state.
package chat

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/patter-chat/patter/internal/apperr"
	"github.com/patter-chat/patter/internal/messaging"
	"github.com/patter-chat/patter/internal/store"
)

// Hub owns every piece of process-wide live state. It is constructed once at
// startup and passed explicitly to the websocket handler; there is no ambient
// singleton.
type Hub struct {
	log      zerolog.Logger
	svc      *messaging.Service
	users    store.UserStore
	groups   store.GroupStore
	rooms    *Rooms
	presence *Presence
	typing   *TypingTracker

	registry *registry
}

func NewHub(log zerolog.Logger, svc *messaging.Service, users store.UserStore, groups store.GroupStore) *Hub {
	return &Hub{
		log:      log,
		svc:      svc,
		users:    users,
		groups:   groups,
		rooms:    NewRooms(),
		presence: NewPresence(),
		typing:   NewTypingTracker(),
		registry: newRegistry(),
	}
}

// Connect registers an authenticated client: personal room, one room per
// current group membership, presence online, global user-online broadcast.
// Later membership changes require explicit join-group/leave-group events.
func (h *Hub) Connect(c *Client) {
	h.registry.add(c)
	h.rooms.Join(c, c.UserID)

	groups, err := h.groups.ForUser(c.UserID)
	if err != nil {
		h.log.Error().Err(err).Str("user", c.UserID).Msg("group lookup on connect failed")
	}
	for i := range groups {
		h.rooms.Join(c, groups[i].ID)
	}

	now := time.Now()
	h.presence.Connect(c.UserID)
	if err := h.users.SetPresence(c.UserID, true, now); err != nil {
		h.log.Error().Err(err).Str("user", c.UserID).Msg("presence update failed")
	}
	h.broadcastAll(EventUserOnline, PresencePayload{UserID: c.UserID})

	h.log.Info().Str("user", c.Username).Str("conn", c.ID).Msg("connected")
}

// Disconnect is the single ordered teardown sequence, run on graceful close
// and abrupt loss alike: rooms, typing state, presence, offline broadcast.
func (h *Hub) Disconnect(c *Client) {
	if !h.registry.remove(c) {
		return
	}
	h.rooms.LeaveAll(c)
	h.typing.Clear(c.UserID)

	now := time.Now()
	h.presence.Disconnect(c.UserID)
	if err := h.users.SetPresence(c.UserID, false, now); err != nil {
		h.log.Error().Err(err).Str("user", c.UserID).Msg("presence update failed")
	}
	h.broadcastAll(EventUserOffline, PresencePayload{UserID: c.UserID})
	c.shutdown()

	h.log.Info().Str("user", c.Username).Str("conn", c.ID).Msg("disconnected")
}

// Dispatch routes one inbound event. Failures never kill the connection;
// every operation answers the originating client with an error event and the
// connection stays usable.
func (h *Hub) Dispatch(c *Client, env Envelope) {
	switch env.Event {
	case EventSendMessage:
		var p SendMessagePayload
		if decode(c, env, &p) {
			h.handleSendDirect(c, p)
		}
	case EventSendGroupMessage:
		var p GroupMessagePayload
		if decode(c, env, &p) {
			h.handleSendGroup(c, p)
		}
	case EventJoinGroup:
		var p GroupPayload
		if decode(c, env, &p) {
			h.handleJoinGroup(c, p.GroupID)
		}
	case EventLeaveGroup:
		var p GroupPayload
		if decode(c, env, &p) {
			h.rooms.Leave(c, p.GroupID)
		}
	case EventTypingStart:
		var p TypingPayload
		if decode(c, env, &p) {
			h.handleTyping(c, p, true)
		}
	case EventTypingStop:
		var p TypingPayload
		if decode(c, env, &p) {
			h.handleTyping(c, p, false)
		}
	case EventDeleteForMe:
		var p DeletePayload
		if decode(c, env, &p) {
			h.handleDeleteForMe(c, p.MessageID)
		}
	case EventDeleteForEveryone:
		var p DeletePayload
		if decode(c, env, &p) {
			h.handleDeleteForEveryone(c, p.MessageID)
		}
	default:
		c.enqueue(encode(EventError, ErrorPayload{Message: "unknown event"}))
	}
}

func (h *Hub) handleSendDirect(c *Client, p SendMessagePayload) {
	view, err := h.svc.SendDirect(c.UserID, p.Receiver, p.Content)
	if err != nil {
		h.sendError(c, err)
		return
	}
	// Receiver delivery and sender acknowledgment are independent; a
	// self-message arrives twice and that is accepted.
	h.rooms.Broadcast(p.Receiver, EventReceiveMessage, view)
	c.enqueue(encode(EventMessageSent, view))
}

func (h *Hub) handleSendGroup(c *Client, p GroupMessagePayload) {
	view, err := h.svc.SendGroup(c.UserID, p.GroupID, p.Content)
	if err != nil {
		h.sendError(c, err)
		return
	}
	// One copy per member via the shared room, sender included; no ack.
	h.rooms.Broadcast(p.GroupID, EventReceiveGroupMessage, view)
}

// handleJoinGroup authorizes the join; leaving is deliberately unchecked.
func (h *Hub) handleJoinGroup(c *Client, groupID string) {
	if _, err := h.svc.GetGroup(c.UserID, groupID); err != nil {
		h.sendError(c, err)
		return
	}
	h.rooms.Join(c, groupID)
	h.log.Debug().Str("user", c.Username).Str("group", groupID).Msg("joined group room")
}

func (h *Hub) handleTyping(c *Client, p TypingPayload, typing bool) {
	if p.ChatID == "" {
		h.sendError(c, apperr.New(apperr.KindValidation, "ChatId required"))
		return
	}
	if typing {
		h.typing.Start(c.UserID, p.ChatID)
	} else {
		h.typing.Stop(c.UserID, p.ChatID)
	}
	payload := TypingEventPayload{
		UserID:   c.UserID,
		Username: c.Username,
		ChatID:   p.ChatID,
		IsTyping: typing,
	}
	if p.IsGroup {
		h.rooms.Broadcast(p.ChatID, EventUserTyping, payload)
	} else {
		// Direct: chatId is the counterpart's user id; only their room hears.
		h.rooms.BroadcastExcept(p.ChatID, c, EventUserTyping, payload)
	}
}

func (h *Hub) handleDeleteForMe(c *Client, messageID string) {
	if err := h.svc.DeleteForMe(c.UserID, messageID); err != nil {
		h.sendError(c, err)
		return
	}
	// Private to the caller: nobody else learns about it.
	c.enqueue(encode(EventMessageDeleted, DeletedPayload{MessageID: messageID, DeletedFor: "me"}))
}

func (h *Hub) handleDeleteForEveryone(c *Client, messageID string) {
	msg, err := h.svc.DeleteForEveryone(c.UserID, messageID)
	if err != nil {
		h.sendError(c, err)
		return
	}
	payload := DeletedPayload{MessageID: messageID, DeletedFor: "everyone"}
	if msg.GroupID != nil {
		h.rooms.Broadcast(*msg.GroupID, EventMessageDeleted, payload)
		return
	}
	if msg.ReceiverID != nil {
		h.rooms.Broadcast(*msg.ReceiverID, EventMessageDeleted, payload)
	}
	// The sender is not in the receiver's room, so echo explicitly.
	c.enqueue(encode(EventMessageDeleted, payload))
}

func (h *Hub) sendError(c *Client, err error) {
	message := err.Error()
	if apperr.KindOf(err) == apperr.KindInternal {
		h.log.Error().Err(err).Str("user", c.UserID).Msg("operation failed")
		message = "internal error"
	}
	c.enqueue(encode(EventError, ErrorPayload{Message: message}))
}

func (h *Hub) broadcastAll(event string, data any) {
	frame := encode(event, data)
	for _, c := range h.registry.snapshot() {
		c.enqueue(frame)
	}
}

func decode(c *Client, env Envelope, into any) bool {
	if err := unmarshalPayload(env.Data, into); err != nil {
		c.enqueue(encode(EventError, ErrorPayload{Message: "malformed event"}))
		return false
	}
	return true
}
