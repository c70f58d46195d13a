// Package messaging implements message and group semantics once, for both
// transports: the websocket hub and the HTTP handlers call into the same
// validation, authorization and view rules.
package messaging

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/patter-chat/patter/internal/apperr"
	"github.com/patter-chat/patter/internal/models"
	"github.com/patter-chat/patter/internal/store"
)

type Service struct {
	users    store.UserStore
	groups   store.GroupStore
	messages store.MessageStore
}

func NewService(users store.UserStore, groups store.GroupStore, messages store.MessageStore) *Service {
	return &Service{users: users, groups: groups, messages: messages}
}

// SendDirect validates, persists and returns the populated view of a
// one-to-one message.
func (s *Service) SendDirect(senderID, receiverID, content string) (*MessageView, error) {
	content = strings.TrimSpace(content)
	if receiverID == "" || content == "" {
		return nil, apperr.New(apperr.KindValidation, "Receiver and content required")
	}
	if _, err := s.users.ByID(receiverID); err != nil {
		return nil, classify(err, "User not found")
	}

	msg := &models.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: &receiverID,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	if err := s.messages.Create(msg); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "message persist failed", err)
	}

	refs, err := s.refs(senderID, receiverID)
	if err != nil {
		return nil, err
	}
	view := viewOf(msg, senderID, refs)
	return &view, nil
}

// SendGroup re-checks membership at send time; a member who left after
// joining the room can no longer post.
func (s *Service) SendGroup(senderID, groupID, content string) (*MessageView, error) {
	content = strings.TrimSpace(content)
	if groupID == "" || content == "" {
		return nil, apperr.New(apperr.KindValidation, "GroupId and content required")
	}
	group, err := s.groups.ByID(groupID)
	if err != nil {
		return nil, classify(err, "Group not found")
	}
	if !group.IsMember(senderID) {
		return nil, apperr.New(apperr.KindForbidden, "Not a member of this group")
	}

	msg := &models.Message{
		ID:        uuid.NewString(),
		SenderID:  senderID,
		GroupID:   &groupID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.messages.Create(msg); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "message persist failed", err)
	}

	refs, err := s.refs(senderID)
	if err != nil {
		return nil, err
	}
	view := viewOf(msg, senderID, refs)
	return &view, nil
}

// DirectHistory returns the conversation between the requester and a peer in
// creation order, with the requester's view transform applied.
func (s *Service) DirectHistory(requesterID, peerID string) ([]MessageView, error) {
	msgs, err := s.messages.Between(requesterID, peerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "message query failed", err)
	}
	refs, err := s.refs(requesterID, peerID)
	if err != nil {
		return nil, err
	}
	views := make([]MessageView, 0, len(msgs))
	for i := range msgs {
		views = append(views, viewOf(&msgs[i], requesterID, refs))
	}
	return views, nil
}

// GroupHistory is member-only.
func (s *Service) GroupHistory(requesterID, groupID string) ([]MessageView, error) {
	group, err := s.groups.ByID(groupID)
	if err != nil {
		return nil, classify(err, "Group not found")
	}
	if !group.IsMember(requesterID) {
		return nil, apperr.New(apperr.KindForbidden, "Not a member of this group")
	}

	msgs, err := s.messages.ForGroup(groupID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "message query failed", err)
	}
	senderIDs := make([]string, 0, len(msgs))
	for i := range msgs {
		senderIDs = append(senderIDs, msgs[i].SenderID)
	}
	refs, err := s.refs(senderIDs...)
	if err != nil {
		return nil, err
	}
	views := make([]MessageView, 0, len(msgs))
	for i := range msgs {
		views = append(views, viewOf(&msgs[i], requesterID, refs))
	}
	return views, nil
}

// DeleteForMe hides a message from the caller only. Idempotent; any caller
// may hide any message from their own view.
func (s *Service) DeleteForMe(callerID, messageID string) error {
	if _, err := s.messages.ByID(messageID); err != nil {
		return classify(err, "Message not found")
	}
	if err := s.messages.MarkDeletedFor(messageID, callerID); err != nil {
		return apperr.Wrap(apperr.KindInternal, "deletion persist failed", err)
	}
	return nil
}

// DeleteForEveryone is sender-only and monotonic. The updated message is
// returned so the real-time layer can route the deletion notice.
func (s *Service) DeleteForEveryone(callerID, messageID string) (*models.Message, error) {
	msg, err := s.messages.ByID(messageID)
	if err != nil {
		return nil, classify(err, "Message not found")
	}
	if msg.SenderID != callerID {
		return nil, apperr.New(apperr.KindForbidden, "Only sender can delete for everyone")
	}
	if err := s.messages.MarkDeletedForEveryone(messageID); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "deletion persist failed", err)
	}
	msg.DeletedForEveryone = true
	return msg, nil
}

// refs resolves user ids to display refs, tolerating gaps for ids that no
// longer resolve.
func (s *Service) refs(ids ...string) (map[string]UserRef, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" && !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	users, err := s.users.ByIDs(unique)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "user lookup failed", err)
	}
	refs := make(map[string]UserRef, len(users))
	for i := range users {
		refs[users[i].ID] = refOf(&users[i])
	}
	return refs, nil
}

func classify(err error, notFoundMessage string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.KindNotFound, notFoundMessage)
	}
	return apperr.Wrap(apperr.KindInternal, "store query failed", err)
}
