package messaging

import (
	"time"

	"github.com/patter-chat/patter/internal/models"
)

// DeletedPlaceholder replaces the content of any message hidden from a viewer.
const DeletedPlaceholder = "This message was deleted"

// UserRef is the display projection of a user embedded in views.
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

func refOf(u *models.User) UserRef {
	return UserRef{ID: u.ID, Username: u.Username, Name: u.Name}
}

// MessageView is the per-requester projection of a message. It is the single
// source of truth for what a viewer may see: the same transform runs on the
// real-time path and the request path.
type MessageView struct {
	ID        string    `json:"id"`
	Sender    UserRef   `json:"sender"`
	Receiver  *UserRef  `json:"receiver,omitempty"`
	GroupID   string    `json:"groupId,omitempty"`
	Content   string    `json:"content"`
	IsDeleted bool      `json:"isDeleted"`
	CreatedAt time.Time `json:"createdAt"`
}

// viewOf projects a message for one requester. Delete-for-everyone wins over
// everything; otherwise the requester's own deletedFor membership decides.
func viewOf(m *models.Message, requesterID string, refs map[string]UserRef) MessageView {
	v := MessageView{
		ID:        m.ID,
		Sender:    refs[m.SenderID],
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
	if m.ReceiverID != nil {
		r := refs[*m.ReceiverID]
		v.Receiver = &r
	}
	if m.GroupID != nil {
		v.GroupID = *m.GroupID
	}
	if m.DeletedForEveryone || m.DeletedFor(requesterID) {
		v.Content = DeletedPlaceholder
		v.IsDeleted = true
	}
	return v
}

// GroupView is the display projection of a group with resolved members.
type GroupView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Admin     UserRef   `json:"admin"`
	Members   []UserRef `json:"members"`
	CreatedAt time.Time `json:"createdAt"`
}

func groupViewOf(g *models.Group) GroupView {
	v := GroupView{
		ID:        g.ID,
		Name:      g.Name,
		CreatedAt: g.CreatedAt,
		Members:   make([]UserRef, 0, len(g.Members)),
	}
	for i := range g.Members {
		ref := refOf(&g.Members[i])
		v.Members = append(v.Members, ref)
		if g.Members[i].ID == g.AdminID {
			v.Admin = ref
		}
	}
	return v
}
