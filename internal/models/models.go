// Package models defines the persisted entities.
package models

import "time"

type User struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Online       bool      `json:"online"`
	LastSeen     time.Time `json:"lastSeen"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Group struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	AdminID   string    `gorm:"index;not null" json:"admin"`
	Members   []User    `gorm:"many2many:group_members" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsMember reports whether the user id is in the group's member set.
func (g *Group) IsMember(userID string) bool {
	for _, m := range g.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// Message is a direct or group message. Exactly one of ReceiverID and GroupID
// is set; that is the discriminator between the two.
type Message struct {
	ID                 string            `gorm:"primaryKey" json:"id"`
	SenderID           string            `gorm:"index;not null" json:"sender"`
	ReceiverID         *string           `gorm:"index" json:"receiver,omitempty"`
	GroupID            *string           `gorm:"index" json:"groupId,omitempty"`
	Content            string            `gorm:"not null" json:"content"`
	Deletions          []MessageDeletion `gorm:"foreignKey:MessageID" json:"-"`
	DeletedForEveryone bool              `json:"deletedForEveryone"`
	CreatedAt          time.Time         `gorm:"index" json:"createdAt"`
}

// DeletedFor reports whether the message is hidden from the given user.
func (m *Message) DeletedFor(userID string) bool {
	for _, d := range m.Deletions {
		if d.UserID == userID {
			return true
		}
	}
	return false
}

// MessageDeletion is one entry of a message's per-viewer deletedFor set.
type MessageDeletion struct {
	MessageID string `gorm:"primaryKey"`
	UserID    string `gorm:"primaryKey"`
}
