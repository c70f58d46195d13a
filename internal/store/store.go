// Package store provides durable persistence for users, groups and messages
// over gorm. Stores return gorm.ErrRecordNotFound untouched; the service
// layer classifies it.
package store

import (
	"time"

	"github.com/patter-chat/patter/internal/models"
)

type UserStore interface {
	Create(u *models.User) error
	ByID(id string) (*models.User, error)
	ByUsername(username string) (*models.User, error)
	All() ([]models.User, error)
	ByIDs(ids []string) ([]models.User, error)
	SetPresence(id string, online bool, lastSeen time.Time) error
}

type GroupStore interface {
	Create(g *models.Group, memberIDs []string) error
	ByID(id string) (*models.Group, error)
	ForUser(userID string) ([]models.Group, error)
	AddMembers(groupID string, userIDs []string) error
	RemoveMember(groupID, userID string) error
}

type MessageStore interface {
	Create(m *models.Message) error
	ByID(id string) (*models.Message, error)
	Between(userA, userB string) ([]models.Message, error)
	ForGroup(groupID string) ([]models.Message, error)
	MarkDeletedFor(messageID, userID string) error
	MarkDeletedForEveryone(messageID string) error
}
