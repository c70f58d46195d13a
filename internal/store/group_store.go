package store

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/patter-chat/patter/internal/models"
)

// groupMember mirrors the many2many join table behind Group.Members so
// membership can be changed without rewriting the whole association.
type groupMember struct {
	GroupID string `gorm:"primaryKey"`
	UserID  string `gorm:"primaryKey"`
}

func (groupMember) TableName() string { return "group_members" }

type SQLiteGroupStore struct {
	db *gorm.DB
}

func NewSQLiteGroupStore(db *gorm.DB) GroupStore {
	return &SQLiteGroupStore{db}
}

func (s *SQLiteGroupStore) Create(g *models.Group, memberIDs []string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Members").Create(g).Error; err != nil {
			return err
		}
		return addMembers(tx, g.ID, memberIDs)
	})
}

func (s *SQLiteGroupStore) ByID(id string) (*models.Group, error) {
	var group models.Group
	if err := s.db.Preload("Members").First(&group, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (s *SQLiteGroupStore) ForUser(userID string) ([]models.Group, error) {
	var groups []models.Group
	err := s.db.
		Joins("JOIN group_members gm ON gm.group_id = groups.id").
		Where("gm.user_id = ?", userID).
		Preload("Members").
		Order("groups.created_at DESC").
		Find(&groups).Error
	return groups, err
}

func (s *SQLiteGroupStore) AddMembers(groupID string, userIDs []string) error {
	return addMembers(s.db, groupID, userIDs)
}

func (s *SQLiteGroupStore) RemoveMember(groupID, userID string) error {
	return s.db.
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&groupMember{}).Error
}

func addMembers(tx *gorm.DB, groupID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	rows := make([]groupMember, 0, len(userIDs))
	for _, id := range userIDs {
		rows = append(rows, groupMember{GroupID: groupID, UserID: id})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}
