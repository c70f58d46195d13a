package store

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/patter-chat/patter/internal/models"
)

type SQLiteMessageStore struct {
	db *gorm.DB
}

func NewSQLiteMessageStore(db *gorm.DB) MessageStore {
	return &SQLiteMessageStore{db}
}

func (s *SQLiteMessageStore) Create(m *models.Message) error {
	return s.db.Create(m).Error
}

func (s *SQLiteMessageStore) ByID(id string) (*models.Message, error) {
	var message models.Message
	if err := s.db.Preload("Deletions").First(&message, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (s *SQLiteMessageStore) Between(userA, userB string) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Preload("Deletions").
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

func (s *SQLiteMessageStore) ForGroup(groupID string) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.
		Where("group_id = ?", groupID).
		Preload("Deletions").
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// MarkDeletedFor is idempotent: re-adding an existing viewer is a no-op.
func (s *SQLiteMessageStore) MarkDeletedFor(messageID, userID string) error {
	row := models.MessageDeletion{MessageID: messageID, UserID: userID}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

func (s *SQLiteMessageStore) MarkDeletedForEveryone(messageID string) error {
	return s.db.Model(&models.Message{}).Where("id = ?", messageID).
		Update("deleted_for_everyone", true).Error
}
