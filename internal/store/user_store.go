package store

import (
	"time"

	"gorm.io/gorm"

	"github.com/patter-chat/patter/internal/models"
)

type SQLiteUserStore struct {
	db *gorm.DB
}

func NewSQLiteUserStore(db *gorm.DB) UserStore {
	return &SQLiteUserStore{db}
}

func (s *SQLiteUserStore) Create(u *models.User) error {
	return s.db.Create(u).Error
}

func (s *SQLiteUserStore) ByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *SQLiteUserStore) ByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *SQLiteUserStore) All() ([]models.User, error) {
	var users []models.User
	err := s.db.Order("name ASC").Find(&users).Error
	return users, err
}

func (s *SQLiteUserStore) ByIDs(ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	err := s.db.Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (s *SQLiteUserStore) SetPresence(id string, online bool, lastSeen time.Time) error {
	return s.db.Model(&models.User{}).Where("id = ?", id).
		Updates(map[string]any{"online": online, "last_seen": lastSeen}).Error
}
