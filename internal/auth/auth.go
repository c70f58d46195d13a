// Package auth covers credentials and tokens: bcrypt password hashing on
// register/login and signed JWT identity claims consumed by the HTTP
// middleware and the websocket identity gate.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/patter-chat/patter/internal/apperr"
	"github.com/patter-chat/patter/internal/models"
	"github.com/patter-chat/patter/internal/store"
)

// Identity is the claim bound to a verified caller.
type Identity struct {
	UserID   string
	Username string
}

type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type Service struct {
	users  store.UserStore
	secret []byte
	ttl    time.Duration
}

func NewService(users store.UserStore, secret string, ttl time.Duration) *Service {
	return &Service{users: users, secret: []byte(secret), ttl: ttl}
}

func (s *Service) Register(username, password, name string) (*models.User, string, error) {
	if username == "" || password == "" || name == "" {
		return nil, "", apperr.New(apperr.KindValidation, "All fields are required")
	}

	if _, err := s.users.ByUsername(username); err == nil {
		return nil, "", apperr.New(apperr.KindValidation, "Username already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", apperr.Wrap(apperr.KindInternal, "user lookup failed", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.KindInternal, "password hashing failed", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(user); err != nil {
		return nil, "", apperr.Wrap(apperr.KindInternal, "user creation failed", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *Service) Login(username, password string) (*models.User, string, error) {
	if username == "" || password == "" {
		return nil, "", apperr.New(apperr.KindValidation, "Username and password are required")
	}

	user, err := s.users.ByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperr.New(apperr.KindAuthentication, "Invalid credentials")
		}
		return nil, "", apperr.Wrap(apperr.KindInternal, "user lookup failed", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperr.New(apperr.KindAuthentication, "Invalid credentials")
	}

	now := time.Now()
	if err := s.users.SetPresence(user.ID, true, now); err != nil {
		return nil, "", apperr.Wrap(apperr.KindInternal, "presence update failed", err)
	}
	user.Online = true
	user.LastSeen = now

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// VerifyToken checks signature and expiry and returns the bound identity.
func (s *Service) VerifyToken(token string) (*Identity, error) {
	if token == "" {
		return nil, apperr.New(apperr.KindAuthentication, "Authentication error")
	}

	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid || c.Subject == "" {
		return nil, apperr.New(apperr.KindAuthentication, "Authentication error")
	}

	return &Identity{UserID: c.Subject, Username: c.Username}, nil
}

func (s *Service) issueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "token signing failed", err)
	}
	return signed, nil
}
