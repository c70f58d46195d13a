package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/patter-chat/patter/internal/apperr"
	"github.com/patter-chat/patter/internal/models"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register POST /auth/register
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respondError(c, apperr.New(apperr.KindValidation, "invalid request body"))
	}
	user, token, err := h.auth.Register(req.Username, req.Password, req.Name)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(authResponse{Token: token, User: user})
}

// Login POST /auth/login
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respondError(c, apperr.New(apperr.KindValidation, "invalid request body"))
	}
	user, token, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(authResponse{Token: token, User: user})
}

// ListUsers GET /auth/users returns the contacts list, without password
// hashes.
func (h *Handler) ListUsers(c *fiber.Ctx) error {
	users, err := h.users.All()
	if err != nil {
		return h.respondError(c, apperr.Wrap(apperr.KindInternal, "user query failed", err))
	}
	return c.JSON(users)
}
