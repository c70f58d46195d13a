// Package handlers exposes the request API and the websocket endpoint over
// fiber. Every write delegates to the same messaging service as the real-time
// hub, so both paths enforce identical rules.
package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/patter-chat/patter/internal/apperr"
	"github.com/patter-chat/patter/internal/auth"
	"github.com/patter-chat/patter/internal/chat"
	"github.com/patter-chat/patter/internal/messaging"
	"github.com/patter-chat/patter/internal/store"
)

type Handler struct {
	log   zerolog.Logger
	auth  *auth.Service
	svc   *messaging.Service
	users store.UserStore
	hub   *chat.Hub
}

func New(log zerolog.Logger, authSvc *auth.Service, svc *messaging.Service, users store.UserStore, hub *chat.Hub) *Handler {
	return &Handler{log: log, auth: authSvc, svc: svc, users: users, hub: hub}
}

// respondError maps the error taxonomy onto HTTP status categories. Internal
// errors are logged and surfaced generically.
func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := err.Error()
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status = fiber.StatusBadRequest
	case apperr.KindAuthentication:
		status = fiber.StatusUnauthorized
	case apperr.KindForbidden:
		status = fiber.StatusForbidden
	case apperr.KindNotFound:
		status = fiber.StatusNotFound
	default:
		h.log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		message = "internal error"
	}
	return c.Status(status).JSON(fiber.Map{"error": message})
}
