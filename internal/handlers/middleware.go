package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/patter-chat/patter/internal/auth"
)

const identityKey = "identity"

// RequireAuth verifies the bearer token and binds the caller's identity to
// the request context.
func (h *Handler) RequireAuth(c *fiber.Ctx) error {
	token := bearerToken(c.Get(fiber.HeaderAuthorization))
	identity, err := h.auth.VerifyToken(token)
	if err != nil {
		return h.respondError(c, err)
	}
	c.Locals(identityKey, identity)
	return c.Next()
}

func identityFrom(c *fiber.Ctx) *auth.Identity {
	return c.Locals(identityKey).(*auth.Identity)
}

func bearerToken(header string) string {
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	return ""
}
