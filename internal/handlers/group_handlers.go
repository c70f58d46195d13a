package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/patter-chat/patter/internal/apperr"
)

type createGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type membersRequest struct {
	Members []string `json:"members"`
}

type removeMemberRequest struct {
	MemberID string `json:"memberId"`
}

// CreateGroup POST /groups/create. The caller becomes admin and is always a
// member.
func (h *Handler) CreateGroup(c *fiber.Ctx) error {
	var req createGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respondError(c, apperr.New(apperr.KindValidation, "invalid request body"))
	}
	view, err := h.svc.CreateGroup(identityFrom(c).UserID, req.Name, req.Members)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// MyGroups GET /groups/my
func (h *Handler) MyGroups(c *fiber.Ctx) error {
	views, err := h.svc.MyGroups(identityFrom(c).UserID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(views)
}

// GetGroup GET /groups/:groupId. Member-only.
func (h *Handler) GetGroup(c *fiber.Ctx) error {
	view, err := h.svc.GetGroup(identityFrom(c).UserID, c.Params("groupId"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(view)
}

// GroupMessages GET /groups/:groupId/messages. Member-only history with the
// per-requester view transform.
func (h *Handler) GroupMessages(c *fiber.Ctx) error {
	views, err := h.svc.GroupHistory(identityFrom(c).UserID, c.Params("groupId"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(views)
}

// AddMembers PATCH /groups/:groupId/add-members. Admin-only, de-duplicated.
func (h *Handler) AddMembers(c *fiber.Ctx) error {
	var req membersRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respondError(c, apperr.New(apperr.KindValidation, "invalid request body"))
	}
	view, err := h.svc.AddMembers(identityFrom(c).UserID, c.Params("groupId"), req.Members)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(view)
}

// RemoveMember PATCH /groups/:groupId/remove-member. Admin-only; the admin
// cannot be removed.
func (h *Handler) RemoveMember(c *fiber.Ctx) error {
	var req removeMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respondError(c, apperr.New(apperr.KindValidation, "invalid request body"))
	}
	view, err := h.svc.RemoveMember(identityFrom(c).UserID, c.Params("groupId"), req.MemberID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(view)
}

// LeaveGroup PATCH /groups/:groupId/leave. Blocked for the admin.
func (h *Handler) LeaveGroup(c *fiber.Ctx) error {
	if err := h.svc.LeaveGroup(identityFrom(c).UserID, c.Params("groupId")); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
