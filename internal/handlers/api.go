package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"scopechat/internal/store"
)

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false, "error": "not authenticated",
	})
}

// ListUsers GET /api/users
func (h *Handlers) ListUsers(c *fiber.Ctx) error {
	if _, ok := h.currentUser(c); !ok {
		return unauthenticated(c)
	}
	users, err := h.store.ListUsers(c.Context())
	if err != nil {
		h.log.Error("list users", zap.Error(err))
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	out := make([]fiber.Map, 0, len(users))
	for _, u := range users {
		out = append(out, fiber.Map{"id": u.ID, "username": u.Username})
	}
	return c.JSON(out)
}

// ListGroups GET /api/groups/all
func (h *Handlers) ListGroups(c *fiber.Ctx) error {
	if _, ok := h.currentUser(c); !ok {
		return unauthenticated(c)
	}
	groups, err := h.store.ListGroups(c.Context())
	if err != nil {
		h.log.Error("list groups", zap.Error(err))
		return c.JSON(fiber.Map{"success": false, "error": "could not load groups"})
	}
	out := make([]fiber.Map, 0, len(groups))
	for _, g := range groups {
		out = append(out, fiber.Map{
			"id":          g.ID,
			"group_name":  g.Name,
			"description": g.Description,
		})
	}
	return c.JSON(fiber.Map{"success": true, "groups": out})
}

type createGroupRequest struct {
	GroupName   string `json:"group_name"`
	Description string `json:"description"`
}

// CreateGroup POST /api/groups/create {group_name, description?}
func (h *Handlers) CreateGroup(c *fiber.Ctx) error {
	user, ok := h.currentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	var req createGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "invalid request body",
		})
	}
	id, err := h.store.CreateGroup(c.Context(), req.GroupName, req.Description, user.ID)
	if errors.Is(err, store.ErrGroupNameTaken) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false, "error": "group name already taken",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "group_id": id})
}

// historyLimit defaults to the last 100 rows when the query is absent or
// junk.
func historyLimit(c *fiber.Ctx) int {
	limit := c.QueryInt("limit", 100)
	if limit <= 0 {
		limit = 100
	}
	return limit
}

// BroadcastHistory GET /api/messages/broadcast?limit=N
func (h *Handlers) BroadcastHistory(c *fiber.Ctx) error {
	if _, ok := h.currentUser(c); !ok {
		return unauthenticated(c)
	}
	rows, err := h.store.BroadcastMessages(c.Context(), historyLimit(c))
	if err != nil {
		h.log.Error("broadcast history", zap.Error(err))
		return c.JSON(fiber.Map{"success": false, "error": "could not load messages"})
	}
	return c.JSON(fiber.Map{"success": true, "messages": rows})
}

// GroupHistory GET /api/messages/group/:id?limit=N
func (h *Handlers) GroupHistory(c *fiber.Ctx) error {
	user, ok := h.currentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	groupID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "invalid group id",
		})
	}
	member, err := h.store.IsMember(c.Context(), user.ID, int64(groupID))
	if err != nil {
		h.log.Error("membership check", zap.Error(err))
		return c.JSON(fiber.Map{"success": false, "error": "could not load messages"})
	}
	if !member {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false, "error": "not a group member",
		})
	}
	rows, err := h.store.GroupMessages(c.Context(), int64(groupID), historyLimit(c))
	if err != nil {
		h.log.Error("group history", zap.Error(err))
		return c.JSON(fiber.Map{"success": false, "error": "could not load messages"})
	}
	return c.JSON(fiber.Map{"success": true, "messages": rows})
}

// PrivateHistory GET /api/messages/private/:id?limit=N
func (h *Handlers) PrivateHistory(c *fiber.Ctx) error {
	user, ok := h.currentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	peerID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "invalid user id",
		})
	}
	rows, err := h.store.PrivateMessages(c.Context(), user.ID, int64(peerID), historyLimit(c))
	if err != nil {
		h.log.Error("private history", zap.Error(err))
		return c.JSON(fiber.Map{"success": false, "error": "could not load messages"})
	}
	return c.JSON(fiber.Map{"success": true, "messages": rows})
}
