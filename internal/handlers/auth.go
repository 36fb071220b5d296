package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"scopechat/internal/store"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// RegisterUser POST /auth/register {username, password, email?}
func (h *Handlers) RegisterUser(c *fiber.Ctx) error {
	var req credentials
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "invalid request body",
		})
	}
	id, err := h.store.CreateUser(c.Context(), req.Username, req.Password, req.Email)
	if errors.Is(err, store.ErrUsernameTaken) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false, "error": "username already taken",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": err.Error(),
		})
	}
	h.log.Info("user registered", zap.String("username", req.Username), zap.Int64("id", id))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user":    fiber.Map{"id": id, "username": req.Username},
	})
}

// Login POST /auth/login {username, password}
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req credentials
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "invalid request body",
		})
	}
	user, err := h.store.Authenticate(c.Context(), req.Username, req.Password)
	if errors.Is(err, store.ErrInvalidCredentials) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false, "error": "invalid username or password",
		})
	}
	if err != nil {
		h.log.Error("login failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "login failed",
		})
	}

	sess, err := h.sessions.Get(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "session unavailable",
		})
	}
	sess.Set("user_id", user.ID)
	sess.Set("username", user.Username)
	if err := sess.Save(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "session unavailable",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"user":    fiber.Map{"id": user.ID, "username": user.Username},
	})
}

// CheckSession GET /auth/check-session
func (h *Handlers) CheckSession(c *fiber.Ctx) error {
	user, ok := h.currentUser(c)
	if !ok {
		return c.JSON(fiber.Map{"logged_in": false})
	}
	return c.JSON(fiber.Map{
		"logged_in": true,
		"user":      fiber.Map{"id": user.ID, "username": user.Username},
	})
}

// Logout POST /auth/logout
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err == nil {
		_ = sess.Destroy()
	}
	return c.JSON(fiber.Map{"success": true})
}
