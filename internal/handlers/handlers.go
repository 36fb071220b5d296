// Package handlers exposes the REST and websocket surface of the chat
// backend on a fiber app. All routes except registration and login
// require a cookie session.
package handlers

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"

	"scopechat/internal/hub"
	"scopechat/internal/store"
)

type Handlers struct {
	store    *store.Store
	hub      *hub.Hub
	sessions *session.Store
	log      *zap.Logger
}

func New(st *store.Store, h *hub.Hub, log *zap.Logger) *Handlers {
	return &Handlers{
		store: st,
		hub:   h,
		sessions: session.New(session.Config{
			Expiration:     24 * time.Hour,
			CookieHTTPOnly: true,
		}),
		log: log,
	}
}

func (h *Handlers) Register(app *fiber.App) {
	auth := app.Group("/auth")
	auth.Post("/register", h.RegisterUser)
	auth.Post("/login", h.Login)
	auth.Get("/check-session", h.CheckSession)
	auth.Post("/logout", h.Logout)

	api := app.Group("/api")
	api.Get("/users", h.ListUsers)
	api.Get("/groups/all", h.ListGroups)
	api.Post("/groups/create", h.CreateGroup)
	api.Get("/messages/broadcast", h.BroadcastHistory)
	api.Get("/messages/group/:id", h.GroupHistory)
	api.Get("/messages/private/:id", h.PrivateHistory)

	app.Use("/ws", h.upgradeWS)
	app.Get("/ws", websocket.New(h.ServeWS))
}

// currentUser resolves the session cookie to a user. The second return
// is false when there is no valid session.
func (h *Handlers) currentUser(c *fiber.Ctx) (store.User, bool) {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return store.User{}, false
	}
	id, ok := sess.Get("user_id").(int64)
	if !ok {
		return store.User{}, false
	}
	name, _ := sess.Get("username").(string)
	return store.User{ID: id, Username: name}, true
}
