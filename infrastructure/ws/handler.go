package ws

import (
	"context"
	"log/slog"
	"net/http"

	"relay-hub/auth"
	"relay-hub/contract"
	"relay-hub/observability"

	"github.com/gorilla/websocket"
)

// Handler upgrades authenticated HTTP requests into live sessions.
// The token travels in the `token` query parameter and is checked
// before the upgrade, so a bad credential is refused with a plain 401.
type Handler struct {
	log      *slog.Logger
	verifier *auth.Verifier
	router   contract.Router
	presence contract.Presence
	groups   contract.Groups
	monitor  *observability.Monitor
	opts     Options
	upgrader websocket.Upgrader

	// baseCtx outlives any request context: sessions stay up after the
	// upgrade request is done, and go down when the hub shuts down.
	baseCtx context.Context
}

func NewHandler(
	log *slog.Logger,
	verifier *auth.Verifier,
	router contract.Router,
	presence contract.Presence,
	groups contract.Groups,
	monitor *observability.Monitor,
	opts Options,
	baseCtx context.Context,
) *Handler {
	return &Handler{
		log:      log,
		verifier: verifier,
		router:   router,
		presence: presence,
		groups:   groups,
		monitor:  monitor,
		opts:     opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from any origin; identity comes
			// from the token, not the Origin header.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		baseCtx: baseCtx,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := h.verifier.Verify(r.URL.Query().Get("token"))
	if err != nil {
		h.log.Warn("Refused connection", "remote", r.RemoteAddr, "error", err)
		http.Error(w, "invalid or missing token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response
		h.log.Warn("Upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	session := newSession(h.log, conn, h.router, h.presence, h.groups, h.monitor, claims.UserID, h.opts)
	go session.run(h.baseCtx)
}
