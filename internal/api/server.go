// Package api exposes the game server's HTTP surface: login, the
// resolved team's info, a one-shot view, action submission, and the
// websocket sync endpoint, plus the security headers every response
// carries regardless of route.
package api

import (
	"context"
	"net/http"

	"github.com/flumox/flumox-server/internal/action"
	"github.com/flumox/flumox-server/internal/listen"
	"github.com/flumox/flumox-server/internal/platform/logger"
	"github.com/flumox/flumox-server/internal/storage"
	"github.com/gorilla/websocket"
)

// authTokenHeader is the header a client carries its session token on,
// after the one-time exchange of an access code for a token at /login.
const authTokenHeader = "X-Auth-Token"

// Server holds the dependencies every handler needs.
type Server struct {
	ctx      context.Context
	store    *storage.Store
	channels *listen.Channels
	limiter  *action.RateLimiter
	log      *logger.Logger
	upgrader websocket.Upgrader
}

// NewServer builds a Server ready to have its Handler mounted. ctx bounds
// the lifetime of every websocket sync session spawned by this server,
// independent of any single request's context: cancel it to tear every
// live connection down at once (typically on process shutdown). limiter
// may be nil to leave action submission unthrottled.
func NewServer(ctx context.Context, store *storage.Store, channels *listen.Channels, limiter *action.RateLimiter, log *logger.Logger) *Server {
	return &Server{
		ctx:      ctx,
		store:    store,
		channels: channels,
		limiter:  limiter,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handler builds the complete HTTP handler: every route under /api/, with
// the security headers applied to all of them.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", s.handleLogin)
	mux.HandleFunc("/api/me", s.handleMe)
	mux.HandleFunc("/api/view", s.handleView)
	mux.HandleFunc("/api/action", s.handleAction)
	mux.HandleFunc("/api/sync", s.handleSync)
	return securityHeaders(mux)
}

// securityHeaders sets the headers every response in this module
// carries: no caching of team state, and a locked-down policy since this
// API serves no browsable content of its own.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-cache")
		h.Set("Content-Security-Policy", "default-src 'none'")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
