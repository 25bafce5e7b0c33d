// Package gateway implements the WebSocket gateway: accepting connections,
// driving each one's Hello/Identify/Resume/Heartbeat state machine, and
// replaying its configured script once it reaches Ready.
package gateway

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"

	"github.com/gelbpunkt/mockgw/internal/config"
	"github.com/gelbpunkt/mockgw/internal/script"
	"github.com/gelbpunkt/mockgw/internal/session"
)

// maxFrameSize bounds a single client frame; generous enough for any script
// dispatch payload this mock is expected to echo.
const maxFrameSize = 1 << 20

// Server accepts WebSocket connections and spawns a Connection for each one.
type Server struct {
	Router   *chi.Mux
	Sessions *session.Registry
	Config   *config.Config
	Script   []script.Action
	Logger   *slog.Logger

	server *http.Server
}

// NewServer builds a Server with its router and middleware wired, ready to
// Start.
func NewServer(cfg *config.Config, sc []script.Action, logger *slog.Logger) *Server {
	s := &Server{
		Router:   chi.NewRouter(),
		Sessions: session.New(),
		Config:   cfg,
		Script:   sc,
		Logger:   logger,
	}

	s.registerMiddleware()
	s.Router.Get("/", s.handleWebsocket)

	return s
}

func (s *Server) registerMiddleware() {
	s.Router.Use(middleware.RequestID)
	s.Router.Use(middleware.RealIP)
	s.Router.Use(slogMiddleware(s.Logger))
	s.Router.Use(middleware.Recoverer)
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.Logger.Error("failed to accept connection", slog.Any("error", err))
		return
	}
	conn.SetReadLimit(maxFrameSize)

	// Each connection gets its own correlation id so its log lines can be
	// followed across the lifetime of the socket, independent of request ID.
	connLogger := s.Logger.With(slog.String("conn_id", ulid.Make().String()))

	c := newConnection(conn, s.Sessions, s.Config, s.Script, connLogger)
	c.handle(r.Context())
}

// Start begins listening for WebSocket connections on the configured port.
// It blocks until the server is shut down.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", s.Config.Port),
		Handler:      s.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // connections are long-lived; writes are paced by scripts, not deadlines
		IdleTimeout:  0,
	}

	s.Logger.Info("gateway starting", slog.Int("port", s.Config.Port))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("gateway server error: %w", err)
	}
	return nil
}

// slogMiddleware returns a chi middleware that logs HTTP requests using slog.
func slogMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.LogAttrs(r.Context(), slog.LevelInfo, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
				slog.String("remote", r.RemoteAddr),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
