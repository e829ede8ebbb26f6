// Package server assembles the echo HTTP server from registered handlers.
package server

import (
	"context"
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/kaiunlab/kaiun/internal/auth"
)

// Handler registers routes on the echo instance.
type Handler interface {
	Register(e *echo.Echo)
}

// Server wraps the echo instance and its listen address.
type Server struct {
	echo *echo.Echo
	addr string
}

var jwtSkipPaths = map[string]struct{}{
	"":              {},
	"/ping":         {},
	"/health":       {},
	"/auth/login":   {},
	"/webhook/line": {},
}

// shouldSkipJWT reports whether the path is public. The webhook route is
// public because it authenticates with the channel-secret signature, not a
// bearer token.
func shouldSkipJWT(path string) bool {
	_, ok := jwtSkipPaths[strings.TrimSuffix(path, "/")]
	return ok
}

// NewServer builds the echo server with recovery, request logging, and JWT
// middleware, and registers every handler.
func NewServer(log *slog.Logger, addr, jwtSecret string, handlers []Handler) *Server {
	if addr == "" {
		addr = ":8080"
	}
	if log == nil {
		log = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", c.RealIP()),
			)
			return nil
		},
	}))
	e.Use(auth.JWTMiddleware(jwtSecret, func(c echo.Context) bool {
		return shouldSkipJWT(c.Request().URL.Path)
	}))

	for _, h := range handlers {
		if h != nil {
			h.Register(e)
		}
	}

	return &Server{
		echo: e,
		addr: addr,
	}
}

// Start begins serving and blocks until the server stops.
func (s *Server) Start() error {
	return s.echo.Start(s.addr)
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
