package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/onejobco/onejob/internal/gateway"
	"github.com/onejobco/onejob/internal/logger"
)

// Server is the task server. It speaks the same wire contract the remote
// gateway consumes and keeps its storage behind the gateway interface so
// handlers can be exercised against any backing store.
type Server struct {
	storage gateway.Gateway
	echo    *echo.Echo
	closer  func() error
}

// New creates a server around an injected storage backend
func New(storage gateway.Gateway) *Server {
	s := &Server{storage: storage}
	s.setupEcho()
	return s
}

// NewPostgres creates a server backed by a Postgres database, running
// migrations on the way up.
func NewPostgres(dbURL string) (*Server, error) {
	pg, err := OpenPostgres(dbURL)
	if err != nil {
		return nil, err
	}

	s := New(pg)
	s.closer = pg.Close
	return s, nil
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true

	// Request/response logging middleware
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			res := c.Response()
			logger.Info("HTTP",
				logger.F("method", req.Method),
				logger.F("uri", req.RequestURI),
				logger.F("status", res.Status),
				logger.F("duration", time.Since(start).String()))

			return err
		}
	})

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	e.GET("/health", s.handleHealth)

	e.GET("/tasks", s.handleListTasks)
	e.POST("/tasks", s.handleCreateTask)
	e.GET("/tasks/:id", s.handleGetTask)
	e.PUT("/tasks/:id", s.handleUpdateTask)
	e.DELETE("/tasks/:id", s.handleDeleteTask)
	e.POST("/tasks/:id/substacks", s.handleCreateSubstack)

	s.echo = e
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Close releases the storage backend
func (s *Server) Close() error {
	if s.closer != nil {
		return s.closer()
	}
	return nil
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
