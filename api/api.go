package api

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/kotori/pkg/dialogue"
	"github.com/papercomputeco/kotori/pkg/memory"
	"github.com/papercomputeco/kotori/pkg/orchestrator"
)

// Runner executes one dialogue turn.
type Runner interface {
	RunTurn(ctx context.Context, req dialogue.Request) orchestrator.Turn
}

// MemoryBrowser reads conversation memory.
type MemoryBrowser interface {
	Search(ctx context.Context, query string, limit int) ([]memory.Candidate, error)
	All(ctx context.Context) ([]memory.Record, error)
}

// Server is the API server for the Kotori dialogue core.
type Server struct {
	config Config
	runner Runner
	memory MemoryBrowser
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server. mem may be nil, in which case the
// memory endpoints answer 503.
func NewServer(config Config, runner Runner, mem MemoryBrowser, logger *slog.Logger) (*Server, error) {
	if runner == nil {
		return nil, errors.New("runner is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		runner: runner,
		memory: mem,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/v1/chat", s.handleChat)
	app.Get("/v1/memory/search", s.handleMemorySearch)
	app.Get("/v1/memory", s.handleMemoryList)

	if config.MCP != nil {
		app.All("/mcp", adaptor.HTTPHandler(config.MCP.Handler()))
	}

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr, "mcp", s.config.MCP != nil)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
