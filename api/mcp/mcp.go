// Package mcp provides an MCP (Model Context Protocol) server exposing the
// Kotori dialogue turn and memory recall as tools.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/kotori/pkg/dialogue"
	"github.com/papercomputeco/kotori/pkg/memory"
	"github.com/papercomputeco/kotori/pkg/utils"
)

// Runner executes one dialogue turn.
type Runner interface {
	Run(ctx context.Context, req dialogue.Request) dialogue.State
}

// MemorySearcher finds remembered turns near a query.
type MemorySearcher interface {
	Search(ctx context.Context, query string, limit int) ([]memory.Candidate, error)
}

type Config struct {
	// Runner answers the kotori_chat tool
	Runner Runner

	// Memory for recall (optional, enables memory_recall tool)
	Memory MemorySearcher

	// Noop for empty MCP server
	Noop bool

	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the chat tool and, when memory is
// configured, the recall tool.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "kotori",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if !c.Noop {
		if c.Runner == nil {
			return nil, errors.New("runner is required")
		}
		if c.Logger == nil {
			return nil, errors.New("logger is required")
		}

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        chatToolName,
			Description: chatDescription,
		}, s.handleChat)

		if c.Memory != nil {
			mcp.AddTool(mcpServer, &mcp.Tool{
				Name:        memoryRecallToolName,
				Description: memoryRecallDescription,
			}, s.handleMemoryRecall)
		}
	}

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// MCPServer returns the underlying MCP server, e.g. for in-memory transports.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

func toolError(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}
