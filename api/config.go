// Package api provides the HTTP API for running dialogue turns and browsing
// conversation memory.
package api

import "github.com/papercomputeco/kotori/api/mcp"

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string

	// MCP, when set, is mounted at /mcp.
	MCP *mcp.Server
}
