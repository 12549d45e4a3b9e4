package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/kotori/pkg/dialogue"
)

var (
	chatToolName    = "kotori_chat"
	chatDescription = "Send one message to Kotori, a supportive companion for parents going through Empty Nest Syndrome. Returns the response along with the detected intent and the agent that answered."
)

// ChatInput represents the input arguments for the kotori_chat tool.
type ChatInput struct {
	Input string `json:"input" jsonschema:"the user's message"`
}

// ChatOutput is the finished dialogue turn.
type ChatOutput struct {
	Response string `json:"response"`
	Intent   string `json:"intent"`
	Agent    string `json:"agent"`
}

func (s *Server) handleChat(ctx context.Context, _ *mcp.CallToolRequest, input ChatInput) (*mcp.CallToolResult, ChatOutput, error) {
	if strings.TrimSpace(input.Input) == "" {
		return toolError("input is required"), ChatOutput{}, nil
	}

	s.config.Logger.Debug("MCP chat request", "input_length", len(input.Input))

	state := s.config.Runner.Run(ctx, dialogue.Request{Input: input.Input})
	output := ChatOutput{
		Response: state.Response,
		Intent:   string(state.Intent),
		Agent:    string(state.Agent),
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: state.Response},
		},
	}, output, nil
}
