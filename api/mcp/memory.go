package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	memoryRecallToolName    = "memory_recall"
	memoryRecallDescription = "Recall past conversation turns from Kotori's long-term memory. Given a query, returns the most similar remembered exchanges with their type (qna, emotional, or suggestion)."
)

// MemoryRecallInput represents the input arguments for the MCP memory_recall tool.
type MemoryRecallInput struct {
	Query string `json:"query" jsonschema:"text to find related past conversation turns for"`
	K     int    `json:"k,omitempty" jsonschema:"number of turns to return (default: 5)"`
}

// RecalledTurn is one remembered exchange.
type RecalledTurn struct {
	Content  string  `json:"content"`
	Type     string  `json:"type"`
	Distance float32 `json:"distance"`
}

// MemoryRecallOutput represents the structured output of a memory recall.
type MemoryRecallOutput struct {
	Query   string         `json:"query"`
	Results []RecalledTurn `json:"results"`
	Count   int            `json:"count"`
}

// handleMemoryRecall processes a memory recall request via MCP.
func (s *Server) handleMemoryRecall(ctx context.Context, _ *mcp.CallToolRequest, input MemoryRecallInput) (*mcp.CallToolResult, MemoryRecallOutput, error) {
	if input.Query == "" {
		return toolError("query is required"), emptyRecall(input.Query), nil
	}

	k := input.K
	if k <= 0 {
		k = 5
	}

	cands, err := s.config.Memory.Search(ctx, input.Query, k)
	if err != nil {
		s.config.Logger.Error("MCP memory recall failed", "error", err)
		return toolError(fmt.Sprintf("Memory recall failed: %v", err)), emptyRecall(input.Query), nil
	}

	output := emptyRecall(input.Query)
	for _, c := range cands {
		output.Results = append(output.Results, RecalledTurn{Content: c.Content, Type: string(c.Type), Distance: c.Distance})
	}
	output.Count = len(output.Results)

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return toolError(fmt.Sprintf("Failed to serialize results: %v", err)), emptyRecall(input.Query), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}

// emptyRecall has a non-nil Results slice so the structured output always
// validates against the array schema.
func emptyRecall(query string) MemoryRecallOutput {
	return MemoryRecallOutput{Query: query, Results: []RecalledTurn{}}
}
