package api

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/kotori/pkg/dialogue"
	"github.com/papercomputeco/kotori/pkg/memory"
)

const (
	defaultSearchK = 5
	maxSearchK     = 50
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ChatResponse is a finished dialogue turn.
type ChatResponse struct {
	dialogue.State

	Stage      string `json:"stage"`
	MemoryID   string `json:"memory_id,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// MemorySearchResponse lists memory contents nearest to a query.
type MemorySearchResponse struct {
	Query   string        `json:"query"`
	Results []MemoryMatch `json:"results"`
	Count   int           `json:"count"`
}

// MemoryMatch is one search hit.
type MemoryMatch struct {
	Content  string  `json:"content"`
	Type     string  `json:"type"`
	Distance float32 `json:"distance"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleChat runs one dialogue turn for the posted input.
func (s *Server) handleChat(c *fiber.Ctx) error {
	var req dialogue.Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Input) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "input is required"})
	}

	turn := s.runner.RunTurn(c.UserContext(), req)
	return c.JSON(ChatResponse{
		State:      turn.State,
		Stage:      string(turn.Stage),
		MemoryID:   turn.MemoryID,
		DurationMs: turn.Duration.Milliseconds(),
	})
}

// handleMemorySearch handles GET /v1/memory/search.
// Query parameters:
//   - query (required): the search query text
//   - k (optional, default 5): number of results to return
func (s *Server) handleMemorySearch(c *fiber.Ctx) error {
	if s.memory == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "memory is not configured"})
	}

	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "query parameter is required"})
	}

	k := defaultSearchK
	if raw := c.Query("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxSearchK {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "k must be an integer between 1 and 50"})
		}
		k = parsed
	}

	cands, err := s.memory.Search(c.UserContext(), query, k)
	if err != nil {
		s.logger.Error("memory search failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "memory search failed"})
	}

	results := make([]MemoryMatch, 0, len(cands))
	for _, cand := range cands {
		results = append(results, MemoryMatch{Content: cand.Content, Type: string(cand.Type), Distance: cand.Distance})
	}
	return c.JSON(MemorySearchResponse{Query: query, Results: results, Count: len(results)})
}

// handleMemoryList returns every stored memory record.
func (s *Server) handleMemoryList(c *fiber.Ctx) error {
	if s.memory == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "memory is not configured"})
	}

	records, err := s.memory.All(c.UserContext())
	if err != nil {
		s.logger.Error("listing memory failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list memory"})
	}
	if records == nil {
		records = []memory.Record{}
	}

	return c.JSON(map[string]any{
		"count":   len(records),
		"records": records,
	})
}
