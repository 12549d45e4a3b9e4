package askcmder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/papercomputeco/kotori/api"
	"github.com/papercomputeco/kotori/pkg/dialogue"
)

// ChatAPI posts one turn to a running kotori API server.
func ChatAPI(ctx context.Context, apiTarget, input string) (*api.ChatResponse, error) {
	chatURL, err := url.Parse(apiTarget)
	if err != nil {
		return nil, fmt.Errorf("invalid API target URL: %w", err)
	}
	chatURL.Path = "/v1/chat"

	body, err := json.Marshal(dialogue.Request{Input: input})
	if err != nil {
		return nil, fmt.Errorf("encoding chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, chatURL.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Kotori API at %s: %w", apiTarget, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat request failed (HTTP %d): %s", resp.StatusCode, string(respBody))
	}

	var out api.ChatResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("failed to parse chat response: %w", err)
	}
	return &out, nil
}
