// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package genai is the language-generation collaborator. Stages hand it an
// instruction and a payload of research context; it returns the model's raw
// text. Everything that must be exact (scores, thresholds, rankings, loop
// routing) happens outside this package, so a weak or absent model degrades
// output quality without breaking the pipeline.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/market-engine/internal/httputil"
	"github.com/pdiddy/market-engine/pkg/types"
)

// Backend abstracts the generation API so tests can supply a mock.
type Backend interface {
	Complete(ctx context.Context, instruction, payload string) (string, error)
}

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	cfg    types.AIConfig
	client *http.Client
}

// NewClient builds a Client from cfg. BaseURL must be the API root, without
// the /chat/completions suffix.
func NewClient(cfg types.AIConfig) *Client {
	return &Client{cfg: cfg, client: &http.Client{}}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one instruction plus payload as a system/user message pair
// and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, instruction, payload string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: instruction},
			{Role: "user", Content: payload},
		},
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("encoding chat request: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := httputil.DoWithRetry(ctx, c.client, req, c.cfg.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("calling generation API: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading generation response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation API returned %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decoding generation response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("generation API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("generation response had no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// ExtractJSON pulls the first JSON object out of model text and unmarshals it
// into v. Models wrap payloads in prose and code fences, so the extraction is
// positional: everything from the first '{' to the last '}'. It reports
// whether a payload was decoded; callers treat false as "no data" and fall
// back to their defaults.
func ExtractJSON(raw string, v any) bool {
	text := stripCodeFences(raw)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return false
	}

	return json.Unmarshal([]byte(text[start:end+1]), v) == nil
}

// stripCodeFences removes markdown code-fence lines (``` or ```json), keeping
// the fenced content.
func stripCodeFences(s string) string {
	if !strings.Contains(s, "```") {
		return s
	}
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
