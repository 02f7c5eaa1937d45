// ABOUTME: OpenRouter chat-completions client for the assistant's generative
// ABOUTME: fallback. Never fails: any internal error yields a fixed apology.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ApologyReply is returned whenever the model call fails for any reason.
// Callers can rely on Generate always producing usable text.
const ApologyReply = "I'm sorry, I couldn't come up with an answer just now. " +
	"Could you try rephrasing, or ask me about tours in a city you'd like to visit?"

const defaultEndpoint = "https://openrouter.ai/api/v1/chat/completions"

// promptTemplate frames every fallback request. The assistant persona is
// fixed; only the user utterance varies.
const promptTemplate = `You are the travel assistant of a tour-discovery app. ` +
	`A user said something you could not map to a tour search. Reply briefly and helpfully, ` +
	`and steer the conversation toward tours, cities, and activities when natural.

User message: %q`

// Client calls an OpenRouter-compatible chat completions endpoint.
type Client struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// Config for the client. Endpoint defaults to OpenRouter; Timeout bounds the
// whole HTTP exchange and defaults to 10s.
type Config struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
	Logger   *slog.Logger
}

// New creates a Client.
func New(cfg Config) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint:   endpoint,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "llm"),
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate asks the model to reply to an utterance the rule stages could not
// place. It implements intent.Responder and never fails: timeouts, transport
// errors, and malformed responses all degrade to ApologyReply.
func (c *Client) Generate(ctx context.Context, utterance string) string {
	text, err := c.complete(ctx, fmt.Sprintf(promptTemplate, utterance))
	if err != nil {
		c.logger.Warn("generative fallback failed", "error", err)
		return ApologyReply
	}
	return text
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling model endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model endpoint returned %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty response from model")
	}

	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("blank completion from model")
	}
	return text, nil
}
