// Package openai reads sidewall photos with an OpenAI-compatible Chat
// Completions endpoint that accepts image input.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tirescan-backend/internal/shared/telemetry"
	"tirescan-backend/internal/vision"
)

const (
	DefaultBaseURL   = "https://api.openai.com/v1"
	defaultTimeout   = 60 * time.Second
	maxResponseBytes = 4 << 20
)

// Options configures a Client. Only APIKey and Model are required.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	// Timeout bounds the transport; the per-call deadline comes from ctx.
	Timeout time.Duration
	// ImageDetail is "low", "high" or "auto". Sidewall text is small, so
	// the zero value means "high".
	ImageDetail string
	MaxTokens   int
}

type Client struct {
	opts     Options
	endpoint string
	http     *http.Client
}

func NewClient(opts Options) (*Client, error) {
	opts.APIKey = strings.TrimSpace(opts.APIKey)
	if opts.APIKey == "" {
		return nil, vision.ErrMissingCredential
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("VISION_MODEL is required for OpenAI")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.ImageDetail == "" {
		opts.ImageDetail = "high"
	}
	return &Client{
		opts:     opts,
		endpoint: strings.TrimRight(opts.BaseURL, "/") + "/chat/completions",
		http:     &http.Client{Timeout: opts.Timeout},
	}, nil
}

type (
	message struct {
		Role    string `json:"role"`
		Content any    `json:"content"`
	}
	part struct {
		Type     string     `json:"type"`
		Text     string     `json:"text,omitempty"`
		ImageURL *imagePart `json:"image_url,omitempty"`
	}
	imagePart struct {
		URL    string `json:"url"`
		Detail string `json:"detail,omitempty"`
	}
	completionRequest struct {
		Model          string    `json:"model"`
		Messages       []message `json:"messages"`
		Temperature    float64   `json:"temperature"`
		MaxTokens      int       `json:"max_tokens,omitempty"`
		ResponseFormat struct {
			Type string `json:"type"`
		} `json:"response_format"`
	}
	completionResponse struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
		Error *apiError `json:"error,omitempty"`
	}
	apiError struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	}
)

// Extract sends the photo with the versioned system prompt and returns the
// message content untouched. An empty content string is not an error; the
// caller decides what an empty reading means.
func (c *Client) Extract(ctx context.Context, req vision.Request) (string, error) {
	system, err := vision.SystemPrompt(req.PromptVersion)
	if err != nil {
		return "", err
	}
	body := completionRequest{
		Model:     c.opts.Model,
		MaxTokens: c.opts.MaxTokens,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: []part{
				{Type: "text", Text: vision.UserInstruction},
				{Type: "image_url", ImageURL: &imagePart{URL: vision.DataURI(req.MimeType, req.Image), Detail: c.opts.ImageDetail}},
			}},
		},
	}
	body.ResponseFormat.Type = "json_object"

	resp, err := c.post(ctx, body)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: response has no choices")
	}
	choice := resp.Choices[0]
	telemetry.Debug("vision.response", map[string]any{
		"model":             c.opts.Model,
		"prompt_version":    req.PromptVersion,
		"finish_reason":     choice.FinishReason,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
	})
	return choice.Message.Content, nil
}

func (c *Client) post(ctx context.Context, body completionRequest) (completionResponse, error) {
	var out completionResponse
	payload, err := json.Marshal(body)
	if err != nil {
		return out, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return out, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return out, fmt.Errorf("openai: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return out, fmt.Errorf("openai: read response: %w", err)
	}
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode/100 != 2 {
		statusErr := &vision.StatusError{StatusCode: resp.StatusCode}
		if decodeErr == nil && out.Error != nil {
			statusErr.Message = out.Error.Message
		}
		return out, statusErr
	}
	if decodeErr != nil {
		return out, fmt.Errorf("openai: decode response: %w", decodeErr)
	}
	if out.Error != nil {
		return out, fmt.Errorf("openai: %s (%s)", out.Error.Message, out.Error.Type)
	}
	return out, nil
}

var _ vision.Client = (*Client)(nil)
