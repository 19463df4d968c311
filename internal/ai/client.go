// Package ai wraps the generative model endpoint: one HTTP call per
// invocation, a shared retry policy, and strict decoding of the model's
// loosely-typed output.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ClientConfig holds the model endpoint settings.
type ClientConfig struct {
	BaseURL     string
	APIKey      string
	ModelID     string
	MaxTokens   int
	Temperature float64
	// Timeout bounds a single invocation attempt, not the whole retry budget.
	Timeout time.Duration
}

// Client speaks the messages-v1 invoke protocol to the model endpoint.
// It holds no per-request state; connection reuse lives in http.Client.
type Client struct {
	httpc *http.Client
	cfg   ClientConfig
}

// NewClient creates a model endpoint client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		httpc: &http.Client{Timeout: cfg.Timeout},
		cfg:   cfg,
	}
}

type invokeRequest struct {
	SchemaVersion   string          `json:"schemaVersion"`
	Messages        []message       `json:"messages"`
	InferenceConfig inferenceConfig `json:"inferenceConfig"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Text  string      `json:"text,omitempty"`
	Image *imageBlock `json:"image,omitempty"`
}

type imageBlock struct {
	Format string      `json:"format"`
	Source imageSource `json:"source"`
}

type imageSource struct {
	Bytes string `json:"bytes"`
}

type invokeResponse struct {
	Output struct {
		Message struct {
			Content []contentBlock `json:"content"`
		} `json:"message"`
	} `json:"output"`
}

type providerErrorBody struct {
	Type    string `json:"__type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// textRequest builds a text-only invocation.
func (c *Client) textRequest(prompt string) invokeRequest {
	return invokeRequest{
		SchemaVersion: "messages-v1",
		Messages: []message{{
			Role:    "user",
			Content: []contentBlock{{Text: prompt}},
		}},
		InferenceConfig: inferenceConfig{
			MaxTokens:   c.cfg.MaxTokens,
			Temperature: c.cfg.Temperature,
		},
	}
}

// visionRequest builds an image + instruction invocation. mediaType is a MIME
// type like "image/jpeg"; the wire format wants only the subtype.
func (c *Client) visionRequest(prompt, imageB64, mediaType string) invokeRequest {
	format := "jpeg"
	if _, sub, ok := strings.Cut(mediaType, "/"); ok && sub != "" {
		format = sub
	}
	return invokeRequest{
		SchemaVersion: "messages-v1",
		Messages: []message{{
			Role: "user",
			Content: []contentBlock{
				{Image: &imageBlock{Format: format, Source: imageSource{Bytes: imageB64}}},
				{Text: prompt},
			},
		}},
		InferenceConfig: inferenceConfig{MaxTokens: c.cfg.MaxTokens},
	}
}

type inferenceConfig struct {
	MaxTokens   int     `json:"maxTokens"`
	Temperature float64 `json:"temperature,omitempty"`
}

// Invoke performs a single synchronous model call and returns the textual
// payload of the first content block. Retrying is the invoker's job.
func (c *Client) Invoke(ctx context.Context, req invokeRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshaling invoke request: %w", err)
	}

	url := fmt.Sprintf("%s/model/%s/invoke", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.ModelID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building invoke request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling model endpoint: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("reading model response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		pe := &ProviderError{StatusCode: resp.StatusCode}
		var eb providerErrorBody
		if json.Unmarshal(respBody, &eb) == nil {
			pe.Message = eb.Message
			pe.Code = eb.Code
			if pe.Code == "" {
				pe.Code = eb.Type
			}
		}
		return "", pe
	}

	var decoded invokeResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", fmt.Errorf("decoding model response: %w", err)
	}

	content := decoded.Output.Message.Content
	if len(content) == 0 || content[0].Text == "" {
		return "", fmt.Errorf("empty model response content")
	}
	return content[0].Text, nil
}

// WithHTTPClient swaps the underlying HTTP client, mainly for tests and for
// callers that need custom transport settings.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.httpc = h
	return c
}
