// Package integration talks to systems outside the process. It currently
// holds the client for the text-generation service used by the assistant.
package integration

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"
)

// DefaultCompletionEndpoint is the generative-language API root.
const DefaultCompletionEndpoint = "https://generativelanguage.googleapis.com"

// maxErrorBody bounds how much of a failed response is quoted in errors.
const maxErrorBody = 512

// maxResponseBytes bounds a completion response body.
const maxResponseBytes = 4 << 20

// CompletionRequest is a single-turn generation request.
type CompletionRequest struct {
	Model             string
	UserText          string
	SystemInstruction string
}

// CompletionResponse holds the generated text. Text is empty when the
// service produced no candidates.
type CompletionResponse struct {
	Text string
}

// CompletionClient sends generation requests to the completion service.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// CompletionConfig configures the HTTP completion client.
type CompletionConfig struct {
	Endpoint   string
	APIKey     string
	HTTPClient *http.Client
}

type geminiClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewCompletionClient creates a client that speaks the generateContent REST
// shape at cfg.Endpoint.
func NewCompletionClient(cfg CompletionConfig) CompletionClient {
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = DefaultCompletionEndpoint
	}
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &geminiClient{endpoint: endpoint, apiKey: cfg.APIKey, client: client}
}

type contentPart struct {
	Text string `json:"text"`
}

type content struct {
	Role  string        `json:"role,omitempty"`
	Parts []contentPart `json:"parts"`
}

type generateRequest struct {
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
	Contents          []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

func (c *geminiClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if req.Model == "" {
		return nil, fmt.Errorf("completion request: model is required")
	}

	body := generateRequest{
		Contents: []content{{Role: "user", Parts: []contentPart{{Text: req.UserText}}}},
	}
	if req.SystemInstruction != "" {
		body.SystemInstruction = &content{Parts: []contentPart{{Text: req.SystemInstruction}}}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding completion request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.endpoint, url.PathEscape(req.Model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("x-goog-api-key", c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending completion request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading completion response: %w", err)
	}
	if len(raw) > maxResponseBytes {
		return nil, fmt.Errorf("completion response exceeds %d bytes", maxResponseBytes)
	}

	var decoded generateResponse
	decodeErr := json.Unmarshal(raw, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && decoded.Error != nil {
			return nil, fmt.Errorf("completion service returned %d: %s", resp.StatusCode, decoded.Error.Message)
		}
		return nil, fmt.Errorf("completion service returned %d: %s", resp.StatusCode, truncate(string(raw), maxErrorBody))
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decoding completion response: %w", decodeErr)
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("completion service error %d %s: %s", decoded.Error.Code, decoded.Error.Status, decoded.Error.Message)
	}

	var text strings.Builder
	if len(decoded.Candidates) > 0 {
		for _, part := range decoded.Candidates[0].Content.Parts {
			text.WriteString(part.Text)
		}
	}
	return &CompletionResponse{Text: text.String()}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
