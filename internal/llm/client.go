// internal/llm/client.go
package llm

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

	"nutrilog/internal/apierr"
	"nutrilog/internal/config"
)

// Completer is a single-shot text completion against the hosted model.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type Client struct {
	httpClient *http.Client
	mode       string
	baseURL    string
	apiKey     string
	model      string
	timeout    time.Duration
}

func NewClient(cfg config.ModelConfig) *Client {
	return &Client{
		// per-call deadlines come from the context; this is a backstop
		httpClient: &http.Client{Timeout: cfg.Timeout + 5*time.Second},
		mode:       cfg.Mode,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Name,
		timeout:    cfg.Timeout,
	}
}

// Complete sends one system+user prompt pair and returns the reply text.
// Transport failures and deadline expiry are apierr.ErrModelUnavailable; an
// envelope that cannot be decoded is apierr.ErrModelResponseInvalid.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	switch c.mode {
	case config.ModelModeOpenAI:
		return c.chatCompletion(ctx, system, user)
	default:
		return c.gatewayCompletion(ctx, system, user)
	}
}

func (c *Client) gatewayCompletion(ctx context.Context, system, user string) (string, error) {
	completionRequest := map[string]interface{}{
		"model":         c.model,
		"system_prompt": system,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": user,
			},
		},
		"max_tokens":  2000,
		"temperature": 0.1,
	}

	text, err := c.callGateway(ctx, "create_completion", completionRequest)
	if err != nil {
		return "", err
	}

	// The gateway wraps the completion as JSON with a "content" field; some
	// deployments return the bare text instead.
	var completion struct {
		Content *string `json:"content"`
	}
	if err := json.Unmarshal([]byte(text), &completion); err == nil && completion.Content != nil {
		return *completion.Content, nil
	}
	return text, nil
}

func (c *Client) callGateway(ctx context.Context, toolName string, args interface{}) (string, error) {
	url := fmt.Sprintf("%s/openrouter-gateway", c.baseURL)

	requestData := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name":      toolName,
			"arguments": args,
		},
	}

	var mcpResponse struct {
		Result struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := c.postJSON(ctx, url, requestData, &mcpResponse); err != nil {
		return "", err
	}

	if mcpResponse.Error != nil {
		return "", apierr.Wrap(apierr.ErrModelUnavailable, "gateway", errors.New(mcpResponse.Error.Message))
	}
	if len(mcpResponse.Result.Content) == 0 {
		return "", apierr.Wrap(apierr.ErrModelResponseInvalid, "gateway", errors.New("unexpected response format"))
	}
	return mcpResponse.Result.Content[0].Text, nil
}

func (c *Client) chatCompletion(ctx context.Context, system, user string) (string, error) {
	url := fmt.Sprintf("%s/v1/chat/completions", c.baseURL)

	req := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"temperature": 0.1,
	}

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := c.postJSON(ctx, url, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", apierr.Wrap(apierr.ErrModelResponseInvalid, "chat completion", errors.New("no choices in response"))
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) postJSON(ctx context.Context, url string, body, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apierr.Wrap(apierr.ErrModelUnavailable, "model request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return apierr.Wrap(apierr.ErrModelUnavailable, "model request",
			fmt.Errorf("request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes))))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return apierr.Wrap(apierr.ErrModelUnavailable, "model request", ctx.Err())
		}
		return apierr.Wrap(apierr.ErrModelResponseInvalid, "decode model response", err)
	}
	return nil
}
