package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OpenAICompatClient calls any OpenAI-compatible /chat/completions endpoint.
// Works with Groq, OpenRouter, vLLM, LiteLLM, self-hosted models, etc.
type OpenAICompatClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewOpenAICompatClient builds an OpenAI-compatible Completer.
// baseURL should include the version prefix, e.g.
// "https://api.groq.com/openai/v1". apiKey can be empty for local models
// that do not require authentication.
func NewOpenAICompatClient(baseURL, apiKey string) *OpenAICompatClient {
	return &OpenAICompatClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Complete implements Completer using the OpenAI chat completions API.
func (c *OpenAICompatClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if strings.TrimSpace(req.Model) == "" {
		return "", fmt.Errorf("chat completions model required")
	}
	if len(req.Messages) == 0 {
		return "", fmt.Errorf("chat completions request requires at least one message")
	}
	reqBody := oaiChatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chat completions request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp oaiErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error.Message != "" {
			return "", fmt.Errorf("chat completions api error: %s", errResp.Error.Message)
		}
		return "", fmt.Errorf("chat completions api error: %s", resp.Status)
	}

	var chatResp oaiChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("chat completions decode: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from chat completions api")
	}
	text := chatResp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty response from chat completions api")
	}
	return text, nil
}

// OpenAI-compatible request/response types.

type oaiChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type oaiChatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type oaiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
