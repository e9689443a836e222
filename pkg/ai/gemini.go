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

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient calls the Google AI Studio (Gemini) API.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiClient constructs a client with the provided API key.
func NewGeminiClient(apiKey string) (*GeminiClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key required")
	}
	return &GeminiClient{
		apiKey:     apiKey,
		baseURL:    defaultGeminiBaseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// WithBaseURL overrides the API endpoint, mainly for tests.
func (c *GeminiClient) WithBaseURL(baseURL string) *GeminiClient {
	c.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return c
}

// Complete implements Completer using the generateContent endpoint.
// System messages map to systemInstruction; everything else becomes a user
// content part.
func (c *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if strings.TrimSpace(req.Model) == "" {
		return "", fmt.Errorf("gemini model required")
	}
	reqBody := generateRequest{
		GenerationConfig: &generationConfig{Temperature: req.Temperature},
	}
	for _, msg := range req.Messages {
		if msg.Role == RoleSystem {
			reqBody.SystemInstruction = &content{
				Parts: []part{{Text: msg.Content}},
			}
			continue
		}
		reqBody.Contents = append(reqBody.Contents, content{
			Role:  "user",
			Parts: []part{{Text: msg.Content}},
		})
	}
	if len(reqBody.Contents) == 0 {
		return "", fmt.Errorf("gemini request requires at least one user message")
	}
	var resp generateResponse
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, normalizeModel(req.Model), c.apiKey)
	if err := c.doJSON(ctx, url, reqBody, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

func normalizeModel(model string) string {
	model = strings.TrimSpace(model)
	model = strings.TrimPrefix(model, "models/")
	return model
}

func (c *GeminiClient) doJSON(ctx context.Context, url string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error.Message != "" {
			return fmt.Errorf("gemini api error: %s", errResp.Error.Message)
		}
		return fmt.Errorf("gemini api error: %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
