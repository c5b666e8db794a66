package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/campuslib/backend/logger"
)

// fallbackResponse is returned when the gateway answers without a choice.
const fallbackResponse = "I couldn't generate a recommendation at this time."

// AIClient calls an OpenAI-compatible chat-completions gateway. One request,
// one response; no streaming, no retries.
type AIClient struct {
	GatewayURL string
	APIKey     string
	Model      string
	HTTPClient *http.Client
	Log        *logger.Logger
}

func NewAIClient(gatewayURL, apiKey, model string, log *logger.Logger) *AIClient {
	return &AIClient{
		GatewayURL: gatewayURL,
		APIKey:     apiKey,
		Model:      model,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		Log:        log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one system+user exchange and returns the first choice's
// content, or a fixed fallback string when the gateway answers empty.
func (c *AIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("AI_API_KEY is not configured")
	}
	payload, err := json.Marshal(chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.GatewayURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if c.Log != nil {
			c.Log.Error("AI gateway error", "status", resp.StatusCode, "body", string(body))
		}
		return "", fmt.Errorf("failed to get AI recommendation")
	}
	var data chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", err
	}
	if len(data.Choices) == 0 || data.Choices[0].Message.Content == "" {
		return fallbackResponse, nil
	}
	return data.Choices[0].Message.Content, nil
}
