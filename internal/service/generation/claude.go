package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultClaudeBaseURL    = "https://api.anthropic.com/v1"
	claudeAPIVersion        = "2023-06-01"
	claudeMaxResponseTokens = 1500
)

// ClaudeProvider генерирует контент викторин через Anthropic messages API
type ClaudeProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewClaudeProvider создает провайдера Claude messages API
func NewClaudeProvider(client *http.Client, apiKey, model string) *ClaudeProvider {
	return &ClaudeProvider{
		client:  client,
		baseURL: defaultClaudeBaseURL,
		apiKey:  apiKey,
		model:   model,
	}
}

type claudeRequest struct {
	Model     string          `json:"model"`
	System    string          `json:"system"`
	Messages  []claudeMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Generate отправляет один messages-запрос и склеивает текстовые блоки ответа
func (p *ClaudeProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	request := claudeRequest{
		Model:     p.model,
		System:    systemPrompt,
		Messages:  []claudeMessage{{Role: "user", Content: userPrompt}},
		MaxTokens: claudeMaxResponseTokens,
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", claudeAPIVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Claude API error (status %d): %s", resp.StatusCode, string(body))
	}

	var response claudeResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}

	var output strings.Builder
	for _, block := range response.Content {
		output.WriteString(block.Text)
	}
	return output.String(), nil
}
