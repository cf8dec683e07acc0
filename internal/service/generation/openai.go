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

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIProvider генерирует контент викторин через chat completions API.
// Модель может вызвать инструмент scrape_web_page для обоснования
// вопросов; перед финальным ответом выполняется один раунд инструментов.
type OpenAIProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
	scraper *Scraper
}

// NewOpenAIProvider создает провайдера OpenAI chat completions
func NewOpenAIProvider(client *http.Client, apiKey, model string, scraper *Scraper) *OpenAIProvider {
	return &OpenAIProvider{
		client:  client,
		baseURL: defaultOpenAIBaseURL,
		apiKey:  apiKey,
		model:   model,
		scraper: scraper,
	}
}

type chatCompletionRequest struct {
	Model    string                  `json:"model"`
	Messages []chatCompletionMessage `json:"messages"`
	Tools    []chatTool              `json:"tools,omitempty"`
}

type chatCompletionMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []chatToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type chatTool struct {
	Type     string           `json:"type"`
	Function chatToolFunction `json:"function"`
}

type chatToolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type chatToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatCompletionMessage `json:"message"`
	} `json:"choices"`
}

func scrapeTool() chatTool {
	return chatTool{
		Type: "function",
		Function: chatToolFunction{
			Name:        "scrape_web_page",
			Description: "Fetch and summarize visible text from a URL.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {"url": {"type": "string"}},
				"required": ["url"]
			}`),
		},
	}
}

// Generate выполняет chat completion: один раунд вызовов scrape_web_page,
// затем их вывод передается модели для финального ответа.
func (p *OpenAIProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []chatCompletionMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}

	response, err := p.sendChatRequest(ctx, chatCompletionRequest{
		Model:    p.model,
		Messages: messages,
		Tools:    []chatTool{scrapeTool()},
	})
	if err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}

	message := response.Choices[0].Message
	toolMessages := p.runToolCalls(ctx, message.ToolCalls)
	if len(toolMessages) == 0 {
		return message.Content, nil
	}

	// Один повторный запрос с добавленными результатами инструментов
	followupMessages := append(append(messages, message), toolMessages...)
	followup, err := p.sendChatRequest(ctx, chatCompletionRequest{
		Model:    p.model,
		Messages: followupMessages,
	})
	if err != nil {
		return "", err
	}
	if len(followup.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}
	return followup.Choices[0].Message.Content, nil
}

// runToolCalls выполняет вызовы scrape_web_page и возвращает сообщения
// с ролью tool и извлеченным текстом. URL не на http(s) отклоняются.
func (p *OpenAIProvider) runToolCalls(ctx context.Context, toolCalls []chatToolCall) []chatCompletionMessage {
	var outputs []chatCompletionMessage
	for _, call := range toolCalls {
		if call.Function.Name != "scrape_web_page" {
			continue
		}
		var args struct {
			URL string `json:"url"`
		}
		_ = json.Unmarshal([]byte(call.Function.Arguments), &args)

		url := strings.TrimSpace(args.URL)
		var result string
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			result = "Invalid URL provided."
		} else {
			result = p.scraper.Scrape(ctx, url)
		}
		outputs = append(outputs, chatCompletionMessage{
			Role:       "tool",
			Content:    result,
			ToolCallID: call.ID,
		})
	}
	return outputs
}

func (p *OpenAIProvider) sendChatRequest(ctx context.Context, request chatCompletionRequest) (*chatCompletionResponse, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var response chatCompletionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, err
	}
	return &response, nil
}
