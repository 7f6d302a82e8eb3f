// Package ai содержит клиент LLM-провайдера для генерации текста документов.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client общается с OpenAI-совместимым API.
type Client struct {
	baseURL string
	model   string
	http    *http.Client
}

// NewClient создаёт клиент. Пустой baseURL отключает интеграцию.
func NewClient(baseURL, model string) *Client {
	return &Client{
		baseURL: baseURL,
		model:   model,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Enabled сообщает, настроен ли LLM-провайдер.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
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
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete отправляет системный и пользовательский промпты и возвращает текст ответа.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("ai: провайдер не настроен")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("ai: сериализация запроса: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ai: создание запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai: запрос к провайдеру: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ai: провайдер вернул статус %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("ai: разбор ответа: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("ai: пустой ответ провайдера")
	}

	return parsed.Choices[0].Message.Content, nil
}

// DraftTemplate просит провайдера набросать текст шаблона документа.
func (c *Client) DraftTemplate(ctx context.Context, templateType, description string) (string, error) {
	systemPrompt := "You are an assistant that drafts business document templates. " +
		"Use {{placeholder}} syntax for client-specific values. Reply with the template body only."
	userPrompt := fmt.Sprintf("Draft a %s template: %s", templateType, description)

	return c.Complete(ctx, systemPrompt, userPrompt)
}
