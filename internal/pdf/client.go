// Package pdf содержит клиент внешнего сервиса генерации PDF.
// Генерация best-effort: ошибка рендеринга логируется вызывающим кодом
// и никогда не отменяет основную операцию.
package pdf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client отправляет подготовленный текст документа во внешний рендер-сервис
// и получает готовый PDF.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient создаёт клиент. Пустой baseURL означает, что генерация PDF отключена.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Enabled сообщает, настроен ли внешний рендер-сервис.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

type renderRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Format  string `json:"format"`
}

// Render преобразует текст документа в PDF.
func (c *Client) Render(ctx context.Context, title, content string) ([]byte, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("pdf: рендер-сервис не настроен")
	}

	body, err := json.Marshal(renderRequest{Title: title, Content: content, Format: "markdown"})
	if err != nil {
		return nil, fmt.Errorf("pdf: сериализация запроса: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("pdf: создание запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pdf: запрос к рендер-сервису: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("pdf: рендер-сервис вернул %d: %s", resp.StatusCode, string(payload))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("pdf: чтение ответа: %w", err)
	}

	return data, nil
}
