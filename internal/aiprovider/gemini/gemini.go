// Package gemini реализует клиент Gemini API для генерации ответов чата.
//
// Клиент намеренно не возвращает ошибок вызывающей стороне: без ключа API
// отдаётся детерминированная строка-заглушка, при ошибке провайдера —
// фиксированная строка об ошибке. Сбой провайдера не должен ронять
// сценарий чата.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/magabrotheeeer/ai-pro-platform/internal/lib/sl"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Фиксированные ответы клиента.
const (
	errorReply   = "Error generating content. Please try again."
	emptyReply   = "No response generated."
	mockTemplate = "[MOCK AI RESPONSE] You said: %q.\n\n(To get real responses, please provide a valid Gemini API Key)"
)

// Client — HTTP-клиент Gemini API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// New создаёт клиент Gemini. Пустой apiKey переводит клиент в режим заглушки.
func New(apiKey, model string, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// WithBaseURL заменяет адрес API. Используется в тестах.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = strings.TrimRight(url, "/")
	return c
}

// Типы Gemini API.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Complete возвращает ответ модели на prompt. Никогда не возвращает
// ошибку: без ключа — заглушка, при сбое — фиксированная строка.
func (c *Client) Complete(ctx context.Context, prompt string) string {
	if c.apiKey == "" {
		return fmt.Sprintf(mockTemplate, prompt)
	}

	body := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		c.log.Error("failed to encode gemini request", sl.Err(err))
		return errorReply
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		c.log.Error("failed to build gemini request", sl.Err(err))
		return errorReply
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("gemini request failed", sl.Err(err))
		return errorReply
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Error("gemini returned non-200 status", slog.String("status", resp.Status))
		return errorReply
	}

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.log.Error("failed to decode gemini response", sl.Err(err))
		return errorReply
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return emptyReply
	}
	text := decoded.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return emptyReply
	}
	return text
}
