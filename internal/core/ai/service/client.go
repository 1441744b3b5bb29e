package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"pantry-cookbook/internal/infrastructure/config"
	"pantry-cookbook/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const systemPrompt = "You are a helpful cooking and recipe assistant. Provide clear, accurate, and practical responses. Format responses as requested."

// 錯誤日誌中回應內容的長度上限
const maxLoggedBody = 300

// Message 對話消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request chat/completions 請求
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream"`
}

// Response chat/completions 響應
type Response struct {
	ID      string    `json:"id"`
	Choices []Choice  `json:"choices"`
	Usage   UsageInfo `json:"usage"`
}

// Choice 選擇結構
type Choice struct {
	Message Message `json:"message"`
}

// UsageInfo 使用量信息
type UsageInfo struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Client OpenAI 相容 API 客戶端（LM Studio、OpenRouter 等）
type Client struct {
	client      *resty.Client
	model       string
	maxTokens   int
	temperature float64
}

// NewClient 創建客戶端
func NewClient(cfg config.AIConfig) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}

	return &Client{
		client:      client,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// Generate 送出單輪對話，maxTokens <= 0 時使用設定值
func (c *Client) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	req := &Request{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: c.temperature,
	}

	var result Response
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		Post("/chat/completions")
	if err != nil {
		return "", eris.Wrap(err, "ai: send chat request")
	}

	if resp.StatusCode() != http.StatusOK {
		common.LogError("AI 服務回傳錯誤狀態",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("model", c.model),
			zap.String("response", sanitizeBody(resp.Body())),
		)
		return "", eris.Errorf("ai: chat returned status %d", resp.StatusCode())
	}
	if len(result.Choices) == 0 {
		return "", eris.New("ai: empty choices in response")
	}

	content := strings.TrimSpace(result.Choices[0].Message.Content)
	if content == "" {
		return "", eris.New("ai: empty content in response")
	}
	common.LogDebug("AI 回應完成",
		zap.String("model", c.model),
		zap.Int("content_length", len(content)),
		zap.Int("total_tokens", result.Usage.TotalTokens),
	)
	return content, nil
}

// Health GET /models 回傳 200 視為健康
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.client.R().SetContext(ctx).Get("/models")
	if err != nil {
		return eris.Wrap(err, "ai: health check")
	}
	if resp.StatusCode() != http.StatusOK {
		return eris.Errorf("ai: health check returned status %d", resp.StatusCode())
	}
	return nil
}

// Model 目前使用的模型名稱
func (c *Client) Model() string {
	return c.model
}

// sanitizeBody 移除內嵌的 base64 資料並截斷，避免寫入過長的日誌
func sanitizeBody(body []byte) string {
	s := string(body)
	if strings.Contains(s, "data:image/") || strings.Contains(s, ";base64,") {
		return "[BASE64_DATA_REMOVED]"
	}
	if len(s) > maxLoggedBody {
		return fmt.Sprintf("%s...(%d bytes)", s[:maxLoggedBody], len(s))
	}
	return s
}
