package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"pocket/internal/config"

	openai "github.com/sashabaranov/go-openai"
)

// Client Groq 文本补全与转写客户端。Groq 暴露 OpenAI 兼容端点，
// 因此直接复用 go-openai SDK，仅替换 BaseURL。
// Client talks to Groq's text-completion and transcription endpoints.
// Groq exposes an OpenAI-compatible surface, so the go-openai SDK is used
// directly with a swapped BaseURL.
type Client struct {
	client          *openai.Client
	model           string
	transcribeModel string
	maxRetries      int
	temperature     float32
	maxTokens       int
	mu              sync.RWMutex
}

// NewClient 创建客户端 / NewClient creates a Groq client
func NewClient(cfg config.ProviderConfig) *Client {
	sdkCfg := openai.DefaultConfig(cfg.APIKey)
	sdkCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	httpClient := &http.Client{}
	if cfg.TimeoutMS > 0 {
		httpClient.Timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	sdkCfg.HTTPClient = httpClient

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 2
	}

	return &Client{
		client:          openai.NewClientWithConfig(sdkCfg),
		model:           cfg.Model,
		transcribeModel: cfg.TranscribeModel,
		maxRetries:      maxRetries,
		temperature:     float32(cfg.Temperature),
		maxTokens:       cfg.MaxTokens,
	}
}

// Model 当前补全模型 / Model returns the current completion model
func (c *Client) Model() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// SetModel 切换补全模型 / SetModel switches the completion model
func (c *Client) SetModel(model string) error {
	model = strings.TrimSpace(model)
	if model == "" {
		return fmt.Errorf("model is empty")
	}
	c.mu.Lock()
	c.model = model
	c.mu.Unlock()
	return nil
}

// Complete 发送一次低温补全请求并返回首个 choice 的文本。
// 失败时指数退避重试；context 取消不重试。
// Complete sends one low-temperature completion request and returns the
// first choice's text. Failures retry with exponential backoff; context
// cancellation is never retried.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.Model(),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(150*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", fmt.Errorf("completion response has no choices")
			}
			return resp.Choices[0].Message.Content, nil
		}
		lastErr = err

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
	}
	return "", fmt.Errorf("completion failed after %d retries: %w", c.maxRetries, lastErr)
}

// Transcribe 上传 WAV 音频并返回转写文本。language 可为空（自动检测）。
// Transcribe uploads WAV audio and returns the transcript. language may be
// empty for auto-detection.
func (c *Client) Transcribe(ctx context.Context, audio []byte, language string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("audio payload is empty")
	}

	req := openai.AudioRequest{
		Model:    c.transcribeModel,
		Reader:   bytes.NewReader(audio),
		FilePath: "command.wav",
		Language: strings.TrimSpace(language),
	}

	resp, err := c.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	return resp.Text, nil
}
