package model

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"recordmate-backend/internal/config"
	"recordmate-backend/internal/utils"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/qwen"
	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/sirupsen/logrus"
)

// GeminiBaseURL 是 Google 提供的 OpenAI 兼容接口地址。
const GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

var ErrNoAPIKey = errors.New("api key not configured")

// ChatModelFactory 按 API Key 构造聊天模型；请求携带自己的 Key 时会单独构造一次。
type ChatModelFactory func(ctx context.Context, apiKey string) (einoModel.BaseChatModel, error)

// NewChatModelFactory 返回绑定了 LLM 配置的工厂。
func NewChatModelFactory(cfg config.LLMConfig, log *logrus.Logger) ChatModelFactory {
	return func(ctx context.Context, apiKey string) (einoModel.BaseChatModel, error) {
		return NewChatModel(ctx, cfg, apiKey, log)
	}
}

// NewChatModel 根据 provider 创建聊天模型。模型名在每次调用时通过 einoModel.WithModel 覆盖。
func NewChatModel(ctx context.Context, cfg config.LLMConfig, apiKey string, log *logrus.Logger) (einoModel.BaseChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNoAPIKey
	}

	httpClient := utils.NewHTTPClient(cfg.Timeout)
	httpClient.Transport = NewDebugTransport(httpClient.Transport, cfg.DebugRequest, log)

	switch cfg.Provider {
	case "gemini":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = GeminiBaseURL
		}
		return newOpenAIChatModel(apiKey, baseURL, cfg.FlashModel, cfg.MaxTokens, httpClient), nil
	case "openai":
		return newOpenAIChatModel(apiKey, cfg.BaseURL, cfg.FlashModel, cfg.MaxTokens, httpClient), nil
	case "ark":
		arkCfg := &ark.ChatModelConfig{
			APIKey: apiKey,
			Model:  cfg.FlashModel,
			CustomHeader: map[string]string{
				"X-Ark-Thinking-Mode": "disable",
			},
		}
		if cfg.BaseURL != "" {
			arkCfg.BaseURL = cfg.BaseURL
		}
		cm, err := ark.NewChatModel(ctx, arkCfg)
		if err != nil {
			return nil, fmt.Errorf("create ark model: %w", err)
		}
		return cm, nil
	case "qwen":
		qwenCfg := &qwen.ChatModelConfig{
			BaseURL:    cfg.BaseURL,
			APIKey:     apiKey,
			Model:      cfg.FlashModel,
			Timeout:    cfg.Timeout,
			HTTPClient: httpClient,
		}
		if cfg.MaxTokens > 0 {
			maxTokens := cfg.MaxTokens
			qwenCfg.MaxTokens = &maxTokens
		}
		cm, err := qwen.NewChatModel(ctx, qwenCfg)
		if err != nil {
			return nil, fmt.Errorf("create qwen model: %w", err)
		}
		return cm, nil
	default:
		return nil, fmt.Errorf("unsupported model provider: %s", cfg.Provider)
	}
}

// DebugTransport 在 debug 打开时记录发往模型服务的请求，敏感字段会被隐藏。
type DebugTransport struct {
	base    http.RoundTripper
	enabled bool
	log     *logrus.Logger
}

func NewDebugTransport(base http.RoundTripper, enabled bool, log *logrus.Logger) *DebugTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &DebugTransport{base: base, enabled: enabled, log: log}
}

func (t *DebugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.enabled && req.Method == http.MethodPost {
		t.logRequest(req)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil && t.enabled {
		t.log.Errorf("[llm debug] request to %s failed: %v", RedactURL(req.URL.String()), err)
	}
	if resp != nil && t.enabled {
		t.log.Debugf("[llm debug] %s -> %d", RedactURL(req.URL.String()), resp.StatusCode)
	}
	return resp, err
}

func (t *DebugTransport) logRequest(req *http.Request) {
	fields := logrus.Fields{
		"method": req.Method,
		"url":    RedactURL(req.URL.String()),
	}
	for name, values := range req.Header {
		if isSensitiveHeader(name) {
			fields["header."+name] = "[REDACTED]"
		} else {
			fields["header."+name] = strings.Join(values, ", ")
		}
	}

	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			t.log.Errorf("[llm debug] read request body: %v", err)
			return
		}
		// 恢复请求体，以免影响实际请求
		req.Body = io.NopCloser(bytes.NewReader(body))
		fields["body"] = RedactJSON(string(body))
		fields["body_size"] = len(body)
	}

	t.log.WithFields(fields).Info("[llm debug] request")
}

var (
	sensitiveFieldRe = regexp.MustCompile(`"(api_key|apiKey|password|secret|token)"\s*:\s*"[^"]*"`)
	keyParamRe       = regexp.MustCompile(`([?&]key=)[^&]+`)
)

// RedactJSON 隐藏 JSON 文本中敏感字段的值。
func RedactJSON(s string) string {
	return sensitiveFieldRe.ReplaceAllString(s, `"$1": "[REDACTED]"`)
}

// RedactURL 隐藏查询参数里的 key。
func RedactURL(s string) string {
	return keyParamRe.ReplaceAllString(s, "${1}[REDACTED]")
}

func isSensitiveHeader(name string) bool {
	for _, sensitive := range []string{"authorization", "x-api-key", "x-goog-api-key", "x-auth-token", "cookie"} {
		if strings.EqualFold(name, sensitive) {
			return true
		}
	}
	return false
}
