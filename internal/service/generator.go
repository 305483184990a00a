package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"recordmate-backend/internal/config"
	"recordmate-backend/internal/model"
	"recordmate-backend/pkg/logger"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// GenerateInput 是一次生成请求。APIKey 仅在服务端没有配置 Key 时生效。
type GenerateInput struct {
	Observation string
	Options     model.Options
	APIKey      string
}

// Generator 组装提示词、按回退链调用模型并整理输出。
type Generator struct {
	cfg     config.LLMConfig
	prompts *PromptBuilder
	chain   *FallbackChain
	factory model.ChatModelFactory
	shared  einoModel.BaseChatModel
}

func NewGenerator(ctx context.Context, cfg config.LLMConfig, prompts *PromptBuilder, factory model.ChatModelFactory) (*Generator, error) {
	if prompts == nil {
		return nil, errors.New("prompt builder is required")
	}
	if factory == nil {
		return nil, errors.New("chat model factory is required")
	}

	g := &Generator{
		cfg:     cfg,
		prompts: prompts,
		chain:   NewFallbackChain(cfg.FallbackDelay),
		factory: factory,
	}

	if cfg.APIKey != "" {
		cm, err := factory(ctx, cfg.APIKey)
		if err != nil {
			return nil, fmt.Errorf("create chat model: %w", err)
		}
		g.shared = cm
	} else {
		logger.Warnf("no API key configured for provider %s; requests must supply one", cfg.Provider)
	}
	return g, nil
}

// HasServerKey 表示服务端是否配置了 API Key。
func (g *Generator) HasServerKey() bool {
	return g.shared != nil
}

// ClientKeyAllowed 表示页面是否应展示 API Key 输入框。
func (g *Generator) ClientKeyAllowed() bool {
	return g.shared == nil && g.cfg.AllowClientKey
}

// PreferredModel 返回偏好对应的模型名。
func (g *Generator) PreferredModel(pref model.ModelPreference) string {
	if pref == model.PreferPro {
		return g.cfg.ProModel
	}
	return g.cfg.FlashModel
}

// Candidates 返回本次请求要依次尝试的模型名。
func (g *Generator) Candidates(pref model.ModelPreference) []string {
	return Candidates(g.PreferredModel(pref), g.cfg.FallbackModels)
}

func (g *Generator) chatModel(ctx context.Context, requestKey string) (einoModel.BaseChatModel, error) {
	if g.shared != nil {
		return g.shared, nil
	}
	if !g.cfg.AllowClientKey || strings.TrimSpace(requestKey) == "" {
		return nil, model.ErrNoAPIKey
	}
	return g.factory(ctx, strings.TrimSpace(requestKey))
}

func (g *Generator) prepare(ctx context.Context, in GenerateInput) (einoModel.BaseChatModel, []*schema.Message, model.Options, error) {
	if strings.TrimSpace(in.Observation) == "" {
		return nil, nil, model.Options{}, ErrEmptyObservation
	}
	opts := in.Options.Normalize()
	if err := opts.Validate(); err != nil {
		return nil, nil, model.Options{}, err
	}

	cm, err := g.chatModel(ctx, in.APIKey)
	if err != nil {
		return nil, nil, model.Options{}, err
	}

	msgs, err := g.prompts.Build(ctx, in.Observation, opts)
	if err != nil {
		return nil, nil, model.Options{}, err
	}
	return cm, msgs, opts, nil
}

func (g *Generator) callOptions(modelName string, opts model.Options) []einoModel.Option {
	callOpts := []einoModel.Option{
		einoModel.WithModel(modelName),
		einoModel.WithTemperature(opts.Mode.Temperature()),
	}
	if g.cfg.MaxTokens > 0 {
		callOpts = append(callOpts, einoModel.WithMaxTokens(g.cfg.MaxTokens))
	}
	return callOpts
}

// Generate 执行一次完整生成。
func (g *Generator) Generate(ctx context.Context, in GenerateInput) (model.Result, error) {
	cm, msgs, opts, err := g.prepare(ctx, in)
	if err != nil {
		return model.Result{}, err
	}

	var text string
	used, attempts, err := g.chain.Run(ctx, g.Candidates(opts.Model), func(ctx context.Context, name string) error {
		msg, err := cm.Generate(ctx, msgs, g.callOptions(name, opts)...)
		if err != nil {
			return err
		}
		if msg == nil || strings.TrimSpace(msg.Content) == "" {
			return ErrEmptyResponse
		}
		text = msg.Content
		return nil
	})
	if err != nil {
		return model.Result{}, err
	}

	logger.Infof("generated record with %s in %s mode after %d attempt(s)", used, opts.Mode, len(attempts))

	result, err := PostProcess(text, opts, used)
	if err != nil {
		return model.Result{}, err
	}
	result.Attempts = attempts
	return result, nil
}

// Stream 与 Generate 相同，但把模型输出逐块交给 onChunk。
// 回退只发生在流建立之前；流开始后出错直接返回。
func (g *Generator) Stream(ctx context.Context, in GenerateInput, onChunk func(string) error) (model.Result, error) {
	cm, msgs, opts, err := g.prepare(ctx, in)
	if err != nil {
		return model.Result{}, err
	}

	var sr *schema.StreamReader[*schema.Message]
	used, attempts, err := g.chain.Run(ctx, g.Candidates(opts.Model), func(ctx context.Context, name string) error {
		s, err := cm.Stream(ctx, msgs, g.callOptions(name, opts)...)
		if err != nil {
			return err
		}
		sr = s
		return nil
	})
	if err != nil {
		return model.Result{}, err
	}
	defer sr.Close()

	var full strings.Builder
	for {
		chunk, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.Result{}, fmt.Errorf("stream from %s: %w", used, err)
		}
		if chunk == nil || chunk.Content == "" {
			continue
		}
		full.WriteString(chunk.Content)
		if err := onChunk(chunk.Content); err != nil {
			return model.Result{}, err
		}
	}

	result, err := PostProcess(full.String(), opts, used)
	if err != nil {
		return model.Result{}, err
	}
	result.Attempts = attempts
	return result, nil
}
