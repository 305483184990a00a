package service

import (
	"context"
	"errors"
	"sync"

	"recordmate-backend/internal/config"
	"recordmate-backend/internal/model"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type fakeCall struct {
	Model       string
	Temperature float32
	Messages    []*schema.Message
}

// fakeChatModel 按模型名返回预设回复或错误。
type fakeChatModel struct {
	mu        sync.Mutex
	replies   map[string]string
	failures  map[string]error
	chunkSize int
	calls     []fakeCall
}

func newFakeChatModel() *fakeChatModel {
	return &fakeChatModel{
		replies:   map[string]string{},
		failures:  map[string]error{},
		chunkSize: 5,
	}
}

func (f *fakeChatModel) record(msgs []*schema.Message, opts []einoModel.Option) (string, error) {
	o := einoModel.GetCommonOptions(&einoModel.Options{}, opts...)
	call := fakeCall{Messages: msgs}
	if o.Model != nil {
		call.Model = *o.Model
	}
	if o.Temperature != nil {
		call.Temperature = *o.Temperature
	}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	if err, ok := f.failures[call.Model]; ok {
		return "", err
	}
	reply, ok := f.replies[call.Model]
	if !ok {
		return "", errors.New("404 model not found: " + call.Model)
	}
	return reply, nil
}

func (f *fakeChatModel) Generate(_ context.Context, msgs []*schema.Message, opts ...einoModel.Option) (*schema.Message, error) {
	reply, err := f.record(msgs, opts)
	if err != nil {
		return nil, err
	}
	return schema.AssistantMessage(reply, nil), nil
}

func (f *fakeChatModel) Stream(_ context.Context, msgs []*schema.Message, opts ...einoModel.Option) (*schema.StreamReader[*schema.Message], error) {
	reply, err := f.record(msgs, opts)
	if err != nil {
		return nil, err
	}

	runes := []rune(reply)
	var chunks []*schema.Message
	for i := 0; i < len(runes); i += f.chunkSize {
		end := i + f.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, schema.AssistantMessage(string(runes[i:end]), nil))
	}
	return schema.StreamReaderFromArray(chunks), nil
}

func (f *fakeChatModel) models() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Model)
	}
	return out
}

func testLLMConfig() config.LLMConfig {
	return config.LLMConfig{
		Provider:       "gemini",
		APIKey:         "server-key",
		FlashModel:     "gemini-1.5-flash",
		ProModel:       "gemini-1.5-pro",
		FallbackModels: []string{"gemini-1.5-flash", "gemini-pro"},
	}
}

func fakeFactory(cm *fakeChatModel, seenKeys *[]string) model.ChatModelFactory {
	return func(_ context.Context, apiKey string) (einoModel.BaseChatModel, error) {
		if seenKeys != nil {
			*seenKeys = append(*seenKeys, apiKey)
		}
		return cm, nil
	}
}
