package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"recordmate-backend/internal/config"
	"recordmate-backend/internal/service"
	"recordmate-backend/internal/storage"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

type stubChatModel struct {
	reply string
	err   error
}

func (s *stubChatModel) Generate(_ context.Context, _ []*schema.Message, _ ...einoModel.Option) (*schema.Message, error) {
	if s.err != nil {
		return nil, s.err
	}
	return schema.AssistantMessage(s.reply, nil), nil
}

func (s *stubChatModel) Stream(ctx context.Context, msgs []*schema.Message, opts ...einoModel.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := s.Generate(ctx, msgs, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func newTestRecordService(t *testing.T, cm einoModel.BaseChatModel) *service.RecordService {
	t.Helper()
	cfg := config.LLMConfig{
		Provider:   "gemini",
		APIKey:     "server-key",
		FlashModel: "gemini-1.5-flash",
		ProModel:   "gemini-1.5-pro",
	}
	factory := func(context.Context, string) (einoModel.BaseChatModel, error) { return cm, nil }
	gen, err := service.NewGenerator(context.Background(), cfg, service.NewPromptBuilder(config.PromptConfig{}), factory)
	require.NoError(t, err)

	store := storage.NewMemoryStorage()
	require.NoError(t, store.Init())
	return service.NewRecordService(gen, store, config.HistoryConfig{Enabled: true})
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	switch c := res.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	}
	t.Fatalf("unexpected content type %T", res.Content[0])
	return ""
}

func TestRecordToolInfo(t *testing.T) {
	rt := NewRecordTool(nil)
	info, err := rt.Info(context.Background())
	require.NoError(t, err)
	require.Equal(t, RecordToolName, info.Name)
	require.NotNil(t, info.ParamsOneOf)
}

func TestRecordToolInvokableRun(t *testing.T) {
	svc := newTestRecordService(t, &stubChatModel{reply: "- 성실\n---SPLIT---\n매일 일찍 등교함."})
	rt := NewRecordTool(svc)

	out, err := rt.InvokableRun(context.Background(),
		`{"observation":"매일 일찍 등교함","mode":"strict","target_length":200,"keywords":["diligence"]}`)
	require.NoError(t, err)

	var res recordToolResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, "매일 일찍 등교함.", res.Final)
	require.Equal(t, "- 성실", res.Analysis)
	require.Equal(t, 10, res.CharCount)
	require.Equal(t, 8, res.CharCountNoSpace)
	require.Equal(t, 200, res.TargetLength)
	require.Equal(t, "strict", res.Mode)
	require.NotEmpty(t, res.RecordID)

	_, err = svc.Get(res.RecordID)
	require.NoError(t, err)
}

func TestRecordToolRejectsBadArguments(t *testing.T) {
	rt := NewRecordTool(newTestRecordService(t, &stubChatModel{reply: "x"}))

	_, err := rt.InvokableRun(context.Background(), `not json`)
	require.Error(t, err)

	_, err = rt.InvokableRun(context.Background(), `{"observation":"관찰","mode":"loose"}`)
	require.Error(t, err)

	_, err = rt.InvokableRun(context.Background(), `{"observation":"  "}`)
	require.ErrorIs(t, err, service.ErrEmptyObservation)
}

func TestMCPHandlerSuccess(t *testing.T) {
	svc := newTestRecordService(t, &stubChatModel{reply: "분석\n---SPLIT---\n최종 문구"})
	handler := recordToolHandler(NewRecordTool(svc))

	req := mcp.CallToolRequest{}
	req.Params.Name = RecordToolName
	req.Params.Arguments = map[string]any{
		"observation":   "관찰 내용",
		"target_length": float64(300),
		"keywords":      []any{"academic", "career"},
	}

	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Contains(t, resultText(t, res), `"final":"최종 문구"`)
}

func TestMCPHandlerReportsToolErrors(t *testing.T) {
	svc := newTestRecordService(t, &stubChatModel{err: errors.New("429 RESOURCE_EXHAUSTED")})
	handler := recordToolHandler(NewRecordTool(svc))

	req := mcp.CallToolRequest{}
	req.Params.Name = RecordToolName
	req.Params.Arguments = map[string]any{"observation": "관찰 내용"}

	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.True(t, res.IsError)

	var body MCPErrorResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &body))
	require.False(t, body.Success)
	require.Equal(t, string(service.KindQuota), body.ErrorKind)
	require.Equal(t, RecordToolName, body.ToolName)
}

func TestMCPServerListsTool(t *testing.T) {
	s := NewMCPServer(newTestRecordService(t, &stubChatModel{reply: "x"}), "test")

	resp := s.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	out, err := json.Marshal(resp)
	require.NoError(t, err)
	require.Contains(t, string(out), RecordToolName)
}
