package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"recordmate-backend/internal/model"
	"recordmate-backend/internal/service"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

const RecordToolName = "generate_behavior_record"

// RecordTool implements tool.InvokableTool for behavior record generation
type RecordTool struct {
	records *service.RecordService
}

func NewRecordTool(records *service.RecordService) *RecordTool {
	return &RecordTool{records: records}
}

type recordToolArgs struct {
	Observation  string   `json:"observation"`
	Mode         string   `json:"mode"`
	TargetLength int      `json:"target_length"`
	Keywords     []string `json:"keywords"`
	Model        string   `json:"model"`
}

type recordToolResult struct {
	RecordID         string `json:"record_id"`
	Final            string `json:"final"`
	Analysis         string `json:"analysis"`
	CharCount        int    `json:"char_count"`
	CharCountNoSpace int    `json:"char_count_no_space"`
	TargetLength     int    `json:"target_length"`
	Mode             string `json:"mode"`
	Model            string `json:"model"`
}

func keywordIDs() []string {
	ids := make([]string, 0, len(model.Keywords))
	for _, k := range model.Keywords {
		ids = append(ids, string(k.ID))
	}
	return ids
}

func (t *RecordTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: RecordToolName,
		Desc: "根据教师对学生的观察内容，生成韩国学生生活记录簿“行动特征及综合意见”的文本，返回领域分析和可直接提交的正文。",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"observation": {
				Type:     schema.String,
				Desc:     "教师对学生的观察内容，必填参数",
				Required: true,
			},
			"mode": {
				Type: schema.String,
				Desc: "rich 会补充润色；strict 只使用输入中的事实",
				Enum: []string{string(model.ModeRich), string(model.ModeStrict)},
			},
			"target_length": {
				Type: schema.Integer,
				Desc: fmt.Sprintf("目标字数（含空格），%d-%d，步长 %d", model.MinTargetLength, model.MaxTargetLength, model.TargetLengthStep),
			},
			"keywords": {
				Type: schema.Array,
				Desc: "需要强调的能力关键词",
				ElemInfo: &schema.ParameterInfo{
					Type: schema.String,
					Enum: keywordIDs(),
				},
			},
			"model": {
				Type: schema.String,
				Desc: "flash（默认）或 pro",
				Enum: []string{string(model.PreferFlash), string(model.PreferPro)},
			},
		}),
	}, nil
}

func (t *RecordTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var args recordToolArgs
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		return "", fmt.Errorf("failed to parse arguments: %w", err)
	}

	req := model.GenerateRequest{
		Observation:  args.Observation,
		Mode:         args.Mode,
		TargetLength: args.TargetLength,
		Keywords:     args.Keywords,
		Model:        args.Model,
	}
	options, err := req.ToOptions()
	if err != nil {
		return "", err
	}

	record, err := t.records.Create(ctx, service.GenerateInput{
		Observation: args.Observation,
		Options:     options,
	})
	if err != nil {
		return "", err
	}

	resultBytes, err := json.Marshal(recordToolResult{
		RecordID:         record.ID,
		Final:            record.Result.Final,
		Analysis:         record.Result.Analysis,
		CharCount:        record.Result.CharCount,
		CharCountNoSpace: record.Result.CharCountNoSpace,
		TargetLength:     record.Result.TargetLength,
		Mode:             string(record.Result.Mode),
		Model:            record.Result.Model,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(resultBytes), nil
}

// GetRecordTools returns the tools exposed by this service
func GetRecordTools(records *service.RecordService) []tool.BaseTool {
	return []tool.BaseTool{
		NewRecordTool(records),
	}
}
