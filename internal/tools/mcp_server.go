package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"recordmate-backend/internal/model"
	"recordmate-backend/internal/service"
	"recordmate-backend/pkg/logger"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const serverName = "recordmate"

// recordMCPTool 描述与 RecordTool.Info 相同的参数，供 MCP 客户端发现。
func recordMCPTool() mcp.Tool {
	return mcp.NewTool(RecordToolName,
		mcp.WithDescription("Generate a Korean school behavior record (행동특성 및 종합의견) from a teacher's observation notes. Returns the area analysis and the final submission text with character counts."),
		mcp.WithString("observation",
			mcp.Required(),
			mcp.Description("Teacher's observation notes about the student"),
		),
		mcp.WithString("mode",
			mcp.Description("rich enriches the wording; strict uses only the given facts"),
			mcp.Enum(string(model.ModeRich), string(model.ModeStrict)),
		),
		mcp.WithNumber("target_length",
			mcp.Description(fmt.Sprintf("Target length in characters including spaces (%d-%d, step %d)",
				model.MinTargetLength, model.MaxTargetLength, model.TargetLengthStep)),
			mcp.Min(model.MinTargetLength),
			mcp.Max(model.MaxTargetLength),
		),
		mcp.WithArray("keywords",
			mcp.Description("Competency keywords to emphasize"),
			mcp.Items(map[string]any{"type": "string", "enum": keywordIDs()}),
		),
		mcp.WithString("model",
			mcp.Description("flash (default) or pro"),
			mcp.Enum(string(model.PreferFlash), string(model.PreferPro)),
		),
	)
}

// recordToolHandler 把 MCP 调用转交给 RecordTool。
func recordToolHandler(rt *RecordTool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(req.GetArguments())
		if err != nil {
			return newErrorResult(RecordToolName, err), nil
		}

		out, err := rt.InvokableRun(ctx, string(args))
		if err != nil {
			return newErrorResult(RecordToolName, err), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}

// NewMCPServer 创建只暴露记录生成工具的 MCP 服务。
func NewMCPServer(records *service.RecordService, version string) *server.MCPServer {
	s := server.NewMCPServer(serverName, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.AddTool(recordMCPTool(), recordToolHandler(NewRecordTool(records)))
	return s
}

// ServeStdio 通过标准输入输出提供 MCP 服务，直到输入关闭。
func ServeStdio(records *service.RecordService, version string) error {
	logger.Infof("MCP server %s %s serving on stdio", serverName, version)
	return server.ServeStdio(NewMCPServer(records, version))
}
