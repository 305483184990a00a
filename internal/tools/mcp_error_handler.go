package tools

import (
	"encoding/json"

	"recordmate-backend/internal/service"
	"recordmate-backend/pkg/logger"

	"github.com/mark3labs/mcp-go/mcp"
)

// MCPErrorResult 定义MCP工具错误结果的统一格式
type MCPErrorResult struct {
	Success      bool   `json:"success"`
	Error        bool   `json:"error"`
	ErrorKind    string `json:"error_kind,omitempty"`
	ErrorMessage string `json:"error_message"`
	ToolName     string `json:"tool_name"`
}

// newErrorResult 把工具执行错误转换为 IsError 的工具结果，而不是协议层错误
func newErrorResult(name string, err error) *mcp.CallToolResult {
	logger.Warnf("MCP工具 '%s' 执行失败: %v", name, err)

	errorResult := MCPErrorResult{
		Success:      false,
		Error:        true,
		ErrorMessage: service.UserMessage(err),
		ToolName:     name,
	}
	if k := service.Classify(err); k != service.KindUnknown {
		errorResult.ErrorKind = string(k)
	}

	errorJSON, mErr := json.Marshal(errorResult)
	if mErr != nil {
		return mcp.NewToolResultError(errorResult.ErrorMessage)
	}
	return mcp.NewToolResultError(string(errorJSON))
}
