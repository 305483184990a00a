package handler

import (
	"context"
	"net/http"
	"time"

	"recordmate-backend/internal/model"
	"recordmate-backend/internal/service"
	"recordmate-backend/internal/utils"
	"recordmate-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

type RecordHandler struct {
	records *service.RecordService
	timeout time.Duration
}

func NewRecordHandler(records *service.RecordService, timeout time.Duration) *RecordHandler {
	return &RecordHandler{
		records: records,
		timeout: timeout,
	}
}

// requestContext 给一次生成加上整体超时（包含回退链的全部尝试）。
func requestContext(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}

func bindGenerateInput(c *gin.Context) (service.GenerateInput, bool) {
	var req model.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return service.GenerateInput{}, false
	}

	opts, err := req.ToOptions()
	if err != nil {
		writeError(c, err)
		return service.GenerateInput{}, false
	}
	return service.GenerateInput{
		Observation: req.Observation,
		Options:     opts,
		APIKey:      req.APIKey,
	}, true
}

// Generate 同步生成，返回保存后的记录。
func (h *RecordHandler) Generate(c *gin.Context) {
	in, ok := bindGenerateInput(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	record, err := h.records.Create(ctx, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// StreamGenerate 以 SSE 推送模型输出：chunk 事件逐块推送，result 事件携带最终记录。
func (h *RecordHandler) StreamGenerate(c *gin.Context) {
	in, ok := bindGenerateInput(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	sseWriter := utils.NewSSEWriter(c.Writer)
	defer sseWriter.Close()

	record, err := h.records.CreateStream(ctx, in, func(text string) error {
		return sseWriter.WriteJSON("chunk", gin.H{"content": text})
	})
	if err != nil {
		logger.Warnf("stream generation failed: %v", err)
		if werr := sseWriter.WriteJSON("error", errorBody(err)); werr != nil {
			logger.Errorf("Failed to write SSE: %v", werr)
		}
		return
	}

	if err := sseWriter.WriteJSON("result", record); err != nil {
		logger.Errorf("Failed to write SSE: %v", err)
	}
}

func (h *RecordHandler) List(c *gin.Context) {
	records, err := h.records.List()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func (h *RecordHandler) Get(c *gin.Context) {
	record, err := h.records.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *RecordHandler) Delete(c *gin.Context) {
	if err := h.records.Delete(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Record deleted successfully"})
}

func (h *RecordHandler) Clear(c *gin.Context) {
	deleted, err := h.records.Clear()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *RecordHandler) Options(c *gin.Context) {
	c.JSON(http.StatusOK, h.records.Options())
}
