package handler

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"recordmate-backend/internal/model"
	"recordmate-backend/internal/service"
	"recordmate-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// PageHandler 渲染观察内容表单和生成结果。
type PageHandler struct {
	records *service.RecordService
	tmpl    *template.Template
	timeout time.Duration
}

func NewPageHandler(records *service.RecordService, tmpl *template.Template, timeout time.Duration) *PageHandler {
	return &PageHandler{
		records: records,
		tmpl:    tmpl,
		timeout: timeout,
	}
}

type pageData struct {
	Observation      string
	Options          model.Options
	Keywords         []model.KeywordInfo
	MinLength        int
	MaxLength        int
	LengthStep       int
	FlashModel       string
	ProModel         string
	ClientKeyAllowed bool
	ShortInput       bool

	Result       *model.Result
	AnalysisHTML template.HTML
	ModeLabel    string
	Error        string
}

func (h *PageHandler) newPageData(observation string, opts model.Options) pageData {
	gen := h.records.Generator()
	return pageData{
		Observation:      observation,
		Options:          opts,
		Keywords:         model.Keywords,
		MinLength:        model.MinTargetLength,
		MaxLength:        model.MaxTargetLength,
		LengthStep:       model.TargetLengthStep,
		FlashModel:       gen.PreferredModel(model.PreferFlash),
		ProModel:         gen.PreferredModel(model.PreferPro),
		ClientKeyAllowed: gen.ClientKeyAllowed(),
		ShortInput:       model.ShortInput(observation),
		ModeLabel:        opts.Mode.Label(),
	}
}

func (h *PageHandler) render(c *gin.Context, status int, data pageData) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(c.Writer, "index.html", data); err != nil {
		logger.Errorf("Failed to render page: %v", err)
	}
}

// Index 展示空白表单。
func (h *PageHandler) Index(c *gin.Context) {
	h.render(c, http.StatusOK, h.newPageData("", model.DefaultOptions()))
}

// formRequest 从表单字段构造请求，keywords 可以出现多次。
func formRequest(c *gin.Context) (model.GenerateRequest, error) {
	req := model.GenerateRequest{
		Observation: c.PostForm("observation"),
		Mode:        c.PostForm("mode"),
		Keywords:    c.PostFormArray("keywords"),
		Model:       c.PostForm("model"),
		APIKey:      c.PostForm("api_key"),
	}
	if raw := strings.TrimSpace(c.PostForm("target_length")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("%w: target length %q", model.ErrInvalidOptions, raw)
		}
		req.TargetLength = n
	}
	return req, nil
}

// Generate 处理表单提交并在同一页面展示结果或错误。
func (h *PageHandler) Generate(c *gin.Context) {
	req, err := formRequest(c)
	if err != nil {
		data := h.newPageData(req.Observation, model.DefaultOptions())
		data.Error = service.UserMessage(err)
		h.render(c, statusFor(err), data)
		return
	}

	opts, err := req.ToOptions()
	if err != nil {
		data := h.newPageData(req.Observation, model.DefaultOptions())
		data.Error = service.UserMessage(err)
		h.render(c, statusFor(err), data)
		return
	}

	data := h.newPageData(req.Observation, opts)

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	record, err := h.records.Create(ctx, service.GenerateInput{
		Observation: req.Observation,
		Options:     opts,
		APIKey:      req.APIKey,
	})
	if err != nil {
		data.Error = service.UserMessage(err)
		h.render(c, statusFor(err), data)
		return
	}

	data.Result = &record.Result
	// goldmark 不透传原始 HTML，输出可直接嵌入页面
	data.AnalysisHTML = template.HTML(record.Result.AnalysisHTML)
	h.render(c, http.StatusOK, data)
}
