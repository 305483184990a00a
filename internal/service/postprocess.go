package service

import (
	"strings"
	"unicode/utf8"

	"recordmate-backend/internal/model"
	"recordmate-backend/internal/utils"
	"recordmate-backend/pkg/logger"
)

// MissingAnalysis 在模型输出缺少分隔符时显示在分析面板。
const MissingAnalysis = "영역별 분석을 생성하지 못했습니다."

// SplitResponse 按 SplitMarker 拆分模型输出。
// 有分隔符时取第一、二段（去掉首尾空白），其余段落丢弃；否则整段作为最终文本。
func SplitResponse(raw string) (analysis, final string, split bool) {
	if !strings.Contains(raw, SplitMarker) {
		return MissingAnalysis, raw, false
	}
	parts := strings.Split(raw, SplitMarker)
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}

// CountChars 返回含空白与不含空格/换行的字符数（按 Unicode 字符计）。
func CountChars(text string) (withSpaces, withoutSpaces int) {
	withSpaces = utf8.RuneCountInString(text)
	stripped := strings.NewReplacer(" ", "", "\n", "").Replace(text)
	return withSpaces, utf8.RuneCountInString(stripped)
}

// PostProcess 把模型原始输出整理为 Result。
func PostProcess(raw string, opts model.Options, usedModel string) (model.Result, error) {
	if strings.TrimSpace(raw) == "" {
		return model.Result{}, ErrEmptyResponse
	}

	analysis, final, split := SplitResponse(raw)
	count, noSpace := CountChars(final)

	html, err := utils.MarkdownToHTML(analysis)
	if err != nil {
		logger.Warnf("render analysis markdown: %v", err)
		html = ""
	}

	return model.Result{
		Analysis:         analysis,
		AnalysisHTML:     html,
		Final:            final,
		Split:            split,
		CharCount:        count,
		CharCountNoSpace: noSpace,
		TargetLength:     opts.TargetLength,
		Mode:             opts.Mode,
		Model:            usedModel,
	}, nil
}
