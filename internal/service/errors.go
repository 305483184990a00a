package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"recordmate-backend/internal/model"

	openai "github.com/sashabaranov/go-openai"
)

var (
	ErrEmptyObservation = errors.New("observation is empty")
	ErrEmptyResponse    = errors.New("model returned empty text")
	ErrRecordNotFound   = errors.New("record not found")
)

// Kind 是模型调用失败的粗分类，用于回退日志和面向用户的提示。
type Kind string

const (
	KindQuota         Kind = "quota_exceeded"
	KindModelNotFound Kind = "model_not_found"
	KindAuth          Kind = "unauthorized"
	KindUnavailable   Kind = "unavailable"
	KindUnknown       Kind = "unknown"
)

// Classify 根据 HTTP 状态码或错误文本判断失败类型。
func Classify(err error) Kind {
	if err == nil {
		return ""
	}

	var fbErr *FallbackError
	if errors.As(err, &fbErr) {
		return fbErr.Kind()
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if k := statusKind(apiErr.HTTPStatusCode); k != KindUnknown {
			return k
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if k := statusKind(reqErr.HTTPStatusCode); k != KindUnknown {
			return k
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindUnavailable
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindUnavailable
	}

	// ark / qwen 的错误只带文本
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "quota"):
		return KindQuota
	case strings.Contains(msg, "404") || strings.Contains(msg, "not_found") || strings.Contains(msg, "model not found"):
		return KindModelNotFound
	case strings.Contains(msg, "401") || strings.Contains(msg, "403") || strings.Contains(msg, "permission_denied"):
		return KindAuth
	}
	return KindUnknown
}

func statusKind(code int) Kind {
	switch {
	case code == http.StatusTooManyRequests:
		return KindQuota
	case code == http.StatusNotFound:
		return KindModelNotFound
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuth
	case code >= 500:
		return KindUnavailable
	}
	return KindUnknown
}

// AttemptError 是回退链中一次失败的调用。
type AttemptError struct {
	Model string
	Err   error
}

// FallbackError 表示所有候选模型都失败了。
type FallbackError struct {
	Attempts []AttemptError
}

func (e *FallbackError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Model, a.Err))
	}
	return fmt.Sprintf("all %d candidate models failed: %s", len(e.Attempts), strings.Join(parts, "; "))
}

func (e *FallbackError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}

// Kind 取最后一次尝试的分类。
func (e *FallbackError) Kind() Kind {
	if len(e.Attempts) == 0 {
		return KindUnknown
	}
	return Classify(e.Attempts[len(e.Attempts)-1].Err)
}

// UserMessage 把错误转换成页面上展示的提示。
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyObservation):
		return "⚠️ 학생 관찰 내용을 입력해주세요!"
	case errors.Is(err, model.ErrNoAPIKey):
		return "⚠️ API Key가 설정되지 않았습니다."
	case errors.Is(err, model.ErrInvalidOptions):
		return "⚠️ 작성 옵션이 올바르지 않습니다. " + err.Error()
	case errors.Is(err, ErrRecordNotFound):
		return "⚠️ 해당 기록을 찾을 수 없습니다."
	}

	switch Classify(err) {
	case KindQuota:
		return "🚨 무료 사용량을 초과했습니다. 잠시 후 다시 시도하거나, API 키를 변경해보세요."
	case KindModelNotFound:
		return "🚨 AI 모델을 찾을 수 없습니다. 설정된 모델 이름과 API 버전을 확인해주세요."
	case KindAuth:
		return "🚨 API Key가 올바르지 않거나 사용 권한이 없습니다."
	}
	return fmt.Sprintf("오류가 발생했습니다: %v", err)
}
