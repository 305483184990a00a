package service

import (
	"context"
	"strings"
	"time"

	"recordmate-backend/internal/model"
	"recordmate-backend/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Candidates 返回去重后的候选模型：首选模型在前，随后是回退列表。
func Candidates(preferred string, fallbacks []string) []string {
	out := make([]string, 0, 1+len(fallbacks))
	seen := make(map[string]struct{}, 1+len(fallbacks))
	for _, name := range append([]string{preferred}, fallbacks...) {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// FallbackChain 依次尝试候选模型，失败后固定等待 delay 再试下一个。
type FallbackChain struct {
	delay time.Duration
	sleep func(ctx context.Context, d time.Duration) error
}

func NewFallbackChain(delay time.Duration) *FallbackChain {
	return &FallbackChain{delay: delay, sleep: sleepContext}
}

// Run 对每个候选调用 call，返回第一个成功的模型名和全部尝试记录。
// 全部失败时返回 *FallbackError；context 结束时立即返回 ctx.Err()。
func (c *FallbackChain) Run(ctx context.Context, candidates []string, call func(ctx context.Context, modelName string) error) (string, []model.Attempt, error) {
	attempts := make([]model.Attempt, 0, len(candidates))
	var failures []AttemptError

	for i, name := range candidates {
		if err := ctx.Err(); err != nil {
			return "", attempts, err
		}

		err := call(ctx, name)
		if err == nil {
			attempts = append(attempts, model.Attempt{Model: name})
			return name, attempts, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			attempts = append(attempts, model.Attempt{Model: name, Error: err.Error()})
			return "", attempts, ctxErr
		}

		attempts = append(attempts, model.Attempt{Model: name, Error: err.Error()})
		failures = append(failures, AttemptError{Model: name, Err: err})
		logger.WithFields(logrus.Fields{
			"model":   name,
			"kind":    Classify(err),
			"attempt": i + 1,
			"of":      len(candidates),
		}).Warnf("model call failed: %v", err)

		if i < len(candidates)-1 && c.delay > 0 {
			if err := c.sleep(ctx, c.delay); err != nil {
				return "", attempts, err
			}
		}
	}

	return "", attempts, &FallbackError{Attempts: failures}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
