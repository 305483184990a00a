package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"recordmate-backend/internal/config"
	"recordmate-backend/internal/model"
	"recordmate-backend/internal/storage"
	"recordmate-backend/pkg/logger"

	"github.com/google/uuid"
)

const previewRunes = 40

type RecordService struct {
	generator *Generator
	storage   storage.Storage
	history   config.HistoryConfig
	now       func() time.Time
}

// NewStorage 按配置创建存储；磁盘存储初始化失败时退回内存存储。
func NewStorage(cfg config.StorageConfig) storage.Storage {
	var store storage.Storage
	if cfg.Type == "disk" {
		store = storage.NewDiskStorage(cfg.DataDir, cfg.CacheSize)
	} else {
		store = storage.NewMemoryStorage()
	}

	if err := store.Init(); err != nil {
		logger.Errorf("Failed to initialize storage: %v", err)
		store = storage.NewMemoryStorage()
		_ = store.Init()
	}
	return store
}

func NewRecordService(generator *Generator, store storage.Storage, history config.HistoryConfig) *RecordService {
	return &RecordService{
		generator: generator,
		storage:   store,
		history:   history,
		now:       time.Now,
	}
}

func (s *RecordService) Generator() *Generator {
	return s.generator
}

// Create 生成一次并（在启用历史时）保存。
func (s *RecordService) Create(ctx context.Context, in GenerateInput) (*model.Record, error) {
	result, err := s.generator.Generate(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.save(in, result), nil
}

// CreateStream 流式生成，结束后保存。
func (s *RecordService) CreateStream(ctx context.Context, in GenerateInput, onChunk func(string) error) (*model.Record, error) {
	result, err := s.generator.Stream(ctx, in, onChunk)
	if err != nil {
		return nil, err
	}
	return s.save(in, result), nil
}

func (s *RecordService) save(in GenerateInput, result model.Result) *model.Record {
	record := &model.Record{
		ID:          uuid.New().String(),
		Observation: strings.TrimSpace(in.Observation),
		Options:     in.Options.Normalize(),
		Result:      result,
		CreatedAt:   s.now(),
	}
	if !s.history.Enabled {
		return record
	}
	// 保存失败不影响本次结果返回
	if err := s.storage.SaveRecord(record); err != nil {
		logger.Errorf("Failed to save record %s: %v", record.ID, err)
	}
	return record
}

func (s *RecordService) Get(id string) (*model.Record, error) {
	record, err := s.storage.GetRecord(id)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return record, nil
}

func (s *RecordService) List() ([]model.RecordSummary, error) {
	records, err := s.storage.ListRecords()
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	out := make([]model.RecordSummary, 0, len(records))
	for _, r := range records {
		out = append(out, model.RecordSummary{
			ID:        r.ID,
			Preview:   truncateString(r.Result.Final, previewRunes),
			Mode:      r.Options.Mode,
			Model:     r.Result.Model,
			CharCount: r.Result.CharCount,
			CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}

func (s *RecordService) Delete(id string) error {
	if err := s.storage.DeleteRecord(id); err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
		}
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// Clear 删除全部记录，返回删除的数量。
func (s *RecordService) Clear() (int, error) {
	records, err := s.storage.ListRecords()
	if err != nil {
		return 0, fmt.Errorf("failed to list records: %w", err)
	}

	deleted := 0
	for _, r := range records {
		if err := s.storage.DeleteRecord(r.ID); err != nil {
			logger.Errorf("Failed to delete record %s: %v", r.ID, err)
			continue
		}
		deleted++
	}
	return deleted, nil
}

// Options 返回页面和 API 使用的选项枚举与默认值。
func (s *RecordService) Options() model.OptionsResponse {
	return model.OptionsResponse{
		Modes:            []model.Mode{model.ModeRich, model.ModeStrict},
		Models:           []model.ModelPreference{model.PreferFlash, model.PreferPro},
		Keywords:         model.Keywords,
		MinTargetLength:  model.MinTargetLength,
		MaxTargetLength:  model.MaxTargetLength,
		TargetLengthStep: model.TargetLengthStep,
		Defaults:         model.DefaultOptions(),
		ClientKeyAllowed: s.generator.ClientKeyAllowed(),
	}
}

// PurgeExpired 删除早于 TTL 的记录。
func (s *RecordService) PurgeExpired() int {
	if s.history.TTL <= 0 {
		return 0
	}
	records, err := s.storage.ListRecords()
	if err != nil {
		logger.Errorf("Failed to list records for cleanup: %v", err)
		return 0
	}

	cutoff := s.now().Add(-s.history.TTL)
	purged := 0
	for _, r := range records {
		if !r.CreatedAt.Before(cutoff) {
			continue
		}
		if err := s.storage.DeleteRecord(r.ID); err != nil {
			logger.Errorf("Failed to delete expired record %s: %v", r.ID, err)
			continue
		}
		purged++
	}
	if purged > 0 {
		logger.Infof("Cleaned up %d expired record(s)", purged)
	}
	return purged
}

// RunCleanup 周期性清理过期记录，直到 ctx 结束。
func (s *RecordService) RunCleanup(ctx context.Context) {
	if s.history.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.history.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.PurgeExpired()
		case <-ctx.Done():
			return
		}
	}
}

func truncateString(str string, maxLen int) string {
	runes := []rune(str)
	if len(runes) <= maxLen {
		return str
	}
	return string(runes[:maxLen]) + "..."
}
