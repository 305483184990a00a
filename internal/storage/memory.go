package storage

import (
	"slices"
	"sort"
	"sync"

	"recordmate-backend/internal/model"
)

type MemoryStorage struct {
	records map[string]*model.Record
	mu      sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*model.Record),
	}
}

func (m *MemoryStorage) Init() error {
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}

func (m *MemoryStorage) SaveRecord(record *model.Record) error {
	if record == nil || record.ID == "" {
		return ErrInvalidData
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[record.ID] = cloneRecord(record)
	return nil
}

func (m *MemoryStorage) GetRecord(id string) (*model.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, exists := m.records[id]
	if !exists {
		return nil, ErrRecordNotFound
	}

	return cloneRecord(record), nil
}

func (m *MemoryStorage) DeleteRecord(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[id]; !exists {
		return ErrRecordNotFound
	}

	delete(m.records, id)
	return nil
}

func (m *MemoryStorage) ListRecords() ([]*model.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*model.Record, 0, len(m.records))
	for _, record := range m.records {
		records = append(records, cloneRecord(record))
	}
	sortNewestFirst(records)

	return records, nil
}

// cloneRecord 复制记录及其切片，存储内外互不影响。
func cloneRecord(record *model.Record) *model.Record {
	cp := *record
	cp.Options.Keywords = slices.Clone(record.Options.Keywords)
	cp.Result.Attempts = slices.Clone(record.Result.Attempts)
	return &cp
}

func sortNewestFirst(records []*model.Record) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID > records[j].ID
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}
