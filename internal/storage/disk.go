package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"recordmate-backend/internal/model"
	"recordmate-backend/pkg/logger"

	"github.com/google/uuid"
)

// DiskStorage 每条记录一个 JSON 文件，最近使用的记录保留在内存缓存中。
type DiskStorage struct {
	dataDir   string
	mu        sync.RWMutex
	cache     map[string]*model.Record
	cacheSize int
}

func NewDiskStorage(dataDir string, cacheSize int) *DiskStorage {
	if cacheSize <= 0 {
		cacheSize = 100
	}
	return &DiskStorage{
		dataDir:   dataDir,
		cache:     make(map[string]*model.Record),
		cacheSize: cacheSize,
	}
}

func (d *DiskStorage) recordsDir() string {
	return filepath.Join(d.dataDir, "records")
}

func (d *DiskStorage) recordPath(id string) string {
	return filepath.Join(d.recordsDir(), id+".json")
}

func (d *DiskStorage) Init() error {
	if err := os.MkdirAll(d.recordsDir(), 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageInit, err)
	}

	records, err := d.loadAll()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageInit, err)
	}

	d.mu.Lock()
	for _, r := range records {
		if len(d.cache) >= d.cacheSize {
			break
		}
		d.cache[r.ID] = r
	}
	d.mu.Unlock()

	logger.Infof("Disk storage initialized at %s with %d record(s)", d.dataDir, len(records))
	return nil
}

// validID 只接受 UUID，避免路径穿越。
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (d *DiskStorage) SaveRecord(record *model.Record) error {
	if record == nil || !validID(record.ID) {
		return ErrInvalidData
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := writeJSONAtomic(d.recordPath(record.ID), record); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	d.cache[record.ID] = cloneRecord(record)
	d.evictCache()
	return nil
}

func (d *DiskStorage) GetRecord(id string) (*model.Record, error) {
	if !validID(id) {
		return nil, ErrRecordNotFound
	}

	d.mu.RLock()
	if record, exists := d.cache[id]; exists {
		cp := cloneRecord(record)
		d.mu.RUnlock()
		return cp, nil
	}
	d.mu.RUnlock()

	record, err := d.loadFromFile(id)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	d.mu.Lock()
	d.cache[id] = record
	d.evictCache()
	d.mu.Unlock()

	return cloneRecord(record), nil
}

func (d *DiskStorage) DeleteRecord(id string) error {
	if !validID(id) {
		return ErrRecordNotFound
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.Remove(d.recordPath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrRecordNotFound
		}
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	delete(d.cache, id)
	return nil
}

func (d *DiskStorage) ListRecords() ([]*model.Record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	records, err := d.loadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileOperation, err)
	}
	return records, nil
}

func (d *DiskStorage) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cache = make(map[string]*model.Record)
	return nil
}

func (d *DiskStorage) loadAll() ([]*model.Record, error) {
	files, err := os.ReadDir(d.recordsDir())
	if err != nil {
		return nil, err
	}

	records := make([]*model.Record, 0, len(files))
	for _, file := range files {
		name := file.Name()
		if file.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}

		record, err := d.loadFromFile(strings.TrimSuffix(name, ".json"))
		if err != nil {
			logger.Errorf("Failed to load record %s: %v", name, err)
			continue
		}
		records = append(records, record)
	}

	sortNewestFirst(records)
	return records, nil
}

func (d *DiskStorage) loadFromFile(id string) (*model.Record, error) {
	data, err := os.ReadFile(d.recordPath(id))
	if err != nil {
		return nil, err
	}

	var record model.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return &record, nil
}

func (d *DiskStorage) evictCache() {
	if len(d.cache) <= d.cacheSize {
		return
	}

	type cacheEntry struct {
		id        string
		createdAt time.Time
	}

	entries := make([]cacheEntry, 0, len(d.cache))
	for id, record := range d.cache {
		entries = append(entries, cacheEntry{id: id, createdAt: record.CreatedAt})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].createdAt.Before(entries[j].createdAt)
	})

	toEvict := len(d.cache) - d.cacheSize
	for i := 0; i < toEvict; i++ {
		delete(d.cache, entries[i].id)
	}
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tempPath, path)
}
