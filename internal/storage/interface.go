package storage

import (
	"recordmate-backend/internal/model"
)

// Storage 保存生成历史。List 按创建时间倒序返回。
type Storage interface {
	SaveRecord(record *model.Record) error
	GetRecord(id string) (*model.Record, error)
	DeleteRecord(id string) error
	ListRecords() ([]*model.Record, error)

	Init() error
	Close() error
}
