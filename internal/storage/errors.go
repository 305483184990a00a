package storage

import "errors"

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrInvalidData    = errors.New("invalid data")
	ErrStorageInit    = errors.New("storage initialization failed")
	ErrFileOperation  = errors.New("file operation failed")
)
