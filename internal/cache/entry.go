package cache

import (
	"errors"
	"time"
)

// Entry 表示一个已存在的缓存文件及其文件信息。
type Entry struct {
	FilePath  string    `json:"file_path"`
	SizeBytes int64     `json:"size_bytes"`
	ModTime   time.Time `json:"mod_time"`
}

var (
	// ErrNotFound 表示缓存文件不存在。
	ErrNotFound = errors.New("cache entry not found")
	// ErrInvalidName 表示名称为空或会逃逸出缓存目录。
	ErrInvalidName = errors.New("invalid cache name")
)
