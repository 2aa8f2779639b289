package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Dir 是共享下载目录，整进程复用一份实例。
type Dir struct {
	basePath string

	mu    sync.Mutex
	locks map[string]*entryLock
}

type entryLock struct {
	mu   sync.Mutex
	refs int
}

// NewDir 以 basePath 为根目录构建缓存目录，并确保目录存在。
func NewDir(basePath string) (*Dir, error) {
	if basePath == "" {
		return nil, errors.New("cache dir required")
	}

	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve cache dir: %w", err)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	return &Dir{
		basePath: abs,
		locks:    make(map[string]*entryLock),
	}, nil
}

// Base 返回缓存根目录的绝对路径。
func (d *Dir) Base() string {
	return d.basePath
}

// Path 将资源名映射为缓存目录下的文件路径。名称可包含子目录，但不能为空、
// 不能是绝对路径，也不能通过 .. 逃逸出根目录。
func (d *Dir) Path(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if filepath.IsAbs(trimmed) || strings.HasPrefix(trimmed, "/") {
		return "", fmt.Errorf("%w: %q is absolute", ErrInvalidName, name)
	}

	filePath := filepath.Join(d.basePath, filepath.FromSlash(trimmed))
	if filePath == d.basePath || !strings.HasPrefix(filePath, d.basePath+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes cache dir", ErrInvalidName, name)
	}
	return filePath, nil
}

// Stat 返回 filePath 对应的缓存条目；不存在或为目录时返回 ErrNotFound。
// filePath 不要求位于缓存目录内，调用方可以指定任意目标路径。
func Stat(filePath string) (*Entry, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, ErrNotFound
	}
	return &Entry{
		FilePath:  filePath,
		SizeBytes: info.Size(),
		ModTime:   info.ModTime(),
	}, nil
}

// Exists 报告 filePath 是否为已存在的普通文件。
func Exists(filePath string) bool {
	_, err := Stat(filePath)
	return err == nil
}

// IsDir 报告 filePath 是否为已存在的目录。
func IsDir(filePath string) bool {
	info, err := os.Stat(filePath)
	return err == nil && info.IsDir()
}

// Lock 获取 filePath 的进程内互斥锁，返回的函数用于释放。
func (d *Dir) Lock(filePath string) func() {
	key := filepath.Clean(filePath)
	d.mu.Lock()
	lock := d.locks[key]
	if lock == nil {
		lock = &entryLock{}
		d.locks[key] = lock
	}
	lock.refs++
	d.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		d.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(d.locks, key)
		}
		d.mu.Unlock()
	}
}

// Entries 列出缓存根目录下的全部文件（递归），用于诊断接口。
func (d *Dir) Entries() ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(d.basePath, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			return nil
		}
		info, err := de.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		entries = append(entries, Entry{
			FilePath:  path,
			SizeBytes: info.Size(),
			ModTime:   info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
