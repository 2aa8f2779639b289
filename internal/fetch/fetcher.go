package fetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/resfetch/resfetch/internal/cache"
	"github.com/resfetch/resfetch/internal/logging"
)

// TempSuffix 是下载过程中临时文件的后缀，与目标文件位于同一目录以保证 rename 原子。
const TempSuffix = ".tmp_download_file"

// Options 汇总 Fetcher 依赖。
type Options struct {
	Dir        *cache.Dir
	Downloader Downloader
	Logger     *logrus.Logger
	// Timeout 限制单次下载耗时，0 表示不限时。
	Timeout time.Duration
}

// Fetcher 确保某个 URL 的内容存在于指定路径。
type Fetcher struct {
	dir        *cache.Dir
	downloader Downloader
	logger     *logrus.Logger
	timeout    time.Duration
}

// New 校验依赖并构造 Fetcher。
func New(opts Options) (*Fetcher, error) {
	if opts.Dir == nil {
		return nil, errors.New("cache dir is required")
	}
	if opts.Downloader == nil {
		return nil, errors.New("downloader is required")
	}
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Timeout < 0 {
		return nil, fmt.Errorf("invalid timeout: %s", opts.Timeout)
	}
	return &Fetcher{
		dir:        opts.Dir,
		downloader: opts.Downloader,
		logger:     opts.Logger,
		timeout:    opts.Timeout,
	}, nil
}

// Dir 返回共享缓存目录。
func (f *Fetcher) Dir() *cache.Dir {
	return f.dir
}

// Ensure 保证 destination 存在：已存在直接返回（不发起下载），否则下载到临时文件
// 再 rename。同一进程内相同 destination 的调用串行执行。destination 为目录时
// 直接返回 DestinationError。
func (f *Fetcher) Ensure(ctx context.Context, url, destination string) (string, error) {
	if cache.IsDir(destination) {
		return "", &DestinationError{URL: url, Destination: destination}
	}
	if cache.Exists(destination) {
		f.logHit(url, destination)
		return destination, nil
	}

	unlock := f.dir.Lock(destination)
	defer unlock()

	if cache.Exists(destination) {
		f.logHit(url, destination)
		return destination, nil
	}

	fields := logging.FetchFields(uuid.NewString(), url, destination)
	f.logger.WithFields(fields).Info("fetch_start")
	started := time.Now()

	if err := f.download(ctx, url, destination); err != nil {
		f.logger.WithFields(fields).WithError(err).Error("fetch_failed")
		return "", err
	}

	entry, err := cache.Stat(destination)
	if err != nil {
		integrity := &IntegrityError{URL: url, Destination: destination}
		f.logger.WithFields(fields).WithError(integrity).Error("fetch_failed")
		return "", integrity
	}

	f.logger.WithFields(fields).WithFields(logrus.Fields{
		"size_bytes":  entry.SizeBytes,
		"duration_ms": time.Since(started).Milliseconds(),
	}).Info("fetch_done")
	return destination, nil
}

func (f *Fetcher) download(ctx context.Context, url, destination string) error {
	tmp := destination + TempSuffix
	if err := os.MkdirAll(filepath.Dir(tmp), 0o755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", destination, err)
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	result, err := f.downloader.Download(ctx, url, tmp)
	if err != nil {
		os.Remove(tmp)
		var dlErr *DownloadError
		if errors.As(err, &dlErr) {
			return err
		}
		return &DownloadError{URL: url, Destination: tmp, Result: result, Err: err}
	}

	tmpExists := cache.Exists(tmp)
	destExists := cache.Exists(destination)
	if !tmpExists && !destExists {
		return &PostconditionError{
			URL:         url,
			Destination: destination,
			TempPath:    tmp,
			Result:      result,
			Listing:     listDir(filepath.Dir(tmp)),
		}
	}

	if destExists {
		// 下载工具直接写到了目标路径，临时文件（若有）不再需要。
		if tmpExists {
			os.Remove(tmp)
		}
		return nil
	}

	if err := os.Rename(tmp, destination); err != nil {
		os.Remove(tmp)
		return &CommitError{URL: url, Destination: destination, TempPath: tmp, Err: err}
	}
	return nil
}

func (f *Fetcher) logHit(url, destination string) {
	f.logger.WithFields(logrus.Fields{
		"url":         url,
		"destination": destination,
		"cache_hit":   true,
	}).Debug("fetch_hit")
}
