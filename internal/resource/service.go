// Package resource exposes the three ways to obtain a local copy of a
// resource: by table name, by hash identifier, or by raw URL. Each returns a
// path that exists on disk when the call succeeds.
package resource

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/resfetch/resfetch/internal/cache"
	"github.com/resfetch/resfetch/internal/fetch"
	"github.com/resfetch/resfetch/internal/hashid"
	"github.com/resfetch/resfetch/internal/logging"
	"github.com/resfetch/resfetch/internal/urltable"
)

// 资源请求种类，写入日志 resource_kind 字段。
const (
	KindName = "name"
	KindHash = "hash"
	KindURL  = "url"
)

// ErrInvalidURL 表示 FileFromURL 收到空串或非 http(s) 的 URL。
var ErrInvalidURL = errors.New("invalid url")

// Service 组合 URL 表与 Fetcher，所有依赖在构造时注入。
type Service struct {
	table   *urltable.Table
	fetcher *fetch.Fetcher
	logger  *logrus.Logger
}

// NewService 构造入口服务。
func NewService(table *urltable.Table, fetcher *fetch.Fetcher, logger *logrus.Logger) (*Service, error) {
	if table == nil {
		return nil, errors.New("url table is required")
	}
	if fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Service{table: table, fetcher: fetcher, logger: logger}, nil
}

// Table 返回注入的 URL 表。
func (s *Service) Table() *urltable.Table {
	return s.table
}

// CacheDir 返回共享缓存目录。
func (s *Service) CacheDir() *cache.Dir {
	return s.fetcher.Dir()
}

// Require 按表中的名称获取资源，destination 为空时落在 <cache_dir>/<name>。
// 名称不在表中时返回 urltable.ErrNotResolved，且不触碰文件系统。
func (s *Service) Require(ctx context.Context, name, destination string) (string, error) {
	url, err := s.table.Require(name)
	if err != nil {
		return "", err
	}
	if destination == "" {
		destination, err = s.cachePath(name)
		if err != nil {
			return "", err
		}
	}
	return s.ensure(ctx, KindName, name, url, destination)
}

// RequireFromHashURL 按 hash 标识符获取资源，destination 为空时落在
// <cache_dir>/<name 或 sha1>。
func (s *Service) RequireFromHashURL(ctx context.Context, hashURL, destination string) (string, error) {
	id, err := hashid.Parse(hashURL)
	if err != nil {
		return "", err
	}
	url, err := s.table.ResolveID(id)
	if err != nil {
		return "", err
	}
	if destination == "" {
		destination, err = s.cachePath(id.Basename())
		if err != nil {
			return "", err
		}
	}
	return s.ensure(ctx, KindHash, hashURL, url, destination)
}

// FileFromURL 下载任意 http(s) URL 到缓存目录，文件名为 URL 的 md5；URL 中任意位置
// 出现 jpg 时追加 .jpg 后缀。
func (s *Service) FileFromURL(ctx context.Context, rawURL string) (string, error) {
	if err := checkRemoteURL(rawURL); err != nil {
		return "", err
	}
	destination, err := s.cachePath(CacheName(rawURL))
	if err != nil {
		return "", err
	}
	return s.ensure(ctx, KindURL, rawURL, rawURL, destination)
}

// checkRemoteURL 只放行带主机名的 http/https 绝对 URL。
func checkRemoteURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return fmt.Errorf("%w: empty url", ErrInvalidURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("%w: %q: scheme must be http or https", ErrInvalidURL, rawURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %q: missing host", ErrInvalidURL, rawURL)
	}
	return nil
}

// ResolveURL 只做解析不下载。
func (s *Service) ResolveURL(hashURL string) (string, error) {
	return s.table.Resolve(hashURL)
}

// CacheName 计算原始 URL 对应的缓存文件名。
func CacheName(url string) string {
	sum := md5.Sum([]byte(url))
	name := hex.EncodeToString(sum[:])
	if strings.Contains(url, "jpg") {
		name += ".jpg"
	}
	return name
}

func (s *Service) cachePath(name string) (string, error) {
	path, err := s.fetcher.Dir().Path(name)
	if err != nil {
		return "", &urltable.ResolutionError{Ref: name, Reason: fmt.Sprintf("unusable cache name (%v)", err)}
	}
	return path, nil
}

func (s *Service) ensure(ctx context.Context, kind, ref, url, destination string) (string, error) {
	path, err := s.fetcher.Ensure(ctx, url, destination)
	if err != nil {
		s.logger.WithFields(logging.ResourceFields(kind, ref)).WithError(err).Warn("resource_unavailable")
		return "", err
	}
	s.logger.WithFields(logging.ResourceFields(kind, ref)).WithField("path", path).Debug("resource_ready")
	return path, nil
}
