package urltable

import (
	"errors"
	"io/fs"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/resfetch/resfetch/internal/hashid"
)

const (
	sharedSuffix = "?dl=0"
	directSuffix = "?dl=1"
)

// Table 是只读的名称 -> URL 映射，附带由 hash: 键派生的 sha1 -> URL 索引。
type Table struct {
	path    string
	urls    map[string]string
	bySHA1  map[string]string
	ordered []string
}

// Load 读取 YAML 映射文件并构建 Table。文件缺失返回 ErrConfigMissing。
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigError{Path: path, Kind: ErrConfigMissing}
		}
		return nil, &ConfigError{Path: path, Kind: ErrConfigInvalid, Err: err}
	}
	return Parse(path, data)
}

// Parse 从内存中的 YAML 构建 Table，path 仅用于错误信息。
func Parse(path string, data []byte) (*Table, error) {
	raw := map[string]string{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Path: path, Kind: ErrConfigInvalid, Err: err}
	}
	return New(path, raw)
}

// New 用给定映射构建 Table：规范化分享链接并派生 hash 索引。
func New(path string, raw map[string]string) (*Table, error) {
	t := &Table{
		path:   path,
		urls:   make(map[string]string, len(raw)),
		bySHA1: make(map[string]string),
	}
	for key, value := range raw {
		if strings.TrimSpace(key) == "" {
			return nil, &ConfigError{Path: path, Key: key, Kind: ErrConfigInvalid, Err: errors.New("empty key")}
		}
		if strings.TrimSpace(value) == "" {
			return nil, &ConfigError{Path: path, Key: key, Kind: ErrConfigInvalid, Err: errors.New("empty url")}
		}
		t.urls[key] = DirectURL(value)
	}

	for key, url := range t.urls {
		if !hashid.HasPrefix(key) {
			continue
		}
		id, err := hashid.Parse(key)
		if err != nil {
			return nil, &ConfigError{Path: path, Key: key, Kind: ErrConfigInvalid, Err: err}
		}
		t.bySHA1[id.SHA1] = url
	}

	t.ordered = make([]string, 0, len(t.urls))
	for key := range t.urls {
		t.ordered = append(t.ordered, key)
	}
	sort.Strings(t.ordered)
	return t, nil
}

// DirectURL 把以 ?dl=0 结尾的分享链接改写为 ?dl=1 直链，其他 URL 原样返回。
func DirectURL(url string) string {
	if strings.HasSuffix(url, sharedSuffix) {
		return strings.TrimSuffix(url, sharedSuffix) + directSuffix
	}
	return url
}

// Path 返回加载来源。
func (t *Table) Path() string {
	return t.path
}

// Lookup 按资源名直接查找。
func (t *Table) Lookup(name string) (string, bool) {
	url, ok := t.urls[name]
	return url, ok
}

// LookupSHA1 按 sha1 查找 hash 索引。
func (t *Table) LookupSHA1(sha1 string) (string, bool) {
	url, ok := t.bySHA1[strings.ToLower(sha1)]
	return url, ok
}

// Names 返回排序后的全部键。
func (t *Table) Names() []string {
	return append([]string(nil), t.ordered...)
}

// Len 返回条目数量。
func (t *Table) Len() int {
	return len(t.urls)
}

// HashCount 返回 hash 索引条目数量。
func (t *Table) HashCount() int {
	return len(t.bySHA1)
}
