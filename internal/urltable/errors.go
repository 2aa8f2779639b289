package urltable

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigMissing 表示 URL 表文件不存在。
	ErrConfigMissing = errors.New("url table not found")
	// ErrConfigInvalid 表示 URL 表内容无法解析或包含非法条目。
	ErrConfigInvalid = errors.New("url table invalid")
	// ErrNotResolved 表示名称或 hash 在任何映射中都找不到。
	ErrNotResolved = errors.New("url not resolved")
)

// ConfigError 描述 URL 表加载失败，Path 为文件路径，Key 为出错条目（可为空）。
type ConfigError struct {
	Path string
	Key  string
	Kind error
	Err  error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("%v: %s", e.Kind, e.Path)
	if e.Key != "" {
		msg += fmt.Sprintf(" (key %q)", e.Key)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Is(target error) bool {
	return target == e.Kind
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ResolutionError 描述无法解析为 URL 的名称或 hash 标识符。
type ResolutionError struct {
	Ref    string
	Reason string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s for %q", e.Reason, e.Ref)
}

func (e *ResolutionError) Unwrap() error {
	return ErrNotResolved
}
