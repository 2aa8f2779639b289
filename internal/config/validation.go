package config

import (
	"errors"
	"fmt"
	"strings"
)

const supportedDownloaderList = "http|wget"

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := &c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("Global.ListenPort", "必须在 1-65535")
	}
	if strings.TrimSpace(g.CacheDir) == "" {
		return newFieldError("Global.CacheDir", "不能为空")
	}
	if strings.TrimSpace(g.URLTable) == "" {
		return newFieldError("Global.URLTable", "不能为空")
	}
	if g.DownloadTimeout.DurationValue() < 0 {
		return newFieldError("Global.DownloadTimeout", "不能为负数")
	}
	if g.LogMaxSize < 0 || g.LogMaxBackups < 0 {
		return newFieldError("Global.LogMaxSize/LogMaxBackups", "不能为负数")
	}

	switch strings.ToLower(strings.TrimSpace(g.Downloader)) {
	case DownloaderHTTP:
		g.Downloader = DownloaderHTTP
	case DownloaderWget:
		g.Downloader = DownloaderWget
		if err := validateCommand(g.WgetPath); err != nil {
			return fmt.Errorf("Global.WgetPath: %w", err)
		}
	default:
		return newFieldError("Global.Downloader", "仅支持 "+supportedDownloaderList)
	}

	return nil
}

func validateCommand(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("缺少命令路径")
	}
	if strings.ContainsAny(path, "\n\r") {
		return errors.New("命令路径不允许包含换行")
	}
	return nil
}
