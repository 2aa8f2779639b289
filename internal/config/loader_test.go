package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFailsWhenFileMissing(t *testing.T) {
	if _, err := Load(testConfigPath(t, "absent.toml")); err == nil {
		t.Fatalf("缺失的配置文件应返回错误")
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	cfg := `
LogLevel = "info"
CacheDir = "./data"
DownloadTimeout = "boom"
`
	path := writeTempConfig(t, cfg)
	if _, err := Load(path); err == nil {
		t.Fatalf("无效 Duration 应失败")
	}
}

func TestLoadAcceptsSecondsAsDuration(t *testing.T) {
	cfg := `
CacheDir = "./data"
DownloadTimeout = 45
`
	path := writeTempConfig(t, cfg)
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if loaded.Global.DownloadTimeout.DurationValue() != 45*time.Second {
		t.Fatalf("纯秒值应被解析为 45s，得到 %s", loaded.Global.DownloadTimeout.DurationValue())
	}
}

func TestLoadParsesDurationStringsViaUnmarshalText(t *testing.T) {
	testCases := map[string]time.Duration{
		`"90s"`:  90 * time.Second,
		`"120"`:  120 * time.Second,
		`"0x3c"`: time.Minute,
		`""`:     0,
	}
	for raw, want := range testCases {
		path := writeTempConfig(t, "CacheDir = \"./data\"\nDownloadTimeout = "+raw+"\n")
		loaded, err := Load(path)
		if err != nil {
			t.Fatalf("%s: Load 返回错误: %v", raw, err)
		}
		if got := loaded.Global.DownloadTimeout.DurationValue(); got != want {
			t.Fatalf("%s: 期望 %s，得到 %s", raw, want, got)
		}
	}
}

func TestLoadKeepsAbsoluteURLTable(t *testing.T) {
	table := filepath.Join(t.TempDir(), "urls.yaml")
	cfg := `
CacheDir = "./data"
URLTable = "` + table + `"
`
	path := writeTempConfig(t, cfg)
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if loaded.Global.URLTable != table {
		t.Fatalf("绝对路径应保持不变，得到 %s", loaded.Global.URLTable)
	}
	if loaded.Global.Downloader != DownloaderHTTP {
		t.Fatalf("默认下载后端应为 http，得到 %s", loaded.Global.Downloader)
	}
}

func TestLoadDefaultsCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	path := writeTempConfig(t, `LogLevel = "info"`)
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	want, err := DefaultCacheDir()
	if err != nil {
		t.Fatalf("DefaultCacheDir: %v", err)
	}
	if loaded.Global.CacheDir != want {
		t.Fatalf("期望默认缓存目录 %s，得到 %s", want, loaded.Global.CacheDir)
	}
}
