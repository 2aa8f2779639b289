package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfigFile 在临时目录写入 config.toml 及其引用的 URL 表，返回配置路径。
func writeConfigFile(t *testing.T, content, urlTable string) string {
	t.Helper()
	dir := t.TempDir()
	file := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(file, []byte(strings.TrimSpace(content)), 0o600); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}
	if urlTable != "" {
		if err := os.WriteFile(filepath.Join(dir, "dropbox.urls.yaml"), []byte(urlTable), 0o600); err != nil {
			t.Fatalf("写入 URL 表失败: %v", err)
		}
	}
	return file
}

// basicConfig 返回使用 http 下载后端、缓存到 cacheDir 的最小配置。
func basicConfig(cacheDir string) string {
	return fmt.Sprintf(`
LogLevel = "debug"
CacheDir = "%s"
Downloader = "http"
`, filepath.ToSlash(cacheDir))
}

// useBufferWriters swaps stdOut/stdErr with in-memory buffers for the duration
// of a test, allowing assertions on CLI output without polluting test logs.
func useBufferWriters(t *testing.T) {
	t.Helper()

	outBuf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}

	prevOut := stdOut
	prevErr := stdErr

	stdOut = outBuf
	stdErr = errBuf

	t.Cleanup(func() {
		stdOut = prevOut
		stdErr = prevErr
	})
}

// stdOutBuffer returns the in-use stdout buffer when useBufferWriters is active.
func stdOutBuffer() *bytes.Buffer {
	buf, _ := stdOut.(*bytes.Buffer)
	return buf
}

// stdErrBuffer returns the in-use stderr buffer when useBufferWriters is active.
func stdErrBuffer() *bytes.Buffer {
	buf, _ := stdErr.(*bytes.Buffer)
	return buf
}
