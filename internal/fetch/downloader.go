package fetch

import (
	"context"
	"fmt"
	"strings"

	"github.com/resfetch/resfetch/internal/config"
)

// 下载后端标识，写入 Result.Backend 与日志。
const (
	BackendHTTP    = "http"
	BackendCommand = "command"
)

// Downloader 把 url 的内容写入 target。成功返回的 Result 仅用于诊断，
// 失败时返回 *DownloadError（Result 可能已部分填充）。
type Downloader interface {
	Download(ctx context.Context, url, target string) (*Result, error)
}

// Result 是一次下载调用的结构化结果。
type Result struct {
	Backend  string
	Command  []string
	ExitCode int
	Stdout   string
	Stderr   string
	Status   string
	Bytes    int64
}

// String 只输出非空字段，便于拼入错误信息。
func (r *Result) String() string {
	if r == nil {
		return "<no result>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "backend: %s", r.Backend)
	if len(r.Command) > 0 {
		fmt.Fprintf(&b, "\ncommand: %s", strings.Join(r.Command, " "))
		fmt.Fprintf(&b, "\nexit code: %d", r.ExitCode)
	}
	if r.Status != "" {
		fmt.Fprintf(&b, "\nstatus: %s", r.Status)
	}
	if r.Bytes > 0 {
		fmt.Fprintf(&b, "\nbytes: %d", r.Bytes)
	}
	if out := strings.TrimSpace(r.Stdout); out != "" {
		fmt.Fprintf(&b, "\nstdout:\n%s", indent(out, "  "))
	}
	if errOut := strings.TrimSpace(r.Stderr); errOut != "" {
		fmt.Fprintf(&b, "\nstderr:\n%s", indent(errOut, "  "))
	}
	return b.String()
}

// NewDownloader 根据配置选择下载后端。
func NewDownloader(cfg config.GlobalConfig) Downloader {
	if cfg.UsesCommand() {
		return NewCommandDownloader(cfg.WgetPath)
	}
	return NewHTTPDownloader(NewHTTPClient())
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
