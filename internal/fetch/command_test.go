package fetch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// writeScript 生成一个模拟 wget 的 shell 脚本：$2 为 -O 目标，$3 为 --，$4 为 url。
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts unavailable on windows")
	}
	path := filepath.Join(t.TempDir(), "fake-wget")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write script error: %v", err)
	}
	return path
}

func TestCommandDownloaderSuccess(t *testing.T) {
	script := writeScript(t, `printf '%s' "$4" > "$2"; echo saved`)
	target := filepath.Join(t.TempDir(), "out")

	result, err := NewCommandDownloader(script).Download(context.Background(), "https://x/y?dl=1", target)
	if err != nil {
		t.Fatalf("download error: %v", err)
	}
	if result.ExitCode != 0 || strings.TrimSpace(result.Stdout) != "saved" {
		t.Fatalf("unexpected result %+v", result)
	}
	if got := strings.Join(result.Command[1:], " "); got != "-O "+target+" -- https://x/y?dl=1" {
		t.Fatalf("unexpected command args %q", got)
	}
	body, _ := os.ReadFile(target)
	if string(body) != "https://x/y?dl=1" {
		t.Fatalf("unexpected file content %q", body)
	}
}

func TestCommandDownloaderPassesDashURLAsOperand(t *testing.T) {
	// 脚本按位置取参数：-- 之后的内容必须原样作为 url 传入。
	script := writeScript(t, `[ "$3" = "--" ] || { echo "missing separator: $3" >&2; exit 2; }; printf '%s' "$4" > "$2"`)
	target := filepath.Join(t.TempDir(), "out")

	result, err := NewCommandDownloader(script).Download(context.Background(), "--version", target)
	if err != nil {
		t.Fatalf("download error: %v", err)
	}
	want := []string{script, "-O", target, "--", "--version"}
	if strings.Join(result.Command, "\x00") != strings.Join(want, "\x00") {
		t.Fatalf("unexpected argv %q", result.Command)
	}
	body, _ := os.ReadFile(target)
	if string(body) != "--version" {
		t.Fatalf("url should reach the tool as an operand, got %q", body)
	}
}

func TestCommandDownloaderNonZeroExit(t *testing.T) {
	script := writeScript(t, `echo "ERROR 404: Not Found." >&2; exit 8`)

	result, err := NewCommandDownloader(script).Download(context.Background(), "https://x/missing", filepath.Join(t.TempDir(), "out"))
	if !errors.Is(err, ErrDownload) {
		t.Fatalf("expected ErrDownload, got %v", err)
	}
	if result.ExitCode != 8 {
		t.Fatalf("expected exit code 8, got %d", result.ExitCode)
	}
	if !strings.Contains(err.Error(), "ERROR 404") {
		t.Fatalf("error should include captured stderr: %v", err)
	}
}

func TestCommandDownloaderMissingBinary(t *testing.T) {
	result, err := NewCommandDownloader(filepath.Join(t.TempDir(), "no-such-wget")).
		Download(context.Background(), "https://x/y", filepath.Join(t.TempDir(), "out"))
	if !errors.Is(err, ErrDownload) {
		t.Fatalf("expected ErrDownload, got %v", err)
	}
	if result.ExitCode != -1 {
		t.Fatalf("expected exit code -1 for start failure, got %d", result.ExitCode)
	}
}

func TestResultStringSkipsEmptyFields(t *testing.T) {
	r := &Result{Backend: BackendHTTP, Status: "200 OK"}
	s := r.String()
	if strings.Contains(s, "command") || strings.Contains(s, "stderr") {
		t.Fatalf("empty fields should be omitted: %s", s)
	}
	if !strings.Contains(s, "200 OK") {
		t.Fatalf("status should be rendered: %s", s)
	}
	var nilResult *Result
	if nilResult.String() != "<no result>" {
		t.Fatalf("nil result should render placeholder")
	}
}
