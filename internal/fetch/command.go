package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandDownloader 调用外部下载工具：<Path> -O <target> -- <url>。
// url 放在 -- 之后，避免以 - 开头的字符串被解析为工具选项。
// stdout/stderr 不直接输出，保存在 Result 中用于诊断。
type CommandDownloader struct {
	Path string
	// Dir 是命令的工作目录，默认当前目录。
	Dir string
	// Env 为空时继承当前进程环境。
	Env []string
}

// NewCommandDownloader 以 wget 兼容命令构造下载器。
func NewCommandDownloader(path string) *CommandDownloader {
	if strings.TrimSpace(path) == "" {
		path = "wget"
	}
	return &CommandDownloader{Path: path, Dir: "."}
}

func (d *CommandDownloader) Download(ctx context.Context, url, target string) (*Result, error) {
	args := []string{"-O", target, "--", url}
	cmd := exec.CommandContext(ctx, d.Path, args...)
	cmd.Dir = d.Dir
	cmd.Env = d.Env
	cmd.Stdin = strings.NewReader("")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{
		Backend: BackendCommand,
		Command: append([]string{d.Path}, args...),
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
	}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		err = fmt.Errorf("command exited with code %d", result.ExitCode)
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
	} else {
		result.ExitCode = -1
	}
	return result, &DownloadError{URL: url, Destination: target, Result: result, Err: err}
}
