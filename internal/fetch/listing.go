package fetch

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// listDir 以类似 ls -l 的格式列出目录，仅用于错误诊断，读取失败时返回错误描述。
func listDir(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Sprintf("<cannot list %s: %v>", dir, err)
	}
	if len(entries) == 0 {
		return "<empty>"
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			lines = append(lines, fmt.Sprintf("?????????? %10s %s %s", "?", strings.Repeat(" ", 19), entry.Name()))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %10d %s %s",
			info.Mode().String(),
			info.Size(),
			info.ModTime().Format(time.DateTime),
			entry.Name(),
		))
	}
	return strings.Join(lines, "\n")
}
