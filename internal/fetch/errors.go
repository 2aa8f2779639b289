package fetch

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDownload 表示下载工具报告失败。
	ErrDownload = errors.New("download failed")
	// ErrPostcondition 表示下载工具报告成功，但没有产出任何文件。
	ErrPostcondition = errors.New("download produced no file")
	// ErrIntegrity 表示整个流程结束后目标文件仍不存在。
	ErrIntegrity = errors.New("destination missing after fetch")
	// ErrCommit 表示临时文件无法移动到目标路径。
	ErrCommit = errors.New("cannot move download into place")
	// ErrDestinationIsDir 表示目标路径已被目录占用。
	ErrDestinationIsDir = errors.New("destination is a directory")
)

// DownloadError 包装下载后端的失败，Destination 为最终目标或临时文件路径。
type DownloadError struct {
	URL         string
	Destination string
	Result      *Result
	Err         error
}

func (e *DownloadError) Error() string {
	msg := fmt.Sprintf("download %s -> %s: %v", e.URL, e.Destination, e.Err)
	if e.Result != nil && (len(e.Result.Command) > 0 || e.Result.Stderr != "") {
		msg += "\n" + indent(e.Result.String(), " | ")
	}
	return msg
}

func (e *DownloadError) Is(target error) bool {
	return target == ErrDownload
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// PostconditionError 携带下载结果与临时文件所在目录的列表，用于排查。
type PostconditionError struct {
	URL         string
	Destination string
	TempPath    string
	Result      *Result
	Listing     string
}

func (e *PostconditionError) Error() string {
	var b strings.Builder
	b.WriteString("downloaded file does not exist but the downloader did not report an error")
	fmt.Fprintf(&b, "\n url: %s", e.URL)
	fmt.Fprintf(&b, "\n destination: %s", e.Destination)
	fmt.Fprintf(&b, "\n downloaded to: %s", e.TempPath)
	b.WriteString("\n" + indent(e.Result.String(), " | "))
	b.WriteString("\n contents of the directory:")
	b.WriteString("\n" + indent(e.Listing, " | "))
	return b.String()
}

func (e *PostconditionError) Is(target error) bool {
	return target == ErrPostcondition
}

// IntegrityError 是最终的后置断言：下载失败本应更早以 DownloadError 返回。
type IntegrityError struct {
	URL         string
	Destination string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("expected the downloader to report an error on failure\n url: %s\n destination: %s",
		e.URL, e.Destination)
}

func (e *IntegrityError) Is(target error) bool {
	return target == ErrIntegrity
}

// CommitError 描述下载成功后 rename 到目标路径失败，临时文件已被清理。
type CommitError struct {
	URL         string
	Destination string
	TempPath    string
	Err         error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("move %s -> %s (url %s): %v", e.TempPath, e.Destination, e.URL, e.Err)
}

func (e *CommitError) Is(target error) bool {
	return target == ErrCommit
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// DestinationError 表示目标路径不可用，此时不会发起下载。
type DestinationError struct {
	URL         string
	Destination string
}

func (e *DestinationError) Error() string {
	return fmt.Sprintf("cannot fetch %s: %s is a directory", e.URL, e.Destination)
}

func (e *DestinationError) Is(target error) bool {
	return target == ErrDestinationIsDir
}
