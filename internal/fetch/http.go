package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/resfetch/resfetch/internal/version"
)

// Shared HTTP transport tunings，复用长连接并集中配置超时。
var defaultTransport = &http.Transport{
	Proxy:                 http.ProxyFromEnvironment,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   100,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
	ForceAttemptHTTP2:     true,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
}

// NewHTTPClient 返回下载用 http.Client。整体超时不在 client 上设置，
// 由 Fetcher 通过 context 控制（0 表示不限时）。
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: defaultTransport.Clone(),
	}
}

// HTTPDownloader 通过原生 HTTP GET 下载，跟随重定向（Dropbox 直链会 302）。
type HTTPDownloader struct {
	client *http.Client
}

// NewHTTPDownloader 包装给定 client；nil 时使用 NewHTTPClient。
func NewHTTPDownloader(client *http.Client) *HTTPDownloader {
	if client == nil {
		client = NewHTTPClient()
	}
	return &HTTPDownloader{client: client}
}

func (d *HTTPDownloader) Download(ctx context.Context, url, target string) (*Result, error) {
	result := &Result{Backend: BackendHTTP}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return result, &DownloadError{URL: url, Destination: target, Result: result, Err: err}
	}
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := d.client.Do(req)
	if err != nil {
		return result, &DownloadError{URL: url, Destination: target, Result: result, Err: err}
	}
	defer resp.Body.Close()

	result.Status = resp.Status
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return result, &DownloadError{
			URL:         url,
			Destination: target,
			Result:      result,
			Err:         fmt.Errorf("bad http response %s", resp.Status),
		}
	}

	file, err := os.Create(target)
	if err != nil {
		return result, &DownloadError{URL: url, Destination: target, Result: result, Err: err}
	}

	written, err := copyWithContext(ctx, file, resp.Body)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	result.Bytes = written
	if err != nil {
		os.Remove(target)
		return result, &DownloadError{URL: url, Destination: target, Result: result, Err: err}
	}
	return result, nil
}

func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	var copied int64
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		n, err := src.Read(buf)
		if n > 0 {
			w, wErr := dst.Write(buf[:n])
			copied += int64(w)
			if wErr != nil {
				return copied, wErr
			}
			if w < n {
				return copied, io.ErrShortWrite
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return copied, nil
			}
			return copied, err
		}
	}
}
