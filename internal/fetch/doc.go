// Package fetch places remote content at an exact local path. A Fetcher
// treats an existing destination as a cache hit; otherwise it downloads into
// <destination>.tmp_download_file through a Downloader backend (native HTTP
// or an external wget invocation) and renames the temp file into place.
// Every failure is returned immediately, without retries, as one of the
// error types in errors.go.
package fetch
