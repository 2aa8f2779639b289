// Package server hosts the Fiber HTTP service that exposes resource fetching
// over HTTP: GET /resources/<name>, GET /hash?id=<hash-url> and GET /url?u=<url>
// ensure the file is cached and stream it back. Diagnostics live under /-/
// (see the routes subpackage). Dependencies are passed explicitly through
// AppOptions so tests can inject fakes.
package server
