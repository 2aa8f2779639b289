// Package cache owns the shared download directory. It maps resource names
// to files under the base path (rejecting names that would escape it),
// reports whether an entry is present, and hands out per-path locks so that
// fetches for the same destination inside one process run one at a time.
// Presence of the file is the only cache signal: entries carry no TTL and are
// never revalidated.
package cache
