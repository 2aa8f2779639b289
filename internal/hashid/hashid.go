// Package hashid parses content-hash identifiers of the form
// hash:<sha1>[:<name>]. The sha1 addresses a resource independently of the
// URL it is currently published at; the optional name is a friendly file
// name used as a fallback lookup key and as the default cache basename.
package hashid

import (
	"errors"
	"fmt"
	"strings"
)

// Scheme 是标识符前缀。
const Scheme = "hash"

const sha1HexLen = 40

// ErrInvalid 表示字符串不是合法的 hash 标识符。
var ErrInvalid = errors.New("invalid hash identifier")

// ID 是解析后的 hash 标识符，Name 可为空。
type ID struct {
	Scheme string
	SHA1   string
	Name   string
}

// HasPrefix 判断字符串是否使用 hash: 前缀，不做进一步校验。
func HasPrefix(s string) bool {
	return strings.HasPrefix(s, Scheme+":")
}

// Parse 解析 hash:<sha1>[:<name>]。sha1 统一为小写；name 允许包含冒号。
func Parse(s string) (ID, error) {
	raw := strings.TrimSpace(s)
	if !HasPrefix(raw) {
		return ID{}, fmt.Errorf("%w: %q: missing %s: prefix", ErrInvalid, s, Scheme)
	}
	rest := strings.TrimPrefix(raw, Scheme+":")

	sha, name, _ := strings.Cut(rest, ":")
	sha = strings.ToLower(sha)
	if !isSHA1(sha) {
		return ID{}, fmt.Errorf("%w: %q: sha1 must be %d hex characters", ErrInvalid, s, sha1HexLen)
	}

	return ID{Scheme: Scheme, SHA1: sha, Name: name}, nil
}

// String 还原为 hash:<sha1>[:<name>] 形式。
func (id ID) String() string {
	if id.Name == "" {
		return Scheme + ":" + id.SHA1
	}
	return Scheme + ":" + id.SHA1 + ":" + id.Name
}

// Basename 返回默认缓存文件名：优先 Name，否则 SHA1。
func (id ID) Basename() string {
	if id.Name != "" {
		return id.Name
	}
	return id.SHA1
}

func isSHA1(s string) bool {
	if len(s) != sha1HexLen {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}
