package urltable

import "github.com/resfetch/resfetch/internal/hashid"

// Resolve 将 hash 标识符解析为 URL：sha1 命中优先，其次按 name 查表。
func (t *Table) Resolve(hashURL string) (string, error) {
	id, err := hashid.Parse(hashURL)
	if err != nil {
		return "", err
	}
	return t.ResolveID(id)
}

// ResolveID 与 Resolve 相同，但接收已解析的标识符。
func (t *Table) ResolveID(id hashid.ID) (string, error) {
	if url, ok := t.bySHA1[id.SHA1]; ok {
		return url, nil
	}
	if id.Name != "" {
		if url, ok := t.urls[id.Name]; ok {
			return url, nil
		}
	}
	return "", &ResolutionError{Ref: id.String(), Reason: "cannot find url"}
}

// Require 按名称查找，不参与 hash 解析；缺失时返回 ResolutionError。
func (t *Table) Require(name string) (string, error) {
	url, ok := t.urls[name]
	if !ok {
		return "", &ResolutionError{Ref: name, Reason: "no URL found"}
	}
	return url, nil
}
