package urltable

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/resfetch/resfetch/internal/hashid"
)

func newResolverTable(t *testing.T) *Table {
	t.Helper()
	table, err := New("mem", map[string]string{
		"hash:" + sampleSHA: "https://x/by-hash",
		"log.bag":           "https://x/by-name",
	})
	require.NoError(t, err)
	return table
}

func TestResolvePrefersSHA1(t *testing.T) {
	table := newResolverTable(t)

	url, err := table.Resolve("hash:" + sampleSHA + ":log.bag")
	require.NoError(t, err)
	require.Equal(t, "https://x/by-hash", url)
}

func TestResolveFallsBackToName(t *testing.T) {
	table := newResolverTable(t)

	url, err := table.Resolve("hash:" + otherSHA + ":log.bag")
	require.NoError(t, err)
	require.Equal(t, "https://x/by-name", url)
}

func TestResolveUnknown(t *testing.T) {
	table := newResolverTable(t)

	_, err := table.Resolve("hash:" + otherSHA + ":other.bag")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotResolved))
	require.Contains(t, err.Error(), otherSHA)

	_, err = table.Resolve("hash:" + otherSHA)
	require.True(t, errors.Is(err, ErrNotResolved))
}

func TestResolveInvalidIdentifier(t *testing.T) {
	table := newResolverTable(t)

	_, err := table.Resolve("log.bag")
	require.True(t, errors.Is(err, hashid.ErrInvalid))
}

func TestRequireIgnoresHashIndex(t *testing.T) {
	table := newResolverTable(t)

	url, err := table.Require("log.bag")
	require.NoError(t, err)
	require.Equal(t, "https://x/by-name", url)

	_, err = table.Require(sampleSHA)
	require.True(t, errors.Is(err, ErrNotResolved))
	require.Contains(t, err.Error(), "no URL found")
}
