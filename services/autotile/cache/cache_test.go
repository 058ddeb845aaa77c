// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Tiles []int64 `json:"tiles"`
	Cost  float64 `json:"cost"`
}

func newMemCache(t *testing.T, ttl time.Duration) *SolutionCache {
	t.Helper()
	c, err := Open("", true, ttl, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSolutionCache_PutGet(t *testing.T) {
	ctx := context.Background()
	c := newMemCache(t, 0)

	var got entry
	hit, err := c.Get(ctx, "abc", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	want := entry{Tiles: []int64{32, 64}, Cost: 1234.5}
	require.NoError(t, c.Put(ctx, "abc", want))

	hit, err = c.Get(ctx, "abc", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, want, got)

	n, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSolutionCache_EmptyKey(t *testing.T) {
	ctx := context.Background()
	c := newMemCache(t, 0)

	_, err := c.Get(ctx, "", &entry{})
	assert.ErrorIs(t, err, ErrEmptyKey)
	assert.ErrorIs(t, c.Put(ctx, "", entry{}), ErrEmptyKey)
	assert.ErrorIs(t, c.Delete(ctx, ""), ErrEmptyKey)
}

func TestSolutionCache_DeleteAndPurge(t *testing.T) {
	ctx := context.Background()
	c := newMemCache(t, 0)

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Put(ctx, k, entry{Cost: 1}))
	}
	require.NoError(t, c.Delete(ctx, "a"))
	require.NoError(t, c.Delete(ctx, "missing"))

	n, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, c.Purge())
	n, err = c.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSolutionCache_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	c := newMemCache(t, time.Second)

	require.NoError(t, c.Put(ctx, "short", entry{Cost: 2}))
	hit, err := c.Get(ctx, "short", &entry{})
	require.NoError(t, err)
	assert.True(t, hit)

	// Badger TTLs have one-second granularity.
	time.Sleep(2100 * time.Millisecond)
	hit, err = c.Get(ctx, "short", &entry{})
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestSolutionCache_PersistentReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	c, err := Open(dir, false, 0, nil)
	require.NoError(t, err)
	require.NoError(t, c.Put(ctx, "k", entry{Tiles: []int64{8}}))
	require.NoError(t, c.Close())

	c2, err := Open(dir, false, 0, nil)
	require.NoError(t, err)
	defer c2.Close()

	var got entry
	hit, err := c2.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []int64{8}, got.Tiles)
}
