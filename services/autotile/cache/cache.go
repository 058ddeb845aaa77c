// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cache stores solved scenarios in BadgerDB keyed by scenario
// fingerprint, so repeated solves of an identical scenario and solver
// configuration skip the search.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	badgerstore "github.com/AleutianAI/AleutianTile/services/autotile/storage/badger"
)

// ErrEmptyKey indicates a lookup or store with an empty fingerprint.
var ErrEmptyKey = errors.New("cache key must not be empty")

const keyPrefix = "solution/"

// SolutionCache is a TTL cache of JSON-encoded solve results.
//
// Thread Safety: Safe for concurrent use.
type SolutionCache struct {
	db     *badgerstore.DB
	ttl    time.Duration
	logger *slog.Logger
}

// New wraps an open store. ttl <= 0 keeps entries forever.
func New(db *badgerstore.DB, ttl time.Duration, logger *slog.Logger) *SolutionCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &SolutionCache{
		db:     db,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "solution_cache")),
	}
}

// Open opens a store at dir (or in memory) and wraps it.
//
// Inputs:
//
//	dir - Store directory. Ignored when inMemory is true.
//	inMemory - Keep entries only in RAM.
//	ttl - Entry lifetime; <= 0 never expires.
//	logger - Optional logger.
//
// Outputs:
//
//	*SolutionCache - The cache. Caller must Close it.
//	error - Non-nil if the store cannot be opened.
func Open(dir string, inMemory bool, ttl time.Duration, logger *slog.Logger) (*SolutionCache, error) {
	opts := badgerstore.DefaultOptions(dir)
	if inMemory {
		opts = badgerstore.InMemoryOptions()
	}
	db, err := badgerstore.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open solution cache: %w", err)
	}
	return New(db, ttl, logger), nil
}

// Get decodes the entry for key into out.
//
// Outputs:
//
//	bool - True on a hit. A miss leaves out untouched.
//	error - Non-nil on storage or decode failure.
func (c *SolutionCache) Get(ctx context.Context, key string, out any) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	var hit bool
	err := c.db.View(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		hit = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	return hit, nil
}

// Put stores v under key, replacing any previous entry.
func (c *SolutionCache) Put(ctx context.Context, key string, v any) error {
	if key == "" {
		return ErrEmptyKey
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	err = c.db.Update(ctx, func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(keyPrefix+key), data)
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("cache put %s: %w", key, err)
	}
	c.logger.Debug("cached solution", slog.String("key", key), slog.Int("bytes", len(data)))
	return nil
}

// Delete removes the entry for key. Missing keys are not an error.
func (c *SolutionCache) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return c.db.Update(ctx, func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + key))
	})
}

// Len counts live entries.
func (c *SolutionCache) Len(ctx context.Context) (int, error) {
	n := 0
	err := c.db.View(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Purge drops every entry.
func (c *SolutionCache) Purge() error {
	return c.db.DropPrefix([]byte(keyPrefix))
}

// Close closes the underlying store.
func (c *SolutionCache) Close() error {
	return c.db.Close()
}
