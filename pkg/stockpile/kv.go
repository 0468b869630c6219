// Copyright 2025 Certen Protocol

// Package stockpile implements the per-contract durable store: Stock
// (the append-only operation log and its indexes) and Pile (the seal
// and witness store), composed into a Stockpile that exposes
// Issue/Open/Seal/State/Attest/Consign/Consume. Persistence is backed
// by github.com/cometbft/cometbft-db, following the same KV-adapter and
// explicit big-endian key-layout idiom as the teacher's
// pkg/kvdb/adapter.go and pkg/ledger/store.go.
package stockpile

import (
	"encoding/binary"
	"fmt"
	"sort"

	dbm "github.com/cometbft/cometbft-db"
)

// KV is the narrow persistence contract Stock and Pile are built
// against, matching pkg/ledger's KV interface shape one-for-one so the
// same cometbft-db backends serve both the teacher's ledger store and
// this package.
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Has(key []byte) (bool, error)
	Iterate(prefix []byte, fn func(key, value []byte) error) error
}

// KVAdapter wraps a cometbft-db dbm.DB into the KV contract, mirroring
// pkg/kvdb.KVAdapter's Get/SetSync delegation.
type KVAdapter struct {
	db dbm.DB
}

// NewKVAdapter wraps db. A nil db is accepted and behaves as an empty,
// write-discarding store, matching pkg/kvdb.KVAdapter's nil-tolerant
// Get.
func NewKVAdapter(db dbm.DB) *KVAdapter {
	return &KVAdapter{db: db}
}

// Get returns the value stored at key, or (nil, nil) if absent.
func (a *KVAdapter) Get(key []byte) ([]byte, error) {
	if a.db == nil {
		return nil, nil
	}
	v, err := a.db.Get(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIo, err)
	}
	return v, nil
}

// Set durably writes value at key via SetSync, matching the teacher's
// preference for synchronous writes over the journal/ledger store.
func (a *KVAdapter) Set(key, value []byte) error {
	if a.db == nil {
		return nil
	}
	if err := a.db.SetSync(key, value); err != nil {
		return fmt.Errorf("%w: %v", ErrIo, err)
	}
	return nil
}

// Has reports whether key is present.
func (a *KVAdapter) Has(key []byte) (bool, error) {
	if a.db == nil {
		return false, nil
	}
	ok, err := a.db.Has(key)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrIo, err)
	}
	return ok, nil
}

// Iterate calls fn for every key/value pair whose key starts with
// prefix, in ascending key order.
func (a *KVAdapter) Iterate(prefix []byte, fn func(key, value []byte) error) error {
	if a.db == nil {
		return nil
	}
	end := upperBound(prefix)
	it, err := a.db.Iterator(prefix, end)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIo, err)
	}
	defer it.Close()
	for ; it.Valid(); it.Next() {
		if err := fn(it.Key(), it.Value()); err != nil {
			return err
		}
	}
	return nil
}

// upperBound returns the smallest key greater than every key sharing
// prefix, i.e. prefix with its last byte incremented (carrying as
// needed), or nil for an unbounded scan if prefix is all 0xff.
func upperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// MemKV is an in-process, non-persistent KV used by tests and by
// callers that want a Stockpile without a backing database.
type MemKV struct {
	data map[string][]byte
}

// NewMemKV returns an empty MemKV.
func NewMemKV() *MemKV { return &MemKV{data: make(map[string][]byte)} }

func (m *MemKV) Get(key []byte) ([]byte, error) { return m.data[string(key)], nil }

func (m *MemKV) Set(key, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)
	m.data[string(key)] = cp
	return nil
}

func (m *MemKV) Has(key []byte) (bool, error) {
	_, ok := m.data[string(key)]
	return ok, nil
}

func (m *MemKV) Iterate(prefix []byte, fn func(key, value []byte) error) error {
	var keys []string
	for k := range m.data {
		if len(k) < len(prefix) || k[:len(prefix)] != string(prefix) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := fn([]byte(k), m.data[k]); err != nil {
			return err
		}
	}
	return nil
}

// key layout, following pkg/ledger/store.go's prefix-var + helper-func
// convention.
var (
	keyArticles        = []byte("stockpile/articles")
	keyOrderLog        = []byte("stockpile/order")
	keyGenesisOpid      = []byte("stockpile/genesis_opid")
	keyOpPrefix        = []byte("stockpile/op/")
	keySealPrefix      = []byte("stockpile/seal/")
	keyWitnessPrefix   = []byte("stockpile/witness/")
	keyAuthTokenPrefix = []byte("stockpile/authtoken/")
)

func opKey(opid [32]byte) []byte {
	return append(append([]byte{}, keyOpPrefix...), opid[:]...)
}

func sealKey(authToken [32]byte) []byte {
	return append(append([]byte{}, keySealPrefix...), authToken[:]...)
}

func witnessKey(opid [32]byte, index uint16) []byte {
	k := append(append([]byte{}, keyWitnessPrefix...), opid[:]...)
	var idx [2]byte
	binary.BigEndian.PutUint16(idx[:], index)
	return append(k, idx[:]...)
}

func authTokenKey(authToken [32]byte) []byte {
	return append(append([]byte{}, keyAuthTokenPrefix...), authToken[:]...)
}
