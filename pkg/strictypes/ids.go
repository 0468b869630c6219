// Copyright 2025 Certen Protocol

// Package strictypes implements the deterministic, confinement-bounded
// binary encoding that every contract-level value is committed and
// transmitted in, plus the semantic-type registry (SemId) the builder
// uses to typecheck raw values before encoding them.
package strictypes

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SemId identifies a registered semantic type: the shape a piece of
// metadata, global state, or owned state must strict-encode to.
type SemId = common.Hash

// ContractId is the content hash of a contract's genesis operation.
type ContractId = common.Hash

// CodexId is the content hash of a codex (the VM-interpreted rule set
// a schema is built around).
type CodexId = common.Hash

// Opid is the content hash of a single operation (genesis, transition,
// or extension).
type Opid = common.Hash

// AttachId is the content hash of a large binary attachment referenced
// by, but not inlined into, an operation.
type AttachId = common.Hash

// AuthToken is the content hash a seal commits to; closing a seal is
// witnessed by revealing a value that hashes to its AuthToken.
type AuthToken = common.Hash

// HashId computes the content id (Keccak-256, via go-ethereum's crypto
// package) of the strict-encoded form of v.
func HashId(v Encodable) (common.Hash, error) {
	b, err := StrictEncode(v)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(b), nil
}
