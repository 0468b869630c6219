// Copyright 2025 Certen Protocol

// Package mound implements the multi-contract registry: many
// Stockpiles sharing one consensus/testnet environment, dispatched to
// by the magic-versioned consignment envelope spec.md §6 defines.
package mound

import (
	"fmt"
	"io"
	"log"
	"sort"

	"github.com/certen/rgb-stockpile/pkg/operation"
	"github.com/certen/rgb-stockpile/pkg/resolver"
	"github.com/certen/rgb-stockpile/pkg/schema"
	"github.com/certen/rgb-stockpile/pkg/stockpile"
	"github.com/certen/rgb-stockpile/pkg/strictypes"
)

// KVFactory allocates a fresh, contract-scoped KV store, so each
// Stockpile a Mound manages gets its own cometbft-db-backed namespace
// (or in-memory store, for tests) rather than sharing one flat
// keyspace across contracts.
type KVFactory func(contractId strictypes.ContractId) stockpile.KV

// Mound is a typed registry of contracts sharing one consensus
// environment: it holds a schema per codex id and a Stockpile per
// contract id, and routes consign/consume calls between them.
type Mound struct {
	consensus string
	testnet   bool
	schemata  map[strictypes.CodexId]*schema.Schema
	contracts map[strictypes.ContractId]*stockpile.Stockpile
	newKV     KVFactory
	vm        stockpile.VM
	logger    *log.Logger
}

// New returns an empty Mound for the given consensus/testnet
// environment. If newKV is nil, every issued contract gets an
// in-memory store. The VM defaults to stockpile.NopVM; call SetVM to
// bind a real bytecode interpreter.
func New(consensus string, testnet bool, newKV KVFactory) *Mound {
	if newKV == nil {
		newKV = func(strictypes.ContractId) stockpile.KV { return stockpile.NewMemKV() }
	}
	return &Mound{
		consensus: consensus,
		testnet:   testnet,
		schemata:  make(map[strictypes.CodexId]*schema.Schema),
		contracts: make(map[strictypes.ContractId]*stockpile.Stockpile),
		newKV:     newKV,
		vm:        stockpile.NopVM{},
		logger:    log.New(log.Writer(), "[Mound] ", log.LstdFlags),
	}
}

// SetVM binds the VM every Stockpile the mound issues, seeds, or
// consumes into validates transitions against. A nil vm resets to
// NopVM.
func (m *Mound) SetVM(vm stockpile.VM) {
	if vm == nil {
		vm = stockpile.NopVM{}
	}
	m.vm = vm
}

// RegisterSchema makes s available for issuance under its codex id.
func (m *Mound) RegisterSchema(s *schema.Schema) {
	m.schemata[s.Codex.CodexId] = s
	m.logger.Printf("registered schema codex_id=%x", s.Codex.CodexId)
}

// Schema looks up a previously registered schema.
func (m *Mound) Schema(codexId strictypes.CodexId) (*schema.Schema, bool) {
	s, ok := m.schemata[codexId]
	return s, ok
}

// SeedContract inserts an already-constructed Stockpile directly,
// bypassing Issue — used when consuming a consignment for a contract
// the receiver has imported articles for but not issued themselves.
// The schema registered under the stockpile's own codex id, if any, is
// (re)bound so later ApplyTransition calls enforce it.
func (m *Mound) SeedContract(sp *stockpile.Stockpile) {
	if s, ok := m.schemata[sp.Articles().SchemaId]; ok {
		sp.BindSchema(s, m.vm)
	}
	m.contracts[sp.ContractId()] = sp
}

// Issue validates params against the mound's environment, looks up the
// named schema, and issues a new contract, registering it under the
// resulting ContractId.
func (m *Mound) Issue(params schema.IssueParams) (strictypes.ContractId, error) {
	if params.Core.Consensus != "" && params.Core.Consensus != m.consensus {
		return strictypes.ContractId{}, fmt.Errorf("%w: params want %q, mound is %q",
			ErrConsensusMismatch, params.Core.Consensus, m.consensus)
	}
	if params.Core.Testnet != m.testnet {
		return strictypes.ContractId{}, fmt.Errorf("%w: params testnet=%v, mound testnet=%v",
			ErrTestnetMismatch, params.Core.Testnet, m.testnet)
	}
	s, ok := m.schemata[params.Core.SchemaId]
	if !ok {
		return strictypes.ContractId{}, fmt.Errorf("%w: %x", ErrUnknownCodex, params.Core.SchemaId)
	}
	g, err := s.Issue(params)
	if err != nil {
		return strictypes.ContractId{}, err
	}
	contractId, err := operation.OpidOf(&g)
	if err != nil {
		return strictypes.ContractId{}, err
	}
	sp, err := stockpile.Issue(m.newKV(contractId), g, s, strictypes.SemId{}, m.vm)
	if err != nil {
		return strictypes.ContractId{}, err
	}
	m.contracts[sp.ContractId()] = sp
	m.logger.Printf("issued contract_id=%x codex_id=%x", sp.ContractId(), s.Codex.CodexId)
	return sp.ContractId(), nil
}

// ContractIds returns every contract id the mound currently hosts, in
// sorted order for deterministic enumeration.
func (m *Mound) ContractIds() []strictypes.ContractId {
	ids := make([]strictypes.ContractId, 0, len(m.contracts))
	for id := range m.contracts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Hex() < ids[j].Hex() })
	return ids
}

// ContractsInfo enumerates every hosted contract's summary, ported
// from original_source/mound.rs's contracts_info().
func (m *Mound) ContractsInfo() []operation.ContractInfo {
	var out []operation.ContractInfo
	for _, id := range m.ContractIds() {
		sp := m.contracts[id]
		a := sp.Articles()
		out = append(out, operation.ContractInfo{
			ContractId: sp.ContractId(),
			SchemaId:   a.SchemaId,
			Testnet:    a.Genesis.Testnet,
			Issuer:     a.Genesis.Issuer,
		})
	}
	return out
}

// Select returns the Stockpile managing contractId.
func (m *Mound) Select(contractId strictypes.ContractId) (*stockpile.Stockpile, error) {
	sp, ok := m.contracts[contractId]
	if !ok {
		return nil, fmt.Errorf("%w: %x", ErrUnknownContract, contractId)
	}
	return sp, nil
}

// Consign writes the Mound-level envelope (magic, version, contract
// id) followed by the named contract's Stockpile-level consignment
// body.
func (m *Mound) Consign(contractId strictypes.ContractId, terminals []strictypes.AuthToken, w io.Writer) error {
	sp, err := m.Select(contractId)
	if err != nil {
		return err
	}
	if err := stockpile.WriteEnvelope(w, contractId); err != nil {
		return err
	}
	return sp.Consign(terminals, w)
}

// Consume reads the Mound-level envelope, rejecting unrecognized magic
// bytes, then dispatches the remaining Stockpile-level body to the
// matching contract — which the receiver must have already imported
// (via Issue or a prior SeedContract), per spec.md §4.5. The schema
// registered for the contract's codex id is (re)bound before
// delegating, so ApplyTransition enforces the mound's own schema
// rather than whatever (or nothing) the Stockpile was opened with.
func (m *Mound) Consume(r io.Reader, res resolver.Resolver) error {
	contractId, err := stockpile.ReadEnvelope(r)
	if err != nil {
		return err
	}
	sp, ok := m.contracts[contractId]
	if !ok {
		return fmt.Errorf("%w: %x (import articles first)", ErrUnknownContract, contractId)
	}
	s, ok := m.schemata[sp.Articles().SchemaId]
	if !ok {
		return fmt.Errorf("%w: %x", ErrUnknownCodex, sp.Articles().SchemaId)
	}
	sp.BindSchema(s, m.vm)
	return sp.Consume(r, res)
}
