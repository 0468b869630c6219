// Copyright 2025 Certen Protocol

package stockpile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/certen/rgb-stockpile/pkg/operation"
	"github.com/certen/rgb-stockpile/pkg/resolver"
	"github.com/certen/rgb-stockpile/pkg/schema"
	"github.com/certen/rgb-stockpile/pkg/seal"
	"github.com/certen/rgb-stockpile/pkg/strictypes"
)

// ContractState is the aggregated view State() returns: the contract's
// current global-state log plus every unspent owned-state assignment,
// indexed by assignment type.
type ContractState struct {
	Globals operation.GlobalState
	Unspent map[uint16][]unspentEntry
}

type unspentEntry struct {
	Opout operation.Opout
	State operation.AssignmentState
}

// Stockpile is a single contract's exclusive store: its immutable
// Articles header, its Stock of applied operations, and its Pile of
// seals and witnesses. Per spec.md §5, mutating calls (Issue is a
// constructor; ApplyTransition/Attest/Consume mutate) are not
// re-entrant — callers serialize access to a given Stockpile
// themselves, matching the "single-owner, cooperatively synchronous"
// model.
type Stockpile struct {
	kv         KV
	stock      *Stock
	pile       *Pile
	articles   operation.Articles
	contractId strictypes.ContractId
	schema     *schema.Schema
	vm         VM
	logger     *log.Logger
}

// Issue writes a genesis operation into a fresh store and returns the
// resulting Stockpile, bound to s for every later schema cardinality
// check and VM evaluation. The genesis's own content hash becomes the
// ContractId, per strictypes.Opid's doc comment. A nil vm runs with
// NopVM.
func Issue(kv KV, g operation.Genesis, s *schema.Schema, ifaceId strictypes.SemId, vm VM) (*Stockpile, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: Issue requires a schema", ErrSchemaMismatch)
	}
	if vm == nil {
		vm = NopVM{}
	}
	contractId, err := operation.OpidOf(&g)
	if err != nil {
		return nil, err
	}
	sp := &Stockpile{
		kv:         kv,
		stock:      NewStock(kv),
		pile:       NewPile(kv),
		contractId: contractId,
		schema:     s,
		vm:         vm,
		articles: operation.Articles{
			Version:  operation.ContainerV2,
			Genesis:  g,
			SchemaId: s.Codex.CodexId,
			IfaceId:  ifaceId,
		},
		logger: log.New(log.Writer(), "[Stockpile] ", log.LstdFlags),
	}
	if err := sp.stock.PutGenesis(contractId, g); err != nil {
		return nil, err
	}
	if err := sp.registerAssignmentSeals(contractId, g.Assigns); err != nil {
		return nil, err
	}
	if err := sp.appendOrder(contractId); err != nil {
		return nil, err
	}
	if err := sp.storeArticles(); err != nil {
		return nil, err
	}
	sp.logger.Printf("issued contract_id=%x schema_id=%x", contractId, s.Codex.CodexId)
	return sp, nil
}

// Open reconstructs a Stockpile previously written to kv by Issue or
// Consume, binding the schema resolveSchema resolves for the stored
// articles' codex id. A nil resolveSchema leaves the Stockpile
// unbound (no schema/VM enforcement) — callers such as Mound.Consume
// are expected to call BindSchema before mutating it. A nil vm runs
// with NopVM once a schema is bound.
func Open(kv KV, resolveSchema SchemaResolver, vm VM) (*Stockpile, error) {
	raw, err := kv.Get(keyArticles)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: no articles stored", ErrUnknownContract)
	}
	var a operation.Articles
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("%w: decode articles: %v", ErrDecode, err)
	}
	contractId, err := operation.OpidOf(&a.Genesis)
	if err != nil {
		return nil, err
	}
	sp := &Stockpile{
		kv:         kv,
		stock:      NewStock(kv),
		pile:       NewPile(kv),
		contractId: contractId,
		articles:   a,
		logger:     log.New(log.Writer(), "[Stockpile] ", log.LstdFlags),
	}
	if resolveSchema != nil {
		s, err := resolveSchema(a.SchemaId)
		if err != nil {
			return nil, err
		}
		sp.BindSchema(s, vm)
	}
	return sp, nil
}

// BindSchema attaches the schema and VM a Stockpile validates
// transitions against. A nil vm runs with NopVM.
func (sp *Stockpile) BindSchema(s *schema.Schema, vm VM) {
	if vm == nil {
		vm = NopVM{}
	}
	sp.schema = s
	sp.vm = vm
}

func (sp *Stockpile) storeArticles() error {
	b, err := json.Marshal(sp.articles)
	if err != nil {
		return fmt.Errorf("stockpile: encode articles: %w", err)
	}
	return sp.kv.Set(keyArticles, b)
}

// ContractId returns the contract this Stockpile stores.
func (sp *Stockpile) ContractId() strictypes.ContractId { return sp.contractId }

// Articles returns the contract's immutable header.
func (sp *Stockpile) Articles() operation.Articles { return sp.articles }

func (sp *Stockpile) registerAssignmentSeals(opid strictypes.Opid, assigns operation.Assignments) error {
	for t, states := range assigns {
		for i, st := range states {
			token, err := st.Seal.AuthTokenValue()
			if err != nil {
				return err
			}
			opout := operation.Opout{Opid: opid, Type: t, No: uint16(i)}
			if err := sp.pile.RegisterSeal(token, opout); err != nil {
				return err
			}
		}
	}
	return nil
}

func (sp *Stockpile) appendOrder(opid strictypes.Opid) error {
	order, err := sp.loadOrder()
	if err != nil {
		return err
	}
	order = append(order, opid)
	b, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("stockpile: encode order log: %w", err)
	}
	return sp.kv.Set(keyOrderLog, b)
}

func (sp *Stockpile) loadOrder() ([]strictypes.Opid, error) {
	raw, err := sp.kv.Get(keyOrderLog)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var order []strictypes.Opid
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("%w: decode order log: %v", ErrDecode, err)
	}
	return order, nil
}

// Seal resolves an AuthToken to the operation output it commits to.
func (sp *Stockpile) Seal(token strictypes.AuthToken) (operation.Opout, error) {
	return sp.pile.ResolveSeal(token)
}

// priorAssignment fetches the assignment state a prior operation
// created at opout: both the seal a closing witness must reference and
// the state the VM consumes as input.
func (sp *Stockpile) priorAssignment(opout operation.Opout) (operation.AssignmentState, error) {
	var assigns operation.Assignments
	if opout.Opid == sp.contractId {
		g, err := sp.stock.GetGenesis(opout.Opid)
		if err != nil {
			return operation.AssignmentState{}, err
		}
		assigns = g.Assigns
	} else {
		tr, err := sp.stock.GetTransition(opout.Opid)
		if err != nil {
			return operation.AssignmentState{}, err
		}
		assigns = tr.Assigns
	}
	states, ok := assigns[opout.Type]
	if !ok || int(opout.No) >= len(states) {
		return operation.AssignmentState{}, fmt.Errorf("%w: opout %+v", ErrUnknownSeal, opout)
	}
	return states[opout.No], nil
}

// findClosingWitness returns the first witness in candidates whose
// client witness both names opout's creating operation and verifiably
// closes opout's seal.
func findClosingWitness(opout operation.Opout, priorSeal seal.EitherSeal, candidates []seal.Witness) (seal.Witness, bool) {
	token, err := priorSeal.AuthTokenValue()
	if err != nil {
		return seal.Witness{}, false
	}
	for _, w := range candidates {
		if w.Client.Opid != opout.Opid {
			continue
		}
		if seal.AuthTokenOf(w.Client.Outpoint) != token {
			continue
		}
		if w.Client.Verify() != nil {
			continue
		}
		return w, true
	}
	return seal.Witness{}, false
}

// ApplyTransition validates that every input the transition consumes
// has already been applied and not already spent, that the schema
// declares the transition's cardinality, that the bound VM accepts it,
// and that every input is closed by at least one verified witness in
// witnesses — per spec.md Invariant 3, all three must hold before any
// state mutation occurs. It then stores the transition, marks its
// inputs spent, registers the new assignments' seals, and records
// witnesses against the transition itself, the same way Consume's
// wire records carry a transition alongside the witnesses closing it.
func (sp *Stockpile) ApplyTransition(t operation.Transition, witnesses []seal.Witness) (strictypes.Opid, error) {
	if t.ContractId != sp.contractId {
		return strictypes.Opid{}, fmt.Errorf("%w: transition targets a different contract", ErrVerification)
	}
	if sp.schema == nil {
		return strictypes.Opid{}, fmt.Errorf("%w: stockpile has no schema bound", ErrSchemaMismatch)
	}
	if err := sp.schema.ValidateTransition(t); err != nil {
		return strictypes.Opid{}, fmt.Errorf("%w: %v", ErrVerification, err)
	}

	prior := make([]operation.AssignmentState, 0, len(t.Inputs))
	for _, in := range t.Inputs {
		has, err := sp.stock.Has(in.Opout.Opid)
		if err != nil {
			return strictypes.Opid{}, err
		}
		if !has {
			return strictypes.Opid{}, fmt.Errorf("%w: input opid %x not yet applied", ErrVerification, in.Opout.Opid)
		}
		spent, err := sp.kv.Has(spentKey(in.Opout))
		if err != nil {
			return strictypes.Opid{}, err
		}
		if spent {
			return strictypes.Opid{}, fmt.Errorf("%w: input opout %+v already spent", ErrVerification, in.Opout)
		}
		st, err := sp.priorAssignment(in.Opout)
		if err != nil {
			return strictypes.Opid{}, err
		}
		if _, ok := findClosingWitness(in.Opout, st.Seal, witnesses); !ok {
			return strictypes.Opid{}, fmt.Errorf("%w: input opout %+v has no verified closing witness", ErrVerification, in.Opout)
		}
		prior = append(prior, st)
	}

	ts := sp.schema.Transitions[schema.TypeId(t.TypeId)]
	if err := sp.vm.Exec(sp.schema.Codex, ts.Method, t, prior); err != nil {
		return strictypes.Opid{}, fmt.Errorf("%w: %v", ErrVerification, err)
	}

	opid, err := operation.OpidOf(&t)
	if err != nil {
		return strictypes.Opid{}, err
	}
	if err := sp.stock.PutTransition(opid, t); err != nil {
		return strictypes.Opid{}, err
	}
	for _, in := range t.Inputs {
		if err := sp.kv.Set(spentKey(in.Opout), []byte{1}); err != nil {
			return strictypes.Opid{}, err
		}
	}
	if err := sp.registerAssignmentSeals(opid, t.Assigns); err != nil {
		return strictypes.Opid{}, err
	}
	if err := sp.appendOrder(opid); err != nil {
		return strictypes.Opid{}, err
	}
	for i, w := range witnesses {
		if err := sp.Attest(opid, uint16(i), w); err != nil {
			return strictypes.Opid{}, err
		}
	}
	return opid, nil
}

// Attest records a witness closing one of opid's seals at the given
// index, after verifying its signature.
func (sp *Stockpile) Attest(opid strictypes.Opid, index uint16, w seal.Witness) error {
	if err := w.Client.Verify(); err != nil {
		return fmt.Errorf("%w: %v", ErrVerification, err)
	}
	return sp.pile.RecordWitness(opid, index, w)
}

// State replays the applied operation log in order, returning the
// contract's accumulated global state and unspent owned-state
// assignments.
func (sp *Stockpile) State() (ContractState, error) {
	order, err := sp.loadOrder()
	if err != nil {
		return ContractState{}, err
	}
	st := ContractState{Globals: operation.GlobalState{}, Unspent: map[uint16][]unspentEntry{}}
	spent := map[operation.Opout]bool{}
	var consumes [][]operation.Input

	apply := func(opid strictypes.Opid, globals operation.GlobalState, assigns operation.Assignments, inputs []operation.Input) {
		for t, vals := range globals {
			st.Globals[t] = append(st.Globals[t], vals...)
		}
		for _, in := range inputs {
			spent[in.Opout] = true
		}
		for t, states := range assigns {
			for i, s := range states {
				st.Unspent[t] = append(st.Unspent[t], unspentEntry{
					Opout: operation.Opout{Opid: opid, Type: t, No: uint16(i)},
					State: s,
				})
			}
		}
		consumes = append(consumes, inputs)
	}

	for _, opid := range order {
		if opid == sp.contractId {
			g, err := sp.stock.GetGenesis(opid)
			if err != nil {
				return ContractState{}, err
			}
			apply(opid, g.Globals, g.Assigns, nil)
			continue
		}
		tr, err := sp.stock.GetTransition(opid)
		if err != nil {
			return ContractState{}, err
		}
		apply(opid, tr.Globals, tr.Assigns, tr.Inputs)
	}

	for t, entries := range st.Unspent {
		var live []unspentEntry
		for _, e := range entries {
			if !spent[e.Opout] {
				live = append(live, e)
			}
		}
		st.Unspent[t] = live
	}
	return st, nil
}

func spentKey(o operation.Opout) []byte {
	b, _ := json.Marshal(o)
	return append([]byte("stockpile/spent/"), b...)
}

// Consign streams this contract's Articles header followed by every
// operation reachable, by backward input traversal, from any of
// terminals' resolved seals — genesis first, topologically ordered,
// each operation exactly once — matching spec.md §4.4's consign
// contract.
func (sp *Stockpile) Consign(terminals []strictypes.AuthToken, w io.Writer) error {
	if len(terminals) == 0 {
		return fmt.Errorf("stockpile: consign requires at least one terminal")
	}
	visited := map[strictypes.Opid]bool{}
	var order []strictypes.Opid

	var visit func(opid strictypes.Opid) error
	visit = func(opid strictypes.Opid) error {
		if visited[opid] {
			return nil
		}
		visited[opid] = true
		if opid != sp.contractId {
			tr, err := sp.stock.GetTransition(opid)
			if err != nil {
				return err
			}
			for _, in := range tr.Inputs {
				if err := visit(in.Opout.Opid); err != nil {
					return err
				}
			}
		}
		order = append(order, opid)
		return nil
	}

	for _, token := range terminals {
		opout, err := sp.pile.ResolveSeal(token)
		if err != nil {
			return err
		}
		if err := visit(opout.Opid); err != nil {
			return err
		}
	}

	if err := writeArticles(w, sp.articles); err != nil {
		return err
	}
	for _, opid := range order {
		rec, err := sp.buildOpRecord(opid)
		if err != nil {
			return err
		}
		if err := writeOpRecord(w, rec); err != nil {
			return err
		}
	}
	sp.logger.Printf("consigned %d operations for %d terminal(s)", len(order), len(terminals))
	return nil
}

func (sp *Stockpile) buildOpRecord(opid strictypes.Opid) (opRecord, error) {
	witnesses, err := sp.pile.Witnesses(opid)
	if err != nil {
		return opRecord{}, err
	}
	if opid == sp.contractId {
		g, err := sp.stock.GetGenesis(opid)
		if err != nil {
			return opRecord{}, err
		}
		tokens, err := definedSeals(g.Assigns)
		if err != nil {
			return opRecord{}, err
		}
		return opRecord{IsGenesis: true, Genesis: g, DefinedSeals: tokens, Witnesses: witnesses}, nil
	}
	tr, err := sp.stock.GetTransition(opid)
	if err != nil {
		return opRecord{}, err
	}
	tokens, err := definedSeals(tr.Assigns)
	if err != nil {
		return opRecord{}, err
	}
	return opRecord{IsGenesis: false, Transition: tr, DefinedSeals: tokens, Witnesses: witnesses}, nil
}

func definedSeals(assigns operation.Assignments) ([]strictypes.AuthToken, error) {
	var tokens []strictypes.AuthToken
	for _, states := range assigns {
		for _, s := range states {
			t, err := s.Seal.AuthTokenValue()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, t)
		}
	}
	return tokens, nil
}

// resolveWitnessPublished consults res exactly once for w's outpoint,
// attaching the published confirmation when the resolver has one —
// matching spec.md §4.6's "consulted exactly once per witness during
// consume". It performs no storage side effect.
func resolveWitnessPublished(w seal.Witness, res resolver.Resolver) seal.Witness {
	if res != nil {
		token := seal.AuthTokenOf(w.Client.Outpoint)
		if pub, err := res.ResolvePublic(context.Background(), token); err == nil && pub != nil {
			w.Published = pub
		}
	}
	return w
}

// Consume reads a Stockpile-level consignment body (Articles followed
// by ops_stream) from r and applies every operation in turn. Per
// spec.md Invariant 3, a transition's witnesses are resolved and
// checked against its inputs' seals by ApplyTransition before any
// state mutation happens. Per spec.md §9's explicit direction, a
// malformed record surfaces as ErrDecode through the normal error
// return rather than panicking.
func (sp *Stockpile) Consume(r io.Reader, res resolver.Resolver) error {
	incoming, err := readArticles(r)
	if err != nil {
		return err
	}
	incomingId, err := operation.OpidOf(&incoming.Genesis)
	if err != nil {
		return err
	}
	if incomingId != sp.contractId {
		return fmt.Errorf("%w: consignment genesis hashes to %x, expected %x", ErrMerge, incomingId, sp.contractId)
	}

	for {
		rec, err := readOpRecord(r)
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		witnesses := make([]seal.Witness, len(rec.Witnesses))
		for i, w := range rec.Witnesses {
			witnesses[i] = resolveWitnessPublished(w, res)
		}
		if rec.IsGenesis {
			has, err := sp.stock.Has(sp.contractId)
			if err != nil {
				return err
			}
			if !has {
				if err := sp.stock.PutGenesis(sp.contractId, rec.Genesis); err != nil {
					return err
				}
				if err := sp.registerAssignmentSeals(sp.contractId, rec.Genesis.Assigns); err != nil {
					return err
				}
				if err := sp.appendOrder(sp.contractId); err != nil {
					return err
				}
			}
			for i, w := range witnesses {
				if err := sp.Attest(sp.contractId, uint16(i), w); err != nil {
					return err
				}
			}
			continue
		}
		if _, err := sp.ApplyTransition(rec.Transition, witnesses); err != nil {
			return err
		}
	}
	sp.logger.Printf("consumed consignment for contract_id=%x", sp.contractId)
	return nil
}
