// Copyright 2025 Certen Protocol

package mound

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	dbm "github.com/cometbft/cometbft-db"

	"github.com/certen/rgb-stockpile/pkg/schema"
	"github.com/certen/rgb-stockpile/pkg/stockpile"
	"github.com/certen/rgb-stockpile/pkg/strictypes"
)

// Excavate supplies a Mound with the schemata and contracts persisted
// on disk, matching spec.md §6's "persistent state layout": one
// `<codex_id>.issuer` file per schema and one `<name>.contract/`
// directory per contract, optionally grouped under a
// `<consensus>[.testnet]/` prefix directory.
type Excavate interface {
	Schemata() ([]*schema.Schema, error)
	Contracts(newKV KVFactory, resolveSchema stockpile.SchemaResolver, vm stockpile.VM) ([]*stockpile.Stockpile, error)
}

// DirExcavator implements Excavate against a mound directory on disk.
type DirExcavator struct {
	Root   string
	logger *log.Logger
}

// NewDirExcavator returns an excavator rooted at dir.
func NewDirExcavator(dir string) *DirExcavator {
	return &DirExcavator{Root: dir, logger: log.New(log.Writer(), "[DirExcavator] ", log.LstdFlags)}
}

// Schemata loads every `*.issuer` file directly under Root.
func (d *DirExcavator) Schemata() ([]*schema.Schema, error) {
	entries, err := os.ReadDir(d.Root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrExcavate, d.Root, err)
	}
	var out []*schema.Schema
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".issuer") {
			continue
		}
		path := filepath.Join(d.Root, e.Name())
		s, err := schema.Load(path)
		if err != nil {
			return nil, fmt.Errorf("%w: loading %s: %v", ErrExcavate, path, err)
		}
		d.logger.Printf("loaded schema from %s", path)
		out = append(out, s)
	}
	return out, nil
}

// Contracts loads every `*.contract/` directory directly under Root,
// opening each with a disk store rooted at that directory (newKV is
// not consulted), binding the schema the stored genesis names via
// resolveSchema, and evaluating against vm.
func (d *DirExcavator) Contracts(newKV KVFactory, resolveSchema stockpile.SchemaResolver, vm stockpile.VM) ([]*stockpile.Stockpile, error) {
	entries, err := os.ReadDir(d.Root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrExcavate, d.Root, err)
	}
	var out []*stockpile.Stockpile
	for _, e := range entries {
		if !e.IsDir() || !strings.HasSuffix(e.Name(), ".contract") {
			continue
		}
		path := filepath.Join(d.Root, e.Name())
		kv, err := openContractKV(path)
		if err != nil {
			return nil, fmt.Errorf("%w: opening %s: %v", ErrExcavate, path, err)
		}
		sp, err := stockpile.Open(kv, resolveSchema, vm)
		if err != nil {
			return nil, fmt.Errorf("%w: opening stockpile at %s: %v", ErrExcavate, path, err)
		}
		d.logger.Printf("loaded contract from %s", path)
		out = append(out, sp)
	}
	return out, nil
}

// openContractKV opens a cometbft-db goleveldb store rooted at path,
// mirroring the teacher's consensus.openLedgerDB / kvdb.NewKVAdapter
// pairing (pkg/consensus/bft_integration.go): one embedded engine
// instance per contract directory rather than an in-memory stand-in.
func openContractKV(path string) (stockpile.KV, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", path, err)
	}
	db, err := dbm.NewGoLevelDB("pile", path)
	if err != nil {
		return nil, fmt.Errorf("open goleveldb at %s: %w", path, err)
	}
	return stockpile.NewKVAdapter(db), nil
}

// DirMound composes a DirExcavator with Mound construction, the direct
// analogue of original_source/mound.rs's DirMound type alias.
type DirMound struct {
	*Mound
	excavator *DirExcavator
}

// OpenTestnet opens a testnet Mound rooted at dir for the given
// consensus layer, eagerly draining the excavator's schemata and
// contracts. Per spec.md §9's "Mound without persistence" design note,
// this surfaces load errors rather than silently dropping them — a
// deliberately stricter behavior than the original's eager-and-silent
// drain.
func OpenTestnet(dir string, consensus string, newKV KVFactory, vm stockpile.VM) (*DirMound, error) {
	excavator := NewDirExcavator(dir)
	m := New(consensus, true, newKV)
	m.SetVM(vm)

	schemata, err := excavator.Schemata()
	if err != nil {
		return nil, err
	}
	for _, s := range schemata {
		m.RegisterSchema(s)
	}

	resolveSchema := func(id strictypes.CodexId) (*schema.Schema, error) {
		s, ok := m.schemata[id]
		if !ok {
			return nil, fmt.Errorf("%w: %x", ErrUnknownCodex, id)
		}
		return s, nil
	}

	contracts, err := excavator.Contracts(m.newKV, resolveSchema, m.vm)
	if err != nil {
		return nil, err
	}
	for _, sp := range contracts {
		m.SeedContract(sp)
	}

	return &DirMound{Mound: m, excavator: excavator}, nil
}
