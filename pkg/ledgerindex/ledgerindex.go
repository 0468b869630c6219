// Copyright 2025 Certen Protocol

// Package ledgerindex is a read-only Postgres secondary index over
// consigned operations (contract_id, opid, nonce, type, timestamp),
// built for wallet/dashboard queries that don't want to replay a
// contract's full history to answer "what operations has this
// contract_id seen". It mirrors the connection-pooling and
// explicit-SQL idiom of the teacher's pkg/database client, trimmed to
// the one table this domain actually needs.
package ledgerindex

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver, registered for side effect

	"github.com/certen/rgb-stockpile/pkg/operation"
	"github.com/certen/rgb-stockpile/pkg/strictypes"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS rgb_operations (
	contract_id TEXT NOT NULL,
	opid        TEXT NOT NULL,
	nonce       BIGINT NOT NULL,
	op_type     INTEGER NOT NULL,
	is_genesis  BOOLEAN NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (contract_id, opid)
)`

// Index is a pooled Postgres connection indexing applied operations
// for lookup by contract id.
type Index struct {
	db     *sql.DB
	logger *log.Logger
}

// Open connects to dsn, configures the pool to maxConns, and ensures
// the index table exists.
func Open(dsn string, maxConns int) (*Index, error) {
	if dsn == "" {
		return nil, fmt.Errorf("ledgerindex: dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("ledgerindex: open: %w", err)
	}
	if maxConns <= 0 {
		maxConns = 5
	}
	db.SetMaxOpenConns(maxConns)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledgerindex: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledgerindex: migrate: %w", err)
	}

	idx := &Index{
		db:     db,
		logger: log.New(log.Writer(), "[LedgerIndex] ", log.LstdFlags),
	}
	idx.logger.Printf("connected (max_conns=%d)", maxConns)
	return idx, nil
}

// Close releases the connection pool.
func (idx *Index) Close() error { return idx.db.Close() }

// RecordGenesis upserts the genesis row for contractId.
func (idx *Index) RecordGenesis(ctx context.Context, contractId strictypes.ContractId, _ operation.Genesis) error {
	return idx.record(ctx, contractId, strictypes.Opid(contractId), 0, 0, true)
}

// RecordTransition upserts the row for an applied transition, keyed by
// its own content-addressed opid.
func (idx *Index) RecordTransition(ctx context.Context, contractId strictypes.ContractId, opid strictypes.Opid, t operation.Transition) error {
	return idx.record(ctx, contractId, opid, t.Nonce, t.TypeId, false)
}

func (idx *Index) record(ctx context.Context, contractId strictypes.ContractId, opid strictypes.Opid, nonce uint64, opType uint16, genesis bool) error {
	_, err := idx.db.ExecContext(ctx, `
		INSERT INTO rgb_operations (contract_id, opid, nonce, op_type, is_genesis, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (contract_id, opid) DO NOTHING`,
		contractId.Hex(), opid.Hex(), int64(nonce), int32(opType), genesis, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("ledgerindex: record: %w", err)
	}
	return nil
}

// OperationRow is one indexed operation.
type OperationRow struct {
	ContractId string
	Opid       string
	Nonce      uint64
	OpType     uint16
	IsGenesis  bool
	RecordedAt time.Time
}

// ByContract returns every indexed operation for contractId, ordered
// by nonce.
func (idx *Index) ByContract(ctx context.Context, contractId strictypes.ContractId) ([]OperationRow, error) {
	rows, err := idx.db.QueryContext(ctx, `
		SELECT contract_id, opid, nonce, op_type, is_genesis, recorded_at
		FROM rgb_operations WHERE contract_id = $1 ORDER BY nonce ASC`, contractId.Hex())
	if err != nil {
		return nil, fmt.Errorf("ledgerindex: query: %w", err)
	}
	defer rows.Close()

	var out []OperationRow
	for rows.Next() {
		var r OperationRow
		var nonce, opType int64
		if err := rows.Scan(&r.ContractId, &r.Opid, &nonce, &opType, &r.IsGenesis, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("ledgerindex: scan: %w", err)
		}
		r.Nonce = uint64(nonce)
		r.OpType = uint16(opType)
		out = append(out, r)
	}
	return out, rows.Err()
}
