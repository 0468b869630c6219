// Copyright 2025 Certen Protocol

// Package auditsync mirrors issuance and consignment events to
// Firestore as a best-effort, non-critical side channel for
// compliance/forensics review, following the same
// context-scoped-write, swallow-and-log error policy as the teacher's
// pkg/firestore audit trail service.
package auditsync

import (
	"context"
	"fmt"
	"log"
	"time"

	gcpfirestore "cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"github.com/certen/rgb-stockpile/pkg/commitment"
	"github.com/certen/rgb-stockpile/pkg/strictypes"
)

const eventsCollection = "rgb_contract_events"

// Syncer mirrors contract lifecycle events to a Firestore collection.
// A nil *Syncer (see Disabled) makes every Record call a no-op, so
// offline tools never need Google credentials wired in.
type Syncer struct {
	client *gcpfirestore.Client
	logger *log.Logger
}

// New dials Firestore for projectID using the service-account JSON at
// credentialsFile (if non-empty; otherwise falls back to ambient
// application-default credentials, same as the teacher's client).
func New(ctx context.Context, projectID, credentialsFile string) (*Syncer, error) {
	if projectID == "" {
		return nil, fmt.Errorf("auditsync: project id is required")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gcpfirestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("auditsync: dial firestore: %w", err)
	}
	return &Syncer{
		client: client,
		logger: log.New(log.Writer(), "[AuditSync] ", log.LstdFlags),
	}, nil
}

// Disabled returns a Syncer that does nothing, for deployments that
// don't opt into the audit mirror.
func Disabled() *Syncer { return nil }

// Close releases the underlying Firestore client.
func (s *Syncer) Close() error {
	if s == nil {
		return nil
	}
	return s.client.Close()
}

// Event is one contract lifecycle event mirrored to Firestore.
type Event struct {
	ContractId strictypes.ContractId `firestore:"contract_id"`
	Kind       string                `firestore:"kind"` // "issued" | "consigned" | "consumed"
	Opid       string                `firestore:"opid,omitempty"`
	Commitment string                `firestore:"commitment"`
	RecordedAt time.Time             `firestore:"recorded_at"`
}

// RecordIssued mirrors a genesis issuance. Failures are logged and
// swallowed: this is a non-critical side channel, mirroring the
// teacher's audit trail policy of never letting Firestore outages
// block the critical path.
func (s *Syncer) RecordIssued(ctx context.Context, contractId strictypes.ContractId) {
	s.record(ctx, Event{ContractId: contractId, Kind: "issued"})
}

// RecordConsigned mirrors a consign() call for contractId.
func (s *Syncer) RecordConsigned(ctx context.Context, contractId strictypes.ContractId) {
	s.record(ctx, Event{ContractId: contractId, Kind: "consigned"})
}

// RecordConsumed mirrors a successful consume() for contractId,
// naming the last applied opid.
func (s *Syncer) RecordConsumed(ctx context.Context, contractId strictypes.ContractId, opid strictypes.Opid) {
	s.record(ctx, Event{ContractId: contractId, Kind: "consumed", Opid: opid.Hex()})
}

func (s *Syncer) record(ctx context.Context, ev Event) {
	if s == nil {
		return
	}
	ev.RecordedAt = time.Now().UTC()
	digest, err := commitment.HashCanonical(ev)
	if err != nil {
		s.logger.Printf("commitment failed for contract_id=%s kind=%s: %v", ev.ContractId.Hex(), ev.Kind, err)
		return
	}
	ev.Commitment = digest

	docID := fmt.Sprintf("%s-%s-%d", ev.ContractId.Hex(), ev.Kind, ev.RecordedAt.UnixNano())
	_, err = s.client.Collection(eventsCollection).Doc(docID).Set(ctx, ev)
	if err != nil {
		s.logger.Printf("failed to sync event contract_id=%s kind=%s: %v", ev.ContractId.Hex(), ev.Kind, err)
		return
	}
}
