// Copyright 2025 Certen Protocol

package stockpile

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/certen/rgb-stockpile/pkg/operation"
	"github.com/certen/rgb-stockpile/pkg/seal"
	"github.com/certen/rgb-stockpile/pkg/strictypes"
)

func writeArticles(w io.Writer, a operation.Articles) error {
	return writeFramed(w, a)
}

func readArticles(r io.Reader) (operation.Articles, error) {
	var a operation.Articles
	if err := readFramed(r, &a); err != nil {
		return operation.Articles{}, err
	}
	return a, nil
}

// opRecord is one entry of a consignment stream's ops_stream: an
// operation plus the seals it defines and the witnesses closing its
// inputs, per spec.md §6's grammar.
type opRecord struct {
	IsGenesis    bool
	Genesis      operation.Genesis
	Transition   operation.Transition
	DefinedSeals []strictypes.AuthToken
	Witnesses    []seal.Witness
}

func writeOpRecord(w io.Writer, rec opRecord) error {
	return writeFramed(w, rec)
}

func readOpRecord(r io.Reader) (opRecord, error) {
	var rec opRecord
	if err := readFramed(r, &rec); err != nil {
		return opRecord{}, err
	}
	return rec, nil
}

// writeFramed JSON-encodes v and writes it as a u32-length-prefixed
// blob, giving the stream a self-describing record boundary without
// requiring every wire type to implement strictypes.Encodable by hand.
func writeFramed(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("stockpile: encode wire record: %w", err)
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("%w: %v", ErrIo, err)
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("%w: %v", ErrIo, err)
	}
	return nil
}

func readFramed(r io.Reader, v any) error {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if err == io.EOF {
			return err
		}
		return fmt.Errorf("%w: reading record length: %v", ErrDecode, err)
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	const maxRecordSize = 64 << 20
	if n > maxRecordSize {
		return fmt.Errorf("%w: record of %d bytes exceeds maximum", ErrDecode, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("%w: reading record body: %v", ErrDecode, err)
	}
	if err := json.Unmarshal(buf, v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// consignmentMagic is the 16-byte constant a ConsignmentStream begins
// with, exactly as spec.md §6 defines it.
var consignmentMagic = [16]byte{'R', 'G', 'B', ' ', 'C', 'O', 'N', 'S', 'I', 'G', 'N', 'M', 'E', 'N', 'T', 0}

const consignmentVersion uint16 = 0

// WriteEnvelope writes the Mound-level envelope: magic, version, and
// contract id, ahead of the Stockpile-level articles+ops_stream body.
// Exported for pkg/mound, which owns envelope framing around each
// contract's Stockpile.Consign/Consume body.
func WriteEnvelope(w io.Writer, contractId strictypes.ContractId) error {
	if _, err := w.Write(consignmentMagic[:]); err != nil {
		return fmt.Errorf("%w: %v", ErrIo, err)
	}
	var verBuf [2]byte
	binary.BigEndian.PutUint16(verBuf[:], consignmentVersion)
	if _, err := w.Write(verBuf[:]); err != nil {
		return fmt.Errorf("%w: %v", ErrIo, err)
	}
	if _, err := w.Write(contractId[:]); err != nil {
		return fmt.Errorf("%w: %v", ErrIo, err)
	}
	return nil
}

// ReadEnvelope reads the magic/version/contract_id header, rejecting a
// stream whose magic does not match, and returns the decoded contract
// id. The version field is read and not checked. Exported for
// pkg/mound.
func ReadEnvelope(r io.Reader) (strictypes.ContractId, error) {
	var magic [16]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return strictypes.ContractId{}, fmt.Errorf("%w: %v", ErrIo, err)
	}
	if !bytes.Equal(magic[:], consignmentMagic[:]) {
		return strictypes.ContractId{}, fmt.Errorf("%w: got %x", ErrUnrecognizedMagic, magic)
	}
	var verBuf [2]byte
	if _, err := io.ReadFull(r, verBuf[:]); err != nil {
		return strictypes.ContractId{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	var contractId strictypes.ContractId
	if _, err := io.ReadFull(r, contractId[:]); err != nil {
		return strictypes.ContractId{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return contractId, nil
}
