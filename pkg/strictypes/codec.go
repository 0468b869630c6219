// Copyright 2025 Certen Protocol

package strictypes

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Encodable is implemented by any value that can be committed to the
// canonical deterministic binary form.
type Encodable interface {
	StrictEncode(w *Writer) error
}

// Decodable is implemented by any value that can be reconstructed from
// the canonical deterministic binary form.
type Decodable interface {
	StrictDecode(r *Reader) error
}

// Confinement names the length-prefix class a bounded collection is
// encoded with, per the wire format's tiny/small/ordinary convention.
type Confinement uint8

const (
	// Tiny collections carry a u8 length prefix (0..=255 elements).
	Tiny Confinement = iota
	// Small collections carry a u16 length prefix (0..=65535 elements).
	Small
	// Ordinary collections carry a u32 length prefix.
	Ordinary
)

// Writer accumulates the canonical byte representation of a value.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated canonical encoding.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// WriteU8 appends a single byte.
func (w *Writer) WriteU8(v uint8) error {
	return w.buf.WriteByte(v)
}

// WriteU16 appends a big-endian u16.
func (w *Writer) WriteU16(v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	_, err := w.buf.Write(b[:])
	return err
}

// WriteU32 appends a big-endian u32.
func (w *Writer) WriteU32(v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := w.buf.Write(b[:])
	return err
}

// WriteU64 appends a big-endian u64.
func (w *Writer) WriteU64(v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	_, err := w.buf.Write(b[:])
	return err
}

// WriteBytes appends raw bytes with no length prefix. Callers that need
// a self-describing blob should use WriteConfined instead.
func (w *Writer) WriteBytes(b []byte) error {
	_, err := w.buf.Write(b)
	return err
}

// WriteConfined writes a length-prefixed byte blob, choosing the
// prefix width from c and rejecting data too long for that class.
func (w *Writer) WriteConfined(c Confinement, data []byte) error {
	n := len(data)
	switch c {
	case Tiny:
		if n > 0xff {
			return fmt.Errorf("%w: tiny blob of %d bytes", ErrConfinement, n)
		}
		if err := w.WriteU8(uint8(n)); err != nil {
			return err
		}
	case Small:
		if n > 0xffff {
			return fmt.Errorf("%w: small blob of %d bytes", ErrConfinement, n)
		}
		if err := w.WriteU16(uint16(n)); err != nil {
			return err
		}
	case Ordinary:
		if n > 0xffffffff {
			return fmt.Errorf("%w: ordinary blob of %d bytes", ErrConfinement, n)
		}
		if err := w.WriteU32(uint32(n)); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown confinement class %d", ErrConfinement, c)
	}
	return w.WriteBytes(data)
}

// WriteCount writes a collection length prefix for c elements in class
// conf, rejecting counts that overflow the class.
func (w *Writer) WriteCount(conf Confinement, c int) error {
	switch conf {
	case Tiny:
		if c > 0xff {
			return fmt.Errorf("%w: tiny collection of %d elements", ErrConfinement, c)
		}
		return w.WriteU8(uint8(c))
	case Small:
		if c > 0xffff {
			return fmt.Errorf("%w: small collection of %d elements", ErrConfinement, c)
		}
		return w.WriteU16(uint16(c))
	case Ordinary:
		if c > 0xffffffff {
			return fmt.Errorf("%w: ordinary collection of %d elements", ErrConfinement, c)
		}
		return w.WriteU32(uint32(c))
	default:
		return fmt.Errorf("%w: unknown confinement class %d", ErrConfinement, conf)
	}
}

// Reader consumes a canonical byte representation.
type Reader struct {
	r *bytes.Reader
}

// NewReader wraps b for strict decoding.
func NewReader(b []byte) *Reader { return &Reader{r: bytes.NewReader(b)} }

// Len reports remaining unread bytes.
func (r *Reader) Len() int { return r.r.Len() }

// ReadU8 reads a single byte.
func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	return b, nil
}

// ReadU16 reads a big-endian u16.
func (r *Reader) ReadU16() (uint16, error) {
	var b [2]byte
	if _, err := readFull(r.r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

// ReadU32 reads a big-endian u32.
func (r *Reader) ReadU32() (uint32, error) {
	var b [4]byte
	if _, err := readFull(r.r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// ReadU64 reads a big-endian u64.
func (r *Reader) ReadU64() (uint64, error) {
	var b [8]byte
	if _, err := readFull(r.r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

// ReadBytes reads exactly n raw bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := readFull(r.r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// ReadConfined reads a length-prefixed byte blob whose prefix width is
// determined by c.
func (r *Reader) ReadConfined(c Confinement) ([]byte, error) {
	n, err := r.ReadCount(c)
	if err != nil {
		return nil, err
	}
	return r.ReadBytes(n)
}

// ReadCount reads a collection length prefix in class c.
func (r *Reader) ReadCount(c Confinement) (int, error) {
	switch c {
	case Tiny:
		v, err := r.ReadU8()
		return int(v), err
	case Small:
		v, err := r.ReadU16()
		return int(v), err
	case Ordinary:
		v, err := r.ReadU32()
		return int(v), err
	default:
		return 0, fmt.Errorf("%w: unknown confinement class %d", ErrConfinement, c)
	}
}

func readFull(r *bytes.Reader, b []byte) (int, error) {
	n, err := r.Read(b)
	if err != nil || n != len(b) {
		return n, fmt.Errorf("%w: expected %d bytes, got %d (%v)", ErrTruncated, len(b), n, err)
	}
	return n, nil
}

// StrictEncode encodes v into its canonical binary form.
func StrictEncode(v Encodable) ([]byte, error) {
	w := NewWriter()
	if err := v.StrictEncode(w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStrictEncode, err)
	}
	return w.Bytes(), nil
}

// StrictDecode decodes b into v's canonical binary form, failing if
// trailing bytes remain after v has fully consumed its value.
func StrictDecode(b []byte, v Decodable) error {
	r := NewReader(b)
	if err := v.StrictDecode(r); err != nil {
		return fmt.Errorf("%w: %v", ErrStrictDecode, err)
	}
	if r.Len() != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrStrictDecode, r.Len())
	}
	return nil
}
