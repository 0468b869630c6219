// Copyright 2025 Certen Protocol

package strictypes

import "testing"

func TestWriterReaderRoundTrip(t *testing.T) {
	w := NewWriter()
	if err := w.WriteU8(7); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteU32(1234); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteConfined(Small, []byte("hello")); err != nil {
		t.Fatal(err)
	}

	r := NewReader(w.Bytes())
	u8, err := r.ReadU8()
	if err != nil || u8 != 7 {
		t.Fatalf("ReadU8 = %d, %v; want 7, nil", u8, err)
	}
	u32, err := r.ReadU32()
	if err != nil || u32 != 1234 {
		t.Fatalf("ReadU32 = %d, %v; want 1234, nil", u32, err)
	}
	blob, err := r.ReadConfined(Small)
	if err != nil || string(blob) != "hello" {
		t.Fatalf("ReadConfined = %q, %v; want hello, nil", blob, err)
	}
	if r.Len() != 0 {
		t.Fatalf("expected no trailing bytes, got %d", r.Len())
	}
}

func TestWriteConfinedRejectsOversizedTiny(t *testing.T) {
	w := NewWriter()
	big := make([]byte, 300)
	if err := w.WriteConfined(Tiny, big); err == nil {
		t.Fatal("expected ErrConfinement for 300-byte tiny blob")
	}
}

func TestTypifyEnforcesLengthAndConfinement(t *testing.T) {
	ts := NewTypeSystem()
	id := SemId{0x01}
	ts.Register(id, TypeDescriptor{Name: "amount", Prim: PrimU64})

	if _, err := ts.Typify(id, make([]byte, 8)); err != nil {
		t.Fatalf("unexpected error for valid u64: %v", err)
	}
	if _, err := ts.Typify(id, make([]byte, 4)); err == nil {
		t.Fatal("expected ErrTypify for wrong-length u64")
	}

	blobId := SemId{0x02}
	ts.Register(blobId, TypeDescriptor{Name: "memo", Prim: PrimBytes, Confined: true, MaxLen: 4})
	if _, err := ts.Typify(blobId, []byte("ab")); err != nil {
		t.Fatalf("unexpected error for short blob: %v", err)
	}
	if _, err := ts.Typify(blobId, []byte("abcdef")); err == nil {
		t.Fatal("expected ErrTypify for over-confined blob")
	}
}

func TestLookupUnknownType(t *testing.T) {
	ts := NewTypeSystem()
	if _, err := ts.Lookup(SemId{0xff}); err == nil {
		t.Fatal("expected ErrUnknownType")
	}
}
