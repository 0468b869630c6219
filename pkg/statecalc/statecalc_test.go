// Copyright 2025 Certen Protocol

package statecalc

import "testing"

func abi() map[TypeId]AmountCodec {
	return map[TypeId]AmountCodec{1: U64Amount{}}
}

func TestRegInputCalcOutputCalcChange(t *testing.T) {
	c := New(abi())
	if err := c.RegInput(1, U64Amount{}.Encode(100)); err != nil {
		t.Fatalf("RegInput: %v", err)
	}

	out, insufficient, err := c.CalcOutput(1, U64Amount{}.Encode(60))
	if err != nil {
		t.Fatalf("CalcOutput: %v", err)
	}
	if insufficient != nil {
		t.Fatalf("expected no residual when fully covered, got %x", insufficient)
	}
	got, _ := U64Amount{}.Decode(out)
	if got != 60 {
		t.Fatalf("output amount = %d, want 60", got)
	}

	change, ok := c.CalcChange(1)
	if !ok {
		t.Fatal("expected change available")
	}
	gotChange, _ := U64Amount{}.Decode(change)
	if gotChange != 40 {
		t.Fatalf("change = %d, want 40", gotChange)
	}

	if _, ok := c.CalcChange(1); ok {
		t.Fatal("expected no change left after draining")
	}
}

func TestCalcOutputSplitsSufficientAndResidual(t *testing.T) {
	c := New(abi())
	_ = c.RegInput(1, U64Amount{}.Encode(10))
	sufficient, insufficient, err := c.CalcOutput(1, U64Amount{}.Encode(50))
	if err != nil {
		t.Fatalf("CalcOutput: %v", err)
	}
	gotSuf, _ := U64Amount{}.Decode(sufficient)
	if gotSuf != 10 {
		t.Fatalf("sufficient = %d, want 10", gotSuf)
	}
	gotInsuf, _ := U64Amount{}.Decode(insufficient)
	if gotInsuf != 40 {
		t.Fatalf("insufficient = %d, want 40", gotInsuf)
	}
	if c.Registered(1) != 0 {
		t.Fatalf("expected the registered amount fully drained, got %d", c.Registered(1))
	}
}

func TestCalcOutputNothingRegisteredYieldsNilSufficient(t *testing.T) {
	c := New(abi())
	sufficient, insufficient, err := c.CalcOutput(1, U64Amount{}.Encode(50))
	if err != nil {
		t.Fatalf("CalcOutput: %v", err)
	}
	if sufficient != nil {
		t.Fatalf("expected nil sufficient when nothing is registered, got %x", sufficient)
	}
	gotInsuf, _ := U64Amount{}.Decode(insufficient)
	if gotInsuf != 50 {
		t.Fatalf("insufficient = %d, want 50", gotInsuf)
	}
}

func TestUnregisteredTypeIsNoOp(t *testing.T) {
	c := New(abi())
	if err := c.RegInput(99, []byte("rights-only, not conserved")); err != nil {
		t.Fatalf("RegInput for unregistered type should be a no-op, got %v", err)
	}
	if _, ok := c.CalcChange(99); ok {
		t.Fatal("unregistered type should never report change")
	}
}
