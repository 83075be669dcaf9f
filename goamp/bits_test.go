package goamp

import (
	"errors"
	"testing"
)

func TestGrayCode(t *testing.T) {
	C, err := GrayCode(4)
	if err != nil {
		t.Fatal(err)
	}
	expect := []int{0, 1, 0, 2, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1, 0, 3}
	if len(C) != len(expect) {
		t.Fatalf("GrayCode(4) has %d entries, expected %d", len(C), len(expect))
	}
	for i := range C {
		if C[i] != expect[i] {
			t.Fatalf("GrayCode(4)[%d] = %d, expected %d", i, C[i], expect[i])
		}
	}

	if C1, _ := GrayCode(1); len(C1) != 2 || C1[0] != 0 || C1[1] != 0 {
		t.Fatalf("GrayCode(1) = %v", C1)
	}
	if _, err := GrayCode(0); !errors.Is(err, ErrGrayLength) {
		t.Fatalf("expected ErrGrayLength, got %v", err)
	}
}

func TestGrayScheduleReturnsToOrigin(t *testing.T) {
	for L := 1; L <= 12; L++ {
		C, err := GrayCode(L)
		if err != nil {
			t.Fatal(err)
		}
		gs, err := NewGraySchedule(L)
		if err != nil {
			t.Fatal(err)
		}

		x := uint64(0)
		seen := make(map[uint64]bool, len(C))
		steps := 0
		for flip, ok := gs.Next(); ok; flip, ok = gs.Next() {
			if flip != C[steps] {
				t.Fatalf("L=%d: lazy flip %d at position %d, list has %d", L, flip, steps, C[steps])
			}
			if x != GrayAt(L, uint64(steps)) {
				t.Fatalf("L=%d: GrayAt(%d) = %b, walk holds %b", L, steps, GrayAt(L, uint64(steps)), x)
			}
			seen[x] = true
			x ^= 1 << uint(flip)
			steps++
		}

		if steps != 1<<uint(L) {
			t.Fatalf("L=%d: %d steps, expected %d", L, steps, 1<<uint(L))
		}
		if len(seen) != 1<<uint(L) {
			t.Fatalf("L=%d: visited %d distinct strings", L, len(seen))
		}
		if x != 0 {
			t.Fatalf("L=%d: walk ended at %b", L, x)
		}
		if GrayAt(L, uint64(steps)) != 0 {
			t.Fatalf("L=%d: GrayAt is not cyclic", L)
		}
	}
}

func TestGrayScheduleAt(t *testing.T) {
	const L = 6
	full, _ := GrayCode(L)

	gs, err := NewGrayScheduleAt(L, 21, 40)
	if err != nil {
		t.Fatal(err)
	}
	for i := 21; i < 40; i++ {
		flip, ok := gs.Next()
		if !ok || flip != full[i] {
			t.Fatalf("position %d: got %d,%v expected %d", i, flip, ok, full[i])
		}
	}
	if _, ok := gs.Next(); ok {
		t.Fatal("schedule should be exhausted")
	}

	if _, err := NewGrayScheduleAt(L, 10, 65); !errors.Is(err, ErrGrayLength) {
		t.Fatalf("expected ErrGrayLength, got %v", err)
	}
}

func TestToBinary(t *testing.T) {
	xb, err := ToBinary(5, 0b10110)
	if err != nil {
		t.Fatal(err)
	}
	expect := []byte{0, 1, 1, 0, 1}
	for i := range expect {
		if xb[i] != expect[i] {
			t.Fatalf("ToBinary bit %d = %d", i, xb[i])
		}
	}
	if _, err := ToBinary(3, 8); !errors.Is(err, ErrBitWidth) {
		t.Fatalf("expected ErrBitWidth, got %v", err)
	}
	if PopCount(0b1011_0001) != 4 || Parity(0b111) != 1 {
		t.Fatal("PopCount / Parity mismatch")
	}
}

func TestMonomial(t *testing.T) {
	m, err := NewMonomial(5, 0, 4)
	if err != nil {
		t.Fatal(err)
	}
	if m.String() != "(0,4,5)" {
		t.Fatalf("got %v", m)
	}
	mask, distinct := m.ColorMask()
	if mask != 0b111 || !distinct {
		t.Fatalf("ColorMask = %03b,%v", mask, distinct)
	}

	m2, err := m.Replace(4, 1)
	if err != nil || m2.String() != "(0,1,5)" {
		t.Fatalf("Replace gave %v, %v", m2, err)
	}

	if _, err = NewMonomial(3); !errors.Is(err, ErrMonomialShape) {
		t.Fatalf("expected ErrMonomialShape, got %v", err)
	}
	if _, err = NewMonomial(3, 3); !errors.Is(err, ErrSameQubit) {
		t.Fatalf("expected ErrSameQubit, got %v", err)
	}

	a, _ := NewMonomial(0, 1)
	b, _ := NewMonomial(0, 1, 2)
	if CompareMonomials(a, b) >= 0 || CompareMonomials(b, a) <= 0 || CompareMonomials(a, a) != 0 {
		t.Fatal("CompareMonomials order")
	}
}

func TestBitStringProject(t *testing.T) {
	s, err := ParseBitString("111111110110")
	if err != nil {
		t.Fatal(err)
	}
	// qubits 0,3,6,9 are red; 1,4,7,10 blue; 2,5,8,11 green
	if got := s.Project(Red); got != 0b1111 {
		t.Fatalf("red projection %04b", got)
	}
	if got := s.Project(Blue); got != 0b1111 {
		t.Fatalf("blue projection %04b", got)
	}
	if got := s.Project(Green); got != 0b0011 {
		t.Fatalf("green projection %04b", got)
	}
	if s.String() != "111111110110" {
		t.Fatalf("String() = %s", s)
	}
	if _, err := ParseBitString("10x"); !errors.Is(err, ErrBitString) {
		t.Fatalf("expected ErrBitString, got %v", err)
	}
}

func TestParseOptions(t *testing.T) {
	if _, err := ParseBitString("0120"); !errors.Is(err, ErrBitString) {
		t.Fatalf("expected ErrBitString, got %v", err)
	}
	for i, name := range []string{"off", "on", "checked"} {
		qr, err := ParseQuickReject(name)
		if err != nil || qr != QuickReject(i) || qr.String() != name {
			t.Fatalf("ParseQuickReject(%q) = %v, %v", name, qr, err)
		}
	}
	if _, err := ParseQuickReject("sometimes"); !errors.Is(err, ErrBadOption) {
		t.Fatalf("expected ErrBadOption, got %v", err)
	}
	if ek, err := ParseEvalKind("expsum"); err != nil || ek != EvalExpSum {
		t.Fatalf("ParseEvalKind(expsum) = %v, %v", ek, err)
	}
	if _, err := ParseEvalKind("gauss"); !errors.Is(err, ErrBadOption) {
		t.Fatalf("expected ErrBadOption, got %v", err)
	}
}
