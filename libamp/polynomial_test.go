package libamp_test

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/2x3systems/goamp/goamp"
	"github.com/2x3systems/goamp/libamp"
	"github.com/davecgh/go-spew/spew"
)

func mustPoly(t *testing.T, numNodes int) *libamp.Polynomial {
	t.Helper()
	p, err := libamp.NewPolynomial(numNodes)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// randomGates applies numGates random valid gates.
func randomGates(t *testing.T, rng *rand.Rand, p *libamp.Polynomial, numGates int) {
	t.Helper()
	m := uint32(p.NumNodes())
	local := func() uint32 { return uint32(rng.Intn(int(m))) }

	for i := 0; i < numGates; i++ {
		var err error
		switch rng.Intn(3) {
		case 0:
			err = p.CCZ(goamp.QubitOf(goamp.Red, local()), goamp.QubitOf(goamp.Blue, local()), goamp.QubitOf(goamp.Green, local()))
		case 1:
			c1 := goamp.Color(rng.Intn(3))
			c2 := (c1 + 1 + goamp.Color(rng.Intn(2))) % goamp.NumColors
			err = p.CZ(goamp.QubitOf(c1, local()), goamp.QubitOf(c2, local()))
		case 2:
			if m < 2 {
				continue
			}
			c := goamp.Color(rng.Intn(3))
			con := local()
			tar := (con + 1 + uint32(rng.Intn(int(m-1)))) % m
			err = p.CNOT(goamp.QubitOf(c, con), goamp.QubitOf(c, tar))
		}
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestPhaseGatesAreInvolutions(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	p := mustPoly(t, 4)
	randomGates(t, rng, p, 40)
	before := p.Clone()

	if err := p.CCZ(0, 4, 8); err != nil {
		t.Fatal(err)
	}
	if err := p.CCZ(8, 0, 4); err != nil {
		t.Fatal(err)
	}
	if !p.Equal(before) {
		t.Fatalf("CCZ twice changed the polynomial:\n%v\n%v", before, p)
	}

	if err := p.CZ(3, 10); err != nil {
		t.Fatal(err)
	}
	if p.Equal(before) {
		t.Fatal("CZ had no effect")
	}
	if err := p.CZ(10, 3); err != nil {
		t.Fatal(err)
	}
	if !p.Equal(before) {
		t.Fatal("CZ twice changed the polynomial")
	}
}

func TestCNOTTwiceRestores(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		p := mustPoly(t, 5)
		randomGates(t, rng, p, 30)
		before := p.Clone()
		fp := p.Fingerprint()

		c := goamp.Color(rng.Intn(3))
		con := goamp.QubitOf(c, uint32(rng.Intn(5)))
		tar := goamp.QubitOf(c, uint32((int(con.Local())+1+rng.Intn(4))%5))

		if err := p.CNOT(con, tar); err != nil {
			t.Fatal(err)
		}
		if err := p.CNOT(con, tar); err != nil {
			t.Fatal(err)
		}
		if !p.Equal(before) || p.Fingerprint() != fp {
			t.Fatalf("trial %d: CNOT(%d,%d) twice changed the polynomial", trial, con, tar)
		}
	}
}

func TestCNOTReadsSnapshot(t *testing.T) {
	// qubits 0 and 3 are red
	p := mustPoly(t, 2)
	if err := p.CZ(3, 1); err != nil {
		t.Fatal(err)
	}
	if err := p.CZ(0, 1); err != nil {
		t.Fatal(err)
	}
	if err := p.CNOT(0, 3); err != nil {
		t.Fatal(err)
	}

	// (1,3) yields (0,1), which cancels
	got := p.Monomials()
	if len(got) != 1 || got[0].String() != "(1,3)" {
		t.Fatalf("got %v", got)
	}
}

func TestGatePreconditions(t *testing.T) {
	p := mustPoly(t, 2)
	if err := p.CCZ(0, 1, 2); err != nil {
		t.Fatal(err)
	}
	before := p.Clone()

	cases := []struct {
		name   string
		apply  func() error
		expect error
	}{
		{"ccz same color", func() error { return p.CCZ(0, 3, 2) }, goamp.ErrColorConflict},
		{"ccz repeated", func() error { return p.CCZ(1, 1, 2) }, goamp.ErrSameQubit},
		{"cz same color", func() error { return p.CZ(1, 4) }, goamp.ErrColorConflict},
		{"cz out of range", func() error { return p.CZ(0, 6) }, goamp.ErrQubitRange},
		{"cnot mixed colors", func() error { return p.CNOT(0, 1) }, goamp.ErrColorMismatch},
		{"cnot self", func() error { return p.CNOT(2, 2) }, goamp.ErrSameQubit},
		{"degree one", func() error { return p.Toggle(goamp.Monomial{Deg: 1, Vars: [3]goamp.Qubit{2}}) }, goamp.ErrMonomialShape},
	}
	for _, tc := range cases {
		err := tc.apply()
		if !errors.Is(err, tc.expect) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.expect, err)
		}
		if !p.Equal(before) {
			t.Fatalf("%s: rejected gate changed the polynomial", tc.name)
		}
	}

	if _, err := libamp.NewPolynomial(0); !errors.Is(err, goamp.ErrNodeCount) {
		t.Fatalf("expected ErrNodeCount, got %v", err)
	}
}

func TestEvaluate(t *testing.T) {
	p := mustPoly(t, 1)
	p.CCZ(0, 1, 2)
	p.CZ(0, 1)

	for x := uint64(0); x < 8; x++ {
		expect := byte((x&1)&(x>>1&1)) ^ byte((x&1)&(x>>1&1)&(x>>2&1))
		if got := p.Evaluate(x); got != expect {
			t.Fatalf("f(%03b) = %d, expected %d", x, got, expect)
		}
	}

	masks, err := p.TermMasks()
	if err != nil {
		t.Fatal(err)
	}
	if len(masks) != 2 || masks[0] != 0b011 || masks[1] != 0b111 {
		t.Fatalf("TermMasks = %s", spew.Sdump(masks))
	}
}

func TestHypercubePolynomial(t *testing.T) {
	c, err := libamp.Hypercube(1)
	if err != nil {
		t.Fatal(err)
	}
	p, err := c.Build()
	if err != nil {
		t.Fatal(err)
	}

	expect := []string{
		"(0,1)", "(0,1,2)", "(0,1,5)", "(0,2,4)", "(0,4)", "(0,4,5)", "(0,5)", "(1,2)",
		"(1,2,3)", "(1,3)", "(1,3,5)", "(1,5)", "(2,3)", "(2,3,4)", "(2,4)", "(3,5)",
	}
	got := p.Monomials()
	if len(got) != len(expect) {
		t.Fatalf("k=1 polynomial has %d terms:\n%v", len(got), p)
	}
	for i := range expect {
		if got[i].String() != expect[i] {
			t.Fatalf("term %d: got %v, expected %s", i, got[i], expect[i])
		}
	}

	b := strings.Builder{}
	p.WriteAsString(&b, goamp.PrintOpts{Label: "k=1 ", Monomials: true, Tables: true})
	if !strings.HasPrefix(b.String(), "k=1 nodes=2,qubits=6,terms=16,{(0,1) (0,1,2)") {
		t.Fatalf("WriteAsString:\n%s", b.String())
	}
}
