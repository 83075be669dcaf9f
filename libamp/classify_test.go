package libamp

import (
	"errors"
	"testing"

	"github.com/2x3systems/goamp/goamp"
)

func TestClassifyHypercube(t *testing.T) {
	c, err := Hypercube(1)
	if err != nil {
		t.Fatal(err)
	}
	p, err := c.Build()
	if err != nil {
		t.Fatal(err)
	}
	tables, err := Classify(p)
	if err != nil {
		t.Fatal(err)
	}

	if tables.NumMonomials() != p.Len() {
		t.Fatalf("classified %d of %d monomials", tables.NumMonomials(), p.Len())
	}

	// red 0 is qubit 0; (0,1,2) (0,1,5) (0,4,5) (0,2,4) are its triples
	expectTriples := map[goamp.Pair]bool{
		{Blue: 0, Green: 0}: true,
		{Blue: 0, Green: 1}: true,
		{Blue: 1, Green: 1}: true,
		{Blue: 1, Green: 0}: true,
	}
	if len(tables.Triples[0]) != len(expectTriples) {
		t.Fatalf("red 0 triples: %v", tables.Triples[0])
	}
	for _, pr := range tables.Triples[0] {
		if !expectTriples[pr] {
			t.Fatalf("unexpected red 0 triple %v", pr)
		}
	}

	// (0,1) (0,4) | (1,3) | (0,5) | (2,3) (3,5)
	if len(tables.RedBlue[0]) != 2 || len(tables.RedBlue[1]) != 1 || len(tables.RedGreen[0]) != 1 || len(tables.RedGreen[1]) != 2 {
		t.Fatalf("red-blue %v, red-green %v", tables.RedBlue, tables.RedGreen)
	}
	// (1,2) (1,5) (2,4)
	if len(tables.Base) != 3 {
		t.Fatalf("base %v", tables.Base)
	}

	p2 := p.Clone()
	p2.CZ(1, 2)
	t2, _ := Classify(p2)
	if t2.Fingerprint() == tables.Fingerprint() {
		t.Fatal("fingerprint ignores the base coupling list")
	}
}

func TestClassifyRejects(t *testing.T) {
	sameColor, _ := goamp.NewMonomial(0, 3)
	single := goamp.Monomial{Deg: 1, Vars: [3]goamp.Qubit{4}}
	outOfRange, _ := goamp.NewMonomial(0, 7)

	for _, m := range []goamp.Monomial{sameColor, single, outOfRange} {
		_, err := classifyTerms(2, []goamp.Monomial{m})
		if !errors.Is(err, goamp.ErrUnclassifiable) {
			t.Fatalf("%v: expected ErrUnclassifiable, got %v", m, err)
		}
	}
}
