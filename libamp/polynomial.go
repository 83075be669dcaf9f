package libamp

import (
	"fmt"
	"io"
	"strings"

	"github.com/2x3systems/goamp/goamp"
	"github.com/cespare/xxhash/v2"
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/pkg/errors"
)

// Polynomial is a phase polynomial over GF(2): a set of degree 2 and 3 monomials where
// membership is the coefficient.  Qubit q has color q % 3 and color-local index q / 3.
//
// Every gate keeps the invariant that a monomial touches at most one qubit of each color.
type Polynomial struct {
	numNodes int
	terms    *redblacktree.Tree
}

func monomialComparator(A, B interface{}) int {
	return goamp.CompareMonomials(A.(goamp.Monomial), B.(goamp.Monomial))
}

// NewPolynomial returns an empty polynomial over 3*numNodes qubits.
func NewPolynomial(numNodes int) (*Polynomial, error) {
	if numNodes < 1 || numNodes > goamp.MaxNodes {
		return nil, errors.Wrapf(goamp.ErrNodeCount, "%d nodes", numNodes)
	}
	return &Polynomial{
		numNodes: numNodes,
		terms:    redblacktree.NewWith(monomialComparator),
	}, nil
}

// NumNodes returns m, the size of each color class.
func (p *Polynomial) NumNodes() int {
	return p.numNodes
}

// NumQubits returns n = 3m.
func (p *Polynomial) NumQubits() int {
	return goamp.NumColors * p.numNodes
}

// Len returns the number of monomials present.
func (p *Polynomial) Len() int {
	return p.terms.Size()
}

// Contains returns true if the given monomial has coefficient 1.
func (p *Polynomial) Contains(m goamp.Monomial) bool {
	_, found := p.terms.Get(m)
	return found
}

// Monomials returns the monomials present in canonical order.
func (p *Polynomial) Monomials() []goamp.Monomial {
	out := make([]goamp.Monomial, 0, p.terms.Size())
	itr := p.terms.Iterator()
	for itr.Next() {
		out = append(out, itr.Key().(goamp.Monomial))
	}
	return out
}

func (p *Polynomial) toggle(m goamp.Monomial) {
	if _, found := p.terms.Get(m); found {
		p.terms.Remove(m)
	} else {
		p.terms.Put(m, nil)
	}
}

func (p *Polynomial) checkQubits(qubits ...goamp.Qubit) error {
	n := goamp.Qubit(p.NumQubits())
	for _, q := range qubits {
		if q >= n {
			return errors.Wrapf(goamp.ErrQubitRange, "qubit %d of %d", q, n)
		}
	}
	return nil
}

// phaseTerm validates a diagonal gate's qubits and returns its canonical monomial.
func (p *Polynomial) phaseTerm(qubits ...goamp.Qubit) (goamp.Monomial, error) {
	if err := p.checkQubits(qubits...); err != nil {
		return goamp.Monomial{}, err
	}
	m, err := goamp.NewMonomial(qubits...)
	if err != nil {
		return m, errors.Wrapf(err, "phase gate on %v", qubits)
	}
	if _, distinct := m.ColorMask(); !distinct {
		return m, errors.Wrapf(goamp.ErrColorConflict, "phase gate on %v", m)
	}
	return m, nil
}

// Toggle adds the given monomial to the polynomial (mod 2).
// The monomial must have degree 2 or 3 and touch each color at most once.
func (p *Polynomial) Toggle(m goamp.Monomial) error {
	if m.Deg < 2 || m.Deg > 3 {
		return errors.Wrapf(goamp.ErrMonomialShape, "degree %d", m.Deg)
	}
	m, err := p.phaseTerm(m.Qubits()...)
	if err != nil {
		return err
	}
	p.toggle(m)
	return nil
}

// CCZ applies a controlled-controlled-Z on three qubits of pairwise different color.
func (p *Polynomial) CCZ(q1, q2, q3 goamp.Qubit) error {
	m, err := p.phaseTerm(q1, q2, q3)
	if err != nil {
		return err
	}
	p.toggle(m)
	return nil
}

// CZ applies a controlled-Z on two qubits of different color.
func (p *Polynomial) CZ(q1, q2 goamp.Qubit) error {
	m, err := p.phaseTerm(q1, q2)
	if err != nil {
		return err
	}
	p.toggle(m)
	return nil
}

// CNOT applies a same-color CNOT: every monomial containing target is also added
// with target replaced by control.  Monomials are read from a snapshot taken before
// any are written.
func (p *Polynomial) CNOT(control, target goamp.Qubit) error {
	if err := p.checkQubits(control, target); err != nil {
		return err
	}
	if control == target {
		return errors.Wrapf(goamp.ErrSameQubit, "CNOT(%d,%d)", control, target)
	}
	if control.Color() != target.Color() {
		return errors.Wrapf(goamp.ErrColorMismatch, "CNOT(%d,%d): %v vs %v", control, target, control.Color(), target.Color())
	}

	var toToggle []goamp.Monomial
	itr := p.terms.Iterator()
	for itr.Next() {
		m := itr.Key().(goamp.Monomial)
		if !m.Has(target) {
			continue
		}
		m2, err := m.Replace(target, control)
		if err != nil {
			return errors.Wrapf(err, "CNOT(%d,%d) on %v", control, target, m)
		}
		toToggle = append(toToggle, m2)
	}

	for _, m := range toToggle {
		p.toggle(m)
	}
	return nil
}

// Clone returns a deep copy of p.
func (p *Polynomial) Clone() *Polynomial {
	dup := &Polynomial{
		numNodes: p.numNodes,
		terms:    redblacktree.NewWith(monomialComparator),
	}
	itr := p.terms.Iterator()
	for itr.Next() {
		dup.terms.Put(itr.Key(), nil)
	}
	return dup
}

// Equal returns true if p and q are over the same qubits and hold the same monomials.
func (p *Polynomial) Equal(q *Polynomial) bool {
	if p.numNodes != q.numNodes || p.terms.Size() != q.terms.Size() {
		return false
	}
	ip := p.terms.Iterator()
	iq := q.terms.Iterator()
	for ip.Next() && iq.Next() {
		if goamp.CompareMonomials(ip.Key().(goamp.Monomial), iq.Key().(goamp.Monomial)) != 0 {
			return false
		}
	}
	return true
}

// Fingerprint hashes the node count and canonical monomial list.
func (p *Polynomial) Fingerprint() uint64 {
	var buf [16]byte
	h := xxhash.New()

	h.Write(appendUint32(buf[:0], uint32(p.numNodes)))
	itr := p.terms.Iterator()
	for itr.Next() {
		m := itr.Key().(goamp.Monomial)
		b := append(buf[:0], m.Deg)
		for _, q := range m.Qubits() {
			b = appendUint32(b, uint32(q))
		}
		h.Write(b)
	}
	return h.Sum64()
}

func appendUint32(b []byte, v uint32) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// TermMasks returns each monomial as a bit mask over qubits.  Requires NumQubits() <= 64.
func (p *Polynomial) TermMasks() ([]uint64, error) {
	if p.NumQubits() > 64 {
		return nil, errors.Wrapf(goamp.ErrTooManyQubits, "%d qubits", p.NumQubits())
	}
	masks := make([]uint64, 0, p.terms.Size())
	itr := p.terms.Iterator()
	for itr.Next() {
		mask := uint64(0)
		for _, q := range itr.Key().(goamp.Monomial).Qubits() {
			mask |= 1 << q
		}
		masks = append(masks, mask)
	}
	return masks, nil
}

// Evaluate returns f(x) for the assignment x, where bit q of x is qubit q.
func (p *Polynomial) Evaluate(x uint64) byte {
	f := byte(0)
	itr := p.terms.Iterator()
	for itr.Next() {
		all := byte(1)
		for _, q := range itr.Key().(goamp.Monomial).Qubits() {
			all &= byte(x>>q) & 1
		}
		f ^= all
	}
	return f
}

// WriteAsString writes a one line summary and, per opts, the monomials and classified tables.
func (p *Polynomial) WriteAsString(out io.Writer, opts goamp.PrintOpts) {
	fmt.Fprintf(out, "%snodes=%d,qubits=%d,terms=%d", opts.Label, p.numNodes, p.NumQubits(), p.Len())
	if opts.Monomials {
		out.Write([]byte(",{"))
		itr := p.terms.Iterator()
		for i := 0; itr.Next(); i++ {
			if i > 0 {
				out.Write([]byte(" "))
			}
			io.WriteString(out, itr.Key().(goamp.Monomial).String())
		}
		out.Write([]byte("}"))
	}
	out.Write([]byte("\n"))

	if opts.Tables {
		tables, err := Classify(p)
		if err != nil {
			fmt.Fprintf(out, "  %v\n", err)
		} else {
			tables.WriteAsString(out)
		}
	}
}

func (p *Polynomial) String() string {
	var b strings.Builder
	p.WriteAsString(&b, goamp.PrintOpts{Monomials: true})
	return b.String()
}
