package libamp

import (
	"fmt"
	"io"

	"github.com/2x3systems/goamp/goamp"
	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

const (
	maskRedBlue   = 1<<goamp.Red | 1<<goamp.Blue
	maskRedGreen  = 1<<goamp.Red | 1<<goamp.Green
	maskBlueGreen = 1<<goamp.Blue | 1<<goamp.Green
	maskAll       = 1<<goamp.Red | 1<<goamp.Blue | 1<<goamp.Green
)

// Tables is a frozen polynomial routed by the colors each monomial touches.
// All indices are color-local.
type Tables struct {
	NumNodes int
	Triples  [][]goamp.Pair // Triples[r] lists (blue, green) of each (r, blue, green) monomial
	RedBlue  [][]uint32     // RedBlue[r] lists blue of each (r, blue) monomial
	RedGreen [][]uint32     // RedGreen[r] lists green of each (r, green) monomial
	Base     []goamp.Pair   // (blue, green) of each blue-green monomial
}

// Classify routes every monomial of p into exactly one table.
func Classify(p *Polynomial) (*Tables, error) {
	return classifyTerms(p.NumNodes(), p.Monomials())
}

func classifyTerms(numNodes int, terms []goamp.Monomial) (*Tables, error) {
	tables := &Tables{
		NumNodes: numNodes,
		Triples:  make([][]goamp.Pair, numNodes),
		RedBlue:  make([][]uint32, numNodes),
		RedGreen: make([][]uint32, numNodes),
	}

	numQubits := goamp.Qubit(goamp.NumColors * numNodes)
	for _, m := range terms {
		if m.Deg < 2 || m.Deg > 3 {
			return nil, errors.Wrapf(goamp.ErrUnclassifiable, "%v has degree %d", m, m.Deg)
		}
		mask, distinct := m.ColorMask()
		if !distinct {
			return nil, errors.Wrapf(goamp.ErrUnclassifiable, "%v repeats a color", m)
		}

		var local [goamp.NumColors]uint32
		for _, q := range m.Qubits() {
			if q >= numQubits {
				return nil, errors.Wrapf(goamp.ErrUnclassifiable, "%v exceeds %d qubits", m, numQubits)
			}
			local[q.Color()] = q.Local()
		}
		r := local[goamp.Red]

		switch mask {
		case maskAll:
			tables.Triples[r] = append(tables.Triples[r], goamp.Pair{Blue: local[goamp.Blue], Green: local[goamp.Green]})
		case maskRedBlue:
			tables.RedBlue[r] = append(tables.RedBlue[r], local[goamp.Blue])
		case maskRedGreen:
			tables.RedGreen[r] = append(tables.RedGreen[r], local[goamp.Green])
		case maskBlueGreen:
			tables.Base = append(tables.Base, goamp.Pair{Blue: local[goamp.Blue], Green: local[goamp.Green]})
		default:
			return nil, errors.Wrapf(goamp.ErrUnclassifiable, "%v", m)
		}
	}
	return tables, nil
}

// NumMonomials returns the number of monomials routed into these tables.
func (tables *Tables) NumMonomials() int {
	N := len(tables.Base)
	for r := 0; r < tables.NumNodes; r++ {
		N += len(tables.Triples[r]) + len(tables.RedBlue[r]) + len(tables.RedGreen[r])
	}
	return N
}

// Fingerprint hashes the table contents in order.
func (tables *Tables) Fingerprint() uint64 {
	h := xxhash.New()
	var buf [16]byte

	h.Write(appendUint32(buf[:0], uint32(tables.NumNodes)))
	for r := 0; r < tables.NumNodes; r++ {
		h.Write(appendUint32(buf[:0], uint32(r)))
		for _, pr := range tables.Triples[r] {
			h.Write(appendUint32(appendUint32(buf[:0], pr.Blue), pr.Green))
		}
		h.Write([]byte{'b'})
		for _, bi := range tables.RedBlue[r] {
			h.Write(appendUint32(buf[:0], bi))
		}
		h.Write([]byte{'g'})
		for _, gi := range tables.RedGreen[r] {
			h.Write(appendUint32(buf[:0], gi))
		}
	}
	h.Write([]byte{'*'})
	for _, pr := range tables.Base {
		h.Write(appendUint32(appendUint32(buf[:0], pr.Blue), pr.Green))
	}
	return h.Sum64()
}

// WriteAsString writes one line per red index and one for the base coupling list.
func (tables *Tables) WriteAsString(out io.Writer) {
	for r := 0; r < tables.NumNodes; r++ {
		fmt.Fprintf(out, "  R%-3d triples=%v blue=%v green=%v\n", r, tables.Triples[r], tables.RedBlue[r], tables.RedGreen[r])
	}
	fmt.Fprintf(out, "  base=%v\n", tables.Base)
}
