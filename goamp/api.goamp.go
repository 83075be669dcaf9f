package goamp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

const (

	// NumColors is the number of qubit color classes.  Qubit q has color q % NumColors.
	NumColors = 3

	// MaxNodes is the largest color class size supported.  A color class plus one augmented
	// solver column must fit in a uint64.
	MaxNodes = 63

	// MaxGrayListLen bounds GrayCode(); longer schedules must be streamed with a GraySchedule.
	MaxGrayListLen = 24

	// MaxBruteForceQubits bounds the state vector the oracle will materialize.
	MaxBruteForceQubits = 24
)

// Color labels one of the three disjoint qubit classes.
type Color byte

const (
	Red Color = iota
	Blue
	Green
)

var kColorNames = [NumColors]string{"Red", "Blue", "Green"}

func (c Color) String() string {
	if int(c) < NumColors {
		return kColorNames[c]
	}
	return fmt.Sprintf("Color(%d)", byte(c))
}

// Qubit is a global qubit index in [0, 3*numNodes).
type Qubit uint32

// Color returns the color class of this qubit.
func (q Qubit) Color() Color {
	return Color(q % NumColors)
}

// Local returns the color-local index of this qubit, in [0, numNodes).
func (q Qubit) Local() uint32 {
	return uint32(q / NumColors)
}

// QubitOf returns the global qubit index of the given color and color-local index.
func QubitOf(c Color, local uint32) Qubit {
	return Qubit(local*NumColors + uint32(c))
}

// Monomial is a product of 2 or 3 distinct qubit variables, stored as a sorted tuple.
// The zero Monomial (Deg == 0) is not a valid term.
type Monomial struct {
	Deg  uint8
	Vars [3]Qubit
}

// NewMonomial returns the canonical (sorted) monomial over the given qubits.
func NewMonomial(qubits ...Qubit) (Monomial, error) {
	var m Monomial
	if len(qubits) < 2 || len(qubits) > 3 {
		return m, ErrMonomialShape
	}
	m.Deg = uint8(len(qubits))
	copy(m.Vars[:], qubits)
	vars := m.Vars[:m.Deg]
	sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })
	for i := 1; i < len(vars); i++ {
		if vars[i] == vars[i-1] {
			return Monomial{}, ErrSameQubit
		}
	}
	return m, nil
}

// Qubits returns the variables of this monomial in ascending order.
func (m Monomial) Qubits() []Qubit {
	return m.Vars[:m.Deg]
}

// Has returns true if q is a variable of this monomial.
func (m Monomial) Has(q Qubit) bool {
	for _, qi := range m.Vars[:m.Deg] {
		if qi == q {
			return true
		}
	}
	return false
}

// Replace returns the canonical monomial with variable from swapped for variable to.
func (m Monomial) Replace(from, to Qubit) (Monomial, error) {
	var buf [3]Qubit
	qs := buf[:0]
	for _, qi := range m.Vars[:m.Deg] {
		if qi == from {
			qi = to
		}
		qs = append(qs, qi)
	}
	return NewMonomial(qs...)
}

// ColorMask returns a 3-bit mask of the colors present in this monomial and
// whether each color appears at most once.
func (m Monomial) ColorMask() (mask byte, distinct bool) {
	distinct = true
	for _, qi := range m.Vars[:m.Deg] {
		bit := byte(1) << qi.Color()
		if mask&bit != 0 {
			distinct = false
		}
		mask |= bit
	}
	return mask, distinct
}

func (m Monomial) String() string {
	b := strings.Builder{}
	b.WriteByte('(')
	for i, qi := range m.Vars[:m.Deg] {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", qi)
	}
	b.WriteByte(')')
	return b.String()
}

// CompareMonomials orders monomials lexicographically by variable, shorter first on a tie.
func CompareMonomials(A, B Monomial) int {
	N := int(A.Deg)
	if int(B.Deg) < N {
		N = int(B.Deg)
	}
	for i := 0; i < N; i++ {
		if A.Vars[i] != B.Vars[i] {
			if A.Vars[i] < B.Vars[i] {
				return -1
			}
			return 1
		}
	}
	return int(A.Deg) - int(B.Deg)
}

// Pair is a (blue-local, green-local) index pair.
type Pair struct {
	Blue  uint32
	Green uint32
}

// BitString is an output basis string; BitString[q] is the bit of qubit q.
type BitString []byte

// ParseBitString reads a string of '0' and '1' characters, qubit 0 first.
func ParseBitString(str string) (BitString, error) {
	s := make(BitString, len(str))
	for i, r := range str {
		switch r {
		case '0':
		case '1':
			s[i] = 1
		default:
			return nil, errors.Wrapf(ErrBitString, "%q at offset %d", r, i)
		}
	}
	return s, nil
}

// Project returns the bits of the given color as a bit mask indexed by color-local index.
func (s BitString) Project(c Color) uint64 {
	proj := uint64(0)
	for q := int(c); q < len(s); q += NumColors {
		if s[q] != 0 {
			proj |= 1 << (q / NumColors)
		}
	}
	return proj
}

func (s BitString) String() string {
	b := make([]byte, len(s))
	for i, si := range s {
		b[i] = '0' + si&1
	}
	return string(b)
}

// QuickReject selects how the walk uses its parity pre-filter.
type QuickReject int

const (
	// QuickRejectOff always consults the slice evaluator.
	QuickRejectOff QuickReject = iota

	// QuickRejectOn skips the slice evaluator whenever either parity test is odd.
	// Only sound for polynomials where the filter never rejects a contributing slice
	// (such as the hypercube circuit); see QuickRejectChecked.
	QuickRejectOn

	// QuickRejectChecked evaluates every slice and fails with ErrQuickRejectUnsound
	// if the filter would have rejected a contributing slice.
	QuickRejectChecked
)

var kQuickRejectNames = []string{"off", "on", "checked"}

func (qr QuickReject) String() string {
	if qr >= 0 && int(qr) < len(kQuickRejectNames) {
		return kQuickRejectNames[qr]
	}
	return fmt.Sprintf("QuickReject(%d)", int(qr))
}

// ParseQuickReject maps "off", "on", or "checked" to a QuickReject mode.
func ParseQuickReject(str string) (QuickReject, error) {
	for i, name := range kQuickRejectNames {
		if name == str {
			return QuickReject(i), nil
		}
	}
	return QuickRejectOff, errors.Wrapf(ErrBadOption, "unknown quick reject mode %q", str)
}

// EvalKind selects how a single red-slice contribution is computed.
type EvalKind int

const (
	// EvalLinear solves Gamma x = b over GF(2) and tests the null-space syndrome.
	EvalLinear EvalKind = iota

	// EvalExpSum evaluates the real Clifford exponential sum over the blue and green
	// variables directly.  Requires 2*numNodes <= 64.
	EvalExpSum
)

var kEvalNames = []string{"linear", "expsum"}

func (ek EvalKind) String() string {
	if ek >= 0 && int(ek) < len(kEvalNames) {
		return kEvalNames[ek]
	}
	return fmt.Sprintf("EvalKind(%d)", int(ek))
}

// ParseEvalKind maps "linear" or "expsum" to an EvalKind.
func ParseEvalKind(str string) (EvalKind, error) {
	for i, name := range kEvalNames {
		if name == str {
			return EvalKind(i), nil
		}
	}
	return EvalLinear, errors.Wrapf(ErrBadOption, "unknown evaluator %q", str)
}

// WalkOpts specifies params for an amplitude walk.
type WalkOpts struct {
	QuickReject QuickReject // parity pre-filter mode (default off)
	Evaluator   EvalKind    // slice evaluator (default linear)
	Parts       int         // partition count for parallel walks (<= 0 denotes one per CPU)
	MaxWorkers  int         // max concurrent partitions (<= 0 denotes no limit)
}

// DefaultWalkOpts walks single-threaded with the linear solver and no pre-filter.
var DefaultWalkOpts = WalkOpts{
	QuickReject: QuickRejectOff,
	Evaluator:   EvalLinear,
	Parts:       1,
}

// PrintOpts specifies what is printed when printing a polynomial
type PrintOpts struct {
	Label     string // Prefix label
	Monomials bool   // If set, prints each monomial
	Tables    bool   // If set, prints the classified tables
}

// DefaultPrintOpts{}
var DefaultPrintOpts = PrintOpts{
	Monomials: true,
}
