package oracle

import (
	"math"
	"math/bits"

	"github.com/2x3systems/goamp/goamp"
	"github.com/pkg/errors"
)

// PhasePolynomial is the view of a frozen phase polynomial the oracle needs.
type PhasePolynomial interface {
	NumQubits() int
	TermMasks() ([]uint64, error)
}

// StateVector holds the unnormalized amplitudes of an n-qubit real state.
type StateVector struct {
	NumQubits  int
	Amplitudes []float64
}

// NewPhaseState returns the state sum over x of (-1)^f(x) |x>, omitting the 2^(-n/2) normalization.
func NewPhaseState(p PhasePolynomial) (*StateVector, error) {
	n := p.NumQubits()
	if n > goamp.MaxBruteForceQubits {
		return nil, errors.Wrapf(goamp.ErrTooManyQubits, "%d qubits exceeds brute force limit of %d", n, goamp.MaxBruteForceQubits)
	}
	masks, err := p.TermMasks()
	if err != nil {
		return nil, err
	}

	s := &StateVector{
		NumQubits:  n,
		Amplitudes: make([]float64, 1<<uint(n)),
	}
	for x := range s.Amplitudes {
		f := 0
		for _, mask := range masks {
			if uint64(x)&mask == mask {
				f ^= 1
			}
		}
		s.Amplitudes[x] = float64(1 - 2*f)
	}
	return s, nil
}

// applyH applies an unnormalized Hadamard butterfly on qubit q, in place.
func (s *StateVector) applyH(q int) {
	bit := 1 << uint(q)
	for i := range s.Amplitudes {
		if i&bit == 0 {
			j := i | bit
			a, b := s.Amplitudes[i], s.Amplitudes[j]
			s.Amplitudes[i] = a + b
			s.Amplitudes[j] = a - b
		}
	}
}

// ApplyHadamardAll applies the unnormalized Hadamard butterfly on every qubit.
func (s *StateVector) ApplyHadamardAll() {
	for q := 0; q < s.NumQubits; q++ {
		s.applyH(q)
	}
}

// Amplitudes returns <s|H^n U|0^n> for every output string s, indexed with bit q as qubit q.
// All entries are exact dyadic rationals.
func Amplitudes(p PhasePolynomial) ([]float64, error) {
	s, err := NewPhaseState(p)
	if err != nil {
		return nil, err
	}
	s.ApplyHadamardAll()
	for i, amp := range s.Amplitudes {
		s.Amplitudes[i] = math.Ldexp(amp, -s.NumQubits)
	}
	return s.Amplitudes, nil
}

// Amplitude returns <out|H^n U|0^n> = 2^-n sum over x of (-1)^(f(x) + out.x).
func Amplitude(p PhasePolynomial, out goamp.BitString) (float64, error) {
	n := p.NumQubits()
	if len(out) != n {
		return 0, errors.Wrapf(goamp.ErrBitString, "output string has %d bits, expected %d", len(out), n)
	}
	if n > goamp.MaxBruteForceQubits {
		return 0, errors.Wrapf(goamp.ErrTooManyQubits, "%d qubits exceeds brute force limit of %d", n, goamp.MaxBruteForceQubits)
	}
	masks, err := p.TermMasks()
	if err != nil {
		return 0, err
	}

	sMask := uint64(0)
	for q, bit := range out {
		if bit != 0 {
			sMask |= 1 << uint(q)
		}
	}

	sum := 0
	for x := uint64(0); x < 1<<uint(n); x++ {
		f := bits.OnesCount64(x & sMask)
		for _, mask := range masks {
			if x&mask == mask {
				f++
			}
		}
		sum += 1 - 2*(f&1)
	}
	return math.Ldexp(float64(sum), -n), nil
}
