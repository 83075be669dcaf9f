package libamp

import (
	"math/bits"

	"github.com/2x3systems/goamp/goamp"
	"github.com/pkg/errors"
)

// MaxCubeDim is the largest hypercube whose node count fits in goamp.MaxNodes.
const MaxCubeDim = 5

// Hypercube returns the circuit over the k-dimensional Boolean cube: each of the 2^k nodes
// carries a red, blue, and green qubit.  An initial rectangle layer is followed, per cube
// direction, by CNOTs from even-parity nodes to their neighbors and another rectangle layer.
// Single-qubit Z gates are omitted (absorbed into a Pauli frame).
func Hypercube(k int) (*Circuit, error) {
	if k < 1 || k > MaxCubeDim {
		return nil, errors.Wrapf(goamp.ErrNodeCount, "cube dimension %d", k)
	}
	numNodes := 1 << uint(k)
	c, err := NewCircuit(numNodes)
	if err != nil {
		return nil, err
	}

	red := func(i int) goamp.Qubit { return goamp.QubitOf(goamp.Red, uint32(i)) }
	blue := func(i int) goamp.Qubit { return goamp.QubitOf(goamp.Blue, uint32(i)) }
	green := func(i int) goamp.Qubit { return goamp.QubitOf(goamp.Green, uint32(i)) }

	for i := 0; i < numNodes; i++ {
		c.CCZ(red(i), blue(i), green(i))
		c.CZ(red(i), blue(i))
		c.CZ(blue(i), green(i))
		c.CZ(red(i), green(i))
	}

	for dir := 0; dir < k; dir++ {
		for x := 0; x < numNodes; x++ {
			if bits.OnesCount(uint(x))&1 != 0 {
				continue
			}
			y := x ^ (1 << uint(dir))
			c.CNOT(red(x), red(y))
			c.CNOT(blue(x), blue(y))
			c.CNOT(green(x), green(y))
		}

		// alternates between A and B rectangles
		for i := 0; i < numNodes; i++ {
			c.CCZ(red(i), blue(i), green(i))
			c.CZ(red(i), blue(i))
			c.CZ(blue(i), green(i))
			if dir&1 != 0 {
				c.CZ(red(i), green(i))
			}
		}
	}
	return c, nil
}
