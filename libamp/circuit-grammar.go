package libamp

import (
	"github.com/2x3systems/goamp/goamp"
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// CircuitExpr is the text form of a Circuit:
//
//	nodes 4
//	ccz 0 1 2   // red, blue, green of node 0
//	cz 0 1
//	cnot 0 3
type CircuitExpr struct {
	Nodes int64       `parser:"'nodes' @Int"`
	Gates []*GateExpr `parser:"@@*"`
}

type GateExpr struct {
	Pos    lexer.Position
	Op     string  `parser:"@( 'ccz' | 'cz' | 'cnot' )"`
	Qubits []int64 `parser:"@Int+"`
}

var parseCircuitExpr = participle.MustBuild[CircuitExpr]()

var kGateKinds = map[string]GateKind{
	"ccz":  GateCCZ,
	"cz":   GateCZ,
	"cnot": GateCNOT,
}

// ParseCircuit reads a circuit in the form written by Circuit.WriteAsString.
// Qubit ranges and colors are checked when the circuit is applied, not here.
func ParseCircuit(circuitExpr string) (*Circuit, error) {
	expr, err := parseCircuitExpr.ParseString("", circuitExpr)
	if err != nil {
		return nil, errors.Wrap(goamp.ErrBadCircuit, err.Error())
	}

	c, err := NewCircuit(int(expr.Nodes))
	if err != nil {
		return nil, err
	}

	for _, gx := range expr.Gates {
		kind := kGateKinds[gx.Op]
		if len(gx.Qubits) != kind.Arity() {
			return nil, errors.Wrapf(goamp.ErrBadCircuit, "%v: %s takes %d qubits, got %d", gx.Pos, gx.Op, kind.Arity(), len(gx.Qubits))
		}
		g := Gate{Kind: kind}
		for i, q := range gx.Qubits {
			if q < 0 || q >= int64(goamp.NumColors*c.NumNodes) {
				return nil, errors.Wrapf(goamp.ErrQubitRange, "%v: qubit %d", gx.Pos, q)
			}
			g.Qubits[i] = goamp.Qubit(q)
		}
		c.Gates = append(c.Gates, g)
	}
	return c, nil
}
