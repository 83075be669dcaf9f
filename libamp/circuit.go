package libamp

import (
	"fmt"
	"io"
	"strings"

	"github.com/2x3systems/goamp/goamp"
	"github.com/pkg/errors"
)

// GateKind is one of the gates a Polynomial can absorb.
type GateKind byte

const (
	GateCCZ GateKind = iota + 1
	GateCZ
	GateCNOT
)

var kGateNames = [...]string{"", "ccz", "cz", "cnot"}

func (kind GateKind) String() string {
	if int(kind) < len(kGateNames) && kind > 0 {
		return kGateNames[kind]
	}
	return fmt.Sprintf("GateKind(%d)", byte(kind))
}

// Arity returns the number of qubits this kind of gate acts on.
func (kind GateKind) Arity() int {
	if kind == GateCCZ {
		return 3
	}
	return 2
}

// Gate is one gate of a circuit.  For GateCNOT, Qubits[0] is the control and Qubits[1] the target.
type Gate struct {
	Kind   GateKind
	Qubits [3]goamp.Qubit
}

// Args returns the qubits this gate acts on, in order.
func (g Gate) Args() []goamp.Qubit {
	return g.Qubits[:g.Kind.Arity()]
}

func (g Gate) String() string {
	b := strings.Builder{}
	b.WriteString(g.Kind.String())
	for _, q := range g.Args() {
		fmt.Fprintf(&b, " %d", q)
	}
	return b.String()
}

// ApplyTo applies this gate to p.
func (g Gate) ApplyTo(p *Polynomial) error {
	switch g.Kind {
	case GateCCZ:
		return p.CCZ(g.Qubits[0], g.Qubits[1], g.Qubits[2])
	case GateCZ:
		return p.CZ(g.Qubits[0], g.Qubits[1])
	case GateCNOT:
		return p.CNOT(g.Qubits[0], g.Qubits[1])
	}
	return errors.Wrapf(goamp.ErrBadCircuit, "unknown gate %v", g.Kind)
}

// Circuit is a gate sequence over 3*NumNodes qubits.
type Circuit struct {
	NumNodes int
	Gates    []Gate
}

// NewCircuit returns an empty circuit over the given number of nodes.
func NewCircuit(numNodes int) (*Circuit, error) {
	if numNodes < 1 || numNodes > goamp.MaxNodes {
		return nil, errors.Wrapf(goamp.ErrNodeCount, "%d nodes", numNodes)
	}
	return &Circuit{
		NumNodes: numNodes,
	}, nil
}

func (c *Circuit) CCZ(q1, q2, q3 goamp.Qubit) {
	c.Gates = append(c.Gates, Gate{Kind: GateCCZ, Qubits: [3]goamp.Qubit{q1, q2, q3}})
}

func (c *Circuit) CZ(q1, q2 goamp.Qubit) {
	c.Gates = append(c.Gates, Gate{Kind: GateCZ, Qubits: [3]goamp.Qubit{q1, q2}})
}

func (c *Circuit) CNOT(control, target goamp.Qubit) {
	c.Gates = append(c.Gates, Gate{Kind: GateCNOT, Qubits: [3]goamp.Qubit{control, target}})
}

// ApplyTo applies each gate in order, stopping at the first rejected gate.
func (c *Circuit) ApplyTo(p *Polynomial) error {
	for i, g := range c.Gates {
		if err := g.ApplyTo(p); err != nil {
			return errors.Wrapf(err, "gate #%d (%v)", i+1, g)
		}
	}
	return nil
}

// Build returns the phase polynomial of this circuit applied to the empty polynomial.
func (c *Circuit) Build() (*Polynomial, error) {
	p, err := NewPolynomial(c.NumNodes)
	if err != nil {
		return nil, err
	}
	if err = c.ApplyTo(p); err != nil {
		return nil, err
	}
	return p, nil
}

// WriteAsString writes this circuit in the form read by ParseCircuit.
func (c *Circuit) WriteAsString(out io.Writer) {
	fmt.Fprintf(out, "nodes %d\n", c.NumNodes)
	for _, g := range c.Gates {
		io.WriteString(out, g.String())
		out.Write([]byte("\n"))
	}
}

func (c *Circuit) String() string {
	var b strings.Builder
	c.WriteAsString(&b)
	return b.String()
}
