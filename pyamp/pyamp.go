package pyamp

import (
	"context"
	"strings"

	"github.com/2x3systems/goamp/goamp"
	"github.com/2x3systems/goamp/libamp"
	"github.com/2x3systems/goamp/libamp/oracle"
	"github.com/go-python/gpython/py"
)

var (
	LIB_VERSION = "v1.2024.1"
)

var (
	pyPolynomialType = py.NewType("Polynomial", "a cubic phase polynomial over 3*nodes colored qubits")
)

type pyPolynomial struct {
	*libamp.Polynomial
}

func (X pyPolynomial) Type() *py.Type {
	return pyPolynomialType
}

func (X pyPolynomial) M__str__() (py.Object, error) {
	writer := strings.Builder{}
	X.WriteAsString(&writer, goamp.DefaultPrintOpts)
	return py.String(writer.String()), nil
}

func (X pyPolynomial) M__repr__() (py.Object, error) {
	return X.M__str__()
}

// RunScript compiles src as a module body and runs every statement of it in ctx.
// inModule, if given, is the module the script runs in.
func RunScript(ctx py.Context, src, srcDesc string, inModule interface{}) (*py.Module, error) {
	code, err := py.Compile(src, srcDesc, py.ExecMode, 0, true)
	if err != nil {
		return nil, err
	}
	return py.RunCode(ctx, code, srcDesc, inModule)
}

func valueError(err error) error {
	return py.ExceptionNewf(py.ValueError, "%v", err)
}

func getPolynomial(obj py.Object) (X pyPolynomial, err error) {
	X, ok := obj.(pyPolynomial)
	if !ok {
		err = py.ExceptionNewf(py.TypeError, "expected Polynomial object (got %v)", obj.Type().Name)
	}
	return
}

func loadQubits(args py.Tuple, arity int) ([]goamp.Qubit, error) {
	if len(args) != arity {
		return nil, py.ExceptionNewf(py.TypeError, "expected %d qubits (got %d)", arity, len(args))
	}
	qubits := make([]goamp.Qubit, arity)
	for i, arg := range args {
		q, err := py.GetInt(arg)
		if err != nil {
			return nil, err
		}
		if q < 0 {
			return nil, py.ExceptionNewf(py.ValueError, "negative qubit %d", q)
		}
		qubits[i] = goamp.Qubit(q)
	}
	return qubits, nil
}

// Arg 1 (int): nodes per color
func py_NewPolynomial(module py.Object, args py.Tuple) (py.Object, error) {
	var nodes py.Object
	err := py.ParseTuple(args, "i", &nodes)
	if err != nil {
		return nil, err
	}
	X, err := libamp.NewPolynomial(int(nodes.(py.Int)))
	if err != nil {
		return nil, valueError(err)
	}
	return py.Object(pyPolynomial{X}), nil
}

// Arg 1 (int): cube dimension
func py_Hypercube(module py.Object, args py.Tuple) (py.Object, error) {
	var k py.Object
	err := py.ParseTuple(args, "i", &k)
	if err != nil {
		return nil, err
	}
	c, err := libamp.Hypercube(int(k.(py.Int)))
	if err != nil {
		return nil, valueError(err)
	}
	X, err := c.Build()
	if err != nil {
		return nil, valueError(err)
	}
	return py.Object(pyPolynomial{X}), nil
}

func loadPolyAndString(args py.Tuple) (X pyPolynomial, s goamp.BitString, err error) {
	var polyObj, strObj py.Object
	if err = py.ParseTuple(args, "Os", &polyObj, &strObj); err != nil {
		return
	}
	if X, err = getPolynomial(polyObj); err != nil {
		return
	}
	if s, err = goamp.ParseBitString(string(strObj.(py.String))); err != nil {
		err = valueError(err)
	}
	return
}

func loadWalkOpts(kwargs py.StringDict, opts *goamp.WalkOpts) error {
	if obj, ok := kwargs["quick"]; ok {
		str, isStr := obj.(py.String)
		if !isStr {
			return py.ExceptionNewf(py.TypeError, "'quick' expects a string")
		}
		mode, err := goamp.ParseQuickReject(string(str))
		if err != nil {
			return valueError(err)
		}
		opts.QuickReject = mode
	}
	if obj, ok := kwargs["eval"]; ok {
		str, isStr := obj.(py.String)
		if !isStr {
			return py.ExceptionNewf(py.TypeError, "'eval' expects a string")
		}
		kind, err := goamp.ParseEvalKind(string(str))
		if err != nil {
			return valueError(err)
		}
		opts.Evaluator = kind
	}
	if obj, ok := kwargs["parts"]; ok {
		parts, err := py.GetInt(obj)
		if err != nil {
			return err
		}
		opts.Parts = int(parts)
	}
	return nil
}

// Arg 1 (Polynomial): phase polynomial
// Arg 2 (str): output bit string, qubit 0 first
// kwargs: quick="off"|"on"|"checked", eval="linear"|"expsum", parts=int
func py_Amplitude(module py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	X, s, err := loadPolyAndString(args)
	if err != nil {
		return nil, err
	}
	opts := goamp.DefaultWalkOpts
	if err = loadWalkOpts(kwargs, &opts); err != nil {
		return nil, err
	}
	rpt, err := libamp.ComputeAmplitude(context.Background(), X.Polynomial, s, opts)
	if err != nil {
		return nil, valueError(err)
	}
	return py.Float(rpt.Amplitude), nil
}

// Arg 1 (Polynomial): phase polynomial
// Arg 2 (str): output bit string, qubit 0 first
func py_BruteForce(module py.Object, args py.Tuple) (py.Object, error) {
	X, s, err := loadPolyAndString(args)
	if err != nil {
		return nil, err
	}
	amp, err := oracle.Amplitude(X.Polynomial, s)
	if err != nil {
		return nil, valueError(err)
	}
	return py.Float(amp), nil
}

func py_Polynomial_CCZ(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyPolynomial)
	q, err := loadQubits(args, 3)
	if err != nil {
		return nil, err
	}
	if err = X.CCZ(q[0], q[1], q[2]); err != nil {
		return nil, valueError(err)
	}
	return self, nil
}

func py_Polynomial_CZ(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyPolynomial)
	q, err := loadQubits(args, 2)
	if err != nil {
		return nil, err
	}
	if err = X.CZ(q[0], q[1]); err != nil {
		return nil, valueError(err)
	}
	return self, nil
}

func py_Polynomial_CNOT(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyPolynomial)
	q, err := loadQubits(args, 2)
	if err != nil {
		return nil, err
	}
	if err = X.CNOT(q[0], q[1]); err != nil {
		return nil, valueError(err)
	}
	return self, nil
}

func py_Polynomial_NumMonomials(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyPolynomial)
	return py.Int(X.Len()), nil
}

func py_Polynomial_NumQubits(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyPolynomial)
	return py.Int(X.NumQubits()), nil
}

func init() {

	/////////////////////////////////
	// Polynomial
	{
		pyPolynomialType.Dict["CCZ"] = py.MustNewMethod("CCZ", py_Polynomial_CCZ, 0, "toggles the cubic term of three differently colored qubits")
		pyPolynomialType.Dict["CZ"] = py.MustNewMethod("CZ", py_Polynomial_CZ, 0, "toggles the quadratic term of two differently colored qubits")
		pyPolynomialType.Dict["CNOT"] = py.MustNewMethod("CNOT", py_Polynomial_CNOT, 0, "substitutes target -> target+control (same color)")
		pyPolynomialType.Dict["NumMonomials"] = py.MustNewMethod("NumMonomials", py_Polynomial_NumMonomials, 0, "")
		pyPolynomialType.Dict["NumQubits"] = py.MustNewMethod("NumQubits", py_Polynomial_NumQubits, 0, "")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("NewPolynomial", py_NewPolynomial, 0, "returns an empty Polynomial over the given number of nodes per color"),
			py.MustNewMethod("Hypercube", py_Hypercube, 0, "returns the hypercube circuit polynomial of dimension k"),
			py.MustNewMethod("Amplitude", py_Amplitude, 0, "returns <s|H C H|0> via the Gray-code walk"),
			py.MustNewMethod("BruteForce", py_BruteForce, 0, "returns <s|H C H|0> from the full state vector"),
		}

		globals := py.StringDict{
			"LIB_VERSION": py.String(LIB_VERSION),
			"NUM_COLORS":  py.Int(goamp.NumColors),
			"MAX_NODES":   py.Int(goamp.MaxNodes),
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "_pyamp",
				Doc:  "phase polynomial amplitude engine gpython module",
			},
			Methods: methods,
			Globals: globals,
		})
	}
}
