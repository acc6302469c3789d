package field

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"github.com/hupe1980/meshkit/geom"
	"github.com/hupe1980/meshkit/mesh"
)

// ErrNoField is wrapped by the StructuralError returned when an expression
// reads a field the block does not carry.
var ErrNoField = errors.New("no such field")

const evalOp = "evaluate"

// Expr is a scalar expression over the elements of a mesh.
type Expr interface {
	// Eval returns one value per element of the block of type et.
	Eval(r mesh.Reader, et mesh.ElementType) ([]float64, error)
	fmt.Stringer
}

func block(r mesh.Reader, et mesh.ElementType) (*mesh.ElementBlock, error) {
	b, ok := r.Block(et)
	if !ok {
		return nil, &mesh.StructuralError{Op: evalOp, Detail: fmt.Sprintf("no %s block", et)}
	}

	return b, nil
}

type constant float64

// Const is value on every element.
func Const(value float64) Expr { return constant(value) }

func (c constant) Eval(r mesh.Reader, et mesh.ElementType) ([]float64, error) {
	b, err := block(r, et)
	if err != nil {
		return nil, err
	}

	out := make([]float64, b.Len())
	for i := range out {
		out[i] = float64(c)
	}

	return out, nil
}

func (c constant) String() string { return strconv.FormatFloat(float64(c), 'g', -1, 64) }

type named string

// Named reads the stored field name.
func Named(name string) Expr { return named(name) }

func (n named) Eval(r mesh.Reader, et mesh.ElementType) ([]float64, error) {
	b, err := block(r, et)
	if err != nil {
		return nil, err
	}

	vals, ok := b.Field(string(n))
	if !ok {
		return nil, &mesh.StructuralError{Op: evalOp, Detail: fmt.Sprintf("%s block has no field %q", et, string(n)), Err: ErrNoField}
	}

	return append([]float64(nil), vals...), nil
}

func (n named) String() string { return strconv.Quote(string(n)) }

type centroid int

// Centroid is coordinate axis of the element centroid.
func Centroid(axis int) Expr { return centroid(axis) }

// X is the first centroid coordinate.
func X() Expr { return centroid(0) }

// Y is the second centroid coordinate.
func Y() Expr { return centroid(1) }

// Z is the third centroid coordinate.
func Z() Expr { return centroid(2) }

func (c centroid) Eval(r mesh.Reader, et mesh.ElementType) ([]float64, error) {
	if c < 0 || int(c) >= r.SpaceDim() {
		return nil, &mesh.DimensionError{Op: evalOp, SpaceDim: r.SpaceDim(), TopoDim: et.Dimension(), Detail: fmt.Sprintf("no coordinate axis %d", int(c))}
	}

	b, err := block(r, et)
	if err != nil {
		return nil, err
	}

	out := make([]float64, b.Len())

	for i := range out {
		p, err := mesh.Centroid(r, mesh.ElementID{Type: et, Index: i})
		if err != nil {
			return nil, err
		}

		out[i] = p[c]
	}

	return out, nil
}

func (c centroid) String() string {
	if c >= 0 && c < 3 {
		return string("xyz"[c])
	}

	return fmt.Sprintf("c%d", int(c))
}

type measure struct {
	pred geom.Predicates
}

// Measure is the length, area or volume of each element under p.
func Measure(p geom.Predicates) Expr { return measure{pred: p} }

func (m measure) Eval(r mesh.Reader, et mesh.ElementType) ([]float64, error) {
	b, err := block(r, et)
	if err != nil {
		return nil, err
	}

	out := make([]float64, b.Len())
	for i := range out {
		out[i] = m.pred.Measure(et, b.Element(i), r.Coord)
	}

	return out, nil
}

func (measure) String() string { return "measure" }

// BinaryOp combines two values.
type BinaryOp string

const (
	OpAdd BinaryOp = "+"
	OpSub BinaryOp = "-"
	OpMul BinaryOp = "*"
	OpDiv BinaryOp = "/"
	OpPow BinaryOp = "^"
)

// apply stores dst o s into dst.
func (o BinaryOp) apply() (func(dst, s []float64), error) {
	switch o {
	case OpAdd:
		return floats.Add, nil
	case OpSub:
		return floats.Sub, nil
	case OpMul:
		return floats.Mul, nil
	case OpDiv:
		return floats.Div, nil
	case OpPow:
		return func(dst, s []float64) {
			for i := range dst {
				dst[i] = math.Pow(dst[i], s[i])
			}
		}, nil
	default:
		return nil, &mesh.StructuralError{Op: evalOp, Detail: fmt.Sprintf("unknown operator %q", string(o))}
	}
}

type binary struct {
	op          BinaryOp
	left, right Expr
}

// Binary applies o element-wise to left and right.
func Binary(o BinaryOp, left, right Expr) Expr { return binary{op: o, left: left, right: right} }

// Add is left + right.
func Add(left, right Expr) Expr { return Binary(OpAdd, left, right) }

// Sub is left - right.
func Sub(left, right Expr) Expr { return Binary(OpSub, left, right) }

// Mul is left * right.
func Mul(left, right Expr) Expr { return Binary(OpMul, left, right) }

// Div is left / right. Division by zero follows IEEE 754.
func Div(left, right Expr) Expr { return Binary(OpDiv, left, right) }

// Pow is left raised to right.
func Pow(left, right Expr) Expr { return Binary(OpPow, left, right) }

func (e binary) Eval(r mesh.Reader, et mesh.ElementType) ([]float64, error) {
	f, err := e.op.apply()
	if err != nil {
		return nil, err
	}

	a, err := e.left.Eval(r, et)
	if err != nil {
		return nil, err
	}

	b, err := e.right.Eval(r, et)
	if err != nil {
		return nil, err
	}

	f(a, b)

	return a, nil
}

func (e binary) String() string { return fmt.Sprintf("(%s %s %s)", e.left, e.op, e.right) }

// UnaryOp maps one value.
type UnaryOp string

const (
	OpAbs    UnaryOp = "abs"
	OpSqrt   UnaryOp = "sqrt"
	OpSquare UnaryOp = "square"
	OpExp    UnaryOp = "exp"
	OpLn     UnaryOp = "ln"
	OpLog10  UnaryOp = "log10"
	OpSin    UnaryOp = "sin"
	OpCos    UnaryOp = "cos"
	OpTan    UnaryOp = "tan"
)

var unaryFuncs = map[UnaryOp]func(float64) float64{
	OpAbs:    math.Abs,
	OpSqrt:   math.Sqrt,
	OpSquare: func(x float64) float64 { return x * x },
	OpExp:    math.Exp,
	OpLn:     math.Log,
	OpLog10:  math.Log10,
	OpSin:    math.Sin,
	OpCos:    math.Cos,
	OpTan:    math.Tan,
}

type unary struct {
	op   UnaryOp
	expr Expr
}

// Apply maps o over every value of e.
func Apply(o UnaryOp, e Expr) Expr { return unary{op: o, expr: e} }

func (e unary) Eval(r mesh.Reader, et mesh.ElementType) ([]float64, error) {
	f, ok := unaryFuncs[e.op]
	if !ok {
		return nil, &mesh.StructuralError{Op: evalOp, Detail: fmt.Sprintf("unknown function %q", string(e.op))}
	}

	vals, err := e.expr.Eval(r, et)
	if err != nil {
		return nil, err
	}

	for i, v := range vals {
		vals[i] = f(v)
	}

	return vals, nil
}

func (e unary) String() string { return fmt.Sprintf("%s(%s)", e.op, e.expr) }
