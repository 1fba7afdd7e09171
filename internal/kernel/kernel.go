// Package kernel implements the per-cell arithmetic of workspace binary
// operations: combining two (value, variance) pairs under first-order
// error propagation, assuming independent uncertainties.
package kernel

import "math"

// Op tags one of the four elementwise binary operations.
type Op int

const (
	Add Op = iota
	Subtract
	Multiply
	Divide
)

// String returns the operation name.
func (op Op) String() string {
	switch op {
	case Add:
		return "add"
	case Subtract:
		return "subtract"
	case Multiply:
		return "multiply"
	case Divide:
		return "divide"
	default:
		return "unknown"
	}
}

// Valid reports whether op is one of the four supported operations.
func (op Op) Valid() bool { return op >= Add && op <= Divide }

// Apply combines two (value, variance) pairs.
//
// Variances add linearly for add/subtract. For multiply and divide the
// first-order propagation is
//
//	mul: e = e1*v2^2 + e2*v1^2
//	div: e = (e1*v2^2 + e2*v1^2) / v2^4
//
// Division by an exactly-zero v2 yields (NaN, NaN); the dispatch layer
// decides whether that propagates per cell or aborts the operation.
func Apply(op Op, v1, e1, v2, e2 float64) (v, e float64) {
	switch op {
	case Add:
		return v1 + v2, e1 + e2
	case Subtract:
		return v1 - v2, e1 + e2
	case Multiply:
		return v1 * v2, e1*v2*v2 + e2*v1*v1
	case Divide:
		if v2 == 0 {
			return math.NaN(), math.NaN()
		}
		v2sq := v2 * v2
		return v1 / v2, (e1*v2sq + e2*v1*v1) / (v2sq * v2sq)
	default:
		return math.NaN(), math.NaN()
	}
}
