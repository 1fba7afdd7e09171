// Package compat decides whether two workspaces may be combined by a
// binary operation, and in what shape.
//
// Two independent judgements feed the verdict: axis/unit metadata
// comparison (CompareAxes) and shape classification (ResolveShape).
// Check merges them into a single pass/fail answer with a stable
// reporting order: size, X boundaries, unit, distribution flag.
package compat

import (
	"errors"

	"gonum.org/v1/gonum/floats"

	"github.com/histops/histops/internal/workspace"
)

// Sentinel reasons a pair of workspaces cannot be combined.
var (
	// ErrSizeMismatch indicates the operand shapes fit no supported pattern.
	ErrSizeMismatch = errors.New("compat: workspace sizes incompatible")

	// ErrXBinMismatch indicates bin-boundary sequences differ.
	ErrXBinMismatch = errors.New("compat: X bin boundaries differ")

	// ErrUnitMismatch indicates X-axis units differ. Units are never
	// auto-converted; a mismatch is a hard failure.
	ErrUnitMismatch = errors.New("compat: X-axis units differ")

	// ErrDistributionMismatch indicates one operand holds densities and
	// the other raw counts.
	ErrDistributionMismatch = errors.New("compat: distribution flags differ")
)

// ShapeClass classifies how the (LHS, RHS) pair may be iterated.
type ShapeClass int

const (
	// Incompatible means no supported iteration pattern fits.
	Incompatible ShapeClass = iota

	// IdenticalSize means same histogram count and same per-index bin
	// counts; cells combine one-to-one.
	IdenticalSize

	// RowBroadcast means RHS has exactly one histogram whose bin count
	// matches every LHS histogram; that row is reused for every LHS row.
	RowBroadcast

	// ScalarBroadcast means RHS is a single histogram with a single bin;
	// that one value combines with every LHS cell.
	ScalarBroadcast

	// ColumnBroadcast means RHS has the same histogram count as LHS with
	// exactly one bin per histogram; RHS[i][0] is reused across row i.
	ColumnBroadcast
)

// String returns the class name for logs and errors.
func (c ShapeClass) String() string {
	switch c {
	case IdenticalSize:
		return "IdenticalSize"
	case RowBroadcast:
		return "RowBroadcast"
	case ScalarBroadcast:
		return "ScalarBroadcast"
	case ColumnBroadcast:
		return "ColumnBroadcast"
	default:
		return "Incompatible"
	}
}

// Broadcasts reports whether the class reuses RHS cells across LHS rows.
func (c ShapeClass) Broadcasts() bool {
	return c == RowBroadcast || c == ScalarBroadcast || c == ColumnBroadcast
}

// AxisComparison is the result of comparing axis/unit metadata.
type AxisComparison struct {
	XBinsMatch        bool
	UnitsMatch        bool
	DistributionMatch bool
}

// CompareAxes compares bin boundaries, units, and distribution flags.
//
// XBinsMatch is true only when both workspaces expose boundary axes and
// every boundary sequence is elementwise identical (exact equality;
// boundaries are expected to come from the same source grid). If either
// side lacks boundaries (point data), the check is satisfied vacuously.
// Whether a scalar or column operand is exempt from the comparison is a
// shape question, decided in Check once the class is resolved.
func CompareAxes(lhs, rhs *workspace.Workspace) AxisComparison {
	return AxisComparison{
		XBinsMatch:        xBinsMatch(lhs, rhs),
		UnitsMatch:        lhs.Unit() == rhs.Unit(),
		DistributionMatch: lhs.IsDistribution() == rhs.IsDistribution(),
	}
}

func xBinsMatch(lhs, rhs *workspace.Workspace) bool {
	if !lhs.HasBinEdges() || !rhs.HasBinEdges() {
		return true
	}
	// Row-broadcast operands compare their sole boundary row against
	// every LHS row; identical-size operands compare row by row.
	for i := 0; i < lhs.NumHistograms(); i++ {
		r := i
		if rhs.NumHistograms() == 1 {
			r = 0
		}
		if r >= rhs.NumHistograms() {
			return false
		}
		a, b := lhs.BinEdges(i), rhs.BinEdges(r)
		if len(a) != len(b) {
			return false
		}
		if !floats.Equal(a, b) {
			return false
		}
	}
	return true
}

func singleBin(w *workspace.Workspace) bool {
	for i := 0; i < w.NumHistograms(); i++ {
		if w.Histogram(i).NumBins() != 1 {
			return false
		}
	}
	return w.NumHistograms() > 0
}

// ResolveShape classifies the (lhs, rhs) pair.
//
// IdenticalSize is checked before any broadcast class, so a 1x1 pair is
// IdenticalSize rather than ScalarBroadcast. The broadcast classes are
// checked narrowest-match first: row, then scalar, then column.
func ResolveShape(lhs, rhs *workspace.Workspace) ShapeClass {
	if lhs.NumHistograms() == 0 || rhs.NumHistograms() == 0 {
		return Incompatible
	}

	if lhs.NumHistograms() == rhs.NumHistograms() {
		same := true
		for i := 0; i < lhs.NumHistograms(); i++ {
			if lhs.Histogram(i).NumBins() != rhs.Histogram(i).NumBins() {
				same = false
				break
			}
		}
		if same {
			return IdenticalSize
		}
	}

	if rhs.NumHistograms() == 1 {
		n := rhs.Histogram(0).NumBins()
		row := true
		for i := 0; i < lhs.NumHistograms(); i++ {
			if lhs.Histogram(i).NumBins() != n {
				row = false
				break
			}
		}
		if row {
			return RowBroadcast
		}
		if n == 1 {
			return ScalarBroadcast
		}
	}

	if rhs.NumHistograms() == lhs.NumHistograms() && singleBin(rhs) {
		return ColumnBroadcast
	}

	return Incompatible
}

// Check computes the full compatibility verdict. It returns nil when the
// pair may be combined, or the first failing reason in reporting order:
// size, X boundaries, unit, distribution. Size failure wins over metadata
// failures because it signals a user error at a different level.
func Check(lhs, rhs *workspace.Workspace) (ShapeClass, error) {
	class := ResolveShape(lhs, rhs)
	axes := CompareAxes(lhs, rhs)

	// A scalar or column operand's single value combines with cells on
	// arbitrary grids; its 2-element boundary carries nothing to compare.
	// Single-bin pairs resolving to IdenticalSize or RowBroadcast get no
	// such exemption: their grids must agree like any other.
	xBinsOK := axes.XBinsMatch ||
		class == ScalarBroadcast || class == ColumnBroadcast

	switch {
	case class == Incompatible:
		return Incompatible, ErrSizeMismatch
	case !xBinsOK:
		return class, ErrXBinMismatch
	case !axes.UnitsMatch:
		return class, ErrUnitMismatch
	case !axes.DistributionMatch:
		return class, ErrDistributionMismatch
	}
	return class, nil
}
