// Package engine orchestrates workspace binary operations: it gates the
// operation on the compatibility verdict, selects the iteration pattern
// for the resolved shape class, and drives the elementwise kernel across
// every histogram row.
//
// Operations are whole-operation atomic: an incompatible pair (or, under
// the strict divide policy, a zero divisor) produces no output at all.
package engine

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/histops/histops/internal/compat"
	"github.com/histops/histops/internal/kernel"
	"github.com/histops/histops/internal/parallel"
	"github.com/histops/histops/internal/workspace"
)

// ErrDivisionByZero aborts a divide under the strict policy when any
// unmasked RHS value is exactly zero. Raised before any cell is computed.
var ErrDivisionByZero = errors.New("engine: division by zero")

// DividePolicy selects how a zero divisor is handled.
type DividePolicy int

const (
	// PermissiveDivide propagates NaN for the affected cell, marks it
	// masked in the output, and continues. The default.
	PermissiveDivide DividePolicy = iota

	// StrictDivide pre-scans the RHS and aborts the whole operation with
	// ErrDivisionByZero if any unmasked divisor is exactly zero.
	StrictDivide
)

// IncompatibilityError reports why two workspaces cannot be combined.
// Reason is one of the compat sentinel errors; errors.Is sees through it.
type IncompatibilityError struct {
	Op     kernel.Op
	Reason error
}

func (e *IncompatibilityError) Error() string {
	return fmt.Sprintf("engine: cannot %s workspaces: %v", e.Op, e.Reason)
}

func (e *IncompatibilityError) Unwrap() error { return e.Reason }

// Engine executes binary operations between workspaces. The zero-config
// engine from New is safe for concurrent use; Execute never mutates its
// operands.
type Engine struct {
	log    *zap.Logger
	par    parallel.Config
	divide DividePolicy
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger attaches a structured logger. Verdicts and shape classes are
// logged at debug level; per-cell work is never logged.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithParallelism sets the row-parallel execution config.
func WithParallelism(cfg parallel.Config) Option {
	return func(e *Engine) { e.par = cfg }
}

// WithDividePolicy selects zero-divisor handling.
func WithDividePolicy(p DividePolicy) Option {
	return func(e *Engine) { e.divide = p }
}

// New returns an Engine with defaults: no-op logger, CPU-sized
// parallelism, permissive divide.
func New(opts ...Option) *Engine {
	e := &Engine{
		log:    zap.NewNop(),
		par:    parallel.Default(),
		divide: PermissiveDivide,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute combines lhs and rhs elementwise under op, propagating
// variances, and returns a new workspace carrying lhs's axis, unit, and
// distribution metadata. Operands are borrowed read-only.
//
// On an incompatible pair Execute returns *IncompatibilityError wrapping
// the first failing reason (size, then X boundaries, then unit, then
// distribution flag) and produces nothing.
func (e *Engine) Execute(lhs *workspace.Workspace, op kernel.Op, rhs *workspace.Workspace) (*workspace.Workspace, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("engine: unknown operation %d", int(op))
	}

	class, err := compat.Check(lhs, rhs)
	if err != nil {
		e.log.Debug("operands incompatible",
			zap.String("op", op.String()),
			zap.String("lhs", lhs.ID()),
			zap.String("rhs", rhs.ID()),
			zap.Error(err))
		return nil, &IncompatibilityError{Op: op, Reason: err}
	}

	e.log.Debug("executing binary operation",
		zap.String("op", op.String()),
		zap.String("shape", class.String()),
		zap.String("lhs", lhs.ID()),
		zap.String("rhs", rhs.ID()),
		zap.Int("histograms", lhs.NumHistograms()),
		zap.Int("bins", lhs.TotalBins()))

	if op == kernel.Divide && e.divide == StrictDivide {
		if hasZeroDivisor(rhs) {
			return nil, ErrDivisionByZero
		}
	}

	rows := make([]workspace.Histogram, lhs.NumHistograms())
	parallel.ForRows(lhs.NumHistograms(), func(i int) {
		rows[i] = e.combineRow(lhs, op, rhs, class, i)
	}, e.par)

	b := workspace.NewBuilder().MetadataFrom(lhs)
	for _, h := range rows {
		b.AddMaskedHistogram(h.Y, h.E, h.Mask)
	}
	return b.Build()
}

// combineRow computes output row i. Each call owns its output slices
// exclusively, so rows may run on separate goroutines.
func (e *Engine) combineRow(lhs *workspace.Workspace, op kernel.Op, rhs *workspace.Workspace, class compat.ShapeClass, i int) workspace.Histogram {
	lh := lhs.Histogram(i)
	n := lh.NumBins()

	y := make([]float64, n)
	ev := make([]float64, n)
	var mask []bool

	for j := 0; j < n; j++ {
		rh, rj := rhsCell(rhs, class, i, j)

		if lh.Masked(j) || rh.Masked(rj) {
			y[j] = math.NaN()
			ev[j] = math.NaN()
			mask = setMask(mask, n, j)
			continue
		}

		v, ve := kernel.Apply(op, lh.Y[j], lh.E[j], rh.Y[rj], rh.E[rj])
		y[j] = v
		ev[j] = ve
		if op == kernel.Divide && rh.Y[rj] == 0 {
			mask = setMask(mask, n, j)
		}
	}

	return workspace.Histogram{Y: y, E: ev, Mask: mask}
}

// rhsCell maps output cell (i, j) to the RHS histogram and bin that feed
// it under the resolved shape class.
func rhsCell(rhs *workspace.Workspace, class compat.ShapeClass, i, j int) (workspace.Histogram, int) {
	switch class {
	case compat.RowBroadcast:
		return rhs.Histogram(0), j
	case compat.ScalarBroadcast:
		return rhs.Histogram(0), 0
	case compat.ColumnBroadcast:
		return rhs.Histogram(i), 0
	default:
		return rhs.Histogram(i), j
	}
}

func setMask(mask []bool, n, j int) []bool {
	if mask == nil {
		mask = make([]bool, n)
	}
	mask[j] = true
	return mask
}

// hasZeroDivisor reports whether any unmasked RHS value is exactly zero.
// Masked cells never reach the kernel, so a masked zero does not abort.
func hasZeroDivisor(rhs *workspace.Workspace) bool {
	for i := 0; i < rhs.NumHistograms(); i++ {
		h := rhs.Histogram(i)
		for j, v := range h.Y {
			if v == 0 && !h.Masked(j) {
				return true
			}
		}
	}
	return false
}

// Execute runs op on a default Engine. Convenience for callers that need
// no logging or tuning.
func Execute(lhs *workspace.Workspace, op kernel.Op, rhs *workspace.Workspace) (*workspace.Workspace, error) {
	return New().Execute(lhs, op, rhs)
}
