// Copyright 2025 HistOps Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package binop provides the public API for workspace binary arithmetic.
//
// The four elementwise operations combine two workspaces cell by cell
// with first-order variance propagation, after a compatibility check of
// shapes, X boundaries, units, and distribution flags:
//
//	out, err := binop.Add(lhs, rhs)
//	if errors.Is(err, binop.ErrUnitMismatch) { ... }
//
// Beyond identical shapes, a right operand may be a single row
// (row broadcast), a single value (scalar broadcast), or one value per
// row (column broadcast). See Engine for logging, parallelism, and
// divide-policy options.
package binop

import (
	"github.com/histops/histops/internal/compat"
	"github.com/histops/histops/internal/engine"
	"github.com/histops/histops/internal/kernel"
	"github.com/histops/histops/internal/workspace"
)

// Type aliases for public API

// Op tags one of the four elementwise operations.
type Op = kernel.Op

// Operation tags.
const (
	Add      Op = kernel.Add
	Subtract Op = kernel.Subtract
	Multiply Op = kernel.Multiply
	Divide   Op = kernel.Divide
)

// Engine executes binary operations; safe for concurrent use.
type Engine = engine.Engine

// Option configures an Engine.
type Option = engine.Option

// DividePolicy selects zero-divisor handling.
type DividePolicy = engine.DividePolicy

// Divide policies.
const (
	PermissiveDivide DividePolicy = engine.PermissiveDivide
	StrictDivide     DividePolicy = engine.StrictDivide
)

// IncompatibilityError reports why two workspaces cannot be combined.
type IncompatibilityError = engine.IncompatibilityError

// ShapeClass classifies how an operand pair is iterated.
type ShapeClass = compat.ShapeClass

// Shape classes.
const (
	Incompatible    ShapeClass = compat.Incompatible
	IdenticalSize   ShapeClass = compat.IdenticalSize
	RowBroadcast    ShapeClass = compat.RowBroadcast
	ScalarBroadcast ShapeClass = compat.ScalarBroadcast
	ColumnBroadcast ShapeClass = compat.ColumnBroadcast
)

// Sentinel errors, matchable with errors.Is through IncompatibilityError.
var (
	ErrSizeMismatch         = compat.ErrSizeMismatch
	ErrXBinMismatch         = compat.ErrXBinMismatch
	ErrUnitMismatch         = compat.ErrUnitMismatch
	ErrDistributionMismatch = compat.ErrDistributionMismatch
	ErrDivisionByZero       = engine.ErrDivisionByZero
)

// Engine options.
var (
	WithLogger       = engine.WithLogger
	WithParallelism  = engine.WithParallelism
	WithDividePolicy = engine.WithDividePolicy
)

// New returns an Engine with default options.
func New(opts ...Option) *Engine { return engine.New(opts...) }

// ResolveShape classifies the (lhs, rhs) pair without executing anything.
func ResolveShape(lhs, rhs *workspace.Workspace) ShapeClass {
	return compat.ResolveShape(lhs, rhs)
}

// Execute runs op on a default Engine.
func Execute(lhs *workspace.Workspace, op Op, rhs *workspace.Workspace) (*workspace.Workspace, error) {
	return engine.Execute(lhs, op, rhs)
}
