// Copyright 2025 HistOps Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package workspace provides the public API for histogram workspaces.
//
// A Workspace is an immutable, ordered collection of histogram rows —
// bin values Y with aligned variances E — sharing X-axis boundary, unit,
// and distribution metadata. Workspaces are assembled through Builder:
//
//	ws, err := workspace.NewBuilder().
//	    WithUnit(workspace.UnitTOF).
//	    AddHistogram([]float64{1, 2, 3}, []float64{1, 1, 1}).
//	    Build()
package workspace

import (
	"github.com/histops/histops/internal/workspace"
)

// Type aliases for public API

// Workspace is an immutable collection of histograms sharing axis, unit,
// and distribution metadata.
type Workspace = workspace.Workspace

// Histogram is one row of (value, variance) bins, with an optional
// invalid-bin mask.
type Histogram = workspace.Histogram

// Builder assembles and validates a Workspace.
type Builder = workspace.Builder

// Unit identifies an X-axis unit, compared by value only.
type Unit = workspace.Unit

// Common X-axis units.
const (
	UnitNone             Unit = workspace.UnitNone
	UnitTOF              Unit = workspace.UnitTOF
	UnitWavelength       Unit = workspace.UnitWavelength
	UnitDSpacing         Unit = workspace.UnitDSpacing
	UnitMomentumTransfer Unit = workspace.UnitMomentumTransfer
)

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return workspace.NewBuilder() }
