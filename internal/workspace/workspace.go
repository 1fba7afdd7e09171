// Package workspace defines the histogram workspace data model: ordered
// rows of (value, variance) bins sharing X-axis boundary and unit metadata.
//
// A Workspace is immutable once built. Binary operations never mutate
// their operands; they assemble a fresh output Workspace through Builder.
package workspace

import (
	"fmt"

	"github.com/google/uuid"
)

// Unit identifies the X-axis unit of a workspace. Units are opaque to the
// arithmetic engine and compared by value only; there is no conversion.
type Unit string

// Common X-axis units. Any other string is equally valid.
const (
	UnitNone             Unit = ""
	UnitTOF              Unit = "TOF"
	UnitWavelength       Unit = "Wavelength"
	UnitDSpacing         Unit = "dSpacing"
	UnitMomentumTransfer Unit = "MomentumTransfer"
)

// Histogram is one row of a workspace: bin values Y and aligned variances E.
// E stores variance (the second moment), not standard deviation, so that
// propagation under independence stays additive.
//
// Mask, when non-nil, marks invalid bins. A masked bin combines to a
// masked NaN output bin rather than erroring, keeping row lengths intact.
type Histogram struct {
	Y    []float64
	E    []float64
	Mask []bool
}

// NumBins returns the number of bins in the histogram.
func (h Histogram) NumBins() int { return len(h.Y) }

// Masked reports whether bin j is marked invalid.
func (h Histogram) Masked(j int) bool {
	return h.Mask != nil && j < len(h.Mask) && h.Mask[j]
}

// Workspace is an ordered collection of histograms sharing unit and
// distribution metadata, with optional per-histogram bin boundaries.
type Workspace struct {
	id           string
	hists        []Histogram
	binEdges     [][]float64 // nil for point data; else one row per histogram
	unit         Unit
	distribution bool
}

// ID returns the workspace's opaque identifier, assigned at build time.
// It exists for log correlation only and plays no role in compatibility.
func (w *Workspace) ID() string { return w.id }

// NumHistograms returns the number of histogram rows.
func (w *Workspace) NumHistograms() int { return len(w.hists) }

// Histogram returns a read-only view of row i.
func (w *Workspace) Histogram(i int) Histogram { return w.hists[i] }

// HasBinEdges reports whether the workspace carries bin-boundary axes.
// Point data (no boundaries) skips X-boundary compatibility checks.
func (w *Workspace) HasBinEdges() bool { return w.binEdges != nil }

// BinEdges returns the boundary sequence for row i, or nil for point data.
func (w *Workspace) BinEdges(i int) []float64 {
	if w.binEdges == nil {
		return nil
	}
	return w.binEdges[i]
}

// Unit returns the X-axis unit identifier.
func (w *Workspace) Unit() Unit { return w.unit }

// IsDistribution reports whether Y values are densities (per unit X)
// rather than raw counts.
func (w *Workspace) IsDistribution() bool { return w.distribution }

// TotalBins returns the summed bin count over all histograms.
func (w *Workspace) TotalBins() int {
	n := 0
	for _, h := range w.hists {
		n += len(h.Y)
	}
	return n
}

// Builder assembles a Workspace, validating the row invariants at Build.
//
// Example:
//
//	ws, err := workspace.NewBuilder().
//	    WithUnit(workspace.UnitTOF).
//	    AddHistogram([]float64{1, 2, 3}, []float64{1, 1, 1}).
//	    WithBinEdges([][]float64{{0, 1, 2, 3}}).
//	    Build()
type Builder struct {
	hists        []Histogram
	binEdges     [][]float64
	unit         Unit
	distribution bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// MetadataFrom copies unit, distribution flag, and bin boundaries from src.
// Used when an operation's output inherits its left operand's metadata.
func (b *Builder) MetadataFrom(src *Workspace) *Builder {
	b.unit = src.unit
	b.distribution = src.distribution
	if src.binEdges != nil {
		edges := make([][]float64, len(src.binEdges))
		for i, e := range src.binEdges {
			edges[i] = append([]float64(nil), e...)
		}
		b.binEdges = edges
	} else {
		b.binEdges = nil
	}
	return b
}

// WithUnit sets the X-axis unit.
func (b *Builder) WithUnit(u Unit) *Builder {
	b.unit = u
	return b
}

// WithDistribution sets the distribution/counts flag.
func (b *Builder) WithDistribution(d bool) *Builder {
	b.distribution = d
	return b
}

// WithBinEdges sets per-histogram bin boundaries. Pass nil for point data.
func (b *Builder) WithBinEdges(edges [][]float64) *Builder {
	b.binEdges = edges
	return b
}

// AddHistogram appends a row with the given values and variances.
func (b *Builder) AddHistogram(y, e []float64) *Builder {
	b.hists = append(b.hists, Histogram{Y: y, E: e})
	return b
}

// AddMaskedHistogram appends a row carrying a per-bin invalid mask.
func (b *Builder) AddMaskedHistogram(y, e []float64, mask []bool) *Builder {
	b.hists = append(b.hists, Histogram{Y: y, E: e, Mask: mask})
	return b
}

// Build validates invariants and returns the immutable Workspace.
//
// Invariants enforced:
//   - every row has len(Y) == len(E)
//   - a non-nil mask has len(Mask) == len(Y)
//   - bin boundaries, when present, have one row per histogram with
//     len(edges[i]) == len(Y[i])+1
func (b *Builder) Build() (*Workspace, error) {
	for i, h := range b.hists {
		if len(h.Y) != len(h.E) {
			return nil, fmt.Errorf("workspace: histogram %d: len(Y)=%d, len(E)=%d, must match", i, len(h.Y), len(h.E))
		}
		if h.Mask != nil && len(h.Mask) != len(h.Y) {
			return nil, fmt.Errorf("workspace: histogram %d: len(Mask)=%d, len(Y)=%d, must match", i, len(h.Mask), len(h.Y))
		}
	}
	if b.binEdges != nil {
		if len(b.binEdges) != len(b.hists) {
			return nil, fmt.Errorf("workspace: %d bin-edge rows for %d histograms", len(b.binEdges), len(b.hists))
		}
		for i, edges := range b.binEdges {
			if len(edges) != len(b.hists[i].Y)+1 {
				return nil, fmt.Errorf("workspace: histogram %d: %d boundaries for %d bins, want bins+1", i, len(edges), len(b.hists[i].Y))
			}
		}
	}
	return &Workspace{
		id:           uuid.NewString(),
		hists:        b.hists,
		binEdges:     b.binEdges,
		unit:         b.unit,
		distribution: b.distribution,
	}, nil
}

// MustBuild is Build that panics on invariant violations. Test helper.
func (b *Builder) MustBuild() *Workspace {
	w, err := b.Build()
	if err != nil {
		panic(err)
	}
	return w
}
