package compat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/histops/histops/internal/workspace"
)

// build constructs a workspace with the given bin counts per histogram,
// filling Y/E with placeholder data. Edges are generated when withEdges.
func build(t *testing.T, binCounts []int, withEdges bool, unit workspace.Unit, dist bool) *workspace.Workspace {
	t.Helper()
	b := workspace.NewBuilder().WithUnit(unit).WithDistribution(dist)
	var edges [][]float64
	for _, n := range binCounts {
		y := make([]float64, n)
		e := make([]float64, n)
		for j := range y {
			y[j] = float64(j + 1)
			e[j] = 1
		}
		b.AddHistogram(y, e)
		if withEdges {
			row := make([]float64, n+1)
			for j := range row {
				row[j] = float64(j)
			}
			edges = append(edges, row)
		}
	}
	if withEdges {
		b.WithBinEdges(edges)
	}
	ws, err := b.Build()
	require.NoError(t, err)
	return ws
}

func TestResolveShape(t *testing.T) {
	tests := []struct {
		name     string
		lhs, rhs []int
		want     ShapeClass
	}{
		{"identical 2x3", []int{3, 3}, []int{3, 3}, IdenticalSize},
		{"identical ragged", []int{3, 5}, []int{3, 5}, IdenticalSize},
		{"row broadcast", []int{3, 3}, []int{3}, RowBroadcast},
		{"degenerate 1x1 pair is identical, not broadcast", []int{1}, []int{1}, IdenticalSize},
		{"single row pair is identical, not broadcast", []int{3}, []int{3}, IdenticalSize},
		{"scalar broadcast", []int{3, 3}, []int{1}, ScalarBroadcast},
		{"column broadcast", []int{3, 4}, []int{1, 1}, ColumnBroadcast},
		{"histogram count mismatch", []int{3, 3}, []int{3, 3, 3}, Incompatible},
		{"bin count mismatch", []int{3, 3}, []int{4, 4}, Incompatible},
		{"row length mismatch", []int{3, 3}, []int{4}, Incompatible},
		{"ragged lhs blocks row broadcast", []int{3, 4}, []int{3}, Incompatible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lhs := build(t, tt.lhs, false, workspace.UnitTOF, false)
			rhs := build(t, tt.rhs, false, workspace.UnitTOF, false)
			assert.Equal(t, tt.want, ResolveShape(lhs, rhs))
		})
	}
}

func TestResolveShape_Empty(t *testing.T) {
	lhs := build(t, []int{3}, false, workspace.UnitTOF, false)
	empty := build(t, nil, false, workspace.UnitTOF, false)
	assert.Equal(t, Incompatible, ResolveShape(lhs, empty))
	assert.Equal(t, Incompatible, ResolveShape(empty, lhs))
}

func TestCompareAxes(t *testing.T) {
	base := build(t, []int{3}, true, workspace.UnitTOF, false)

	t.Run("all match", func(t *testing.T) {
		other := build(t, []int{3}, true, workspace.UnitTOF, false)
		cmp := CompareAxes(base, other)
		assert.True(t, cmp.XBinsMatch)
		assert.True(t, cmp.UnitsMatch)
		assert.True(t, cmp.DistributionMatch)
	})

	t.Run("unit differs", func(t *testing.T) {
		other := build(t, []int{3}, true, workspace.UnitDSpacing, false)
		assert.False(t, CompareAxes(base, other).UnitsMatch)
	})

	t.Run("distribution differs", func(t *testing.T) {
		other := build(t, []int{3}, true, workspace.UnitTOF, true)
		assert.False(t, CompareAxes(base, other).DistributionMatch)
	})

	t.Run("boundaries differ", func(t *testing.T) {
		other, err := workspace.NewBuilder().
			WithUnit(workspace.UnitTOF).
			AddHistogram([]float64{1, 2, 3}, []float64{1, 1, 1}).
			WithBinEdges([][]float64{{0, 1, 2, 3.5}}).
			Build()
		require.NoError(t, err)
		assert.False(t, CompareAxes(base, other).XBinsMatch)
	})

	t.Run("point data skips boundary check", func(t *testing.T) {
		other := build(t, []int{3}, false, workspace.UnitTOF, false)
		assert.True(t, CompareAxes(base, other).XBinsMatch)
		assert.True(t, CompareAxes(other, base).XBinsMatch)
	})

	t.Run("single-bin operand compares strictly", func(t *testing.T) {
		// Any exemption for scalar/column operands is Check's call,
		// made per shape class; the raw comparison stays exact.
		scalar, err := workspace.NewBuilder().
			WithUnit(workspace.UnitTOF).
			AddHistogram([]float64{2}, []float64{0}).
			WithBinEdges([][]float64{{100, 200}}).
			Build()
		require.NoError(t, err)
		assert.False(t, CompareAxes(base, scalar).XBinsMatch)
	})

	t.Run("row broadcast compares sole row against every lhs row", func(t *testing.T) {
		lhs := build(t, []int{3, 3}, true, workspace.UnitTOF, false)
		row := build(t, []int{3}, true, workspace.UnitTOF, false)
		assert.True(t, CompareAxes(lhs, row).XBinsMatch)
	})
}

func TestCheck_ReportingOrder(t *testing.T) {
	// Size failure must win even when metadata also disagrees.
	lhs := build(t, []int{3, 3}, true, workspace.UnitTOF, false)
	rhs := build(t, []int{4, 4, 4}, true, workspace.UnitDSpacing, true)

	_, err := Check(lhs, rhs)
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func TestCheck(t *testing.T) {
	lhs := build(t, []int{3, 3}, true, workspace.UnitTOF, false)

	t.Run("ok", func(t *testing.T) {
		rhs := build(t, []int{3, 3}, true, workspace.UnitTOF, false)
		class, err := Check(lhs, rhs)
		require.NoError(t, err)
		assert.Equal(t, IdenticalSize, class)
	})

	t.Run("unit mismatch", func(t *testing.T) {
		rhs := build(t, []int{3, 3}, true, workspace.UnitWavelength, false)
		_, err := Check(lhs, rhs)
		assert.ErrorIs(t, err, ErrUnitMismatch)
	})

	t.Run("distribution mismatch", func(t *testing.T) {
		rhs := build(t, []int{3, 3}, true, workspace.UnitTOF, true)
		_, err := Check(lhs, rhs)
		assert.ErrorIs(t, err, ErrDistributionMismatch)
	})

	t.Run("scalar operand exempt from boundary check", func(t *testing.T) {
		scalar, err := workspace.NewBuilder().
			WithUnit(workspace.UnitTOF).
			AddHistogram([]float64{2}, []float64{0}).
			WithBinEdges([][]float64{{100, 200}}).
			Build()
		require.NoError(t, err)
		class, cerr := Check(lhs, scalar)
		require.NoError(t, cerr)
		assert.Equal(t, ScalarBroadcast, class)
	})

	t.Run("column operand exempt from boundary check", func(t *testing.T) {
		col, err := workspace.NewBuilder().
			WithUnit(workspace.UnitTOF).
			AddHistogram([]float64{2}, []float64{0}).
			AddHistogram([]float64{3}, []float64{0}).
			WithBinEdges([][]float64{{100, 200}, {200, 300}}).
			Build()
		require.NoError(t, err)
		class, cerr := Check(lhs, col)
		require.NoError(t, cerr)
		assert.Equal(t, ColumnBroadcast, class)
	})

	t.Run("single-bin identical-size pair still checks boundaries", func(t *testing.T) {
		// An N×1 vs N×1 pair is IdenticalSize, not a scalar/column
		// operand, so disagreeing grids must fail.
		a, err := workspace.NewBuilder().
			WithUnit(workspace.UnitTOF).
			AddHistogram([]float64{1}, []float64{1}).
			AddHistogram([]float64{2}, []float64{1}).
			WithBinEdges([][]float64{{0, 1}, {1, 2}}).
			Build()
		require.NoError(t, err)
		b, err := workspace.NewBuilder().
			WithUnit(workspace.UnitTOF).
			AddHistogram([]float64{3}, []float64{1}).
			AddHistogram([]float64{4}, []float64{1}).
			WithBinEdges([][]float64{{100, 200}, {200, 300}}).
			Build()
		require.NoError(t, err)

		class, cerr := Check(a, b)
		assert.Equal(t, IdenticalSize, class)
		assert.ErrorIs(t, cerr, ErrXBinMismatch)
	})

	t.Run("xbin mismatch reported before unit mismatch", func(t *testing.T) {
		rhs, err := workspace.NewBuilder().
			WithUnit(workspace.UnitWavelength).
			AddHistogram([]float64{1, 2, 3}, []float64{1, 1, 1}).
			AddHistogram([]float64{1, 2, 3}, []float64{1, 1, 1}).
			WithBinEdges([][]float64{{9, 10, 11, 12}, {9, 10, 11, 12}}).
			Build()
		require.NoError(t, err)
		_, cerr := Check(lhs, rhs)
		assert.ErrorIs(t, cerr, ErrXBinMismatch)
	})
}

func TestShapeClassString(t *testing.T) {
	assert.Equal(t, "IdenticalSize", IdenticalSize.String())
	assert.Equal(t, "RowBroadcast", RowBroadcast.String())
	assert.Equal(t, "ScalarBroadcast", ScalarBroadcast.String())
	assert.Equal(t, "ColumnBroadcast", ColumnBroadcast.String())
	assert.Equal(t, "Incompatible", Incompatible.String())
	assert.True(t, RowBroadcast.Broadcasts())
	assert.False(t, IdenticalSize.Broadcasts())
}
