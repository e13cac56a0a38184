// Package nav implements risk-aware path planning on occupancy grids.
//
// The planner consumes a per-query Grid (terrain cost and obstacles) and an
// optional risk field, typically a RiskHeatmap snapshot, and produces a
// waypoint route. Grid and the planning functions are pure and safe for
// concurrent use; RiskHeatmap is the only shared mutable state and guards
// itself internally.
package nav

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidGrid reports malformed grid dimensions: ragged rows, or one
	// axis zero while the other is not.
	ErrInvalidGrid = errors.New("nav: invalid grid")

	// ErrOutOfBounds reports a start or goal cell outside the grid extent.
	ErrOutOfBounds = errors.New("nav: cell out of bounds")

	// ErrBlocked reports a start or goal cell that is impassable.
	ErrBlocked = errors.New("nav: endpoint blocked")
)

// blockedThreshold is the occupancy value at and above which a cell is
// impassable. Values in (0, 1) are soft terrain cost, not obstacles; the
// threshold is exact and must not be lowered.
const blockedThreshold = 1.0

// Cell addresses a grid position by row and column, 0-indexed.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Grid is a rectangular occupancy field for a single planning query.
//
// Value semantics per cell: 0 is free, values >= 1 are impassable, and
// fractional values in (0, 1) are extra traversal cost added to the base
// step cost. The grid does not copy the backing rows; the caller must not
// mutate them while a query is in flight.
type Grid struct {
	cells [][]float64
	rows  int
	cols  int
}

// NewGrid validates cells and wraps them in a Grid. Every row must have the
// same length, and a zero dimension on one axis with a non-zero other axis
// is rejected. An entirely empty grid is allowed; planning on it reports
// unreachable.
func NewGrid(cells [][]float64) (*Grid, error) {
	rows := len(cells)
	cols := 0
	if rows > 0 {
		cols = len(cells[0])
	}
	if rows > 0 && cols == 0 {
		return nil, fmt.Errorf("%w: %d rows with zero columns", ErrInvalidGrid, rows)
	}
	for r, row := range cells {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidGrid, r, len(row), cols)
		}
	}
	return &Grid{cells: cells, rows: rows, cols: cols}, nil
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// Occupancy returns the stored value at (r, c). The cell must be in bounds.
func (g *Grid) Occupancy(r, c int) float64 {
	return g.cells[r][c]
}

// InBounds reports whether cell lies within the grid extent.
func (g *Grid) InBounds(cell Cell) bool {
	return cell.Row >= 0 && cell.Row < g.rows && cell.Col >= 0 && cell.Col < g.cols
}

// Blocked reports whether the cell is impassable. The cell must be in bounds.
func (g *Grid) Blocked(cell Cell) bool {
	return g.cells[cell.Row][cell.Col] >= blockedThreshold
}
