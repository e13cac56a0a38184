package nav

import (
	"fmt"
	"math"
)

// PlanRequest describes one planning query. Risk may be nil for a uniformly
// zero risk field; if present it must match the grid dimensions. RiskWeight
// and DiagonalPenalty must be non-negative.
type PlanRequest struct {
	Start Cell
	Goal  Cell

	// Risk is an optional hazard field, typically a RiskHeatmap snapshot.
	Risk [][]float64

	// RiskWeight scales the risk contribution to edge cost.
	RiskWeight float64

	// DiagonalPenalty is extra cost on diagonal steps, discouraging zig-zags.
	DiagonalPenalty float64
}

// PlanResult is the outcome of a planning query: the cell sequence from
// start to goal inclusive and its accumulated cost. An unreachable goal is
// a normal outcome, reported as an empty path with infinite cost.
type PlanResult struct {
	Path []Cell
	Cost float64
}

// Unreachable reports whether the query found no route.
func (r PlanResult) Unreachable() bool {
	return len(r.Path) == 0 && math.IsInf(r.Cost, 1)
}

func unreachableResult() PlanResult {
	return PlanResult{Cost: math.Inf(1)}
}

// neighborOffsets enumerates the 8-connected moves, orthogonal first.
var neighborOffsets = [8][2]int{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
	{-1, -1}, {-1, 1}, {1, -1}, {1, 1},
}

// octile is the octile distance between two cells: sqrt(2)*min(dr,dc) +
// (max(dr,dc) - min(dr,dc)). It never overestimates the true remaining cost
// for this move set and is consistent, so the first pop of the goal is
// optimal.
func octile(a, b Cell) float64 {
	dr := a.Row - b.Row
	if dr < 0 {
		dr = -dr
	}
	dc := a.Col - b.Col
	if dc < 0 {
		dc = -dc
	}
	lo, hi := dr, dc
	if lo > hi {
		lo, hi = hi, lo
	}
	return math.Sqrt2*float64(lo) + float64(hi-lo)
}

// PlanPath computes a minimum-cost route on the 8-connected grid using
// best-first search. Edge cost into a neighbor is the base step cost
// (1 orthogonal, sqrt(2) diagonal) plus the neighbor's terrain cost, the
// weighted neighbor risk, and the diagonal penalty where applicable.
//
// The call is a pure function of its inputs. Out-of-bounds or blocked
// endpoints return an error alongside an empty, infinite-cost result;
// an exhausted frontier returns the same result shape with a nil error.
func PlanPath(g *Grid, req PlanRequest) (PlanResult, error) {
	if g == nil || g.rows == 0 || g.cols == 0 {
		return unreachableResult(), nil
	}
	if !g.InBounds(req.Start) {
		return unreachableResult(), fmt.Errorf("%w: start %+v on %dx%d grid", ErrOutOfBounds, req.Start, g.rows, g.cols)
	}
	if !g.InBounds(req.Goal) {
		return unreachableResult(), fmt.Errorf("%w: goal %+v on %dx%d grid", ErrOutOfBounds, req.Goal, g.rows, g.cols)
	}
	if req.Risk != nil {
		if len(req.Risk) != g.rows {
			return unreachableResult(), fmt.Errorf("%w: risk field has %d rows, grid has %d", ErrInvalidGrid, len(req.Risk), g.rows)
		}
		for r, row := range req.Risk {
			if len(row) != g.cols {
				return unreachableResult(), fmt.Errorf("%w: risk row %d has %d columns, grid has %d", ErrInvalidGrid, r, len(row), g.cols)
			}
		}
	}
	if g.Blocked(req.Start) {
		return unreachableResult(), fmt.Errorf("%w: start %+v", ErrBlocked, req.Start)
	}
	if g.Blocked(req.Goal) {
		return unreachableResult(), fmt.Errorf("%w: goal %+v", ErrBlocked, req.Goal)
	}

	gScore := make([][]float64, g.rows)
	parent := make([][]Cell, g.rows)
	for r := range gScore {
		gScore[r] = make([]float64, g.cols)
		parent[r] = make([]Cell, g.cols)
		for c := range gScore[r] {
			gScore[r][c] = math.Inf(1)
			parent[r][c] = Cell{-1, -1}
		}
	}

	gScore[req.Start.Row][req.Start.Col] = 0
	open := &frontier{}
	open.push(frontierNode{cell: req.Start, g: 0, f: octile(req.Start, req.Goal)})

	for open.Len() > 0 {
		cur := open.pop()
		if cur.cell == req.Goal {
			break
		}
		// Stale entry: a cheaper route to this cell was pushed after this one.
		if cur.g > gScore[cur.cell.Row][cur.cell.Col] {
			continue
		}

		for _, d := range neighborOffsets {
			nr, nc := cur.cell.Row+d[0], cur.cell.Col+d[1]
			if nr < 0 || nr >= g.rows || nc < 0 || nc >= g.cols {
				continue
			}
			terrain := g.cells[nr][nc]
			if terrain >= blockedThreshold {
				continue
			}

			diagonal := d[0] != 0 && d[1] != 0
			step := 1.0
			if diagonal {
				step = math.Sqrt2
			}
			cost := step + math.Max(0, terrain)
			if req.Risk != nil {
				cost += req.RiskWeight * math.Max(0, req.Risk[nr][nc])
			}
			if diagonal {
				cost += req.DiagonalPenalty
			}

			ng := cur.g + cost
			if ng < gScore[nr][nc] {
				gScore[nr][nc] = ng
				parent[nr][nc] = cur.cell
				next := Cell{Row: nr, Col: nc}
				open.push(frontierNode{cell: next, g: ng, f: ng + octile(next, req.Goal)})
			}
		}
	}

	goalCost := gScore[req.Goal.Row][req.Goal.Col]
	if math.IsInf(goalCost, 1) {
		return unreachableResult(), nil
	}

	var path []Cell
	for cur := req.Goal; ; cur = parent[cur.Row][cur.Col] {
		path = append(path, cur)
		if cur == req.Start {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return PlanResult{Path: path, Cost: goalCost}, nil
}
