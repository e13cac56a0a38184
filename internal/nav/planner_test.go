package nav

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func uniformGrid(rows, cols int) *Grid {
	cells := make([][]float64, rows)
	for r := range cells {
		cells[r] = make([]float64, cols)
	}
	g, err := NewGrid(cells)
	if err != nil {
		panic(err)
	}
	return g
}

func TestPlanPathStartEqualsGoal(t *testing.T) {
	g := uniformGrid(6, 6)
	res, err := PlanPath(g, PlanRequest{Start: Cell{3, 3}, Goal: Cell{3, 3}})
	if err != nil {
		t.Fatalf("PlanPath() error = %v", err)
	}
	if diff := cmp.Diff([]Cell{{3, 3}}, res.Path); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
	if res.Cost != 0 {
		t.Errorf("cost = %v, want 0", res.Cost)
	}
}

func TestPlanPathOctileOptimal(t *testing.T) {
	g := uniformGrid(5, 6)
	res, err := PlanPath(g, PlanRequest{Start: Cell{0, 0}, Goal: Cell{3, 4}})
	if err != nil {
		t.Fatalf("PlanPath() error = %v", err)
	}

	want := 3*math.Sqrt2 + 1 // three diagonal steps plus one orthogonal
	if math.Abs(res.Cost-want) > 1e-9 {
		t.Errorf("cost = %v, want %v", res.Cost, want)
	}
	if res.Path[0] != (Cell{0, 0}) || res.Path[len(res.Path)-1] != (Cell{3, 4}) {
		t.Errorf("path endpoints = %+v .. %+v", res.Path[0], res.Path[len(res.Path)-1])
	}
	// Every step must be 8-connected.
	for i := 1; i < len(res.Path); i++ {
		dr := res.Path[i].Row - res.Path[i-1].Row
		dc := res.Path[i].Col - res.Path[i-1].Col
		if dr < -1 || dr > 1 || dc < -1 || dc > 1 || (dr == 0 && dc == 0) {
			t.Errorf("step %d: %+v -> %+v is not a unit move", i, res.Path[i-1], res.Path[i])
		}
	}
}

func TestPlanPathRoutesThroughWallOpening(t *testing.T) {
	cells := make([][]float64, 10)
	for r := range cells {
		cells[r] = make([]float64, 10)
		cells[r][5] = 1.0
	}
	cells[4][5] = 0 // single opening
	g, err := NewGrid(cells)
	if err != nil {
		t.Fatalf("NewGrid() error = %v", err)
	}

	res, err := PlanPath(g, PlanRequest{Start: Cell{0, 0}, Goal: Cell{9, 9}})
	if err != nil {
		t.Fatalf("PlanPath() error = %v", err)
	}
	if res.Unreachable() {
		t.Fatal("route through the opening not found")
	}

	through := false
	for _, c := range res.Path {
		if c.Col == 5 {
			if c.Row != 4 {
				t.Fatalf("path crosses the wall at %+v, opening is at row 4", c)
			}
			through = true
		}
	}
	if !through {
		t.Error("path never crosses column 5")
	}

	unobstructed := 9 * math.Sqrt2
	if res.Cost <= unobstructed {
		t.Errorf("cost = %v, want above the unobstructed optimum %v", res.Cost, unobstructed)
	}
}

func TestPlanPathBlockedEndpoints(t *testing.T) {
	cells := [][]float64{
		{1.0, 0, 0},
		{0, 0, 0},
		{0, 0, 1.0},
	}
	g, _ := NewGrid(cells)

	tests := []struct {
		name  string
		start Cell
		goal  Cell
	}{
		{"blocked start", Cell{0, 0}, Cell{1, 1}},
		{"blocked goal", Cell{1, 1}, Cell{2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := PlanPath(g, PlanRequest{Start: tt.start, Goal: tt.goal})
			if !errors.Is(err, ErrBlocked) {
				t.Errorf("PlanPath() error = %v, want ErrBlocked", err)
			}
			if !res.Unreachable() {
				t.Errorf("result = %+v, want empty path with infinite cost", res)
			}
		})
	}
}

func TestPlanPathOutOfBounds(t *testing.T) {
	g := uniformGrid(3, 3)

	tests := []struct {
		name  string
		start Cell
		goal  Cell
	}{
		{"start out of bounds", Cell{-1, 0}, Cell{1, 1}},
		{"goal out of bounds", Cell{1, 1}, Cell{3, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := PlanPath(g, PlanRequest{Start: tt.start, Goal: tt.goal})
			if !errors.Is(err, ErrOutOfBounds) {
				t.Errorf("PlanPath() error = %v, want ErrOutOfBounds", err)
			}
			if !res.Unreachable() {
				t.Errorf("result = %+v, want empty path with infinite cost", res)
			}
		})
	}
}

func TestPlanPathDegenerateGrid(t *testing.T) {
	g, err := NewGrid([][]float64{})
	if err != nil {
		t.Fatalf("NewGrid() error = %v", err)
	}
	res, err := PlanPath(g, PlanRequest{Start: Cell{0, 0}, Goal: Cell{0, 0}})
	if err != nil {
		t.Fatalf("PlanPath() error = %v, degenerate grids are a normal failure", err)
	}
	if !res.Unreachable() {
		t.Errorf("result = %+v, want unreachable", res)
	}
}

func TestPlanPathEnclosedGoal(t *testing.T) {
	cells := make([][]float64, 5)
	for r := range cells {
		cells[r] = make([]float64, 5)
	}
	for _, d := range neighborOffsets {
		cells[2+d[0]][2+d[1]] = 1.0
	}
	g, _ := NewGrid(cells)

	res, err := PlanPath(g, PlanRequest{Start: Cell{0, 0}, Goal: Cell{2, 2}})
	if err != nil {
		t.Fatalf("PlanPath() error = %v", err)
	}
	if !res.Unreachable() {
		t.Errorf("result = %+v, want unreachable", res)
	}
	if len(res.Path) != 0 || !math.IsInf(res.Cost, 1) {
		t.Errorf("unreachable sentinel = (%d waypoints, cost %v), want (0, +Inf)", len(res.Path), res.Cost)
	}
}

func TestPlanPathRiskWeightSteersRoute(t *testing.T) {
	g := uniformGrid(5, 5)
	risk := make([][]float64, 5)
	for r := range risk {
		risk[r] = make([]float64, 5)
	}
	// Risky band across the direct corridor.
	for c := 1; c <= 3; c++ {
		risk[2][c] = 1.0
	}

	plan := func(weight float64) PlanResult {
		res, err := PlanPath(g, PlanRequest{
			Start:      Cell{2, 0},
			Goal:       Cell{2, 4},
			Risk:       risk,
			RiskWeight: weight,
		})
		if err != nil {
			t.Fatalf("PlanPath(weight=%v) error = %v", weight, err)
		}
		return res
	}

	low := plan(0.1)
	high := plan(10)

	if high.Cost < low.Cost {
		t.Errorf("cost decreased with higher risk weight: %v -> %v", low.Cost, high.Cost)
	}
	// A cheap low-risk detour through row 1 exists, so a high weight must
	// push the route off the risky band.
	for _, c := range high.Path {
		if risk[c.Row][c.Col] > 0 {
			t.Errorf("high-weight route still crosses risk at %+v", c)
		}
	}
	if diff := cmp.Diff(low.Path, high.Path); diff == "" {
		t.Error("route unchanged despite a lower-risk alternative")
	}
}

func TestPlanPathNilRiskIsZeroRisk(t *testing.T) {
	g := uniformGrid(4, 4)
	withNil, err := PlanPath(g, PlanRequest{Start: Cell{0, 0}, Goal: Cell{3, 3}, RiskWeight: 5})
	if err != nil {
		t.Fatalf("PlanPath() error = %v", err)
	}

	zero := make([][]float64, 4)
	for r := range zero {
		zero[r] = make([]float64, 4)
	}
	withZero, err := PlanPath(g, PlanRequest{Start: Cell{0, 0}, Goal: Cell{3, 3}, Risk: zero, RiskWeight: 5})
	if err != nil {
		t.Fatalf("PlanPath() error = %v", err)
	}

	if withNil.Cost != withZero.Cost {
		t.Errorf("nil risk cost %v != zero risk cost %v", withNil.Cost, withZero.Cost)
	}
}

func TestPlanPathRiskDimensionMismatch(t *testing.T) {
	g := uniformGrid(3, 3)
	_, err := PlanPath(g, PlanRequest{Start: Cell{0, 0}, Goal: Cell{2, 2}, Risk: [][]float64{{0, 0, 0}}})
	if !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("PlanPath() error = %v, want ErrInvalidGrid", err)
	}
}

func TestPlanPathSoftTerrainAddsCost(t *testing.T) {
	// A fractional occupancy cell on the only route adds its value to the cost.
	cells := [][]float64{{0, 0.5, 0}}
	g, _ := NewGrid(cells)

	res, err := PlanPath(g, PlanRequest{Start: Cell{0, 0}, Goal: Cell{0, 2}})
	if err != nil {
		t.Fatalf("PlanPath() error = %v", err)
	}
	want := 1 + 0.5 + 1
	if math.Abs(res.Cost-want) > 1e-9 {
		t.Errorf("cost = %v, want %v", res.Cost, want)
	}
}

func TestOctile(t *testing.T) {
	tests := []struct {
		a, b Cell
		want float64
	}{
		{Cell{0, 0}, Cell{0, 0}, 0},
		{Cell{0, 0}, Cell{0, 5}, 5},
		{Cell{0, 0}, Cell{4, 4}, 4 * math.Sqrt2},
		{Cell{0, 0}, Cell{3, 4}, 3*math.Sqrt2 + 1},
		{Cell{5, 5}, Cell{2, 1}, 3*math.Sqrt2 + 1},
	}
	for _, tt := range tests {
		if got := octile(tt.a, tt.b); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("octile(%+v, %+v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
