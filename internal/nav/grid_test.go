package nav

import (
	"errors"
	"testing"
)

func TestNewGridValidation(t *testing.T) {
	tests := []struct {
		name    string
		cells   [][]float64
		wantErr bool
	}{
		{"nil grid", nil, false},
		{"empty grid", [][]float64{}, false},
		{"single cell", [][]float64{{0}}, false},
		{"rectangular", [][]float64{{0, 1, 0}, {0, 0, 0.5}}, false},
		{"ragged rows", [][]float64{{0, 1}, {0}}, true},
		{"rows without columns", [][]float64{{}, {}}, true},
		{"first row shorter", [][]float64{{0}, {0, 1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGrid(tt.cells)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidGrid) {
					t.Fatalf("NewGrid() error = %v, want ErrInvalidGrid", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewGrid() error = %v", err)
			}
			if g.Rows() != len(tt.cells) {
				t.Errorf("Rows() = %d, want %d", g.Rows(), len(tt.cells))
			}
		})
	}
}

func TestGridBlockedThreshold(t *testing.T) {
	g, err := NewGrid([][]float64{{0, 0.25, 0.999, 1.0, 3.5}})
	if err != nil {
		t.Fatalf("NewGrid() error = %v", err)
	}

	tests := []struct {
		col     int
		blocked bool
	}{
		{0, false},
		{1, false}, // soft terrain cost, not an obstacle
		{2, false}, // just under the threshold stays passable
		{3, true},  // exactly 1.0 is impassable
		{4, true},
	}
	for _, tt := range tests {
		if got := g.Blocked(Cell{0, tt.col}); got != tt.blocked {
			t.Errorf("Blocked(0,%d) = %v, want %v (occupancy %v)", tt.col, got, tt.blocked, g.Occupancy(0, tt.col))
		}
	}
}

func TestGridInBounds(t *testing.T) {
	g, _ := NewGrid([][]float64{{0, 0}, {0, 0}, {0, 0}})

	tests := []struct {
		cell Cell
		want bool
	}{
		{Cell{0, 0}, true},
		{Cell{2, 1}, true},
		{Cell{-1, 0}, false},
		{Cell{0, -1}, false},
		{Cell{3, 0}, false},
		{Cell{0, 2}, false},
	}
	for _, tt := range tests {
		if got := g.InBounds(tt.cell); got != tt.want {
			t.Errorf("InBounds(%+v) = %v, want %v", tt.cell, got, tt.want)
		}
	}
}
