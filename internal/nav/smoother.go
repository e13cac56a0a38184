package nav

// PruneCollinear collapses redundant waypoints from a raw route without
// altering its geometry. An interior point is dropped when the unit
// direction from the last kept point equals the unit direction to the next
// raw point; every direction change, plus start and goal, is preserved.
// The accumulated cost of the raw route remains valid for the pruned one.
//
// Paths of length <= 2 pass through unchanged. The input is never mutated;
// the result is always a fresh slice and a subset of the input. Applying
// the function twice yields the same result as applying it once.
func PruneCollinear(path []Cell) []Cell {
	if len(path) <= 2 {
		return append([]Cell(nil), path...)
	}

	pruned := make([]Cell, 0, len(path))
	pruned = append(pruned, path[0])
	for i := 1; i < len(path)-1; i++ {
		last := pruned[len(pruned)-1]
		if stepDir(last, path[i]) == stepDir(path[i], path[i+1]) {
			continue
		}
		pruned = append(pruned, path[i])
	}
	return append(pruned, path[len(path)-1])
}

type direction struct {
	dr, dc int
}

// stepDir is the unit direction from a to b. Raw routes are 8-connected, so
// the segment from the last kept point to any candidate lies along one of
// the 8 move directions and sign normalisation recovers the exact unit
// vector.
func stepDir(a, b Cell) direction {
	return direction{dr: sign(b.Row - a.Row), dc: sign(b.Col - a.Col)}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
