// Command plancheck runs the path planner over a grid file and prints the
// waypoints, for checking occupancy maps offline before a deployment.
//
// The input is a JSON object: {"grid": [[...]], "start": {"row":r,"col":c},
// "goal": {"row":r,"col":c}} with optional "risk", "risk_weight" and
// "diagonal_penalty" keys.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/inzora-robotics/groundlink/internal/nav"
)

type planFile struct {
	Grid            [][]float64 `json:"grid"`
	Start           nav.Cell    `json:"start"`
	Goal            nav.Cell    `json:"goal"`
	Risk            [][]float64 `json:"risk,omitempty"`
	RiskWeight      float64     `json:"risk_weight"`
	DiagonalPenalty float64     `json:"diagonal_penalty"`
}

func main() {
	input := flag.String("input", "", "Grid JSON file (required)")
	prune := flag.Bool("prune", true, "Prune collinear waypoints")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "usage: plancheck -input grid.json [-prune=false]")
		os.Exit(2)
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read input: %v\n", err)
		os.Exit(1)
	}

	var pf planFile
	if err := json.Unmarshal(data, &pf); err != nil {
		fmt.Fprintf(os.Stderr, "parse input: %v\n", err)
		os.Exit(1)
	}

	grid, err := nav.NewGrid(pf.Grid)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid grid: %v\n", err)
		os.Exit(1)
	}

	result, err := nav.PlanPath(grid, nav.PlanRequest{
		Start:           pf.Start,
		Goal:            pf.Goal,
		Risk:            pf.Risk,
		RiskWeight:      pf.RiskWeight,
		DiagonalPenalty: pf.DiagonalPenalty,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "plan failed: %v\n", err)
		os.Exit(1)
	}
	if result.Unreachable() {
		fmt.Println("no path: goal is unreachable from start")
		os.Exit(1)
	}

	path := result.Path
	if *prune {
		path = nav.PruneCollinear(path)
	}

	fmt.Printf("cost: %.4f\n", result.Cost)
	fmt.Printf("waypoints (%d):\n", len(path))
	for _, c := range path {
		fmt.Printf("  (%d, %d)\n", c.Row, c.Col)
	}
}
