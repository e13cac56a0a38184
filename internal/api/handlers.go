package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/inzora-robotics/groundlink/internal/analysis"
	"github.com/inzora-robotics/groundlink/internal/control"
	"github.com/inzora-robotics/groundlink/internal/httputil"
	"github.com/inzora-robotics/groundlink/internal/monitoring"
	"github.com/inzora-robotics/groundlink/internal/nav"
)

const maxRequestBody = 4 << 20 // 4 MiB, bounds grid payloads

type controlRequest struct {
	Cmd string `json:"cmd"`
}

func (s *Server) sendCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req controlRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid JSON body")
		return
	}

	id, err := s.relay.Send(req.Cmd)
	if err != nil {
		var ctrlErr *control.ControllerError
		switch {
		case errors.Is(err, control.ErrUnknownCommand):
			httputil.WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
				"ok": false, "error": "unknown_command",
			})
		case errors.As(err, &ctrlErr):
			httputil.WriteJSON(w, http.StatusBadGateway, map[string]interface{}{
				"ok": false, "error": "controller_rejected", "status": ctrlErr.Status,
			})
		default:
			httputil.WriteJSON(w, http.StatusBadGateway, map[string]interface{}{
				"ok": false, "error": "controller_unreachable",
			})
		}
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{"ok": true, "command_id": id})
}

type planRequest struct {
	Grid            [][]float64 `json:"grid"`
	Start           nav.Cell    `json:"start"`
	Goal            nav.Cell    `json:"goal"`
	UseRisk         bool        `json:"use_risk"`
	RiskWeight      *float64    `json:"risk_weight,omitempty"`
	DiagonalPenalty *float64    `json:"diagonal_penalty,omitempty"`
}

type planResponse struct {
	Waypoints   []nav.Cell `json:"waypoints"`
	Cost        *float64   `json:"cost"` // null when no path exists
	Unreachable bool       `json:"unreachable"`
	Reason      string     `json:"reason,omitempty"`
}

func (s *Server) planPath(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req planRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid JSON body")
		return
	}

	grid, err := nav.NewGrid(req.Grid)
	if err != nil {
		httputil.BadRequest(w, "invalid grid: "+err.Error())
		return
	}

	plan := nav.PlanRequest{
		Start:           req.Start,
		Goal:            req.Goal,
		RiskWeight:      s.riskWeight,
		DiagonalPenalty: s.diagonalPenalty,
	}
	if req.RiskWeight != nil {
		plan.RiskWeight = *req.RiskWeight
	}
	if req.DiagonalPenalty != nil {
		plan.DiagonalPenalty = *req.DiagonalPenalty
	}
	if req.UseRisk && s.heatmap != nil {
		rows, cols := s.heatmap.Dims()
		if rows == grid.Rows() && cols == grid.Cols() {
			plan.Risk = s.heatmap.Snapshot()
		}
	}

	result, err := nav.PlanPath(grid, plan)
	if err != nil {
		switch {
		case errors.Is(err, nav.ErrOutOfBounds):
			httputil.BadRequest(w, err.Error())
		case errors.Is(err, nav.ErrBlocked):
			httputil.WriteJSONOK(w, planResponse{
				Waypoints: []nav.Cell{}, Unreachable: true, Reason: "blocked",
			})
		default:
			httputil.BadRequest(w, err.Error())
		}
		return
	}

	if result.Unreachable() {
		httputil.WriteJSONOK(w, planResponse{
			Waypoints: []nav.Cell{}, Unreachable: true, Reason: "unreachable",
		})
		return
	}

	cost := result.Cost
	httputil.WriteJSONOK(w, planResponse{
		Waypoints: nav.PruneCollinear(result.Path),
		Cost:      &cost,
	})
}

type riskSnapshot struct {
	Rows   int         `json:"rows"`
	Cols   int         `json:"cols"`
	Values [][]float64 `json:"values"`
}

func (s *Server) showRisk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	rows, cols := s.heatmap.Dims()
	httputil.WriteJSONOK(w, riskSnapshot{
		Rows: rows, Cols: cols, Values: s.heatmap.Snapshot(),
	})
}

type reinforceRequest struct {
	Cells  []nav.Cell `json:"cells"`
	Amount float64    `json:"amount"`
}

func (s *Server) reinforceRisk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req reinforceRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid JSON body")
		return
	}
	if len(req.Cells) == 0 {
		httputil.BadRequest(w, "no cells given")
		return
	}
	if req.Amount <= 0 || math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		httputil.BadRequest(w, "amount must be a positive finite number")
		return
	}

	s.heatmap.Reinforce(req.Cells, req.Amount)
	if s.store != nil {
		cells, _ := json.Marshal(req.Cells)
		if err := s.store.RecordHazardEvent(string(cells), req.Amount); err != nil {
			monitoring.Logf("failed to record hazard event: %v", err)
		}
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"ok": true, "cells": len(req.Cells), "amount": req.Amount,
	})
}

type etaRequest struct {
	Speeds    []float64 `json:"speeds"`
	Remaining float64   `json:"remaining_m"`
}

func (s *Server) estimateETA(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req etaRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid JSON body")
		return
	}
	if req.Remaining < 0 || math.IsNaN(req.Remaining) {
		httputil.BadRequest(w, "remaining_m must be non-negative")
		return
	}

	pred := analysis.NewETAPredictor(len(req.Speeds) + 1)
	for _, v := range req.Speeds {
		pred.UpdateSpeed(v)
	}
	eta := pred.ETASeconds(req.Remaining)
	resp := map[string]interface{}{"eta_seconds": eta}
	if eta > 0 {
		resp["speed_mps"] = req.Remaining / eta
	}
	httputil.WriteJSONOK(w, resp)
}
