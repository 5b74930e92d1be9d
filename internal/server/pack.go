package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/piwi3910/guillocut/internal/engine"
	"github.com/piwi3910/guillocut/internal/export"
	"github.com/piwi3910/guillocut/internal/project"
)

// errItemsFile rejects requests that try to make the server read local files.
var errItemsFile = errors.New("items_file is not accepted over HTTP; send items inline")

// PackRequest is the body of /v1/pack and /v1/compare. It has the same shape
// as a JSON job file.
type PackRequest = project.Job

// CompareRow is one scenario of a /v1/compare response.
type CompareRow struct {
	Name         string  `json:"name"`
	Config       string  `json:"config"`
	BinsUsed     int     `json:"bins_used,omitempty"`
	Placed       int     `json:"placed,omitempty"`
	WastePercent float64 `json:"waste_percent,omitempty"`
	Error        string  `json:"error,omitempty"`
}

// CompareResponse lists every scenario and the index of the best one, or -1
// when none succeeded.
type CompareResponse struct {
	Scenarios []CompareRow `json:"scenarios"`
	Best      int          `json:"best"`
}

// resolve decodes and resolves a request, writing the error response itself
// when it fails.
func (s *Server) resolve(w http.ResponseWriter, r *http.Request) (project.Resolved, bool) {
	var req PackRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("malformed request: %w", err))
		return project.Resolved{}, false
	}
	if req.ItemsFile != "" {
		writeError(w, http.StatusBadRequest, errItemsFile)
		return project.Resolved{}, false
	}
	res, err := req.Resolve(s.defaults, s.stock)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return project.Resolved{}, false
	}
	return res, true
}

func (s *Server) makePackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := s.resolve(w, r)
		if !ok {
			return
		}

		result, err := engine.Pack(res.Input, res.Config)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, engine.ErrOversizedItem) || errors.Is(err, engine.ErrInvalidBin) || errors.Is(err, engine.ErrInvalidConfig) {
				status = http.StatusUnprocessableEntity
			}
			writeError(w, status, err)
			return
		}
		s.logger.Debug("packed", "items", len(res.Input.Items), "bins", len(result.Bins), "config", res.Config)
		writeJSON(w, http.StatusOK, export.NewDocument(result, res.MinOffcut))
	}
}

func (s *Server) makeCompareHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := s.resolve(w, r)
		if !ok {
			return
		}

		results := engine.CompareScenarios(res.Input, engine.BuildDefaultScenarios(res.Config))
		resp := CompareResponse{Scenarios: make([]CompareRow, len(results)), Best: engine.BestScenario(results)}
		for i, cr := range results {
			row := CompareRow{Name: cr.Scenario.Name, Config: cr.Scenario.Config.String()}
			if cr.Err != nil {
				row.Error = cr.Err.Error()
			} else {
				row.BinsUsed, row.Placed, row.WastePercent = cr.BinsUsed, cr.Placed, cr.WastePercent
			}
			resp.Scenarios[i] = row
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
