// Package projections exposes projection endpoints over HTTP.
package projections

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kilianp07/crewplan/core/model"
	coremon "github.com/kilianp07/crewplan/core/monitoring"
	"github.com/kilianp07/crewplan/core/plan"
	"github.com/kilianp07/crewplan/core/projection"
	"github.com/kilianp07/crewplan/core/scheduler"
)

// MaxBodyBytes caps the size of a posted plan or scenario request.
const MaxBodyBytes = 1 << 20

// ScenarioRequest is the body accepted by the scenario handler.
type ScenarioRequest struct {
	Plan  plan.Plan `json:"plan"`
	Crews []int     `json:"crews"`
}

// ScenarioResponse lists one projection per requested crew count. Best is the
// index of the earliest finish, or -1 when every scenario stalled.
type ScenarioResponse struct {
	Projections []model.Projection `json:"projections"`
	Best        int                `json:"best"`
}

// NewProjectHandler returns an HTTP handler running a projection for the plan
// posted as JSON via POST /api/projections. Invalid plans answer 400 and
// stalled schedules answer 422 with the stalled record as body.
// Requests must include an Authorization header with "Bearer <token>" when token is non-empty.
func NewProjectHandler(p *projection.Projector, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		pl, err := plan.Decode(http.MaxBytesReader(w, r.Body, MaxBodyBytes), "json")
		if err != nil {
			http.Error(w, err.Error(), decodeStatus(err))
			return
		}
		rec, err := p.Project(r.Context(), *pl)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, rec)
		case errors.Is(err, plan.ErrInvalid):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, scheduler.ErrStalled):
			writeJSON(w, http.StatusUnprocessableEntity, rec)
		default:
			coremon.CaptureException(err, map[string]string{"module": "api", "plan": pl.Name})
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// NewScenarioHandler returns an HTTP handler comparing crew counts for a plan
// via POST /api/scenarios.
func NewScenarioHandler(p *projection.Projector, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req ScenarioRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			http.Error(w, err.Error(), decodeStatus(err))
			return
		}
		recs, err := p.Scenarios(r.Context(), req.Plan, req.Crews)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, ScenarioResponse{Projections: recs, Best: projection.Best(recs)})
		case errors.Is(err, plan.ErrInvalid), errors.Is(err, projection.ErrNoScenarios):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			coremon.CaptureException(err, map[string]string{"module": "api", "plan": req.Plan.Name})
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

func decodeStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func authorized(r *http.Request, token string) bool {
	if token == "" {
		return true
	}
	return r.Header.Get("Authorization") == "Bearer "+token
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
