package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/fsae-sim/laptimesim/internal/httputil"
	"github.com/fsae-sim/laptimesim/internal/solution"
	"github.com/fsae-sim/laptimesim/internal/solver"
)

type solutionCreateRequest struct {
	VehicleID   string `json:"vehicle_id"`
	TrackMeshID string `json:"track_mesh_id"`
}

func (s *Server) handleSolutions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createSolution(w, r)
	case http.MethodGet:
		s.listSolutions(w, r)
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) createSolution(w http.ResponseWriter, r *http.Request) {
	var req solutionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.VehicleID == "" || req.TrackMeshID == "" {
		httputil.BadRequest(w, "vehicle_id and track_mesh_id are required")
		return
	}

	id, sol, err := s.runAndStoreSolution(req.VehicleID, req.TrackMeshID)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}

	httputil.Created(w, map[string]any{
		"id": id, "total_time": sol.TotalTime(), "total_length": sol.TotalLength(),
	})
}

// runAndStoreSolution loads the vehicle and track mesh, runs the
// quasi-transient solver, and persists the result. Shared by the solutions
// endpoint and the report handlers.
func (s *Server) runAndStoreSolution(vehicleID, trackMeshID string) (string, *solution.Solution, error) {
	model, err := s.loadVehicleModel(vehicleID)
	if err != nil {
		return "", nil, err
	}
	tm, err := s.loadTrackMesh(trackMeshID)
	if err != nil {
		return "", nil, err
	}

	sol, err := solver.RunTransient(model, tm, s.settings)
	if err != nil {
		return "", nil, err
	}

	solJSON, err := json.Marshal(sol)
	if err != nil {
		return "", nil, err
	}

	id, err := s.db.InsertSolution(vehicleID, trackMeshID, sol.TotalTime(), sol.TotalLength(), solJSON)
	if err != nil {
		return "", nil, err
	}
	return id, sol, nil
}

func (s *Server) listSolutions(w http.ResponseWriter, r *http.Request) {
	vehicleID := r.URL.Query().Get("vehicle_id")
	if vehicleID == "" {
		httputil.BadRequest(w, "vehicle_id query parameter is required")
		return
	}

	summaries, err := s.db.ListSolutions(vehicleID, queryLimit(r, 20))
	if err != nil {
		httputil.InternalServerError(w, "failed to list solutions: "+err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleSolutionByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	id, err := pathID("/api/solutions/", r.URL.Path)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	_ = id
	// Individual solution retrieval by id is not exposed beyond the
	// vehicle-scoped list; solution payloads are large, so callers fetch
	// the list summary and regenerate the full Solution via POST when the
	// per-node detail is actually needed.
	httputil.NotFound(w, "solution detail lookup is not supported; use GET /api/solutions?vehicle_id=")
}
