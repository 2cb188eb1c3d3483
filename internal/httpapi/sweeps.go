package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/fsae-sim/laptimesim/internal/httputil"
	"github.com/fsae-sim/laptimesim/internal/paramsweep"
	"github.com/fsae-sim/laptimesim/internal/solver"
	"github.com/fsae-sim/laptimesim/internal/vehicle"
)

type sweepCreateRequest struct {
	VehicleID   string  `json:"vehicle_id"`
	TrackMeshID string  `json:"track_mesh_id"`
	Parameter   string  `json:"parameter"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	N           int     `json:"n"`
}

// baseVehicleParams loads a stored vehicle's document and resolves it to
// the flat VehicleParams a paramsweep.Parameter setter mutates.
func (s *Server) baseVehicleParams(vehicleID string) (vehicle.VehicleParams, error) {
	_, doc, err := s.db.GetVehicle(vehicleID)
	if err != nil {
		return vehicle.VehicleParams{}, err
	}
	parsed, err := vehicle.ParseDocument(doc)
	if err != nil {
		return vehicle.VehicleParams{}, err
	}
	return parsed.ToVehicleParams()
}

func (s *Server) handleSweeps(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	s.createSweep(w, r)
}

func (s *Server) handleSweepByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	id, err := pathID("/api/sweeps/", r.URL.Path)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	parameterName, resultsJSON, err := s.db.GetSweepRun(id)
	if err != nil {
		httputil.NotFound(w, "sweep run not found: "+err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"id": id, "parameter": parameterName, "results": json.RawMessage(resultsJSON),
	})
}

func (s *Server) createSweep(w http.ResponseWriter, r *http.Request) {
	var req sweepCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.VehicleID == "" || req.TrackMeshID == "" || req.Parameter == "" {
		httputil.BadRequest(w, "vehicle_id, track_mesh_id and parameter are required")
		return
	}
	if req.N < 1 {
		req.N = 2
	}

	baseParams, err := s.baseVehicleParams(req.VehicleID)
	if err != nil {
		httputil.BadRequest(w, "failed to load vehicle: "+err.Error())
		return
	}
	tm, err := s.loadTrackMesh(req.TrackMeshID)
	if err != nil {
		httputil.BadRequest(w, "failed to load track mesh: "+err.Error())
		return
	}

	// points is illustrative, matching internal/competition.Points: the
	// real Formula-Student scoring tables are an external collaborator's
	// concern (out of scope here), so a lap's raw pace stands in for them.
	points := func(params vehicle.VehicleParams) (float64, error) {
		model, err := vehicle.NewModel("point_mass", params, s.settings.GetGravity(), s.settings.GetAirDensity())
		if err != nil {
			return 0, err
		}
		sol, err := solver.RunTransient(model, tm, s.settings)
		if err != nil {
			return 0, err
		}
		if sol.TotalTime() <= 0 {
			return 0, nil
		}
		return 1 / sol.TotalTime(), nil
	}

	results, err := paramsweep.Sweep1D(baseParams, req.Parameter, req.Start, req.End, req.N, points)
	if err != nil {
		httputil.InternalServerError(w, "sweep failed: "+err.Error())
		return
	}

	resultsJSON, err := json.Marshal(results)
	if err != nil {
		httputil.InternalServerError(w, "failed to marshal results: "+err.Error())
		return
	}

	id, err := s.db.InsertSweepRun(req.VehicleID, req.Parameter, req.Start, req.End, req.N, resultsJSON)
	if err != nil {
		httputil.InternalServerError(w, "failed to store sweep: "+err.Error())
		return
	}

	httputil.Created(w, map[string]any{
		"id": id, "results": results, "summary": paramsweep.Summarize(results),
	})
}
