package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/fsae-sim/laptimesim/internal/competition"
	"github.com/fsae-sim/laptimesim/internal/httputil"
	"github.com/fsae-sim/laptimesim/internal/mesh"
	"github.com/fsae-sim/laptimesim/internal/solution"
	"github.com/fsae-sim/laptimesim/internal/solver"
	"github.com/fsae-sim/laptimesim/internal/vehicle"
)

type competitionCreateRequest struct {
	VehicleID        string  `json:"vehicle_id"`
	AutocrossMeshID  string  `json:"autocross_track_mesh_id"`
	SkidpadRadius    float64 `json:"skidpad_radius"`
	AccelerationLen  float64 `json:"acceleration_length"`
	TrackResolution  float64 `json:"track_resolution"`
}

func (s *Server) handleCompetitions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.runCompetition(w, r)
	case http.MethodGet:
		s.listCompetitions(w, r)
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) runCompetition(w http.ResponseWriter, r *http.Request) {
	var req competitionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.VehicleID == "" || req.AutocrossMeshID == "" {
		httputil.BadRequest(w, "vehicle_id and autocross_track_mesh_id are required")
		return
	}
	resolution := req.TrackResolution
	if resolution <= 0 {
		resolution = s.settings.GetResolution()
	}
	skidpadRadius := req.SkidpadRadius
	if skidpadRadius <= 0 {
		skidpadRadius = 9.0 // metres — a typical Formula-Student skidpad circle radius
	}
	accelerationLength := req.AccelerationLen
	if accelerationLength <= 0 {
		accelerationLength = 75.0 // metres — a typical Formula-Student acceleration event length
	}

	model, err := s.loadVehicleModel(req.VehicleID)
	if err != nil {
		httputil.BadRequest(w, "failed to load vehicle: "+err.Error())
		return
	}
	autocross, err := s.loadTrackMesh(req.AutocrossMeshID)
	if err != nil {
		httputil.BadRequest(w, "failed to load autocross track mesh: "+err.Error())
		return
	}

	tracks := competition.Tracks{
		Acceleration: competition.StraightTrack(accelerationLength, resolution),
		Skidpad:      competition.SkidpadTrack(skidpadRadius, resolution),
		Autocross:    autocross,
	}

	solve := func(m vehicle.Model, tm *mesh.TrackMesh) (*solution.Solution, error) {
		return solver.RunTransient(m, tm, s.settings)
	}

	results, err := competition.Run(r.Context(), model, tracks, s.settings.GetEnduranceMinLength(), solve)
	if err != nil {
		httputil.InternalServerError(w, "competition run failed: "+err.Error())
		return
	}

	accelID, err := s.storeEventSolution(req.VehicleID, req.AutocrossMeshID, results.Acceleration)
	if err != nil {
		httputil.InternalServerError(w, "failed to store acceleration solution: "+err.Error())
		return
	}
	skidID, err := s.storeEventSolution(req.VehicleID, req.AutocrossMeshID, results.Skidpad)
	if err != nil {
		httputil.InternalServerError(w, "failed to store skidpad solution: "+err.Error())
		return
	}
	autoID, err := s.storeEventSolution(req.VehicleID, req.AutocrossMeshID, results.Autocross)
	if err != nil {
		httputil.InternalServerError(w, "failed to store autocross solution: "+err.Error())
		return
	}
	endID, err := s.storeEventSolution(req.VehicleID, req.AutocrossMeshID, results.Endurance)
	if err != nil {
		httputil.InternalServerError(w, "failed to store endurance solution: "+err.Error())
		return
	}

	totalPoints := competition.Points(results)
	runID, err := s.db.InsertCompetitionRun(req.VehicleID, accelID, skidID, autoID, endID, totalPoints)
	if err != nil {
		httputil.InternalServerError(w, "failed to store competition run: "+err.Error())
		return
	}

	httputil.Created(w, map[string]any{
		"id":                  runID,
		"total_points":        totalPoints,
		"acceleration_time":   results.Acceleration.TotalTime(),
		"skidpad_time":        competition.SkidpadTime(results.Skidpad),
		"autocross_time":      results.Autocross.TotalTime(),
		"endurance_time":      results.Endurance.TotalTime(),
	})
}

func (s *Server) storeEventSolution(vehicleID, trackMeshID string, sol *solution.Solution) (string, error) {
	solJSON, err := json.Marshal(sol)
	if err != nil {
		return "", err
	}
	return s.db.InsertSolution(vehicleID, trackMeshID, sol.TotalTime(), sol.TotalLength(), solJSON)
}

func (s *Server) listCompetitions(w http.ResponseWriter, r *http.Request) {
	vehicleID := r.URL.Query().Get("vehicle_id")
	if vehicleID == "" {
		httputil.BadRequest(w, "vehicle_id query parameter is required")
		return
	}

	runs, err := s.db.ListCompetitionRuns(vehicleID, queryLimit(r, 20))
	if err != nil {
		httputil.InternalServerError(w, "failed to list competition runs: "+err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, runs)
}
