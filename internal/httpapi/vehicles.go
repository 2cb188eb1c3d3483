package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/fsae-sim/laptimesim/internal/httputil"
	"github.com/fsae-sim/laptimesim/internal/vehicle"
)

// vehicleCreateRequest wraps a vehicle document with the display name it is
// stored under; the document itself is kept as raw JSON so internal/vehicle
// owns all parsing.
type vehicleCreateRequest struct {
	Name     string          `json:"name"`
	Document json.RawMessage `json:"document"`
}

func (s *Server) handleVehicles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createVehicle(w, r)
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) createVehicle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.BadRequest(w, "failed to read request body")
		return
	}
	var req vehicleCreateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httputil.BadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.Name == "" {
		httputil.BadRequest(w, "name is required")
		return
	}

	// Validate the document parses into a usable model before persisting it.
	if _, err := vehicle.Load(req.Document, s.settings.GetGravity(), s.settings.GetAirDensity()); err != nil {
		httputil.BadRequest(w, "invalid vehicle document: "+err.Error())
		return
	}

	id, err := s.db.InsertVehicle(req.Name, req.Document)
	if err != nil {
		httputil.InternalServerError(w, "failed to store vehicle: "+err.Error())
		return
	}

	httputil.Created(w, map[string]string{"id": id})
}

func (s *Server) handleVehicleByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	id, err := pathID("/api/vehicles/", r.URL.Path)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	name, doc, err := s.db.GetVehicle(id)
	if err != nil {
		httputil.NotFound(w, "vehicle not found: "+err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"id": id, "name": name, "document": json.RawMessage(doc),
	})
}

// loadVehicleModel fetches a stored vehicle document and builds its Model.
func (s *Server) loadVehicleModel(id string) (vehicle.Model, error) {
	_, doc, err := s.db.GetVehicle(id)
	if err != nil {
		return nil, err
	}
	return vehicle.Load(doc, s.settings.GetGravity(), s.settings.GetAirDensity())
}
