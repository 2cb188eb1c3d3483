package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/fsae-sim/laptimesim/internal/httputil"
	"github.com/fsae-sim/laptimesim/internal/mesh"
)

// trackMeshCreateRequest ingests a TrackData bundle plus the resolution to
// discretize it at; mesh.Generate does the actual work.
type trackMeshCreateRequest struct {
	Name       string         `json:"name"`
	Data       mesh.TrackData `json:"data"`
	Resolution float64        `json:"resolution"`
}

func (s *Server) handleTrackMeshes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createTrackMesh(w, r)
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) createTrackMesh(w http.ResponseWriter, r *http.Request) {
	var req trackMeshCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.Resolution <= 0 {
		httputil.BadRequest(w, "resolution must be positive")
		return
	}
	req.Data.Name = req.Name

	tm, err := mesh.Generate(&req.Data, req.Resolution)
	if err != nil {
		httputil.BadRequest(w, "failed to generate mesh: "+err.Error())
		return
	}

	meshJSON, err := json.Marshal(tm)
	if err != nil {
		httputil.InternalServerError(w, "failed to marshal mesh: "+err.Error())
		return
	}

	id, err := s.db.InsertTrackMesh(req.Name, tm.Configuration.String(), meshJSON)
	if err != nil {
		httputil.InternalServerError(w, "failed to store mesh: "+err.Error())
		return
	}

	httputil.Created(w, map[string]any{
		"id": id, "node_count": len(tm.Nodes), "total_length": tm.TotalLength(),
	})
}

func (s *Server) handleTrackMeshByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	id, err := pathID("/api/track-meshes/", r.URL.Path)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	name, configuration, meshJSON, err := s.db.GetTrackMesh(id)
	if err != nil {
		httputil.NotFound(w, "track mesh not found: "+err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"id": id, "name": name, "configuration": configuration, "mesh": json.RawMessage(meshJSON),
	})
}

// loadTrackMesh fetches and decodes a stored TrackMesh.
func (s *Server) loadTrackMesh(id string) (*mesh.TrackMesh, error) {
	_, _, meshJSON, err := s.db.GetTrackMesh(id)
	if err != nil {
		return nil, err
	}
	var tm mesh.TrackMesh
	if err := json.Unmarshal(meshJSON, &tm); err != nil {
		return nil, err
	}
	return &tm, nil
}
