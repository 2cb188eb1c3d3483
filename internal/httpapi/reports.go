package httpapi

import (
	"net/http"
	"os"
	"strings"

	"github.com/fsae-sim/laptimesim/internal/httputil"
	"github.com/fsae-sim/laptimesim/internal/report"
	"github.com/fsae-sim/laptimesim/internal/security"
	"github.com/fsae-sim/laptimesim/internal/units"
)

// handlePlotReport solves vehicle_id against track_mesh_id and returns a
// PNG trace of the requested channels (comma-separated "channels" query
// parameter, defaulting to Velocity) against Position.
func (s *Server) handlePlotReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	vehicleID := r.URL.Query().Get("vehicle_id")
	trackMeshID := r.URL.Query().Get("track_mesh_id")
	if vehicleID == "" || trackMeshID == "" {
		httputil.BadRequest(w, "vehicle_id and track_mesh_id query parameters are required")
		return
	}

	channelNames := strings.Split(r.URL.Query().Get("channels"), ",")
	if len(channelNames) == 1 && channelNames[0] == "" {
		channelNames = []string{"Velocity"}
	}

	velocityUnit := r.URL.Query().Get("velocity_unit")
	if velocityUnit != "" && !units.IsValidSpeedUnit(velocityUnit) {
		httputil.BadRequest(w, "unrecognized velocity_unit: "+velocityUnit)
		return
	}

	// save_path lets a caller ask the server to persist the PNG locally
	// instead of streaming it back, e.g. into a shared reports directory
	// mounted alongside the server. It must resolve within the temp
	// directory or the server's working directory.
	savePath := r.URL.Query().Get("save_path")
	if savePath != "" {
		if err := security.ValidateExportPath(savePath); err != nil {
			httputil.BadRequest(w, "invalid save_path: "+err.Error())
			return
		}
		if err := security.ValidateExportExtension(savePath, ".png"); err != nil {
			httputil.BadRequest(w, "invalid save_path: "+err.Error())
			return
		}
	}

	_, sol, err := s.runAndStoreSolution(vehicleID, trackMeshID)
	if err != nil {
		httputil.InternalServerError(w, "failed to solve: "+err.Error())
		return
	}

	outputPath := savePath
	if outputPath == "" {
		tmp, err := os.CreateTemp("", "lapsim-plot-*.png")
		if err != nil {
			httputil.InternalServerError(w, "failed to create temp file: "+err.Error())
			return
		}
		tmp.Close()
		defer os.Remove(tmp.Name())
		outputPath = tmp.Name()
	}

	traces := make([]report.Trace, len(channelNames))
	for i, name := range channelNames {
		traces[i] = report.Trace{Channel: name, Color: i, DisplayUnit: velocityUnit}
	}

	if err := report.PlotChannels(sol, traces, "Lap Trace", outputPath); err != nil {
		httputil.BadRequest(w, "failed to render plot: "+err.Error())
		return
	}

	if savePath != "" {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"path": savePath})
		return
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		httputil.InternalServerError(w, "failed to read rendered plot: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

// handleGGReport solves vehicle_id against track_mesh_id and returns a PNG
// GG diagram (lateral vs. longitudinal acceleration) for the lap.
func (s *Server) handleGGReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	vehicleID := r.URL.Query().Get("vehicle_id")
	trackMeshID := r.URL.Query().Get("track_mesh_id")
	if vehicleID == "" || trackMeshID == "" {
		httputil.BadRequest(w, "vehicle_id and track_mesh_id query parameters are required")
		return
	}

	savePath := r.URL.Query().Get("save_path")
	if savePath != "" {
		if err := security.ValidateExportPath(savePath); err != nil {
			httputil.BadRequest(w, "invalid save_path: "+err.Error())
			return
		}
		if err := security.ValidateExportExtension(savePath, ".png"); err != nil {
			httputil.BadRequest(w, "invalid save_path: "+err.Error())
			return
		}
	}

	_, sol, err := s.runAndStoreSolution(vehicleID, trackMeshID)
	if err != nil {
		httputil.InternalServerError(w, "failed to solve: "+err.Error())
		return
	}

	outputPath := savePath
	if outputPath == "" {
		tmp, err := os.CreateTemp("", "lapsim-gg-*.png")
		if err != nil {
			httputil.InternalServerError(w, "failed to create temp file: "+err.Error())
			return
		}
		tmp.Close()
		defer os.Remove(tmp.Name())
		outputPath = tmp.Name()
	}

	if err := report.PlotGG(sol, "GG Plot", outputPath); err != nil {
		httputil.BadRequest(w, "failed to render plot: "+err.Error())
		return
	}

	if savePath != "" {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"path": savePath})
		return
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		httputil.InternalServerError(w, "failed to read rendered plot: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

// handleDashboardReport solves vehicle_id against track_mesh_id and returns
// an interactive HTML dashboard over the requested channels.
func (s *Server) handleDashboardReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	vehicleID := r.URL.Query().Get("vehicle_id")
	trackMeshID := r.URL.Query().Get("track_mesh_id")
	if vehicleID == "" || trackMeshID == "" {
		httputil.BadRequest(w, "vehicle_id and track_mesh_id query parameters are required")
		return
	}

	channelNames := strings.Split(r.URL.Query().Get("channels"), ",")
	if len(channelNames) == 1 && channelNames[0] == "" {
		channelNames = []string{"Velocity", "LongitudinalAcceleration", "LateralAcceleration"}
	}

	_, sol, err := s.runAndStoreSolution(vehicleID, trackMeshID)
	if err != nil {
		httputil.InternalServerError(w, "failed to solve: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.Dashboard(sol, channelNames, "Lap Overview", w); err != nil {
		httputil.InternalServerError(w, "failed to render dashboard: "+err.Error())
		return
	}
}
