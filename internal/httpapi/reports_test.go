package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPlotReportReturnsPNG(t *testing.T) {
	s := testServer(t)
	mux := s.ServeMux()

	vehicleID := createTestVehicle(t, mux)
	meshID := createTestTrackMesh(t, mux)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/plot.png?vehicle_id="+vehicleID+"&track_mesh_id="+meshID, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("plot report: status %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected non-empty PNG body")
	}
}

func TestPlotReportRejectsUnknownVelocityUnit(t *testing.T) {
	s := testServer(t)
	mux := s.ServeMux()

	vehicleID := createTestVehicle(t, mux)
	meshID := createTestTrackMesh(t, mux)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/plot.png?vehicle_id="+vehicleID+"&track_mesh_id="+meshID+"&velocity_unit=furlongs", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for unrecognized velocity_unit", rec.Code)
	}
}

func TestGGReportReturnsPNG(t *testing.T) {
	s := testServer(t)
	mux := s.ServeMux()

	vehicleID := createTestVehicle(t, mux)
	meshID := createTestTrackMesh(t, mux)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/gg.png?vehicle_id="+vehicleID+"&track_mesh_id="+meshID, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("gg report: status %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected non-empty PNG body")
	}
}

func TestDashboardReportReturnsHTML(t *testing.T) {
	s := testServer(t)
	mux := s.ServeMux()

	vehicleID := createTestVehicle(t, mux)
	meshID := createTestTrackMesh(t, mux)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/dashboard.html?vehicle_id="+vehicleID+"&track_mesh_id="+meshID, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard report: status %d, body %s", rec.Code, rec.Body.String())
	}
	if rec.Body.Len() == 0 {
		t.Error("expected non-empty HTML body")
	}
}

func TestPlotReportRequiresVehicleAndTrackMesh(t *testing.T) {
	s := testServer(t)
	mux := s.ServeMux()

	req := httptest.NewRequest(http.MethodGet, "/api/reports/plot.png", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 when vehicle_id/track_mesh_id are missing", rec.Code)
	}
}
