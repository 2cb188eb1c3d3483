package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fsae-sim/laptimesim/internal/httputil"
)

func TestRunSweepDecodesStoredResults(t *testing.T) {
	client := httputil.NewMockHTTPClient()
	client.AddJSONResponse(201, sweepResponse{
		ID: "sweep-1",
		Results: []sweepResult{
			{Value: 220, Points: 0.05},
			{Value: 250, Points: 0.048},
		},
	})

	resp, err := runSweep(client, "http://localhost:8080", "vehicle-1", "mesh-1", "Curb Mass", 220, 250, 2)
	if err != nil {
		t.Fatalf("runSweep: %v", err)
	}
	if resp.ID != "sweep-1" {
		t.Errorf("ID = %q, want sweep-1", resp.ID)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("len(Results) = %d, want 2", len(resp.Results))
	}
	if resp.Results[0].Value != 220 || resp.Results[0].Points != 0.05 {
		t.Errorf("Results[0] = %+v, want {220 0.05}", resp.Results[0])
	}

	if got := client.RequestCount(); got != 1 {
		t.Fatalf("RequestCount = %d, want 1", got)
	}
	req := client.GetRequest(0)
	if req.URL.String() != "http://localhost:8080/api/sweeps" {
		t.Errorf("request URL = %q, want .../api/sweeps", req.URL.String())
	}
}

func TestRunSweepPropagatesNonCreatedStatus(t *testing.T) {
	client := httputil.NewMockHTTPClient()
	client.AddResponse(400, `{"error":"vehicle_id, track_mesh_id and parameter are required"}`)

	if _, err := runSweep(client, "http://localhost:8080", "vehicle-1", "mesh-1", "Curb Mass", 0, 0, 2); err == nil {
		t.Fatal("expected error for non-201 status")
	}
}

func TestRunSweepPropagatesTransportError(t *testing.T) {
	client := httputil.NewMockHTTPClient()
	client.DefaultError = errTransport

	if _, err := runSweep(client, "http://localhost:8080", "vehicle-1", "mesh-1", "Curb Mass", 0, 0, 2); err == nil {
		t.Fatal("expected error when the transport fails")
	}
}

func TestWriteCSVWritesHeaderAndRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	results := []sweepResult{{Value: 220, Points: 0.05}, {Value: 250, Points: 0.048}}
	if err := writeCSV(path, "Curb Mass", results); err != nil {
		t.Fatalf("writeCSV: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3 (header + 2 rows)", len(lines))
	}
	if lines[0] != "Curb Mass,points" {
		t.Errorf("header = %q, want %q", lines[0], "Curb Mass,points")
	}
	if lines[1] != "220.000000,0.050000" {
		t.Errorf("row 1 = %q, want %q", lines[1], "220.000000,0.050000")
	}
}

type transportError struct{}

func (transportError) Error() string { return "simulated transport failure" }

var errTransport = transportError{}
