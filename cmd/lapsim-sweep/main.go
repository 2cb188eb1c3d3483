// Command lapsim-sweep drives a running lapsimd server through a
// one-dimensional parameter sweep and writes the resulting points to CSV.
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/fsae-sim/laptimesim/internal/httputil"
	"github.com/fsae-sim/laptimesim/internal/security"
)

type sweepResult struct {
	Value  float64 `json:"Value"`
	Points float64 `json:"Points"`
}

type sweepResponse struct {
	ID      string        `json:"id"`
	Results []sweepResult `json:"results"`
}

// runSweep POSTs a sweep request to serverURL and decodes the stored
// {value -> points} series. client is an httputil.HTTPClient so the request/
// response handling can run against httputil.MockHTTPClient in tests without
// a live server.
func runSweep(client httputil.HTTPClient, serverURL, vehicleID, trackMeshID, parameter string, start, end float64, n int) (sweepResponse, error) {
	body, err := json.Marshal(map[string]any{
		"vehicle_id":    vehicleID,
		"track_mesh_id": trackMeshID,
		"parameter":     parameter,
		"start":         start,
		"end":           end,
		"n":             n,
	})
	if err != nil {
		return sweepResponse{}, fmt.Errorf("encoding request: %w", err)
	}

	resp, err := client.Post(serverURL+"/api/sweeps", "application/json", bytes.NewReader(body))
	if err != nil {
		return sweepResponse{}, fmt.Errorf("sweep request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		data, _ := io.ReadAll(resp.Body)
		return sweepResponse{}, fmt.Errorf("sweep request returned status %d: %s", resp.StatusCode, string(data))
	}

	var decoded sweepResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return sweepResponse{}, fmt.Errorf("decoding sweep response: %w", err)
	}
	return decoded, nil
}

// writeCSV writes a sweep's {value -> points} series to filename, labeling
// the value column with the swept parameter's name.
func writeCSV(filename, parameter string, results []sweepResult) error {
	if err := security.ValidateOutputPath(filename); err != nil {
		return fmt.Errorf("refusing to write output file: %w", err)
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating output file %s: %w", filename, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{parameter, "points"}); err != nil {
		return err
	}
	for _, r := range results {
		if err := w.Write([]string{fmt.Sprintf("%.6f", r.Value), fmt.Sprintf("%.6f", r.Points)}); err != nil {
			return err
		}
	}
	return w.Error()
}

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "Base URL of a running lapsimd server")
	vehicleID := flag.String("vehicle", "", "Vehicle id to sweep")
	trackMeshID := flag.String("track-mesh", "", "Track mesh id to solve against")
	parameter := flag.String("parameter", "", "Registered sweep parameter name (e.g. \"Curb Mass\")")
	start := flag.Float64("start", 0, "Sweep start value")
	end := flag.Float64("end", 0, "Sweep end value")
	n := flag.Int("n", 5, "Number of sample points")
	output := flag.String("output", "", "Output CSV filename (defaults to sweep-<parameter>-<timestamp>.csv)")

	flag.Parse()

	if *vehicleID == "" || *trackMeshID == "" || *parameter == "" {
		log.Fatal("-vehicle, -track-mesh and -parameter are required")
	}

	client := httputil.NewStandardClient(&http.Client{Timeout: 5 * time.Minute})
	decoded, err := runSweep(client, *serverURL, *vehicleID, *trackMeshID, *parameter, *start, *end, *n)
	if err != nil {
		log.Fatalf("%v", err)
	}

	filename := *output
	if filename == "" {
		filename = fmt.Sprintf("sweep-%s-%s.csv", security.SanitizeFilename(*parameter), time.Now().Format("20060102-150405"))
	}
	if err := writeCSV(filename, *parameter, decoded.Results); err != nil {
		log.Fatalf("%v", err)
	}

	log.Printf("sweep %s complete: %d points written to %s", decoded.ID, len(decoded.Results), filename)
}
