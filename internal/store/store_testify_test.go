package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These mirror the teacher's testify style (require for setup that must
// succeed before the test can proceed, assert for the actual checks) rather
// than the stdlib style of store_test.go, covering the sweep-run round trip
// and the newest-first order of several competition runs, which
// store_test.go does not check.

func TestSweepRunRoundTripTestify(t *testing.T) {
	db := freshDB(t)

	vehicleID, err := db.InsertVehicle("sweep-car", []byte(`{}`))
	require.NoError(t, err)

	resultsJSON := []byte(`[{"Value":220,"Points":0.05},{"Value":250,"Points":0.048}]`)
	id, err := db.InsertSweepRun(vehicleID, "Curb Mass", 220, 250, 2, resultsJSON)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	parameterName, gotResults, err := db.GetSweepRun(id)
	require.NoError(t, err)
	assert.Equal(t, "Curb Mass", parameterName)
	assert.JSONEq(t, string(resultsJSON), string(gotResults))
}

func TestGetSweepRunMissingIDReturnsError(t *testing.T) {
	db := freshDB(t)

	_, _, err := db.GetSweepRun("does-not-exist")
	assert.Error(t, err)
}

func TestCompetitionRunListOrdersNewestFirstTestify(t *testing.T) {
	db := freshDB(t)

	vehicleID, err := db.InsertVehicle("comp-car", []byte(`{}`))
	require.NoError(t, err)
	meshID, err := db.InsertTrackMesh("autocross", "OPEN", []byte(`{}`))
	require.NoError(t, err)

	accelID, err := db.InsertSolution(vehicleID, meshID, 4.1, 75, []byte(`{}`))
	require.NoError(t, err)
	skidID, err := db.InsertSolution(vehicleID, meshID, 5.2, 57, []byte(`{}`))
	require.NoError(t, err)
	autoID, err := db.InsertSolution(vehicleID, meshID, 56.0, 1000, []byte(`{}`))
	require.NoError(t, err)
	endID, err := db.InsertSolution(vehicleID, meshID, 910.0, 24000, []byte(`{}`))
	require.NoError(t, err)

	firstRunID, err := db.InsertCompetitionRun(vehicleID, accelID, skidID, autoID, endID, 700.0)
	require.NoError(t, err)
	secondRunID, err := db.InsertCompetitionRun(vehicleID, accelID, skidID, autoID, endID, 825.5)
	require.NoError(t, err)

	runs, err := db.ListCompetitionRuns(vehicleID, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, secondRunID, runs[0].ID, "most recently inserted run listed first")
	assert.Equal(t, firstRunID, runs[1].ID)
	assert.Equal(t, 825.5, runs[0].TotalPoints)
}
