package workspace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/riahtu/pmtrain/internal/mlctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndOpen(t *testing.T) {
	base := t.TempDir()

	_, err := Open(base, 7)
	assert.ErrorContains(t, err, "does not exist")

	w, err := Create(base, 7)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "session-7"), w.Path)
	assert.FileExists(t, filepath.Join(w.Path, "README.md"))

	opened, err := Open(base, 7)
	require.NoError(t, err)
	assert.Equal(t, w.Path, opened.Path)
}

func TestPlan_WriteRead(t *testing.T) {
	w, err := Create(t.TempDir(), 1)
	require.NoError(t, err)

	_, err = w.ReadPlan()
	assert.ErrorContains(t, err, "no plan")

	plan := &Plan{
		ID:          "3f1c",
		SessionID:   1,
		Pipeline:    "prices",
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Stages: []PlanStage{{
			Index:     0,
			Kind:      "OlsTrainer",
			Family:    mlctx.Regression,
			Algorithm: "Ols",
			Args: []mlctx.Arg{
				{Name: "labelColumnName", Value: "Price"},
				{Name: "exampleWeightColumnName", Value: mlctx.NoColumn},
			},
		}},
	}
	require.NoError(t, w.WritePlan(plan))

	raw, err := os.ReadFile(w.PlanPath())
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	stage := decoded["stages"].([]any)[0].(map[string]any)
	weight := stage["args"].([]any)[1].(map[string]any)
	assert.Nil(t, weight["value"], "unset columns are written as null")

	got, err := w.ReadPlan()
	require.NoError(t, err)
	assert.Equal(t, "prices", got.Pipeline)
	assert.Equal(t, plan.GeneratedAt, got.GeneratedAt)
	require.Len(t, got.Stages, 1)
	assert.Equal(t, mlctx.Regression, got.Stages[0].Family)

	require.NoError(t, w.Remove())
	assert.NoDirExists(t, w.Path)
}
