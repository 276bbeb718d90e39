package spec

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/riahtu/pmtrain/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParse_JSONObject(t *testing.T) {
	path := writeFile(t, t.TempDir(), "churn.json", `{
  "name": "churn",
  "description": "binary churn model",
  "components": [
    {"Kind": "FastTreeBinaryTrainer", "NumberOfLeaves": 20, "LearningRate": 0.2, "id": "n1"}
  ]
}`)

	doc, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, "churn", doc.Name)
	assert.Equal(t, path, doc.Source)
	require.Len(t, doc.Components, 1)
	assert.Equal(t, json.Number("20"), doc.Components[0]["NumberOfLeaves"])
	assert.Equal(t, json.Number("0.2"), doc.Components[0]["LearningRate"])
}

func TestParse_JSONBareArrayTakesFileName(t *testing.T) {
	path := writeFile(t, t.TempDir(), "segments.json", `[{"Kind": "KMeans", "FeatureColumnName": "Features", "NumberOfClusters": 3}]`)

	doc, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, "segments", doc.Name)
	require.Len(t, doc.Components, 1)
	kind, ok := doc.Components[0].Kind()
	assert.True(t, ok)
	assert.Equal(t, "KMeans", kind)
}

func TestParse_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "prices.yaml", `
name: prices
components:
  - Kind: OlsTrainer
    LabelColumnName: Price
    FeatureColumnName: Features
    ExampleWeightColumnName: ~
  - Kind: FastTreeTweedie
    NumberOfLeaves: 20
    LearningRate: 0.5
`)

	doc, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, "prices", doc.Name)
	require.Len(t, doc.Components, 2)

	w, ok := doc.Components[0].Lookup("ExampleWeightColumnName")
	assert.True(t, ok)
	assert.Nil(t, w)
	assert.Equal(t, 20, doc.Components[1]["NumberOfLeaves"])
	assert.Equal(t, 0.5, doc.Components[1]["LearningRate"])
}

func TestParse_Lua(t *testing.T) {
	path := writeFile(t, t.TempDir(), "scripted.lua", `
function pipeline()
  return { components = { { Kind = "Ols", LabelColumnName = "Label", FeatureColumnName = "Features" } } }
end`)

	doc, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, "scripted", doc.Name)
	assert.Len(t, doc.Components, 1)
}

func TestParse_LuaLogsReachSlog(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := writeFile(t, t.TempDir(), "logged.lua", `
function pipeline()
  log("picked " .. #kinds() .. " kinds")
  return { components = { { Kind = "Ols", LabelColumnName = "Label", FeatureColumnName = "Features" } } }
end`)

	_, err := Parse(path)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "pipeline script log")
	assert.Contains(t, buf.String(), "picked 32 kinds")
	assert.Contains(t, buf.String(), "logged.lua")
}

func TestParse_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Parse(filepath.Join(dir, "missing.json"))
	assert.ErrorContains(t, err, "failed to read pipeline file")

	_, err = Parse(writeFile(t, dir, "broken.json", `{"components": [`))
	assert.ErrorContains(t, err, "failed to parse pipeline JSON")

	_, err = Parse(writeFile(t, dir, "broken.yaml", "components: [\n"))
	assert.ErrorContains(t, err, "failed to parse pipeline YAML")

	_, err = ParseBytes([]byte("x"), ".toml")
	assert.ErrorContains(t, err, "unsupported pipeline format")
}

func TestLoadAll(t *testing.T) {
	user := t.TempDir()
	project := t.TempDir()
	writeFile(t, user, "a.json", `{"name": "shared", "components": [{"Kind": "Ols"}]}`)
	writeFile(t, user, "b.yml", "components:\n  - Kind: KMeans\n")
	writeFile(t, user, "notes.txt", "ignored")
	writeFile(t, project, "c.yaml", "name: shared\ndescription: project copy\ncomponents: []\n")

	docs, err := LoadAll([]string{user, filepath.Join(user, "does-not-exist"), project})
	require.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.Contains(t, docs, "b")
	assert.Equal(t, "project copy", docs["shared"].Description)
}

func TestLoadAll_ReportsBadFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.json", "{")

	_, err := LoadAll([]string{dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.json")
}

func TestValidate(t *testing.T) {
	valid := &models.Document{Name: "ok", Components: []models.Node{{"Kind": "Ols"}}}
	assert.NoError(t, Validate(valid))

	tests := []struct {
		name string
		doc  *models.Document
		msg  string
	}{
		{"no name", &models.Document{Components: []models.Node{{"Kind": "Ols"}}}, "name is required"},
		{"null component", &models.Document{Name: "x", Components: []models.Node{{"Kind": "Ols"}, nil}}, "components[1] must be an object"},
		{"no kind", &models.Document{Name: "x", Components: []models.Node{{"FeatureColumnName": "F"}}}, "components[0] must have a string Kind"},
		{"numeric kind", &models.Document{Name: "x", Components: []models.Node{{"Kind": 3}}}, "components[0] must have a string Kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.doc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestHasKindRule(t *testing.T) {
	var err error
	require.NotPanics(t, func() {
		err = documentValidate.Var(models.Node{"Kind": "Ols"}, "has_kind")
	})
	assert.NoError(t, err)
	assert.Error(t, documentValidate.Var(models.Node{"Kind": ""}, "has_kind"))
	assert.Error(t, documentValidate.Var(models.Node{"LabelColumnName": "Label"}, "has_kind"))
}
