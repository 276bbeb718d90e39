package orchestrator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/riahtu/pmtrain/internal/bind"
	"github.com/riahtu/pmtrain/internal/mlctx"
	"github.com/riahtu/pmtrain/internal/models"
	"github.com/riahtu/pmtrain/internal/pipeline"
	"github.com/riahtu/pmtrain/internal/storage"
	"github.com/riahtu/pmtrain/internal/trainers"
	"github.com/riahtu/pmtrain/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrchestrator(t *testing.T) (*Orchestrator, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.New(filepath.Join(dir, "pmtrain.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	workspaces := filepath.Join(dir, "workspaces")
	o := New(store, pipeline.NewAssembler(trainers.Default(), logger), mlctx.New(), workspaces, logger)
	return o, workspaces
}

func pricesDoc() *models.Document {
	return &models.Document{
		Name:   "prices",
		Source: "prices.yaml",
		Components: []models.Node{
			{"Kind": "KMeans", "FeatureColumnName": "Features", "NumberOfClusters": 4},
			{"Kind": "OlsTrainer", "LabelColumnName": "Price", "FeatureColumnName": "Features"},
		},
	}
}

func brokenDoc() *models.Document {
	return &models.Document{
		Name:       "broken",
		Components: []models.Node{{"Kind": "FastTreeBinaryTrainer", "LabelColumnName": "Label", "FeatureColumnName": "Features"}},
	}
}

type recordingDriver struct {
	submitted []string
	err       error
}

func (d *recordingDriver) Submit(_ context.Context, session *models.Session, p *pipeline.Pipeline) error {
	d.submitted = append(d.submitted, p.Name)
	session.WorkspacePath = "remote:" + session.UUID
	return d.err
}

func TestStartSession_RecordsStages(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	session, p, err := o.StartSession(pricesDoc())
	require.NoError(t, err)
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, models.SessionStatusAssembled, session.Status)
	assert.NotEmpty(t, session.UUID)

	stored, err := o.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.StageCount)
	assert.Equal(t, "prices.yaml", stored.SourcePath)
	assert.NotNil(t, stored.CompletedAt)

	stages, err := o.GetStages(session.ID)
	require.NoError(t, err)
	require.Len(t, stages, 2)
	assert.Equal(t, "KMeansTrainer", stages[0].Kind)
	assert.Equal(t, mlctx.Clustering, stages[0].Family)
	assert.Equal(t, "Ols", stages[1].Algorithm)
}

func TestStartSession_RecordsFailure(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	session, p, err := o.StartSession(brokenDoc())
	require.Error(t, err)
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, bind.ErrFieldMissing))

	stored, err := o.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusFailed, stored.Status)
	assert.Contains(t, stored.Error, "NumberOfLeaves")

	stages, err := o.GetStages(session.ID)
	require.NoError(t, err)
	assert.Empty(t, stages)
}

func TestStartSession_NilDocument(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	session, p, err := o.StartSession(nil)
	require.Error(t, err)
	assert.Nil(t, session)
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, bind.ErrEmptyPipeline))

	sessions, err := o.ListSessions(10)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestRun_WritesPlan(t *testing.T) {
	o, workspaces := newTestOrchestrator(t)

	session, err := o.Run(context.Background(), pricesDoc())
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusExported, session.Status)

	ws, err := workspace.Open(workspaces, session.ID)
	require.NoError(t, err)
	plan, err := ws.ReadPlan()
	require.NoError(t, err)
	assert.Equal(t, session.UUID, plan.ID)
	assert.Equal(t, "prices", plan.Pipeline)
	require.Len(t, plan.Stages, 2)
	assert.Equal(t, "OlsTrainer", plan.Stages[1].Kind)

	stored, err := o.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusExported, stored.Status)
	assert.Equal(t, ws.Path, stored.WorkspacePath)

	require.NoError(t, o.DeleteSession(session.ID))
	assert.NoDirExists(t, ws.Path)
	_, err = o.GetSession(session.ID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestExport_CustomDriver(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	driver := &recordingDriver{}
	o.SetDriver(driver)

	session, err := o.Run(context.Background(), pricesDoc())
	require.NoError(t, err)
	assert.Equal(t, []string{"prices"}, driver.submitted)
	assert.Equal(t, "remote:"+session.UUID, session.WorkspacePath)

	driver.err = errors.New("queue full")
	session, err = o.Run(context.Background(), pricesDoc())
	assert.ErrorContains(t, err, "queue full")
	assert.Equal(t, models.SessionStatusAssembled, session.Status)
}

func TestExport_RejectsUnassembledSession(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	session, _, err := o.StartSession(brokenDoc())
	require.Error(t, err)

	err = o.Export(context.Background(), session, nil)
	assert.ErrorContains(t, err, "only assembled sessions")
}

func TestAssembleAll_KeepsInputOrder(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	docs := []*models.Document{pricesDoc(), brokenDoc(), pricesDoc(), {Name: "empty"}}

	results, err := o.AssembleAll(context.Background(), docs)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.NoError(t, results[0].Err)
	assert.Equal(t, 2, results[0].Pipeline.Len())
	assert.True(t, errors.Is(results[1].Err, bind.ErrFieldMissing))
	assert.NoError(t, results[2].Err)
	assert.True(t, errors.Is(results[3].Err, pipeline.ErrEmptyPipeline))
	assert.Same(t, docs[3], results[3].Document)

	sessions, err := o.ListSessions(10)
	require.NoError(t, err)
	assert.Empty(t, sessions, "AssembleAll does not record sessions")
}

func TestAssembleAll_CanceledContext(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.AssembleAll(ctx, []*models.Document{pricesDoc()})
	assert.ErrorIs(t, err, context.Canceled)
}
