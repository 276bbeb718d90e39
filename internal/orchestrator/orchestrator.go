package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/riahtu/pmtrain/internal/bind"
	"github.com/riahtu/pmtrain/internal/mlctx"
	"github.com/riahtu/pmtrain/internal/models"
	"github.com/riahtu/pmtrain/internal/pipeline"
	"github.com/riahtu/pmtrain/internal/storage"
)

// Driver hands an assembled pipeline to a training process.
type Driver interface {
	Submit(ctx context.Context, session *models.Session, p *pipeline.Pipeline) error
}

type Orchestrator struct {
	storage   *storage.Storage
	assembler *pipeline.Assembler
	lc        *mlctx.Context
	driver    Driver
	logger    *slog.Logger
}

// New returns an orchestrator that exports through a PlanDriver writing
// into workspaceDir.
func New(store *storage.Storage, assembler *pipeline.Assembler, lc *mlctx.Context, workspaceDir string, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		storage:   store,
		assembler: assembler,
		lc:        lc,
		driver:    NewPlanDriver(workspaceDir),
		logger:    logger,
	}
}

// SetDriver replaces the export driver.
func (o *Orchestrator) SetDriver(d Driver) {
	o.driver = d
}

// StartSession records a session for doc and assembles it. A failed
// assembly is recorded on the session and its error returned unchanged.
// A nil doc records nothing.
func (o *Orchestrator) StartSession(doc *models.Document) (*models.Session, *pipeline.Pipeline, error) {
	if doc == nil {
		return nil, nil, fmt.Errorf("failed to start session: %w", bind.Empty("no document"))
	}

	session := &models.Session{
		UUID:         uuid.NewString(),
		DocumentName: doc.Name,
		SourcePath:   doc.Source,
		Status:       models.SessionStatusPending,
	}

	id, err := o.storage.CreateSession(session)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}
	session.ID = id
	logger := o.logger.With("session_id", id, "pipeline", doc.Name)

	p, assembleErr := o.assembler.AssembleDocument(o.lc, doc)
	if assembleErr != nil {
		logger.Warn("assembly failed", "error", assembleErr)
		if err := o.finish(session, models.SessionStatusFailed, assembleErr.Error()); err != nil {
			return nil, nil, err
		}
		return session, nil, assembleErr
	}

	if err := o.storage.CreateStages(id, stageRecords(p)); err != nil {
		return nil, nil, fmt.Errorf("failed to record stages: %w", err)
	}
	session.StageCount = p.Len()
	if err := o.finish(session, models.SessionStatusAssembled, ""); err != nil {
		return nil, nil, err
	}

	logger.Info("pipeline assembled", "stages", p.Len())
	return session, p, nil
}

// Export submits an assembled pipeline to the driver and marks the session
// exported.
func (o *Orchestrator) Export(ctx context.Context, session *models.Session, p *pipeline.Pipeline) error {
	if session.Status != models.SessionStatusAssembled {
		return fmt.Errorf("session %d is %s, only assembled sessions can be exported", session.ID, session.Status)
	}
	if err := o.driver.Submit(ctx, session, p); err != nil {
		return fmt.Errorf("failed to submit pipeline: %w", err)
	}

	session.Status = models.SessionStatusExported
	if err := o.storage.UpdateSession(session); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	o.logger.Info("pipeline exported", "session_id", session.ID, "workspace", session.WorkspacePath)
	return nil
}

// Run assembles doc and exports it.
func (o *Orchestrator) Run(ctx context.Context, doc *models.Document) (*models.Session, error) {
	session, p, err := o.StartSession(doc)
	if err != nil {
		return session, err
	}
	return session, o.Export(ctx, session, p)
}

func (o *Orchestrator) finish(session *models.Session, status models.SessionStatus, errText string) error {
	now := time.Now().UTC()
	session.Status = status
	session.Error = errText
	session.CompletedAt = &now
	if err := o.storage.UpdateSession(session); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

func stageRecords(p *pipeline.Pipeline) []*models.StageRecord {
	stages := p.Stages()
	records := make([]*models.StageRecord, 0, len(stages))
	for _, s := range stages {
		info := s.Estimator.Describe()
		records = append(records, &models.StageRecord{
			StageIndex: s.Index,
			Kind:       s.Descriptor.Kind,
			Family:     info.Family,
			Algorithm:  info.Algorithm,
			Args:       info.Args,
		})
	}
	return records
}

// Result is the outcome of assembling one document in AssembleAll.
type Result struct {
	Document *models.Document
	Pipeline *pipeline.Pipeline
	Err      error
}

// AssembleAll assembles independent documents concurrently without
// recording sessions. Results are in input order; per-document failures are
// reported in Result.Err.
func (o *Orchestrator) AssembleAll(ctx context.Context, docs []*models.Document) ([]Result, error) {
	results := make([]Result, len(docs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := o.assembler.AssembleDocument(o.lc, doc)
			results[i] = Result{Document: doc, Pipeline: p, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Read methods for TUI

func (o *Orchestrator) ListSessions(limit int) ([]*models.Session, error) {
	return o.storage.ListSessions(limit)
}

func (o *Orchestrator) GetSession(id int64) (*models.Session, error) {
	return o.storage.GetSession(id)
}

func (o *Orchestrator) GetStages(sessionID int64) ([]*models.StageRecord, error) {
	return o.storage.GetStagesForSession(sessionID)
}

func (o *Orchestrator) Assembler() *pipeline.Assembler {
	return o.assembler
}

// DeleteSession removes the session, its stages and its workspace.
func (o *Orchestrator) DeleteSession(id int64) error {
	session, err := o.storage.GetSession(id)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	if session.WorkspacePath != "" {
		if err := os.RemoveAll(session.WorkspacePath); err != nil {
			return fmt.Errorf("failed to remove workspace: %w", err)
		}
	}

	if err := o.storage.DeleteSession(id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
