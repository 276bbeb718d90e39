package orchestrator

import (
	"context"
	"time"

	"github.com/riahtu/pmtrain/internal/models"
	"github.com/riahtu/pmtrain/internal/pipeline"
	"github.com/riahtu/pmtrain/internal/workspace"
)

// PlanDriver writes the pipeline as a plan file into the session's
// workspace, where an external trainer picks it up.
type PlanDriver struct {
	workspaceDir string
}

func NewPlanDriver(workspaceDir string) *PlanDriver {
	return &PlanDriver{workspaceDir: workspaceDir}
}

func (d *PlanDriver) Submit(ctx context.Context, session *models.Session, p *pipeline.Pipeline) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ws, err := workspace.Create(d.workspaceDir, session.ID)
	if err != nil {
		return err
	}

	plan := &workspace.Plan{
		ID:          session.UUID,
		SessionID:   session.ID,
		Pipeline:    p.Name,
		Source:      session.SourcePath,
		GeneratedAt: time.Now().UTC(),
	}
	for _, s := range p.Stages() {
		info := s.Estimator.Describe()
		plan.Stages = append(plan.Stages, workspace.PlanStage{
			Index:     s.Index,
			Kind:      s.Descriptor.Kind,
			Family:    info.Family,
			Algorithm: info.Algorithm,
			Args:      info.Args,
		})
	}
	if err := ws.WritePlan(plan); err != nil {
		return err
	}

	session.WorkspacePath = ws.Path
	return nil
}
