package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/riahtu/pmtrain/internal/mlctx"
)

const planFile = "pipeline.json"

// Workspace is the directory an external training process reads a session's
// plan from.
type Workspace struct {
	Path string
}

// Plan is the handoff format for a training driver.
type Plan struct {
	ID          string      `json:"id"`
	SessionID   int64       `json:"session_id"`
	Pipeline    string      `json:"pipeline"`
	Source      string      `json:"source,omitempty"`
	GeneratedAt time.Time   `json:"generated_at"`
	Stages      []PlanStage `json:"stages"`
}

type PlanStage struct {
	Index     int          `json:"index"`
	Kind      string       `json:"kind"`
	Family    mlctx.Family `json:"family"`
	Algorithm string       `json:"algorithm"`
	// Args are in factory order. Unset optional columns are null.
	Args []mlctx.Arg `json:"args"`
}

func dir(baseDir string, sessionID int64) string {
	return filepath.Join(baseDir, fmt.Sprintf("session-%d", sessionID))
}

func Create(baseDir string, sessionID int64) (*Workspace, error) {
	w := &Workspace{Path: dir(baseDir, sessionID)}

	if err := os.MkdirAll(w.Path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create workspace directory: %w", err)
	}
	if err := w.writeReadme(); err != nil {
		return nil, err
	}

	return w, nil
}

func Open(baseDir string, sessionID int64) (*Workspace, error) {
	path := dir(baseDir, sessionID)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("workspace for session %d does not exist", sessionID)
	}

	return &Workspace{Path: path}, nil
}

func (w *Workspace) PlanPath() string {
	return filepath.Join(w.Path, planFile)
}

func (w *Workspace) WritePlan(plan *Plan) error {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	if err := os.WriteFile(w.PlanPath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", planFile, err)
	}

	return nil
}

func (w *Workspace) ReadPlan() (*Plan, error) {
	data, err := os.ReadFile(w.PlanPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no plan in workspace %s", w.Path)
		}
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}

	var plan Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan JSON: %w", err)
	}

	return &plan, nil
}

// Remove deletes the workspace directory.
func (w *Workspace) Remove() error {
	return os.RemoveAll(w.Path)
}

func (w *Workspace) writeReadme() error {
	return os.WriteFile(filepath.Join(w.Path, "README.md"), []byte(readmeContent), 0644)
}

const readmeContent = `# Training workspace

` + "`" + planFile + "`" + ` lists the stages of one assembled pipeline, in the
order they must be chained. Each stage names its task family, the trainer
algorithm, and its arguments in the order the trainer factory takes them.

An argument whose value is ` + "`" + `null` + "`" + ` is an optional column that
was not configured: train without it rather than substituting a default.

The loss function argument is always ` + "`" + `Default` + "`" + `.
`
