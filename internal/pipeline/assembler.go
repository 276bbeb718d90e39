// Package pipeline turns an ordered list of configuration nodes into a
// chain of trainer stages.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/riahtu/pmtrain/internal/bind"
	"github.com/riahtu/pmtrain/internal/mlctx"
	"github.com/riahtu/pmtrain/internal/models"
	"github.com/riahtu/pmtrain/internal/trainers"
)

// ErrEmptyPipeline matches assembling zero components.
var ErrEmptyPipeline = bind.ErrEmptyPipeline

// Stage is one assembled component.
type Stage struct {
	Index      int
	Path       string
	Descriptor models.Descriptor
	Estimator  mlctx.Estimator
}

// Pipeline is the ordered result of a successful assembly.
type Pipeline struct {
	Name   string
	stages []Stage
	chain  *mlctx.Chain
}

func (p *Pipeline) Stages() []Stage {
	out := make([]Stage, len(p.stages))
	copy(out, p.stages)
	return out
}

func (p *Pipeline) Len() int {
	return len(p.stages)
}

// Chain is the composed estimator handed to a training driver.
func (p *Pipeline) Chain() *mlctx.Chain {
	return p.chain
}

type Assembler struct {
	registry *trainers.Registry
	logger   *slog.Logger
}

func NewAssembler(registry *trainers.Registry, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{registry: registry, logger: logger}
}

func (a *Assembler) Registry() *trainers.Registry {
	return a.registry
}

// Assemble builds one stage per node in order. It stops at the first node
// that fails and returns no pipeline; the error carries that node's index
// and path.
func (a *Assembler) Assemble(lc *mlctx.Context, nodes []models.Node) (*Pipeline, error) {
	start := time.Now()
	p, err := a.assemble(lc, nodes)
	assemblyDuration.Observe(time.Since(start).Seconds())
	assembliesTotal.WithLabelValues(outcome(err)).Inc()
	return p, err
}

// AssembleDocument assembles doc's components and names the pipeline after
// the document. A nil doc is an empty pipeline.
func (a *Assembler) AssembleDocument(lc *mlctx.Context, doc *models.Document) (*Pipeline, error) {
	if doc == nil {
		assembliesTotal.WithLabelValues(string(bind.EmptyPipeline)).Inc()
		return nil, bind.Empty("no document")
	}
	p, err := a.Assemble(lc, doc.Components)
	if err != nil {
		return nil, err
	}
	p.Name = doc.Name
	return p, nil
}

func (a *Assembler) assemble(lc *mlctx.Context, nodes []models.Node) (*Pipeline, error) {
	if len(nodes) == 0 {
		return nil, bind.Empty("no components declared")
	}

	p := &Pipeline{stages: make([]Stage, 0, len(nodes))}
	var chain *mlctx.Chain
	for i, node := range nodes {
		path := fmt.Sprintf("components[%d]", i)

		entry, err := a.registry.ResolveNode(node, path)
		if err != nil {
			return nil, a.fail(err, i)
		}
		est, err := entry.Build(lc, node, path)
		if err != nil {
			return nil, a.fail(err, i)
		}

		a.logger.Debug("stage constructed", "index", i, "kind", entry.Descriptor.Kind, "family", entry.Descriptor.Family)
		stagesTotal.WithLabelValues(string(entry.Descriptor.Family)).Inc()
		p.stages = append(p.stages, Stage{Index: i, Path: path, Descriptor: entry.Descriptor, Estimator: est})
		chain = chain.Append(est)
	}
	p.chain = chain
	return p, nil
}

func (a *Assembler) fail(err error, index int) error {
	bind.Locate(err, index)
	a.logger.Warn("assembly failed", "index", index, "error", err)
	return err
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var be *bind.Error
	if errors.As(err, &be) {
		return string(be.Kind)
	}
	return "error"
}
