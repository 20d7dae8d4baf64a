// Package pipeline runs the fetch, instantiate, invoke and present chain
// for one pair of operands.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/woxQAQ/wasmadd/internal/wasm"
	"github.com/woxQAQ/wasmadd/pkg/operand"
)

// Presenter receives the rendered result line.
type Presenter interface {
	AppendParagraph(text string) string
}

// Config names the module and the export a pipeline calls.
type Config struct {
	Source wasm.ModuleSource
	// Expected hex sha256 of the module bytes. Empty skips the check.
	SHA256 string
	Export wasm.ExportSpec
}

// Request carries the operands of one cycle.
type Request struct {
	A, B operand.Operand
}

// Outcome is the terminal state of a chain.
type Outcome struct {
	A, B, Sum operand.Operand

	// Markup appended to the page; empty on failure.
	Fragment string

	// StageDone or StageFailed.
	Stage Stage
	// Stage that failed, when Stage is StageFailed.
	FailedStage Stage
	Err         error
}

// Pipeline builds chains against one module.
type Pipeline struct {
	loader    *wasm.ModuleLoader
	instances *wasm.InstanceManager
	page      Presenter
	cfg       Config
	logger    *zap.Logger
}

// New creates a pipeline.
func New(loader *wasm.ModuleLoader, instances *wasm.InstanceManager, page Presenter, cfg Config, logger *zap.Logger) *Pipeline {
	if cfg.Export.Name == "" {
		cfg.Export = wasm.AddExport()
	}
	return &Pipeline{
		loader:    loader,
		instances: instances,
		page:      page,
		cfg:       cfg,
		logger:    logger.With(zap.String("component", "pipeline")),
	}
}

// Pending is a scheduled chain. Nothing runs until Wait is called.
type Pending struct {
	ctx   context.Context
	req   Request
	p     *Pipeline
	stage atomic.Int32

	once    sync.Once
	outcome Outcome
}

// Schedule returns immediately without performing any I/O. The chain runs
// when the caller yields to it with Wait, so anything the caller does in
// between is observed before the chain's effects.
func (p *Pipeline) Schedule(ctx context.Context, req Request) *Pending {
	return &Pending{ctx: ctx, req: req, p: p}
}

// Wait runs the chain on first call and returns its outcome. Later calls
// return the same outcome.
func (pd *Pending) Wait() Outcome {
	pd.once.Do(func() {
		pd.outcome = pd.p.run(pd.ctx, pd.req, pd)
	})
	return pd.outcome
}

// Stage reports the stage the chain is in.
func (pd *Pending) Stage() Stage {
	return Stage(pd.stage.Load())
}

func (pd *Pending) enter(s Stage) {
	pd.stage.Store(int32(s))
}

func (p *Pipeline) run(ctx context.Context, req Request, pd *Pending) Outcome {
	out := Outcome{A: req.A, B: req.B, Sum: operand.NaN()}

	// Terminal error-reporting stage: log once, append nothing.
	fail := func(stage Stage, err error) Outcome {
		pd.enter(StageFailed)
		out.Stage = StageFailed
		out.FailedStage = stage
		out.Err = err
		p.logger.Error("Pipeline failed",
			zap.Stringer("stage", stage),
			zap.String("module", p.cfg.Source.Name()),
			zap.Error(err),
		)
		return out
	}

	pd.enter(StageFetching)
	data, err := p.cfg.Source.Bytes(ctx)
	if err != nil {
		return fail(StageFetching, err)
	}

	pd.enter(StageInstantiating)
	source := &wasm.MemoryModuleSource{ModuleName: p.cfg.Source.Name(), Data: data}
	compiled, err := p.loader.LoadModule(ctx, source, wasm.LoadOptions{SHA256: p.cfg.SHA256})
	if err != nil {
		return fail(StageInstantiating, err)
	}

	instance, err := p.instances.Instantiate(ctx, &wasm.InstanceConfig{Module: compiled.Digest})
	if err != nil {
		return fail(StageInstantiating, err)
	}
	defer func() {
		if err := instance.Close(context.WithoutCancel(ctx)); err != nil {
			p.logger.Warn("Failed to close instance", zap.String("instance_id", instance.ID), zap.Error(err))
		}
	}()

	pd.enter(StageInvoking)
	export, err := instance.Export(p.cfg.Export)
	if err != nil {
		return fail(StageInvoking, err)
	}

	a, aOK := req.A.Int64()
	b, bOK := req.B.Int64()
	if aOK && bOK {
		sum, err := export.Call(ctx, a, b)
		if err != nil {
			return fail(StageInvoking, err)
		}
		out.Sum = operand.Int(sum)
	} else {
		// NaN propagates through addition.
		p.logger.Debug("Operand is NaN, skipping call",
			zap.Stringer("a", req.A),
			zap.Stringer("b", req.B),
		)
	}

	p.logger.Info("Computed sum",
		zap.String("export", p.cfg.Export.Name),
		zap.Stringer("sum", out.Sum),
	)

	pd.enter(StagePresenting)
	out.Fragment = p.page.AppendParagraph(fmt.Sprintf("%s + %s = %s", out.A, out.B, out.Sum))

	pd.enter(StageDone)
	out.Stage = StageDone
	return out
}
