// Package adder wires prompts, the Wasm pipeline and the page together.
package adder

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/woxQAQ/wasmadd/internal/config"
	"github.com/woxQAQ/wasmadd/internal/manifest"
	"github.com/woxQAQ/wasmadd/internal/page"
	"github.com/woxQAQ/wasmadd/internal/pipeline"
	"github.com/woxQAQ/wasmadd/internal/prompt"
	"github.com/woxQAQ/wasmadd/internal/wasm"
	"github.com/woxQAQ/wasmadd/pkg/operand"
)

// Prompt labels, in the order they are asked.
const (
	LabelA = "a = "
	LabelB = "b = "
)

// Adder runs prompt/fetch/compute/present cycles.
type Adder struct {
	cfg         *config.Config
	logger      *zap.Logger
	wasmRuntime *wasm.Runtime
	pipeline    *pipeline.Pipeline
	prompter    prompt.Prompter
	console     Console
	doc         *page.Document
}

// New initializes the Wasm runtime, resolves the module and loads the page.
func New(ctx context.Context, cfg *config.Config, prompter prompt.Prompter, console Console, logger *zap.Logger) (*Adder, error) {
	pcfg, err := pipelineConfig(cfg)
	if err != nil {
		return nil, err
	}

	doc := page.New(cfg.Page.Title)
	if cfg.Page.Path != "" {
		doc, err = page.Load(cfg.Page.Path, cfg.Page.Title)
		if err != nil {
			return nil, err
		}
	}

	wasmConfig := &wasm.RuntimeConfig{
		MemoryPages:      cfg.Wasm.MemoryPages,
		DebugEnabled:     cfg.Wasm.Debug,
		CacheDir:         cfg.Wasm.CacheDir,
		MaxInstances:     cfg.Wasm.MaxInstances,
		ExecutionTimeout: time.Duration(cfg.Wasm.ExecutionTimeout) * time.Second,
	}

	wasmRuntime, err := wasm.NewRuntime(ctx, logger, wasmConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Wasm runtime: %w", err)
	}

	p := pipeline.New(
		wasm.NewModuleLoader(wasmRuntime, logger),
		wasm.NewInstanceManager(wasmRuntime, wasm.NewHostFunctions(logger), logger),
		doc,
		pcfg,
		logger,
	)

	logger.Info("Adder initialized",
		zap.String("module", pcfg.Source.Name()),
		zap.String("export", pcfg.Export.Name),
		zap.String("signature", pcfg.Export.Signature()),
		zap.String("page", cfg.Page.Path),
	)

	return &Adder{
		cfg:         cfg,
		logger:      logger.With(zap.String("component", "adder")),
		wasmRuntime: wasmRuntime,
		pipeline:    p,
		prompter:    prompter,
		console:     console,
		doc:         doc,
	}, nil
}

// pipelineConfig resolves the module source, digest and export signature
// from the manifest when one is configured, otherwise from module.* keys.
func pipelineConfig(cfg *config.Config) (pipeline.Config, error) {
	mc := cfg.Module
	exportName := mc.Export
	if exportName == "" {
		exportName = wasm.AddExport().Name
	}

	path := mc.Path
	sha := mc.SHA256
	spec := wasm.AddExport()
	spec.Name = exportName

	if mc.Manifest != "" {
		m, err := manifest.ParseManifest(mc.Manifest)
		if err != nil {
			return pipeline.Config{}, err
		}
		spec, err = m.Export(exportName)
		if err != nil {
			return pipeline.Config{}, err
		}
		if sha == "" {
			sha = m.Wasm.SHA256
		}
		path = m.WasmPath()
		if mc.BaseURL != "" {
			path = m.Wasm.File
		}
	}

	var source wasm.ModuleSource = &wasm.FileModuleSource{Path: path}
	if mc.BaseURL != "" {
		httpSource, err := wasm.NewHTTPModuleSource(mc.BaseURL, path, nil)
		if err != nil {
			return pipeline.Config{}, err
		}
		source = httpSource
	}

	return pipeline.Config{Source: source, SHA256: sha, Export: spec}, nil
}

// RunCycle asks for both operands, schedules the chain, writes the
// completion message and then lets the chain run. Chain failures are
// reported in the outcome; the returned error covers prompting and
// saving the page.
func (a *Adder) RunCycle(ctx context.Context) (pipeline.Outcome, error) {
	left, err := a.ask(ctx, LabelA)
	if err != nil {
		return pipeline.Outcome{}, err
	}
	right, err := a.ask(ctx, LabelB)
	if err != nil {
		return pipeline.Outcome{}, err
	}

	pending := a.pipeline.Schedule(ctx, pipeline.Request{A: left, B: right})
	a.console.Log(CompletionMessage)

	outcome := pending.Wait()
	if outcome.Err != nil {
		return outcome, nil
	}

	if a.cfg.Page.Path != "" {
		if err := a.doc.Save(a.cfg.Page.Path); err != nil {
			return outcome, err
		}
	}

	return outcome, nil
}

func (a *Adder) ask(ctx context.Context, label string) (operand.Operand, error) {
	text, ok, err := a.prompter.Prompt(ctx, label)
	if err != nil {
		return operand.NaN(), fmt.Errorf("prompt %q: %w", label, err)
	}
	if !ok {
		a.logger.Debug("Prompt dismissed", zap.String("label", label))
	}
	return operand.Parse(text), nil
}

// Run executes repeat cycles in sequence. It returns a *CycleError when
// any cycle's chain failed.
func (a *Adder) Run(ctx context.Context, repeat int) error {
	if repeat < 1 {
		repeat = 1
	}

	var failed []error
	for i := 0; i < repeat; i++ {
		outcome, err := a.RunCycle(ctx)
		if err != nil {
			return err
		}
		if outcome.Err != nil {
			failed = append(failed, outcome.Err)
			continue
		}
		a.logger.Info("Cycle complete",
			zap.Int("cycle", i+1),
			zap.String("fragment", outcome.Fragment),
		)
	}

	if len(failed) > 0 {
		return &CycleError{Cycles: repeat, Errs: failed}
	}
	return nil
}

// Document returns the page results are appended to.
func (a *Adder) Document() *page.Document {
	return a.doc
}

// Close gracefully shuts down the adder.
func (a *Adder) Close(ctx context.Context) error {
	a.logger.Info("Shutting down adder")

	if err := a.wasmRuntime.Close(ctx); err != nil {
		a.logger.Error("Failed to shutdown Wasm runtime", zap.Error(err))
		return err
	}

	a.logger.Info("Adder shutdown complete")
	return nil
}
