package wasm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ModuleLoader handles loading and compiling Wasm modules.
type ModuleLoader struct {
	runtime *Runtime
	logger  *zap.Logger
}

// NewModuleLoader creates a new module loader.
func NewModuleLoader(runtime *Runtime, logger *zap.Logger) *ModuleLoader {
	return &ModuleLoader{
		runtime: runtime,
		logger:  logger.With(zap.String("component", "wasm-loader")),
	}
}

// LoadOptions tune a single LoadModule call.
type LoadOptions struct {
	// Expected hex sha256 of the module bytes. Empty skips the check.
	SHA256 string
}

// LoadModule reads the full payload from source and compiles it.
// The source is read on every call; compilation is skipped when identical
// bytes were compiled before.
func (l *ModuleLoader) LoadModule(ctx context.Context, source ModuleSource, opts LoadOptions) (*CompiledModule, error) {
	wasmBytes, err := source.Bytes(ctx)
	if err != nil {
		return nil, err
	}

	digest := Digest(wasmBytes)

	if want := strings.ToLower(strings.TrimSpace(opts.SHA256)); want != "" && want != digest {
		return nil, &IntegrityError{
			ModuleName: source.Name(),
			Expected:   want,
			Actual:     digest,
		}
	}

	if cached, ok := l.runtime.GetCompiledModule(digest); ok {
		l.logger.Debug("Module cache hit",
			zap.String("module", source.Name()),
			zap.String("sha256", digest),
		)
		return cached, nil
	}

	l.logger.Info("Compiling Wasm module",
		zap.String("module", source.Name()),
		zap.Int("size_bytes", len(wasmBytes)),
	)

	startTime := time.Now()

	// CompileModule decodes and validates the binary.
	compiled, err := l.runtime.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, &CompilationError{
			ModuleName: source.Name(),
			Err:        err,
		}
	}

	compiledModule := &CompiledModule{
		Module:     compiled,
		Name:       source.Name(),
		Source:     source.Name(),
		Digest:     digest,
		SizeBytes:  int64(len(wasmBytes)),
		CompiledAt: time.Now().Unix(),
	}

	l.runtime.StoreCompiledModule(compiledModule)

	l.logger.Info("Module compiled successfully",
		zap.String("module", source.Name()),
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("exported_functions", len(compiled.ExportedFunctions())),
	)

	return compiledModule, nil
}

// LoadModuleFromFile is a convenience function for loading from a file path.
func (l *ModuleLoader) LoadModuleFromFile(ctx context.Context, path string) (*CompiledModule, error) {
	return l.LoadModule(ctx, &FileModuleSource{Path: path}, LoadOptions{})
}

// LoadModuleFromMemory loads from a byte slice.
func (l *ModuleLoader) LoadModuleFromMemory(ctx context.Context, name string, data []byte) (*CompiledModule, error) {
	return l.LoadModule(ctx, &MemoryModuleSource{ModuleName: name, Data: data}, LoadOptions{})
}

// Digest returns the hex sha256 used as cache key for data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
