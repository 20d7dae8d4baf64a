package wasm

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"
)

// HostModuleName is the import module guests use for host functions.
const HostModuleName = "host"

// HostFunctionsImpl implements host functions for Wasm modules.
type HostFunctionsImpl struct {
	logger *zap.Logger
}

// NewHostFunctions creates a new host functions implementation.
func NewHostFunctions(logger *zap.Logger) *HostFunctionsImpl {
	return &HostFunctionsImpl{
		logger: logger.With(zap.String("component", "wasm-host")),
	}
}

// register adds the host functions to builder.
func (h *HostFunctionsImpl) register(builder wazero.HostModuleBuilder) wazero.HostModuleBuilder {
	// Wasm modules can call this to log messages.
	return builder.NewFunctionBuilder().
		WithFunc(h.logMessage).
		WithParameterNames("level", "ptr", "length").
		Export("log_message")
}

// logMessage is called by Wasm modules to log messages.
// Signature: log_message(level, ptr, length)
// level: 0 = debug, 1 = info, 2 = warn, 3 = error
func (h *HostFunctionsImpl) logMessage(ctx context.Context, mod api.Module, level uint32, ptr uint32, length uint32) {
	msg, ok := NewMemory(mod).ReadString(ptr, length)
	if !ok {
		err := &HostFunctionError{
			FunctionName: "log_message",
			Err:          fmt.Errorf("message at %d+%d is outside guest memory", ptr, length),
		}
		h.logger.Error("Host function failed",
			zap.String("module", mod.Name()),
			zap.Error(err),
		)
		return
	}

	fields := []zap.Field{zap.String("module", mod.Name())}
	switch level {
	case 0:
		h.logger.Debug(msg, fields...)
	case 1:
		h.logger.Info(msg, fields...)
	case 2:
		h.logger.Warn(msg, fields...)
	case 3:
		h.logger.Error(msg, fields...)
	default:
		h.logger.Info(msg, fields...)
	}
}
