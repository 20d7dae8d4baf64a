package wasm

import (
	"context"
	"fmt"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// InstanceManager creates and manages module instances.
type InstanceManager struct {
	runtime   *Runtime
	logger    *zap.Logger
	hostFuncs *HostFunctionsImpl
}

// NewInstanceManager creates a new instance manager.
func NewInstanceManager(runtime *Runtime, hostFuncs *HostFunctionsImpl, logger *zap.Logger) *InstanceManager {
	return &InstanceManager{
		runtime:   runtime,
		hostFuncs: hostFuncs,
		logger:    logger.With(zap.String("component", "wasm-instance")),
	}
}

// InstanceConfig holds configuration for creating instances.
type InstanceConfig struct {
	// Digest of the compiled module to instantiate.
	Module string

	// Instance ID (if empty, one is generated).
	InstanceID string
}

// Instance represents an instantiated Wasm module.
type Instance struct {
	// wazero module instance.
	module  api.Module
	runtime *Runtime
	logger  *zap.Logger

	// Instance metadata.
	ID        string
	Name      string
	CreatedAt int64
}

// Instantiate creates a new instance from a compiled module.
// The host import module is instantiated first if the runtime lacks it.
func (m *InstanceManager) Instantiate(ctx context.Context, config *InstanceConfig) (*Instance, error) {
	compiled, ok := m.runtime.GetCompiledModule(config.Module)
	if !ok {
		return nil, &ModuleNotFoundError{ModuleName: config.Module}
	}

	limit := m.runtime.config.MaxInstances
	if !m.runtime.reserveSlot(limit) {
		return nil, &InstanceLimitError{Limit: limit}
	}

	instanceID := config.InstanceID
	if instanceID == "" {
		instanceID = generateInstanceID()
	}

	if err := m.runtime.ensureHostModule(ctx, m.hostFuncs); err != nil {
		m.runtime.releaseSlot()
		return nil, err
	}

	m.logger.Info("Instantiating Wasm module",
		zap.String("module", compiled.Name),
		zap.String("instance_id", instanceID),
	)

	// Names must be unique within the runtime, so the instance ID is used.
	moduleConfig := wazero.NewModuleConfig().
		WithName(instanceID)

	module, err := m.runtime.runtime.InstantiateModule(ctx, compiled.Module, moduleConfig)
	if err != nil {
		m.runtime.releaseSlot()
		return nil, &InstantiationError{
			ModuleName: compiled.Name,
			InstanceID: instanceID,
			Err:        err,
		}
	}

	instance := &Instance{
		module:    module,
		runtime:   m.runtime,
		logger:    m.logger.With(zap.String("instance_id", instanceID)),
		ID:        instanceID,
		Name:      compiled.Name,
		CreatedAt: time.Now().Unix(),
	}

	m.runtime.trackInstance(instanceID, module)

	m.logger.Info("Module instantiated successfully",
		zap.String("instance_id", instanceID),
		zap.Int("exported_functions", len(module.ExportedFunctionDefinitions())),
	)

	return instance, nil
}

// Close closes the instance and releases resources.
func (i *Instance) Close(ctx context.Context) error {
	i.runtime.DeleteInstance(i.ID)
	return i.module.Close(ctx)
}

// Export looks up the function named by spec and checks its signature
// before any call is made.
func (i *Instance) Export(spec ExportSpec) (*Export, error) {
	fn := i.module.ExportedFunction(spec.Name)
	if fn == nil {
		return nil, &FunctionNotFoundError{
			ModuleName:   i.Name,
			FunctionName: spec.Name,
		}
	}

	def := fn.Definition()
	if !sameTypes(def.ParamTypes(), spec.Params) || !sameTypes(def.ResultTypes(), spec.Results) {
		return nil, &SignatureMismatchError{
			ModuleName:   i.Name,
			FunctionName: spec.Name,
			Want:         spec.Signature(),
			Got:          describeSignature(def.ParamTypes(), def.ResultTypes()),
		}
	}

	return &Export{
		fn:      fn,
		spec:    spec,
		timeout: i.runtime.config.ExecutionTimeout,
		debug:   i.runtime.config.DebugEnabled,
		logger:  i.logger,
	}, nil
}

var instanceSeq atomic.Uint64

// generateInstanceID generates a unique instance ID.
func generateInstanceID() string {
	return fmt.Sprintf("inst-%d-%d", time.Now().UnixNano(), instanceSeq.Inc())
}
