package wasm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"
)

// ValueType is a Wasm value type as reported by wazero.
type ValueType = api.ValueType

// ParseValueType maps the text form of an integer value type.
// Only i32 and i64 are accepted; the adder never exchanges floats.
func ParseValueType(s string) (ValueType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "i32":
		return api.ValueTypeI32, nil
	case "i64":
		return api.ValueTypeI64, nil
	}
	return 0, fmt.Errorf("unsupported value type '%s' (must be one of: i32, i64)", s)
}

// ExportSpec declares the name and signature an export must have.
type ExportSpec struct {
	Name    string
	Params  []ValueType
	Results []ValueType
}

// AddExport is the default declaration: add(i32, i32) -> i32.
func AddExport() ExportSpec {
	return ExportSpec{
		Name:    "add",
		Params:  []ValueType{api.ValueTypeI32, api.ValueTypeI32},
		Results: []ValueType{api.ValueTypeI32},
	}
}

// Signature renders the declared signature, e.g. "(i32, i32) -> (i32)".
func (s ExportSpec) Signature() string {
	return describeSignature(s.Params, s.Results)
}

// Export is a signature-checked exported function.
type Export struct {
	fn      api.Function
	spec    ExportSpec
	timeout time.Duration
	debug   bool
	logger  *zap.Logger
}

// Call invokes the export with integer arguments and returns its single
// integer result. i32 arguments wrap modulo 2^32.
func (e *Export) Call(ctx context.Context, args ...int64) (int64, error) {
	if len(args) != len(e.spec.Params) {
		return 0, &CallError{
			FunctionName: e.spec.Name,
			Err:          fmt.Errorf("got %d arguments, want %d", len(args), len(e.spec.Params)),
		}
	}

	params := make([]uint64, len(args))
	for i, a := range args {
		params[i] = encode(e.spec.Params[i], a)
	}

	callCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	if e.debug {
		e.logger.Debug("Calling export",
			zap.String("function", e.spec.Name),
			zap.Int64s("args", args),
		)
	}

	results, err := e.fn.Call(callCtx, params...)
	if err != nil {
		if ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return 0, &TimeoutError{Duration: e.timeout}
		}
		return 0, &CallError{FunctionName: e.spec.Name, Err: err}
	}
	if len(results) != 1 || len(e.spec.Results) != 1 {
		return 0, &CallError{
			FunctionName: e.spec.Name,
			Err:          fmt.Errorf("got %d results, want 1", len(results)),
		}
	}

	return decode(e.spec.Results[0], results[0]), nil
}

func encode(t ValueType, v int64) uint64 {
	if t == api.ValueTypeI32 {
		return api.EncodeI32(int32(v))
	}
	return api.EncodeI64(v)
}

func decode(t ValueType, v uint64) int64 {
	if t == api.ValueTypeI32 {
		return int64(int32(uint32(v)))
	}
	return int64(v)
}

func sameTypes(got, want []ValueType) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func describeSignature(params, results []ValueType) string {
	return fmt.Sprintf("(%s) -> (%s)", joinTypes(params), joinTypes(results))
}

func joinTypes(types []ValueType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = api.ValueTypeName(t)
	}
	return strings.Join(names, ", ")
}
