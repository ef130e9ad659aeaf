// Package macro loads externally supplied binary compute modules and exposes
// their numeric exports as registered cell functions, marshaling row values
// through the module's linear memory.
package macro

import (
	"context"
	"sort"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// ModuleRuntime is the foreign-function boundary to an instantiated binary
// module. The loader and marshaling handler depend only on this interface,
// never on a concrete runtime.
type ModuleRuntime interface {
	// HasMemory reports whether the module exports a linear memory.
	HasMemory() bool
	// Size returns the current linear memory size in bytes.
	Size() uint32
	// Grow grows linear memory by the given number of 64 KiB pages.
	// Memory only grows, never shrinks.
	Grow(pages uint32) bool
	// Read copies length bytes starting at ptr out of linear memory.
	Read(ptr, length uint32) ([]byte, bool)
	// Write copies data into linear memory at ptr.
	Write(ptr uint32, data []byte) bool
	// Exports lists the module's function exports in stable order.
	Exports() []string
	// Arity returns the parameter count of the named export, or -1 when
	// the export does not exist.
	Arity(export string) int
	// Invoke calls the named export. The boolean is false when the export
	// returns no numeric result.
	Invoke(ctx context.Context, export string, args ...uint64) (float64, bool, error)
	// Close releases the module instance.
	Close(ctx context.Context) error
}

// Instantiator turns fetched module bytes into a live ModuleRuntime.
type Instantiator interface {
	Instantiate(ctx context.Context, binary []byte) (ModuleRuntime, error)
}

// WazeroInstantiator instantiates modules on a shared wazero runtime with
// no imports.
type WazeroInstantiator struct {
	runtime wazero.Runtime
}

// NewWazeroInstantiator creates an instantiator backed by a fresh wazero
// runtime.
func NewWazeroInstantiator(ctx context.Context) *WazeroInstantiator {
	return &WazeroInstantiator{runtime: wazero.NewRuntime(ctx)}
}

// Instantiate compiles and instantiates the binary anonymously, so loading
// the same module id twice never collides on the module name.
func (w *WazeroInstantiator) Instantiate(ctx context.Context, binary []byte) (ModuleRuntime, error) {
	mod, err := w.runtime.InstantiateWithConfig(ctx, binary, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return nil, err
	}
	return &wazeroModule{mod: mod}, nil
}

// Close tears down the shared runtime and every module instantiated on it.
func (w *WazeroInstantiator) Close(ctx context.Context) error {
	return w.runtime.Close(ctx)
}

type wazeroModule struct {
	mod api.Module
}

func (m *wazeroModule) HasMemory() bool {
	return m.mod.Memory() != nil
}

func (m *wazeroModule) Size() uint32 {
	if mem := m.mod.Memory(); mem != nil {
		return mem.Size()
	}
	return 0
}

func (m *wazeroModule) Grow(pages uint32) bool {
	mem := m.mod.Memory()
	if mem == nil {
		return false
	}
	_, ok := mem.Grow(pages)
	return ok
}

func (m *wazeroModule) Read(ptr, length uint32) ([]byte, bool) {
	mem := m.mod.Memory()
	if mem == nil {
		return nil, false
	}
	return mem.Read(ptr, length)
}

func (m *wazeroModule) Write(ptr uint32, data []byte) bool {
	mem := m.mod.Memory()
	if mem == nil {
		return false
	}
	return mem.Write(ptr, data)
}

func (m *wazeroModule) Exports() []string {
	defs := m.mod.ExportedFunctionDefinitions()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *wazeroModule) Arity(export string) int {
	def, ok := m.mod.ExportedFunctionDefinitions()[export]
	if !ok {
		return -1
	}
	return len(def.ParamTypes())
}

func (m *wazeroModule) Invoke(ctx context.Context, export string, args ...uint64) (float64, bool, error) {
	fn := m.mod.ExportedFunction(export)
	if fn == nil {
		return 0, false, nil
	}
	results, err := fn.Call(ctx, args...)
	if err != nil {
		return 0, false, err
	}
	if len(results) == 0 {
		return 0, false, nil
	}
	switch fn.Definition().ResultTypes()[0] {
	case api.ValueTypeF64:
		return api.DecodeF64(results[0]), true, nil
	case api.ValueTypeF32:
		return float64(api.DecodeF32(results[0])), true, nil
	case api.ValueTypeI32:
		return float64(int32(results[0])), true, nil
	default:
		return float64(int64(results[0])), true, nil
	}
}

func (m *wazeroModule) Close(ctx context.Context) error {
	return m.mod.Close(ctx)
}
