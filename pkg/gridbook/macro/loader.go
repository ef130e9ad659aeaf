package macro

import (
	"context"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/gridbook/gridbook-go/pkg/gridbook/registry"
)

// LoadedModule records one successfully instantiated macro module.
type LoadedModule struct {
	// ID is the caller-supplied module id.
	ID string
	// URL is the location the module bytes were fetched from.
	URL string
	// ExportedNames lists the module's callable exports in stable order.
	ExportedNames []string

	runtime ModuleRuntime
}

// Loader fetches and instantiates binary modules, wrapping each numeric
// export as a registered cell function. Loading the same module id again
// replaces its table entry and re-registers all derived functions;
// concurrent loads of one id resolve last-write-wins.
type Loader struct {
	registry *registry.Registry
	inst     Instantiator
	client   *http.Client
	logger   *log.Logger

	mu      sync.Mutex
	modules map[string]*LoadedModule
}

// NewLoader creates a loader registering functions into reg. A nil client
// falls back to http.DefaultClient; a nil logger discards.
func NewLoader(reg *registry.Registry, inst Instantiator, client *http.Client, logger *log.Logger) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Loader{
		registry: reg,
		inst:     inst,
		client:   client,
		logger:   logger,
		modules:  make(map[string]*LoadedModule),
	}
}

// FunctionID is the registry id synthesized for a module export.
func FunctionID(moduleID, export string) string {
	return "wasm:" + moduleID + "." + export
}

// Load fetches, instantiates, and registers a macro module.
func (l *Loader) Load(ctx context.Context, moduleID, url string) (*LoadedModule, error) {
	moduleID = strings.TrimSpace(moduleID)
	url = strings.TrimSpace(url)
	if moduleID == "" {
		return nil, &ValidationError{Field: "module id", Reason: "must be a non-empty string"}
	}
	if url == "" {
		return nil, &ValidationError{Field: "url", Reason: "must be a non-empty string"}
	}

	binary, err := l.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	rt, err := l.inst.Instantiate(ctx, binary)
	if err != nil {
		return nil, &InstantiationError{ModuleID: moduleID, Err: err}
	}
	if !rt.HasMemory() {
		rt.Close(ctx)
		return nil, &ContractError{ModuleID: moduleID, Reason: "module must export memory"}
	}
	exports := rt.Exports()
	if len(exports) == 0 {
		rt.Close(ctx)
		return nil, &ContractError{ModuleID: moduleID, Reason: "module must export at least one function"}
	}

	mod := &LoadedModule{ID: moduleID, URL: url, ExportedNames: exports, runtime: rt}
	for _, name := range exports {
		l.registry.Register(
			FunctionID(moduleID, name),
			name,
			marshalHandler(rt, name),
			registry.FunctionMeta{Kind: "wasm", Module: moduleID},
		)
	}

	l.mu.Lock()
	prev := l.modules[moduleID]
	l.modules[moduleID] = mod
	l.mu.Unlock()
	if prev != nil {
		prev.runtime.Close(ctx)
	}

	l.logger.Info("loaded macro module", "id", moduleID, "exports", len(exports))
	return mod, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{URL: url, Status: resp.StatusCode}
	}
	binary, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return binary, nil
}

// Module returns the loaded module recorded under id.
func (l *Loader) Module(id string) (*LoadedModule, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	mod, ok := l.modules[id]
	return mod, ok
}

// Modules lists loaded modules sorted by id.
func (l *Loader) Modules() []*LoadedModule {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*LoadedModule, 0, len(l.modules))
	for _, mod := range l.modules {
		out = append(out, mod)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
