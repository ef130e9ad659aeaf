package gridbook

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/gridbook/gridbook-go/pkg/gridbook/engine"
	"github.com/gridbook/gridbook-go/pkg/gridbook/macro"
	"github.com/gridbook/gridbook-go/pkg/gridbook/registry"
)

// Session bundles one editing session's collaborators: a function registry
// preloaded with the builtins, a macro loader registering into it, the state
// engine, and a parse broker for background document parses.
type Session struct {
	// Registry holds the session's cell functions.
	Registry *registry.Registry
	// Loader fetches and registers macro modules.
	Loader *macro.Loader
	// Engine is the spreadsheet state coordinator.
	Engine *engine.Engine
	// Broker runs document parses off the caller's execution context.
	Broker *engine.ParseBroker
}

// New creates a fully wired session.
func New(ctx context.Context, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	reg := registry.New()
	registry.RegisterBuiltins(reg)

	inst := opts.Instantiator
	if inst == nil {
		inst = macro.NewWazeroInstantiator(ctx)
	}
	loader := macro.NewLoader(reg, inst, opts.HTTPClient, logger)

	eng := engine.New(engine.Options{
		Registry:   reg,
		Clipboard:  opts.Clipboard,
		FillPolicy: opts.FillPolicy,
		Logger:     logger,
	})

	return &Session{
		Registry: reg,
		Loader:   loader,
		Engine:   eng,
		Broker:   &engine.ParseBroker{},
	}
}

// LoadMacros loads each configured macro module in order, stopping at the
// first failure.
func (s *Session) LoadMacros(ctx context.Context, modules []MacroRef) error {
	for _, m := range modules {
		if _, err := s.Loader.Load(ctx, m.ID, m.URL); err != nil {
			return err
		}
	}
	return nil
}

// MacroRef names one macro module to load at session start.
type MacroRef struct {
	// ID is the module id functions are namespaced under.
	ID string `mapstructure:"id" yaml:"id"`
	// URL is where the module binary is fetched from.
	URL string `mapstructure:"url" yaml:"url"`
}
