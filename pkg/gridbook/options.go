// Package gridbook assembles the spreadsheet sandbox engine: workbook and
// clipboard codecs, the selection model, the cell-function registry, the
// macro module loader, and the state coordinator.
package gridbook

import (
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/gridbook/gridbook-go/pkg/gridbook/engine"
	"github.com/gridbook/gridbook-go/pkg/gridbook/macro"
	"github.com/gridbook/gridbook-go/pkg/gridbook/selection"
)

// Options configures a Session.
type Options struct {
	// HTTPClient fetches macro module bytes. Nil uses http.DefaultClient.
	HTTPClient *http.Client
	// Clipboard overrides the system clipboard provider, mainly for tests.
	Clipboard engine.Clipboard
	// FillPolicy is the fill-drag tie-break policy. Nil prefers vertical.
	FillPolicy selection.TiebreakPolicy
	// Instantiator overrides the wasm runtime, mainly for tests. Nil uses
	// wazero.
	Instantiator macro.Instantiator
	// Logger receives structured logs. Nil discards.
	Logger *log.Logger
}

// DefaultOptions returns the default session options.
func DefaultOptions() Options {
	return Options{}
}
