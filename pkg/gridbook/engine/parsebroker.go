package engine

import (
	"sync/atomic"

	"github.com/gridbook/gridbook-go/pkg/gridbook/codec"
	"github.com/gridbook/gridbook-go/pkg/gridbook/models"
)

// ParseResult is the outcome of one asynchronous parse request, keyed by
// the id it was issued under.
type ParseResult struct {
	// ID is the request id.
	ID uint64
	// Sheets is the parsed workbook on success.
	Sheets []*models.Sheet
	// Err is the typed parse failure, if any.
	Err error
}

// ParseBroker runs workbook parses off the caller's execution context so a
// large document does not block it. Requests are numbered monotonically; a
// result is applied only when its id is still the latest issued, so a
// superseded in-flight parse is discarded by id. No cancellation beyond
// that discard is provided.
type ParseBroker struct {
	seq atomic.Uint64
}

// Submit issues a parse request and returns a channel delivering its single
// result.
func (b *ParseBroker) Submit(text string) <-chan ParseResult {
	id := b.seq.Add(1)
	ch := make(chan ParseResult, 1)
	go func() {
		sheets, err := codec.ParseWorkbook(text)
		ch <- ParseResult{ID: id, Sheets: sheets, Err: err}
	}()
	return ch
}

// Latest reports whether id is the most recently issued request.
func (b *ParseBroker) Latest(id uint64) bool {
	return b.seq.Load() == id
}

// ApplyParseResult installs an asynchronous parse result into the engine.
// It returns false without touching state when the result was superseded by
// a newer request or carries an error (the error becomes a notice).
func (e *Engine) ApplyParseResult(b *ParseBroker, res ParseResult) bool {
	if !b.Latest(res.ID) {
		return false
	}
	if res.Err != nil {
		e.setNotice(res.Err.Error())
		return false
	}
	sheets := res.Sheets
	if len(sheets) == 0 {
		sheets = []*models.Sheet{models.NewSheet("", 0)}
	}
	e.sheets = sheets
	e.active = 0
	e.resetTransient()
	return true
}
