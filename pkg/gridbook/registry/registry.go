// Package registry holds the table of cell functions: named computations
// bound to cells that derive a display value from other cells. The registry
// is an explicitly constructed object passed by reference to its consumers;
// construct one at process start rather than relying on ambient state.
package registry

import (
	"math"
	"strconv"

	"github.com/gridbook/gridbook-go/pkg/gridbook/models"
)

// Context is the grid-access capability handed to function handlers.
// Cross-sheet references resolve against the named sheet's own row and
// column space; an empty sheet name means the active sheet.
type Context interface {
	// CellValue returns the stored value of a cell and whether it exists.
	CellValue(sheet string, row int, key string) (string, bool)
	// RowCount returns the number of rows on the named sheet.
	RowCount(sheet string) int
	// Columns returns the named sheet's derived column list.
	Columns(sheet string) []string
}

// Target is the destination cell a function computes into.
type Target struct {
	// Row is the destination row index on the active sheet.
	Row int
	// Key is the destination column key.
	Key string
}

// StyleUpdate is a presentational side effect a handler may emit alongside
// its value.
type StyleUpdate struct {
	// Background is a background color override, empty for none.
	Background string
	// TextColor is a text color override, empty for none.
	TextColor string
}

// Result is a handler's outcome: the display value and an optional style
// side effect.
type Result struct {
	// Value is the display value written to the destination cell.
	Value string
	// Style, when non-nil, updates the destination cell's overrides.
	Style *StyleUpdate
}

// Handler computes a scalar result from resolved arguments and grid access.
type Handler func(ctx Context, args models.FunctionArgs, dest Target) (Result, error)

// FunctionMeta carries provenance metadata for UI enumeration.
type FunctionMeta struct {
	// Kind is "builtin" or "wasm".
	Kind string
	// Module is the macro module id for wasm functions, empty for builtins.
	Module string
}

// RegisteredFunction is one registry entry.
type RegisteredFunction struct {
	// ID is the globally unique function identifier.
	ID string
	// Label is the human-readable name shown in menus.
	Label string
	// Handler computes the function.
	Handler Handler
	// Meta carries provenance metadata.
	Meta FunctionMeta
}

// Registry maps function ids to handlers, preserving registration order.
// Re-registration under an existing id overwrites in place, keeping the
// original position; entries are never removed individually.
type Registry struct {
	order []string
	funcs map[string]*RegisteredFunction
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{funcs: make(map[string]*RegisteredFunction)}
}

// Register adds or replaces a function. Overwriting is silent so reloading
// a macro module refreshes its functions.
func (r *Registry) Register(id, label string, handler Handler, meta FunctionMeta) {
	if _, ok := r.funcs[id]; !ok {
		r.order = append(r.order, id)
	}
	r.funcs[id] = &RegisteredFunction{ID: id, Label: label, Handler: handler, Meta: meta}
}

// Lookup returns the function registered under id.
func (r *Registry) Lookup(id string) (*RegisteredFunction, bool) {
	fn, ok := r.funcs[id]
	return fn, ok
}

// List returns all registered functions in registration order.
func (r *Registry) List() []RegisteredFunction {
	out := make([]RegisteredFunction, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.funcs[id])
	}
	return out
}

// Evaluate runs the function named by ref for the destination cell. The
// second return is false when no such function is registered. Handler
// failures are absorbed: a handler that errors out degrades to an empty
// display value, never a fatal error.
func (r *Registry) Evaluate(ctx Context, ref models.FunctionRef, dest Target) (Result, bool) {
	fn, ok := r.funcs[ref.Name]
	if !ok {
		return Result{}, false
	}
	res, err := safeCall(fn.Handler, ctx, ref.Args, dest)
	if err != nil {
		return Result{}, true
	}
	return res, true
}

// safeCall shields the registry from panicking handlers.
func safeCall(h Handler, ctx Context, args models.FunctionArgs, dest Target) (res Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			res = Result{}
			err = &ComputationError{Err: recoveredError(rec)}
		}
	}()
	return h(ctx, args, dest)
}

// ResolveRange produces the concrete cell references a handler should read:
// either the explicit cells list, or the target column (args.Key, defaulting
// to the destination's own column) bounded by the optional row span and
// clamped to the active sheet's row count.
func ResolveRange(ctx Context, args models.FunctionArgs, dest Target) []models.CellRef {
	if len(args.Cells) > 0 {
		refs := make([]models.CellRef, len(args.Cells))
		copy(refs, args.Cells)
		return refs
	}

	key := args.Key
	if key == "" {
		key = dest.Key
	}
	start, end := 0, ctx.RowCount("")-1
	if args.Rows != nil {
		if args.Rows.Start != nil {
			start = *args.Rows.Start
		}
		if args.Rows.End != nil {
			end = *args.Rows.End
		}
	}
	if start < 0 {
		start = 0
	}
	if last := ctx.RowCount("") - 1; end > last {
		end = last
	}

	var refs []models.CellRef
	for row := start; row <= end; row++ {
		refs = append(refs, models.CellRef{Row: row, Key: key})
	}
	return refs
}

// SourceRefs resolves args and excludes the destination cell itself, so a
// function never reads its own output. When exclusion empties the set the
// unfiltered set is used instead.
func SourceRefs(ctx Context, args models.FunctionArgs, dest Target) []models.CellRef {
	refs := ResolveRange(ctx, args, dest)
	filtered := refs[:0:0]
	for _, ref := range refs {
		if ref.Sheet == "" && ref.Row == dest.Row && ref.Key == dest.Key {
			continue
		}
		filtered = append(filtered, ref)
	}
	if len(filtered) == 0 {
		return refs
	}
	return filtered
}

// NumericValues reads the referenced cells as float64, coercing non-numeric
// or missing values to zero.
func NumericValues(ctx Context, refs []models.CellRef) []float64 {
	vals := make([]float64, len(refs))
	for i, ref := range refs {
		raw, ok := ctx.CellValue(ref.Sheet, ref.Row, ref.Key)
		if !ok {
			continue
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			vals[i] = f
		}
	}
	return vals
}

// FormatNumber renders a finite float as a cell value; non-finite numbers
// render empty.
func FormatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
