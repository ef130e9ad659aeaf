package macro

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gridbook/gridbook-go/pkg/gridbook/models"
	"github.com/gridbook/gridbook-go/pkg/gridbook/registry"
)

const (
	// pageSize is the wasm linear-memory page size in bytes.
	pageSize = 65536
	// slotSize is one marshaled f64 slot.
	slotSize = 8
	// styleRecordSize is the output style record: u32 flags, u32
	// background RGB, u32 text RGB.
	styleRecordSize = 12

	styleFlagBackground = 1 << 0
	styleFlagTextColor  = 1 << 1
)

// marshalHandler wraps one module export as a cell-function handler. It
// writes the numeric interpretation of the resolved source rows into
// consecutive f64 slots at offset zero, invokes the export with
// (0, count) — plus a style-record offset when the export takes a third
// argument — and turns a finite return value into the destination cell's
// value.
func marshalHandler(rt ModuleRuntime, export string) registry.Handler {
	return func(ctx registry.Context, args models.FunctionArgs, dest registry.Target) (registry.Result, error) {
		refs := registry.SourceRefs(ctx, args, dest)
		vals := registry.NumericValues(ctx, refs)
		count := uint32(len(vals))

		styled := rt.Arity(export) >= 3
		styleOffset := count * slotSize
		need := styleOffset
		if styled {
			need += styleRecordSize
		}
		if !ensureCapacity(rt, need) {
			return registry.Result{}, &registry.ComputationError{
				Function: export,
				Err:      fmt.Errorf("cannot grow module memory to %d bytes", need),
			}
		}

		buf := make([]byte, len(vals)*slotSize)
		for i, v := range vals {
			binary.LittleEndian.PutUint64(buf[i*slotSize:], math.Float64bits(v))
		}
		if len(buf) > 0 && !rt.Write(0, buf) {
			return registry.Result{}, &registry.ComputationError{
				Function: export,
				Err:      fmt.Errorf("write of %d slots failed", len(vals)),
			}
		}

		callArgs := []uint64{0, uint64(count)}
		if styled {
			// Zero the style record so stale flags from a prior call
			// cannot leak through.
			rt.Write(styleOffset, make([]byte, styleRecordSize))
			callArgs = append(callArgs, uint64(styleOffset))
		}

		value, hasValue, err := rt.Invoke(context.Background(), export, callArgs...)
		if err != nil {
			return registry.Result{}, &registry.ComputationError{Function: export, Err: err}
		}

		res := registry.Result{}
		if hasValue {
			res.Value = registry.FormatNumber(value)
		}
		if styled {
			res.Style = readStyleRecord(rt, styleOffset)
		}
		return res, nil
	}
}

// ensureCapacity grows linear memory page-by-page until it holds need
// bytes. Growth is monotonic; memory never shrinks.
func ensureCapacity(rt ModuleRuntime, need uint32) bool {
	for rt.Size() < need {
		if !rt.Grow(1) {
			return false
		}
	}
	return true
}

// readStyleRecord reads the style record back and converts set fields into
// a style update. Returns nil when no field is flagged.
func readStyleRecord(rt ModuleRuntime, offset uint32) *registry.StyleUpdate {
	rec, ok := rt.Read(offset, styleRecordSize)
	if !ok {
		return nil
	}
	flags := binary.LittleEndian.Uint32(rec[0:4])
	if flags == 0 {
		return nil
	}
	style := &registry.StyleUpdate{}
	if flags&styleFlagBackground != 0 {
		style.Background = rgbString(binary.LittleEndian.Uint32(rec[4:8]))
	}
	if flags&styleFlagTextColor != 0 {
		style.TextColor = rgbString(binary.LittleEndian.Uint32(rec[8:12]))
	}
	return style
}

func rgbString(rgb uint32) string {
	return fmt.Sprintf("#%06x", rgb&0xffffff)
}
