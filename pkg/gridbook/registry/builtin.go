package registry

import (
	"github.com/expr-lang/expr"

	"github.com/gridbook/gridbook-go/pkg/gridbook/models"
)

// RegisterBuiltins installs the standard numeric functions plus the
// expression evaluator.
func RegisterBuiltins(r *Registry) {
	meta := FunctionMeta{Kind: "builtin"}
	r.Register("sum", "Sum", numericHandler(func(vals []float64) (float64, bool) {
		total := 0.0
		for _, v := range vals {
			total += v
		}
		return total, true
	}), meta)
	r.Register("average", "Average", numericHandler(func(vals []float64) (float64, bool) {
		if len(vals) == 0 {
			return 0, false
		}
		total := 0.0
		for _, v := range vals {
			total += v
		}
		return total / float64(len(vals)), true
	}), meta)
	r.Register("min", "Minimum", numericHandler(func(vals []float64) (float64, bool) {
		if len(vals) == 0 {
			return 0, false
		}
		m := vals[0]
		for _, v := range vals[1:] {
			if v < m {
				m = v
			}
		}
		return m, true
	}), meta)
	r.Register("max", "Maximum", numericHandler(func(vals []float64) (float64, bool) {
		if len(vals) == 0 {
			return 0, false
		}
		m := vals[0]
		for _, v := range vals[1:] {
			if v > m {
				m = v
			}
		}
		return m, true
	}), meta)
	r.Register("count", "Count", numericHandler(func(vals []float64) (float64, bool) {
		return float64(len(vals)), true
	}), meta)
	r.Register("expr", "Expression", exprHandler, meta)
}

func numericHandler(compute func([]float64) (float64, bool)) Handler {
	return func(ctx Context, args models.FunctionArgs, dest Target) (Result, error) {
		vals := NumericValues(ctx, SourceRefs(ctx, args, dest))
		out, ok := compute(vals)
		if !ok {
			return Result{}, nil
		}
		return Result{Value: FormatNumber(out)}, nil
	}
}

// exprHandler evaluates args.Expression against an environment exposing the
// resolved values and their common aggregates.
func exprHandler(ctx Context, args models.FunctionArgs, dest Target) (Result, error) {
	vals := NumericValues(ctx, SourceRefs(ctx, args, dest))
	total, minV, maxV := 0.0, 0.0, 0.0
	for i, v := range vals {
		total += v
		if i == 0 || v < minV {
			minV = v
		}
		if i == 0 || v > maxV {
			maxV = v
		}
	}
	avg := 0.0
	if len(vals) > 0 {
		avg = total / float64(len(vals))
	}
	env := map[string]any{
		"values": vals,
		"sum":    total,
		"avg":    avg,
		"min":    minV,
		"max":    maxV,
		"count":  float64(len(vals)),
	}

	program, err := expr.Compile(args.Expression, expr.Env(env))
	if err != nil {
		return Result{}, &ComputationError{Function: "expr", Err: err}
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return Result{}, &ComputationError{Function: "expr", Err: err}
	}
	switch v := out.(type) {
	case float64:
		return Result{Value: FormatNumber(v)}, nil
	case int:
		return Result{Value: FormatNumber(float64(v))}, nil
	case bool:
		if v {
			return Result{Value: "true"}, nil
		}
		return Result{Value: "false"}, nil
	case string:
		return Result{Value: v}, nil
	default:
		return Result{}, nil
	}
}
