package registry

import (
	"testing"

	"github.com/gridbook/gridbook-go/pkg/gridbook/models"
)

func builtinRegistry() *Registry {
	r := New()
	RegisterBuiltins(r)
	return r
}

func TestBuiltinSum(t *testing.T) {
	r := builtinRegistry()
	start, end := 1, 3
	res, ok := r.Evaluate(amountGrid(), models.FunctionRef{
		Name: "sum",
		Args: models.FunctionArgs{Key: "amount", Rows: &models.RowSpan{Start: &start, End: &end}},
	}, Target{Row: 0, Key: "total"})

	if !ok {
		t.Fatal("sum not registered")
	}
	// Rows 1-3 of amount: 20 + 30 + 0 ("oops" coerces to zero).
	if res.Value != "50" {
		t.Errorf("sum = %q, want 50", res.Value)
	}
}

func TestBuiltinSumExcludesDestination(t *testing.T) {
	r := builtinRegistry()
	res, ok := r.Evaluate(amountGrid(), models.FunctionRef{Name: "sum"}, Target{Row: 0, Key: "amount"})
	if !ok {
		t.Fatal("sum not registered")
	}
	// Full amount column minus the destination row 0: 20 + 30 + 0 + 5.
	if res.Value != "55" {
		t.Errorf("sum = %q, want 55", res.Value)
	}
}

func TestBuiltinAverageEmptyRange(t *testing.T) {
	r := builtinRegistry()
	g := &gridStub{sheets: map[string][]map[string]string{"main": nil}}
	res, ok := r.Evaluate(g, models.FunctionRef{Name: "average", Args: models.FunctionArgs{Key: "x"}}, Target{Key: "y"})
	if !ok || res.Value != "" {
		t.Errorf("average over nothing = %q, want empty", res.Value)
	}
}

func TestBuiltinMinMaxCount(t *testing.T) {
	r := builtinRegistry()
	g := amountGrid()
	dest := Target{Row: 0, Key: "out"}
	args := models.FunctionArgs{Key: "amount"}

	cases := []struct{ fn, want string }{
		{"min", "0"}, // "oops" coerces to zero
		{"max", "30"},
		{"count", "5"},
	}
	for _, c := range cases {
		res, ok := r.Evaluate(g, models.FunctionRef{Name: c.fn, Args: args}, dest)
		if !ok {
			t.Fatalf("%s not registered", c.fn)
		}
		if res.Value != c.want {
			t.Errorf("%s = %q, want %q", c.fn, res.Value, c.want)
		}
	}
}

func TestExprFunction(t *testing.T) {
	r := builtinRegistry()
	start, end := 0, 2
	res, ok := r.Evaluate(amountGrid(), models.FunctionRef{
		Name: "expr",
		Args: models.FunctionArgs{
			Key:        "amount",
			Rows:       &models.RowSpan{Start: &start, End: &end},
			Expression: "sum * 2 + count",
		},
	}, Target{Row: 4, Key: "out"})

	if !ok {
		t.Fatal("expr not registered")
	}
	// (10+20+30)*2 + 3
	if res.Value != "123" {
		t.Errorf("expr = %q, want 123", res.Value)
	}
}

func TestExprBadExpressionAbsorbed(t *testing.T) {
	r := builtinRegistry()
	res, ok := r.Evaluate(amountGrid(), models.FunctionRef{
		Name: "expr",
		Args: models.FunctionArgs{Key: "amount", Expression: "sum +* 2"},
	}, Target{Key: "out"})
	if !ok || res.Value != "" {
		t.Errorf("bad expression = %q, want empty value", res.Value)
	}
}
