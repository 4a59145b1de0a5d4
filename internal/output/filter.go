package output

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Where filters result rows with a compiled boolean expression before they
// reach the sinks. Expressions see the flattened row fields, e.g.:
//
//	status == "FAIL" && severity == "high"
//	weight >= 4 || standard == "PCI-DSS"
type Where struct {
	src     string
	program *vm.Program
}

// NewWhere compiles a filter expression. An empty source returns a nil filter
// that callers should treat as "match everything".
func NewWhere(src string) (*Where, error) {
	if src == "" {
		return nil, nil
	}
	program, err := expr.Compile(src, expr.Env(whereEnv(ResultRow{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid --where expression: %w", err)
	}
	return &Where{src: src, program: program}, nil
}

// Match reports whether the row satisfies the expression.
func (w *Where) Match(row ResultRow) (bool, error) {
	if w == nil {
		return true, nil
	}
	out, err := expr.Run(w.program, whereEnv(row))
	if err != nil {
		return false, fmt.Errorf("evaluate --where expression: %w", err)
	}
	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("--where expression did not produce a boolean")
	}
	return matched, nil
}

func whereEnv(row ResultRow) map[string]any {
	return map[string]any{
		"file":             row.File,
		"rule_id":          row.RuleID,
		"standard":         row.Standard,
		"control_id":       row.ControlID,
		"vendor":           row.Vendor,
		"category":         row.Category,
		"severity":         row.Severity,
		"weight":           row.Weight,
		"status":           row.Status,
		"penalty":          row.Penalty,
		"weighted_penalty": row.WeightedPenalty,
	}
}
