package ingest

import (
	"fmt"

	"github.com/Veraticus/passbook/internal/common"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
)

// DefaultFilterExpression keeps completed orders and drops rows entered by
// the administrator account.
const DefaultFilterExpression = `status == "결제완료" && name != "관리자"`

// Row is the set of raw values a filter expression can see.
type Row struct {
	Status   string
	Name     string
	Category string
	Amount   int64
}

// Filter decides which export rows reach classification. A compiled Filter
// is safe for concurrent use.
type Filter struct {
	program    cel.Program
	expression string
}

// NewFilter compiles a CEL expression over status, name, category and
// amount. An empty expression accepts every row.
func NewFilter(expression string) (*Filter, error) {
	if expression == "" {
		return &Filter{}, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("status", cel.StringType),
		cel.Variable("name", cel.StringType),
		cel.Variable("category", cel.StringType),
		cel.Variable("amount", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: failed to compile filter %q: %w", common.ErrInvalidConfig, expression, issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("%w: filter %q must return bool, got %s", common.ErrInvalidConfig, expression, ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program for filter: %w", err)
	}

	return &Filter{program: program, expression: expression}, nil
}

// DefaultFilter returns the compiled default filter.
func DefaultFilter() *Filter {
	f, err := NewFilter(DefaultFilterExpression)
	if err != nil {
		panic(fmt.Sprintf("default filter does not compile: %v", err))
	}
	return f
}

// Expression returns the source expression.
func (f *Filter) Expression() string {
	return f.expression
}

// Match evaluates the filter for a row.
func (f *Filter) Match(row Row) (bool, error) {
	if f == nil || f.program == nil {
		return true, nil
	}

	out, _, err := f.program.Eval(map[string]any{
		"status":   row.Status,
		"name":     row.Name,
		"category": row.Category,
		"amount":   row.Amount,
	})
	if err != nil {
		return false, fmt.Errorf("failed to evaluate filter: %w", err)
	}

	b, ok := out.(types.Bool)
	if !ok {
		return false, fmt.Errorf("filter returned %s, expected bool", out.Type().TypeName())
	}
	return bool(b), nil
}
