// Package filter evaluates CEL predicates against cache records.
package filter

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/twinfer/pcsx2-gamelist/pkg/gamelist"
)

// Filter is a compiled predicate over one record.
type Filter struct {
	expr    string
	program cel.Program
}

// Pool caches compiled filters by expression text.
type Pool struct {
	mu      sync.RWMutex
	filters map[string]*Filter
	env     *cel.Env
}

// VarMediaType is the CEL name of the record type field. "type" is a CEL
// builtin and cannot be declared as a variable.
const VarMediaType = "media_type"

// NewEnvironment declares every record field as a CEL variable under its
// field name, except type which is exposed as media_type. Text fields are
// strings, u64 fields are uints and the narrower integers are ints. Relational
// operators accept an int literal against a uint field.
func NewEnvironment() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.CrossTypeNumericComparisons(true),
		cel.Variable(gamelist.FieldPath, cel.StringType),
		cel.Variable(gamelist.FieldSerial, cel.StringType),
		cel.Variable(gamelist.FieldTitle, cel.StringType),
		cel.Variable(gamelist.FieldTitleSort, cel.StringType),
		cel.Variable(gamelist.FieldTitleEn, cel.StringType),
		cel.Variable(VarMediaType, cel.IntType),
		cel.Variable(gamelist.FieldRegion, cel.IntType),
		cel.Variable(gamelist.FieldTotalSize, cel.UintType),
		cel.Variable(gamelist.FieldLastModifiedTime, cel.UintType),
		cel.Variable(gamelist.FieldCRC, cel.IntType),
		cel.Variable(gamelist.FieldCompatibilityRating, cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return env, nil
}

// NewPool creates a pool over the record environment.
func NewPool() (*Pool, error) {
	env, err := NewEnvironment()
	if err != nil {
		return nil, err
	}
	return &Pool{env: env, filters: make(map[string]*Filter)}, nil
}

// Get returns the compiled filter for expr, compiling it on first use.
func (p *Pool) Get(expr string) (*Filter, error) {
	p.mu.RLock()
	if f, ok := p.filters[expr]; ok {
		p.mu.RUnlock()
		return f, nil
	}
	p.mu.RUnlock()

	ast, issues := p.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile filter %q: %w", expr, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("filter %q must evaluate to bool, got %s", expr, ast.OutputType())
	}
	program, err := p.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program for %q: %w", expr, err)
	}

	f := &Filter{expr: expr, program: program}
	p.mu.Lock()
	p.filters[expr] = f
	p.mu.Unlock()
	return f, nil
}

// Compile builds a standalone filter.
func Compile(expr string) (*Filter, error) {
	p, err := NewPool()
	if err != nil {
		return nil, err
	}
	return p.Get(expr)
}

// String returns the source expression.
func (f *Filter) String() string { return f.expr }

// Match reports whether r satisfies the filter.
func (f *Filter) Match(r gamelist.Record) (bool, error) {
	out, _, err := f.program.Eval(Activation(r))
	if err != nil {
		return false, fmt.Errorf("evaluating filter %q: %w", f.expr, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter %q returned %T, not bool", f.expr, out.Value())
	}
	return b, nil
}

// Activation converts r into CEL variables.
func Activation(r gamelist.Record) map[string]any {
	return map[string]any{
		gamelist.FieldPath:                r.Path,
		gamelist.FieldSerial:              r.Serial,
		gamelist.FieldTitle:               r.Title,
		gamelist.FieldTitleSort:           r.TitleSort,
		gamelist.FieldTitleEn:             r.TitleEn,
		VarMediaType:                      int64(r.Type),
		gamelist.FieldRegion:              int64(r.Region),
		gamelist.FieldTotalSize:           r.TotalSize,
		gamelist.FieldLastModifiedTime:    r.LastModifiedTime,
		gamelist.FieldCRC:                 int64(r.CRC),
		gamelist.FieldCompatibilityRating: int64(r.CompatibilityRating),
	}
}

// Apply keeps the records matching f, in order.
func Apply(f *Filter, records []gamelist.Record) ([]gamelist.Record, error) {
	out := make([]gamelist.Record, 0, len(records))
	for _, r := range records {
		ok, err := f.Match(r)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}
