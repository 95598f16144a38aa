package rules

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/abdidvp/skillguard/internal/domain"
)

// FieldSpec declares the checks for one dotted path.
type FieldSpec struct {
	Path     string
	Required bool
	// NonEmpty treats an empty string as absent.
	NonEmpty bool
	Type     string
	// Equals is an expected literal; a mismatch is reported as an enum
	// violation against the single allowed value.
	Equals string
	OneOf  []string
	// When is an expr-lang condition over the request. The spec is skipped
	// when it evaluates to false.
	When string
	// MissingCode replaces MISSING_FIELD for absent required fields.
	MissingCode domain.Code
}

// Table is a compiled, immutable list of field specs.
type Table struct {
	specs []compiledSpec
}

type compiledSpec struct {
	FieldSpec
	when *vm.Program
}

// NewTable validates paths and compiles When conditions.
func NewTable(specs ...FieldSpec) (*Table, error) {
	t := &Table{specs: make([]compiledSpec, 0, len(specs))}
	for i, s := range specs {
		if err := checkPath(s.Path); err != nil {
			return nil, fmt.Errorf("spec %d: %w", i, err)
		}
		if s.MissingCode != "" {
			if _, ok := domain.Lookup(s.MissingCode); !ok {
				return nil, fmt.Errorf("spec %d (%s): unregistered code %q", i, s.Path, s.MissingCode)
			}
		}
		cs := compiledSpec{FieldSpec: s}
		if strings.TrimSpace(s.When) != "" {
			prog, err := expr.Compile(s.When, expr.AllowUndefinedVariables(), expr.AsBool())
			if err != nil {
				return nil, fmt.Errorf("spec %d (%s): compile when %q: %w", i, s.Path, s.When, err)
			}
			cs.when = prog
		}
		t.specs = append(t.specs, cs)
	}
	return t, nil
}

// MustTable is NewTable for static tables; a bad table is a defect.
func MustTable(specs ...FieldSpec) *Table {
	t, err := NewTable(specs...)
	if err != nil {
		panic(fmt.Sprintf("rules: %v", err))
	}
	return t
}

// Extend returns a table holding t's specs followed by other's.
func (t *Table) Extend(other *Table) *Table {
	if other == nil {
		return t
	}
	out := &Table{specs: make([]compiledSpec, 0, len(t.specs)+len(other.specs))}
	out.specs = append(out.specs, t.specs...)
	out.specs = append(out.specs, other.specs...)
	return out
}

// Len returns the number of specs.
func (t *Table) Len() int { return len(t.specs) }

// Outcome is the result of evaluating a table.
type Outcome struct {
	Entries []domain.Entry
	failed  map[string]bool
}

// Failed reports whether any check on path, or on a path below it, failed.
func (o Outcome) Failed(path string) bool {
	if o.failed[path] {
		return true
	}
	prefix := path + "."
	for p := range o.failed {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// AnyFailed reports whether any of paths failed.
func (o Outcome) AnyFailed(paths ...string) bool {
	for _, p := range paths {
		if o.Failed(p) {
			return true
		}
	}
	return false
}

// OK reports whether every check passed.
func (o Outcome) OK() bool { return len(o.failed) == 0 }

// AddTo records the outcome's entries on r.
func (o Outcome) AddTo(r *domain.Result) {
	for _, e := range o.Entries {
		r.Add(e)
	}
}

// Evaluate runs every applicable spec against req. Checks on one path stop
// at the first failure; other paths are still checked.
func (t *Table) Evaluate(req domain.Request) Outcome {
	out := Outcome{failed: map[string]bool{}}
	var env map[string]any
	for _, s := range t.specs {
		if s.when != nil {
			if env == nil {
				env = exprEnv(req)
			}
			if !conditionHolds(s.when, env) {
				continue
			}
		}
		if e := s.check(req); e != nil {
			out.Entries = append(out.Entries, *e)
			out.failed[s.Path] = true
		}
	}
	return out
}

func (s compiledSpec) check(req domain.Request) *domain.Entry {
	v, ok := req.Lookup(s.Path)
	if ok && s.NonEmpty {
		if str, isStr := v.(string); isStr && strings.TrimSpace(str) == "" {
			ok = false
		}
	}
	if !ok {
		if !s.Required {
			return nil
		}
		return s.missing()
	}
	if s.Type != "" {
		if e := RequireType(req, s.Path, s.Type); e != nil {
			return e
		}
	}
	if s.Equals != "" {
		if e := RequireEnum(req, s.Path, []string{s.Equals}); e != nil {
			return e
		}
	}
	if len(s.OneOf) > 0 {
		return RequireEnum(req, s.Path, s.OneOf)
	}
	return nil
}

func (s compiledSpec) missing() *domain.Entry {
	code := s.MissingCode
	if code == "" {
		code = domain.CodeMissingField
	}
	arg := s.Path
	if code == domain.CodeMissingSignatureHeader {
		segs := domain.SplitPath(s.Path)
		arg = segs[len(segs)-1]
	}
	e := domain.NewEntry(code, s.Path, arg)
	return &e
}

// conditionHolds fails closed: a condition that errors at runtime applies
// the spec.
func conditionHolds(prog *vm.Program, env map[string]any) bool {
	out, err := expr.Run(prog, env)
	if err != nil {
		return true
	}
	b, ok := out.(bool)
	return !ok || b
}

func checkPath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}
	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			return fmt.Errorf("malformed path %q", path)
		}
	}
	return nil
}

// exprEnv copies req with json.Number converted to int64 or float64 so
// expressions can compare numbers.
func exprEnv(req domain.Request) map[string]any {
	env, _ := plain(map[string]any(req)).(map[string]any)
	return env
}

func plain(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = plain(x[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = plain(val)
		}
		return out
	}
	return v
}
