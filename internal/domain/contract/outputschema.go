package contract

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"

	"github.com/abdidvp/skillguard/internal/domain"
	"github.com/abdidvp/skillguard/internal/domain/rules"
)

// ToolOutputSchema checks a payload against a declared output schema.
const ToolOutputSchema = "validate-output-schema"

type outputSchema struct {
	compiled *compiledSchema
	strict   bool
	table    *rules.Table
}

func newOutputSchema(schemaName string, strict bool, extra *rules.Table) (*outputSchema, error) {
	if schemaName == "" {
		schemaName = SchemaEnvelope
	}
	compiled, err := loadSchema(schemaName)
	if err != nil {
		return nil, err
	}
	return &outputSchema{
		compiled: compiled,
		strict:   strict,
		table:    rules.MustTable().Extend(extra),
	}, nil
}

func (v *outputSchema) Name() string { return ToolOutputSchema }

func (v *outputSchema) Description() string {
	return "Check a JSON payload against the result envelope or skill output schema"
}

func (v *outputSchema) Validate(req domain.Request) *domain.Result {
	r := domain.NewResult(ToolOutputSchema)
	r.Set("schema", v.compiled.name)
	v.table.Evaluate(req).AddTo(r)

	schemaEntries := v.compiled.check(map[string]any(req))
	for _, e := range schemaEntries {
		r.AddError(e)
	}

	for _, key := range sortedKeys(req) {
		if v.compiled.declared[key] {
			continue
		}
		e := domain.NewEntry(domain.CodeUnknownField, key, key)
		if v.strict {
			r.AddError(e)
		} else {
			r.AddWarning(e)
		}
	}

	if v.compiled.name == SchemaEnvelope && len(schemaEntries) == 0 {
		for _, e := range envelopeConsistency(req) {
			r.AddError(e)
		}
	}

	if !r.OK() {
		r.Set("action", "fix-output")
		return r
	}
	r.Set("action", "schema-valid")
	return r
}

// envelopeConsistency checks what the schema cannot express: ok must agree
// with errors, and warnings may only carry warning codes.
func envelopeConsistency(req domain.Request) []domain.Entry {
	var out []domain.Entry
	ok, _ := req.Lookup("ok")
	errs, _ := req.Lookup("errors")
	list, _ := errs.([]any)
	if okBool, isBool := ok.(bool); isBool && okBool != (len(list) == 0) {
		out = append(out, domain.NewEntry(domain.CodeValueMismatch, "ok",
			fmt.Sprintf("ok (%t)", okBool),
			fmt.Sprintf("errors (%d entries)", len(list))))
	}

	warningCodes := domain.CodesWithSeverity(domain.SeverityWarning)
	warns, _ := req.Lookup("warnings")
	items, _ := warns.([]any)
	for i, item := range items {
		obj, _ := domain.AsObject(item)
		code, _ := obj["code"].(string)
		if contains(warningCodes, code) {
			continue
		}
		path := fmt.Sprintf("warnings[%d].code", i)
		out = append(out, domain.NewEntry(domain.CodeEnumViolation, path,
			path, rules.FormatSet(warningCodes), domain.Render(code)))
	}
	return out
}

// check validates doc and maps every leaf schema error onto the taxonomy.
// The result is sorted by path so it does not depend on map order.
func (c *compiledSchema) check(doc any) []domain.Entry {
	err := c.schema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *sjsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []domain.Entry{domain.NewEntry(domain.CodeTypeMismatch, "", "payload", "valid against the "+c.name+" schema", err.Error())}
	}

	var out []domain.Entry
	seen := map[string]bool{}
	for _, cause := range flattenValidationErrors(ve) {
		for _, e := range schemaEntries(cause) {
			key := string(e.Code) + "\x00" + e.PathString()
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PathString() != out[j].PathString() {
			return out[i].PathString() < out[j].PathString()
		}
		return out[i].Code < out[j].Code
	})
	return out
}

func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}

func schemaEntries(ve *sjsonschema.ValidationError) []domain.Entry {
	path := instancePath(ve.InstanceLocation)
	switch k := ve.ErrorKind.(type) {
	case *kind.Required:
		out := make([]domain.Entry, 0, len(k.Missing))
		for _, field := range k.Missing {
			p := joinPath(path, field)
			out = append(out, domain.NewEntry(domain.CodeMissingField, p, p))
		}
		return out
	case *kind.Type:
		return []domain.Entry{domain.NewEntry(domain.CodeTypeMismatch, path,
			path, strings.Join(k.Want, " or "), k.Got)}
	case *kind.Enum:
		want := make([]string, len(k.Want))
		for i, w := range k.Want {
			want[i] = fmt.Sprint(w)
		}
		return []domain.Entry{domain.NewEntry(domain.CodeEnumViolation, path,
			path, rules.FormatSet(want), domain.Render(k.Got))}
	case *kind.Const:
		return []domain.Entry{domain.NewEntry(domain.CodeEnumViolation, path,
			path, rules.FormatSet([]string{fmt.Sprint(k.Want)}), domain.Render(k.Got))}
	case *kind.MinLength, *kind.Pattern:
		return []domain.Entry{domain.NewEntry(domain.CodeTypeMismatch, path,
			path, "a non-blank string", "a blank string")}
	}
	return []domain.Entry{domain.NewEntry(domain.CodeTypeMismatch, path,
		path, "valid against "+strings.Join(ve.ErrorKind.KeywordPath(), "/"), "a non-conforming value")}
}

// instancePath renders a JSON pointer location as a dotted path with
// bracketed array indexes: ["errors","0","code"] -> errors[0].code.
func instancePath(loc []string) string {
	var b strings.Builder
	for _, seg := range loc {
		if _, err := strconv.Atoi(seg); err == nil {
			b.WriteString("[" + seg + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

func joinPath(parent, field string) string {
	if parent == "" {
		return field
	}
	return parent + "." + field
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
