package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Entry is one error or warning in an envelope. Path and Remediation
// serialize as null when unset.
type Entry struct {
	Code        Code    `json:"code"`
	Message     string  `json:"message"`
	Path        *string `json:"path"`
	Remediation *string `json:"remediation"`
}

// NewEntry builds an entry for a registered code. args fill the code's
// message template. It panics for codes outside the taxonomy.
func NewEntry(code Code, path string, args ...any) Entry {
	info := mustLookup(code)

	msg := info.Message
	if len(args) > 0 {
		msg = fmt.Sprintf(info.Message, args...)
	}
	e := Entry{Code: code, Message: msg}
	if path != "" {
		e.Path = &path
	}
	if info.Remediation != "" {
		rem := strings.ReplaceAll(info.Remediation, "{path}", path)
		e.Remediation = &rem
	}
	return e
}

// PathString returns the entry path or "" when it is null.
func (e Entry) PathString() string {
	if e.Path == nil {
		return ""
	}
	return *e.Path
}

// Envelope is the wire form of a Result.
type Envelope struct {
	OK       bool           `json:"ok"`
	Tool     string         `json:"tool"`
	Errors   []Entry        `json:"errors"`
	Warnings []Entry        `json:"warnings"`
	Result   map[string]any `json:"result"`
}

// Result accumulates the outcome of one validator run. OK is derived from
// Errors, so it cannot disagree with them.
type Result struct {
	Tool     string
	Errors   []Entry
	Warnings []Entry
	Data     map[string]any
}

// NewResult returns an empty, passing result for tool.
func NewResult(tool string) *Result {
	return &Result{
		Tool:     tool,
		Errors:   []Entry{},
		Warnings: []Entry{},
		Data:     map[string]any{},
	}
}

// OK reports whether no errors were recorded.
func (r *Result) OK() bool { return len(r.Errors) == 0 }

// Add records e as an error or a warning according to its taxonomy severity.
func (r *Result) Add(e Entry) {
	if info, ok := Lookup(e.Code); ok && info.Severity == SeverityWarning {
		r.AddWarning(e)
		return
	}
	r.AddError(e)
}

// AddError records e as an error regardless of its default severity.
func (r *Result) AddError(e Entry) { r.Errors = append(r.Errors, e) }

// AddWarning records e as a warning.
func (r *Result) AddWarning(e Entry) { r.Warnings = append(r.Warnings, e) }

// AddAll records every non-nil entry with Add.
func (r *Result) AddAll(entries ...*Entry) {
	for _, e := range entries {
		if e != nil {
			r.Add(*e)
		}
	}
}

// Set stores a validator-specific fact under the envelope's result object.
func (r *Result) Set(key string, value any) { r.Data[key] = value }

// HasCode reports whether any error or warning carries code.
func (r *Result) HasCode(code Code) bool {
	return r.CountCode(code) > 0
}

// CountCode counts errors and warnings carrying code.
func (r *Result) CountCode(code Code) int {
	n := 0
	for _, e := range r.Errors {
		if e.Code == code {
			n++
		}
	}
	for _, e := range r.Warnings {
		if e.Code == code {
			n++
		}
	}
	return n
}

// Envelope converts the result to its wire form.
func (r *Result) Envelope() Envelope {
	env := Envelope{
		OK:       r.OK(),
		Tool:     r.Tool,
		Errors:   r.Errors,
		Warnings: r.Warnings,
		Result:   r.Data,
	}
	if env.Errors == nil {
		env.Errors = []Entry{}
	}
	if env.Warnings == nil {
		env.Warnings = []Entry{}
	}
	if env.Result == nil {
		env.Result = map[string]any{}
	}
	return env
}

// MarshalJSON encodes the result as an Envelope.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Envelope())
}

// Failure returns a result holding a single error entry.
func Failure(tool string, e Entry) *Result {
	r := NewResult(tool)
	r.AddError(e)
	return r
}
