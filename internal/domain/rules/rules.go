// Package rules holds the field-check primitives every validator composes:
// presence, JSON type, cross-field equality and enum membership. A FieldSpec
// table is evaluated uniformly, so adding a check is a new declaration, not
// new control flow.
package rules

import (
	"fmt"
	"strings"

	"github.com/abdidvp/skillguard/internal/domain"
)

// Require reports MISSING_FIELD when path does not resolve.
func Require(req domain.Request, path string) *domain.Entry {
	if req.Has(path) {
		return nil
	}
	e := domain.NewEntry(domain.CodeMissingField, path, path)
	return &e
}

// RequireType reports TYPE_MISMATCH when path resolves to the wrong JSON
// type, or to a number the envelope cannot echo exactly. An absent field
// is left to Require.
func RequireType(req domain.Request, path, want string) *domain.Entry {
	v, ok := req.Lookup(path)
	if !ok {
		return nil
	}
	if !domain.IsType(v, want) {
		e := domain.NewEntry(domain.CodeTypeMismatch, path, path, article(want), domain.TypeOf(v))
		return &e
	}
	if (want == domain.TypeInteger || want == domain.TypeNumber) && !domain.InExactRange(v) {
		e := domain.NewEntry(domain.CodeTypeMismatch, path, path,
			fmt.Sprintf("%s within ±%d", article(want), domain.MaxExactInteger),
			"a number outside that range")
		return &e
	}
	return nil
}

// RequireEqual reports VALUE_MISMATCH, located at bPath, when both paths
// resolve and their values differ.
func RequireEqual(req domain.Request, aPath, bPath string) *domain.Entry {
	a, okA := req.Lookup(aPath)
	b, okB := req.Lookup(bPath)
	if !okA || !okB || domain.ValuesEqual(a, b) {
		return nil
	}
	e := domain.NewEntry(domain.CodeValueMismatch, bPath,
		fmt.Sprintf("%s (%s)", bPath, domain.Render(b)),
		fmt.Sprintf("%s (%s)", aPath, domain.Render(a)))
	return &e
}

// RequireEnum reports ENUM_VIOLATION when path resolves to a value outside
// allowed. Only strings can be members.
func RequireEnum(req domain.Request, path string, allowed []string) *domain.Entry {
	v, ok := req.Lookup(path)
	if !ok {
		return nil
	}
	if s, isStr := v.(string); isStr && contains(allowed, s) {
		return nil
	}
	e := domain.NewEntry(domain.CodeEnumViolation, path, path, FormatSet(allowed), domain.Render(v))
	return &e
}

// FormatSet renders an allowed-value set for messages.
func FormatSet(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func article(jsonType string) string {
	switch jsonType {
	case domain.TypeObject, domain.TypeArray, domain.TypeInteger:
		return "an " + jsonType
	case domain.TypeNull:
		return jsonType
	}
	return "a " + jsonType
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
