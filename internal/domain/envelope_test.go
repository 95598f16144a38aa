package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/skillguard/internal/domain"
)

func TestNewEntry_FillsTemplateAndRemediation(t *testing.T) {
	e := domain.NewEntry(domain.CodeMissingField, "verify_payload.amount", "verify_payload.amount")

	assert.Equal(t, domain.CodeMissingField, e.Code)
	assert.Equal(t, "missing required field: verify_payload.amount", e.Message)
	require.NotNil(t, e.Path)
	assert.Equal(t, "verify_payload.amount", *e.Path)
	require.NotNil(t, e.Remediation)
	assert.Contains(t, *e.Remediation, "`verify_payload.amount`")
}

func TestNewEntry_EmptyPathIsNull(t *testing.T) {
	e := domain.NewEntry(domain.CodeInvalidJSON, "", "unexpected EOF")
	assert.Nil(t, e.Path)
	assert.Equal(t, "", e.PathString())

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"path":null`)
}

func TestNewEntry_UnknownCodePanics(t *testing.T) {
	assert.Panics(t, func() { domain.NewEntry("NOPE", "") })
}

func TestResult_AddRoutesBySeverity(t *testing.T) {
	r := domain.NewResult("validate-payment-contract")
	assert.True(t, r.OK())

	r.Add(domain.NewEntry(domain.CodeUnmappedCredentialField, "credentials.x", "unmapped"))
	assert.True(t, r.OK())
	assert.Len(t, r.Warnings, 1)

	r.Add(domain.NewEntry(domain.CodeValueMismatch, "verify_payload.amount", "a", "b"))
	assert.False(t, r.OK())
	assert.Len(t, r.Errors, 1)
	assert.True(t, r.HasCode(domain.CodeValueMismatch))
	assert.Equal(t, 1, r.CountCode(domain.CodeUnmappedCredentialField))
	assert.False(t, r.HasCode(domain.CodeInternalError))
}

func TestResult_AddAllSkipsNil(t *testing.T) {
	r := domain.NewResult("t")
	e := domain.NewEntry(domain.CodeMissingField, "a", "a")
	r.AddAll(nil, &e, nil)
	assert.Len(t, r.Errors, 1)
}

func TestResult_MarshalsAsEnvelope(t *testing.T) {
	r := domain.NewResult("validate-redirect-uri")
	r.Set("action", "redirect-uri-valid")

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var env map[string]any
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, true, env["ok"])
	assert.Equal(t, "validate-redirect-uri", env["tool"])
	assert.Equal(t, []any{}, env["errors"])
	assert.Equal(t, []any{}, env["warnings"])
	assert.Equal(t, map[string]any{"action": "redirect-uri-valid"}, env["result"])
}

func TestResult_ZeroValueEnvelopeHasEmptyCollections(t *testing.T) {
	env := (&domain.Result{Tool: "t"}).Envelope()
	assert.NotNil(t, env.Errors)
	assert.NotNil(t, env.Warnings)
	assert.NotNil(t, env.Result)
	assert.True(t, env.OK)
}

func TestFailure(t *testing.T) {
	r := domain.Failure("t", domain.NewEntry(domain.CodeInternalError, "", "boom"))
	assert.False(t, r.OK())
	assert.Equal(t, "internal error: boom", r.Errors[0].Message)
}
