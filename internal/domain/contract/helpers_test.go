package contract_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abdidvp/skillguard/internal/domain"
	"github.com/abdidvp/skillguard/internal/domain/contract"
)

// request decodes src the way the codec does, keeping numbers exact.
func request(t *testing.T, src string) domain.Request {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader([]byte(src)))
	dec.UseNumber()
	var req domain.Request
	require.NoError(t, dec.Decode(&req))
	return req
}

func validate(t *testing.T, tool, src string) *domain.Result {
	t.Helper()
	return validateWith(t, domain.DefaultConfig(), contract.Options{}, tool, src)
}

func validateWith(t *testing.T, cfg domain.Config, opts contract.Options, tool, src string) *domain.Result {
	t.Helper()
	reg, err := contract.NewRegistry(cfg)
	require.NoError(t, err)
	v, err := reg.Validator(tool, opts)
	require.NoError(t, err)
	return v.Validate(request(t, src))
}

func errorCodes(r *domain.Result) []domain.Code {
	out := make([]domain.Code, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Code
	}
	return out
}

func warningCodes(r *domain.Result) []domain.Code {
	out := make([]domain.Code, len(r.Warnings))
	for i, e := range r.Warnings {
		out[i] = e.Code
	}
	return out
}
