package application

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/skillguard/internal/adapters/outbound/codec"
	"github.com/abdidvp/skillguard/internal/domain"
	"github.com/abdidvp/skillguard/internal/domain/contract"
)

func newValidateService(t *testing.T) *ValidateService {
	t.Helper()
	svc, err := NewValidateService(codec.New(), domain.DefaultConfig(), nil)
	require.NoError(t, err)
	return svc
}

// intDecoder yields Go ints instead of json.Number. The payment table
// accepts them as integers but its typed view does not, so the validator
// panics after its checks pass.
type intDecoder struct{}

func (intDecoder) Decode(string, []byte) (domain.Request, *domain.Entry) {
	return domain.Request{
		"expected_reference": "R1",
		"expected_amount":    5000,
		"verify_payload": map[string]any{
			"status":    "success",
			"reference": "R1",
			"amount":    5000,
		},
	}, nil
}

func TestRun_Scenarios(t *testing.T) {
	svc := newValidateService(t)
	tests := []struct {
		name  string
		tool  string
		input string
		ok    bool
		code  domain.Code
	}{
		{"A", contract.ToolPaymentContract, `{"expected_reference":"R1","expected_amount":5000,"verify_payload":{"status":"success","reference":"R1","amount":5000}}`, true, ""},
		{"B", contract.ToolPaymentContract, `{"expected_reference":"R1","expected_amount":5000,"verify_payload":{"status":"success","reference":"R1","amount":4999}}`, false, domain.CodeValueMismatch},
		{"C", contract.ToolPaymentContract, `{"order_status":"paid","expected_reference":"R1","expected_amount":5000,"verify_payload":{"status":"success","reference":"R1","amount":5000}}`, true, ""},
		{"D", contract.ToolWebhookContract, `{"raw_body_enabled":false,"signature_header_name":"hmac-sha256","headers":{}}`, false, domain.CodeRawBodyRequired},
		{"E", contract.ToolRedirectURI, `{"backend_base_url":"https://api.example.com","redirect_uri":"https://evil.example.net/callback"}`, false, domain.CodeRedirectURIMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := svc.Run(tt.tool, "test", []byte(tt.input), contract.Options{})
			assert.Equal(t, tt.ok, r.OK())
			assert.Equal(t, tt.tool, r.Tool)
			if tt.code != "" {
				assert.True(t, r.HasCode(tt.code), "errors: %v", r.Errors)
			}
		})
	}
}

func TestRun_SettledOrderSkipsComparison(t *testing.T) {
	r := newValidateService(t).Run(contract.ToolPaymentContract, "test",
		[]byte(`{"order_status":"paid","expected_reference":"R1","expected_amount":5000,"verify_payload":{"status":"success","reference":"R1","amount":1}}`),
		contract.Options{})
	assert.True(t, r.OK())
	assert.False(t, r.HasCode(domain.CodeValueMismatch))
	assert.Equal(t, "no-op", r.Data["action"])
}

func TestRun_DecodeFailure(t *testing.T) {
	r := newValidateService(t).Run(contract.ToolRedirectURI, "req.json", nil, contract.Options{})
	require.Len(t, r.Errors, 1)
	assert.Equal(t, domain.CodeEmptyInput, r.Errors[0].Code)
	assert.Equal(t, "no bytes read from req.json", r.Errors[0].Message)
}

func TestValidate_UnknownTool(t *testing.T) {
	r := newValidateService(t).Validate("validate-everything", domain.Request{}, contract.Options{})
	require.Len(t, r.Errors, 1)
	assert.Equal(t, domain.CodeEnumViolation, r.Errors[0].Code)
	assert.Equal(t, "tool", r.Errors[0].PathString())
	assert.Equal(t, "validate-everything", r.Tool)
}

func TestValidate_UnknownSchema(t *testing.T) {
	r := newValidateService(t).Validate(contract.ToolOutputSchema, domain.Request{}, contract.Options{Schema: "nope"})
	require.Len(t, r.Errors, 1)
	assert.Equal(t, domain.CodeEnumViolation, r.Errors[0].Code)
	assert.Equal(t, "schema", r.Errors[0].PathString())
}

func TestValidate_PanicBecomesInternalError(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	svc, err := NewValidateService(intDecoder{}, domain.DefaultConfig(), logger)
	require.NoError(t, err)

	r := svc.Run(contract.ToolPaymentContract, "test", []byte("{}"), contract.Options{})
	require.Len(t, r.Errors, 1)
	assert.Equal(t, domain.CodeInternalError, r.Errors[0].Code)
	assert.Equal(t, contract.ToolPaymentContract, r.Tool)
	assert.Empty(t, r.Data)
	assert.Contains(t, logs.String(), "validator panicked")
}

func TestNewValidateService_RejectsBadRules(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Rules = map[string][]domain.RuleConfig{"nope": {{Path: "a"}}}
	_, err := NewValidateService(codec.New(), cfg, nil)
	assert.ErrorContains(t, err, "building validators")
}

func TestTools(t *testing.T) {
	assert.Len(t, newValidateService(t).Tools(), 7)
}
