package contract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/skillguard/internal/domain"
	"github.com/abdidvp/skillguard/internal/domain/contract"
)

func TestWebhookContract_RawBodyDisabled(t *testing.T) {
	r := validate(t, contract.ToolWebhookContract,
		`{"raw_body_enabled":false,"signature_header_name":"hmac-sha256","headers":{}}`)

	assert.False(t, r.OK())
	assert.True(t, r.HasCode(domain.CodeRawBodyRequired))
	assert.True(t, r.HasCode(domain.CodeMissingSignatureHeader))
	assert.True(t, r.HasCode(domain.CodeEnumViolation), "hmac-sha256 is not the paystack header")
	assert.Equal(t, "reject", r.Data["action"])
}

func TestWebhookContract_RawBodyAbsent(t *testing.T) {
	r := validate(t, contract.ToolWebhookContract,
		`{"signature_header_name":"x-paystack-signature","headers":{"x-paystack-signature":"abc"}}`)

	assert.Equal(t, []domain.Code{domain.CodeRawBodyRequired}, errorCodes(r))
	assert.Contains(t, r.Errors[0].Message, "HMAC-SHA512")
}

func TestWebhookContract_RawBodyWrongType(t *testing.T) {
	r := validate(t, contract.ToolWebhookContract,
		`{"raw_body_enabled":"true","signature_header_name":"x-paystack-signature","headers":{"x-paystack-signature":"abc"}}`)

	assert.Equal(t, []domain.Code{domain.CodeTypeMismatch}, errorCodes(r))
}

func TestWebhookContract_HeaderNamesIgnoreCase(t *testing.T) {
	r := validate(t, contract.ToolWebhookContract,
		`{"raw_body_enabled":true,"signature_header_name":"X-Paystack-Signature","headers":{"X-PAYSTACK-SIGNATURE":"abc"}}`)

	assert.True(t, r.OK(), "errors: %v", r.Errors)
	assert.Equal(t, "process-webhook", r.Data["action"])
	assert.Equal(t, "x-paystack-signature", r.Data["signature_header"])
}

func TestWebhookContract_EmptySignatureHeader(t *testing.T) {
	r := validate(t, contract.ToolWebhookContract,
		`{"raw_body_enabled":true,"signature_header_name":"x-paystack-signature","headers":{"x-paystack-signature":""}}`)

	require.Equal(t, []domain.Code{domain.CodeMissingSignatureHeader}, errorCodes(r))
	assert.Equal(t, "headers.x-paystack-signature", r.Errors[0].PathString())
}

func TestWebhookContract_EventMismatch(t *testing.T) {
	r := validate(t, contract.ToolWebhookContract, `{
		"raw_body_enabled": true,
		"signature_header_name": "x-paystack-signature",
		"headers": {"x-paystack-signature": "abc"},
		"expected_reference": "R1", "event_reference": "R2",
		"expected_amount": 5000, "event_amount": 5000
	}`)

	assert.Equal(t, []domain.Code{domain.CodeValueMismatch}, errorCodes(r))
	assert.Equal(t, "event_reference", r.Errors[0].PathString())
}

func TestWebhookContract_Flutterwave(t *testing.T) {
	r := validate(t, contract.ToolWebhookContract,
		`{"provider":"flutterwave","signature_header_name":"verif-hash","headers":{"verif-hash":"secret"}}`)

	assert.True(t, r.OK(), "errors: %v", r.Errors)
	assert.Equal(t, "flutterwave", r.Data["provider"])
}

func TestWebhookContract_SettledOrderShortCircuits(t *testing.T) {
	r := validate(t, contract.ToolWebhookContract, `{"order_status":"paid","headers":{}}`)
	assert.True(t, r.OK())
	assert.Equal(t, "no-op", r.Data["action"])
}

func TestSignatureMode_HMACNeedsRawBodyAndHeader(t *testing.T) {
	r := validate(t, contract.ToolSignatureMode,
		`{"signature_mode":"hmac-sha256","raw_body_enabled":false,"headers":{}}`)

	assert.ElementsMatch(t, []domain.Code{domain.CodeRawBodyRequired, domain.CodeMissingSignatureHeader}, errorCodes(r))
}

func TestSignatureMode_HMACPasses(t *testing.T) {
	r := validate(t, contract.ToolSignatureMode,
		`{"signature_mode":"hmac-sha256","raw_body_enabled":true,"headers":{"X-Flutterwave-Signature":"a1b2"}}`)

	assert.True(t, r.OK(), "errors: %v", r.Errors)
	assert.Equal(t, "x-flutterwave-signature", r.Data["signature_header"])
	assert.Equal(t, "hmac-sha256", r.Data["signature_mode"])
}

func TestSignatureMode_VerifHashIgnoresRawBody(t *testing.T) {
	r := validate(t, contract.ToolSignatureMode,
		`{"signature_mode":"verif-hash","raw_body_enabled":false,"headers":{"verif-hash":"secret"}}`)

	assert.True(t, r.OK(), "errors: %v", r.Errors)
	assert.Equal(t, "verif-hash", r.Data["signature_header"])
}

func TestSignatureMode_VerifHashMissingHeader(t *testing.T) {
	r := validate(t, contract.ToolSignatureMode, `{"signature_mode":"verif-hash","headers":{"x-flutterwave-signature":"a"}}`)

	require.Equal(t, []domain.Code{domain.CodeMissingSignatureHeader}, errorCodes(r))
	assert.Equal(t, "headers.verif-hash", r.Errors[0].PathString())
}

func TestSignatureMode_UnknownMode(t *testing.T) {
	r := validate(t, contract.ToolSignatureMode, `{"signature_mode":"md5","headers":{}}`)

	assert.Equal(t, []domain.Code{domain.CodeEnumViolation}, errorCodes(r))
}

func TestSignatureMode_MissingFields(t *testing.T) {
	r := validate(t, contract.ToolSignatureMode, `{}`)

	assert.Equal(t, []domain.Code{domain.CodeMissingField, domain.CodeMissingField}, errorCodes(r))
}
