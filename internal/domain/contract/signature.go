package contract

import (
	"github.com/abdidvp/skillguard/internal/domain"
	"github.com/abdidvp/skillguard/internal/domain/rules"
)

// ToolSignatureMode checks a Flutterwave webhook signature mode.
const ToolSignatureMode = "check-webhook-signature-mode"

// signatureModeTable declares the header each mode needs. Conditional
// requirements are When expressions, so a new mode is a new row.
var signatureModeTable = []rules.FieldSpec{
	{Path: "signature_mode", Required: true, Type: domain.TypeString, OneOf: []string{ModeVerifHash, ModeHMACSHA256}},
	{Path: "headers", Required: true, Type: domain.TypeObject},
	{Path: "raw_body_enabled", Type: domain.TypeBoolean},
}

var signatureHeaderTable = []rules.FieldSpec{
	{
		Path:        "headers." + ModeVerifHash,
		Required:    true,
		NonEmpty:    true,
		When:        `signature_mode == "verif-hash"`,
		MissingCode: domain.CodeMissingSignatureHeader,
	},
	{
		Path:        "headers." + flutterwaveHMACHeader,
		Required:    true,
		NonEmpty:    true,
		When:        `signature_mode == "hmac-sha256"`,
		MissingCode: domain.CodeMissingSignatureHeader,
	},
}

type signatureMode struct {
	cfg     domain.Config
	table   *rules.Table
	headers *rules.Table
}

func newSignatureMode(cfg domain.Config, extra *rules.Table) *signatureMode {
	return &signatureMode{
		cfg:     cfg,
		table:   rules.MustTable(signatureModeTable...).Extend(extra),
		headers: rules.MustTable(signatureHeaderTable...),
	}
}

func (v *signatureMode) Name() string { return ToolSignatureMode }

func (v *signatureMode) Description() string {
	return "Check that the webhook signature mode has its header, and raw body access for HMAC"
}

func (v *signatureMode) Validate(req domain.Request) *domain.Result {
	if r, ok := settledShortCircuit(ToolSignatureMode, req, v.cfg); ok {
		return r
	}
	r := domain.NewResult(ToolSignatureMode)

	req = canonicalHeaders(req)
	outcome := v.table.Evaluate(req)
	outcome.AddTo(r)

	mode, _ := req.String("signature_mode")
	if mode == ModeHMACSHA256 && !outcome.Failed("raw_body_enabled") {
		r.AddAll(requireRawBody(req, ModeHMACSHA256))
	}
	if !outcome.AnyFailed("signature_mode", "headers") {
		v.headers.Evaluate(req).AddTo(r)
	}

	if !r.OK() {
		return reject(r)
	}
	r.Set("action", "process-webhook")
	r.Set("signature_mode", mode)
	if mode == ModeHMACSHA256 {
		r.Set("signature_header", flutterwaveHMACHeader)
	} else {
		r.Set("signature_header", ModeVerifHash)
	}
	return r
}
