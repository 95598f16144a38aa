package contract

import (
	"encoding/json"
	"fmt"

	"github.com/abdidvp/skillguard/internal/domain"
	"github.com/abdidvp/skillguard/internal/domain/rules"
)

// Tool names of the payment family.
const (
	ToolPaymentContract = "validate-payment-contract"
	ToolVerifyResponse  = "validate-verify-response"
)

// paymentContract checks a gateway verify response against the order the
// merchant stored. validate-payment-contract and validate-verify-response
// share it and differ only in their reference key and default provider.
type paymentContract struct {
	name            string
	description     string
	referenceKey    string
	defaultProvider string
	cfg             domain.Config
	tables          map[string]*rules.Table
}

// paymentView is the typed form of a request that passed its table.
type paymentView struct {
	VerifyPayload struct {
		Status string      `json:"status"`
		Amount json.Number `json:"amount"`
	} `json:"verify_payload"`
}

func newPaymentContract(cfg domain.Config, extra *rules.Table) *paymentContract {
	return &paymentContract{
		name:            ToolPaymentContract,
		description:     "Check a payment verify response against the expected reference and amount before marking an order paid",
		referenceKey:    "expected_reference",
		defaultProvider: "paystack",
		cfg:             cfg,
		tables:          paymentTables("expected_reference", extra),
	}
}

func newVerifyResponse(cfg domain.Config, extra *rules.Table) *paymentContract {
	return &paymentContract{
		name:            ToolVerifyResponse,
		description:     "Check a transaction verify response (tx_ref, amount, status) before fulfilment",
		referenceKey:    "expected_tx_ref",
		defaultProvider: "flutterwave",
		cfg:             cfg,
		tables:          paymentTables("expected_tx_ref", extra),
	}
}

func paymentTables(referenceKey string, extra *rules.Table) map[string]*rules.Table {
	out := make(map[string]*rules.Table, len(paymentProviders))
	for name, p := range paymentProviders {
		out[name] = rules.MustTable(
			rules.FieldSpec{Path: referenceKey, Required: true, NonEmpty: true, Type: domain.TypeString},
			rules.FieldSpec{Path: "expected_amount", Required: true, Type: domain.TypeInteger},
			rules.FieldSpec{Path: "verify_payload", Required: true, Type: domain.TypeObject},
			rules.FieldSpec{Path: "verify_payload.status", Required: true, Type: domain.TypeString},
			rules.FieldSpec{Path: "verify_payload." + p.ReferenceField, Required: true, Type: domain.TypeString},
			rules.FieldSpec{Path: "verify_payload.amount", Required: true, Type: domain.TypeInteger},
		).Extend(extra)
	}
	return out
}

func (v *paymentContract) Name() string        { return v.name }
func (v *paymentContract) Description() string { return v.description }

func (v *paymentContract) Validate(req domain.Request) *domain.Result {
	if r, ok := settledShortCircuit(v.name, req, v.cfg); ok {
		return r
	}
	r := domain.NewResult(v.name)

	provider, ok := resolvePaymentProvider(req, r, v.defaultProvider)
	if !ok {
		return reject(r)
	}
	r.Set("provider", provider.Name)

	outcome := v.tables[provider.Name].Evaluate(req)
	outcome.AddTo(r)

	refPath := "verify_payload." + provider.ReferenceField
	if !outcome.AnyFailed(v.referenceKey, refPath) {
		r.AddAll(rules.RequireEqual(req, v.referenceKey, refPath))
	}
	if !outcome.AnyFailed("expected_amount", "verify_payload.amount") {
		r.AddAll(rules.RequireEqual(req, "expected_amount", "verify_payload.amount"))
	}

	pending := false
	if !outcome.Failed("verify_payload.status") {
		status, _ := req.String("verify_payload.status")
		switch {
		case contains(provider.SuccessStatuses, status):
		case contains(provider.PendingStatuses, status):
			pending = true
		default:
			r.AddAll(rules.RequireEnum(req, "verify_payload.status", provider.statusSet()))
		}
	}

	if !r.OK() {
		return reject(r)
	}

	var view paymentView
	if err := rules.Decode(req, &view); err != nil {
		panic(fmt.Sprintf("payment view: %v", err))
	}
	reference, _ := req.String(refPath)
	r.Set(provider.ReferenceField, reference)
	r.Set("amount", view.VerifyPayload.Amount)
	r.Set("status", view.VerifyPayload.Status)
	r.Set("idempotent", false)
	if pending {
		r.Set("action", "await-webhook")
		r.Set("settled", false)
		return r
	}
	r.Set("action", "mark-paid")
	r.Set("settled", true)
	return r
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
