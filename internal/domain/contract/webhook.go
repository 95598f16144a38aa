package contract

import (
	"sort"
	"strings"

	"github.com/abdidvp/skillguard/internal/domain"
	"github.com/abdidvp/skillguard/internal/domain/rules"
)

// ToolWebhookContract checks a webhook route configuration and delivery.
const ToolWebhookContract = "check-webhook-contract"

type webhookContract struct {
	cfg     domain.Config
	tables  map[string]*rules.Table
	headers map[string]*rules.Table
}

var webhookEventPairs = [][2]string{
	{"expected_reference", "event_reference"},
	{"expected_amount", "event_amount"},
}

func newWebhookContract(cfg domain.Config, extra *rules.Table) *webhookContract {
	v := &webhookContract{
		cfg:     cfg,
		tables:  make(map[string]*rules.Table, len(paymentProviders)),
		headers: make(map[string]*rules.Table, len(paymentProviders)),
	}
	for name, p := range paymentProviders {
		v.tables[name] = rules.MustTable(
			rules.FieldSpec{Path: "raw_body_enabled", Type: domain.TypeBoolean},
			rules.FieldSpec{Path: "signature_header_name", Required: true, NonEmpty: true, Type: domain.TypeString, Equals: p.SignatureHeader},
			rules.FieldSpec{Path: "headers", Required: true, Type: domain.TypeObject},
			rules.FieldSpec{Path: "expected_reference", Type: domain.TypeString},
			rules.FieldSpec{Path: "event_reference", Type: domain.TypeString},
			rules.FieldSpec{Path: "expected_amount", Type: domain.TypeInteger},
			rules.FieldSpec{Path: "event_amount", Type: domain.TypeInteger},
		).Extend(extra)
		v.headers[name] = rules.MustTable(
			rules.FieldSpec{Path: "headers." + p.SignatureHeader, Required: true, NonEmpty: true, MissingCode: domain.CodeMissingSignatureHeader},
		)
	}
	return v
}

func (v *webhookContract) Name() string { return ToolWebhookContract }

func (v *webhookContract) Description() string {
	return "Check that a webhook route reads the raw body, the right signature header, and matching event reference and amount"
}

func (v *webhookContract) Validate(req domain.Request) *domain.Result {
	if r, ok := settledShortCircuit(ToolWebhookContract, req, v.cfg); ok {
		return r
	}
	r := domain.NewResult(ToolWebhookContract)

	provider, ok := resolvePaymentProvider(req, r, "paystack")
	if !ok {
		return reject(r)
	}
	r.Set("provider", provider.Name)

	req = canonicalHeaders(req)
	outcome := v.tables[provider.Name].Evaluate(req)
	outcome.AddTo(r)
	if provider.RawBodyRequired && !outcome.Failed("raw_body_enabled") {
		r.AddAll(requireRawBody(req, provider.SignatureScheme))
	}

	if !outcome.Failed("headers") {
		v.headers[provider.Name].Evaluate(req).AddTo(r)
	}
	for _, pair := range webhookEventPairs {
		if !outcome.AnyFailed(pair[0], pair[1]) {
			r.AddAll(rules.RequireEqual(req, pair[0], pair[1]))
		}
	}

	if !r.OK() {
		return reject(r)
	}
	r.Set("action", "process-webhook")
	r.Set("signature_header", provider.SignatureHeader)
	return r
}

// requireRawBody reports RAW_BODY_REQUIRED unless raw_body_enabled is true.
func requireRawBody(req domain.Request, scheme string) *domain.Entry {
	if v, ok := req.Lookup("raw_body_enabled"); ok && v == true {
		return nil
	}
	e := domain.NewEntry(domain.CodeRawBodyRequired, "raw_body_enabled", scheme)
	return &e
}

// canonicalHeaders returns a shallow copy of req whose header names, and
// signature_header_name, are lower case.
func canonicalHeaders(req domain.Request) domain.Request {
	out := make(domain.Request, len(req))
	for k, v := range req {
		out[k] = v
	}
	if name, ok := out["signature_header_name"].(string); ok {
		out["signature_header_name"] = strings.ToLower(strings.TrimSpace(name))
	}
	if headers, ok := domain.AsObject(out["headers"]); ok {
		names := make([]string, 0, len(headers))
		for k := range headers {
			names = append(names, k)
		}
		sort.Strings(names)
		lowered := make(map[string]any, len(headers))
		for _, k := range names {
			lowered[strings.ToLower(k)] = headers[k]
		}
		out["headers"] = lowered
	}
	return out
}

// resolvePaymentProvider reads the optional provider field, defaulting to
// fallback. An unknown provider is recorded on r.
func resolvePaymentProvider(req domain.Request, r *domain.Result, fallback string) (PaymentProvider, bool) {
	raw, present := req.Lookup("provider")
	if !present {
		p, _ := LookupPaymentProvider(fallback)
		return p, true
	}
	if name, isStr := raw.(string); isStr {
		if p, ok := LookupPaymentProvider(name); ok {
			return p, true
		}
	}
	r.AddError(domain.NewEntry(domain.CodeEnumViolation, "provider",
		"provider", rules.FormatSet(PaymentProviderNames()), domain.Render(raw)))
	return PaymentProvider{}, false
}
