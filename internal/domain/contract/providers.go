package contract

import (
	"sort"
	"strings"
)

// PaymentProvider describes the verify and webhook conventions of one
// payment gateway.
type PaymentProvider struct {
	Name string
	// ReferenceField is the verify_payload key carrying the merchant reference.
	ReferenceField  string
	SuccessStatuses []string
	PendingStatuses []string
	SignatureHeader string
	SignatureScheme string
	RawBodyRequired bool
}

var paymentProviders = map[string]PaymentProvider{
	"paystack": {
		Name:            "paystack",
		ReferenceField:  "reference",
		SuccessStatuses: []string{"success"},
		PendingStatuses: []string{"ongoing", "pending", "processing", "queued"},
		SignatureHeader: "x-paystack-signature",
		SignatureScheme: "HMAC-SHA512",
		RawBodyRequired: true,
	},
	"flutterwave": {
		Name:            "flutterwave",
		ReferenceField:  "tx_ref",
		SuccessStatuses: []string{"successful"},
		PendingStatuses: []string{"pending", "success-pending-validation"},
		SignatureHeader: "verif-hash",
		SignatureScheme: "verif-hash",
	},
}

// Flutterwave signature modes.
const (
	ModeVerifHash  = "verif-hash"
	ModeHMACSHA256 = "hmac-sha256"

	flutterwaveHMACHeader = "x-flutterwave-signature"
)

// LookupPaymentProvider returns the provider table for name, ignoring case.
func LookupPaymentProvider(name string) (PaymentProvider, bool) {
	p, ok := paymentProviders[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// PaymentProviderNames lists the supported payment gateways.
func PaymentProviderNames() []string {
	names := make([]string, 0, len(paymentProviders))
	for n := range paymentProviders {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (p PaymentProvider) statusSet() []string {
	out := make([]string, 0, len(p.SuccessStatuses)+len(p.PendingStatuses))
	out = append(out, p.SuccessStatuses...)
	return append(out, p.PendingStatuses...)
}
