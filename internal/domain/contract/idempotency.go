package contract

import (
	"github.com/abdidvp/skillguard/internal/domain"
)

// orderStatusField is caller-supplied and trusted: a request that claims a
// settled order is never re-validated.
const orderStatusField = "order_status"

// settledShortCircuit returns the no-op result when the request reports an
// order already in a settled state. It runs before every other check so a
// settled order can never be told to fulfil again.
func settledShortCircuit(tool string, req domain.Request, cfg domain.Config) (*domain.Result, bool) {
	status, ok := req.String(orderStatusField)
	if !ok || !cfg.IsSettled(status) {
		return nil, false
	}
	r := domain.NewResult(tool)
	r.Set("action", "no-op")
	r.Set("reason", "order already "+status)
	r.Set("idempotent", true)
	r.Set("trusted_field", orderStatusField)
	return r, true
}

// reject marks a failed result with the payment-family failure action.
func reject(r *domain.Result) *domain.Result {
	r.Set("action", "reject")
	return r
}
