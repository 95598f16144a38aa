package rules_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/skillguard/internal/domain"
	"github.com/abdidvp/skillguard/internal/domain/rules"
)

func TestDecode_UsesJSONTags(t *testing.T) {
	var view struct {
		Reference string `json:"expected_reference"`
		Payload   struct {
			Status string      `json:"status"`
			Amount json.Number `json:"amount"`
		} `json:"verify_payload"`
	}

	err := rules.Decode(payment(), &view)
	require.NoError(t, err)
	assert.Equal(t, "R1", view.Reference)
	assert.Equal(t, "success", view.Payload.Status)
	assert.Equal(t, json.Number("4999"), view.Payload.Amount)
}

func TestDecode_TypeConflictIsError(t *testing.T) {
	var view struct {
		Amount bool `json:"amount"`
	}
	err := rules.Decode(domain.Request{"amount": map[string]any{}}, &view)
	assert.Error(t, err)
}
