package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/skillguard/internal/domain"
)

func TestTaxonomy_SortedAndComplete(t *testing.T) {
	infos := domain.Taxonomy()
	require.Len(t, infos, 12)
	for i := 1; i < len(infos); i++ {
		assert.Less(t, infos[i-1].Code, infos[i].Code)
	}
	for _, info := range infos {
		assert.NotEmpty(t, info.Meaning, info.Code)
		assert.NotEmpty(t, info.Message, info.Code)
		assert.Contains(t, []string{domain.SeverityError, domain.SeverityWarning}, info.Severity, info.Code)
	}
}

func TestCodesWithSeverity(t *testing.T) {
	assert.Equal(t, []string{"UNKNOWN_FIELD", "UNMAPPED_CREDENTIAL_FIELD"}, domain.CodesWithSeverity(domain.SeverityWarning))
	assert.Contains(t, domain.CodesWithSeverity(domain.SeverityError), "REDIRECT_URI_MISMATCH")
}

func TestLookup(t *testing.T) {
	info, ok := domain.Lookup(domain.CodeRawBodyRequired)
	require.True(t, ok)
	assert.Equal(t, domain.CodeRawBodyRequired, info.Code)
	assert.Equal(t, domain.SeverityError, info.Severity)

	_, ok = domain.Lookup("NOT_A_CODE")
	assert.False(t, ok)
}

func TestRemediationTemplatesHaveNoVerbs(t *testing.T) {
	for _, info := range domain.Taxonomy() {
		assert.NotContains(t, info.Remediation, "%", info.Code)
	}
}

func TestAllCodesAreUpperSnake(t *testing.T) {
	for _, c := range domain.AllCodes() {
		assert.Equal(t, strings.ToUpper(c), c)
		assert.NotContains(t, c, " ")
	}
}
