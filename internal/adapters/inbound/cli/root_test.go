package cli_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/skillguard/internal/adapters/inbound/cli"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommandListsTools(t *testing.T) {
	out, err := execute(t, "", "--help")
	require.NoError(t, err)
	for _, tool := range []string{
		"validate-payment-contract",
		"validate-verify-response",
		"check-webhook-contract",
		"check-webhook-signature-mode",
		"validate-redirect-uri",
		"translate-provider-credentials",
		"validate-output-schema",
	} {
		assert.Contains(t, out, tool)
	}
}

func TestCodesCommand_JSON(t *testing.T) {
	out, err := execute(t, "", "codes", "--json")
	require.NoError(t, err)

	var codes []struct {
		Code     string `json:"code"`
		Severity string `json:"severity"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &codes))
	assert.Len(t, codes, 12)

	severities := map[string]string{}
	for _, c := range codes {
		severities[c.Code] = c.Severity
	}
	assert.Equal(t, "warning", severities["UNMAPPED_CREDENTIAL_FIELD"])
	assert.Equal(t, "error", severities["REDIRECT_URI_MISMATCH"])
}

func TestCodesCommand_Text(t *testing.T) {
	out, err := execute(t, "", "codes")
	require.NoError(t, err)
	assert.Contains(t, out, "RAW_BODY_REQUIRED")
	assert.Contains(t, out, "Error codes")
}

func TestSchemaCommand(t *testing.T) {
	out, err := execute(t, "", "schema")
	require.NoError(t, err)
	assert.Contains(t, out, `"$schema"`)
	assert.Contains(t, out, "envelope.json")

	out, err = execute(t, "", "schema", "--name", "skill-output")
	require.NoError(t, err)
	assert.Contains(t, out, "machine_json")

	_, err = execute(t, "", "schema", "--name", "nope")
	assert.Error(t, err)
}

func TestExplainCommand(t *testing.T) {
	envelope, err := execute(t, "", "validate-redirect-uri", fixture("redirect_foreign_host.json"))
	require.ErrorIs(t, err, cli.ErrValidationFailed)

	out, err := execute(t, envelope, "explain")
	require.NoError(t, err)
	assert.Contains(t, out, "validate-redirect-uri")
	assert.Contains(t, out, "REDIRECT_URI_MISMATCH")
}

func TestExplainCommand_RejectsGarbage(t *testing.T) {
	_, err := execute(t, "not json", "explain")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "skillguard "))
}

func TestVerboseLogsToStderrOnly(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{"--verbose", "validate-redirect-uri", fixture("redirect_ok.json")})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, 1, strings.Count(stdout.String(), "\n"))
	assert.Contains(t, stderr.String(), "validator finished")
}
