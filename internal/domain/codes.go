package domain

import (
	"fmt"
	"sort"
)

// Code is a stable identifier drawn from the closed error taxonomy.
type Code string

const (
	CodeEmptyInput              Code = "EMPTY_INPUT"
	CodeInvalidJSON             Code = "INVALID_JSON"
	CodeMissingField            Code = "MISSING_FIELD"
	CodeTypeMismatch            Code = "TYPE_MISMATCH"
	CodeValueMismatch           Code = "VALUE_MISMATCH"
	CodeEnumViolation           Code = "ENUM_VIOLATION"
	CodeRawBodyRequired         Code = "RAW_BODY_REQUIRED"
	CodeMissingSignatureHeader  Code = "MISSING_SIGNATURE_HEADER"
	CodeRedirectURIMismatch     Code = "REDIRECT_URI_MISMATCH"
	CodeUnmappedCredentialField Code = "UNMAPPED_CREDENTIAL_FIELD"
	CodeInternalError           Code = "INTERNAL_ERROR"
	CodeUnknownField            Code = "UNKNOWN_FIELD"
)

const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// CodeInfo holds the data side of a taxonomy code. Message is a fmt
// template filled by NewEntry; {path} in Remediation is replaced by the
// entry path.
type CodeInfo struct {
	Code        Code   `json:"code"`
	Severity    string `json:"severity"`
	Meaning     string `json:"meaning"`
	Message     string `json:"message"`
	Remediation string `json:"remediation"`
}

var taxonomy = map[Code]CodeInfo{
	CodeEmptyInput: {
		Severity:    SeverityError,
		Meaning:     "No bytes read from input source",
		Message:     "no bytes read from %s",
		Remediation: "Pass a JSON object as a file argument or on standard input.",
	},
	CodeInvalidJSON: {
		Severity:    SeverityError,
		Meaning:     "Input did not parse as a JSON object",
		Message:     "input is not a JSON object: %s",
		Remediation: "Send exactly one JSON object; arrays, scalars and trailing data are rejected.",
	},
	CodeMissingField: {
		Severity:    SeverityError,
		Meaning:     "Required dotted-path field absent",
		Message:     "missing required field: %s",
		Remediation: "Provide `{path}` in the input JSON.",
	},
	CodeTypeMismatch: {
		Severity:    SeverityError,
		Meaning:     "Field present but wrong JSON type",
		Message:     "%s must be %s, got %s",
		Remediation: "Send `{path}` with the declared JSON type.",
	},
	CodeValueMismatch: {
		Severity:    SeverityError,
		Meaning:     "Two fields expected equal, differ (amount/reference)",
		Message:     "%s does not match %s",
		Remediation: "Compare against the stored value and reject mismatches; amounts are integers in the smallest currency unit.",
	},
	CodeEnumViolation: {
		Severity:    SeverityError,
		Meaning:     "Field not in allowed value set",
		Message:     "%s must be one of %s, got %s",
		Remediation: "Use one of the allowed values for `{path}`.",
	},
	CodeRawBodyRequired: {
		Severity:    SeverityError,
		Meaning:     "HMAC mode selected without raw-body access",
		Message:     "raw_body_enabled must be true for %s signature verification",
		Remediation: "Capture the raw request body before any JSON parsing on the webhook route.",
	},
	CodeMissingSignatureHeader: {
		Severity:    SeverityError,
		Meaning:     "Expected signature header absent",
		Message:     "missing %s signature header",
		Remediation: "Require `{path}` and reject unsigned webhook deliveries.",
	},
	CodeRedirectURIMismatch: {
		Severity:    SeverityError,
		Meaning:     "Callback URI outside allow-list",
		Message:     "redirect_uri %s",
		Remediation: "Register the exact backend callback URL with the provider and send that value.",
	},
	CodeUnmappedCredentialField: {
		Severity:    SeverityWarning,
		Meaning:     "Vendor field has no canonical mapping",
		Message:     "%s",
		Remediation: "Supply `{path}` manually or rename the dashboard field to a known label.",
	},
	CodeInternalError: {
		Severity:    SeverityError,
		Meaning:     "Uncaught defect inside a validator, or a tool invoked with bad arguments",
		Message:     "internal error: %s",
		Remediation: "Report this input to the skill maintainers; do not proceed on this result.",
	},
	CodeUnknownField: {
		Severity:    SeverityWarning,
		Meaning:     "Payload carries a key the declared schema does not name",
		Message:     "unknown field: %s",
		Remediation: "Remove `{path}` or add it to the declared schema.",
	},
}

func init() {
	for code, info := range taxonomy {
		info.Code = code
		taxonomy[code] = info
	}
}

// Lookup returns the taxonomy entry for code.
func Lookup(code Code) (CodeInfo, bool) {
	info, ok := taxonomy[code]
	return info, ok
}

// Taxonomy returns every registered code, sorted by code.
func Taxonomy() []CodeInfo {
	out := make([]CodeInfo, 0, len(taxonomy))
	for _, info := range taxonomy {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// CodesWithSeverity lists the codes whose default severity matches.
func CodesWithSeverity(severity string) []string {
	var out []string
	for _, info := range Taxonomy() {
		if info.Severity == severity {
			out = append(out, string(info.Code))
		}
	}
	return out
}

// AllCodes lists every code in the taxonomy.
func AllCodes() []string {
	infos := Taxonomy()
	out := make([]string, len(infos))
	for i, info := range infos {
		out[i] = string(info.Code)
	}
	return out
}

func mustLookup(code Code) CodeInfo {
	info, ok := taxonomy[code]
	if !ok {
		panic(fmt.Sprintf("domain: unregistered code %q", code))
	}
	return info
}
