package contract

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/fatih/camelcase"

	"github.com/abdidvp/skillguard/internal/domain"
	"github.com/abdidvp/skillguard/internal/domain/rules"
)

// ToolCredentials maps provider dashboard fields onto environment variables.
const ToolCredentials = "translate-provider-credentials"

// CredentialProvider is one provider's translation table. Aliases are keyed
// by normalized label.
type CredentialProvider struct {
	Required []string
	Env      map[string]string
	Aliases  map[string]string
}

func builtinCredentialProviders() map[string]CredentialProvider {
	oauthPair := func(prefix string, aliases map[string]string) CredentialProvider {
		return CredentialProvider{
			Required: []string{"client_id", "client_secret"},
			Env: map[string]string{
				"client_id":     prefix + "_CLIENT_ID",
				"client_secret": prefix + "_CLIENT_SECRET",
			},
			Aliases: aliases,
		}
	}
	return map[string]CredentialProvider{
		"google": oauthPair("GOOGLE", map[string]string{
			"OAuth Client ID":     "client_id",
			"Web Client ID":       "client_id",
			"OAuth Client Secret": "client_secret",
		}),
		"github": oauthPair("GITHUB", map[string]string{
			"Client secrets":   "client_secret",
			"OAuth App Secret": "client_secret",
		}),
		"linkedin": oauthPair("LINKEDIN", map[string]string{
			"Primary Client Secret": "client_secret",
		}),
		"twitter": oauthPair("TWITTER", map[string]string{
			"OAuth 2.0 Client ID":     "client_id",
			"OAuth 2.0 Client Secret": "client_secret",
		}),
		"apple": {
			Required: []string{"client_id", "team_id", "key_id", "private_key"},
			Env: map[string]string{
				"client_id":   "APPLE_CLIENT_ID",
				"team_id":     "APPLE_TEAM_ID",
				"key_id":      "APPLE_KEY_ID",
				"private_key": "APPLE_PRIVATE_KEY",
			},
			Aliases: map[string]string{
				"Services ID":      "client_id",
				"Service ID":       "client_id",
				"App ID Prefix":    "team_id",
				"Private Key p8":   "private_key",
				"Sign in Key":      "private_key",
				"Key Identifier":   "key_id",
				"Private Key File": "private_key",
			},
		},
	}
}

// NormalizeLabel turns a dashboard label into snake case: "Client ID",
// "clientId" and "client-id" all become "client_id".
func NormalizeLabel(label string) string {
	tokens := strings.FieldsFunc(label, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var words []string
	for _, tok := range tokens {
		for _, w := range camelcase.Split(tok) {
			words = append(words, strings.ToLower(w))
		}
	}
	return strings.Join(words, "_")
}

var credentialTable = []rules.FieldSpec{
	{Path: "provider", Required: true, NonEmpty: true, Type: domain.TypeString},
	{Path: "credentials", Required: true, Type: domain.TypeObject},
}

type credentials struct {
	providers map[string]CredentialProvider
	table     *rules.Table
}

func newCredentials(cfg domain.Config, extra *rules.Table) *credentials {
	providers := builtinCredentialProviders()
	for name, p := range cfg.Credentials.Providers {
		providers[strings.ToLower(name)] = CredentialProvider{
			Required: p.Required,
			Env:      p.Env,
			Aliases:  p.Aliases,
		}
	}
	for name, p := range providers {
		aliases := make(map[string]string, len(p.Aliases))
		for label, field := range p.Aliases {
			aliases[NormalizeLabel(label)] = field
		}
		p.Aliases = aliases
		providers[name] = p
	}
	return &credentials{
		providers: providers,
		table:     rules.MustTable(credentialTable...).Extend(extra),
	}
}

func (v *credentials) Name() string { return ToolCredentials }

func (v *credentials) Description() string {
	return "Translate provider dashboard credential fields into environment variable names"
}

func (v *credentials) providerNames() []string {
	names := make([]string, 0, len(v.providers))
	for n := range v.providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (v *credentials) Validate(req domain.Request) *domain.Result {
	r := domain.NewResult(ToolCredentials)
	outcome := v.table.Evaluate(req)
	outcome.AddTo(r)

	var provider CredentialProvider
	name := ""
	if !outcome.Failed("provider") {
		raw, _ := req.String("provider")
		name = strings.ToLower(strings.TrimSpace(raw))
		p, ok := v.providers[name]
		if !ok {
			r.AddError(domain.NewEntry(domain.CodeEnumViolation, "provider",
				"provider", rules.FormatSet(v.providerNames()), domain.Render(raw)))
		}
		provider = p
	}
	if !r.OK() {
		return r
	}
	r.Set("provider", name)

	creds, _ := req.Object("credentials")
	labels := make([]string, 0, len(creds))
	for k := range creds {
		labels = append(labels, k)
	}
	sort.Strings(labels)

	values := map[string]string{}
	sources := map[string]string{}
	for _, label := range labels {
		path := "credentials." + label
		field, ok := provider.canonical(label)
		if !ok {
			r.AddWarning(domain.NewEntry(domain.CodeUnmappedCredentialField, path,
				fmt.Sprintf("credential field %q has no mapping for provider %s", label, name)))
			continue
		}
		val, isStr := creds[label].(string)
		if !isStr {
			r.AddError(domain.NewEntry(domain.CodeTypeMismatch, path, path, "a string", domain.TypeOf(creds[label])))
			continue
		}
		if strings.TrimSpace(val) == "" {
			continue
		}
		if prev, seen := values[field]; seen {
			if prev != val {
				r.AddError(domain.NewEntry(domain.CodeValueMismatch, path, path, "credentials."+sources[field]))
			}
			continue
		}
		values[field] = val
		sources[field] = label
	}

	missing := []string{}
	for _, field := range provider.Required {
		if _, ok := values[field]; ok {
			continue
		}
		missing = append(missing, field)
		r.AddWarning(domain.NewEntry(domain.CodeUnmappedCredentialField, "credentials."+field,
			fmt.Sprintf("required credential %s for provider %s was not supplied", field, name)))
	}
	sort.Strings(missing)

	mapped := map[string]any{}
	for field, val := range values {
		if env, ok := provider.Env[field]; ok {
			mapped[env] = val
		}
	}
	r.Set("mapped_env", mapped)
	r.Set("missing", missing)
	return r
}

// canonical resolves a label to a canonical field: an alias, or the field
// name itself when the provider has an env entry for it.
func (p CredentialProvider) canonical(label string) (string, bool) {
	n := NormalizeLabel(label)
	if field, ok := p.Aliases[n]; ok {
		return field, true
	}
	if _, ok := p.Env[n]; ok {
		return n, true
	}
	return "", false
}
