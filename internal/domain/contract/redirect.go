package contract

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/abdidvp/skillguard/internal/domain"
	"github.com/abdidvp/skillguard/internal/domain/rules"
)

// ToolRedirectURI checks an OAuth callback URI against an allow-list.
const ToolRedirectURI = "validate-redirect-uri"

// Allow-list sources reported in the result.
const (
	allowListRequest = "request"
	allowListConfig  = "config"
	allowListBackend = "backend_base_url"
)

const callbackSegment = "/callback"

var redirectTable = []rules.FieldSpec{
	{Path: "backend_base_url", Required: true, NonEmpty: true, Type: domain.TypeString},
	{Path: "redirect_uri", Required: true, NonEmpty: true, Type: domain.TypeString},
	{Path: "allowed_redirect_uris", Type: domain.TypeArray},
}

type redirectURI struct {
	cfg   domain.Config
	table *rules.Table
}

func newRedirectURI(cfg domain.Config, extra *rules.Table) *redirectURI {
	return &redirectURI{cfg: cfg, table: rules.MustTable(redirectTable...).Extend(extra)}
}

func (v *redirectURI) Name() string { return ToolRedirectURI }

func (v *redirectURI) Description() string {
	return "Check that an OAuth redirect URI is an exact allow-listed backend callback"
}

// allowEntry is one parsed allow-list URI. A derived entry comes from the
// backend base URL and accepts any callback path below it. The query must
// match exactly in both cases; a derived entry has none.
type allowEntry struct {
	raw      string
	scheme   string
	hostname string
	port     string
	path     string
	query    string
	derived  bool
}

func (v *redirectURI) Validate(req domain.Request) *domain.Result {
	r := domain.NewResult(ToolRedirectURI)
	outcome := v.table.Evaluate(req)
	outcome.AddTo(r)
	if outcome.AnyFailed("backend_base_url", "redirect_uri") {
		return reject(r)
	}

	rawBackend, _ := req.String("backend_base_url")
	backend, backendErr := parseHTTPURL(rawBackend)
	switch {
	case errors.Is(backendErr, errNotAbsolute):
		r.AddError(domain.NewEntry(domain.CodeTypeMismatch, "backend_base_url",
			"backend_base_url", "an absolute http(s) URL", domain.Render(rawBackend)))
	case errors.Is(backendErr, errScheme):
		r.AddError(domain.NewEntry(domain.CodeEnumViolation, "backend_base_url",
			"backend_base_url scheme", rules.FormatSet([]string{"http", "https"}), domain.Render(backend.Scheme)))
	}

	rawRedirect, _ := req.String("redirect_uri")
	redirect, redirectErr := parseHTTPURL(rawRedirect)
	switch {
	case errors.Is(redirectErr, errNotAbsolute):
		r.AddError(mismatch("is not an absolute http(s) URL"))
	case errors.Is(redirectErr, errScheme):
		r.AddError(mismatch(fmt.Sprintf("scheme %q is not http or https", redirect.Scheme)))
	}
	if redirectErr != nil {
		return reject(r)
	}

	if redirect.Scheme != "https" && !v.cfg.IsLoopback(redirect.Hostname()) {
		r.AddError(mismatch(fmt.Sprintf("must use https outside loopback hosts, got %q", redirect.Scheme)))
	}
	if redirect.Fragment != "" || strings.Contains(rawRedirect, "#") {
		r.AddError(mismatch("must not carry a fragment"))
	}
	if redirect.User != nil {
		r.AddError(mismatch("must not carry user info"))
	}
	if hasDotSegment(redirect) {
		r.AddError(mismatch(fmt.Sprintf("path %q must not contain . or .. segments", redirect.EscapedPath())))
	}

	entries, source := v.allowList(req, r, backend, backendErr == nil)
	if !r.OK() {
		return reject(r)
	}

	matched, reasons := matchAllowList(redirect, entries)
	for _, reason := range reasons {
		r.AddError(mismatch(reason))
	}
	if !r.OK() {
		return reject(r)
	}

	r.Set("action", "redirect-uri-valid")
	r.Set("backend_host", backend.Hostname())
	r.Set("redirect_host", redirect.Hostname())
	r.Set("redirect_path", redirect.EscapedPath())
	r.Set("matched", matched.raw)
	r.Set("allow_list", source)
	return r
}

// allowList picks the request list, then the configured list, then the
// backend base URL.
func (v *redirectURI) allowList(req domain.Request, r *domain.Result, backend *url.URL, backendOK bool) ([]allowEntry, string) {
	if raw, ok := req.Lookup("allowed_redirect_uris"); ok {
		items, _ := raw.([]any)
		entries := make([]allowEntry, 0, len(items))
		for i, item := range items {
			path := fmt.Sprintf("allowed_redirect_uris[%d]", i)
			s, isStr := item.(string)
			if !isStr {
				r.AddError(domain.NewEntry(domain.CodeTypeMismatch, path, path, "a string", domain.TypeOf(item)))
				continue
			}
			u, err := parseHTTPURL(s)
			if err != nil {
				r.AddError(domain.NewEntry(domain.CodeTypeMismatch, path, path, "an absolute http(s) URL", domain.Render(s)))
				continue
			}
			entries = append(entries, explicitEntry(s, u))
		}
		return entries, allowListRequest
	}

	if len(v.cfg.Redirect.AllowedRedirectURIs) > 0 {
		entries := make([]allowEntry, 0, len(v.cfg.Redirect.AllowedRedirectURIs))
		for _, s := range v.cfg.Redirect.AllowedRedirectURIs {
			if u, err := parseHTTPURL(s); err == nil {
				entries = append(entries, explicitEntry(s, u))
			}
		}
		return entries, allowListConfig
	}

	if !backendOK {
		return nil, allowListBackend
	}
	return []allowEntry{{
		raw:      backend.String(),
		scheme:   backend.Scheme,
		hostname: strings.ToLower(backend.Hostname()),
		port:     effectivePort(backend),
		path:     strings.TrimSuffix(backend.EscapedPath(), "/"),
		derived:  true,
	}}, allowListBackend
}

func explicitEntry(raw string, u *url.URL) allowEntry {
	return allowEntry{
		raw:      raw,
		scheme:   u.Scheme,
		hostname: strings.ToLower(u.Hostname()),
		port:     effectivePort(u),
		path:     normalPath(u),
		query:    u.RawQuery,
	}
}

// matchAllowList returns the first entry the redirect satisfies, or the
// reasons the entries on the same host rejected it.
func matchAllowList(redirect *url.URL, entries []allowEntry) (allowEntry, []string) {
	hostname := strings.ToLower(redirect.Hostname())
	port := effectivePort(redirect)
	path := normalPath(redirect)

	var sameHost []allowEntry
	for _, e := range entries {
		if e.hostname == hostname {
			sameHost = append(sameHost, e)
		}
	}
	if len(sameHost) == 0 {
		hosts := make([]string, 0, len(entries))
		for _, e := range entries {
			if !contains(hosts, e.hostname) {
				hosts = append(hosts, e.hostname)
			}
		}
		return allowEntry{}, []string{fmt.Sprintf("host %q is not on the allow-list %s", hostname, rules.FormatSet(hosts))}
	}

	schemeOK, portOK, pathOK, queryOK := false, false, false, false
	for _, e := range sameHost {
		s := e.scheme == redirect.Scheme
		o := e.port == port
		p := e.allowsPath(path)
		q := e.query == redirect.RawQuery
		if s && o && p && q {
			return e, nil
		}
		schemeOK = schemeOK || s
		portOK = portOK || o
		pathOK = pathOK || p
		queryOK = queryOK || q
	}

	first := sameHost[0]
	var reasons []string
	if !schemeOK {
		reasons = append(reasons, fmt.Sprintf("scheme %q does not match the allow-listed scheme %q", redirect.Scheme, first.scheme))
	}
	if !portOK {
		reasons = append(reasons, fmt.Sprintf("port %s does not match the allow-listed port %s", port, first.port))
	}
	if !pathOK {
		if first.derived {
			reasons = append(reasons, fmt.Sprintf("path %q is not a %s endpoint under the backend", path, callbackSegment))
		} else {
			reasons = append(reasons, fmt.Sprintf("path %q is not an allow-listed callback path", path))
		}
	}
	if !queryOK {
		reasons = append(reasons, fmt.Sprintf("query %q does not match the allow-listed query %q", redirect.RawQuery, first.query))
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "matches no single allow-list entry on scheme, port and path")
	}
	return allowEntry{}, reasons
}

func (e allowEntry) allowsPath(path string) bool {
	if !e.derived {
		return e.path == path
	}
	if e.path != "" && path != e.path && !strings.HasPrefix(path, e.path+"/") {
		return false
	}
	return strings.Contains(path, callbackSegment)
}

type urlError string

func (e urlError) Error() string { return string(e) }

const (
	errNotAbsolute urlError = "not an absolute URL"
	errScheme      urlError = "scheme is not http or https"
)

// parseHTTPURL parses an absolute http or https URL. On errScheme the
// parsed URL is still returned.
func parseHTTPURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" || u.Hostname() == "" {
		return &url.URL{}, errNotAbsolute
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return u, errScheme
	}
	return u, nil
}

// effectivePort makes the scheme's default port explicit.
func effectivePort(u *url.URL) string {
	if p := u.Port(); p != "" {
		return p
	}
	if u.Scheme == "http" {
		return "80"
	}
	return "443"
}

// hasDotSegment reports a "." or ".." segment, percent-encoded or not.
// Clients resolve them before following the redirect.
func hasDotSegment(u *url.URL) bool {
	for _, seg := range strings.Split(u.Path, "/") {
		if seg == "." || seg == ".." {
			return true
		}
	}
	return false
}

func normalPath(u *url.URL) string {
	p := u.EscapedPath()
	if p == "" {
		return "/"
	}
	return p
}

func mismatch(detail string) domain.Entry {
	return domain.NewEntry(domain.CodeRedirectURIMismatch, "redirect_uri", detail)
}
