// Package contract holds the domain validators: payment and verify
// contracts, webhook contract and signature mode, redirect URI, credential
// translation and output schema. Every validator is a pure function of its
// request and the config it was built with.
package contract

import (
	"fmt"
	"sort"

	"github.com/abdidvp/skillguard/internal/domain"
	"github.com/abdidvp/skillguard/internal/domain/rules"
)

// Options tune a single validator run.
type Options struct {
	// Schema selects the validate-output-schema target; empty means envelope.
	Schema string
	// Strict turns unknown keys into errors; it is ORed with the config.
	Strict bool
}

// Catalog describes one tool without building it.
type Catalog struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type factory func(cfg domain.Config, opts Options, extra *rules.Table) (domain.Validator, error)

var factories = map[string]factory{
	ToolPaymentContract: func(cfg domain.Config, _ Options, extra *rules.Table) (domain.Validator, error) {
		return newPaymentContract(cfg, extra), nil
	},
	ToolVerifyResponse: func(cfg domain.Config, _ Options, extra *rules.Table) (domain.Validator, error) {
		return newVerifyResponse(cfg, extra), nil
	},
	ToolWebhookContract: func(cfg domain.Config, _ Options, extra *rules.Table) (domain.Validator, error) {
		return newWebhookContract(cfg, extra), nil
	},
	ToolSignatureMode: func(cfg domain.Config, _ Options, extra *rules.Table) (domain.Validator, error) {
		return newSignatureMode(cfg, extra), nil
	},
	ToolRedirectURI: func(cfg domain.Config, _ Options, extra *rules.Table) (domain.Validator, error) {
		return newRedirectURI(cfg, extra), nil
	},
	ToolCredentials: func(cfg domain.Config, _ Options, extra *rules.Table) (domain.Validator, error) {
		return newCredentials(cfg, extra), nil
	},
	ToolOutputSchema: func(cfg domain.Config, opts Options, extra *rules.Table) (domain.Validator, error) {
		return newOutputSchema(opts.Schema, opts.Strict || cfg.OutputSchema.Strict, extra)
	},
}

// Names lists every tool name, sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Tools describes every tool, sorted by name.
func Tools() []Catalog {
	cfg := domain.DefaultConfig()
	out := make([]Catalog, 0, len(factories))
	for _, name := range Names() {
		v, err := factories[name](cfg, Options{}, nil)
		if err != nil {
			panic(fmt.Sprintf("contract: building %s: %v", name, err))
		}
		out = append(out, Catalog{Name: v.Name(), Description: v.Description()})
	}
	return out
}

// Registry builds validators from a config. Extra rules declared in the
// config are compiled once and appended to each tool's own table.
type Registry struct {
	cfg   domain.Config
	extra map[string]*rules.Table
}

// NewRegistry compiles cfg.Rules. An unknown tool name or a bad when
// expression is a config error.
func NewRegistry(cfg domain.Config) (*Registry, error) {
	reg := &Registry{cfg: cfg, extra: map[string]*rules.Table{}}
	for tool, specs := range cfg.Rules {
		if _, ok := factories[tool]; !ok {
			return nil, fmt.Errorf("rules: unknown tool %q", tool)
		}
		fs := make([]rules.FieldSpec, 0, len(specs))
		for _, s := range specs {
			fs = append(fs, rules.FieldSpec{
				Path:     s.Path,
				Required: s.Required,
				Type:     s.Type,
				OneOf:    s.OneOf,
				When:     s.When,
			})
		}
		t, err := rules.NewTable(fs...)
		if err != nil {
			return nil, fmt.Errorf("rules for %s: %w", tool, err)
		}
		reg.extra[tool] = t
	}
	return reg, nil
}

// Validator builds the named validator.
func (r *Registry) Validator(tool string, opts Options) (domain.Validator, error) {
	f, ok := factories[tool]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", tool)
	}
	return f(r.cfg, opts, r.extra[tool])
}
