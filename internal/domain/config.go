package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config holds the optional settings loaded from a --config YAML file.
// The zero value is never used directly; start from DefaultConfig.
type Config struct {
	SettledOrderStatuses []string                `yaml:"settled_order_statuses" json:"settled_order_statuses,omitempty" validate:"dive,required"`
	OutputSchema         OutputSchemaConfig      `yaml:"output_schema"          json:"output_schema"`
	Redirect             RedirectConfig          `yaml:"redirect"               json:"redirect"`
	Credentials          CredentialsConfig       `yaml:"credentials"            json:"credentials"`
	Rules                map[string][]RuleConfig `yaml:"rules"                  json:"rules,omitempty" validate:"dive,keys,required,endkeys,dive"`
}

// OutputSchemaConfig controls the unknown-key policy of validate-output-schema.
type OutputSchemaConfig struct {
	Strict bool `yaml:"strict" json:"strict"`
}

// RedirectConfig supplies the allow-list used when a request carries none.
type RedirectConfig struct {
	AllowedRedirectURIs []string `yaml:"allowed_redirect_uris" json:"allowed_redirect_uris,omitempty" validate:"dive,url"`
	LoopbackHosts       []string `yaml:"loopback_hosts"        json:"loopback_hosts,omitempty"        validate:"dive,hostname|ip"`
}

// CredentialsConfig adds or replaces credential translation tables.
type CredentialsConfig struct {
	Providers map[string]CredentialProviderConfig `yaml:"providers" json:"providers,omitempty" validate:"dive,keys,required,endkeys"`
}

// CredentialProviderConfig declares one provider's canonical fields.
// Env maps canonical field -> environment variable name; Aliases maps a
// normalized dashboard label -> canonical field.
type CredentialProviderConfig struct {
	Required []string          `yaml:"required" json:"required"          validate:"required,min=1,dive,required"`
	Env      map[string]string `yaml:"env"      json:"env"               validate:"required,dive,keys,required,endkeys,required"`
	Aliases  map[string]string `yaml:"aliases"  json:"aliases,omitempty" validate:"dive,keys,required,endkeys,required"`
}

// RuleConfig is an extra declarative field check attached to a tool.
type RuleConfig struct {
	Path     string   `yaml:"path"     json:"path"               validate:"required,dotted_path"`
	Required bool     `yaml:"required" json:"required,omitempty"`
	Type     string   `yaml:"type"     json:"type,omitempty"     validate:"omitempty,oneof=string integer number boolean object array null"`
	OneOf    []string `yaml:"one_of"   json:"one_of,omitempty"`
	When     string   `yaml:"when"     json:"when,omitempty"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		SettledOrderStatuses: []string{"paid"},
		Redirect: RedirectConfig{
			LoopbackHosts: []string{"localhost", "127.0.0.1", "::1"},
		},
	}
}

// IsSettled reports whether status is a terminal success order state.
func (c Config) IsSettled(status string) bool {
	for _, s := range c.SettledOrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsLoopback reports whether host is exempt from the https requirement.
func (c Config) IsLoopback(host string) bool {
	for _, h := range c.Redirect.LoopbackHosts {
		if strings.EqualFold(h, host) {
			return true
		}
	}
	return false
}

var configValidate = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("dotted_path", validateDottedPath)
	return v
}

func validateDottedPath(fl validator.FieldLevel) bool {
	path := fl.Field().String()
	if path == "" {
		return true // handled by required
	}
	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			return false
		}
	}
	return true
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c Config) Validate() error {
	err := configValidate.Struct(c)
	if err == nil {
		return c.validateCredentialTables()
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Namespace(), configErrorMessage(fe)))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// validateCredentialTables requires every required field to have an env name.
func (c Config) validateCredentialTables() error {
	for name, p := range c.Credentials.Providers {
		for _, field := range p.Required {
			if _, ok := p.Env[field]; !ok {
				return fmt.Errorf("credentials.providers.%s: required field %q has no env mapping", name, field)
			}
		}
	}
	return nil
}

func configErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("must have at least %s entries", fe.Param())
	case "url":
		return "must be an absolute URL"
	case "hostname|ip":
		return "must be a hostname or IP address"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "dotted_path":
		return "must be a dotted path without empty segments"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
