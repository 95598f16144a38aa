package application

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"slices"

	"github.com/abdidvp/skillguard/internal/domain"
	"github.com/abdidvp/skillguard/internal/domain/contract"
	"github.com/abdidvp/skillguard/internal/domain/rules"
)

// ValidateService decodes a request, dispatches it to one validator and
// turns validator panics into INTERNAL_ERROR results.
type ValidateService struct {
	decoder  domain.RequestDecoder
	registry *contract.Registry
	logger   *slog.Logger
}

// NewValidateService creates a ValidateService. cfg.Rules are compiled here,
// so a bad rule fails construction rather than a run.
func NewValidateService(decoder domain.RequestDecoder, cfg domain.Config, logger *slog.Logger) (*ValidateService, error) {
	reg, err := contract.NewRegistry(cfg)
	if err != nil {
		return nil, fmt.Errorf("building validators: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ValidateService{decoder: decoder, registry: reg, logger: logger}, nil
}

// Run decodes raw and validates it with tool. It always returns a result.
func (s *ValidateService) Run(tool, source string, raw []byte, opts contract.Options) *domain.Result {
	req, entry := s.decoder.Decode(source, raw)
	if entry != nil {
		s.logger.Debug("input rejected", "tool", tool, "source", source, "code", entry.Code)
		return domain.Failure(tool, *entry)
	}
	return s.Validate(tool, req, opts)
}

// Validate runs tool against an already decoded request.
func (s *ValidateService) Validate(tool string, req domain.Request, opts contract.Options) (res *domain.Result) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("validator panicked", "tool", tool, "panic", p, "stack", string(debug.Stack()))
			res = domain.Failure(tool, domain.NewEntry(domain.CodeInternalError, "", fmt.Sprint(p)))
		}
	}()

	if !slices.Contains(contract.Names(), tool) {
		return domain.Failure(tool, domain.NewEntry(domain.CodeEnumViolation, "tool",
			"tool", rules.FormatSet(contract.Names()), domain.Render(tool)))
	}
	if tool == contract.ToolOutputSchema && opts.Schema != "" && !slices.Contains(contract.SchemaNames(), opts.Schema) {
		return domain.Failure(tool, domain.NewEntry(domain.CodeEnumViolation, "schema",
			"schema", rules.FormatSet(contract.SchemaNames()), domain.Render(opts.Schema)))
	}

	v, err := s.registry.Validator(tool, opts)
	if err != nil {
		s.logger.Error("building validator", "tool", tool, "error", err)
		return domain.Failure(tool, domain.NewEntry(domain.CodeInternalError, "", err.Error()))
	}

	res = v.Validate(req)
	s.logger.Debug("validator finished",
		"tool", tool, "ok", res.OK(), "errors", len(res.Errors), "warnings", len(res.Warnings))
	return res
}

// Tools describes every validator.
func (s *ValidateService) Tools() []contract.Catalog {
	return contract.Tools()
}
