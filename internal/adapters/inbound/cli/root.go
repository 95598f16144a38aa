package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abdidvp/skillguard/internal/adapters/outbound/codec"
	"github.com/abdidvp/skillguard/internal/adapters/outbound/config"
	"github.com/abdidvp/skillguard/internal/application"
	"github.com/abdidvp/skillguard/internal/domain"
)

var (
	version = "dev"
	commit  = "none"
)

// ErrValidationFailed is returned when the emitted envelope has ok=false.
// The envelope already explains why, so Execute prints nothing for it.
var ErrValidationFailed = errors.New("validation failed")

// rootOptions carries the global flags to every subcommand.
type rootOptions struct {
	configPath string
	verbose    bool
	logger     *slog.Logger
	loader     domain.ConfigLoader
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{loader: config.New()}
	cmd := &cobra.Command{
		Use:   "skillguard",
		Short: "Deterministic contract checks for AI coding agents",
		Long: "skillguard runs the repeatable, security-sensitive checks an agent must not improvise: " +
			"payment and webhook contracts, redirect URIs, credential translation and output schemas. " +
			"Every tool prints one canonical JSON envelope and exits 0 only when ok is true.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if o.verbose {
				level = slog.LevelDebug
			}
			o.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		},
	}
	cmd.PersistentFlags().StringVar(&o.configPath, "config", "", "Optional YAML config file")
	cmd.PersistentFlags().BoolVar(&o.verbose, "verbose", false, "Debug logging on stderr")

	for _, tool := range toolCommands(o) {
		cmd.AddCommand(tool)
	}
	cmd.AddCommand(newToolsCmd())
	cmd.AddCommand(newCodesCmd())
	cmd.AddCommand(newSchemaCmd())
	cmd.AddCommand(newExplainCmd())
	cmd.AddCommand(newMCPCmd(o))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// service loads the config and builds the validation service.
func (o *rootOptions) service() (*application.ValidateService, error) {
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cfg, err := o.loader.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger.Debug("config loaded", "path", o.configPath, "rules", len(cfg.Rules))
	return application.NewValidateService(codec.New(), cfg, logger)
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the CLI. Errors other than ErrValidationFailed are printed
// to stderr.
func Execute() error {
	err := newRootCmd().Execute()
	if err != nil && !errors.Is(err, ErrValidationFailed) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}
