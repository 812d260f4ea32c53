package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	RulesDir string // rule pack directory replacing the embedded pack

	// IDs generates the request id attached to responses and verbose
	// logs. Commands fall back to UUIDv7 when nil; tests inject a
	// FixedGenerator for deterministic output.
	IDs RequestIDGenerator
}

// RequestID returns the next request id.
func (o *RootOptions) RequestID() string {
	if o.IDs == nil {
		return UUIDv7Generator{}.Generate()
	}
	return o.IDs.Generate()
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the sqlsage CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sqlsage",
		Short: "sqlsage - SQL Server engineering advisor",
		Long: `A deterministic advisor for SQL Server engineering decisions.

Describe a query shape, a fragmentation measurement, or an upsert, and
the first matching rule of the relevant decision table answers with a
recommended construct and its rationale. Capability lookups resolve
feature availability across on-prem, Azure IaaS, and Managed Instance
deployments.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Environment fills in what the command line left unset
			cfg, err := ReadEnvConfig()
			if err != nil {
				return err
			}
			applyEnvConfig(opts, cfg, cmd)

			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			setupLogging(opts.Verbose, cmd.ErrOrStderr())
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.RulesDir, "rules", "", "rule pack directory (replaces the embedded pack)")

	// Add subcommands
	cmd.AddCommand(NewConstructCommand(opts))
	cmd.AddCommand(NewFragmentationCommand(opts))
	cmd.AddCommand(NewUpsertCommand(opts))
	cmd.AddCommand(NewCapabilityCommand(opts))
	cmd.AddCommand(NewRulesCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// applyEnvConfig overlays environment defaults onto global flags the
// command line left unset.
func applyEnvConfig(opts *RootOptions, cfg *EnvConfig, cmd *cobra.Command) {
	flags := cmd.Root().PersistentFlags()
	if cfg.RulesDir != "" && !flags.Changed("rules") {
		opts.RulesDir = cfg.RulesDir
	}
	if cfg.Format != "" && !flags.Changed("format") {
		opts.Format = cfg.Format
	}
	if cfg.Verbose && !flags.Changed("verbose") {
		opts.Verbose = true
	}
}

// setupLogging routes slog through stderr, quiet by default so command
// output stays clean; --verbose lowers the level to debug.
func setupLogging(verbose bool, w io.Writer) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
