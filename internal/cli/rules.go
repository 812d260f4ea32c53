package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sqlsage/sqlsage/internal/advice"
	"github.com/sqlsage/sqlsage/internal/rulepack"
)

// RulesOptions holds flags for the rules command.
type RulesOptions struct {
	*RootOptions
	Output string
}

// PackListing is the rules command's payload: the loaded rule sets and
// capability matrix rows, plus where they came from.
type PackListing struct {
	Source       string                 `json:"source"`
	FileCount    int                    `json:"file_count"`
	RuleSets     []advice.RuleSet       `json:"rule_sets"`
	Capabilities []advice.CapabilityRow `json:"capabilities"`
}

// PackStats summarizes a listing for the text renderer.
type PackStats struct {
	RuleSetCount    int
	RuleCount       int
	CapabilityCount int
	RowCount        int
}

// NewRulesCommand creates the rules command.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RulesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Show the loaded rule sets and capability matrix",
		Long: `Show the decision tables the advisor serves: every rule set in
evaluation order and the capability matrix coverage.

This is the compiled view after CUE unification, not the raw source, so
it shows exactly what a pack loads as.

Example:
  sqlsage rules
  sqlsage rules --rules ./my-pack --output pack.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRules(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the compiled pack as JSON to a file")

	return cmd
}

func runRules(opts *RulesOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	pack, errs := LoadPack(opts.RootOptions, rulepack.ModeFailFast)
	if len(errs) > 0 {
		return outputLoadErrors(formatter, errs)
	}

	listing := PackListing{
		Source:       pack.Source,
		FileCount:    pack.FileCount,
		RuleSets:     pack.RuleSets,
		Capabilities: pack.Capabilities,
	}
	stats := calculateStats(listing)

	// Write to file if --output specified
	if opts.Output != "" {
		if err := writePackToFile(listing, opts.Output); err != nil {
			_ = formatter.Error(rulepack.ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
			return NewExitError(ExitCommandError, fmt.Sprintf("%s: writing output file: %v", rulepack.ErrCodeWriteFailed, err))
		}
	}

	return outputRules(formatter, listing, stats, opts.Output)
}

// calculateStats computes summary statistics from a listing.
func calculateStats(listing PackListing) PackStats {
	stats := PackStats{
		RuleSetCount: len(listing.RuleSets),
		RowCount:     len(listing.Capabilities),
	}

	for _, rs := range listing.RuleSets {
		stats.RuleCount += len(rs.Rules)
	}

	names := make(map[string]struct{})
	for _, row := range listing.Capabilities {
		names[advice.NormalizeCapabilityName(row.Name)] = struct{}{}
	}
	stats.CapabilityCount = len(names)

	return stats
}

// outputRules outputs the loaded pack.
func outputRules(formatter *OutputFormatter, listing PackListing, stats PackStats, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(listing)
	}

	// Human-readable text output
	fmt.Fprintf(formatter.Writer, "✓ Loaded %d rule set(s), %d rule(s), %d capability row(s) from %s\n\n",
		stats.RuleSetCount, stats.RuleCount, stats.RowCount, listing.Source)

	for _, rs := range listing.RuleSets {
		fmt.Fprintf(formatter.Writer, "%s: %s\n", rs.ID, rs.Description)
		for _, rule := range rs.Rules {
			fmt.Fprintf(formatter.Writer, "  %4d  %-28s %s\n", rule.Order, rule.ID, rule.Outcome)
		}
		fmt.Fprintln(formatter.Writer)
	}

	if stats.RowCount > 0 {
		fmt.Fprintf(formatter.Writer, "capability matrix: %d capabilities, %d row(s)\n",
			stats.CapabilityCount, stats.RowCount)
	}

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote compiled pack to %s\n", outputFile)
	}

	return nil
}

// writePackToFile writes the compiled pack to a file as indented JSON.
func writePackToFile(listing PackListing, filename string) error {
	data, err := json.MarshalIndent(listing, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling pack: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
