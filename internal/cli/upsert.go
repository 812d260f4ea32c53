package cli

import (
	"github.com/spf13/cobra"

	"github.com/sqlsage/sqlsage/internal/advice"
)

// UpsertOptions holds flags for the upsert command.
type UpsertOptions struct {
	*RootOptions
	Branches int
	Audit    bool
	Rows     string
}

// NewUpsertCommand creates the upsert command.
func NewUpsertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UpsertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "upsert",
		Short: "Recommend MERGE or a split UPDATE/INSERT pair",
		Long: `Recommend the statement shape for an upsert: a single MERGE or a
split UPDATE-then-INSERT pair.

Needing a row-level audit trail forces MERGE regardless of the other
flags; otherwise heavily branched logic and simple bulk writes split.

Example:
  sqlsage upsert --audit
  sqlsage upsert --branches 4
  sqlsage upsert --rows large`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpsert(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Branches, "branches", 0, "distinct conditional branches in the write logic")
	cmd.Flags().BoolVar(&opts.Audit, "audit", false, "a row-level audit trail of the write is required")
	cmd.Flags().StringVar(&opts.Rows, "rows", "small", "estimated rows touched (small|large)")

	return cmd
}

func runUpsert(opts *UpsertOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	rows, err := advice.ParseRowCountHint(opts.Rows)
	if err != nil {
		return outputFlagError(formatter, err)
	}

	adv, err := LoadAdvisor(opts.RootOptions, formatter)
	if err != nil {
		return err
	}

	fact := advice.MergeDecisionFact{
		ConditionalBranchCount: opts.Branches,
		NeedsRowLevelAudit:     opts.Audit,
		EstimatedRowCount:      rows,
	}

	requestID := opts.RequestID()
	formatter.VerboseLog("request %s: evaluating %s against %s",
		requestID, advice.RuleSetMergeVsSplit, fact.Fields().String())

	rec, err := adv.ChooseUpsertStrategy(fact)
	if err != nil {
		return outputAdviceError(formatter, err)
	}

	return outputAdvice(formatter, requestID, newAdviceResult(
		advice.RuleSetMergeVsSplit, rec.RuleID, string(rec.Strategy), rec.Rationale, fact))
}
