package cli

import (
	"github.com/spf13/cobra"

	"github.com/sqlsage/sqlsage/internal/advice"
)

// ConstructOptions holds flags for the construct command.
type ConstructOptions struct {
	*RootOptions
	Recursive   bool
	Correlated  bool
	TVF         bool
	Optional    bool
	ReuseCount  int
	Cardinality string
}

// NewConstructCommand creates the construct command.
func NewConstructCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConstructOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "construct",
		Short: "Recommend a T-SQL construct for a query shape",
		Long: `Recommend which T-SQL construct fits a described query shape.

The shape is declared through flags. The first matching rule of the
construct-selection rule set decides between CTE, inline or correlated
subquery, and CROSS/OUTER APPLY, and the output carries the rule's
rationale.

Example:
  sqlsage construct --recursive --cardinality set
  sqlsage construct --tvf --optional --cardinality set
  sqlsage construct --correlated --cardinality scalar`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConstruct(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Recursive, "recursive", false, "the shape needs recursive traversal")
	cmd.Flags().BoolVar(&opts.Correlated, "correlated", false, "the subexpression references outer-query columns")
	cmd.Flags().BoolVar(&opts.TVF, "tvf", false, "a table-valued function runs per outer row")
	cmd.Flags().BoolVar(&opts.Optional, "optional", false, "the applied relation may produce no rows")
	cmd.Flags().IntVar(&opts.ReuseCount, "reuse", 0, "how many times the block is referenced")
	cmd.Flags().StringVar(&opts.Cardinality, "cardinality", "", "result cardinality (scalar|set)")
	_ = cmd.MarkFlagRequired("cardinality")

	return cmd
}

func runConstruct(opts *ConstructOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cardinality, err := advice.ParseCardinality(opts.Cardinality)
	if err != nil {
		return outputFlagError(formatter, err)
	}

	adv, err := LoadAdvisor(opts.RootOptions, formatter)
	if err != nil {
		return err
	}

	fact := advice.QueryShapeFact{
		NeedsRecursion:             opts.Recursive,
		IsCorrelated:               opts.Correlated,
		InvokesTableValuedFunction: opts.TVF,
		OptionalRelation:           opts.Optional,
		ReuseCount:                 opts.ReuseCount,
		ResultCardinality:          cardinality,
	}

	requestID := opts.RequestID()
	formatter.VerboseLog("request %s: evaluating %s against %s",
		requestID, advice.RuleSetConstructSelection, fact.Fields().String())

	rec, err := adv.SelectConstruct(fact)
	if err != nil {
		return outputAdviceError(formatter, err)
	}

	return outputAdvice(formatter, requestID, newAdviceResult(
		advice.RuleSetConstructSelection, rec.RuleID, string(rec.Construct), rec.Rationale, fact))
}
