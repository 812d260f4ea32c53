package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sqlsage/sqlsage/internal/advice"
)

// NewFragmentationCommand creates the fragmentation command.
func NewFragmentationCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fragmentation <percent>",
		Short: "Recommend an index maintenance action",
		Long: `Recommend the maintenance action for a measured index fragmentation
percentage: leave the index alone, reorganize it, or rebuild it.

The percentage must lie within [0,100]. Band boundaries belong to the
higher band, so exactly 5 reorganizes and exactly 30 rebuilds.

Example:
  sqlsage fragmentation 3.2
  sqlsage fragmentation 27.5
  sqlsage fragmentation 42`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFragmentation(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runFragmentation(opts *RootOptions, arg string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	percent, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return outputFlagError(formatter, fmt.Errorf("fragmentation percent %q is not a number", arg))
	}

	adv, err := LoadAdvisor(opts, formatter)
	if err != nil {
		return err
	}

	fact := advice.FragmentationFact{FragmentationPercent: percent}

	requestID := opts.RequestID()
	formatter.VerboseLog("request %s: evaluating %s against %s",
		requestID, advice.RuleSetFragmentationAction, fact.Fields().String())

	rec, err := adv.AdviseFragmentation(fact)
	if err != nil {
		return outputAdviceError(formatter, err)
	}

	return outputAdvice(formatter, requestID, newAdviceResult(
		advice.RuleSetFragmentationAction, rec.RuleID, string(rec.Action), rec.Rationale, fact))
}
