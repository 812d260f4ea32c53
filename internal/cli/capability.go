package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlsage/sqlsage/internal/advice"
)

// CapabilityOptions holds flags for the capability command.
type CapabilityOptions struct {
	*RootOptions
	Environment string
}

// NewCapabilityCommand creates the capability command.
func NewCapabilityCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CapabilityOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "capability <name>",
		Short: "Resolve capability availability for an environment",
		Long: `Resolve how completely a deployment environment supports a named
SQL Server capability, with the constraint note when one applies.

Name matching folds case and surplus whitespace, so "query store" and
"Query Store" resolve to the same row.

Example:
  sqlsage capability "Query Store" --env managed-instance
  sqlsage capability "SQL Server Agent" --env on-prem
  sqlsage capability filestream --env azure-iaas`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapability(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Environment, "env", "", "deployment environment (on-prem|azure-iaas|managed-instance)")
	_ = cmd.MarkFlagRequired("env")

	return cmd
}

func runCapability(opts *CapabilityOptions, name string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	env, err := advice.ParseEnvironment(opts.Environment)
	if err != nil {
		return outputFlagError(formatter, err)
	}

	adv, err := LoadAdvisor(opts.RootOptions, formatter)
	if err != nil {
		return err
	}

	requestID := opts.RequestID()
	formatter.VerboseLog("request %s: resolving capability %q in %s", requestID, name, env)

	status, err := adv.ResolveCapability(name, env)
	if err != nil {
		return outputAdviceError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.SuccessWithTrace(status, requestID)
	}

	fmt.Fprintf(formatter.Writer, "✓ %s [%s]: %s\n", status.Name, status.Environment, status.Availability)
	if status.ConstraintNote != "" {
		fmt.Fprintf(formatter.Writer, "  %s\n", status.ConstraintNote)
	}
	return nil
}
