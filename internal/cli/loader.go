package cli

import (
	"errors"
	"fmt"

	"github.com/sqlsage/sqlsage/internal/advisor"
	"github.com/sqlsage/sqlsage/internal/rulepack"
)

// LoadPack loads the advisory pack the options point at: the --rules
// directory (or SQLSAGE_RULES_DIR) when given, the embedded pack
// otherwise. A directory override replaces the embedded pack wholesale.
func LoadPack(opts *RootOptions, mode rulepack.Mode) (*rulepack.Pack, []error) {
	if opts.RulesDir != "" {
		return rulepack.LoadDir(opts.RulesDir, mode)
	}
	return rulepack.LoadEmbedded(mode)
}

// LoadAdvisor loads the pack and builds the serving advisor. Any load or
// snapshot error has already been rendered through the formatter when
// this returns a non-nil error.
func LoadAdvisor(opts *RootOptions, formatter *OutputFormatter) (*advisor.Advisor, error) {
	pack, errs := LoadPack(opts, rulepack.ModeFailFast)
	if len(errs) > 0 {
		return nil, outputLoadErrors(formatter, errs)
	}

	formatter.VerboseLog("Loaded %d rule set(s), %d capability row(s) from %s",
		len(pack.RuleSets), len(pack.Capabilities), pack.Source)

	adv, err := advisor.FromPack(pack)
	if err != nil {
		_ = formatter.Error(rulepack.ErrCodeGeneric, err.Error(), nil)
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", rulepack.ErrCodeGeneric, err.Error()))
	}
	return adv, nil
}

// outputLoadErrors renders the first pack loading error and returns the
// command-level ExitError. The validate command does its own multi-error
// rendering; everything else fails fast on the first problem.
func outputLoadErrors(formatter *OutputFormatter, errs []error) error {
	code, message := parseLoadError(errs[0])
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// parseLoadError extracts error code and message from an error.
func parseLoadError(err error) (string, string) {
	var loadErr *rulepack.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return rulepack.ErrCodeGeneric, err.Error()
}
