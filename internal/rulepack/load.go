package rulepack

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/sqlsage/sqlsage/internal/advice"
	"github.com/sqlsage/sqlsage/internal/compiler"
)

// Mode controls how errors are handled during pack loading.
type Mode int

const (
	// ModeFailFast stops on the first error encountered.
	ModeFailFast Mode = iota
	// ModeCollectAll collects all errors before returning.
	ModeCollectAll
)

// Pack holds the compiled content of one advisory pack: the rule sets and
// the capability matrix rows, plus where they came from. When loading
// reports errors the returned pack is partial and must not be served.
type Pack struct {
	RuleSets     []advice.RuleSet
	Capabilities []advice.CapabilityRow
	Source       string
	FileCount    int
}

// LoadError represents an error that occurred during pack loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across loading and the CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeEmbedded    = "E008" // Embedded pack unreadable

	// Pack content errors
	ErrCodeCompile    = "E101" // rule set or matrix failed to compile
	ErrCodeValidation = "E102" // rule set or matrix failed schema validation
	ErrCodeEmptyPack  = "E103" // no rule sets or capability rows found
)

// virtualDir is the directory the embedded pack pretends to live in; the
// CUE loader wants absolute paths even for overlay-only file systems.
const virtualDir = "/sqlsage/rulepack"

// LoadEmbedded compiles the built-in pack. Errors here are packaging
// defects rather than user input, so callers treat them as fatal.
func LoadEmbedded(mode Mode) (*Pack, []error) {
	entries, err := fs.ReadDir(Files, ".")
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeEmbedded, Message: fmt.Sprintf("reading embedded pack: %v", err)}}
	}

	cfg := &load.Config{Dir: virtualDir, Overlay: map[string]load.Source{}}
	count := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".cue" {
			continue
		}
		data, readErr := fs.ReadFile(Files, entry.Name())
		if readErr != nil {
			return nil, []error{&LoadError{Code: ErrCodeEmbedded, Message: fmt.Sprintf("reading embedded file %s: %v", entry.Name(), readErr)}}
		}
		cfg.Overlay[filepath.Join(virtualDir, entry.Name())] = load.FromBytes(data)
		count++
	}
	if count == 0 {
		return nil, []error{&LoadError{Code: ErrCodeEmbedded, Message: "embedded pack contains no CUE files"}}
	}

	value, loadErr := buildValue(cfg)
	if loadErr != nil {
		return nil, []error{loadErr}
	}
	return buildPack(value, EmbeddedSource, count, mode)
}

// LoadDir compiles a pack from a directory of CUE files. The directory
// replaces the embedded pack wholesale, so it must carry every rule set
// and the capability matrix itself.
func LoadDir(dir string, mode Mode) (*Pack, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("rules directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing rules directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	value, loadErr := buildValue(&load.Config{Dir: dir})
	if loadErr != nil {
		return nil, []error{loadErr}
	}
	return buildPack(value, dir, len(cueFiles), mode)
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// buildValue loads the single CUE instance the config points at and builds
// its unified value.
func buildValue(cfg *load.Config) (cue.Value, *LoadError) {
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return cue.Value{}, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return cue.Value{}, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return cue.Value{}, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}
	return value, nil
}

// buildPack extracts and validates every rule set and the capability
// matrix from the unified CUE value.
func buildPack(value cue.Value, source string, fileCount int, mode Mode) (*Pack, []error) {
	var errs []error
	pack := &Pack{Source: source, FileCount: fileCount}

	rulesetVal := value.LookupPath(cue.ParsePath("ruleset"))
	if rulesetVal.Exists() {
		iter, iterErr := rulesetVal.Fields()
		if iterErr != nil {
			errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating rule sets: %v", iterErr)})
			if mode == ModeFailFast {
				return pack, errs
			}
		} else {
			for iter.Next() {
				id := selectorName(iter.Selector())
				rs, compileErr := compiler.CompileRuleSet(id, iter.Value())
				if compileErr != nil {
					errs = append(errs, convertCompileError(compileErr, "ruleset."+id))
					if mode == ModeFailFast {
						return pack, errs
					}
					continue
				}
				if verrs := appendValidation(&errs, "ruleset "+id, compiler.Validate(rs)); verrs {
					if mode == ModeFailFast {
						return pack, errs
					}
					continue
				}
				pack.RuleSets = append(pack.RuleSets, *rs)
			}
		}
	}

	capVal := value.LookupPath(cue.ParsePath("capability"))
	if capVal.Exists() {
		rows, compileErr := compiler.CompileCapabilities(capVal)
		if compileErr != nil {
			errs = append(errs, convertCompileError(compileErr, "capability"))
			if mode == ModeFailFast {
				return pack, errs
			}
		} else if verrs := appendValidation(&errs, "capability matrix", compiler.Validate(rows)); verrs {
			if mode == ModeFailFast {
				return pack, errs
			}
		} else {
			pack.Capabilities = rows
		}
	}

	if len(pack.RuleSets) == 0 && len(pack.Capabilities) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeEmptyPack, Message: "no rule sets or capability rows found in pack"})
	}

	return pack, errs
}

// selectorName unwraps a struct field selector to its plain name, handling
// quoted labels like "construct-selection".
func selectorName(sel cue.Selector) string {
	if sel.LabelType() == cue.StringLabel {
		return sel.Unquoted()
	}
	return sel.String()
}

// appendValidation converts validation errors to LoadErrors under the
// given context label. Reports whether any were appended.
func appendValidation(errs *[]error, context string, verrs []compiler.ValidationError) bool {
	for _, ve := range verrs {
		*errs = append(*errs, &LoadError{
			Code:    ErrCodeValidation,
			Message: fmt.Sprintf("%s: %s", context, ve.Error()),
		})
	}
	return len(verrs) > 0
}

// convertCompileError converts a compiler error to a LoadError with
// position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeCompile,
			Message: fmt.Sprintf("%s: %s: %s", context, compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeCompile,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}
