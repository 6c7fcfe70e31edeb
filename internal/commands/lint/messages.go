package lintcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-til/pkg/interfaces"
)

const (
	checkTreeMessageType = "til.lint.check_tree"
	checkFileMessageType = "til.lint.check_file"
)

// ResultCallback receives the lint report produced by a check run. The
// callback is optional and is invoked synchronously from the handler before
// any error is returned.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope carries the outcome of a lint command execution.
type ResultEnvelope struct {
	Report   *interfaces.Report
	Metadata map[string]any
}

// CheckTreeCommand lints every note file under Directory.
type CheckTreeCommand struct {
	// Directory selects the notes tree to walk.
	Directory      string         `json:"directory"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (CheckTreeCommand) Type() string { return checkTreeMessageType }

// Validate ensures directory input is present before handlers execute.
func (cmd CheckTreeCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("til.lint.check_tree.directory_required", "directory is required")
			}
			return nil
		})),
	)
}

// CheckFileCommand lints a single note file.
type CheckFileCommand struct {
	// Path selects the note file to check.
	Path           string         `json:"path"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (CheckFileCommand) Type() string { return checkFileMessageType }

// Validate ensures path input is present before handlers execute.
func (cmd CheckFileCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Path, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("til.lint.check_file.path_required", "path is required")
			}
			return nil
		})),
	)
}

// FeatureGates exposes runtime feature toggles required by lint command
// handlers. Lint is a core workflow, so a missing gate counts as enabled.
type FeatureGates struct {
	LintEnabled func() bool
}

func (g FeatureGates) lintEnabled() bool {
	if g.LintEnabled == nil {
		return true
	}
	return g.LintEnabled()
}
