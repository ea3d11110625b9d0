package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/confluo/confluo/internal/compiler"
	"github.com/confluo/confluo/internal/harness"
	"github.com/confluo/confluo/internal/rewrite"
)

type simplifyJSON struct {
	Term    string `json:"term"`
	Normal  string `json:"normal"`
	Changed bool   `json:"changed"`
}

// NewSimplifyCommand creates the simplify command: complete the system
// for a signature directory, then reduce a term to its canonical form.
func NewSimplifyCommand(root *RootOptions) *cobra.Command {
	var maxIterations, maxDepth uint32

	cmd := &cobra.Command{
		Use:   "simplify <signature-dir> <term>",
		Short: "Reduce a term to canonical form against a completed system",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), root.Verbose)

			input, err := compiler.LoadDir(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "loading signatures", err)
			}

			system := rewrite.New(input.Graph)
			system.Initialize(input.Rules)
			result := system.Complete(maxIterations, maxDepth)
			if result != rewrite.Success {
				return NewExitError(ExitFailure,
					"cannot canonicalise against an incomplete system: "+result.String())
			}

			term, err := compiler.ParseTerm(args[1], input.Graph)
			if err != nil {
				return WrapExitError(ExitCommandError, "parsing term", err)
			}

			original := term.String()
			changed := system.Simplify(&term)
			logger.Debug("term simplified", "term", original, "normal", term.String(), "changed", changed)

			out := cmd.OutOrStdout()
			if root.Format == "json" {
				return writeJSON(out, simplifyJSON{
					Term:    original,
					Normal:  term.String(),
					Changed: changed,
				})
			}
			_, err = fmt.Fprintln(out, term.String())
			return err
		},
	}

	cmd.Flags().Uint32Var(&maxIterations, "max-iterations", harness.DefaultMaxIterations,
		"rules completion may add; the next added rule stops it with max_iterations")
	cmd.Flags().Uint32Var(&maxDepth, "max-depth", harness.DefaultMaxDepth,
		"maximum derivation depth of added rules")

	return cmd
}
