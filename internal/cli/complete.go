package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/confluo/confluo/internal/compiler"
	"github.com/confluo/confluo/internal/harness"
	"github.com/confluo/confluo/internal/rewrite"
	"github.com/confluo/confluo/internal/trace"
)

// CompleteOptions holds flags for the complete command.
type CompleteOptions struct {
	MaxIterations uint32
	MaxDepth      uint32
	TraceDB       string
	RunToken      string
}

type ruleJSON struct {
	LHS     string `json:"lhs"`
	RHS     string `json:"rhs"`
	Depth   uint32 `json:"depth"`
	Deleted bool   `json:"deleted,omitempty"`
}

type completeJSON struct {
	Result string     `json:"result"`
	Rules  []ruleJSON `json:"rules"`
}

// NewCompleteCommand creates the complete command: load signature files,
// run Knuth-Bendix completion, print the resulting system.
func NewCompleteCommand(root *RootOptions) *cobra.Command {
	opts := &CompleteOptions{}

	cmd := &cobra.Command{
		Use:   "complete <signature-dir>",
		Short: "Compute a confluent rewrite system from signature files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComplete(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().Uint32Var(&opts.MaxIterations, "max-iterations", harness.DefaultMaxIterations,
		"rules completion may add; the next added rule stops it with max_iterations")
	cmd.Flags().Uint32Var(&opts.MaxDepth, "max-depth", harness.DefaultMaxDepth,
		"maximum derivation depth of added rules")
	cmd.Flags().StringVar(&opts.TraceDB, "trace-db", "",
		"record the run to this SQLite trace database")
	cmd.Flags().StringVar(&opts.RunToken, "run-token", "",
		"fixed run token for the trace record (default: generated UUIDv7)")

	return cmd
}

func runComplete(cmd *cobra.Command, root *RootOptions, opts *CompleteOptions, dir string) error {
	logger := newLogger(cmd.ErrOrStderr(), root.Verbose)

	input, err := compiler.LoadDir(dir)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading signatures", err)
	}
	logger.Debug("signatures loaded",
		"dir", dir,
		"protocols", len(input.Graph.Protocols()),
		"rules", len(input.Rules))

	system := rewrite.New(input.Graph)
	system.Initialize(input.Rules)
	result := system.Complete(opts.MaxIterations, opts.MaxDepth)
	logger.Debug("completion finished", "result", result.String(), "rules", len(system.Rules()))

	if opts.TraceDB != "" {
		if err := recordRun(cmd.Context(), opts, dir, system, result); err != nil {
			return WrapExitError(ExitCommandError, "recording trace", err)
		}
	}

	out := cmd.OutOrStdout()
	switch root.Format {
	case "json":
		payload := completeJSON{Result: result.String()}
		for _, r := range system.Rules() {
			payload.Rules = append(payload.Rules, ruleJSON{
				LHS:     r.LHS().String(),
				RHS:     r.RHS().String(),
				Depth:   r.Depth(),
				Deleted: r.Deleted(),
			})
		}
		if err := writeJSON(out, payload); err != nil {
			return err
		}
	default:
		if err := system.Dump(out); err != nil {
			return err
		}
	}

	if result != rewrite.Success {
		return NewExitError(ExitFailure, "completion stopped: "+result.String())
	}
	return nil
}

func recordRun(ctx context.Context, opts *CompleteOptions, dir string, system *rewrite.System, result rewrite.CompletionResult) error {
	rec, err := trace.Open(opts.TraceDB)
	if err != nil {
		return err
	}
	defer rec.Close()

	token := opts.RunToken
	if token == "" {
		token = harness.UUIDv7Generator{}.Generate()
	}

	var rows []trace.RuleRow
	for i, r := range system.Rules() {
		rows = append(rows, trace.RuleRow{
			Seq:     i,
			LHS:     r.LHS().String(),
			RHS:     r.RHS().String(),
			Depth:   r.Depth(),
			Deleted: r.Deleted(),
		})
	}

	_, err = rec.RecordRun(ctx, trace.Run{
		Token:    token,
		Source:   strings.TrimSuffix(dir, "/"),
		Result:   result.String(),
		MaxIter:  opts.MaxIterations,
		MaxDepth: opts.MaxDepth,
	}, rows)
	return err
}
