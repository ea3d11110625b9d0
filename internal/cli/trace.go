package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/confluo/confluo/internal/trace"
)

type traceRunJSON struct {
	ID       int64  `json:"id"`
	Token    string `json:"token"`
	Source   string `json:"source"`
	Result   string `json:"result"`
	Created  string `json:"created_at"`
	MaxIter  uint32 `json:"max_iterations"`
	MaxDepth uint32 `json:"max_depth"`
}

// NewTraceCommand creates the trace command: list recorded completion
// runs, or show one run's final rule vector.
func NewTraceCommand(root *RootOptions) *cobra.Command {
	var runID int64

	cmd := &cobra.Command{
		Use:   "trace <trace-db>",
		Short: "Inspect recorded completion runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err != nil {
				return WrapExitError(ExitCommandError, "trace database", err)
			}
			rec, err := trace.Open(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "opening trace database", err)
			}
			defer rec.Close()

			if cmd.Flags().Changed("run") {
				return showRun(cmd, root, rec, runID)
			}
			return listRuns(cmd, root, rec)
		},
	}

	cmd.Flags().Int64Var(&runID, "run", 0, "show the rule vector of one run")

	return cmd
}

func listRuns(cmd *cobra.Command, root *RootOptions, rec *trace.Recorder) error {
	runs, err := rec.ListRuns(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if root.Format == "json" {
		payload := make([]traceRunJSON, 0, len(runs))
		for _, run := range runs {
			payload = append(payload, traceRunJSON{
				ID:       run.ID,
				Token:    run.Token,
				Source:   run.Source,
				Result:   run.Result,
				Created:  run.CreatedAt,
				MaxIter:  run.MaxIter,
				MaxDepth: run.MaxDepth,
			})
		}
		return writeJSON(out, payload)
	}

	for _, run := range runs {
		fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%s\n",
			run.ID, run.Token, run.Result, run.Source, run.CreatedAt)
	}
	return nil
}

func showRun(cmd *cobra.Command, root *RootOptions, rec *trace.Recorder, runID int64) error {
	rules, err := rec.Rules(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("no rules recorded for run %d", runID))
	}

	out := cmd.OutOrStdout()
	if root.Format == "json" {
		payload := make([]ruleJSON, 0, len(rules))
		for _, r := range rules {
			payload = append(payload, ruleJSON{
				LHS: r.LHS, RHS: r.RHS, Depth: r.Depth, Deleted: r.Deleted,
			})
		}
		return writeJSON(out, payload)
	}

	for _, r := range rules {
		marker := ""
		if r.Deleted {
			marker = " [deleted]"
		}
		fmt.Fprintf(out, "- %s => %s%s\n", r.LHS, r.RHS, marker)
	}
	return nil
}
