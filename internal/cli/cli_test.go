package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSignature = `
protocols: [
	{name: "Sequence"},
	{name: "Collection", inherits: ["Sequence"]},
]

rules: [
	{lhs: "τ_0_0.[Collection]", rhs: "τ_0_0"},
	{lhs: "τ_0_0.[Collection:Element]", rhs: "τ_0_0.[Sequence:Element]"},
]
`

const chainSignature = `
rules: [
	{lhs: "a.b", rhs: "a"},
	{lhs: "b.c", rhs: "b"},
	{lhs: "c.d", rhs: "c"},
	{lhs: "d.e", rhs: "d"},
	{lhs: "e.f", rhs: "e"},
]
`

func writeSignatureDir(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sig.cue"), []byte(src), 0o644))
	return dir
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRoot_InvalidFormat(t *testing.T) {
	dir := writeSignatureDir(t, testSignature)

	_, _, err := execute(t, "--format", "xml", "complete", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestComplete_TextDump(t *testing.T) {
	dir := writeSignatureDir(t, testSignature)

	stdout, _, err := execute(t, "complete", dir)
	require.NoError(t, err)
	assert.Equal(t,
		"Rewrite system: {\n"+
			"- τ_0_0.[Collection] => τ_0_0\n"+
			"- τ_0_0.[Collection:Element] => τ_0_0.[Sequence:Element]\n"+
			"}\n",
		stdout)
}

func TestComplete_JSON(t *testing.T) {
	dir := writeSignatureDir(t, testSignature)

	stdout, _, err := execute(t, "--format", "json", "complete", dir)
	require.NoError(t, err)

	var payload struct {
		Result string `json:"result"`
		Rules  []struct {
			LHS   string `json:"lhs"`
			RHS   string `json:"rhs"`
			Depth uint32 `json:"depth"`
		} `json:"rules"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &payload))
	assert.Equal(t, "success", payload.Result)
	require.Len(t, payload.Rules, 2)
	assert.Equal(t, "τ_0_0.[Collection]", payload.Rules[0].LHS)
}

func TestComplete_BudgetExhaustedExitCode(t *testing.T) {
	dir := writeSignatureDir(t, chainSignature)

	_, _, err := execute(t, "complete", dir, "--max-iterations", "3")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "max_iterations")
}

func TestComplete_MissingDirExitCode(t *testing.T) {
	_, _, err := execute(t, "complete", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestComplete_RecordsTrace(t *testing.T) {
	dir := writeSignatureDir(t, testSignature)
	db := filepath.Join(t.TempDir(), "trace.db")

	_, _, err := execute(t, "complete", dir, "--trace-db", db, "--run-token", "cli-run-1")
	require.NoError(t, err)

	stdout, _, err := execute(t, "trace", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "cli-run-1")
	assert.Contains(t, stdout, "success")
}

func TestTrace_ShowRun(t *testing.T) {
	dir := writeSignatureDir(t, testSignature)
	db := filepath.Join(t.TempDir(), "trace.db")

	_, _, err := execute(t, "complete", dir, "--trace-db", db, "--run-token", "cli-run-1")
	require.NoError(t, err)

	stdout, _, err := execute(t, "trace", db, "--run", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "- τ_0_0.[Collection] => τ_0_0\n")
}

func TestTrace_MissingDB(t *testing.T) {
	_, _, err := execute(t, "trace", filepath.Join(t.TempDir(), "none.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTrace_UnknownRun(t *testing.T) {
	dir := writeSignatureDir(t, testSignature)
	db := filepath.Join(t.TempDir(), "trace.db")

	_, _, err := execute(t, "complete", dir, "--trace-db", db)
	require.NoError(t, err)

	_, _, err = execute(t, "trace", db, "--run", "42")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestSimplify_Text(t *testing.T) {
	dir := writeSignatureDir(t, testSignature)

	stdout, _, err := execute(t, "simplify", dir, "τ_0_0.[Collection]")
	require.NoError(t, err)
	assert.Equal(t, "τ_0_0\n", stdout)
}

func TestSimplify_JSON(t *testing.T) {
	dir := writeSignatureDir(t, testSignature)

	stdout, _, err := execute(t, "--format", "json", "simplify", dir, "τ_0_0.[Collection]")
	require.NoError(t, err)

	var payload struct {
		Term    string `json:"term"`
		Normal  string `json:"normal"`
		Changed bool   `json:"changed"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &payload))
	assert.Equal(t, "τ_0_0.[Collection]", payload.Term)
	assert.Equal(t, "τ_0_0", payload.Normal)
	assert.True(t, payload.Changed)
}

func TestSimplify_BadTerm(t *testing.T) {
	dir := writeSignatureDir(t, testSignature)

	_, _, err := execute(t, "simplify", dir, "[Undeclared]")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSimplify_Verbose(t *testing.T) {
	dir := writeSignatureDir(t, testSignature)

	_, stderr, err := execute(t, "-v", "simplify", dir, "τ_0_0.[Collection]")
	require.NoError(t, err)
	assert.Contains(t, stderr, "term simplified")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "boom")))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
}
