package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/predsubmit/core/model"
	"github.com/kilianp07/predsubmit/core/submission"
	"github.com/kilianp07/predsubmit/test/util"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeRunConfig(t *testing.T, journalPath string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "predsubmit.yaml")
	data := "journal:\n  enabled: true\n  backend: jsonl\n  path: " + journalPath + "\nlog_level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestRootRunsInferenceAndListsRuns(t *testing.T) {
	root := t.TempDir()
	util.Straight(16, 2).WriteDataset(t, root)
	out := t.TempDir()
	cfg := writeRunConfig(t, filepath.Join(t.TempDir(), "runs.jsonl"))

	stdout, err := execute(t,
		"--config", cfg,
		"--version", util.FixtureVersion,
		"--data_root", root,
		"--split_name", "mini_val",
		"--model_weights", "unused",
		"--output_dir", out,
		"--submission_name", "demo",
	)
	require.NoError(t, err, stdout)
	assert.Contains(t, stdout, "wrote 2 predictions")

	path := submission.Path(out, "demo")
	_, err = os.Stat(path)
	require.NoError(t, err)

	stdout, err = execute(t, "validate", path)
	require.NoError(t, err, stdout)
	assert.Contains(t, stdout, "2 predictions valid")

	stdout, err = execute(t, "runs", "--config", cfg, "--submission", "demo", "--since", "1h")
	require.NoError(t, err, stdout)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "demo")
	assert.Contains(t, lines[1], "cv_heading")
	assert.Contains(t, lines[1], "ok")
}

func TestRootRequiresFlags(t *testing.T) {
	_, err := execute(t, "--version", "v1.0-mini")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestRootMissingOutputDir(t *testing.T) {
	root := t.TempDir()
	util.Straight(16, 2).WriteDataset(t, root)
	out := filepath.Join(t.TempDir(), "missing")

	_, err := execute(t,
		"--version", util.FixtureVersion,
		"--data_root", root,
		"--split_name", "mini_val",
		"--model_weights", "unused",
		"--output_dir", out,
		"--submission_name", "demo",
	)
	require.Error(t, err)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestValidateRejectsShortHorizon(t *testing.T) {
	dir := t.TempDir()
	path, err := submission.Write(dir, "short", []model.Prediction{
		{Instance: "a", Sample: "s1", Modes: []model.Trajectory{{{0, 0}, {1, 1}}}},
	})
	require.NoError(t, err)

	_, err = execute(t, "validate", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want 12")
}

func TestExportCSV(t *testing.T) {
	dir := t.TempDir()
	path, err := submission.Write(dir, "demo", []model.Prediction{
		{Instance: "a", Sample: "s1", Modes: []model.Trajectory{{{0, 0}, {1, 1}}}},
	})
	require.NoError(t, err)

	stdout, err := execute(t, "export", path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "a,s1,0,,1,1,1", lines[2])

	_, err = execute(t, "export", "--format", "xml", path)
	require.Error(t, err)
}

func TestValidateRejectsMalformedPoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken_inference.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"instance":"a","sample":"s1","prediction":[[0]]}]`), 0o644))

	_, err := execute(t, "validate", path)
	require.ErrorIs(t, err, model.ErrInvalidPoint)
}
