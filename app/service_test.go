package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/predsubmit/config"
	"github.com/kilianp07/predsubmit/core/dataset"
	"github.com/kilianp07/predsubmit/core/factory"
	"github.com/kilianp07/predsubmit/core/inference"
	"github.com/kilianp07/predsubmit/core/model"
	"github.com/kilianp07/predsubmit/core/prediction"
	"github.com/kilianp07/predsubmit/core/splits"
	"github.com/kilianp07/predsubmit/core/submission"
	"github.com/kilianp07/predsubmit/infra/journal"
	"github.com/kilianp07/predsubmit/infra/logger"
	"github.com/kilianp07/predsubmit/test/util"
)

var stub = prediction.StaticModel{
	Predictions: map[string]model.Prediction{
		"tok1": {Instance: "a", Sample: "s1", Modes: []model.Trajectory{{{0, 0}}}},
		"tok2": {Instance: "b", Sample: "s2", Modes: []model.Trajectory{{{1, 1}}}},
	},
	Fail: map[string]bool{"bad": true},
}

func init() {
	if err := prediction.Register("stub", func(prediction.Params) (prediction.Model, error) {
		return stub, nil
	}); err != nil {
		panic(err)
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Journal = journal.Config{Enabled: true, Backend: "jsonl", Path: filepath.Join(t.TempDir(), "runs.jsonl")}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func stubService(t *testing.T, cfg *config.Config, loaded *bool) *Service {
	t.Helper()
	svc, err := New(cfg,
		WithLogger(logger.NopLogger{}),
		WithDatasetLoader(func(context.Context, string, string, logger.Logger) (dataset.Dataset, error) {
			if loaded != nil {
				*loaded = true
			}
			return util.Scene(3).Memory(), nil
		}),
		WithSplits(func(string) splits.Provider {
			return splits.StaticSplits{"mini_val": {"tok1", "tok2"}, "broken": {"tok1", "bad", "tok2"}}
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func stubRequest(outDir string) Request {
	return Request{
		Version:        "v1.0-mini",
		DataRoot:       "unused",
		SplitName:      "mini_val",
		ModelWeights:   "none",
		OutputDir:      outDir,
		SubmissionName: "demo",
		Model:          "stub",
	}
}

func TestRunWritesSubmission(t *testing.T) {
	cfg := testConfig(t)
	textfile := filepath.Join(t.TempDir(), "predsubmit.prom")
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "prometheus", Conf: map[string]any{"textfile": textfile}}}
	svc := stubService(t, cfg, nil)
	out := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.Mkdir(out, 0o755))

	res, err := svc.Run(context.Background(), stubRequest(out))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "demo_inference.json"), res.Path)
	assert.Equal(t, 2, res.Predictions)
	assert.NotEmpty(t, res.RunID)

	b, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	want := `[{"instance":"a","sample":"s1","prediction":[[0,0]]}, {"instance":"b","sample":"s2","prediction":[[1,1]]}]`
	assert.JSONEq(t, want, string(b))

	recs, err := svc.Journal().Query(context.Background(), journal.RunQuery{Submission: "demo"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, res.RunID, recs[0].RunID)
	assert.Equal(t, "predict_2020_icra", recs[0].ConfigName)
	assert.Equal(t, 2, recs[0].Tokens)
	assert.Empty(t, recs[0].Error)

	prom, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "predsubmit_")
}

func TestRunMissingOutputDir(t *testing.T) {
	svc := stubService(t, testConfig(t), nil)
	out := filepath.Join(t.TempDir(), "missing")

	_, err := svc.Run(context.Background(), stubRequest(out))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	_, statErr := os.Stat(submission.Path(out, "demo"))
	assert.True(t, errors.Is(statErr, os.ErrNotExist))

	recs, err := svc.Journal().Query(context.Background(), journal.RunQuery{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.NotEmpty(t, recs[0].Error)
}

func TestRunValidatesBeforeLoading(t *testing.T) {
	var loaded bool
	svc := stubService(t, testConfig(t), &loaded)
	req := stubRequest(t.TempDir())
	req.SubmissionName = "../escape"

	_, err := svc.Run(context.Background(), req)
	require.ErrorIs(t, err, submission.ErrInvalidName)
	assert.True(t, IsUsageError(err))
	assert.False(t, loaded)
}

func TestRunModelFailureLeavesNoFile(t *testing.T) {
	svc := stubService(t, testConfig(t), nil)
	out := t.TempDir()
	req := stubRequest(out)
	req.SplitName = "broken"

	_, err := svc.Run(context.Background(), req)
	var te *inference.TokenError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 1, te.Index)
	assert.Equal(t, "bad", te.Token)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunUnknownSplitAndModel(t *testing.T) {
	svc := stubService(t, testConfig(t), nil)
	req := stubRequest(t.TempDir())
	req.SplitName = "test"
	_, err := svc.Run(context.Background(), req)
	require.ErrorIs(t, err, splits.ErrUnknownSplit)
	assert.True(t, IsUsageError(err))

	req = stubRequest(t.TempDir())
	req.Model = "transformer"
	_, err = svc.Run(context.Background(), req)
	var le *prediction.ModelLoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "transformer", le.Model)
}

func TestRunFixtureWithConstantVelocity(t *testing.T) {
	root := t.TempDir()
	util.Straight(16, 2).WriteDataset(t, root)
	cfg := testConfig(t)
	cfg.Inference.Workers = 2
	svc, err := New(cfg, WithLogger(logger.NopLogger{}))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	out := t.TempDir()
	res, err := svc.Run(context.Background(), Request{
		Version:        util.FixtureVersion,
		DataRoot:       root,
		SplitName:      "mini_val",
		ModelWeights:   "unused",
		OutputDir:      out,
		SubmissionName: "cv",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Predictions)

	preds, err := submission.Read(res.Path)
	require.NoError(t, err)
	require.Len(t, preds, 2)
	assert.Equal(t, "inst1", preds[0].Instance)
	assert.Equal(t, "inst2", preds[1].Instance)
	require.NoError(t, submission.Validate(preds, 12))

	recs, err := svc.Journal().Query(context.Background(), journal.RunQuery{Submission: "cv"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "cv_heading", recs[0].Model)
}
