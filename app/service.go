// Package app wires the dataset, split, model and submission packages into a
// single inference run.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/predsubmit/app/plugins"
	"github.com/kilianp07/predsubmit/config"
	"github.com/kilianp07/predsubmit/core/dataset"
	"github.com/kilianp07/predsubmit/core/evalconfig"
	"github.com/kilianp07/predsubmit/core/helper"
	"github.com/kilianp07/predsubmit/core/inference"
	coremetrics "github.com/kilianp07/predsubmit/core/metrics"
	"github.com/kilianp07/predsubmit/core/prediction"
	"github.com/kilianp07/predsubmit/core/splits"
	"github.com/kilianp07/predsubmit/core/submission"
	"github.com/kilianp07/predsubmit/infra/journal"
	"github.com/kilianp07/predsubmit/infra/logger"
	_ "github.com/kilianp07/predsubmit/infra/metrics"
	_ "github.com/kilianp07/predsubmit/infra/models"
	"github.com/kilianp07/predsubmit/infra/nuscenes"
)

// Request holds the parameters of one inference run.
type Request struct {
	Version        string
	DataRoot       string
	SplitName      string
	ModelWeights   string
	OutputDir      string
	SubmissionName string
	// ConfigName defaults to evalconfig.DefaultName.
	ConfigName string
	// Model defaults to the run config's inference.model.
	Model string
	// Workers defaults to the run config's inference.workers.
	Workers int
}

// Result describes a successful run.
type Result struct {
	RunID       string
	Path        string
	Predictions int
}

// DatasetLoader opens the dataset for a version under a data root.
type DatasetLoader func(ctx context.Context, version, dataRoot string, log logger.Logger) (dataset.Dataset, error)

// SplitsFactory returns the split provider for a data root.
type SplitsFactory func(dataRoot string) splits.Provider

// Service runs inference and records what it did.
type Service struct {
	cfg         *config.Config
	log         logger.Logger
	loadDataset DatasetLoader
	splits      SplitsFactory
	journal     journal.Store
	newID       func() string
	now         func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithDatasetLoader replaces the nuScenes table loader.
func WithDatasetLoader(l DatasetLoader) Option { return func(s *Service) { s.loadDataset = l } }

// WithSplits replaces the challenge split files.
func WithSplits(f SplitsFactory) Option { return func(s *Service) { s.splits = f } }

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) Option { return func(s *Service) { s.log = logger.OrNop(l) } }

// New creates a Service from the configuration. The run journal is opened
// here when enabled.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		var err error
		if cfg, err = config.Load(""); err != nil {
			return nil, err
		}
	}
	s := &Service{
		cfg: cfg,
		log: logger.New("service"),
		loadDataset: func(ctx context.Context, version, dataRoot string, log logger.Logger) (dataset.Dataset, error) {
			return nuscenes.Load(ctx, version, dataRoot, log)
		},
		splits: func(dataRoot string) splits.Provider { return splits.ChallengeSplits{DataRoot: dataRoot} },
		newID:  func() string { return uuid.NewString() },
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.Journal.Enabled {
		store, err := plugins.OpenJournal(cfg.Journal)
		if err != nil {
			return nil, fmt.Errorf("journal: %w", err)
		}
		s.journal = store
	}
	return s, nil
}

// Journal returns the run journal, or nil when it is disabled.
func (s *Service) Journal() journal.Store { return s.journal }

// Run performs one inference run and writes the submission file. Any
// failure aborts the run; the submission file is only written when every
// token was predicted.
func (s *Service) Run(ctx context.Context, req Request) (res Result, err error) {
	req = s.withDefaults(req)
	res.RunID = s.newID()
	start := s.now()
	var tokens int
	sink, err := coremetrics.NewMetricsSink(s.cfg.Metrics.Sinks)
	if err != nil {
		return res, fmt.Errorf("metrics sink: %w", err)
	}
	defer func() {
		s.record(ctx, sink, req, res, tokens, start, err)
	}()

	if err := submission.CheckName(req.SubmissionName); err != nil {
		return res, err
	}
	if err := submission.CheckDir(req.OutputDir); err != nil {
		return res, err
	}
	s.log.Infow("inference run started", map[string]any{
		"run_id": res.RunID, "version": req.Version, "split": req.SplitName,
		"model": req.Model, "config": req.ConfigName,
	})

	data, err := s.loadDataset(ctx, req.Version, req.DataRoot, s.log)
	if err != nil {
		return res, fmt.Errorf("load dataset: %w", err)
	}
	h := helper.New(data)

	toks, err := s.splits(req.DataRoot).Tokens(ctx, req.SplitName)
	if err != nil {
		return res, fmt.Errorf("split %s: %w", req.SplitName, err)
	}
	tokens = len(toks)

	pcfg, err := evalconfig.Factory(req.ConfigName)
	if err != nil {
		return res, fmt.Errorf("config %s: %w", req.ConfigName, err)
	}

	m, err := prediction.LoadModel(req.Model, prediction.Params{
		Helper:      h,
		Config:      pcfg,
		WeightsPath: req.ModelWeights,
	})
	if err != nil {
		return res, err
	}

	preds, err := inference.Run(ctx, m, toks,
		inference.WithWorkers(req.Workers),
		inference.WithSink(sink),
		inference.WithModelName(req.Model),
		inference.WithLogger(s.log),
		inference.WithProgressEvery(s.cfg.Inference.ProgressEvery),
	)
	if err != nil {
		return res, fmt.Errorf("inference: %w", err)
	}

	path, err := submission.Write(req.OutputDir, req.SubmissionName, preds)
	if err != nil {
		return res, fmt.Errorf("write submission: %w", err)
	}
	res.Path = path
	res.Predictions = len(preds)
	s.log.Infow("submission written", map[string]any{
		"run_id": res.RunID, "path": path, "predictions": len(preds),
	})
	return res, nil
}

func (s *Service) withDefaults(req Request) Request {
	if req.ConfigName == "" {
		req.ConfigName = evalconfig.DefaultName
	}
	if req.Model == "" {
		req.Model = s.cfg.Inference.Model
	}
	if req.Model == "" {
		req.Model = prediction.DefaultModel
	}
	if req.Workers == 0 {
		req.Workers = s.cfg.Inference.Workers
	}
	return req
}

// record reports the run to the metrics sinks and the journal. Failures here
// are logged and never change the run outcome.
func (s *Service) record(ctx context.Context, sink coremetrics.MetricsSink, req Request, res Result, tokens int, start time.Time, runErr error) {
	dur := s.now().Sub(start)
	var errMsg string
	if runErr != nil {
		errMsg = runErr.Error()
		s.log.Errorf("run %s failed: %v", res.RunID, runErr)
	}
	sum := coremetrics.RunSummary{
		RunID:       res.RunID,
		Submission:  req.SubmissionName,
		Split:       req.SplitName,
		Version:     req.Version,
		Model:       req.Model,
		Tokens:      tokens,
		Predictions: res.Predictions,
		Duration:    dur,
		Err:         errMsg,
		Time:        start,
	}
	if err := coremetrics.Finish(sink, sum); err != nil {
		s.log.Warnf("metrics: %v", err)
	}
	if s.journal == nil {
		return
	}
	rec := journal.RunRecord{
		RunID:       res.RunID,
		Timestamp:   start,
		Submission:  req.SubmissionName,
		Version:     req.Version,
		Split:       req.SplitName,
		ConfigName:  req.ConfigName,
		Model:       req.Model,
		Weights:     req.ModelWeights,
		OutputPath:  res.Path,
		Tokens:      tokens,
		Predictions: res.Predictions,
		DurationMs:  dur.Milliseconds(),
		Error:       errMsg,
	}
	// a cancelled run is still journaled
	if err := s.journal.Append(context.WithoutCancel(ctx), rec); err != nil {
		s.log.Warnf("journal: %v", err)
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.journal == nil {
		return nil
	}
	return s.journal.Close()
}

// IsUsageError reports whether err was caused by invalid run parameters
// rather than by the dataset or the model.
func IsUsageError(err error) bool {
	return errors.Is(err, submission.ErrInvalidName) ||
		errors.Is(err, splits.ErrUnknownSplit) ||
		errors.Is(err, evalconfig.ErrUnknownConfig)
}
