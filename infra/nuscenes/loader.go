// Package nuscenes loads the nuScenes JSON tables needed for prediction from
// <data_root>/<version>.
package nuscenes

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/predsubmit/core/dataset"
	"github.com/kilianp07/predsubmit/infra/logger"
)

// KnownVersions are the published dataset versions.
var KnownVersions = []string{"v1.0-mini", "v1.0-trainval", "v1.0-test"}

// Load reads the scene, sample, sample_annotation and instance tables.
func Load(ctx context.Context, version, dataRoot string, log logger.Logger) (*dataset.Memory, error) {
	log = logger.OrNop(log)
	if version == "" {
		return nil, fmt.Errorf("dataset version is required")
	}
	if !slices.Contains(KnownVersions, version) {
		log.Warnf("unknown dataset version %s, known: %v", version, KnownVersions)
	}
	dir := filepath.Join(dataRoot, version)
	st, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", version, err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("dataset %s: %s is not a directory", version, dir)
	}

	start := time.Now()
	var (
		scenes    []dataset.Scene
		samples   []dataset.Sample
		anns      []dataset.SampleAnnotation
		instances []dataset.Instance
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return readTable(gctx, dir, "scene", &scenes) })
	g.Go(func() error { return readTable(gctx, dir, "sample", &samples) })
	g.Go(func() error { return readTable(gctx, dir, "sample_annotation", &anns) })
	g.Go(func() error { return readTable(gctx, dir, "instance", &instances) })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Infow("dataset loaded", map[string]any{
		"version":     version,
		"scenes":      len(scenes),
		"samples":     len(samples),
		"annotations": len(anns),
		"instances":   len(instances),
		"elapsed_ms":  time.Since(start).Milliseconds(),
	})
	return dataset.NewMemory(version, scenes, samples, anns, instances), nil
}

func readTable(ctx context.Context, dir, table string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(dir, table+".json")
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("table %s: %w", table, err)
	}
	defer func() { _ = f.Close() }()
	if err := json.NewDecoder(f).Decode(out); err != nil {
		return fmt.Errorf("decode table %s: %w", table, err)
	}
	return nil
}
