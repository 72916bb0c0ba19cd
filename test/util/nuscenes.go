// Package util builds small nuScenes-style datasets for tests.
package util

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/kilianp07/predsubmit/core/dataset"
)

const (
	// FixtureVersion is the dataset version written by WriteDataset.
	FixtureVersion = "v1.0-mini"
	// FixtureScene is the name of the single fixture scene. It belongs to the
	// mini_val split.
	FixtureScene = "scene-0103"

	baseTimestamp = int64(1532402927647951)
	stepMicros    = int64(500000)
)

// Fixture is a tiny nuScenes-style dataset made of one scene with evenly
// spaced keyframes. The challenge tokens target inst1 and inst2 at s2.
type Fixture struct {
	Scenes      []dataset.Scene
	Samples     []dataset.Sample
	Annotations []dataset.SampleAnnotation
	Instances   []dataset.Instance
	// PredictionTokens maps scene names to the challenge tokens.
	PredictionTokens map[string][]string
}

// SampleToken returns the fixture token of the i-th keyframe.
func SampleToken(i int) string { return fmt.Sprintf("s%d", i) }

// Straight builds a fixture with n keyframes 0.5 s apart; inst1 moves at
// speed m/s along +x starting from the origin.
func Straight(n int, speed float64) Fixture {
	f := Scene(n)
	f.AddTrack("inst1", func(i int) [3]float64 {
		return [3]float64{speed * 0.5 * float64(i), 0, 0}
	})
	f.AddTrack("inst2", func(int) [3]float64 {
		return [3]float64{10, 10, 0}
	})
	return f
}

// Scene builds a fixture with n keyframes 0.5 s apart and no agents.
func Scene(n int) Fixture {
	f := Fixture{
		Scenes: []dataset.Scene{{
			Token:            "scene1",
			Name:             FixtureScene,
			FirstSampleToken: SampleToken(0),
			LastSampleToken:  SampleToken(n - 1),
			NbrSamples:       n,
		}},
		PredictionTokens: map[string][]string{
			FixtureScene: {"inst1_" + SampleToken(2), "inst2_" + SampleToken(2)},
		},
	}
	for i := 0; i < n; i++ {
		s := dataset.Sample{
			Token:      SampleToken(i),
			Timestamp:  baseTimestamp + int64(i)*stepMicros,
			SceneToken: "scene1",
		}
		if i > 0 {
			s.Prev = SampleToken(i - 1)
		}
		if i < n-1 {
			s.Next = SampleToken(i + 1)
		}
		f.Samples = append(f.Samples, s)
	}
	return f
}

// AddTrack annotates instance on every keyframe at pos(i), facing +x.
func (f *Fixture) AddTrack(instance string, pos func(i int) [3]float64) {
	n := len(f.Samples)
	tok := func(i int) string { return fmt.Sprintf("%s-a%d", instance, i) }
	for i := 0; i < n; i++ {
		a := dataset.SampleAnnotation{
			Token:         tok(i),
			SampleToken:   SampleToken(i),
			InstanceToken: instance,
			Translation:   pos(i),
			Size:          [3]float64{1.9, 4.5, 1.6},
			Rotation:      [4]float64{1, 0, 0, 0},
		}
		if i > 0 {
			a.Prev = tok(i - 1)
		}
		if i < n-1 {
			a.Next = tok(i + 1)
		}
		f.Annotations = append(f.Annotations, a)
	}
	f.Instances = append(f.Instances, dataset.Instance{
		Token:                instance,
		CategoryToken:        "vehicle.car",
		NbrAnnotations:       n,
		FirstAnnotationToken: tok(0),
		LastAnnotationToken:  tok(n - 1),
	})
}

// Memory returns the fixture as an in-memory dataset.
func (f Fixture) Memory() *dataset.Memory {
	return dataset.NewMemory(FixtureVersion, f.Scenes, f.Samples, f.Annotations, f.Instances)
}

// Tokens returns the challenge tokens of the fixture scene.
func (f Fixture) Tokens() []string { return f.PredictionTokens[FixtureScene] }

// WriteDataset writes the fixture tables under root/FixtureVersion and the
// prediction scenes file under root/maps/prediction.
func (f Fixture) WriteDataset(t testing.TB, root string) {
	t.Helper()
	dir := filepath.Join(root, FixtureVersion)
	tables := map[string]any{
		"scene.json":             f.Scenes,
		"sample.json":            f.Samples,
		"sample_annotation.json": f.Annotations,
		"instance.json":          f.Instances,
	}
	for name, v := range tables {
		WriteJSON(t, filepath.Join(dir, name), v)
	}
	WriteJSON(t, filepath.Join(root, "maps", "prediction", "prediction_scenes.json"), f.PredictionTokens)
}

// WriteJSON marshals v to path, creating parent directories.
func WriteJSON(t testing.TB, path string, v any) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", path, err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
