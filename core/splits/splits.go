// Package splits resolves a prediction challenge split name to the ordered
// list of instance_sample tokens to run inference on.
package splits

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ErrUnknownSplit is returned for a split name the provider does not know.
var ErrUnknownSplit = errors.New("unknown split")

// numInTrainVal is the number of train scenes held out as train_val.
const numInTrainVal = 200

// Names are the split names accepted by ChallengeSplits.
var Names = []string{"mini_train", "mini_val", "train", "train_val", "val"}

var miniScenes = map[string][]string{
	"mini_train": {"scene-0061", "scene-0553", "scene-0655", "scene-0757", "scene-0796", "scene-1077", "scene-1094", "scene-1100"},
	"mini_val":   {"scene-0103", "scene-0916"},
}

// Provider returns the tokens of a named split.
type Provider interface {
	Tokens(ctx context.Context, split string) ([]string, error)
}

// ChallengeSplits reads splits from the prediction files shipped under
// <DataRoot>/maps/prediction.
type ChallengeSplits struct {
	DataRoot string
}

// PredictionScenesPath returns the location of the scene to token mapping.
func PredictionScenesPath(dataRoot string) string {
	return filepath.Join(dataRoot, "maps", "prediction", "prediction_scenes.json")
}

// SceneSplitsPath returns the location of the train/val scene lists.
func SceneSplitsPath(dataRoot string) string {
	return filepath.Join(dataRoot, "maps", "prediction", "splits.json")
}

// Tokens returns the tokens of split in scene order.
func (c ChallengeSplits) Tokens(ctx context.Context, split string) ([]string, error) {
	scenes, err := c.scenes(split)
	if err != nil {
		return nil, err
	}
	var byScene map[string][]string
	if err := readJSON(PredictionScenesPath(c.DataRoot), &byScene); err != nil {
		return nil, err
	}
	tokens := make([]string, 0)
	for _, s := range scenes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tokens = append(tokens, byScene[s]...)
	}
	return tokens, nil
}

func (c ChallengeSplits) scenes(split string) ([]string, error) {
	if s, ok := miniScenes[split]; ok {
		return s, nil
	}
	var base string
	switch split {
	case "train", "train_val":
		base = "train"
	case "val":
		base = "val"
	default:
		return nil, fmt.Errorf("%w %q: must be one of %v", ErrUnknownSplit, split, Names)
	}
	var lists map[string][]string
	if err := readJSON(SceneSplitsPath(c.DataRoot), &lists); err != nil {
		return nil, err
	}
	scenes, ok := lists[base]
	if !ok {
		return nil, fmt.Errorf("%w %q: no %s scene list in %s", ErrUnknownSplit, split, base, SceneSplitsPath(c.DataRoot))
	}
	cut := min(numInTrainVal, len(scenes))
	switch split {
	case "train":
		return scenes[cut:], nil
	case "train_val":
		return scenes[:cut], nil
	}
	return scenes, nil
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// StaticSplits serves splits from memory.
type StaticSplits map[string][]string

// Tokens returns a copy of the configured tokens for split.
func (s StaticSplits) Tokens(_ context.Context, split string) ([]string, error) {
	toks, ok := s[split]
	if !ok {
		known := make([]string, 0, len(s))
		for k := range s {
			known = append(known, k)
		}
		sort.Strings(known)
		return nil, fmt.Errorf("%w %q: must be one of %v", ErrUnknownSplit, split, known)
	}
	out := make([]string, len(toks))
	copy(out, toks)
	return out, nil
}
