// Package precomputed replays predictions from an earlier submission file.
// The weights path names that file, which lets predictions produced outside
// this tool be re-packaged for a new split or submission name.
package precomputed

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/predsubmit/core/model"
	"github.com/kilianp07/predsubmit/core/prediction"
	"github.com/kilianp07/predsubmit/core/submission"
)

// Name is the registry name of the model.
const Name = "precomputed"

func init() {
	prediction.MustRegister(Name, func(p prediction.Params) (prediction.Model, error) {
		return Load(p.WeightsPath)
	})
}

// Model serves predictions keyed by token.
type Model struct {
	byToken map[string]model.Prediction
}

// Load reads the submission file at path.
func Load(path string) (*Model, error) {
	if path == "" {
		return nil, errors.New("weights path is required")
	}
	preds, err := submission.Read(path)
	if err != nil {
		return nil, err
	}
	m := &Model{byToken: make(map[string]model.Prediction, len(preds))}
	for i, p := range preds {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		m.byToken[p.Token()] = p
	}
	return m, nil
}

// Len returns the number of stored predictions.
func (m *Model) Len() int { return len(m.byToken) }

// Predict returns the stored prediction for token.
func (m *Model) Predict(_ context.Context, token string) (model.Prediction, error) {
	p, ok := m.byToken[token]
	if !ok {
		return model.Prediction{}, fmt.Errorf("no precomputed prediction for %s", token)
	}
	return p, nil
}
