package prediction

import (
	"context"
	"fmt"

	"github.com/kilianp07/predsubmit/core/model"
)

// StaticModel returns the configured prediction for each token.
type StaticModel struct {
	Predictions map[string]model.Prediction
	// Err, when set, is returned for Fail tokens.
	Err  error
	Fail map[string]bool
}

// Predict returns the configured prediction or an error for unknown tokens.
func (m StaticModel) Predict(_ context.Context, token string) (model.Prediction, error) {
	if m.Fail[token] {
		if m.Err != nil {
			return model.Prediction{}, m.Err
		}
		return model.Prediction{}, fmt.Errorf("model failure for %s", token)
	}
	p, ok := m.Predictions[token]
	if !ok {
		return model.Prediction{}, fmt.Errorf("no prediction for %s", token)
	}
	return p, nil
}
