package prediction

import (
	"context"
	"fmt"

	"github.com/kilianp07/predsubmit/core/evalconfig"
	"github.com/kilianp07/predsubmit/core/factory"
	"github.com/kilianp07/predsubmit/core/helper"
	"github.com/kilianp07/predsubmit/core/model"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "cv_heading"

// Model predicts the future trajectory of the agent named by token.
type Model interface {
	Predict(ctx context.Context, token string) (model.Prediction, error)
}

// ModelFunc adapts a function to the Model interface.
type ModelFunc func(ctx context.Context, token string) (model.Prediction, error)

// Predict calls f.
func (f ModelFunc) Predict(ctx context.Context, token string) (model.Prediction, error) {
	return f(ctx, token)
}

// Params are handed to a model constructor.
type Params struct {
	Helper      *helper.Helper
	Config      evalconfig.PredictionConfig
	WeightsPath string
}

// Constructor builds a model from its parameters.
type Constructor func(p Params) (Model, error)

// ModelLoadError reports a model that could not be constructed.
type ModelLoadError struct {
	Model string
	Path  string
	Err   error
}

func (e *ModelLoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("load model %s from %s: %v", e.Model, e.Path, e.Err)
	}
	return fmt.Sprintf("load model %s: %v", e.Model, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

const paramsKey = "params"

var models = factory.NewRegistry[Model]()

// Register adds a model constructor identified by name.
func Register(name string, c Constructor) error {
	if c == nil {
		return fmt.Errorf("constructor nil for %s", name)
	}
	return models.Register(name, func(conf map[string]any) (Model, error) {
		p, ok := conf[paramsKey].(Params)
		if !ok {
			return nil, fmt.Errorf("missing model parameters")
		}
		return c(p)
	})
}

// MustRegister is Register for package init functions. It panics when name
// is already taken.
func MustRegister(name string, c Constructor) {
	if err := Register(name, c); err != nil {
		panic(fmt.Sprintf("register model %s: %v", name, err))
	}
}

// Models lists the registered model names.
func Models() []string { return models.Names() }

// LoadModel builds the model registered under name. Any failure, including
// an unknown name, is returned as a *ModelLoadError.
func LoadModel(name string, p Params) (Model, error) {
	if name == "" {
		name = DefaultModel
	}
	if !models.Has(name) {
		return nil, &ModelLoadError{Model: name, Err: fmt.Errorf("unknown model, registered: %v", models.Names())}
	}
	m, err := models.Create(factory.ModuleConfig{Type: name, Conf: map[string]any{paramsKey: p}})
	if err != nil {
		return nil, &ModelLoadError{Model: name, Path: p.WeightsPath, Err: err}
	}
	return m, nil
}
