// Package physics provides kinematic baseline models that need no weights:
// a constant velocity and heading model and an oracle that picks the best
// of four kinematic models against the ground truth future.
package physics

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/predsubmit/core/helper"
	"github.com/kilianp07/predsubmit/core/model"
	"github.com/kilianp07/predsubmit/core/prediction"
)

const (
	// CVHeadingName is the registry name of ConstantVelocityHeading.
	CVHeadingName = "cv_heading"
	// OracleName is the registry name of Oracle.
	OracleName = "physics_oracle"
)

var errNoHelper = errors.New("physics model requires a prediction helper")

func init() {
	prediction.MustRegister(CVHeadingName, func(p prediction.Params) (prediction.Model, error) {
		return NewConstantVelocityHeading(p), nil
	})
	prediction.MustRegister(OracleName, func(p prediction.Params) (prediction.Model, error) {
		return NewOracle(p)
	})
}

type baseline struct {
	seconds   int
	sampledAt int
	helper    *helper.Helper
}

func newBaseline(p prediction.Params) baseline {
	return baseline{seconds: p.Config.Seconds, sampledAt: p.Config.Frequency, helper: p.Helper}
}

func (b baseline) kinematics(token string) (string, string, kinematics, error) {
	if b.helper == nil {
		return "", "", kinematics{}, errNoHelper
	}
	if b.seconds <= 0 || b.sampledAt <= 0 {
		return "", "", kinematics{}, fmt.Errorf("invalid horizon %ds at %dHz", b.seconds, b.sampledAt)
	}
	instance, sample, err := model.ParseToken(token)
	if err != nil {
		return "", "", kinematics{}, err
	}
	k, err := kinematicsFromTokens(b.helper, instance, sample)
	if err != nil {
		return "", "", kinematics{}, err
	}
	return instance, sample, k, nil
}

// ConstantVelocityHeading extrapolates the current velocity along the
// current heading. Its output is deterministic for a given dataset.
type ConstantVelocityHeading struct {
	baseline
}

// NewConstantVelocityHeading builds the model. Weights are ignored.
func NewConstantVelocityHeading(p prediction.Params) *ConstantVelocityHeading {
	return &ConstantVelocityHeading{baseline: newBaseline(p)}
}

// Predict returns a single mode with probability 1.
func (m *ConstantVelocityHeading) Predict(ctx context.Context, token string) (model.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return model.Prediction{}, err
	}
	instance, sample, k, err := m.kinematics(token)
	if err != nil {
		return model.Prediction{}, err
	}
	return model.Prediction{
		Instance:      instance,
		Sample:        sample,
		Modes:         []model.Trajectory{constantVelocityHeading(k, m.seconds, m.sampledAt)},
		Probabilities: []float64{1},
	}, nil
}

// Oracle predicts with four kinematic models and keeps the one closest to
// the ground truth. It bounds what physics baselines can achieve and needs
// annotated futures, so it cannot run on the test split.
type Oracle struct {
	baseline
}

// NewOracle builds the oracle. Weights are ignored.
func NewOracle(p prediction.Params) (*Oracle, error) {
	if p.Helper == nil {
		return nil, errNoHelper
	}
	return &Oracle{baseline: newBaseline(p)}, nil
}

type pathFunc func(k kinematics, seconds, sampledAt int) model.Trajectory

var oracleCandidates = []pathFunc{
	constantVelocityHeading,
	constantAccelerationAndHeading,
	constantSpeedAndYawRate,
	constantMagnitudeAccelAndYawRate,
}

// Predict returns the candidate with the smallest Frobenius distance to the
// ground truth future.
func (m *Oracle) Predict(ctx context.Context, token string) (model.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return model.Prediction{}, err
	}
	instance, sample, k, err := m.kinematics(token)
	if err != nil {
		return model.Prediction{}, err
	}
	truth, err := m.helper.FutureForAgent(instance, sample, float64(m.seconds), false)
	if err != nil {
		return model.Prediction{}, err
	}
	n, _ := horizon(m.seconds, m.sampledAt)
	if len(truth) != n {
		return model.Prediction{}, fmt.Errorf("ground truth for %s has %d points, want %d for %d seconds", token, len(truth), n, m.seconds)
	}
	gt := flatten(truth)

	var (
		best     model.Trajectory
		bestDist = math.Inf(1)
	)
	for _, f := range oracleCandidates {
		path := f(k, m.seconds, m.sampledAt)
		if d := floats.Distance(flatten(path), gt, 2); d < bestDist {
			best, bestDist = path, d
		}
	}
	return model.Prediction{
		Instance:      instance,
		Sample:        sample,
		Modes:         []model.Trajectory{best},
		Probabilities: []float64{1},
	}, nil
}

func flatten(t model.Trajectory) []float64 {
	out := make([]float64, 0, 2*len(t))
	for _, p := range t {
		out = append(out, p[0], p[1])
	}
	return out
}
