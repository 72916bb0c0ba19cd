package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidToken is returned when a token is not an instance_sample pair.
var ErrInvalidToken = errors.New("invalid token")

// ErrInvalidPoint is returned when a decoded point does not hold exactly two
// coordinates.
var ErrInvalidPoint = errors.New("invalid point")

// Point is an (x, y) position in metres.
type Point [2]float64

// UnmarshalJSON decodes [x, y] and rejects any other number of coordinates.
func (p *Point) UnmarshalJSON(b []byte) error {
	var xy []float64
	if err := json.Unmarshal(b, &xy); err != nil {
		return err
	}
	if len(xy) != 2 {
		return fmt.Errorf("%w: %d coordinates, want 2", ErrInvalidPoint, len(xy))
	}
	p[0], p[1] = xy[0], xy[1]
	return nil
}

// Trajectory is an ordered list of future positions, one per time step.
type Trajectory []Point

// Prediction is the output of a model for one (instance, sample) token.
type Prediction struct {
	Instance      string
	Sample        string
	Modes         []Trajectory
	Probabilities []float64
}

// ParseToken splits a token of the form "<instance>_<sample>".
func ParseToken(token string) (instance, sample string, err error) {
	parts := strings.Split(token, "_")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidToken, token)
	}
	return parts[0], parts[1], nil
}

// Token builds the instance_sample token for a pair.
func Token(instance, sample string) string {
	return instance + "_" + sample
}

// Token returns the instance_sample token this prediction answers.
func (p Prediction) Token() string { return Token(p.Instance, p.Sample) }

// NumModes returns the number of candidate trajectories.
func (p Prediction) NumModes() int { return len(p.Modes) }

// Validate checks the prediction can be serialized into a submission entry.
func (p Prediction) Validate() error {
	if p.Instance == "" || p.Sample == "" {
		return fmt.Errorf("prediction missing instance or sample token")
	}
	if len(p.Modes) == 0 {
		return fmt.Errorf("prediction %s has no modes", p.Token())
	}
	if n := len(p.Probabilities); n != 0 && n != len(p.Modes) {
		return fmt.Errorf("prediction %s has %d modes but %d probabilities", p.Token(), len(p.Modes), n)
	}
	for i, m := range p.Modes {
		if len(m) == 0 {
			return fmt.Errorf("prediction %s mode %d is empty", p.Token(), i)
		}
		for _, pt := range m {
			if !finite(pt[0]) || !finite(pt[1]) {
				return fmt.Errorf("prediction %s mode %d has non-finite coordinates", p.Token(), i)
			}
		}
	}
	for _, pr := range p.Probabilities {
		if !finite(pr) {
			return fmt.Errorf("prediction %s has non-finite probability", p.Token())
		}
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

type wirePrediction struct {
	Instance      string          `json:"instance"`
	Sample        string          `json:"sample"`
	Prediction    json.RawMessage `json:"prediction"`
	Probabilities []float64       `json:"probabilities,omitempty"`
}

// MarshalJSON writes the submission entry. A single mode without
// probabilities is written as a bare trajectory.
func (p Prediction) MarshalJSON() ([]byte, error) {
	var (
		raw []byte
		err error
	)
	switch {
	case len(p.Modes) == 1 && len(p.Probabilities) == 0:
		raw, err = json.Marshal(nonNil(p.Modes[0]))
	default:
		modes := make([]Trajectory, len(p.Modes))
		for i, m := range p.Modes {
			modes[i] = nonNil(m)
		}
		raw, err = json.Marshal(modes)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(wirePrediction{
		Instance:      p.Instance,
		Sample:        p.Sample,
		Prediction:    raw,
		Probabilities: p.Probabilities,
	})
}

// UnmarshalJSON accepts both the multi-mode and the bare trajectory form.
func (p *Prediction) UnmarshalJSON(b []byte) error {
	var w wirePrediction
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	out := Prediction{Instance: w.Instance, Sample: w.Sample, Probabilities: w.Probabilities}
	if len(w.Prediction) > 0 && string(w.Prediction) != "null" {
		var modes []Trajectory
		if nesting(w.Prediction) == 2 {
			var single Trajectory
			if err := json.Unmarshal(w.Prediction, &single); err != nil {
				return fmt.Errorf("decode prediction for %s: %w", Token(w.Instance, w.Sample), err)
			}
			modes = []Trajectory{single}
		} else if err := json.Unmarshal(w.Prediction, &modes); err != nil {
			return fmt.Errorf("decode prediction for %s: %w", Token(w.Instance, w.Sample), err)
		}
		out.Modes = modes
	}
	*p = out
	return nil
}

// nesting counts the leading brackets of a JSON array: 2 for a bare
// trajectory, 3 for a list of modes.
func nesting(raw []byte) int {
	n := 0
	for _, c := range raw {
		switch c {
		case '[':
			n++
		case ' ', '\t', '\n', '\r':
		default:
			return n
		}
	}
	return n
}

func nonNil(t Trajectory) Trajectory {
	if t == nil {
		return Trajectory{}
	}
	return t
}
