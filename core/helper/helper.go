package helper

import (
	"fmt"
	"math"

	"github.com/kilianp07/predsubmit/core/dataset"
	"github.com/kilianp07/predsubmit/core/model"
)

const (
	// timeBuffer tolerates jitter in keyframe timestamps.
	timeBuffer = 0.15
	// samplesPerSecond is the keyframe rate of the dataset.
	samplesPerSecond = 2
	// maxTimeDiff is the largest gap, in seconds, used for finite differences.
	maxTimeDiff = 1.5
)

type direction int

const (
	forward direction = iota
	backward
)

// Helper resolves agent history and kinematics from (instance, sample) pairs.
type Helper struct {
	data  dataset.Dataset
	index map[string]string
}

// New indexes the annotations of data by instance and sample.
func New(data dataset.Dataset) *Helper {
	anns := data.Annotations()
	idx := make(map[string]string, len(anns))
	for _, a := range anns {
		idx[model.Token(a.InstanceToken, a.SampleToken)] = a.Token
	}
	return &Helper{data: data, index: idx}
}

// Dataset returns the wrapped dataset.
func (h *Helper) Dataset() dataset.Dataset { return h.data }

// SampleAnnotation returns the annotation of instance at sample.
func (h *Helper) SampleAnnotation(instance, sample string) (dataset.SampleAnnotation, error) {
	tok, ok := h.index[model.Token(instance, sample)]
	if !ok {
		return dataset.SampleAnnotation{}, fmt.Errorf("annotation for instance %s at sample %s: %w", instance, sample, dataset.ErrNotFound)
	}
	return h.data.SampleAnnotation(tok)
}

func (h *Helper) timestamp(sample string) (float64, error) {
	s, err := h.data.Sample(sample)
	if err != nil {
		return 0, err
	}
	return s.Seconds(), nil
}

func (h *Helper) iterate(start dataset.SampleAnnotation, seconds float64, dir direction) ([]dataset.SampleAnnotation, error) {
	buffered := seconds + timeBuffer
	startTime, err := h.timestamp(start.SampleToken)
	if err != nil {
		return nil, err
	}
	maxAnns := int(samplesPerSecond * seconds)
	var out []dataset.SampleAnnotation
	cur := start
	elapsed := 0.0
	for math.Abs(elapsed) <= buffered && len(out) < maxAnns {
		next := cur.Next
		if dir == backward {
			next = cur.Prev
		}
		if next == "" {
			break
		}
		if cur, err = h.data.SampleAnnotation(next); err != nil {
			return nil, err
		}
		ts, err := h.timestamp(cur.SampleToken)
		if err != nil {
			return nil, err
		}
		elapsed = ts - startTime
		if math.Abs(elapsed) < buffered {
			out = append(out, cur)
		}
	}
	return out, nil
}

func (h *Helper) pathForAgent(instance, sample string, seconds float64, inAgentFrame bool, dir direction) (model.Trajectory, error) {
	start, err := h.SampleAnnotation(instance, sample)
	if err != nil {
		return nil, err
	}
	anns, err := h.iterate(start, seconds, dir)
	if err != nil {
		return nil, err
	}
	path := make(model.Trajectory, len(anns))
	for i, a := range anns {
		path[i] = model.Point{a.Translation[0], a.Translation[1]}
	}
	if inAgentFrame {
		path = GlobalToLocal(path, start.Translation, start.Rotation)
	}
	return path, nil
}

// FutureForAgent returns up to seconds of future xy positions of instance
// after sample.
func (h *Helper) FutureForAgent(instance, sample string, seconds float64, inAgentFrame bool) (model.Trajectory, error) {
	return h.pathForAgent(instance, sample, seconds, inAgentFrame, forward)
}

// PastForAgent returns up to seconds of past xy positions of instance before
// sample, most recent first.
func (h *Helper) PastForAgent(instance, sample string, seconds float64, inAgentFrame bool) (model.Trajectory, error) {
	return h.pathForAgent(instance, sample, seconds, inAgentFrame, backward)
}

type diffFunc func(cur, prev dataset.SampleAnnotation, dt float64) (float64, error)

// diffWithPrevious applies fn to the annotation at sample and its predecessor.
// It yields NaN when there is no predecessor or it is too far in the past.
func (h *Helper) diffWithPrevious(instance, sample string, fn diffFunc) (float64, error) {
	cur, err := h.SampleAnnotation(instance, sample)
	if err != nil {
		return 0, err
	}
	if cur.Prev == "" {
		return math.NaN(), nil
	}
	prev, err := h.data.SampleAnnotation(cur.Prev)
	if err != nil {
		return 0, err
	}
	curTime, err := h.timestamp(sample)
	if err != nil {
		return 0, err
	}
	prevTime, err := h.timestamp(prev.SampleToken)
	if err != nil {
		return 0, err
	}
	dt := curTime - prevTime
	if dt > maxTimeDiff {
		return math.NaN(), nil
	}
	return fn(cur, prev, dt)
}

// VelocityForAgent returns the planar speed in m/s, or NaN when unknown.
func (h *Helper) VelocityForAgent(instance, sample string) (float64, error) {
	return h.diffWithPrevious(instance, sample, func(cur, prev dataset.SampleAnnotation, dt float64) (float64, error) {
		dx := (cur.Translation[0] - prev.Translation[0]) / dt
		dy := (cur.Translation[1] - prev.Translation[1]) / dt
		return math.Hypot(dx, dy), nil
	})
}

// HeadingChangeRateForAgent returns the yaw rate in rad/s, or NaN when unknown.
func (h *Helper) HeadingChangeRateForAgent(instance, sample string) (float64, error) {
	return h.diffWithPrevious(instance, sample, func(cur, prev dataset.SampleAnnotation, dt float64) (float64, error) {
		d := AngleDiff(QuaternionYaw(cur.Rotation), QuaternionYaw(prev.Rotation), 2*math.Pi)
		return d / dt, nil
	})
}

// AccelerationForAgent returns the change in speed in m/s², or NaN when unknown.
func (h *Helper) AccelerationForAgent(instance, sample string) (float64, error) {
	return h.diffWithPrevious(instance, sample, func(cur, prev dataset.SampleAnnotation, dt float64) (float64, error) {
		v, err := h.VelocityForAgent(instance, cur.SampleToken)
		if err != nil {
			return 0, err
		}
		pv, err := h.VelocityForAgent(instance, prev.SampleToken)
		if err != nil {
			return 0, err
		}
		return (v - pv) / dt, nil
	})
}
