package dataset

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a token does not exist in a table.
var ErrNotFound = errors.New("record not found")

// Sample is a single timestamped keyframe of a scene.
type Sample struct {
	Token      string `json:"token"`
	Timestamp  int64  `json:"timestamp"` // microseconds
	SceneToken string `json:"scene_token"`
	Prev       string `json:"prev"`
	Next       string `json:"next"`
}

// Seconds returns the sample timestamp in seconds.
func (s Sample) Seconds() float64 { return float64(s.Timestamp) * 1e-6 }

// SampleAnnotation is the state of one instance at one sample.
type SampleAnnotation struct {
	Token         string     `json:"token"`
	SampleToken   string     `json:"sample_token"`
	InstanceToken string     `json:"instance_token"`
	Translation   [3]float64 `json:"translation"`
	Size          [3]float64 `json:"size"`
	// Rotation is a quaternion in w, x, y, z order.
	Rotation [4]float64 `json:"rotation"`
	Prev     string     `json:"prev"`
	Next     string     `json:"next"`
}

// Instance is a tracked object across a scene.
type Instance struct {
	Token                string `json:"token"`
	CategoryToken        string `json:"category_token"`
	NbrAnnotations       int    `json:"nbr_annotations"`
	FirstAnnotationToken string `json:"first_annotation_token"`
	LastAnnotationToken  string `json:"last_annotation_token"`
}

// Scene is a contiguous recording.
type Scene struct {
	Token            string `json:"token"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	FirstSampleToken string `json:"first_sample_token"`
	LastSampleToken  string `json:"last_sample_token"`
	NbrSamples       int    `json:"nbr_samples"`
}

// Dataset exposes the tables needed by the prediction helper.
type Dataset interface {
	Version() string
	Sample(token string) (Sample, error)
	SampleAnnotation(token string) (SampleAnnotation, error)
	Instance(token string) (Instance, error)
	Scene(token string) (Scene, error)
	// Annotations returns every sample annotation in table order.
	Annotations() []SampleAnnotation
}

// NotFound wraps ErrNotFound with the table and token.
func NotFound(table, token string) error {
	return fmt.Errorf("%s %q: %w", table, token, ErrNotFound)
}
