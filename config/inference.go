package config

import "fmt"

// InferenceConfig tunes how predictions are produced.
type InferenceConfig struct {
	// Model names the registered model used when the command line does not
	// select one.
	Model string `json:"model"`
	// Workers bounds concurrent Predict calls. 1 keeps split order.
	Workers int `json:"workers"`
	// ProgressEvery logs progress after this many tokens. 0 disables it.
	ProgressEvery int `json:"progress_every"`
}

// SetDefaults applies sane defaults.
func (c *InferenceConfig) SetDefaults() {
	if c.Model == "" {
		c.Model = "cv_heading"
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
}

// Validate checks mandatory fields.
func (c InferenceConfig) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.ProgressEvery < 0 {
		return fmt.Errorf("progress_every must not be negative, got %d", c.ProgressEvery)
	}
	return nil
}
