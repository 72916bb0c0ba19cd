// Package evalconfig provides the prediction challenge configurations: the
// horizon a model must predict and the metrics the benchmark reports.
package evalconfig

import (
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// DefaultName is the configuration used when none is requested.
const DefaultName = "predict_2020_icra"

// ErrUnknownConfig is returned for a name that is neither built in nor a file.
var ErrUnknownConfig = errors.New("unknown prediction config")

//go:embed configs/*.json
var builtin embed.FS

// Aggregator names how per-agent metric values are combined.
type Aggregator struct {
	Name string `json:"name"`
}

// MetricConfig describes one benchmark metric.
type MetricConfig struct {
	Name        string       `json:"name"`
	KToReport   []int        `json:"k_to_report"`
	Tolerance   float64      `json:"tolerance"`
	Aggregators []Aggregator `json:"aggregators"`
}

// PredictionConfig is the read-only challenge configuration.
type PredictionConfig struct {
	// Seconds is the prediction horizon.
	Seconds int `json:"seconds"`
	// Frequency is the number of predicted points per second.
	Frequency int            `json:"frequency"`
	Metrics   []MetricConfig `json:"metrics"`
}

// HorizonPoints returns the number of points a trajectory must contain.
func (c PredictionConfig) HorizonPoints() int { return c.Seconds * c.Frequency }

// Validate checks mandatory fields.
func (c PredictionConfig) Validate() error {
	if c.Seconds <= 0 {
		return fmt.Errorf("seconds must be positive, got %d", c.Seconds)
	}
	if c.Frequency <= 0 {
		return fmt.Errorf("frequency must be positive, got %d", c.Frequency)
	}
	for i, m := range c.Metrics {
		if m.Name == "" {
			return fmt.Errorf("metric %d has no name", i)
		}
	}
	return nil
}

// Factory returns the configuration called name. Names ending in .json,
// .yaml or .yml are read from disk; anything else must be built in.
func Factory(name string) (PredictionConfig, error) {
	if name == "" {
		name = DefaultName
	}
	k := koanf.New(".")
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".json":
		if err := k.Load(file.Provider(name), json.Parser()); err != nil {
			return PredictionConfig{}, fmt.Errorf("load config %s: %w", name, err)
		}
	case ".yaml", ".yml":
		if err := k.Load(file.Provider(name), yaml.Parser()); err != nil {
			return PredictionConfig{}, fmt.Errorf("load config %s: %w", name, err)
		}
	default:
		b, err := builtin.ReadFile("configs/" + name + ".json")
		if err != nil {
			return PredictionConfig{}, fmt.Errorf("%w: %s", ErrUnknownConfig, name)
		}
		if err := k.Load(rawbytes.Provider(b), json.Parser()); err != nil {
			return PredictionConfig{}, fmt.Errorf("parse config %s: %w", name, err)
		}
	}
	var cfg PredictionConfig
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return PredictionConfig{}, fmt.Errorf("decode config %s: %w", name, err)
	}
	if err := cfg.Validate(); err != nil {
		return PredictionConfig{}, fmt.Errorf("config %s: %w", name, err)
	}
	return cfg, nil
}

// Names lists the built-in configurations.
func Names() []string {
	entries, err := builtin.ReadDir("configs")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names
}
