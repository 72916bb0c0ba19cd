package evalconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFactoryBuiltin(t *testing.T) {
	cfg, err := Factory(DefaultName)
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if cfg.Seconds != 6 || cfg.Frequency != 2 {
		t.Fatalf("unexpected horizon %+v", cfg)
	}
	if cfg.HorizonPoints() != 12 {
		t.Fatalf("expected 12 points got %d", cfg.HorizonPoints())
	}
	if len(cfg.Metrics) != 4 {
		t.Fatalf("expected 4 metrics got %d", len(cfg.Metrics))
	}
	miss := cfg.Metrics[2]
	if miss.Name != "MissRateTopK" || miss.Tolerance != 2 || len(miss.KToReport) != 3 {
		t.Fatalf("unexpected miss rate metric %+v", miss)
	}
}

func TestFactoryDefaultsEmptyName(t *testing.T) {
	cfg, err := Factory("")
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if cfg.Seconds != 6 {
		t.Fatalf("expected default config")
	}
}

func TestFactoryUnknown(t *testing.T) {
	if _, err := Factory("predict_2099"); !errors.Is(err, ErrUnknownConfig) {
		t.Fatalf("expected ErrUnknownConfig got %v", err)
	}
}

func TestFactoryYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.yaml")
	data := `seconds: 3
frequency: 2
metrics:
  - name: MinADEK
    k_to_report: [1]
    aggregators:
      - name: RowMean
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Factory(path)
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if cfg.HorizonPoints() != 6 || cfg.Metrics[0].Aggregators[0].Name != "RowMean" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestFactoryInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"seconds": 0, "frequency": 2}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Factory(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != 1 || names[0] != DefaultName {
		t.Fatalf("unexpected names %v", names)
	}
}
