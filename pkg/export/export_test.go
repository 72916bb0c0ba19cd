package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/kilianp07/predsubmit/core/model"
)

func TestWriteCSV(t *testing.T) {
	preds := []model.Prediction{
		{Instance: "a", Sample: "s1", Modes: []model.Trajectory{{{0, 0}, {1.5, 0}}}},
		{Instance: "b", Sample: "s2", Modes: []model.Trajectory{{{1, 1}}, {{2, 2}}}, Probabilities: []float64{0.25, 0.75}},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, preds); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected header and 4 rows got %d", len(rows))
	}
	if rows[2][5] != "1.5" || rows[2][4] != "1" || rows[2][3] != "" {
		t.Fatalf("unexpected row %v", rows[2])
	}
	if rows[4][2] != "1" || rows[4][3] != "0.75" {
		t.Fatalf("unexpected row %v", rows[4])
	}
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := buf.String(); got != "[]\n" {
		t.Fatalf("unexpected output %q", got)
	}
}
