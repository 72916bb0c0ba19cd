// Package export converts submission predictions into tabular formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/predsubmit/core/model"
)

// WriteJSON writes the predictions to w in submission JSON format.
func WriteJSON(w io.Writer, preds []model.Prediction) error {
	if preds == nil {
		preds = []model.Prediction{}
	}
	enc := json.NewEncoder(w)
	return enc.Encode(preds)
}

// WriteCSV writes one row per predicted point. The probability column is
// empty when the prediction carries none.
func WriteCSV(w io.Writer, preds []model.Prediction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"instance", "sample", "mode", "probability", "step", "x", "y"}); err != nil {
		return err
	}
	for _, p := range preds {
		for m, mode := range p.Modes {
			prob := ""
			if m < len(p.Probabilities) {
				prob = formatFloat(p.Probabilities[m])
			}
			for step, pt := range mode {
				rec := []string{
					p.Instance,
					p.Sample,
					strconv.Itoa(m),
					prob,
					strconv.Itoa(step),
					formatFloat(pt[0]),
					formatFloat(pt[1]),
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
