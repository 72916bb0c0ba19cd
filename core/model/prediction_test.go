package model

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestParseToken(t *testing.T) {
	inst, sample, err := ParseToken("abc_def")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if inst != "abc" || sample != "def" {
		t.Fatalf("unexpected split %q %q", inst, sample)
	}
	for _, bad := range []string{"", "abc", "_def", "abc_", "a_b_c"} {
		if _, _, err := ParseToken(bad); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%q: expected ErrInvalidToken got %v", bad, err)
		}
	}
}

func TestPredictionMarshalSingleMode(t *testing.T) {
	p := Prediction{Instance: "a", Sample: "s1", Modes: []Trajectory{{{0, 0}}}}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"instance":"a","sample":"s1","prediction":[[0,0]]}`
	if string(b) != want {
		t.Fatalf("got %s want %s", b, want)
	}
}

func TestPredictionMarshalMultiMode(t *testing.T) {
	p := Prediction{
		Instance:      "a",
		Sample:        "s1",
		Modes:         []Trajectory{{{1, 2}}, {{3, 4}}},
		Probabilities: []float64{0.25, 0.75},
	}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"instance":"a","sample":"s1","prediction":[[[1,2]],[[3,4]]],"probabilities":[0.25,0.75]}`
	if string(b) != want {
		t.Fatalf("got %s want %s", b, want)
	}
	var back Prediction
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.NumModes() != 2 || back.Modes[1][0] != (Point{3, 4}) || back.Probabilities[1] != 0.75 {
		t.Fatalf("unexpected decode %+v", back)
	}
}

func TestPredictionUnmarshalBareTrajectory(t *testing.T) {
	var p Prediction
	if err := json.Unmarshal([]byte(`{"instance":"b","sample":"s2","prediction":[[1,1],[2,2]]}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.NumModes() != 1 || len(p.Modes[0]) != 2 || p.Modes[0][1] != (Point{2, 2}) {
		t.Fatalf("unexpected decode %+v", p)
	}
	if p.Token() != "b_s2" {
		t.Fatalf("token %s", p.Token())
	}
}

func TestPredictionValidate(t *testing.T) {
	ok := Prediction{Instance: "a", Sample: "s", Modes: []Trajectory{{{0, 0}}}, Probabilities: []float64{1}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected valid: %v", err)
	}
	cases := map[string]Prediction{
		"no instance":   {Sample: "s", Modes: []Trajectory{{{0, 0}}}},
		"no modes":      {Instance: "a", Sample: "s"},
		"empty mode":    {Instance: "a", Sample: "s", Modes: []Trajectory{{}}},
		"prob mismatch": {Instance: "a", Sample: "s", Modes: []Trajectory{{{0, 0}}}, Probabilities: []float64{0.5, 0.5}},
		"nan":           {Instance: "a", Sample: "s", Modes: []Trajectory{{{math.NaN(), 0}}}},
	}
	for name, p := range cases {
		if err := p.Validate(); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestPredictionUnmarshalRejectsMalformedPoints(t *testing.T) {
	cases := map[string]string{
		"bare extra coordinate":    `{"instance":"a","sample":"s1","prediction":[[0,0,9]]}`,
		"bare missing coordinate":  `{"instance":"a","sample":"s1","prediction":[[0]]}`,
		"bare empty point":         `{"instance":"a","sample":"s1","prediction":[[1,1],[]]}`,
		"modes extra coordinate":   `{"instance":"a","sample":"s1","prediction":[[[0,0]],[[1,1,1]]],"probabilities":[0.5,0.5]}`,
		"modes missing coordinate": `{"instance":"a","sample":"s1","prediction":[[[0]]],"probabilities":[1]}`,
	}
	for name, in := range cases {
		var p Prediction
		err := json.Unmarshal([]byte(in), &p)
		if !errors.Is(err, ErrInvalidPoint) {
			t.Errorf("%s: expected ErrInvalidPoint got %v", name, err)
		}
	}
}

func TestPointUnmarshal(t *testing.T) {
	var p Point
	if err := json.Unmarshal([]byte(`[1.5, -2]`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p != (Point{1.5, -2}) {
		t.Fatalf("unexpected point %v", p)
	}
	if err := json.Unmarshal([]byte(`"x"`), &p); err == nil {
		t.Fatal("expected error for non-array point")
	}
}
