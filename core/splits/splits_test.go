package splits

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kilianp07/predsubmit/test/util"
)

func TestChallengeSplitsMini(t *testing.T) {
	root := t.TempDir()
	util.WriteJSON(t, PredictionScenesPath(root), map[string][]string{
		"scene-0103": {"i1_s1", "i2_s1"},
		"scene-0916": {"i3_s9"},
		"scene-0061": {"i4_s4"},
	})
	toks, err := ChallengeSplits{DataRoot: root}.Tokens(context.Background(), "mini_val")
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	want := []string{"i1_s1", "i2_s1", "i3_s9"}
	if fmt.Sprint(toks) != fmt.Sprint(want) {
		t.Fatalf("got %v want %v", toks, want)
	}
}

func TestChallengeSplitsEmpty(t *testing.T) {
	root := t.TempDir()
	util.WriteJSON(t, PredictionScenesPath(root), map[string][]string{})
	toks, err := ChallengeSplits{DataRoot: root}.Tokens(context.Background(), "mini_train")
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	if toks == nil || len(toks) != 0 {
		t.Fatalf("expected empty non-nil list got %#v", toks)
	}
}

func TestChallengeSplitsTrainVal(t *testing.T) {
	root := t.TempDir()
	train := make([]string, 203)
	byScene := map[string][]string{}
	for i := range train {
		train[i] = fmt.Sprintf("scene-%04d", i)
		byScene[train[i]] = []string{fmt.Sprintf("i%d_s%d", i, i)}
	}
	util.WriteJSON(t, SceneSplitsPath(root), map[string][]string{"train": train, "val": {"scene-0001"}})
	util.WriteJSON(t, PredictionScenesPath(root), byScene)

	c := ChallengeSplits{DataRoot: root}
	tv, err := c.Tokens(context.Background(), "train_val")
	if err != nil {
		t.Fatalf("train_val: %v", err)
	}
	if len(tv) != 200 || tv[0] != "i0_s0" {
		t.Fatalf("unexpected train_val %d %v", len(tv), tv[:1])
	}
	tr, err := c.Tokens(context.Background(), "train")
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if len(tr) != 3 || tr[0] != "i200_s200" {
		t.Fatalf("unexpected train %v", tr)
	}
	val, err := c.Tokens(context.Background(), "val")
	if err != nil {
		t.Fatalf("val: %v", err)
	}
	if len(val) != 1 || val[0] != "i1_s1" {
		t.Fatalf("unexpected val %v", val)
	}
}

func TestChallengeSplitsErrors(t *testing.T) {
	root := t.TempDir()
	c := ChallengeSplits{DataRoot: root}
	if _, err := c.Tokens(context.Background(), "test"); !errors.Is(err, ErrUnknownSplit) {
		t.Fatalf("expected ErrUnknownSplit got %v", err)
	}
	if _, err := c.Tokens(context.Background(), "mini_val"); err == nil {
		t.Fatal("expected missing file error")
	}
	if _, err := c.Tokens(context.Background(), "val"); err == nil {
		t.Fatal("expected missing splits file error")
	}
}

func TestStaticSplits(t *testing.T) {
	s := StaticSplits{"mini_val": {"tok1", "tok2"}}
	toks, err := s.Tokens(context.Background(), "mini_val")
	if err != nil || len(toks) != 2 {
		t.Fatalf("unexpected %v %v", toks, err)
	}
	toks[0] = "changed"
	again, _ := s.Tokens(context.Background(), "mini_val")
	if again[0] != "tok1" {
		t.Fatal("tokens must be copied")
	}
	if _, err := s.Tokens(context.Background(), "val"); !errors.Is(err, ErrUnknownSplit) {
		t.Fatalf("expected ErrUnknownSplit got %v", err)
	}
}
