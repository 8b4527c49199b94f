package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MRamiBalles/TerminalesGemelas/server/internal/engine"
)

func TestBuiltinsResolve(t *testing.T) {
	lib := NewLibrary("")

	clampdown, ok := lib.Get("Regulatory Clampdown")
	if !ok {
		t.Fatal("Regulatory Clampdown missing from built-ins")
	}
	if !clampdown.Modifiers.ApplyNoise {
		t.Error("Regulatory Clampdown should enable noise")
	}

	board, ok := lib.Get("Board Intervention")
	if !ok {
		t.Fatal("Board Intervention missing from built-ins")
	}
	if !board.Modifiers.StackelbergLeader {
		t.Error("Board Intervention should enable Stackelberg leadership")
	}

	poaching, ok := lib.Get("Aggressive Poaching")
	if !ok {
		t.Fatal("Aggressive Poaching missing from built-ins")
	}
	if !poaching.Modifiers.BertrandMode {
		t.Error("Aggressive Poaching should enable Bertrand mode")
	}
}

func TestApplyOverlaysConfig(t *testing.T) {
	s := Scenario{
		Name:         "Capacity Crunch",
		Modifiers:    engine.Modifiers{BerthPooling: true},
		MaxCapacityA: 52000,
	}
	cfg := engine.Config{Rounds: 10, MaxCapacityB: 75000}

	out := s.Apply(cfg)
	if !out.Modifiers.BerthPooling {
		t.Error("modifiers not applied")
	}
	if out.MaxCapacityA != 52000 {
		t.Errorf("capacity A = %d, want 52000", out.MaxCapacityA)
	}
	if out.MaxCapacityB != 75000 {
		t.Errorf("capacity B = %d, want existing 75000 untouched", out.MaxCapacityB)
	}
}

func TestLoadFileAndShadowing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clampdown.yaml")
	raw := []byte(`name: Regulatory Clampdown
description: Harsher variant with a capacity squeeze.
modifiers:
  apply_noise: true
  bertrand_mode: true
max_capacity_a: 52000
`)
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !s.Modifiers.ApplyNoise || !s.Modifiers.BertrandMode || s.MaxCapacityA != 52000 {
		t.Errorf("parsed scenario mismatch: %+v", s)
	}

	lib := NewLibrary(dir)
	if err := lib.LoadDir(); err != nil {
		t.Fatal(err)
	}
	got, ok := lib.Get("Regulatory Clampdown")
	if !ok {
		t.Fatal("scenario missing after LoadDir")
	}
	if !got.Modifiers.BertrandMode {
		t.Error("file scenario should shadow the built-in of the same name")
	}
}

func TestLoadFileRejectsMissingName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anon.yaml")
	if err := os.WriteFile(path, []byte("description: nameless\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for scenario without a name")
	}
}
