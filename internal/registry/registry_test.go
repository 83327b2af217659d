package registry

import (
	"path/filepath"
	"testing"

	"matchrecap/internal/layout"
)

func sampleIcons(offset float64) [layout.SlotCount]layout.RelativeIcon {
	var icons [layout.SlotCount]layout.RelativeIcon
	for i := range icons {
		icons[i] = layout.RelativeIcon{
			XRatio:    0.29,
			YRatio:    0.25 + offset + float64(i)*0.12,
			SizeRatio: 0.04,
		}
	}
	return icons
}

func TestSaveCreatesNewLayout(t *testing.T) {
	reg := New(0.05, 0.01)
	spec, err := reg.Save(LayoutSpec{AspectRatio: 2.1666667, ScreenWidth: 1920, ScreenHeight: 886, IconPositions: sampleIcons(0)})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if spec.VoteCount != 1 {
		t.Errorf("VoteCount = %d, want 1", spec.VoteCount)
	}
	if spec.ID == "" {
		t.Error("expected a generated ID")
	}
	if spec.AspectRatio != 2.1667 {
		t.Errorf("AspectRatio rounded = %v, want 2.1667", spec.AspectRatio)
	}
}

func TestSaveVotesOnSimilarLayout(t *testing.T) {
	reg := New(0.05, 0.01)
	first, err := reg.Save(LayoutSpec{AspectRatio: 2.0, IconPositions: sampleIcons(0)})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	second, err := reg.Save(LayoutSpec{AspectRatio: 2.002, IconPositions: sampleIcons(0.002)})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("expected the similar submission to vote on the existing layout, got a different ID")
	}
	if second.VoteCount != 2 {
		t.Errorf("VoteCount = %d, want 2", second.VoteCount)
	}
}

func TestSaveCreatesSeparateLayoutWhenDissimilar(t *testing.T) {
	reg := New(0.05, 0.01)
	if _, err := reg.Save(LayoutSpec{AspectRatio: 2.0, IconPositions: sampleIcons(0)}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	second, err := reg.Save(LayoutSpec{AspectRatio: 1.5, IconPositions: sampleIcons(0.1)})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if second.VoteCount != 1 {
		t.Errorf("VoteCount = %d, want 1 (new layout)", second.VoteCount)
	}
	if len(reg.List()) != 2 {
		t.Errorf("List() len = %d, want 2", len(reg.List()))
	}
}

func TestVoteUnknownIDFails(t *testing.T) {
	reg := New(0.05, 0.01)
	if _, err := reg.Vote("does-not-exist"); err == nil {
		t.Error("expected error voting for unknown id")
	}
}

func TestBestForPrefersHighestVotes(t *testing.T) {
	reg := New(0.05, 0.01)
	low, err := reg.Save(LayoutSpec{AspectRatio: 1.0, IconPositions: sampleIcons(0)})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	_, err = reg.Save(LayoutSpec{AspectRatio: 1.02, IconPositions: sampleIcons(0.2)})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := reg.Vote(low.ID); err != nil {
		t.Fatalf("Vote() error = %v", err)
	}
	if _, err := reg.Vote(low.ID); err != nil {
		t.Fatalf("Vote() error = %v", err)
	}

	best, ok := reg.BestFor(1.0, 0.05)
	if !ok {
		t.Fatal("expected a match")
	}
	if best.AspectRatio != 1.0 {
		t.Errorf("BestFor AspectRatio = %v, want 1.0", best.AspectRatio)
	}
}

func TestLoadMissingFileReturnsEmptyRegistry(t *testing.T) {
	dir := t.TempDir()
	reg, err := Load(filepath.Join(dir, "does_not_exist.json"), 0.05, 0.01)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(reg.List()) != 0 {
		t.Errorf("expected empty registry, got %d entries", len(reg.List()))
	}
}

func TestSavePersistsAndReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.json")

	reg, err := Load(path, 0.05, 0.01)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	spec, err := reg.Save(LayoutSpec{AspectRatio: 2.0, ScreenWidth: 1920, ScreenHeight: 960, IconPositions: sampleIcons(0)})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reloaded, err := Load(path, 0.05, 0.01)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	found, ok := reloaded.BestSpec(2.0, 0.01)
	if !ok {
		t.Fatal("expected reloaded registry to contain the saved layout")
	}
	if found.ID != spec.ID {
		t.Errorf("reloaded ID = %s, want %s", found.ID, spec.ID)
	}
}
