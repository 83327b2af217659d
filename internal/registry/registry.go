// Package registry persists community-submitted icon layouts keyed by
// aspect ratio and serves the best one for a given device.
//
// Storage is a single JSON file, following the teacher's
// internal/via.TrainingSet pattern: an in-memory slice guarded by a
// mutex, loaded once at startup and rewritten in full on every mutation
// (a plain file write, not a write-then-rename). A real deployment would
// swap this for a database-backed store; persistence is explicitly an
// external collaborator per the spec's scope.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"matchrecap/internal/layout"
)

// ErrNotFound is wrapped by Vote when the given id has no matching record.
var ErrNotFound = errors.New("registry: layout not found")

const (
	defaultAspectTolerance   = 0.05
	defaultPositionTolerance = 0.01
)

// LayoutSpec is one persisted, community-submitted layout.
type LayoutSpec struct {
	ID            string                               `json:"id"`
	AspectRatio   float64                               `json:"aspect_ratio"`
	ScreenWidth   int                                   `json:"screen_width"`
	ScreenHeight  int                                   `json:"screen_height"`
	IconPositions [layout.SlotCount]layout.RelativeIcon `json:"icon_positions"`
	VoteCount     int                                   `json:"vote_count"`
	CreatedAt     time.Time                             `json:"created_at"`
	UpdatedAt     time.Time                             `json:"updated_at"`
}

// roundRatio rounds a ratio to four fractional digits, the precision the
// wire format and the round-trip property in the spec require.
func roundRatio(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// normalize rounds every ratio-valued field to four decimals so
// serializing and reloading a LayoutSpec yields an equal value.
func (s *LayoutSpec) normalize() {
	s.AspectRatio = roundRatio(s.AspectRatio)
	for i := range s.IconPositions {
		s.IconPositions[i].XRatio = roundRatio(s.IconPositions[i].XRatio)
		s.IconPositions[i].YRatio = roundRatio(s.IconPositions[i].YRatio)
		s.IconPositions[i].SizeRatio = roundRatio(s.IconPositions[i].SizeRatio)
	}
}

// Registry is the persistent, mutex-guarded store of LayoutSpecs.
type Registry struct {
	mu                sync.RWMutex
	specs             []*LayoutSpec
	filePath          string
	aspectTolerance   float64
	positionTolerance float64
}

// New creates an empty in-memory Registry (no file backing). Use Load to
// populate one from disk.
func New(aspectTolerance, positionTolerance float64) *Registry {
	if aspectTolerance <= 0 {
		aspectTolerance = defaultAspectTolerance
	}
	if positionTolerance <= 0 {
		positionTolerance = defaultPositionTolerance
	}
	return &Registry{
		aspectTolerance:   aspectTolerance,
		positionTolerance: positionTolerance,
	}
}

// DefaultPath returns matchrecap/layout_registry.json under the user's
// config directory (os.UserConfigDir, or ~/.config when that is unknown),
// creating the matchrecap directory if needed. It is the fallback
// location used when no explicit path is configured.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "", fmt.Errorf("cannot determine config directory: %w", herr)
		}
		configDir = filepath.Join(home, ".config")
	}
	appDir := filepath.Join(configDir, "matchrecap")
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create config directory: %w", err)
	}
	return filepath.Join(appDir, "layout_registry.json"), nil
}

// Load reads a Registry from path. A missing file yields an empty,
// ready-to-use Registry rather than an error.
func Load(path string, aspectTolerance, positionTolerance float64) (*Registry, error) {
	r := New(aspectTolerance, positionTolerance)
	r.filePath = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return r, fmt.Errorf("registry: read %s: %w", path, err)
	}

	var specs []*LayoutSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return r, fmt.Errorf("registry: parse %s: %w", path, err)
	}
	r.specs = specs
	log.Info().Int("layouts", len(specs)).Str("path", path).Msg("registry: loaded")
	return r, nil
}

// save rewrites the backing file. Callers must hold mu.
func (r *Registry) save() error {
	if r.filePath == "" {
		return nil
	}
	data, err := json.MarshalIndent(r.specs, "", "  ")
	if err != nil {
		return fmt.Errorf("registry: marshal: %w", err)
	}
	dir := filepath.Dir(r.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("registry: mkdir %s: %w", dir, err)
	}
	if err := os.WriteFile(r.filePath, data, 0o644); err != nil {
		return fmt.Errorf("registry: write %s: %w", r.filePath, err)
	}
	return nil
}

// BestFor implements layout.Registry: it returns the LayoutSpec whose
// aspect_ratio is within ±tolerance, preferring the highest vote_count
// with most-recently-updated as tiebreak.
func (r *Registry) BestFor(aspectRatio, tolerance float64) (layout.Submitted, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *LayoutSpec
	for _, s := range r.specs {
		if math.Abs(s.AspectRatio-aspectRatio) > tolerance {
			continue
		}
		if best == nil ||
			s.VoteCount > best.VoteCount ||
			(s.VoteCount == best.VoteCount && s.UpdatedAt.After(best.UpdatedAt)) {
			best = s
		}
	}
	if best == nil {
		return layout.Submitted{}, false
	}
	return layout.Submitted{AspectRatio: best.AspectRatio, Icons: best.IconPositions}, true
}

// BestSpec is BestFor's richer sibling, returning the full LayoutSpec
// (including id and vote count) for registry-management callers.
func (r *Registry) BestSpec(aspectRatio, tolerance float64) (*LayoutSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *LayoutSpec
	for _, s := range r.specs {
		if math.Abs(s.AspectRatio-aspectRatio) > tolerance {
			continue
		}
		if best == nil ||
			s.VoteCount > best.VoteCount ||
			(s.VoteCount == best.VoteCount && s.UpdatedAt.After(best.UpdatedAt)) {
			best = s
		}
	}
	if best == nil {
		return nil, false
	}
	clone := *best
	return &clone, true
}

// similar reports whether two LayoutSpecs match per the spec's
// similarity predicate: close aspect ratio and, slot-by-slot (no
// reordering), close x/y/size ratios.
func (r *Registry) similar(a, b *LayoutSpec) bool {
	if math.Abs(a.AspectRatio-b.AspectRatio) > r.aspectTolerance {
		return false
	}
	for i := 0; i < layout.SlotCount; i++ {
		pa, pb := a.IconPositions[i], b.IconPositions[i]
		if math.Abs(pa.XRatio-pb.XRatio) > r.positionTolerance ||
			math.Abs(pa.YRatio-pb.YRatio) > r.positionTolerance ||
			math.Abs(pa.SizeRatio-pb.SizeRatio) > r.positionTolerance {
			return false
		}
	}
	return true
}

// Save persists a candidate layout: if a similar LayoutSpec already
// exists it is voted on (vote_count += 1); otherwise a new record is
// created with vote_count = 1. This is a single logical operation
// implemented as find-then-write; the worst race outcome under
// concurrent callers is an extra near-duplicate record, which later
// voters coalesce around (spec §4.6/§5).
func (r *Registry) Save(candidate LayoutSpec) (*LayoutSpec, error) {
	candidate.normalize()

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.specs {
		if r.similar(existing, &candidate) {
			existing.VoteCount++
			existing.UpdatedAt = time.Now().UTC()
			if err := r.save(); err != nil {
				return nil, err
			}
			clone := *existing
			return &clone, nil
		}
	}

	now := time.Now().UTC()
	created := &LayoutSpec{
		ID:            uuid.NewString(),
		AspectRatio:   candidate.AspectRatio,
		ScreenWidth:   candidate.ScreenWidth,
		ScreenHeight:  candidate.ScreenHeight,
		IconPositions: candidate.IconPositions,
		VoteCount:     1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.specs = append(r.specs, created)
	if err := r.save(); err != nil {
		return nil, err
	}
	log.Info().Str("id", created.ID).Float64("aspect_ratio", created.AspectRatio).Msg("registry: created layout")
	clone := *created
	return &clone, nil
}

// Vote atomically increments vote_count for the LayoutSpec with the
// given id and updates its timestamp.
func (r *Registry) Vote(id string) (*LayoutSpec, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.specs {
		if s.ID == id {
			s.VoteCount++
			s.UpdatedAt = time.Now().UTC()
			if err := r.save(); err != nil {
				return nil, err
			}
			clone := *s
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// List returns a snapshot of all persisted LayoutSpecs, most recently
// updated first.
func (r *Registry) List() []*LayoutSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*LayoutSpec, len(r.specs))
	for i, s := range r.specs {
		clone := *s
		out[i] = &clone
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out
}
