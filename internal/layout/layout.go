// Package layout resolves the five on-screen icon regions for a result
// screenshot, given the image dimensions and an optional override.
package layout

import (
	"errors"
	"fmt"

	"matchrecap/pkg/geometry"
)

// ErrLayoutInvalid is wrapped by errors describing a caller-supplied
// layout that has the wrong cardinality or an out-of-range coordinate.
var ErrLayoutInvalid = errors.New("layout: invalid custom layout")

// SlotCount is the number of icon slots on every result screen: one
// killer and four survivors, in some order depending on match outcome.
const SlotCount = 5

// RelativeIcon is one icon's center and side length, expressed relative
// to image width (X, Size) and height (Y). This is the canonical form
// stored in the registry and accepted from callers.
type RelativeIcon struct {
	XRatio    float64 `json:"x_ratio"`
	YRatio    float64 `json:"y_ratio"`
	SizeRatio float64 `json:"size_ratio"`
}

// Validate checks the invariant from the spec's data model: the icon
// must have a positive size strictly less than 1, and must stay inside
// the image after center-to-corner conversion.
func (r RelativeIcon) Validate() error {
	if r.SizeRatio <= 0 || r.SizeRatio >= 1 {
		return fmt.Errorf("%w: size_ratio %.4f out of (0,1)", ErrLayoutInvalid, r.SizeRatio)
	}
	half := r.SizeRatio / 2
	if r.XRatio-half < 0 || r.XRatio+half > 1 {
		return fmt.Errorf("%w: x_ratio %.4f pushes icon outside image width", ErrLayoutInvalid, r.XRatio)
	}
	if r.YRatio-half < 0 || r.YRatio+half > 1 {
		return fmt.Errorf("%w: y_ratio %.4f pushes icon outside image height", ErrLayoutInvalid, r.YRatio)
	}
	return nil
}

// IconRegion is an axis-aligned pixel rectangle inside the source image.
// w == h for every region this package emits.
type IconRegion = geometry.RectInt

// ToRegion converts a RelativeIcon to pixel coordinates for an image of
// size (w,h). Centers, not top-lefts, are the canonical stored form; the
// conversion rounds the size first, then derives the top-left from the
// rounded center so every slot in one layout shares an identical size.
func (r RelativeIcon) ToRegion(w, h int) IconRegion {
	size := roundInt(r.SizeRatio * float64(w))
	cx := roundInt(r.XRatio * float64(w))
	cy := roundInt(r.YRatio * float64(h))
	return IconRegion{
		X:      cx - size/2,
		Y:      cy - size/2,
		Width:  size,
		Height: size,
	}
}

func roundInt(f float64) int {
	if f >= 0 {
		return int(f + 0.5)
	}
	return int(f - 0.5)
}

// Registry is the subset of LayoutRegistry's read surface the resolver
// depends on, kept as an interface so the resolver has no import-time
// dependency on the registry's storage backend.
type Registry interface {
	BestFor(aspectRatio, tolerance float64) (Submitted, bool)
}

// Submitted is the registry's view of a persisted layout: its five
// RelativeIcons in slot order.
type Submitted struct {
	AspectRatio float64
	Icons       [SlotCount]RelativeIcon
}

// Resolver converts an image's aspect ratio and an optional override
// into five IconRegions, ordered top-to-bottom on screen. It holds no
// mutable state of its own.
type Resolver struct {
	registry        Registry
	aspectTolerance float64
}

// NewResolver builds a Resolver backed by the given registry (nil is
// allowed: the built-in fallback buckets still apply).
func NewResolver(registry Registry, aspectTolerance float64) *Resolver {
	if aspectTolerance <= 0 {
		aspectTolerance = 0.05
	}
	return &Resolver{registry: registry, aspectTolerance: aspectTolerance}
}

// Resolve produces five IconRegions for an image of size (w,h).
// Selection priority: a caller-supplied override, then the registry's
// best match for this aspect ratio, then the built-in fallback buckets.
func (r *Resolver) Resolve(w, h int, custom *[SlotCount]RelativeIcon) ([SlotCount]IconRegion, error) {
	if custom != nil {
		for i, icon := range custom {
			if err := icon.Validate(); err != nil {
				return [SlotCount]IconRegion{}, fmt.Errorf("slot %d: %w", i+1, err)
			}
		}
		return regionsFrom(*custom, w, h), nil
	}

	aspectRatio := float64(w) / float64(h)

	if r.registry != nil {
		if submitted, ok := r.registry.BestFor(aspectRatio, r.aspectTolerance); ok {
			return regionsFrom(submitted.Icons, w, h), nil
		}
	}

	return regionsFrom(fallbackIcons(aspectRatio), w, h), nil
}

func regionsFrom(icons [SlotCount]RelativeIcon, w, h int) [SlotCount]IconRegion {
	var out [SlotCount]IconRegion
	for i, icon := range icons {
		out[i] = icon.ToRegion(w, h)
	}
	return out
}

// fallbackIcons returns the built-in aspect-ratio-bucketed layout. The
// three buckets are open on both ends at their shared boundaries (1.6
// and 2.0 both fall into "medium").
func fallbackIcons(aspectRatio float64) [SlotCount]RelativeIcon {
	var yCenters [SlotCount]float64
	var xCenter, size float64

	switch {
	case aspectRatio > 2.0: // phone
		yCenters = [SlotCount]float64{0.29, 0.42, 0.555, 0.69, 0.825}
		xCenter, size = 0.29, 0.04
	case aspectRatio < 1.6: // tablet
		yCenters = [SlotCount]float64{0.33, 0.44, 0.555, 0.665, 0.78}
		xCenter, size = 0.23, 0.062
	default: // medium
		yCenters = [SlotCount]float64{0.25, 0.37, 0.49, 0.61, 0.73}
		xCenter, size = 0.29, 0.04
	}

	var icons [SlotCount]RelativeIcon
	for i, y := range yCenters {
		icons[i] = RelativeIcon{XRatio: xCenter, YRatio: y, SizeRatio: size}
	}
	return icons
}
