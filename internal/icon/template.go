// Package icon identifies the survivor/hunter portrait shown in each of
// a result screen's five icon regions via multi-scale template matching.
package icon

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"
)

// Category distinguishes the two character rosters a template can
// belong to; a legacy, uncategorized template reports CategoryLegacy.
type Category string

const (
	CategorySurvivor Category = "survivor"
	CategoryHunter   Category = "hunter"
	CategoryLegacy   Category = "legacy"
)

var templateExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

// Template is one loaded, grayscale reference icon.
type Template struct {
	Name     string
	Category Category
	Mat      gocv.Mat
}

// Set is the full collection of templates available for matching,
// loaded once at startup from a directory tree.
type Set struct {
	templates []Template
	// Skipped names every template that failed to decode, in load
	// order, so a caller can surface per-file warnings the way the
	// original tool's per-character load log does.
	Skipped []string
}

// Close releases every template's backing Mat.
func (s *Set) Close() {
	for _, t := range s.templates {
		t.Mat.Close()
	}
}

// LoadSet walks dir for character icon templates.
//
// Two subdirectories are treated as the canonical roster: dir/survivors
// and dir/hunters, each file named after the character (e.g.
// "detective.png" -> "detective"). Any image file placed directly under
// dir itself is accepted too, as CategoryLegacy, matching the original
// tool's pre-roster-split template layout; LoadSet logs a warning the
// first time it encounters one so operators know to migrate it.
//
// A template that fails to decode is logged and skipped, not treated
// as a startup failure — unless it leaves the set with zero templates
// loaded, in which case LoadSet returns an error.
//
// Loading refuses to proceed if two templates share the same character
// name regardless of category, since IconMatcher has no way to prefer
// one over the other at match time.
func LoadSet(dir string) (*Set, error) {
	set := &Set{}
	seenLegacy := false

	categorized := []struct {
		sub string
		cat Category
	}{
		{"survivors", CategorySurvivor},
		{"hunters", CategoryHunter},
	}

	for _, c := range categorized {
		entries, err := os.ReadDir(filepath.Join(dir, c.sub))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			set.Close()
			return nil, fmt.Errorf("icon: read %s: %w", c.sub, err)
		}
		for _, e := range entries {
			if e.IsDir() || !templateExts[strings.ToLower(filepath.Ext(e.Name()))] {
				continue
			}
			path := filepath.Join(dir, c.sub, e.Name())
			if err := set.addFile(path, c.cat); err != nil {
				if errors.Is(err, errDuplicateName) {
					set.Close()
					return nil, err
				}
				log.Warn().Err(err).Str("path", path).Msg("icon: skipping template that failed to decode")
				set.Skipped = append(set.Skipped, e.Name())
			}
		}
	}

	topEntries, err := os.ReadDir(dir)
	if err != nil {
		set.Close()
		return nil, fmt.Errorf("icon: read %s: %w", dir, err)
	}
	for _, e := range topEntries {
		if e.IsDir() || !templateExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		if !seenLegacy {
			log.Warn().Str("dir", dir).Msg("icon: legacy top-level template layout detected, move templates under survivors/ or hunters/")
			seenLegacy = true
		}
		path := filepath.Join(dir, e.Name())
		if err := set.addFile(path, CategoryLegacy); err != nil {
			if errors.Is(err, errDuplicateName) {
				set.Close()
				return nil, err
			}
			log.Warn().Err(err).Str("path", path).Msg("icon: skipping template that failed to decode")
			set.Skipped = append(set.Skipped, e.Name())
		}
	}

	if len(set.templates) == 0 {
		set.Close()
		return nil, fmt.Errorf("icon: no templates found under %s", dir)
	}

	log.Info().Int("templates", len(set.templates)).Str("dir", dir).Msg("icon: loaded template set")
	return set, nil
}

var errDuplicateName = errors.New("icon: duplicate template name")

func (s *Set) addFile(path string, cat Category) error {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for _, existing := range s.templates {
		if existing.Name == name {
			return fmt.Errorf("%w: %q (%s and %s)", errDuplicateName, name, existing.Category, cat)
		}
	}
	for _, skipped := range s.Skipped {
		if strings.TrimSuffix(skipped, filepath.Ext(skipped)) == name {
			return fmt.Errorf("%w: %q (an unreadable template and %s)", errDuplicateName, name, cat)
		}
	}

	mat := gocv.IMRead(path, gocv.IMReadGrayScale)
	if mat.Empty() {
		return fmt.Errorf("icon: failed to decode template %s", path)
	}
	s.templates = append(s.templates, Template{Name: name, Category: cat, Mat: mat})
	return nil
}

// imageToGrayMat converts a decoded region image to a single-channel
// grayscale Mat for template matching.
func imageToGrayMat(img image.Image) (gocv.Mat, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	rgba := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgba.Set(x, y, img.At(x, y))
		}
	}

	mat, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC4, rgba.Pix)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("icon: mat from bytes: %w", err)
	}
	defer mat.Close()

	gray := gocv.NewMat()
	gocv.CvtColor(mat, &gray, gocv.ColorRGBAToGray)
	return gray, nil
}
