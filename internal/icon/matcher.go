package icon

import (
	"errors"
	"fmt"
	"image"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"
)

// ErrNoMatch is wrapped when no template clears the match threshold.
var ErrNoMatch = errors.New("icon: no template matched")

// scales mirrors the multi-scale sweep used to tolerate icon regions
// whose pixel size does not exactly match the template's native
// resolution across device resolutions.
var scales = []float64{0.5, 0.7, 0.9, 1.0, 1.1, 1.3, 1.5}

const (
	minScaledSide = 30
	maxScaledSide = 150
)

// Identification is one region's best character match.
type Identification struct {
	Name     string
	Category Category
	Score    float64
}

// Matcher identifies the character portrait shown in an icon region
// against a loaded Set, using normalized cross-correlation template
// matching swept across a fixed scale ladder.
type Matcher struct {
	templates       *Set
	threshold       float64
	ambiguityMargin float64
}

// NewMatcher builds a Matcher. threshold is the minimum normalized
// correlation score accepted as a match; ambiguityMargin is the gap
// between the best and second-best candidate scores below which a match
// is logged as low-confidence (it is still returned).
func NewMatcher(templates *Set, threshold, ambiguityMargin float64) *Matcher {
	if threshold <= 0 {
		threshold = 0.40
	}
	if ambiguityMargin <= 0 {
		ambiguityMargin = 0.05
	}
	return &Matcher{templates: templates, threshold: threshold, ambiguityMargin: ambiguityMargin}
}

type scoredTemplate struct {
	template Template
	score    float32
}

// Identify returns the best-matching template for a cropped icon
// region. It fails with ErrNoMatch if nothing clears the threshold. If
// the top two candidates are within ambiguityMargin of each other, the
// call still succeeds and returns the top candidate — it is only
// logged as low-confidence, never dropped.
func (m *Matcher) Identify(region image.Image) (Identification, error) {
	regionMat, err := imageToGrayMat(region)
	if err != nil {
		return Identification{}, err
	}
	defer regionMat.Close()

	scored := make([]scoredTemplate, 0, len(m.templates.templates))
	for _, tmpl := range m.templates.templates {
		best, ok := m.bestScoreForTemplate(regionMat, tmpl)
		if !ok {
			continue
		}
		scored = append(scored, scoredTemplate{template: tmpl, score: best})
	}

	if len(scored) == 0 {
		return Identification{}, fmt.Errorf("%w: region too small for every loaded template", ErrNoMatch)
	}

	var top, runnerUp scoredTemplate
	hasRunnerUp := false
	for _, s := range scored {
		if s.score > top.score {
			if top.template.Name != "" {
				runnerUp = top
				hasRunnerUp = true
			}
			top = s
		} else if !hasRunnerUp || s.score > runnerUp.score {
			runnerUp = s
			hasRunnerUp = true
		}
	}

	if float64(top.score) < m.threshold {
		return Identification{}, fmt.Errorf("%w: best score %.3f below threshold %.3f", ErrNoMatch, top.score, m.threshold)
	}
	if hasRunnerUp && float64(top.score-runnerUp.score) < m.ambiguityMargin {
		log.Warn().
			Str("best", top.template.Name).Float64("best_score", float64(top.score)).
			Str("runner_up", runnerUp.template.Name).Float64("runner_up_score", float64(runnerUp.score)).
			Msg("icon: low-confidence match, best and runner-up scores too close to call reliably")
	}

	return Identification{
		Name:     top.template.Name,
		Category: top.template.Category,
		Score:    float64(top.score),
	}, nil
}

// bestScoreForTemplate sweeps the scale ladder and returns the highest
// correlation score found, skipping scales whose resized template
// either falls outside the accepted pixel-size band or no longer fits
// inside the region.
func (m *Matcher) bestScoreForTemplate(regionMat gocv.Mat, tmpl Template) (float32, bool) {
	var best float32
	found := false

	for _, scale := range scales {
		scaledW := int(float64(tmpl.Mat.Cols()) * scale)
		scaledH := int(float64(tmpl.Mat.Rows()) * scale)
		if scaledW < minScaledSide || scaledW > maxScaledSide || scaledH < minScaledSide || scaledH > maxScaledSide {
			continue
		}
		if scaledH > regionMat.Rows() || scaledW > regionMat.Cols() {
			continue
		}

		resized := gocv.NewMat()
		gocv.Resize(tmpl.Mat, &resized, image.Pt(scaledW, scaledH), 0, 0, gocv.InterpolationArea)

		result := gocv.NewMat()
		gocv.MatchTemplate(regionMat, resized, &result, gocv.TmCcoeffNormed, gocv.NewMat())
		_, maxVal, _, _ := gocv.MinMaxLoc(result)

		resized.Close()
		result.Close()

		if !found || maxVal > best {
			best = maxVal
			found = true
		}
	}

	return best, found
}
