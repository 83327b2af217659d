// Package textrow assembles OCR tokens into text rows and pulls the
// five per-survivor stat values (decode progress, kite time, board
// hits, rescues, heals) out of each row's label/value pairing.
package textrow

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"matchrecap/internal/ocrtoken"
)

// Stats is one survivor row's extracted values. A nil pointer field
// means the label was never found, or its value failed to parse.
type Stats struct {
	DecodeProgress *int // percent, 0-100 (occasionally over on late decodes)
	KiteSeconds    *int
	BoardHits      *int
	Rescues        *int
	Heals          *int
}

const (
	rowToleranceFraction = 0.08
	xBucketSize          = 30.0
	columnTolerancePx    = 50.0
)

// allLabelSubstrings is checked against a value candidate to reject
// picking up a neighboring label as if it were a value (the "援助" row
// and the "板命中" row, in particular, sit close enough together that a
// naive same-column scan can cross into the next label).
var allLabelSubstrings = []string{
	"解読", "進捗", "進排", "進度",
	"牽制", "制", "への",
	"板", "援助", "救助", "治療",
}

func containsAny(text string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

func looksLikeLabel(text string) bool {
	return containsAny(text, allLabelSubstrings)
}

func cleanPunctuation(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, ".", "")
	return s
}

// Row is one horizontal band of OCR tokens, ordered left to right (with
// vertically-stacked ties broken top to bottom).
type Row struct {
	Tokens []ocrtoken.Token
}

// GroupRows buckets all tokens within rowToleranceFraction*imageHeight
// of each candidate row's target Y into that row, sorting the row's
// tokens by a coarse X bucket (so a stat label and its value, printed
// one above the other at slightly different heights, still land next
// to each other) with vertical position as the tiebreak.
//
// targetYs are the vertical midpoints of the five survivor rows,
// typically seeded from the icon regions the layout resolver produced.
func GroupRows(tokens []ocrtoken.Token, imageHeight int, targetYs []float64) []Row {
	tolerance := float64(imageHeight) * rowToleranceFraction

	rows := make([]Row, len(targetYs))
	for i, target := range targetYs {
		var members []ocrtoken.Token
		for _, t := range tokens {
			if abs(t.VerticalMid()-target) < tolerance {
				members = append(members, t)
			}
		}
		sort.SliceStable(members, func(a, b int) bool {
			ba := bucket(members[a].HorizontalMid())
			bb := bucket(members[b].HorizontalMid())
			if ba != bb {
				return ba < bb
			}
			return members[a].VerticalMid() < members[b].VerticalMid()
		})
		rows[i] = Row{Tokens: members}
	}
	return rows
}

func bucket(x float64) float64 {
	return roundToNearest(x/xBucketSize) * xBucketSize
}

func roundToNearest(f float64) float64 {
	if f >= 0 {
		return float64(int(f + 0.5))
	}
	return float64(int(f - 0.5))
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

var (
	progressPercentRe = regexp.MustCompile(`(\d{1,3})\s*[%％]`)
	progressMisreadRe = regexp.MustCompile(`(\d{1,3})[9９]`)
	kiteMinSecRe      = regexp.MustCompile(`(\d+)分(\d+)[sS秒]`)
	kiteSecRe         = regexp.MustCompile(`(\d+)[sS秒]`)
	soloNumberRe      = regexp.MustCompile(`^(\d{1,2})$`)
)

// normalizeForPercent applies the glyph-confusion rules OCR commonly
// introduces around the "%" glyph: a lowercase L-like "o"/"O" is read
// where a "0" belongs, and "g"/"G" is what a cramped "%" becomes.
func normalizeForPercent(s string) string {
	r := strings.NewReplacer("o", "0", "O", "0", "g", "%", "G", "%")
	return r.Replace(s)
}

// normalizeForSeconds applies the glyph-confusion rules around the "s"
// (seconds) suffix: "O"/"o" read as "0", and a misrecognized "G"/"g"
// most often stands in for a "6".
func normalizeForSeconds(s string) string {
	r := strings.NewReplacer("O", "0", "o", "0", "G", "6", "g", "6")
	return r.Replace(s)
}

// Assemble walks one row left to right, matching each stat's label
// substrings in priority order and pulling its value out per that
// stat's own lookup rule: decode progress and kite time read the very
// next token in the row, while rescues, board hits, and heals are
// printed on a line below their label and are matched by nearest
// same-column (±50px) token underneath instead.
func Assemble(row Row) Stats {
	var stats Stats

	for i, tok := range row.Tokens {
		text := tok.Text

		switch {
		case containsAny(text, []string{"解読", "進捗", "進排", "進度"}):
			if i+1 < len(row.Tokens) {
				next := cleanPunctuation(row.Tokens[i+1].Text)
				normalized := normalizeForPercent(next)
				stats.DecodeProgress = firstPercentMatch(normalized)
			}

		case containsAny(text, []string{"牽制", "制", "への", "ハンターへの"}):
			if i+1 < len(row.Tokens) {
				next := cleanPunctuation(row.Tokens[i+1].Text)
				normalized := normalizeForSeconds(next)
				stats.KiteSeconds = firstKiteSeconds(normalized)
			}

		case containsAny(text, []string{"援助", "救助"}):
			stats.Rescues = sameColumnBelow(row.Tokens, i)

		case strings.Contains(text, "板") && strings.Contains(text, "命中"):
			stats.BoardHits = sameColumnBelow(row.Tokens, i)

		case strings.Contains(text, "治療"):
			stats.Heals = sameColumnBelow(row.Tokens, i)
		}
	}

	return stats
}

func firstPercentMatch(normalized string) *int {
	for _, re := range []*regexp.Regexp{progressPercentRe, progressMisreadRe} {
		if m := re.FindStringSubmatch(normalized); m != nil {
			v, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			return &v
		}
	}
	return nil
}

func firstKiteSeconds(normalized string) *int {
	if m := kiteMinSecRe.FindStringSubmatch(normalized); m != nil {
		minutes, err1 := strconv.Atoi(m[1])
		seconds, err2 := strconv.Atoi(m[2])
		if err1 == nil && err2 == nil {
			total := minutes*60 + seconds
			return &total
		}
	}
	if m := kiteSecRe.FindStringSubmatch(normalized); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			return &v
		}
	}
	return nil
}

// sameColumnBelow scans the tokens after labelIdx for the nearest one
// whose horizontal position stays within columnTolerancePx of the
// label's and that is not itself another label, returning its parsed
// solo integer value.
func sameColumnBelow(tokens []ocrtoken.Token, labelIdx int) *int {
	label := tokens[labelIdx]
	labelX := label.HorizontalMid()
	labelY := label.VerticalMid()

	for j := labelIdx + 1; j < len(tokens); j++ {
		candidate := tokens[j]
		if abs(candidate.HorizontalMid()-labelX) >= columnTolerancePx {
			continue
		}
		if candidate.VerticalMid() <= labelY {
			continue
		}
		if looksLikeLabel(candidate.Text) {
			continue
		}
		if v, ok := parseSoloNumber(candidate.Text); ok {
			return &v
		}
	}
	return nil
}

func parseSoloNumber(text string) (int, bool) {
	clean := cleanPunctuation(text)
	m := soloNumberRe.FindStringSubmatch(clean)
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return v, true
}
