// Package match orchestrates OCR, icon matching, and layout resolution
// into one structured MatchRecord per result screenshot.
package match

import (
	"context"
	"errors"
	"fmt"
	"image"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"matchrecap/internal/icon"
	"matchrecap/internal/layout"
	"matchrecap/internal/ocrtoken"
	"matchrecap/internal/textrow"
)

// ErrInvalidImage is wrapped by Parse when given a zero-sized image.
var ErrInvalidImage = errors.New("match: invalid image")

// Outcome is a match's result, expressed the way the game itself labels it.
type Outcome string

const (
	OutcomeVictory Outcome = "勝利"
	OutcomeDefeat  Outcome = "敗北"
	OutcomeDraw    Outcome = "引き分け"
	OutcomeUnknown Outcome = "不明"
)

// SurvivorStats is one non-hunter slot's recognized character and
// in-match performance numbers.
type SurvivorStats struct {
	Position       int
	Character      string
	DecodeProgress *int
	KiteSeconds    *int
	BoardHits      int
	Rescues        int
	Heals          int
}

// MatchRecord is the fully parsed result screen.
type MatchRecord struct {
	Outcome         Outcome
	MapName         string
	Duration        *time.Duration
	PlayedAt        *time.Time
	HunterCharacter string
	Survivors       []SurvivorStats
}

// Parser ties together a document-OCR engine, an icon matcher, and a
// layout resolver to turn one screenshot into a MatchRecord.
type Parser struct {
	ocr      *ocrtoken.Engine
	resolver *layout.Resolver
	matcher  *icon.Matcher
	mapNames []string
}

// NewParser builds a Parser from its three collaborators plus the list
// of recognized map names to scan for.
func NewParser(ocr *ocrtoken.Engine, resolver *layout.Resolver, matcher *icon.Matcher, mapNames []string) *Parser {
	return &Parser{ocr: ocr, resolver: resolver, matcher: matcher, mapNames: mapNames}
}

// Parse extracts a MatchRecord from a decoded result screenshot. custom,
// if non-nil, overrides layout resolution the same way it does for
// Resolver.Resolve.
func (p *Parser) Parse(ctx context.Context, img image.Image, custom *[layout.SlotCount]layout.RelativeIcon) (*MatchRecord, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: zero-sized image", ErrInvalidImage)
	}

	regions, err := p.resolver.Resolve(w, h, custom)
	if err != nil {
		return nil, fmt.Errorf("match: resolve layout: %w", err)
	}

	var tokens []ocrtoken.Token
	identifications := make([]icon.Identification, layout.SlotCount)
	identErrs := make([]error, layout.SlotCount)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		toks, err := p.ocr.Recognize(gctx, img)
		if err != nil {
			return fmt.Errorf("match: ocr: %w", err)
		}
		tokens = toks
		return nil
	})
	for i := range regions {
		i := i
		g.Go(func() error {
			region := cropImage(img, regions[i])
			ident, err := p.matcher.Identify(region)
			identifications[i] = ident
			identErrs[i] = err
			return nil // a single slot failing to identify isn't fatal to the parse
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sorted := make([]ocrtoken.Token, len(tokens))
	copy(sorted, tokens)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].VerticalMid() < sorted[j].VerticalMid() })

	record := &MatchRecord{Outcome: OutcomeUnknown}
	scanHeader(record, sorted, p.mapNames, h)

	hunterPosition := 1
	if record.Outcome == OutcomeDefeat {
		hunterPosition = layout.SlotCount
	}

	targetYs := make([]float64, layout.SlotCount)
	for i, r := range regions {
		targetYs[i] = float64(r.Y + r.Height/2)
	}
	rows := textrow.GroupRows(sorted, h, targetYs)

	for i := 0; i < layout.SlotCount; i++ {
		position := i + 1
		ident := identifications[i]
		identErr := identErrs[i]

		if position == hunterPosition {
			if identErr == nil {
				record.HunterCharacter = ident.Name
				if ident.Category != icon.CategoryHunter {
					log.Debug().Int("position", position).Str("recognized", ident.Name).
						Msg("match: hunter position recognized against a non-hunter template, recording it anyway since the killer template set may be incomplete")
				}
			} else {
				log.Debug().Int("position", position).Err(identErr).Msg("match: could not recognize hunter character icon")
			}
			continue
		}

		if identErr != nil || (ident.Category != icon.CategorySurvivor && ident.Category != icon.CategoryLegacy) {
			log.Debug().Int("position", position).Err(identErr).Msg("match: could not recognize character icon")
			continue
		}

		stats := textrow.Assemble(rows[i])
		survivor := SurvivorStats{
			Position:       position,
			Character:      ident.Name,
			DecodeProgress: stats.DecodeProgress,
			KiteSeconds:    stats.KiteSeconds,
		}
		if stats.BoardHits != nil {
			survivor.BoardHits = *stats.BoardHits
		}
		if stats.Rescues != nil {
			survivor.Rescues = *stats.Rescues
		}
		if stats.Heals != nil {
			survivor.Heals = *stats.Heals
		}
		record.Survivors = append(record.Survivors, survivor)
	}

	return record, nil
}

// cropImage returns the sub-image covered by region expanded by 10% on
// every side, clipped to img's bounds.
func cropImage(img image.Image, region layout.IconRegion) image.Image {
	bounds := img.Bounds()
	padded := region.Inset(region.Width/10, region.Height/10)
	clipped := padded.Clip(bounds.Dx(), bounds.Dy())
	rect := image.Rect(
		bounds.Min.X+clipped.X, bounds.Min.Y+clipped.Y,
		bounds.Min.X+clipped.X+clipped.Width, bounds.Min.Y+clipped.Y+clipped.Height,
	)
	if sub, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return sub.SubImage(rect)
	}

	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			out.Set(x-rect.Min.X, y-rect.Min.Y, img.At(x, y))
		}
	}
	return out
}

var (
	datetimePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d{1,2})月(\d{1,2})日[^\d：:.]*(\d{1,2})[:．.](\d{2})`),
		regexp.MustCompile(`(\d{1,2})/(\d{1,2})\s*(\d{1,2})[:．.](\d{2})`),
		regexp.MustCompile(`(\d{1,2})-(\d{1,2})\s*(\d{1,2})[:．.](\d{2})`),
	}
	durationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`使用時間\s*[：:\s]*(\d{1,2})[:．.](\d{2})`),
		regexp.MustCompile(`時間\s*[：:\s]*(\d{1,2})[:．.](\d{2})`),
	}
)

// jst is the fixed UTC+9 offset result screens report wall-clock times in.
var jst = time.FixedZone("JST", 9*60*60)

// scanHeader walks every token top-to-bottom and fills in the header
// fields of record: outcome and map name take the last match found (a
// later token overwrites an earlier one, matching how a screen's result
// banner text is OCR'd in multiple overlapping fragments), while
// played-at and duration take the first valid match and then stop
// updating.
func scanHeader(record *MatchRecord, sortedTokens []ocrtoken.Token, mapNames []string, imgHeight int) {
	now := time.Now().In(jst)

	for _, tok := range sortedTokens {
		text := tok.Text
		yRatio := tok.VerticalMid() / float64(imgHeight)

		if yRatio < 0.4 {
			switch {
			case containsAny(text, "相打") || text == "相":
				record.Outcome = OutcomeDraw
			case containsAny(text, "勝利") || text == "勝":
				record.Outcome = OutcomeVictory
			case containsAny(text, "敗北", "失敗") || text == "敗" || text == "失":
				record.Outcome = OutcomeDefeat
			}
		}

		for _, name := range mapNames {
			if containsAny(text, name) {
				record.MapName = name
				break
			}
		}

		if record.PlayedAt == nil {
			if played, ok := parsePlayedAt(text, now); ok {
				record.PlayedAt = &played
			}
		}

		if record.Duration == nil {
			if d, ok := parseDuration(text); ok {
				record.Duration = &d
			}
		}
	}
}

func containsAny(text string, subs ...string) bool {
	for _, s := range subs {
		if s != "" && strings.Contains(text, s) {
			return true
		}
	}
	return false
}

// parsePlayedAt matches the three datetime layouts a result screen
// uses, assumes the current year in JST, and rolls back one year if
// that would otherwise land in the future (the screen only prints
// month/day/time, never the year).
func parsePlayedAt(text string, now time.Time) (time.Time, bool) {
	for _, re := range datetimePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		hour, _ := strconv.Atoi(m[3])
		minute, _ := strconv.Atoi(m[4])
		if month < 1 || month > 12 || day < 1 || day > 31 || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
			continue
		}

		played := time.Date(now.Year(), time.Month(month), day, hour, minute, 0, 0, jst)
		if played.After(now) {
			played = time.Date(now.Year()-1, time.Month(month), day, hour, minute, 0, 0, jst)
		}
		// time.Date silently normalizes an out-of-range day (e.g. Feb 29
		// in a non-leap year) into the following month; reject rather
		// than accept a rolled-over date.
		if played.Month() != time.Month(month) || played.Day() != day {
			continue
		}
		return played, true
	}
	return time.Time{}, false
}

// parseDuration matches the "used time" label and rejects anything
// over 15 minutes, since result screens never report a longer match.
func parseDuration(text string) (time.Duration, bool) {
	for _, re := range durationPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		minutes, _ := strconv.Atoi(m[1])
		seconds, _ := strconv.Atoi(m[2])
		if minutes > 15 {
			continue
		}
		return time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second, true
	}
	return 0, false
}
