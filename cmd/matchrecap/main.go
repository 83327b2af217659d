// Command matchrecap extracts a structured match record from a single
// result screenshot.
//
// Usage: matchrecap -image <path> [-config matchrecap.toml] [-templates dir] [-custom-layout layout.json]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"matchrecap/internal/applog"
	"matchrecap/internal/config"
	"matchrecap/internal/icon"
	"matchrecap/internal/layout"
	"matchrecap/internal/match"
	"matchrecap/internal/ocrtoken"
	"matchrecap/internal/registry"
)

func main() {
	imagePath := flag.String("image", "", "Path to a result screenshot (PNG or JPEG)")
	configPath := flag.String("config", "", "Path to a matchrecap.toml config file")
	templatesDir := flag.String("templates", "", "Override the configured icon templates directory")
	customLayoutPath := flag.String("custom-layout", "", "Path to a JSON file holding 5 {x_ratio,y_ratio,size_ratio} icon slots, bypassing the layout registry")
	asJSON := flag.Bool("json", false, "Print the extracted record as JSON instead of a table")
	debug := flag.Bool("debug", false, "Enable debug-level logging")
	flag.Parse()

	if *imagePath == "" {
		fmt.Fprintln(os.Stderr, "Usage: matchrecap -image <path> [-config matchrecap.toml] [-templates dir] [-custom-layout layout.json]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *templatesDir != "" {
		cfg.TemplatesPath = *templatesDir
	}

	closer, err := applog.Init(cfg.LogPath, *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	var custom *[layout.SlotCount]layout.RelativeIcon
	if *customLayoutPath != "" {
		custom, err = loadCustomLayout(*customLayoutPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load custom layout: %v\n", err)
			os.Exit(1)
		}
	}

	record, err := run(cfg, *imagePath, custom)
	if err != nil {
		fmt.Fprintf(os.Stderr, "matchrecap: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		printJSON(record)
	} else {
		printTable(record)
	}
}

// loadCustomLayout decodes a JSON array of exactly 5 relative icon
// slots, letting a caller bypass the layout registry entirely for a
// device the resolver doesn't already know about.
func loadCustomLayout(path string) (*[layout.SlotCount]layout.RelativeIcon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read custom layout: %w", err)
	}
	var icons []layout.RelativeIcon
	if err := json.Unmarshal(data, &icons); err != nil {
		return nil, fmt.Errorf("parse custom layout: %w", err)
	}
	if len(icons) != layout.SlotCount {
		return nil, fmt.Errorf("%w: custom layout has %d slots, want %d", layout.ErrLayoutInvalid, len(icons), layout.SlotCount)
	}
	var out [layout.SlotCount]layout.RelativeIcon
	copy(out[:], icons)
	return &out, nil
}

// maxImageBytes is the largest result-screenshot file the pipeline
// will decode; anything past it is rejected before OCR ever runs.
const maxImageBytes = 10 * 1024 * 1024

func run(cfg config.Config, imagePath string, custom *[layout.SlotCount]layout.RelativeIcon) (*match.MatchRecord, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat image: %w", err)
	}
	if info.Size() > maxImageBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, exceeds %d byte limit", match.ErrInvalidImage, imagePath, info.Size(), maxImageBytes)
	}

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", match.ErrInvalidImage, imagePath, err)
	}

	templates, err := icon.LoadSet(cfg.TemplatesPath)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	defer templates.Close()
	for _, name := range templates.Skipped {
		fmt.Fprintf(os.Stderr, "matchrecap: skipped unreadable template %q\n", name)
	}
	matcher := icon.NewMatcher(templates, cfg.MatchThreshold, cfg.AmbiguityMargin)

	registryPath := cfg.RegistryPath
	if registryPath == "" {
		registryPath, err = registry.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolve registry path: %w", err)
		}
	}
	reg, err := registry.Load(registryPath, cfg.AspectTolerance, cfg.PositionTolerance)
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	resolver := layout.NewResolver(reg, cfg.AspectTolerance)

	engine, err := ocrtoken.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("start ocr engine: %w", err)
	}
	defer engine.Close()

	parser := match.NewParser(engine, resolver, matcher, cfg.MapNames)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.OCRTimeoutSeconds)*time.Second)
	defer cancel()

	return parser.Parse(ctx, img, custom)
}

func printJSON(record *match.MatchRecord) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(record)
}

func printTable(record *match.MatchRecord) {
	fmt.Printf("Outcome:  %s\n", record.Outcome)
	if record.MapName != "" {
		fmt.Printf("Map:      %s\n", record.MapName)
	}
	if record.Duration != nil {
		fmt.Printf("Duration: %s\n", record.Duration)
	}
	if record.PlayedAt != nil {
		fmt.Printf("Played:   %s\n", record.PlayedAt.Format(time.RFC3339))
	}
	if record.HunterCharacter != "" {
		fmt.Printf("Hunter:   %s\n", record.HunterCharacter)
	}
	fmt.Println()

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Pos", "Character", "Decode", "Kite", "Board", "Rescues", "Heals"})
	for _, s := range record.Survivors {
		decode := "-"
		if s.DecodeProgress != nil {
			decode = fmt.Sprintf("%d%%", *s.DecodeProgress)
		}
		kite := "-"
		if s.KiteSeconds != nil {
			kite = fmt.Sprintf("%ds", *s.KiteSeconds)
		}
		tw.AppendRow(table.Row{s.Position, s.Character, decode, kite, s.BoardHits, s.Rescues, s.Heals})
	}
	tw.SetStyle(table.StyleLight)
	tw.Style().Options.SeparateRows = true
	tw.Render()
}
