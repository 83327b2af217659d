// Package config loads the pipeline's TOML configuration file.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is the full set of tunables the extraction pipeline reads at
// startup. Every field has a workable default via Default, so an
// operator's config file only needs to override what it disagrees with.
type Config struct {
	TemplatesPath     string   `toml:"templates_path"`
	RegistryPath      string   `toml:"registry_path"`
	LogPath           string   `toml:"log_path"`
	OCRTimeoutSeconds int      `toml:"ocr_timeout_seconds"`
	MatchThreshold    float64  `toml:"match_threshold"`
	AmbiguityMargin   float64  `toml:"ambiguity_margin"`
	AspectTolerance   float64  `toml:"aspect_tolerance"`
	PositionTolerance float64  `toml:"position_tolerance"`
	MapNames          []string `toml:"map_names"`
}

// Default returns the configuration used when no file is supplied, or
// to fill in any field a supplied file leaves zero-valued.
func Default() Config {
	return Config{
		TemplatesPath:     "templates",
		RegistryPath:      "",
		LogPath:           "",
		OCRTimeoutSeconds: 60,
		MatchThreshold:    0.40,
		AmbiguityMargin:   0.05,
		AspectTolerance:   0.05,
		PositionTolerance: 0.01,
		MapNames: []string{
			"聖心病院", "軍需工場", "赤の教会", "湖景村", "レイス公園",
			"月の河公園", "永眠町", "リデプシ再誕", "オレッタ墓園", "軍需工場跡地",
		},
	}
}

// Load reads and decodes a TOML file at path, layering its values over
// Default so an operator's file can override just the fields it cares
// about.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	var fromFile Config
	if _, err := toml.DecodeFile(path, &fromFile); err != nil {
		return cfg, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if fromFile.TemplatesPath != "" {
		cfg.TemplatesPath = fromFile.TemplatesPath
	}
	if fromFile.RegistryPath != "" {
		cfg.RegistryPath = fromFile.RegistryPath
	}
	if fromFile.LogPath != "" {
		cfg.LogPath = fromFile.LogPath
	}
	if fromFile.OCRTimeoutSeconds != 0 {
		cfg.OCRTimeoutSeconds = fromFile.OCRTimeoutSeconds
	}
	if fromFile.MatchThreshold != 0 {
		cfg.MatchThreshold = fromFile.MatchThreshold
	}
	if fromFile.AmbiguityMargin != 0 {
		cfg.AmbiguityMargin = fromFile.AmbiguityMargin
	}
	if fromFile.AspectTolerance != 0 {
		cfg.AspectTolerance = fromFile.AspectTolerance
	}
	if fromFile.PositionTolerance != 0 {
		cfg.PositionTolerance = fromFile.PositionTolerance
	}
	if len(fromFile.MapNames) > 0 {
		cfg.MapNames = fromFile.MapNames
	}

	return cfg, nil
}
