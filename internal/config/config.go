// Package config loads the read-only snapshot of settings, sources, and
// exclusions the Scan Engine runs against. Defaults live in code; CLI flags
// (registered in cmd) override the defaults; a YAML file passed with
// --config replaces both, flags included.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/galleryloom/gallerysync/internal/apperr"
	"github.com/galleryloom/gallerysync/internal/entity"
)

// Database holds the Record Store's Postgres connection settings.
type Database struct {
	URI                string `yaml:"uri"`
	SSL                bool   `yaml:"ssl"`
	MaxOpenConnections int    `yaml:"max_open_connections"`
}

// Config is the root configuration document.
type Config struct {
	Database Database `yaml:"database"`

	LogFormat string `yaml:"log_format"`
	LogLevel  string `yaml:"log_level"`

	HTTPPort int `yaml:"http_port"`

	Roots      entity.Roots       `yaml:"-"`
	DataRoot   string             `yaml:"data_root"`
	OutputRoot string             `yaml:"output_root"`
	ConfigRoot string             `yaml:"config_root"`
	DuplicatesRoot string         `yaml:"duplicates_root"`
	TmpRoot    string             `yaml:"tmp_root"`

	Settings   entity.Settings    `yaml:"-"`
	Sources    []entity.Source    `yaml:"sources"`
	Exclusions []entity.Exclusion `yaml:"-"`
	ExclusionPaths []string       `yaml:"exclusions"`

	settingsOverlay settingsYAML `yaml:"settings"`
}

// settingsYAML mirrors entity.Settings with pointer fields so the YAML
// decoder can tell "absent" from "explicitly false/zero" and only override
// defaults for keys actually present in the file.
type settingsYAML struct {
	ZipGalleries                 *bool    `yaml:"zip_galleries"`
	UpdateGalleryZips            *bool    `yaml:"update_gallery_zips"`
	ReplicateNesting             *bool    `yaml:"replicate_nesting"`
	LeafOnly                     *bool    `yaml:"leaf_only"`
	ConsiderImagesInSubfolders   *bool    `yaml:"consider_images_in_subfolders"`
	OutputModes                  []string `yaml:"output_modes"`
	CopySidecars                 *bool    `yaml:"copy_sidecars"`
	LanraragiFlatten             *bool    `yaml:"lanraragi_flatten"`
	ArchiveExtensionForGalleries *string  `yaml:"archive_extension_for_galleries"`
	DuplicatesEnabled            *bool    `yaml:"duplicates_enabled"`
	MinImagesToBeGallery         *int     `yaml:"min_images_to_be_gallery"`
	AutoScanEnabled              *bool    `yaml:"auto_scan_enabled"`
	AutoScanIntervalMinutes      *int     `yaml:"auto_scan_interval_minutes"`
	UseHardlinks                 *bool    `yaml:"use_hardlinks"`
}

// NewDefault returns a Config seeded with entity.NewDefaultSettings and no
// sources or exclusions.
func NewDefault() *Config {
	return &Config{
		LogFormat: "console",
		LogLevel:  "info",
		HTTPPort:  8080,
		Settings:  entity.NewDefaultSettings(),
		Database: Database{
			MaxOpenConnections: 10,
		},
	}
}

// Load reads path as YAML and overlays it onto a default Config.
func Load(path string) (*Config, error) {
	cfg := NewDefault()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	// yaml.v2 skips unexported fields, so the settings section is decoded
	// separately into settingsOverlay.
	var overlay struct {
		Settings settingsYAML `yaml:"settings"`
	}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.settingsOverlay = overlay.Settings

	cfg.applySettingsOverlay()
	cfg.Roots = entity.Roots{
		DataRoot:       cfg.DataRoot,
		OutputRoot:     cfg.OutputRoot,
		ConfigRoot:     cfg.ConfigRoot,
		DuplicatesRoot: cfg.DuplicatesRoot,
		TmpRoot:        cfg.TmpRoot,
	}
	for _, p := range cfg.ExclusionPaths {
		cfg.Exclusions = append(cfg.Exclusions, entity.Exclusion{Path: p})
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports the first apperr.InvalidInput a loaded Config fails, or
// nil if the roots and sources are usable.
func (c *Config) Validate() error {
	if c.DataRoot == "" {
		return &apperr.InvalidInput{Field: "data_root", Message: "must not be empty"}
	}
	if c.OutputRoot == "" {
		return &apperr.InvalidInput{Field: "output_root", Message: "must not be empty"}
	}
	for _, s := range c.Sources {
		if s.ID == "" {
			return &apperr.InvalidInput{Field: "sources", Message: "every source needs an id"}
		}
		if strings.Contains(s.Path, "..") {
			return &apperr.InvalidInput{Field: fmt.Sprintf("sources[%s].path", s.ID), Message: "must not contain '..'"}
		}
	}
	return nil
}

// CurrentSettings implements internal/autoscan.ConfigSource. The Scan Engine
// only ever sees an immutable snapshot, so this just returns the value
// loaded at startup.
func (c *Config) CurrentSettings() entity.Settings {
	return c.Settings
}

// CurrentSources implements internal/autoscan.ConfigSource.
func (c *Config) CurrentSources() []entity.Source {
	return c.Sources
}

func (c *Config) applySettingsOverlay() {
	s := c.settingsOverlay
	if s.ZipGalleries != nil {
		c.Settings.ZipGalleries = *s.ZipGalleries
	}
	if s.UpdateGalleryZips != nil {
		c.Settings.UpdateGalleryZips = *s.UpdateGalleryZips
	}
	if s.ReplicateNesting != nil {
		c.Settings.ReplicateNesting = *s.ReplicateNesting
	}
	if s.LeafOnly != nil {
		c.Settings.LeafOnly = *s.LeafOnly
	}
	if s.ConsiderImagesInSubfolders != nil {
		c.Settings.ConsiderImagesInSubfolders = *s.ConsiderImagesInSubfolders
	}
	if len(s.OutputModes) > 0 {
		modes := make(map[entity.OutputMode]bool, len(s.OutputModes))
		for _, m := range s.OutputModes {
			modes[entity.OutputMode(m)] = true
		}
		c.Settings.OutputModes = modes
	}
	if s.CopySidecars != nil {
		c.Settings.CopySidecars = *s.CopySidecars
	}
	if s.LanraragiFlatten != nil {
		c.Settings.LanraragiFlatten = *s.LanraragiFlatten
	}
	if s.ArchiveExtensionForGalleries != nil {
		c.Settings.ArchiveExtensionForGalleries = entity.ArchiveExtension(*s.ArchiveExtensionForGalleries)
	}
	if s.DuplicatesEnabled != nil {
		c.Settings.DuplicatesEnabled = *s.DuplicatesEnabled
	}
	if s.MinImagesToBeGallery != nil {
		c.Settings.MinImagesToBeGallery = *s.MinImagesToBeGallery
	}
	if s.AutoScanEnabled != nil {
		c.Settings.AutoScanEnabled = *s.AutoScanEnabled
	}
	if s.AutoScanIntervalMinutes != nil {
		c.Settings.AutoScanIntervalMinutes = *s.AutoScanIntervalMinutes
	}
	if s.UseHardlinks != nil {
		c.Settings.UseHardlinks = *s.UseHardlinks
	}
}
