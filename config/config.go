// Package config — .dumploc.yaml configuration file support.
//
// When a .dumploc.yaml file exists in the working directory it is the
// source of truth for the run: output table, row shape indices, locale
// targets and batching knobs. Without one, built-in defaults matching
// the checklist-items dump layout apply.
//
// The DeepL API key is never stored in .dumploc.yaml. It is resolved at
// startup from the --api-key flag, the DEEPL_API_KEY environment
// variable (a .env file in the working directory is honored), or the
// credential store, in that order. A missing key is a fatal
// configuration error raised before any parsing begins.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dumploc/dumploc/settings"
	"github.com/dumploc/dumploc/translate"
)

// FileName is the per-project configuration file name.
const FileName = ".dumploc.yaml"

// Shape is the YAML form of a row shape: tuple indices per attribute.
type Shape struct {
	// ID is the index of the integer record id.
	ID int `yaml:"id"`
	// Label is the index of the required label text.
	Label int `yaml:"label"`
	// Description is the index of the description text.
	Description int `yaml:"description"`
	// Placeholder is the index of the optional placeholder text
	// (-1 = the row has none).
	Placeholder int `yaml:"placeholder"`
}

// Target is the YAML form of a locale target.
type Target struct {
	// Locale is the code written to the output (e.g. "pt").
	Locale string `yaml:"locale"`
	// Lang is the DeepL target code (e.g. "PT-BR").
	Lang string `yaml:"lang"`
}

// File is the top-level .dumploc.yaml structure.
type File struct {
	// SourceLang is the DeepL source language code (empty = detect).
	SourceLang string `yaml:"source_lang,omitempty"`
	// Table is the output table name.
	Table string `yaml:"table"`
	// IDColumn is the output id column name.
	IDColumn string `yaml:"id_column"`
	// Shape maps tuple positions to record attributes.
	Shape Shape `yaml:"row_shape"`
	// Targets is the ordered locale list; the first entry is the base
	// locale.
	Targets []Target `yaml:"targets"`

	// BatchSize is the maximum strings per provider call (default 50).
	BatchSize int `yaml:"batch_size,omitempty"`
	// MaxAttempts is the per-batch attempt budget (default 4).
	MaxAttempts int `yaml:"max_attempts,omitempty"`
	// BaseDelay is the linear backoff unit (default 2s).
	BaseDelay time.Duration `yaml:"base_delay,omitempty"`
	// BatchDelay is the pause after each successful batch (default 500ms).
	BatchDelay time.Duration `yaml:"batch_delay,omitempty"`
}

// Default returns the built-in configuration: the checklist-items dump
// layout with Spanish as the base locale and the seven standard DeepL
// targets.
func Default() *File {
	return &File{
		SourceLang: "ES",
		Table:      "checklist_item_translations",
		IDColumn:   "checklist_item_id",
		Shape:      Shape{ID: 11, Label: 1, Description: 5, Placeholder: 4},
		Targets: []Target{
			{Locale: "es", Lang: "ES"},
			{Locale: "en", Lang: "EN-US"},
			{Locale: "pt", Lang: "PT-BR"},
			{Locale: "it", Lang: "IT"},
			{Locale: "de", Lang: "DE"},
			{Locale: "fr", Lang: "FR"},
			{Locale: "ko", Lang: "KO"},
			{Locale: "zh", Lang: "ZH-HANS"},
		},
	}
}

// Load reads .dumploc.yaml from dir, falling back to Default when the
// file does not exist.
func Load(dir string) (*File, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses and validates .dumploc.yaml content.
func Parse(data []byte) (*File, error) {
	f := &File{Shape: Shape{Placeholder: -1}}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks the fields a run cannot proceed without.
func (f *File) Validate() error {
	if f.Table == "" {
		return fmt.Errorf("%s: table is required", FileName)
	}
	if f.IDColumn == "" {
		return fmt.Errorf("%s: id_column is required", FileName)
	}
	if len(f.Targets) == 0 {
		return fmt.Errorf("%s: at least one target is required", FileName)
	}
	for i, t := range f.Targets {
		if t.Locale == "" || t.Lang == "" {
			return fmt.Errorf("%s: target %d needs both locale and lang", FileName, i)
		}
	}
	for name, idx := range map[string]int{
		"id": f.Shape.ID, "label": f.Shape.Label, "description": f.Shape.Description,
	} {
		if idx < 0 {
			return fmt.Errorf("%s: row_shape.%s must not be negative", FileName, name)
		}
	}
	return nil
}

// SQLJob converts the configuration into a pipeline job.
func (f *File) SQLJob() translate.SQLJob {
	return translate.SQLJob{
		Table:    f.Table,
		IDColumn: f.IDColumn,
		Shape: translate.RowShape{
			ID:          f.Shape.ID,
			Label:       f.Shape.Label,
			Description: f.Shape.Description,
			Placeholder: f.Shape.Placeholder,
		},
		Targets: f.LocaleTargets(),
	}
}

// LocaleTargets returns the targets in pipeline form.
func (f *File) LocaleTargets() []translate.LocaleTarget {
	out := make([]translate.LocaleTarget, len(f.Targets))
	for i, t := range f.Targets {
		out[i] = translate.LocaleTarget{Locale: t.Locale, Lang: t.Lang}
	}
	return out
}

// Options returns the batching options for this configuration.
func (f *File) Options() *translate.Options {
	return &translate.Options{
		SourceLang:  f.SourceLang,
		BatchSize:   f.BatchSize,
		MaxAttempts: f.MaxAttempts,
		BaseDelay:   f.BaseDelay,
		BatchDelay:  f.BatchDelay,
	}
}

// ResolveAPIKey returns the DeepL API key, trying the explicit flag
// value, then DEEPL_API_KEY (after loading a .env file from dir when one
// exists), then the credential store. The returned error is a fatal
// configuration error.
func ResolveAPIKey(flagValue, dir string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	// Best effort: a missing .env is fine, the variable may be exported.
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	if key := os.Getenv("DEEPL_API_KEY"); key != "" {
		return key, nil
	}
	if key := settings.APIKey(); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("missing DeepL API key: pass --api-key, set DEEPL_API_KEY (optionally via .env), or run 'dumploc auth login'")
}
