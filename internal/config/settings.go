package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// Settings is the user profile the overlay is rendered from.
// The JSON names match the config.json written by earlier releases.
type Settings struct {
	Birthday string `toml:"birthday" json:"birthday"` // YYYY-MM-DD, empty when not configured
	Lifetime int    `toml:"lifetime" json:"lifetime"` // assumed lifespan in years
	Opacity  int    `toml:"opacity" json:"opacity"`   // overlay opacity in percent
	Language string `toml:"language,omitempty" json:"language,omitempty"`
}

// DefaultSettings returns the profile used on first launch.
func DefaultSettings() Settings {
	return Settings{
		Lifetime: DefaultLifetime,
		Opacity:  DefaultOpacity,
		Language: DefaultLanguage,
	}
}

// WithDefaults fills zero fields with their defaults.
func (s Settings) WithDefaults() Settings {
	if s.Lifetime == 0 {
		s.Lifetime = DefaultLifetime
	}
	if s.Opacity == 0 {
		s.Opacity = DefaultOpacity
	}
	if s.Language == "" {
		s.Language = DefaultLanguage
	}
	s.Birthday = strings.TrimSpace(s.Birthday)
	return s
}

// Validate checks the numeric ranges and the language.
// The birthday is parsed by the engine, not here.
func (s Settings) Validate() error {
	var errs []error
	if s.Lifetime < MinLifetime || s.Lifetime > MaxLifetime {
		errs = append(errs, fmt.Errorf("%s: got %d", ErrLifetimeRange, s.Lifetime))
	}
	if s.Opacity < MinOpacity || s.Opacity > MaxOpacity {
		errs = append(errs, fmt.Errorf("%s: got %d", ErrOpacityRange, s.Opacity))
	}
	if s.Language != "" && !slices.Contains(SupportedLanguages, s.Language) {
		errs = append(errs, fmt.Errorf("%s: %q", ErrLanguage, s.Language))
	}
	return errors.Join(errs...)
}

// ClampLifetime bounds v to the accepted lifetime range.
func ClampLifetime(v int) int {
	return min(max(v, MinLifetime), MaxLifetime)
}

// ClampOpacity bounds v to the accepted opacity range.
func ClampOpacity(v int) int {
	return min(max(v, MinOpacity), MaxOpacity)
}

// DecodeSettings reads settings in the given format (ExtTOML or ExtJSON).
func DecodeSettings(r io.Reader, format string) (Settings, error) {
	var s Settings
	switch format {
	case ExtTOML:
		if _, err := toml.NewDecoder(r).Decode(&s); err != nil {
			return Settings{}, fmt.Errorf("%s: %w", ErrSettingsDecode, err)
		}
	case ExtJSON:
		if err := json.NewDecoder(r).Decode(&s); err != nil {
			return Settings{}, fmt.Errorf("%s: %w", ErrSettingsDecode, err)
		}
	default:
		return Settings{}, fmt.Errorf("%s: %q", ErrSettingsFormat, format)
	}
	return s.WithDefaults(), nil
}

// ReadSettingsFile loads settings from path, choosing the decoder by extension.
func ReadSettingsFile(path string) (Settings, error) {
	format := strings.ToLower(filepath.Ext(path))
	if format != ExtTOML && format != ExtJSON {
		return Settings{}, fmt.Errorf("%s: %q", ErrSettingsFormat, format)
	}

	f, err := os.Open(path)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", ErrSettingsRead, err)
	}
	defer func() { _ = f.Close() }()

	s, err := DecodeSettings(f, format)
	if err != nil {
		return Settings{}, fmt.Errorf("reading settings from %s: %w", path, err)
	}
	slog.Debug(MsgSettingsLoaded,
		LogKeyComponent, CompConfig,
		LogKeyFile, path,
	)
	return s, nil
}
