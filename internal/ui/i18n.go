package ui

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-lifeclock/internal/config"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed locales/*.json
var localeFS embed.FS

const (
	localeDir    = "locales"
	localePrefix = "active."
	localeSuffix = ".json"
)

// SetupI18n loads every embedded locale and detects the available languages.
func (app *LifeClockApp) SetupI18n() {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir(localeDir)
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return
	}

	var detected []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, localePrefix) || !strings.HasSuffix(name, localeSuffix) {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		lang := strings.TrimSuffix(strings.TrimPrefix(name, localePrefix), localeSuffix)
		if lang == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, localeDir+"/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		detected = append(detected, lang)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, lang,
		)
	}

	app.i18nMu.Lock()
	app.SupportedLanguages = detected
	app.I18nBundle = bundle
	app.i18nMu.Unlock()

	app.UpdateLocalizer()
}

// UpdateLocalizer switches the translator and number printer to the preferred language.
// It is safe to call while the refresh worker is rendering.
func (app *LifeClockApp) UpdateLocalizer() {
	lang := app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage)
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}

	app.i18nMu.Lock()
	defer app.i18nMu.Unlock()
	if app.I18nBundle != nil {
		app.Localizer = i18n.NewLocalizer(app.I18nBundle, lang)
	}
	app.printer = message.NewPrinter(tag)
}

// GetMsg translates a key without template data.
func (app *LifeClockApp) GetMsg(key string) string {
	return app.Localize(key, nil)
}

// Localize translates key with data. Missing keys come back unchanged.
func (app *LifeClockApp) Localize(key string, data map[string]any) string {
	app.i18nMu.RLock()
	loc := app.Localizer
	app.i18nMu.RUnlock()

	if loc == nil {
		return key
	}
	msg, err := loc.Localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// formatNumber groups digits the way the current language does (12,418 / 12 418).
func (app *LifeClockApp) formatNumber(v int64) string {
	app.i18nMu.RLock()
	p := app.printer
	app.i18nMu.RUnlock()

	if p == nil {
		p = message.NewPrinter(language.English)
	}
	return p.Sprintf("%d", v)
}

// languages returns the detected languages, or the configured list before SetupI18n ran.
func (app *LifeClockApp) languages() []string {
	app.i18nMu.RLock()
	defer app.i18nMu.RUnlock()
	if len(app.SupportedLanguages) == 0 {
		return config.SupportedLanguages
	}
	return app.SupportedLanguages
}
