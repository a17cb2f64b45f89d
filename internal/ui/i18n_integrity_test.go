package ui_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lifeclock/internal/config"
)

// translationKeys lists every key the code asks the localizer for.
var translationKeys = []string{
	config.TKeyWinTitle,
	config.TKeyWinSettings,
	config.TKeyMenuToggle,
	config.TKeyMenuSettings,
	config.TKeyNotifHidden,
	config.TKeyNotifImport,
	config.TKeyNotifImpErr,
	config.TKeyPromptBirthday,
	config.TKeyErrBirthday,
	config.TKeyLineAge,
	config.TKeyLineWeeks,
	config.TKeyLineMonths,
	config.TKeyLineDays,
	config.TKeyLineHours,
	config.TKeyLineMinutes,
	config.TKeyLineSeconds,
	config.TKeyCountdown,
	config.TKeyRemaining,
	config.TKeyRemainingDays,
	config.TKeyLblProfile,
	config.TKeyLblBirthday,
	config.TKeyHelpBirthday,
	config.TKeyLblLifetime,
	config.TKeyHelpLifetime,
	config.TKeyLblYears,
	config.TKeyLblOpacity,
	config.TKeyLblLanguage,
	config.TKeyHelpLanguage,
	config.TKeyLblImport,
	config.TKeyModeCardDAV,
	config.TKeyModeLocal,
	config.TKeyLblURL,
	config.TKeyHelpURL,
	config.TKeyLblUser,
	config.TKeyLblPass,
	config.TKeyBtnBrowse,
	config.TKeyBtnImport,
	config.TKeyLblFeed,
	config.TKeyLblFeedEnable,
	config.TKeyLblPort,
	config.TKeyHelpPort,
	config.TKeyBtnSave,
	config.TKeyBtnCancel,
	config.TKeyLblFooter,
	config.TKeyEvtBirthday,
	config.TKeyEvtBirth,
	config.TKeyEvtEndOfLife,
	config.TKeyErrLifetime,
	config.TKeyErrPortReq,
	config.TKeyErrPortNum,
	config.TKeyErrPortRange,
}

func loadLocale(t *testing.T, lang string) map[string]string {
	t.Helper()
	name := "active." + lang + ".json"

	content, err := os.ReadFile(filepath.Join("locales", name))
	if os.IsNotExist(err) {
		content, err = os.ReadFile(filepath.Join("..", "..", "internal", "ui", "locales", name))
	}
	require.NoError(t, err, "Must load %s", name)

	var messages map[string]string
	require.NoError(t, json.Unmarshal(content, &messages), "%s must be a flat JSON object", name)
	return messages
}

// TestI18nIntegrity checks that every supported language translates every key
// and carries the same template fields as English.
func TestI18nIntegrity(t *testing.T) {
	english := loadLocale(t, "en")

	for _, lang := range config.SupportedLanguages {
		t.Run(lang, func(t *testing.T) {
			messages := loadLocale(t, lang)

			for _, key := range translationKeys {
				msg, ok := messages[key]
				if !assert.Truef(t, ok, "Key %q is missing in active.%s.json", key, lang) {
					continue
				}
				assert.NotEmpty(t, strings.TrimSpace(msg), "Key %q is blank", key)

				for _, field := range []string{"{{.Value}}", "{{.Days}}", "{{.Hours}}", "{{.Minutes}}", "{{.Seconds}}",
					"{{.Years}}", "{{.Age}}", "{{.Lifetime}}", "{{.Min}}", "{{.Max}}", "{{.Date}}", "%s"} {
					assert.Equalf(t, strings.Contains(english[key], field), strings.Contains(msg, field),
						"Key %q: placeholder %s differs from English", key, field)
				}
			}

			for key := range messages {
				if strings.HasPrefix(key, "_") {
					continue
				}
				assert.Containsf(t, translationKeys, key, "Orphan key %q in active.%s.json", key, lang)
			}
		})
	}
}
