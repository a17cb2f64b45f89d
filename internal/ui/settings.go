package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-lifeclock/internal/config"
	"github.com/tartampluch/go-lifeclock/internal/engine"
	"github.com/zalando/go-keyring"
)

// settingsWidgets keeps the inputs that saveSettings reads back.
type settingsWidgets struct {
	birthdayEntry *widget.Entry
	lifetimeEntry *NumericalEntry
	opacitySlider *widget.Slider
	opacityLabel  *widget.Label
	langSelect    *widget.Select

	modeSelect   *widget.Select
	urlEntry     *widget.Entry
	userEntry    *widget.Entry
	passEntry    *widget.Entry
	pathEntry    *widget.Entry
	importButton *widget.Button

	feedCheck *widget.Check
	portEntry *NumericalEntry
}

// Settings returns the profile stored in the preferences.
func (app *LifeClockApp) Settings() config.Settings {
	return config.Settings{
		Birthday: app.Preferences.String(config.PrefBirthday),
		Lifetime: app.Preferences.IntWithFallback(config.PrefLifetime, config.DefaultLifetime),
		Opacity:  app.Preferences.IntWithFallback(config.PrefOpacity, config.DefaultOpacity),
		Language: app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage),
	}.WithDefaults()
}

// ImportLegacySettings copies the settings file at path into the preferences on
// first launch. It does nothing once a birthday is stored or an import has run,
// and reports whether anything was copied.
func (app *LifeClockApp) ImportLegacySettings(path string) bool {
	log := slog.With(config.LogKeyComponent, config.CompConfig, config.LogKeyFile, path)
	if app.Preferences.Bool(config.PrefLegacyDone) || app.Preferences.String(config.PrefBirthday) != "" {
		return false
	}

	s, err := config.ReadSettingsFile(path)
	if err != nil {
		log.Debug(config.MsgLegacySkipped, config.LogKeyError, err)
		return false
	}
	if t, err := engine.ParseBirthday(s.Birthday); err == nil {
		s.Birthday = engine.FormatBirthday(t)
	}
	if !slices.Contains(app.languages(), s.Language) {
		s.Language = config.DefaultLanguage
	}

	app.Preferences.SetString(config.PrefBirthday, s.Birthday)
	app.Preferences.SetInt(config.PrefLifetime, config.ClampLifetime(s.Lifetime))
	app.Preferences.SetInt(config.PrefOpacity, config.ClampOpacity(s.Opacity))
	app.Preferences.SetString(config.PrefLanguage, s.Language)
	app.Preferences.SetBool(config.PrefLegacyDone, true)

	log.Info(config.MsgLegacyImported, config.LogKeyDOB, s.Birthday)
	return true
}

// ShowSettingsWindow opens the settings window, or focuses it if already open.
func (app *LifeClockApp) ShowSettingsWindow() {
	if app.SettingsWindow != nil {
		app.SettingsWindow.RequestFocus()
		return
	}

	slog.Info("Opening settings window", config.LogKeyComponent, config.CompUISet)
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinSettings))
	app.SettingsWindow = w

	sw := app.newSettingsWidgets()

	var refreshLayout func()
	onLayoutChange := func() {
		if refreshLayout != nil {
			refreshLayout()
		}
	}

	profileCard := app.buildProfileCard(sw)
	importCard := app.buildImportCard(w, sw, onLayoutChange)
	feedCard := app.buildFeedCard(sw, onLayoutChange)

	btnSave := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSave), theme.DocumentSaveIcon(), func() {
		if err := app.saveSettings(sw); err != nil {
			dialog.ShowError(err, w)
			return
		}
		w.Close()
	})
	btnSave.Importance = widget.HighImportance
	btnCancel := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnCancel), theme.CancelIcon(), func() { w.Close() })

	footer := widget.NewLabel(fmt.Sprintf(app.GetMsg(config.TKeyLblFooter), config.Version))
	footer.Alignment = fyne.TextAlignCenter
	footer.TextStyle = fyne.TextStyle{Italic: true}

	content := container.NewPadded(container.NewVBox(
		profileCard,
		importCard,
		feedCard,
		container.NewGridWithColumns(config.LayoutColumnsDouble, btnCancel, btnSave),
		footer,
	))

	refreshLayout = func() {
		content.Refresh()
		w.Resize(fyne.NewSize(config.SettingsWindowWidth, content.MinSize().Height))
	}

	w.SetContent(content)
	w.SetFixedSize(true)
	w.SetOnClosed(func() {
		app.SettingsWindow = nil
		// Drop an unsaved opacity preview.
		if app.view != nil {
			app.view.setOpacity(app.Settings().Opacity)
		}
	})

	refreshLayout()
	w.Show()
}

// newSettingsWidgets creates the inputs pre-filled from the preferences.
func (app *LifeClockApp) newSettingsWidgets() *settingsWidgets {
	current := app.Settings()
	sw := &settingsWidgets{}

	sw.birthdayEntry = widget.NewEntry()
	sw.birthdayEntry.PlaceHolder = config.PlaceholderBirthday
	sw.birthdayEntry.SetText(current.Birthday)
	sw.birthdayEntry.Validator = app.birthdayValidator()

	lifetimeMsg := app.Localize(config.TKeyErrLifetime, map[string]any{
		"Min": config.MinLifetime, "Max": config.MaxLifetime,
	})
	sw.lifetimeEntry = NewNumericalEntry()
	sw.lifetimeEntry.SetText(strconv.Itoa(config.ClampLifetime(current.Lifetime)))
	sw.lifetimeEntry.Validator = rangeValidator(config.MinLifetime, config.MaxLifetime, rangeMessages{
		Required: lifetimeMsg, NotNumber: lifetimeMsg, OutOfRange: lifetimeMsg,
	})

	sw.opacityLabel = widget.NewLabel("")
	sw.opacitySlider = widget.NewSlider(config.MinOpacity, config.MaxOpacity)
	sw.opacitySlider.Step = 1
	sw.opacitySlider.OnChanged = func(v float64) {
		sw.opacityLabel.SetText(fmt.Sprintf("%d%%", int(v)))
		if app.view != nil {
			app.view.setOpacity(int(v))
		}
	}
	sw.opacitySlider.SetValue(float64(config.ClampOpacity(current.Opacity)))
	sw.opacityLabel.SetText(fmt.Sprintf("%d%%", int(sw.opacitySlider.Value)))

	sw.langSelect = widget.NewSelect(app.languages(), nil)
	sw.langSelect.SetSelected(current.Language)

	sw.modeSelect = widget.NewSelect([]string{
		app.GetMsg(config.TKeyModeCardDAV),
		app.GetMsg(config.TKeyModeLocal),
	}, nil)

	sw.urlEntry = widget.NewEntry()
	sw.urlEntry.PlaceHolder = config.PlaceholderURL
	sw.urlEntry.SetText(app.Preferences.String(config.PrefImportURL))

	sw.userEntry = widget.NewEntry()
	sw.userEntry.SetText(app.Preferences.String(config.PrefImportUser))

	sw.passEntry = widget.NewPasswordEntry()
	if user := sw.userEntry.Text; user != "" {
		if pwd, err := keyring.Get(config.KeyringService, user); err == nil {
			sw.passEntry.SetText(pwd)
		}
	}

	sw.pathEntry = widget.NewEntry()
	sw.pathEntry.SetText(app.Preferences.String(config.PrefImportPath))

	sw.feedCheck = widget.NewCheck(app.GetMsg(config.TKeyLblFeedEnable), nil)
	sw.feedCheck.Checked = app.Preferences.Bool(config.PrefFeedEnabled)

	sw.portEntry = NewNumericalEntry()
	sw.portEntry.SetText(app.Preferences.StringWithFallback(config.PrefServerPort, config.DefaultPort))
	sw.portEntry.Validator = rangeValidator(config.MinPort, config.MaxPort, rangeMessages{
		Required:   app.GetMsg(config.TKeyErrPortReq),
		NotNumber:  app.GetMsg(config.TKeyErrPortNum),
		OutOfRange: app.GetMsg(config.TKeyErrPortRange),
	})

	return sw
}

// birthdayValidator accepts an empty field (no birthday yet) or a parseable date.
func (app *LifeClockApp) birthdayValidator() fyne.StringValidator {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		if _, err := engine.ParseBirthday(s); err != nil {
			return errors.New(app.GetMsg(config.TKeyErrBirthday))
		}
		return nil
	}
}

func (app *LifeClockApp) buildProfileCard(sw *settingsWidgets) *widget.Card {
	itemBirthday := widget.NewFormItem(app.GetMsg(config.TKeyLblBirthday), sw.birthdayEntry)
	itemBirthday.HintText = app.GetMsg(config.TKeyHelpBirthday)

	lifetime := container.NewBorder(nil, nil, nil, widget.NewLabel(app.GetMsg(config.TKeyLblYears)), sw.lifetimeEntry)
	itemLifetime := widget.NewFormItem(app.GetMsg(config.TKeyLblLifetime), lifetime)
	itemLifetime.HintText = app.GetMsg(config.TKeyHelpLifetime)

	opacity := container.NewBorder(nil, nil, nil, sw.opacityLabel, sw.opacitySlider)
	itemOpacity := widget.NewFormItem(app.GetMsg(config.TKeyLblOpacity), opacity)

	itemLang := widget.NewFormItem(app.GetMsg(config.TKeyLblLanguage), sw.langSelect)
	itemLang.HintText = app.GetMsg(config.TKeyHelpLanguage)

	form := widget.NewForm(itemBirthday, itemLifetime, itemOpacity, itemLang)
	return widget.NewCard(app.GetMsg(config.TKeyLblProfile), "", form)
}

func (app *LifeClockApp) buildImportCard(w fyne.Window, sw *settingsWidgets, onLayoutChange func()) *widget.Card {
	browseBtn := widget.NewButton(app.GetMsg(config.TKeyBtnBrowse), func() {
		d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
			if err == nil && r != nil {
				sw.pathEntry.SetText(r.URI().Path())
				_ = r.Close()
			}
		}, w)
		d.SetFilter(storage.NewExtensionFileFilter([]string{config.ExtVCF, config.ExtVCard}))
		d.Show()
	})

	itemURL := widget.NewFormItem(app.GetMsg(config.TKeyLblURL), sw.urlEntry)
	itemURL.HintText = app.GetMsg(config.TKeyHelpURL)
	webForm := widget.NewForm(
		itemURL,
		widget.NewFormItem(app.GetMsg(config.TKeyLblUser), sw.userEntry),
		widget.NewFormItem(app.GetMsg(config.TKeyLblPass), sw.passEntry),
	)
	localForm := container.NewBorder(nil, nil, nil, browseBtn, sw.pathEntry)

	setVisible := func(selected string) {
		if selected == app.GetMsg(config.TKeyModeLocal) {
			webForm.Hide()
			localForm.Show()
		} else {
			webForm.Show()
			localForm.Hide()
		}
	}
	sw.modeSelect.OnChanged = func(selected string) {
		setVisible(selected)
		if onLayoutChange != nil {
			onLayoutChange()
		}
	}

	if app.Preferences.String(config.PrefImportMode) == config.ImportModeLocal {
		sw.modeSelect.SetSelected(app.GetMsg(config.TKeyModeLocal))
	} else {
		sw.modeSelect.SetSelected(app.GetMsg(config.TKeyModeCardDAV))
	}
	setVisible(sw.modeSelect.Selected)

	sw.importButton = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnImport), theme.DownloadIcon(), func() {
		app.importBirthday(sw, w)
	})

	return widget.NewCard(app.GetMsg(config.TKeyLblImport), "",
		container.NewVBox(sw.modeSelect, webForm, localForm, sw.importButton))
}

func (app *LifeClockApp) buildFeedCard(sw *settingsWidgets, onLayoutChange func()) *widget.Card {
	itemPort := widget.NewFormItem(app.GetMsg(config.TKeyLblPort), sw.portEntry)
	itemPort.HintText = app.GetMsg(config.TKeyHelpPort)
	portForm := widget.NewForm(itemPort)

	sw.feedCheck.OnChanged = func(enabled bool) {
		if enabled {
			portForm.Show()
		} else {
			portForm.Hide()
		}
		if onLayoutChange != nil {
			onLayoutChange()
		}
	}
	if !sw.feedCheck.Checked {
		portForm.Hide()
	}

	return widget.NewCard(app.GetMsg(config.TKeyLblFeed), "", container.NewVBox(sw.feedCheck, portForm))
}

// importConfig maps the import card onto an engine.ImportConfig.
// An empty password field falls back to the keyring.
func (app *LifeClockApp) importConfig(sw *settingsWidgets) engine.ImportConfig {
	cfg := engine.ImportConfig{
		Mode:      config.ImportModeWeb,
		LocalPath: strings.TrimSpace(sw.pathEntry.Text),
		WebURL:    strings.TrimSpace(sw.urlEntry.Text),
		WebUser:   sw.userEntry.Text,
		WebPass:   sw.passEntry.Text,
	}
	if sw.modeSelect.Selected == app.GetMsg(config.TKeyModeLocal) {
		cfg.Mode = config.ImportModeLocal
	}

	if cfg.WebPass == "" && cfg.WebUser != "" {
		if p, err := keyring.Get(config.KeyringService, cfg.WebUser); err == nil {
			cfg.WebPass = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyUser, cfg.WebUser,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUISet)
		}
	}
	return cfg
}

// runImport reads the contact card and returns the birthday as YYYY-MM-DD.
func (app *LifeClockApp) runImport(cfg engine.ImportConfig) (string, error) {
	found, err := app.Importer.Import(app.Ctx, cfg)
	if err != nil {
		slog.Error(config.MsgImportFailed,
			config.LogKeyComponent, config.CompUISet,
			config.LogKeyMode, cfg.Mode,
			config.LogKeyError, err)
		return "", err
	}
	return engine.FormatBirthday(found.BirthDate), nil
}

// importBirthday runs the import off the UI thread and fills the birthday field.
// Nothing is persisted until the user saves.
func (app *LifeClockApp) importBirthday(sw *settingsWidgets, w fyne.Window) {
	cfg := app.importConfig(sw)
	sw.importButton.Disable()

	go func() {
		date, err := app.runImport(cfg)
		fyne.Do(func() {
			sw.importButton.Enable()
			if err != nil {
				dialog.ShowError(errors.New(app.GetMsg(config.TKeyNotifImpErr)), w)
				return
			}
			sw.birthdayEntry.SetText(date)
			app.App.SendNotification(fyne.NewNotification(config.AppName,
				app.Localize(config.TKeyNotifImport, map[string]any{"Date": date})))
		})
	}()
}

// saveSettings validates the form and writes it to the preferences.
// The refresh worker picks the change up through the preference listener.
func (app *LifeClockApp) saveSettings(sw *settingsWidgets) error {
	if err := sw.birthdayEntry.Validate(); err != nil {
		return err
	}
	if err := sw.lifetimeEntry.Validate(); err != nil {
		return err
	}
	if sw.feedCheck.Checked {
		if err := sw.portEntry.Validate(); err != nil {
			return err
		}
	}

	lifetime, _ := sw.lifetimeEntry.IntValue()
	s := config.Settings{
		Birthday: strings.TrimSpace(sw.birthdayEntry.Text),
		Lifetime: lifetime,
		Opacity:  int(sw.opacitySlider.Value),
		Language: sw.langSelect.Selected,
	}.WithDefaults()
	if err := s.Validate(); err != nil {
		return err
	}
	if s.Birthday != "" {
		// Store the canonical form, e.g. 19900615 becomes 1990-06-15.
		if t, err := engine.ParseBirthday(s.Birthday); err == nil {
			s.Birthday = engine.FormatBirthday(t)
		}
	}

	imp := app.importConfig(sw)
	app.Preferences.SetString(config.PrefBirthday, s.Birthday)
	app.Preferences.SetInt(config.PrefLifetime, s.Lifetime)
	app.Preferences.SetInt(config.PrefOpacity, s.Opacity)
	app.Preferences.SetString(config.PrefLanguage, s.Language)
	app.Preferences.SetString(config.PrefImportMode, imp.Mode)
	app.Preferences.SetString(config.PrefImportPath, imp.LocalPath)
	app.Preferences.SetString(config.PrefImportURL, imp.WebURL)
	app.Preferences.SetString(config.PrefImportUser, imp.WebUser)
	app.Preferences.SetBool(config.PrefFeedEnabled, sw.feedCheck.Checked)
	if sw.portEntry.Text != "" {
		app.Preferences.SetString(config.PrefServerPort, sw.portEntry.Text)
	}

	if imp.WebUser != "" && sw.passEntry.Text != "" {
		if err := keyring.Set(config.KeyringService, imp.WebUser, sw.passEntry.Text); err != nil {
			slog.Error("Failed to save credentials to keyring", config.LogKeyError, err, config.LogKeyComponent, config.CompUISet)
		}
	}

	slog.Info(config.MsgSettingsSaved,
		config.LogKeyComponent, config.CompUISet,
		config.LogKeyDOB, s.Birthday,
		config.LogKeyLifetime, s.Lifetime,
		config.LogKeyOpacity, s.Opacity,
		config.LogKeyLang, s.Language,
	)

	app.UpdateLocalizer()
	app.RefreshTrayMenu()
	return nil
}
