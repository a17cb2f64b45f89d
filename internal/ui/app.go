package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-lifeclock/internal/config"
	"github.com/tartampluch/go-lifeclock/internal/engine"
	"github.com/tartampluch/go-lifeclock/internal/server"
	"golang.org/x/text/message"
)

// LifeClockApp holds the overlay, the settings window, the tray and the
// background refresh worker.
type LifeClockApp struct {
	App            fyne.App
	Overlay        fyne.Window
	SettingsWindow fyne.Window
	Preferences    fyne.Preferences
	I18nBundle     *i18n.Bundle
	Localizer      *i18n.Localizer
	Ctx            context.Context

	Importer *engine.Importer
	Clock    engine.Clock

	// Server is the running feed server, nil while the feed is disabled.
	// Only the refresh worker starts and stops it.
	Server *server.FeedServer

	Tray             desktop.App
	Menu             *fyne.Menu
	TrayToggleItem   *fyne.MenuItem
	TraySettingsItem *fyne.MenuItem

	SupportedLanguages []string
	configChan         chan struct{}
	feedErrs           chan *server.FeedServer

	i18nMu  sync.RWMutex
	printer *message.Printer

	view          *overlayView
	overlayHidden bool
	feedCancel    context.CancelFunc
	feedPort      string
	feedDay       string
}

// NewLifeClockApp wires the application around a Fyne app.
func NewLifeClockApp(a fyne.App, ctx context.Context, fetcher engine.VCardFetcher) *LifeClockApp {
	a.SetIcon(theme.HistoryIcon())

	return &LifeClockApp{
		App:                a,
		Preferences:        a.Preferences(),
		Ctx:                ctx,
		Importer:           &engine.Importer{Fetcher: fetcher},
		Clock:              engine.RealClock{},
		SupportedLanguages: config.SupportedLanguages,
		configChan:         make(chan struct{}, config.ChannelBufferSize),
		feedErrs:           make(chan *server.FeedServer, config.ChannelBufferSize),
	}
}

// Run shows the overlay, installs the tray and blocks in the Fyne event loop.
func (app *LifeClockApp) Run() {
	app.SetupI18n()
	app.watchPreferences()
	app.ShowOverlay()

	if desk, ok := app.App.(desktop.App); ok {
		app.Tray = desk
		app.Tray.SetSystemTrayIcon(app.App.Icon())
		app.setupTrayMenu()
	} else {
		slog.Warn(config.ErrTrayNotSupported, config.LogKeyComponent, config.CompUI)
	}

	go app.backgroundWorker()
	app.App.Run()
}

// watchPreferences wakes the worker whenever a setting changes.
func (app *LifeClockApp) watchPreferences() {
	app.Preferences.AddChangeListener(func() {
		select {
		case app.configChan <- struct{}{}:
		default:
		}
	})
}

func (app *LifeClockApp) setupTrayMenu() {
	app.TrayToggleItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuToggle), app.ToggleOverlay)
	app.TraySettingsItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuSettings), app.ShowSettingsWindow)

	app.Menu = fyne.NewMenu(config.AppName,
		app.TrayToggleItem,
		fyne.NewMenuItemSeparator(),
		app.TraySettingsItem,
	)

	if app.Tray != nil {
		app.Tray.SetSystemTrayMenu(app.Menu)
	}
}

// RefreshTrayMenu re-applies the localized tray labels.
func (app *LifeClockApp) RefreshTrayMenu() {
	if app.Menu == nil {
		return
	}
	app.TrayToggleItem.Label = app.GetMsg(config.TKeyMenuToggle)
	app.TraySettingsItem.Label = app.GetMsg(config.TKeyMenuSettings)
	app.Menu.Refresh()
}

// backgroundWorker refreshes the overlay every tick and keeps the feed in step
// with the settings and the calendar day.
func (app *LifeClockApp) backgroundWorker() {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	app.syncFeed()
	app.refreshOverlay()

	ticker := time.NewTicker(config.RefreshInterval)
	defer ticker.Stop()
	log.Info(config.MsgWorkerStart, config.LogKeyInterval, config.RefreshInterval)

	for {
		select {
		case <-app.Ctx.Done():
			app.stopFeed()
			log.Info(config.MsgWorkerStop)
			return

		case <-app.configChan:
			app.syncFeed()
			app.refreshOverlay()

		case srv := <-app.feedErrs:
			app.dropFeed(srv)

		case <-ticker.C:
			if day := app.Clock.Now().Format(config.DateFormatBirthday); app.Server != nil && day != app.feedDay {
				log.Info(config.MsgDayChanged, config.LogKeyDay, day)
				app.syncFeed()
			}
			app.refreshOverlay()
		}
	}
}

// birthRecord reads the profile from the preferences.
// It returns engine.ErrBirthdayMissing when no birthday is configured.
func (app *LifeClockApp) birthRecord() (engine.BirthRecord, error) {
	s := app.Settings()
	return engine.NewBirthRecord(s.Birthday, config.ClampLifetime(s.Lifetime))
}

// syncFeed starts, restarts or stops the feed server to match the settings,
// then republishes the calendar.
func (app *LifeClockApp) syncFeed() {
	enabled := app.Preferences.Bool(config.PrefFeedEnabled)
	port := app.Preferences.StringWithFallback(config.PrefServerPort, config.DefaultPort)

	if app.Server != nil && (!enabled || port != app.feedPort) {
		app.stopFeed()
	}
	if !enabled {
		slog.Debug(config.MsgFeedDisabled, config.LogKeyComponent, config.CompFeed)
		return
	}
	if app.Server == nil {
		app.startFeed(port)
	}

	now := app.Clock.Now()
	app.feedDay = now.Format(config.DateFormatBirthday)

	rec, err := app.birthRecord()
	if err != nil {
		// The server keeps answering 503 until a valid birthday exists.
		slog.Debug(config.MsgBadBirthday, config.LogKeyComponent, config.CompFeed, config.LogKeyError, err)
		return
	}

	gen := &engine.FeedGenerator{
		Clock:           app.Clock,
		FormatBirthday:  app.birthdaySummary,
		FormatEndOfLife: app.endOfLifeSummary,
	}
	data, err := gen.Generate(app.Ctx, rec)
	if err != nil {
		slog.Error(config.ErrFeedBuild, config.LogKeyComponent, config.CompFeed, config.LogKeyError, err)
		return
	}
	app.Server.Publish(data)
}

func (app *LifeClockApp) startFeed(port string) {
	ctx, cancel := context.WithCancel(app.Ctx)
	srv := server.NewFeedServer(port)
	app.Server, app.feedCancel, app.feedPort = srv, cancel, port

	go func() {
		if err := srv.Start(ctx); err != nil {
			slog.Error(config.ErrServerStartup,
				config.LogKeyComponent, config.CompFeed,
				config.LogKeyPort, port,
				config.LogKeyError, err)
			app.App.SendNotification(fyne.NewNotification(
				config.TitleStartupError,
				fmt.Sprintf(config.MsgPortBusy, port)))

			select {
			case app.feedErrs <- srv:
			case <-ctx.Done():
			}
		}
	}()
}

// dropFeed forgets srv after it failed to start, so the next sync starts a
// fresh server. A server that was already replaced is ignored.
func (app *LifeClockApp) dropFeed(srv *server.FeedServer) {
	if srv == nil || app.Server != srv {
		return
	}
	slog.Warn(config.MsgFeedDropped, config.LogKeyComponent, config.CompFeed, config.LogKeyPort, app.feedPort)
	app.stopFeed()
}

func (app *LifeClockApp) stopFeed() {
	if app.feedCancel != nil {
		app.feedCancel()
	}
	app.Server, app.feedCancel, app.feedPort = nil, nil, ""
}

func (app *LifeClockApp) birthdaySummary(age int) string {
	if age == 0 {
		return app.GetMsg(config.TKeyEvtBirth)
	}
	return app.Localize(config.TKeyEvtBirthday, map[string]any{"Age": age})
}

func (app *LifeClockApp) endOfLifeSummary(lifetime int) string {
	return app.Localize(config.TKeyEvtEndOfLife, map[string]any{"Lifetime": lifetime})
}
