package ui

import (
	"errors"
	"image/color"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-lifeclock/internal/config"
	"github.com/tartampluch/go-lifeclock/internal/engine"
)

var (
	overlayBackground = color.NRGBA{R: 0x1e, G: 0x1e, B: 0x2e, A: 0xff}
	overlayForeground = color.NRGBA{R: 0xf5, G: 0xf5, B: 0xf5, A: 0xff}
)

// overlayState is the text shown for one tick.
// Message is set for the prompt and error states, in which case Lines is empty.
type overlayState struct {
	Message string
	Lines   []string
}

// renderOverlay renders the profile at now. Compute is only called once the
// birthday parses.
func (app *LifeClockApp) renderOverlay(now time.Time) overlayState {
	rec, err := app.birthRecord()
	if errors.Is(err, engine.ErrBirthdayMissing) {
		return overlayState{Message: app.GetMsg(config.TKeyPromptBirthday)}
	}
	if err != nil {
		slog.Debug(config.MsgBadBirthday, config.LogKeyComponent, config.CompUI, config.LogKeyError, err)
		return overlayState{Message: app.GetMsg(config.TKeyErrBirthday)}
	}

	snap := engine.Compute(rec, now)
	value := func(key string, v int64) string {
		return app.Localize(key, map[string]any{"Value": app.formatNumber(v)})
	}

	next := snap.UntilNextBirthday
	left := snap.Remaining
	return overlayState{Lines: []string{
		value(config.TKeyLineAge, int64(snap.AgeYears)),
		value(config.TKeyLineWeeks, snap.ElapsedWeeks),
		value(config.TKeyLineMonths, snap.ElapsedMonths),
		value(config.TKeyLineDays, snap.ElapsedDays),
		value(config.TKeyLineHours, snap.ElapsedHours),
		value(config.TKeyLineMinutes, snap.ElapsedMinutes),
		value(config.TKeyLineSeconds, snap.ElapsedSeconds),
		app.Localize(config.TKeyCountdown, map[string]any{
			"Days": next.Days, "Hours": next.Hours, "Minutes": next.Minutes, "Seconds": next.Seconds,
		}),
		app.Localize(config.TKeyRemaining, map[string]any{
			"Years": left.Years, "Days": left.Days, "Hours": left.Hours,
		}),
		value(config.TKeyRemainingDays, snap.RemainingDaysTotal),
	}}
}

// overlayView owns the overlay's canvas objects.
type overlayView struct {
	background *canvas.Rectangle
	title      *canvas.Text
	message    *widget.Label
	linesBox   *fyne.Container
	lines      []*canvas.Text
	opacity    int
	content    fyne.CanvasObject
}

func newOverlayView(title string) *overlayView {
	v := &overlayView{
		background: canvas.NewRectangle(overlayBackground),
		title:      canvas.NewText(title, overlayForeground),
		message:    widget.NewLabel(""),
		linesBox:   container.NewVBox(),
	}
	v.background.CornerRadius = config.OverlayCornerRadius
	v.title.TextSize = config.TitleTextSize
	v.title.TextStyle = fyne.TextStyle{Bold: true}
	v.title.Alignment = fyne.TextAlignCenter
	v.message.Wrapping = fyne.TextWrapWord
	v.message.Alignment = fyne.TextAlignCenter
	v.message.Hide()

	v.content = container.NewStack(
		v.background,
		container.NewPadded(container.NewVBox(v.title, widget.NewSeparator(), v.message, v.linesBox)),
	)
	return v
}

// apply shows s. Must run on the Fyne thread.
func (v *overlayView) apply(s overlayState) {
	if s.Message != "" {
		v.message.SetText(s.Message)
		v.message.Show()
		v.linesBox.Hide()
		return
	}
	v.message.Hide()

	for len(v.lines) < len(s.Lines) {
		t := canvas.NewText("", overlayForeground)
		t.TextSize = config.BodyTextSize
		v.lines = append(v.lines, t)
		v.linesBox.Add(t)
	}
	for i, t := range v.lines {
		text := ""
		if i < len(s.Lines) {
			text = s.Lines[i]
		}
		if t.Text != text {
			t.Text = text
			t.Refresh()
		}
	}
	v.linesBox.Show()
}

// setOpacity maps a percentage onto the background alpha.
func (v *overlayView) setOpacity(percent int) {
	percent = config.ClampOpacity(percent)
	if percent == v.opacity {
		return
	}
	v.opacity = percent

	c := overlayBackground
	c.A = uint8(percent * 0xff / config.OpacityScale)
	v.background.FillColor = c
	v.background.Refresh()
}

// ShowOverlay creates the borderless overlay on first use, then shows it.
func (app *LifeClockApp) ShowOverlay() {
	if app.Overlay != nil {
		app.Overlay.Show()
		app.overlayHidden = false
		return
	}

	title := app.GetMsg(config.TKeyWinTitle)
	var w fyne.Window
	if drv, ok := app.App.Driver().(desktop.Driver); ok {
		w = drv.CreateSplashWindow()
		w.SetTitle(title)
	} else {
		w = app.App.NewWindow(title)
	}

	app.view = newOverlayView(title)
	app.view.setOpacity(app.Preferences.IntWithFallback(config.PrefOpacity, config.DefaultOpacity))
	app.view.apply(app.renderOverlay(app.Clock.Now()))

	w.SetContent(app.view.content)
	w.Resize(fyne.NewSize(config.OverlayWidth, config.OverlayHeight))
	w.SetCloseIntercept(app.hideOverlay)
	app.Overlay = w
	app.overlayHidden = false
	w.Show()
}

// ToggleOverlay hides a visible overlay and shows a hidden one.
func (app *LifeClockApp) ToggleOverlay() {
	if app.Overlay == nil || app.overlayHidden {
		app.ShowOverlay()
		return
	}
	app.hideOverlay()
}

// hideOverlay sends the overlay to the tray instead of closing it.
func (app *LifeClockApp) hideOverlay() {
	if app.Overlay == nil {
		return
	}
	app.Overlay.Hide()
	app.overlayHidden = true

	slog.Info(config.MsgWindowHidden, config.LogKeyComponent, config.CompUI)
	app.App.SendNotification(fyne.NewNotification(config.AppName, app.GetMsg(config.TKeyNotifHidden)))
}

// refreshOverlay renders off the UI thread and hands the result to Fyne.
func (app *LifeClockApp) refreshOverlay() {
	state := app.renderOverlay(app.Clock.Now())
	opacity := app.Preferences.IntWithFallback(config.PrefOpacity, config.DefaultOpacity)
	title := app.GetMsg(config.TKeyWinTitle)

	fyne.Do(func() {
		if app.view == nil {
			return
		}
		if app.view.title.Text != title {
			app.view.title.Text = title
			app.view.title.Refresh()
		}
		app.view.setOpacity(opacity)
		app.view.apply(state)
	})
}
