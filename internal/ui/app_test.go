package ui

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lifeclock/internal/config"
	"github.com/tartampluch/go-lifeclock/internal/server"
	"github.com/zalando/go-keyring"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates engine.VCardFetcher using testify/mock.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// MockTray implements the desktop.App tray methods for headless testing.
type MockTray struct {
	Menu *fyne.Menu
}

func (m *MockTray) SetSystemTrayMenu(menu *fyne.Menu)   { m.Menu = menu }
func (m *MockTray) SetSystemTrayIcon(icon fyne.Resource) {}
func (m *MockTray) SetSystemTrayWindow(w fyne.Window)    {}

// -----------------------------------------------------------------------------
// Test Setup Helper
// -----------------------------------------------------------------------------

// setupTestApp builds a headless app with mocked network, keyring and clock.
func setupTestApp(t *testing.T) (*LifeClockApp, *MockFetcher, *MockTray) {
	t.Helper()
	keyring.MockInit()

	a := test.NewApp()
	t.Cleanup(a.Quit)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	fetcher := new(MockFetcher)
	tray := &MockTray{}

	app := NewLifeClockApp(a, ctx, fetcher)
	app.Tray = tray
	app.Clock = MockClock{CurrentTime: time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)}
	app.SetupI18n()
	t.Cleanup(app.stopFeed)

	return app, fetcher, tray
}

// -----------------------------------------------------------------------------
// Localization
// -----------------------------------------------------------------------------

func TestLocalization_Switching(t *testing.T) {
	app, _, _ := setupTestApp(t)

	app.Preferences.SetString(config.PrefLanguage, "en")
	app.UpdateLocalizer()
	assert.Equal(t, "Settings...", app.GetMsg(config.TKeyMenuSettings))

	app.Preferences.SetString(config.PrefLanguage, "fr")
	app.UpdateLocalizer()
	assert.Equal(t, "Paramètres...", app.GetMsg(config.TKeyMenuSettings))

	app.Preferences.SetString(config.PrefLanguage, "zh")
	app.UpdateLocalizer()
	assert.Equal(t, "设置...", app.GetMsg(config.TKeyMenuSettings))
}

func TestLocalization_DetectsEmbeddedLanguages(t *testing.T) {
	app, _, _ := setupTestApp(t)
	assert.ElementsMatch(t, config.SupportedLanguages, app.languages())
}

func TestLocalization_MissingKey(t *testing.T) {
	app, _, _ := setupTestApp(t)
	assert.Equal(t, "no_such_key", app.GetMsg("no_such_key"))

	// Before SetupI18n the key itself is shown.
	bare := &LifeClockApp{}
	assert.Equal(t, config.TKeyWinTitle, bare.GetMsg(config.TKeyWinTitle))
	assert.Equal(t, "1,234", bare.formatNumber(1234))
}

func TestLocalization_FeedSummaries(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.Preferences.SetString(config.PrefLanguage, "en")
	app.UpdateLocalizer()

	assert.Equal(t, "Birth", app.birthdaySummary(0))
	assert.Equal(t, "Birthday (34)", app.birthdaySummary(34))
	assert.Equal(t, "Estimated end of a 80-year life", app.endOfLifeSummary(80))

	app.Preferences.SetString(config.PrefLanguage, "fr")
	app.UpdateLocalizer()
	assert.Equal(t, "Anniversaire (34)", app.birthdaySummary(34))
}

// -----------------------------------------------------------------------------
// Tray & Preferences
// -----------------------------------------------------------------------------

func TestTrayMenu_Labels(t *testing.T) {
	app, _, tray := setupTestApp(t)
	app.Preferences.SetString(config.PrefLanguage, "en")
	app.UpdateLocalizer()
	app.setupTrayMenu()

	require.NotNil(t, tray.Menu)
	assert.Equal(t, "Show / Hide", app.TrayToggleItem.Label)
	assert.Equal(t, "Settings...", app.TraySettingsItem.Label)

	app.Preferences.SetString(config.PrefLanguage, "fr")
	app.UpdateLocalizer()
	app.RefreshTrayMenu()
	assert.Equal(t, "Afficher / Masquer", app.TrayToggleItem.Label)
}

func TestPreferences_WakeWorker(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.watchPreferences()

	app.Preferences.SetInt(config.PrefLifetime, 90)

	select {
	case <-app.configChan:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Changing a preference should notify the background worker")
	}
}

func TestBirthRecord_FromPreferences(t *testing.T) {
	app, _, _ := setupTestApp(t)

	app.Preferences.SetString(config.PrefBirthday, " 1990-06-15 ")
	app.Preferences.SetInt(config.PrefLifetime, 500)

	rec, err := app.birthRecord()
	require.NoError(t, err)
	assert.Equal(t, time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC), rec.BirthDate)
	assert.Equal(t, config.MaxLifetime, rec.LifeExpectancyYears, "Out of range lifetime is clamped")
}

// -----------------------------------------------------------------------------
// Feed lifecycle
// -----------------------------------------------------------------------------

func TestSyncFeed_Disabled(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.Preferences.SetBool(config.PrefFeedEnabled, false)

	app.syncFeed()
	assert.Nil(t, app.Server)
}

func TestSyncFeed_PublishesCalendar(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.Preferences.SetString(config.PrefLanguage, "en")
	app.UpdateLocalizer()
	app.Preferences.SetString(config.PrefServerPort, "0")
	app.Preferences.SetString(config.PrefBirthday, "1990-06-15")
	app.Preferences.SetBool(config.PrefFeedEnabled, true)

	app.syncFeed()
	require.NotNil(t, app.Server)
	assert.True(t, app.Server.Ready())
	assert.Equal(t, "2024-06-14", app.feedDay)

	w := httptest.NewRecorder()
	app.Server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "SUMMARY:Birthday (34)")
	assert.Contains(t, w.Body.String(), "DTSTART;VALUE=DATE:20700615")
}

func TestSyncFeed_WaitsForBirthday(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.Preferences.SetString(config.PrefServerPort, "0")
	app.Preferences.SetBool(config.PrefFeedEnabled, true)

	app.syncFeed()
	require.NotNil(t, app.Server)
	assert.False(t, app.Server.Ready(), "No birthday, nothing to publish")
}

func TestSyncFeed_RestartsAndStops(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.Preferences.SetString(config.PrefServerPort, "0")
	app.Preferences.SetString(config.PrefBirthday, "1990-06-15")
	app.Preferences.SetBool(config.PrefFeedEnabled, true)

	app.syncFeed()
	first := app.Server
	require.NotNil(t, first)

	app.syncFeed()
	assert.Same(t, first, app.Server, "Unchanged settings keep the running server")

	app.Preferences.SetString(config.PrefServerPort, "00")
	app.syncFeed()
	assert.NotSame(t, first, app.Server, "A new port restarts the server")

	app.Preferences.SetBool(config.PrefFeedEnabled, false)
	app.syncFeed()
	assert.Nil(t, app.Server)
	assert.Nil(t, app.feedCancel)
}

func TestSyncFeed_DropsServerWhenPortBusy(t *testing.T) {
	app, _, _ := setupTestApp(t)

	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()
	_, port, err := net.SplitHostPort(busy.Addr().String())
	require.NoError(t, err)

	app.Preferences.SetString(config.PrefServerPort, port)
	app.Preferences.SetString(config.PrefBirthday, "1990-06-15")
	app.Preferences.SetBool(config.PrefFeedEnabled, true)

	app.syncFeed()
	failed := app.Server
	require.NotNil(t, failed)

	select {
	case srv := <-app.feedErrs:
		require.Same(t, failed, srv)
		app.dropFeed(srv)
	case <-time.After(5 * time.Second):
		t.Fatal("Startup failure was not reported")
	}
	assert.Nil(t, app.Server, "A server that never bound must be forgotten")
	assert.Nil(t, app.feedCancel)

	// The next sync starts over once the port is usable.
	app.Preferences.SetString(config.PrefServerPort, "0")
	app.syncFeed()
	require.NotNil(t, app.Server)
	assert.NotSame(t, failed, app.Server)
	assert.True(t, app.Server.Ready())
}

func TestDropFeed_IgnoresReplacedServer(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.Preferences.SetString(config.PrefServerPort, "0")
	app.Preferences.SetString(config.PrefBirthday, "1990-06-15")
	app.Preferences.SetBool(config.PrefFeedEnabled, true)

	app.syncFeed()
	current := app.Server
	require.NotNil(t, current)

	app.dropFeed(server.NewFeedServer("1"))
	app.dropFeed(nil)
	assert.Same(t, current, app.Server)
}
