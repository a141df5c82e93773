package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jask/coinfeed/internal/api"
	"github.com/jask/coinfeed/internal/auth"
	"github.com/jask/coinfeed/internal/dashboard"
	"github.com/jask/coinfeed/internal/onboarding"
	"github.com/jask/coinfeed/internal/prefs"
	"github.com/jask/coinfeed/internal/session"
	"github.com/jask/coinfeed/internal/storage"
)

type fakeAPI struct {
	mu          sync.Mutex
	authRes     api.AuthResult
	authErr     error
	saved       []prefs.Preferences
	saveErr     error
	dash        api.DashboardData
	dashErr     error
	feedback    []api.Feedback
	feedbackErr error
}

func (f *fakeAPI) Login(context.Context, string, string) (api.AuthResult, error) {
	return f.authRes, f.authErr
}

func (f *fakeAPI) Signup(context.Context, string, string, string) (api.AuthResult, error) {
	return f.authRes, f.authErr
}

func (f *fakeAPI) SavePreferences(_ context.Context, _, _ string, p prefs.Preferences) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, p)
	return nil
}

func (f *fakeAPI) Dashboard(context.Context, string) (api.DashboardData, error) {
	return f.dash, f.dashErr
}

func (f *fakeAPI) SendFeedback(_ context.Context, _ string, fb api.Feedback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.feedbackErr != nil {
		return f.feedbackErr
	}
	f.feedback = append(f.feedback, fb)
	return nil
}

func newTestApp(t *testing.T, initial map[string]string, fake *fakeAPI) (*App, *storage.Memory) {
	t.Helper()
	ctx := context.Background()
	store := storage.NewMemory(initial)
	log := zap.NewNop()
	services := Services{
		Auth:       auth.NewService(fake, store, log),
		Onboarding: onboarding.NewService(fake, store, log),
		Dashboard:  dashboard.NewLoader(fake, store, log),
	}
	fixed := time.Date(2026, 10, 18, 9, 5, 0, 0, time.UTC)
	app := New(ctx, session.NewRouter(store, log), services, log,
		WithClock(time.Hour), WithNow(func() time.Time { return fixed }))
	drain(t, app, app.Init())
	return app, store
}

// appMessage filters out widget and clock ticks so drain terminates.
func appMessage(msg tea.Msg) bool {
	switch msg.(type) {
	case scopedMsg, authDoneMsg, prefsSavedMsg, logoutMsg, navigateMsg, dashboardMsg, statusMsg, errMsg, feedbackDoneMsg:
		return true
	}
	return false
}

func runCmd(cmd tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(200 * time.Millisecond):
		return nil, false
	}
}

// drain runs cmd and everything it leads to, feeding app messages back into the model.
func drain(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	pending := []tea.Cmd{cmd}
	for steps := 0; len(pending) > 0; steps++ {
		require.Less(t, steps, 100, "command chain did not settle")
		next := pending[0]
		pending = pending[1:]
		if next == nil {
			continue
		}
		msg, ok := runCmd(next)
		if !ok {
			continue
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			pending = append(pending, batch...)
			continue
		}
		if !appMessage(msg) {
			continue
		}
		_, c := a.Update(msg)
		pending = append(pending, c)
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, a *App, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, cmd := a.Update(keyMsg(k))
		drain(t, a, cmd)
	}
}

func dashboardFeed() api.DashboardData {
	return api.DashboardData{
		User:    &api.User{ID: "u1", Name: "Ana"},
		Prices:  map[string]api.Price{"bitcoin": {USD: 65000}},
		News:    []api.NewsItem{{Title: "BTC climbs"}},
		Insight: &api.Insight{Text: "Stay calm", Sentiment: "neutral"},
	}
}

func TestStartsOnAuthWithoutToken(t *testing.T) {
	a, _ := newTestApp(t, nil, &fakeAPI{})
	require.Equal(t, session.Auth, a.Screen())
	require.Contains(t, a.View(), "Log in")

	press(t, a, "ctrl+t")
	require.Contains(t, a.View(), "Create account")
}

func TestLoginWithPreferencesOpensDashboard(t *testing.T) {
	btc := prefs.Preferences{CryptoAssets: []string{"BTC"}, InvestorType: "high", ContentTypes: []string{}}
	fake := &fakeAPI{
		authRes: api.AuthResult{Token: "tok", User: api.User{ID: "u1", Name: "Ana", Preferences: &btc}},
		dash:    dashboardFeed(),
	}
	a, store := newTestApp(t, nil, fake)

	press(t, a, "ana@example.com", "tab", "pw", "enter")
	require.Equal(t, session.Dashboard, a.Screen())

	snap := store.Snapshot()
	require.Equal(t, "tok", snap[storage.KeyToken])
	require.Equal(t, "dashboard", snap[storage.KeyLastScreen])

	view := a.View()
	require.Contains(t, view, "Welcome back, Ana.")
	require.Contains(t, view, "$65000.00")
	require.Contains(t, view, "Sun, Oct 18 2026 • 09:05")
}

func TestLoginFailureStaysOnAuth(t *testing.T) {
	fake := &fakeAPI{authErr: &api.Error{Status: 401, Message: "Invalid credentials"}}
	a, store := newTestApp(t, nil, fake)

	press(t, a, "ana@example.com", "tab", "pw", "enter")
	require.Equal(t, session.Auth, a.Screen())
	require.Contains(t, a.View(), "Invalid credentials")
	require.NotContains(t, store.Snapshot(), storage.KeyToken)
}

func TestEmptyCredentialsRejectedLocally(t *testing.T) {
	a, _ := newTestApp(t, nil, &fakeAPI{})
	press(t, a, "enter")
	require.Equal(t, session.Auth, a.Screen())
	require.Contains(t, a.View(), auth.ErrMissingCredentials.Error())
}

func TestSignupThenOnboardingThenDashboard(t *testing.T) {
	fake := &fakeAPI{
		authRes: api.AuthResult{Token: "tok", User: api.User{ID: "u1", Name: "Ana"}},
		dash:    dashboardFeed(),
	}
	a, store := newTestApp(t, nil, fake)

	press(t, a, "ctrl+t", "Ana", "tab", "ana@example.com", "tab", "pw", "enter")
	require.Equal(t, session.Onboarding, a.Screen())
	require.Contains(t, a.View(), "Tell us what you care about")

	// BTC, then the "medium" risk row, then save
	press(t, a, "space", "down", "down", "down", "down", "down", "space", "enter")
	require.Equal(t, session.Dashboard, a.Screen())

	require.Len(t, fake.saved, 1)
	require.Equal(t, []string{"BTC"}, fake.saved[0].CryptoAssets)
	require.Equal(t, prefs.InvestorMedium, fake.saved[0].InvestorType)

	snap := store.Snapshot()
	require.Equal(t, "true", snap[storage.KeyPrefsMarker])
	require.Equal(t, "dashboard", snap[storage.KeyLastScreen])
}

func TestOnboardingSaveFailureStaysPut(t *testing.T) {
	fake := &fakeAPI{saveErr: &api.Error{Status: 500, Message: "db down"}}
	a, store := newTestApp(t, map[string]string{
		storage.KeyToken: "tok",
		storage.KeyUser:  `{"id":"u1","name":"Ana"}`,
	}, fake)
	require.Equal(t, session.Onboarding, a.Screen())

	press(t, a, "space", "enter")
	require.Equal(t, session.Onboarding, a.Screen())
	require.Contains(t, a.View(), "db down")
	require.NotContains(t, store.Snapshot(), storage.KeyPrefsMarker)
}

func TestDashboardUnauthorizedLogsOut(t *testing.T) {
	fake := &fakeAPI{dashErr: &api.Error{Status: 401, Message: "token expired"}}
	a, store := newTestApp(t, map[string]string{
		storage.KeyToken:       "tok",
		storage.KeyPrefsMarker: "true",
	}, fake)

	require.Equal(t, session.Auth, a.Screen())
	snap := store.Snapshot()
	require.NotContains(t, snap, storage.KeyToken)
	require.Equal(t, "true", snap[storage.KeyPrefsMarker])
	require.Contains(t, a.View(), "session expired")
}

func TestDashboardLoadErrorOffersRetry(t *testing.T) {
	fake := &fakeAPI{dashErr: &api.Error{Status: 502, Message: "request failed"}}
	a, _ := newTestApp(t, map[string]string{
		storage.KeyToken:       "tok",
		storage.KeyPrefsMarker: "true",
	}, fake)
	require.Equal(t, session.Dashboard, a.Screen())
	require.Contains(t, a.View(), "press r to retry")

	fake.dashErr = nil
	fake.dash = dashboardFeed()
	press(t, a, "r")
	require.Contains(t, a.View(), "Welcome back, Ana.")
}

func TestVotesAreOptimistic(t *testing.T) {
	fake := &fakeAPI{dash: dashboardFeed()}
	a, _ := newTestApp(t, map[string]string{
		storage.KeyToken:       "tok",
		storage.KeyPrefsMarker: "true",
	}, fake)
	d, ok := a.active.(*dashboardScreen)
	require.True(t, ok)

	press(t, a, "+", "-")
	require.Equal(t, dashboard.Up, d.votes.State(dashboard.SectionPrices, "prices-1"))
	require.Equal(t, []api.Feedback{{Section: "prices", ItemID: "prices-1", Vote: api.VoteUp, UserID: "u1"}}, fake.feedback)

	fake.feedbackErr = errors.New("offline")
	press(t, a, "tab", "-")
	require.Equal(t, dashboard.NoVote, d.votes.State(dashboard.SectionInsight, "insight-1"))
	require.Contains(t, a.View(), "offline")
}

func TestPreferencesAffordanceAndLogout(t *testing.T) {
	cached := `{"cryptoAssets":["ETH"],"investorType":"low","contentTypes":["news"]}`
	a, store := newTestApp(t, map[string]string{
		storage.KeyToken:           "tok",
		storage.KeyPrefsMarker:     "true",
		storage.KeyUserPreferences: cached,
	}, &fakeAPI{dash: dashboardFeed()})
	require.Equal(t, session.Dashboard, a.Screen())

	press(t, a, "p")
	require.Equal(t, session.Onboarding, a.Screen())
	require.Equal(t, "onboarding", store.Snapshot()[storage.KeyLastScreen])

	o, ok := a.active.(*onboardingScreen)
	require.True(t, ok)
	require.Equal(t, []string{"ETH"}, o.draft.CryptoAssets)

	press(t, a, "l")
	require.Equal(t, session.Auth, a.Screen())
	snap := store.Snapshot()
	require.NotContains(t, snap, storage.KeyToken)
	require.NotContains(t, snap, storage.KeyLastScreen)
	require.Equal(t, "true", snap[storage.KeyPrefsMarker])
}

func TestStaleClockTicksAreIgnored(t *testing.T) {
	a, _ := newTestApp(t, map[string]string{
		storage.KeyToken:       "tok",
		storage.KeyPrefsMarker: "true",
	}, &fakeAPI{dash: dashboardFeed()})
	d := a.active.(*dashboardScreen)
	before := d.now

	later := before.Add(time.Hour)
	a.Update(clockMsg{At: later, Seq: d.seq - 1})
	require.Equal(t, before, d.now)

	a.Update(clockMsg{At: later, Seq: d.seq})
	require.Equal(t, later, d.now)
	require.Contains(t, a.View(), dashboard.FormatClock(later))
}

func TestCtrlCQuits(t *testing.T) {
	a, _ := newTestApp(t, nil, &fakeAPI{})
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	require.Equal(t, tea.Quit(), cmd())
}

func TestResultFromReplacedScreenIsDropped(t *testing.T) {
	a, _ := newTestApp(t, map[string]string{
		storage.KeyToken:       "tok",
		storage.KeyPrefsMarker: "true",
	}, &fakeAPI{dash: dashboardFeed()})
	d := a.active.(*dashboardScreen)

	press(t, a, "p")
	require.Equal(t, session.Onboarding, a.Screen())
	o := a.active.(*onboardingScreen)
	o.pending = true

	late := scopedMsg{Seq: d.seq, Msg: errMsg{&api.Error{Status: 502, Message: "dashboard unavailable"}}}
	a.Update(late)
	require.True(t, o.pending)
	require.Empty(t, o.err)
	require.NotContains(t, a.View(), "dashboard unavailable")

	current := scopedMsg{Seq: a.seq, Msg: errMsg{&api.Error{Status: 500, Message: "db down"}}}
	a.Update(current)
	require.False(t, o.pending)
	require.Contains(t, a.View(), "db down")
}
