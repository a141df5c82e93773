package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jask/coinfeed/internal/api"
	"github.com/jask/coinfeed/internal/auth"
	"github.com/jask/coinfeed/internal/dashboard"
	"github.com/jask/coinfeed/internal/onboarding"
	"github.com/jask/coinfeed/internal/session"
)

// Services are the collaborators the screens call into.
type Services struct {
	Auth       *auth.Service
	Onboarding *onboarding.Service
	Dashboard  *dashboard.Loader
}

// screen is one of the three views. Update may return tea.Cmds that produce the
// transition messages (authDoneMsg, prefsSavedMsg, logoutMsg, navigateMsg)
// handled by App.
type screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (screen, tea.Cmd)
	View(width int) string
}

// App ties the router to the screens.
type App struct {
	ctx      context.Context
	router   *session.Router
	services Services
	log      *zap.Logger
	keys     *keyRegistry
	clock    time.Duration
	now      func() time.Time

	active    screen
	seq       int
	width     int
	status    string
	statusErr bool
}

// Option configures an App.
type Option func(*App)

// WithClock sets the dashboard clock refresh interval.
func WithClock(every time.Duration) Option {
	return func(a *App) {
		if every > 0 {
			a.clock = every
		}
	}
}

// WithNow replaces time.Now, for tests.
func WithNow(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// New builds the program model. The router must not be initialized yet; Init does that.
func New(ctx context.Context, router *session.Router, services Services, log *zap.Logger, opts ...Option) *App {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{
		ctx:      ctx,
		router:   router,
		services: services,
		log:      log.Named("tui"),
		keys:     newKeyRegistry(),
		clock:    30 * time.Second,
		now:      time.Now,
		width:    80,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Screen reports the router's current screen.
func (a *App) Screen() session.Screen { return a.router.Current() }

func (a *App) Init() tea.Cmd {
	return a.enter(a.router.Initialize(a.ctx))
}

// enter swaps in a fresh model for s.
func (a *App) enter(s session.Screen) tea.Cmd {
	a.seq++
	switch s {
	case session.Onboarding:
		a.active = newOnboardingScreen(a)
	case session.Dashboard:
		a.active = newDashboardScreen(a)
	default:
		a.active = newAuthScreen(a)
	}
	return a.active.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if sm, ok := msg.(scopedMsg); ok {
		if sm.Seq != a.seq {
			a.log.Debug("drop result from replaced screen", zap.Int("seq", sm.Seq), zap.Int("current", a.seq))
			return a, nil
		}
		msg = sm.Msg
	}

	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = m.Width
		return a, nil
	case tea.KeyMsg:
		if a.keys.lookup(m.String(), scopeGlobal) == actionQuit {
			return a, tea.Quit
		}
	case authDoneMsg:
		a.setStatus("signed in as " + m.Result.Session.UserName)
		return a, a.enter(a.router.CompleteAuthentication(a.ctx, m.Result.Session, m.Result.HasPrefs))
	case prefsSavedMsg:
		a.setStatus("preferences saved")
		return a, a.enter(a.router.CompleteOnboarding(a.ctx))
	case logoutMsg:
		a.setStatus("logged out")
		return a, a.enter(a.router.Logout(a.ctx))
	case navigateMsg:
		if m.Screen == a.router.Current() {
			return a, nil
		}
		return a, a.enter(a.router.NavigateTo(a.ctx, m.Screen))
	case statusMsg:
		a.setStatus(string(m))
		return a, nil
	case errMsg:
		a.log.Warn("screen error", zap.Stringer("screen", a.router.Current()), zap.Error(m.error))
		a.setError(m.error)
		if api.IsUnauthorized(m.error) && a.router.Current() != session.Auth {
			a.setStatus("session expired, please log in again")
			return a, a.enter(a.router.Logout(a.ctx))
		}
	}

	if a.active == nil {
		return a, nil
	}
	next, cmd := a.active.Update(msg)
	a.active = next
	return a, cmd
}

func (a *App) View() string {
	if a.active == nil {
		return ""
	}
	return a.active.View(a.width) + "\n\n" + a.renderStatus()
}

func (a *App) setStatus(text string) {
	a.status = text
	a.statusErr = false
}

func (a *App) setError(err error) {
	if err == nil {
		a.setStatus("")
		return
	}
	a.status = humanize(err)
	a.statusErr = true
}

func (a *App) renderStatus() string {
	msg := strings.TrimSpace(a.status)
	if msg == "" {
		msg = "Ready"
	}
	if a.statusErr {
		return statusErrBarStyle.Render(" " + msg + " ")
	}
	return statusBarStyle.Render(" " + msg + " ")
}

// token is read fresh for every call so a logout elsewhere is honoured.
func (a *App) token() string {
	return a.router.Session(a.ctx).Token
}

// humanize prefers the server's message over the wrapped chain.
func humanize(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// scoped tags cmd's result with the current screen visit. Results arriving
// after the screen was replaced are dropped in Update.
func (a *App) scoped(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	seq := a.seq
	return func() tea.Msg {
		return scopedMsg{Seq: seq, Msg: cmd()}
	}
}

func logoutCmd() tea.Msg { return logoutMsg{} }

func navigateCmd(s session.Screen) tea.Cmd {
	return func() tea.Msg { return navigateMsg{Screen: s} }
}
