package tui

import (
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/coinfeed/internal/prefs"
)

type optionKind int

const (
	optAsset optionKind = iota
	optRisk
	optContent
)

type option struct {
	kind  optionKind
	key   string
	label string
}

// onboardingOptions is the flat cursor list: assets, then risk levels, then content types.
func onboardingOptions() []option {
	var out []option
	for _, a := range prefs.Assets {
		out = append(out, option{kind: optAsset, key: a.Symbol, label: a.Symbol})
	}
	for _, t := range prefs.InvestorTypes {
		out = append(out, option{kind: optRisk, key: t, label: prefs.InvestorLabel(t)})
	}
	for _, c := range prefs.ContentTypes {
		out = append(out, option{kind: optContent, key: c.Key, label: c.Label})
	}
	return out
}

type onboardingScreen struct {
	app     *App
	options []option
	cursor  int
	draft   prefs.Preferences
	pending bool
	err     string
}

func newOnboardingScreen(app *App) *onboardingScreen {
	s := &onboardingScreen{app: app, options: onboardingOptions()}
	if p, ok := app.services.Onboarding.Current(app.ctx); ok {
		s.draft = p
	}
	s.draft = s.draft.Normalize()
	return s
}

func (s *onboardingScreen) Init() tea.Cmd { return nil }

func (s *onboardingScreen) selected(o option) bool {
	switch o.kind {
	case optAsset:
		return s.draft.HasAsset(o.key)
	case optRisk:
		return s.draft.InvestorType == o.key
	default:
		return slices.Contains(s.draft.ContentTypes, o.key)
	}
}

func (s *onboardingScreen) toggle(o option) {
	switch o.kind {
	case optAsset:
		s.draft.CryptoAssets = toggleIn(s.draft.CryptoAssets, o.key)
	case optRisk:
		s.draft.InvestorType = o.key
	default:
		s.draft.ContentTypes = toggleIn(s.draft.ContentTypes, o.key)
	}
}

func toggleIn(list []string, key string) []string {
	if i := slices.Index(list, key); i >= 0 {
		return slices.Delete(list, i, i+1)
	}
	return append(list, key)
}

func (s *onboardingScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case errMsg:
		s.pending = false
		s.err = humanize(msg.error)
	case tea.KeyMsg:
		if s.pending {
			return s, nil
		}
		switch s.app.keys.lookup(msg.String(), scopeOnboarding) {
		case actionNavigate:
			if isDownKey(msg.String()) {
				s.cursor = min(s.cursor+1, len(s.options)-1)
			} else {
				s.cursor = max(s.cursor-1, 0)
			}
		case actionToggle:
			s.toggle(s.options[s.cursor])
		case actionSave:
			s.pending = true
			s.err = ""
			return s, s.save()
		case actionLogout:
			return s, logoutCmd
		case actionQuit:
			return s, tea.Quit
		}
	}
	return s, nil
}

func (s *onboardingScreen) save() tea.Cmd {
	ctx, svc, token, draft := s.app.ctx, s.app.services.Onboarding, s.app.token(), s.draft
	return s.app.scoped(func() tea.Msg {
		if err := svc.Save(ctx, token, draft); err != nil {
			return errMsg{err}
		}
		return prefsSavedMsg{}
	})
}

func (s *onboardingScreen) View(width int) string {
	lines := []string{
		kickerStyle.Render("Welcome to coinfeed"),
		titleStyle.Render("Tell us what you care about"),
	}
	headings := map[optionKind]string{
		optAsset:   "Crypto assets",
		optRisk:    "Investor profile",
		optContent: "Content you want",
	}
	var last optionKind = -1
	for i, o := range s.options {
		if o.kind != last {
			lines = append(lines, "", textStyle.Bold(true).Render(headings[o.kind]))
			last = o.kind
		}
		open, shut := "[", "]"
		if o.kind == optRisk {
			open, shut = "(", ")"
		}
		mark := open + " " + shut
		if s.selected(o) {
			mark = successStyle.Render(open + "x" + shut)
		}
		line := mark + " " + o.label
		if i == s.cursor {
			line = cursorStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	lines = append(lines, "")
	switch {
	case s.pending:
		lines = append(lines, mutedStyle.Render("Saving..."))
	case s.err != "":
		lines = append(lines, errorStyle.Render(s.err))
	}
	lines = append(lines, s.app.keys.footer(scopeOnboarding))
	return formStyle.Width(min(max(width-4, 48), 64)).Render(strings.Join(lines, "\n"))
}
