package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/coinfeed/internal/api"
	"github.com/jask/coinfeed/internal/dashboard"
	"github.com/jask/coinfeed/internal/prefs"
	"github.com/jask/coinfeed/internal/session"
)

type dashboardScreen struct {
	app     *App
	spin    spinner.Model
	loading bool
	view    dashboard.View
	loaded  bool
	err     string
	votes   *dashboard.Votes
	card    int
	now     time.Time
	seq     int
}

func newDashboardScreen(app *App) *dashboardScreen {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = cursorStyle
	return &dashboardScreen{
		app:     app,
		spin:    sp,
		loading: true,
		votes:   dashboard.NewVotes(),
		now:     app.now(),
		seq:     app.seq,
	}
}

func (s *dashboardScreen) Init() tea.Cmd {
	return tea.Batch(s.spin.Tick, s.load(), s.tick())
}

func (s *dashboardScreen) load() tea.Cmd {
	ctx, loader, token := s.app.ctx, s.app.services.Dashboard, s.app.token()
	return s.app.scoped(func() tea.Msg {
		v, err := loader.Load(ctx, token)
		if err != nil {
			return errMsg{err}
		}
		return dashboardMsg{View: v}
	})
}

func (s *dashboardScreen) tick() tea.Cmd {
	seq := s.seq
	return tea.Tick(s.app.clock, func(t time.Time) tea.Msg { return clockMsg{At: t, Seq: seq} })
}

func (s *dashboardScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !s.loading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd
	case clockMsg:
		// ticks scheduled by an earlier dashboard visit die here
		if msg.Seq != s.seq {
			return s, nil
		}
		s.now = msg.At
		return s, s.tick()
	case dashboardMsg:
		s.loading, s.loaded, s.err = false, true, ""
		s.view = msg.View
		return s, nil
	case errMsg:
		s.loading = false
		s.err = humanize(msg.error)
		return s, nil
	case feedbackDoneMsg:
		if msg.Err != nil {
			s.votes.Revert(msg.Feedback.Section, msg.Feedback.ItemID)
			return s, func() tea.Msg { return errMsg{msg.Err} }
		}
		return s, func() tea.Msg { return statusMsg("thanks for the feedback") }
	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *dashboardScreen) handleKey(msg tea.KeyMsg) (screen, tea.Cmd) {
	switch s.app.keys.lookup(msg.String(), scopeDashboard) {
	case actionNextCard:
		s.card = (s.card + 1) % len(dashboard.Sections)
	case actionPrevCard:
		s.card = (s.card - 1 + len(dashboard.Sections)) % len(dashboard.Sections)
	case actionVoteUp:
		return s, s.vote(true)
	case actionVoteDown:
		return s, s.vote(false)
	case actionReload:
		if s.loading {
			return s, nil
		}
		s.loading, s.err = true, ""
		return s, tea.Batch(s.spin.Tick, s.load())
	case actionPrefs:
		return s, navigateCmd(session.Onboarding)
	case actionLogout:
		return s, logoutCmd
	case actionQuit:
		return s, tea.Quit
	}
	return s, nil
}

// vote is optimistic; a failed send reverts it through feedbackDoneMsg.
func (s *dashboardScreen) vote(up bool) tea.Cmd {
	if !s.loaded {
		return nil
	}
	section := dashboard.Sections[s.card]
	fb, ok := s.votes.Cast(section, dashboard.ItemID(section), up, s.view.UserID)
	if !ok {
		return nil
	}
	ctx, loader, token := s.app.ctx, s.app.services.Dashboard, s.app.token()
	return s.app.scoped(func() tea.Msg {
		return feedbackDoneMsg{Feedback: fb, Err: loader.Send(ctx, token, fb)}
	})
}

func (s *dashboardScreen) View(width int) string {
	header := lipgloss.JoinVertical(lipgloss.Left,
		kickerStyle.Render("coinfeed · "+dashboard.FormatClock(s.now)),
		titleStyle.Render(s.view.Greeting()),
		mutedStyle.Render(s.prefsSummary()),
	)

	var body string
	switch {
	case s.loading:
		body = s.spin.View() + " Loading your dashboard..."
	case !s.loaded && s.err != "":
		body = errorStyle.Render(s.err) + "\n" + mutedStyle.Render("press r to retry")
	default:
		body = s.renderCards(width)
	}

	return header + "\n\n" + body + "\n\n" + s.app.keys.footer(scopeDashboard)
}

func (s *dashboardScreen) prefsSummary() string {
	p := s.view.Prefs
	if p == nil {
		return "No preferences yet. Press p to set them."
	}
	assets := "none"
	if len(p.CryptoAssets) > 0 {
		assets = strings.Join(p.CryptoAssets, ", ")
	}
	return fmt.Sprintf("Assets: %s · Profile: %s", assets, prefs.InvestorLabel(p.InvestorType))
}

func (s *dashboardScreen) renderCards(width int) string {
	cardWidth := 36
	if width >= 80 {
		cardWidth = width/2 - 4
	}
	cards := make([]string, len(dashboard.Sections))
	for i, section := range dashboard.Sections {
		style := cardStyle
		if i == s.card {
			style = activeCardStyle
		}
		content := titleStyle.Render(sectionTitle(section)) + "\n" + s.cardBody(section) + "\n" + s.voteLine(section)
		cards[i] = style.Width(cardWidth).Render(content)
	}
	if width < 80 {
		return lipgloss.JoinVertical(lipgloss.Left, cards...)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1]),
		lipgloss.JoinHorizontal(lipgloss.Top, cards[2], cards[3]),
	)
}

func sectionTitle(section string) string {
	switch section {
	case dashboard.SectionPrices:
		return "Coin prices"
	case dashboard.SectionInsight:
		return "AI insight of the day"
	case dashboard.SectionMeme:
		return "Crypto meme"
	default:
		return "Market news"
	}
}

func (s *dashboardScreen) cardBody(section string) string {
	data := s.view.Data
	switch section {
	case dashboard.SectionPrices:
		var assets []string
		if s.view.Prefs != nil {
			assets = s.view.Prefs.CryptoAssets
		}
		if len(assets) == 0 {
			return mutedStyle.Render("Pick some assets in your preferences.")
		}
		var lines []string
		for _, row := range dashboard.PriceRows(assets, data.Prices) {
			lines = append(lines, fmt.Sprintf("%-5s %s", row.Symbol, row.Display()))
		}
		return strings.Join(lines, "\n")
	case dashboard.SectionInsight:
		if data.Insight == nil || data.Insight.Text == "" {
			return mutedStyle.Render("No insight yet.")
		}
		out := data.Insight.Text
		if data.Insight.Sentiment != "" {
			out += "\n" + mutedStyle.Render("sentiment: "+data.Insight.Sentiment)
		}
		return out
	case dashboard.SectionMeme:
		if data.Meme == nil {
			return mutedStyle.Render("No meme today.")
		}
		return data.Meme.Title + "\n" + mutedStyle.Render(data.Meme.URL)
	default:
		if len(data.News) == 0 {
			return mutedStyle.Render("No news right now.")
		}
		var lines []string
		for i, n := range data.News {
			if i == 3 {
				break
			}
			lines = append(lines, "• "+newsLine(n))
		}
		return strings.Join(lines, "\n")
	}
}

func newsLine(n api.NewsItem) string {
	if n.Summary == "" {
		return n.Title
	}
	return n.Title + " " + mutedStyle.Render(n.Summary)
}

func (s *dashboardScreen) voteLine(section string) string {
	switch s.votes.State(section, dashboard.ItemID(section)) {
	case dashboard.Up:
		return successStyle.Render("▲ you liked this")
	case dashboard.Down:
		return errorStyle.Render("▼ you disliked this")
	}
	return mutedStyle.Render("+ like  - dislike")
}
