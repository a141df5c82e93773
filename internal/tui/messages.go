package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/coinfeed/internal/api"
	"github.com/jask/coinfeed/internal/auth"
	"github.com/jask/coinfeed/internal/dashboard"
	"github.com/jask/coinfeed/internal/session"
)

type (
	authDoneMsg     struct{ Result auth.Result }
	prefsSavedMsg   struct{}
	logoutMsg       struct{}
	navigateMsg     struct{ Screen session.Screen }
	dashboardMsg    struct{ View dashboard.View }
	clockMsg        struct {
		At  time.Time
		Seq int
	}
	statusMsg       string
	feedbackDoneMsg struct {
		Feedback api.Feedback
		Err      error
	}
)

type errMsg struct{ error }

// scopedMsg carries an async result back to the screen visit that asked for it.
type scopedMsg struct {
	Seq int
	Msg tea.Msg
}
