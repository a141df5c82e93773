package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type action string

type binding struct {
	Action action
	Keys   []string
	Help   string
	// HelpKey labels the binding in the footer; Keys[0] when empty.
	HelpKey string
}

const (
	scopeGlobal     = "global"
	scopeAuth       = "auth"
	scopeOnboarding = "onboarding"
	scopeDashboard  = "dashboard"
)

const (
	actionQuit       action = "quit"
	actionNextField  action = "next_field"
	actionPrevField  action = "prev_field"
	actionSubmit     action = "submit"
	actionToggleMode action = "toggle_mode"
	actionNavigate   action = "navigate"
	actionToggle     action = "toggle"
	actionSave       action = "save"
	actionLogout     action = "logout"
	actionNextCard   action = "next_card"
	actionPrevCard   action = "prev_card"
	actionVoteUp     action = "vote_up"
	actionVoteDown   action = "vote_down"
	actionReload     action = "reload"
	actionPrefs      action = "preferences"
)

// keyRegistry maps key names to actions per screen scope. Lookups fall back to
// the global scope.
type keyRegistry struct {
	byScope map[string][]*binding
	index   map[string]map[string]*binding
}

func newKeyRegistry() *keyRegistry {
	r := &keyRegistry{
		byScope: make(map[string][]*binding),
		index:   make(map[string]map[string]*binding),
	}
	reg := func(scope string, a action, keys []string, help string) {
		r.register(scope, binding{Action: a, Keys: keys, Help: help})
	}

	reg(scopeGlobal, actionQuit, []string{"ctrl+c"}, "quit")

	// Auth fields take printable input, so only control keys are bound.
	reg(scopeAuth, actionSubmit, []string{"enter"}, "submit")
	reg(scopeAuth, actionNextField, []string{"tab", "down"}, "next field")
	reg(scopeAuth, actionPrevField, []string{"shift+tab", "up"}, "prev field")
	reg(scopeAuth, actionToggleMode, []string{"ctrl+t"}, "login/signup")
	reg(scopeAuth, actionQuit, []string{"ctrl+c"}, "quit")

	r.register(scopeOnboarding, binding{Action: actionNavigate, Keys: []string{"j", "k", "up", "down"}, HelpKey: "j/k", Help: "navigate"})
	reg(scopeOnboarding, actionToggle, []string{"space", "x"}, "toggle")
	reg(scopeOnboarding, actionSave, []string{"enter"}, "save")
	reg(scopeOnboarding, actionLogout, []string{"l"}, "logout")
	reg(scopeOnboarding, actionQuit, []string{"q"}, "quit")

	reg(scopeDashboard, actionNextCard, []string{"tab", "right", "j", "down"}, "next card")
	reg(scopeDashboard, actionPrevCard, []string{"shift+tab", "left", "k", "up"}, "prev card")
	reg(scopeDashboard, actionVoteUp, []string{"+", "="}, "like")
	reg(scopeDashboard, actionVoteDown, []string{"-", "_"}, "dislike")
	reg(scopeDashboard, actionReload, []string{"r"}, "reload")
	reg(scopeDashboard, actionPrefs, []string{"p"}, "preferences")
	reg(scopeDashboard, actionLogout, []string{"l"}, "logout")
	reg(scopeDashboard, actionQuit, []string{"q"}, "quit")
	return r
}

// register ignores a binding whose keys are already taken in scope.
func (r *keyRegistry) register(scope string, b binding) {
	keys := normalizeKeyList(b.Keys)
	if len(keys) == 0 {
		return
	}
	idx, ok := r.index[scope]
	if !ok {
		idx = make(map[string]*binding)
		r.index[scope] = idx
	}
	for _, k := range keys {
		if _, taken := idx[k]; taken {
			return
		}
	}
	b.Keys = keys
	r.byScope[scope] = append(r.byScope[scope], &b)
	for _, k := range keys {
		idx[k] = &b
	}
}

// lookup returns the action bound to keyName, or "" when none is.
func (r *keyRegistry) lookup(keyName, scope string) action {
	k := normalizeKeyName(keyName)
	if k == "" {
		return ""
	}
	if b, ok := r.index[scope][k]; ok {
		return b.Action
	}
	if b, ok := r.index[scopeGlobal][k]; ok {
		return b.Action
	}
	return ""
}

func (r *keyRegistry) helpBindings(scope string) []key.Binding {
	items := r.byScope[scope]
	out := make([]key.Binding, 0, len(items))
	for _, b := range items {
		label := b.HelpKey
		if label == "" {
			label = b.Keys[0]
		}
		out = append(out, key.NewBinding(key.WithKeys(b.Keys...), key.WithHelp(label, b.Help)))
	}
	return out
}

func (r *keyRegistry) footer(scope string) string {
	parts := make([]string, 0, len(r.byScope[scope]))
	for _, b := range r.helpBindings(scope) {
		h := b.Help()
		if h.Key == "" && h.Desc == "" {
			continue
		}
		parts = append(parts, keyStyle.Render(h.Key)+" "+mutedStyle.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}

func isDownKey(k string) bool {
	return k == "j" || k == "down"
}

func normalizeKeyList(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]bool)
	for _, k := range keys {
		n := normalizeKeyName(k)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func normalizeKeyName(k string) string {
	if k == " " {
		return "space"
	}
	trimmed := strings.TrimSpace(k)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) == 1 {
		return trimmed
	}
	s := strings.ToLower(trimmed)
	s = strings.ReplaceAll(s, "control+", "ctrl+")
	s = strings.ReplaceAll(s, "return", "enter")
	return s
}
