package tui

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyLookupFallsBackToGlobal(t *testing.T) {
	r := newKeyRegistry()
	require.Equal(t, actionQuit, r.lookup("ctrl+c", scopeDashboard))
	require.Equal(t, actionQuit, r.lookup("q", scopeDashboard))
	require.Equal(t, action(""), r.lookup("q", scopeAuth))
}

func TestKeyLookupNormalizesNames(t *testing.T) {
	r := newKeyRegistry()
	require.Equal(t, actionToggle, r.lookup(" ", scopeOnboarding))
	require.Equal(t, actionSubmit, r.lookup("Return", scopeAuth))
	require.Equal(t, actionToggleMode, r.lookup("Control+T", scopeAuth))
}

func TestRegisterSkipsTakenKeys(t *testing.T) {
	r := newKeyRegistry()
	r.register(scopeDashboard, binding{Action: actionSave, Keys: []string{"r"}, Help: "save"})
	require.Equal(t, actionReload, r.lookup("r", scopeDashboard))
}

func TestFooterListsScopeBindings(t *testing.T) {
	r := newKeyRegistry()
	footer := r.footer(scopeOnboarding)
	for _, want := range []string{"j/k", "navigate", "space", "toggle", "enter", "save", "logout"} {
		require.Contains(t, footer, want)
	}
	require.NotContains(t, footer, "preferences")
}

func TestFooterLabelIsNotALookupKey(t *testing.T) {
	r := newKeyRegistry()
	require.Equal(t, action(""), r.lookup("j/k", scopeOnboarding))
	for _, k := range []string{"j", "k", "up", "down"} {
		require.Equal(t, actionNavigate, r.lookup(k, scopeOnboarding), k)
	}

	var labels []string
	for _, b := range r.helpBindings(scopeOnboarding) {
		labels = append(labels, b.Help().Key)
	}
	require.Contains(t, labels, "j/k")
	require.NotContains(t, labels, "j")
}
