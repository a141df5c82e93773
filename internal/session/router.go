// Package session decides which screen coinfeed shows and keeps that decision
// consistent with what is persisted across restarts, login, onboarding and logout.
package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/jask/coinfeed/internal/storage"
)

// Session is the authenticated identity persisted under token and userName.
type Session struct {
	Token    string
	UserName string
}

// Router owns the current screen. It is driven from a single event loop and is
// not safe for concurrent use.
type Router struct {
	store   storage.Store
	log     *zap.Logger
	current Screen
}

func NewRouter(store storage.Store, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{store: store, log: log.Named("router"), current: Auth}
}

// Current returns the screen to render.
func (r *Router) Current() Screen { return r.current }

// Initialize resolves the starting screen from persisted signals:
// no token wins over everything, then a missing preferences marker forces
// onboarding, then the lastScreen hint picks between onboarding and dashboard.
// Nothing is written.
func (r *Router) Initialize(ctx context.Context) Screen {
	r.current = r.resolve(ctx)
	r.log.Debug("initialized", zap.Stringer("screen", r.current))
	return r.current
}

func (r *Router) resolve(ctx context.Context) Screen {
	if token := r.read(ctx, storage.KeyToken); token == "" {
		return Auth
	}
	if !r.HasPrefsMarker(ctx) {
		return Onboarding
	}
	switch hint := Screen(r.read(ctx, storage.KeyLastScreen)); hint {
	case Dashboard, Onboarding:
		return hint
	}
	return Dashboard
}

// CompleteAuthentication starts sess and moves to onboarding or dashboard.
// When the server reported saved preferences the marker is written as well so a
// restart reaches the same screen.
func (r *Router) CompleteAuthentication(ctx context.Context, sess Session, hasPrefs bool) Screen {
	r.write(ctx, storage.KeyToken, sess.Token)
	r.write(ctx, storage.KeyUserName, sess.UserName)
	if !hasPrefs {
		return r.transition(ctx, Onboarding)
	}
	r.markPrefs(ctx)
	return r.transition(ctx, Dashboard)
}

// CompleteOnboarding runs after preferences were saved server-side.
func (r *Router) CompleteOnboarding(ctx context.Context) Screen {
	r.markPrefs(ctx)
	return r.transition(ctx, Dashboard)
}

// Logout drops the session and the hint. The preferences marker is kept on
// purpose: the next login on this profile skips onboarding.
func (r *Router) Logout(ctx context.Context) Screen {
	r.remove(ctx, storage.KeyToken)
	r.remove(ctx, storage.KeyUserName)
	r.remove(ctx, storage.KeyLastScreen)
	r.current = Auth
	r.log.Info("logged out")
	return r.current
}

// NavigateTo jumps straight to screen. Token presence is not re-checked here;
// callers must not request onboarding or dashboard without a session.
func (r *Router) NavigateTo(ctx context.Context, screen Screen) Screen {
	if !screen.Valid() {
		r.log.Warn("ignoring navigation to unknown screen", zap.Stringer("screen", screen))
		return r.current
	}
	return r.transition(ctx, screen)
}

// Session returns the persisted session, zero-valued when logged out.
func (r *Router) Session(ctx context.Context) Session {
	return Session{
		Token:    r.read(ctx, storage.KeyToken),
		UserName: r.read(ctx, storage.KeyUserName),
	}
}

// HasPrefsMarker reports whether onboarding was ever completed on this profile.
// A literal "false" does not count.
func (r *Router) HasPrefsMarker(ctx context.Context) bool {
	v := r.read(ctx, storage.KeyPrefsMarker)
	return v != "" && v != "false"
}

func (r *Router) markPrefs(ctx context.Context) {
	if r.HasPrefsMarker(ctx) {
		return
	}
	r.write(ctx, storage.KeyPrefsMarker, "true")
}

func (r *Router) transition(ctx context.Context, next Screen) Screen {
	prev := r.current
	r.current = next
	r.write(ctx, storage.KeyLastScreen, next.String())
	r.log.Info("screen changed", zap.Stringer("from", prev), zap.Stringer("to", next))
	return next
}

// read treats errors and absence alike.
func (r *Router) read(ctx context.Context, key string) string {
	v, ok, err := r.store.Get(ctx, key)
	if err != nil {
		r.log.Warn("storage read failed", zap.String("key", key), zap.Error(err))
		return ""
	}
	if !ok {
		return ""
	}
	return v
}

func (r *Router) write(ctx context.Context, key, value string) {
	if err := r.store.Set(ctx, key, value); err != nil {
		r.log.Warn("storage write failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *Router) remove(ctx context.Context, key string) {
	if err := r.store.Remove(ctx, key); err != nil {
		r.log.Warn("storage remove failed", zap.String("key", key), zap.Error(err))
	}
}
