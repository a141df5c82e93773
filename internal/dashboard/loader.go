// Package dashboard prepares what the dashboard screen shows: the feed,
// the effective preferences, price rows and the optimistic vote state.
package dashboard

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jask/coinfeed/internal/api"
	"github.com/jask/coinfeed/internal/prefs"
	"github.com/jask/coinfeed/internal/storage"
)

// ErrNoToken is returned when the dashboard is opened without a session.
var ErrNoToken = errors.New("no auth token found, please log in again")

// Client is the subset of the API used here.
type Client interface {
	Dashboard(ctx context.Context, token string) (api.DashboardData, error)
	SendFeedback(ctx context.Context, token string, fb api.Feedback) error
}

// View is a loaded dashboard.
type View struct {
	Data api.DashboardData
	// Prefs is nil when neither the server nor the cache has any.
	Prefs    *prefs.Preferences
	UserName string
	UserID   string
}

type Loader struct {
	client Client
	store  storage.Store
	cache  *prefs.Cache
	log    *zap.Logger
}

func NewLoader(client Client, store storage.Store, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{client: client, store: store, cache: prefs.NewCache(store), log: log.Named("dashboard")}
}

// Load fetches the feed. Server preferences win; the cached copy fills in when
// the server sends none or an empty set.
func (l *Loader) Load(ctx context.Context, token string) (View, error) {
	if token == "" {
		return View{}, ErrNoToken
	}
	data, err := l.client.Dashboard(ctx, token)
	if err != nil {
		return View{}, fmt.Errorf("load dashboard: %w", err)
	}

	v := View{Data: data}
	if data.User != nil {
		v.UserID = data.User.ID
		if p := data.User.Preferences; p != nil && !p.Empty() {
			v.Prefs = p
		}
		if data.User.Name != "" {
			v.UserName = data.User.Name
			if err := l.store.Set(ctx, storage.KeyUserName, data.User.Name); err != nil {
				l.log.Warn("cache user name", zap.Error(err))
			}
		}
	}
	if v.Prefs == nil {
		if p, ok := l.cache.Load(ctx); ok {
			v.Prefs = &p
		}
	}
	if v.UserName == "" {
		if name, ok, err := l.store.Get(ctx, storage.KeyUserName); err == nil && ok {
			v.UserName = name
		}
	}
	l.log.Debug("dashboard loaded", zap.Int("prices", len(data.Prices)), zap.Int("news", len(data.News)))
	return v, nil
}

// Greeting falls back to "trader" when no name is known.
func (v View) Greeting() string {
	name := v.UserName
	if name == "" {
		name = "trader"
	}
	return fmt.Sprintf("Welcome back, %s.", name)
}

// Send posts one vote.
func (l *Loader) Send(ctx context.Context, token string, fb api.Feedback) error {
	if err := l.client.SendFeedback(ctx, token, fb); err != nil {
		l.log.Warn("feedback failed", zap.String("section", fb.Section), zap.Error(err))
		return fmt.Errorf("send feedback: %w", err)
	}
	return nil
}
