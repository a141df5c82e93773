// Package onboarding saves the user's preferences and mirrors them locally.
package onboarding

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jask/coinfeed/internal/auth"
	"github.com/jask/coinfeed/internal/prefs"
	"github.com/jask/coinfeed/internal/storage"
)

// ErrNoUser means no user record was cached at login, so there is no id to save against.
var ErrNoUser = errors.New("no cached user; log in again")

// Client is the subset of the API used here.
type Client interface {
	SavePreferences(ctx context.Context, token, userID string, p prefs.Preferences) error
}

type Service struct {
	client Client
	store  storage.Store
	cache  *prefs.Cache
	log    *zap.Logger
}

func NewService(client Client, store storage.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{client: client, store: store, cache: prefs.NewCache(store), log: log.Named("onboarding")}
}

// Save validates p, sends it and refreshes the cached user and preferences.
// On success the caller completes onboarding on the router.
func (s *Service) Save(ctx context.Context, token string, p prefs.Preferences) error {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return err
	}
	user, ok := auth.CachedUser(ctx, s.store)
	if !ok || user.ID == "" {
		return ErrNoUser
	}
	if err := s.client.SavePreferences(ctx, token, user.ID, p); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}

	user.Preferences = &p
	if err := auth.StoreUser(ctx, s.store, user); err != nil {
		s.log.Warn("cache user", zap.Error(err))
	}
	if err := s.cache.Save(ctx, p); err != nil {
		s.log.Warn("cache preferences", zap.Error(err))
	}
	s.log.Info("preferences saved", zap.String("user_id", user.ID),
		zap.Strings("assets", p.CryptoAssets), zap.String("investor_type", p.InvestorType))
	return nil
}

// Current returns the preferences to pre-fill the form with, if any are cached.
func (s *Service) Current(ctx context.Context) (prefs.Preferences, bool) {
	return s.cache.Load(ctx)
}
