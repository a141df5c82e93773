// Package auth runs the login and signup exchanges and caches what the server
// returned about the user. Starting the session is left to the router.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jask/coinfeed/internal/api"
	"github.com/jask/coinfeed/internal/prefs"
	"github.com/jask/coinfeed/internal/session"
	"github.com/jask/coinfeed/internal/storage"
)

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrMissingName        = errors.New("name is required to sign up")
)

// Client is the subset of the API used here.
type Client interface {
	Login(ctx context.Context, email, password string) (api.AuthResult, error)
	Signup(ctx context.Context, name, email, password string) (api.AuthResult, error)
}

// Result is the normalised outcome of a successful exchange.
type Result struct {
	Session  session.Session
	User     api.User
	HasPrefs bool
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
	return &Service{client: client, store: store, cache: prefs.NewCache(store), log: log.Named("auth")}
}

func (s *Service) Login(ctx context.Context, email, password string) (Result, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Result{}, ErrMissingCredentials
	}
	res, err := s.client.Login(ctx, email, password)
	if err != nil {
		return Result{}, fmt.Errorf("log in: %w", err)
	}
	return s.finish(ctx, res), nil
}

func (s *Service) Signup(ctx context.Context, name, email, password string) (Result, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return Result{}, ErrMissingName
	}
	if email == "" || password == "" {
		return Result{}, ErrMissingCredentials
	}
	res, err := s.client.Signup(ctx, name, email, password)
	if err != nil {
		return Result{}, fmt.Errorf("sign up: %w", err)
	}
	return s.finish(ctx, res), nil
}

// finish mirrors the user record and preferences locally, dropping any cached
// preferences the new user does not have. Cache failures are logged only; the
// exchange itself succeeded.
func (s *Service) finish(ctx context.Context, res api.AuthResult) Result {
	if err := StoreUser(ctx, s.store, res.User); err != nil {
		s.log.Warn("cache user", zap.Error(err))
	}
	if res.User.HasPreferences() {
		if err := s.cache.Save(ctx, *res.User.Preferences); err != nil {
			s.log.Warn("cache preferences", zap.Error(err))
		}
	} else if err := s.cache.Clear(ctx); err != nil {
		// a previous user's copy must not pre-fill onboarding
		s.log.Warn("clear cached preferences", zap.Error(err))
	}
	s.log.Info("authenticated", zap.String("user_id", res.User.ID), zap.Bool("has_prefs", res.User.HasPreferences()))
	return Result{
		Session:  session.Session{Token: res.Token, UserName: res.User.Name},
		User:     res.User,
		HasPrefs: res.User.HasPreferences(),
	}
}

// CachedUser returns the user record mirrored at the last login. Malformed
// entries count as absent.
func CachedUser(ctx context.Context, store storage.Store) (api.User, bool) {
	raw, ok, err := store.Get(ctx, storage.KeyUser)
	if err != nil || !ok || raw == "" {
		return api.User{}, false
	}
	var u api.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return api.User{}, false
	}
	return u, true
}

// StoreUser replaces the mirrored user record.
func StoreUser(ctx context.Context, store storage.Store, u api.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return store.Set(ctx, storage.KeyUser, string(data))
}
