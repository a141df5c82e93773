package storage

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/jask/coinfeed/internal/database/repository"
	"github.com/jask/coinfeed/internal/secrets"
)

// sealedKeys are encrypted at rest.
var sealedKeys = map[string]bool{
	KeyToken: true,
}

// SQLite is a Store backed by the kv table.
type SQLite struct {
	repo   *repository.KVRepo
	sealer *secrets.Sealer
	log    *zap.Logger
}

// NewSQLite wraps repo. When sealer is nil sensitive keys are stored as-is.
func NewSQLite(repo *repository.KVRepo, sealer *secrets.Sealer, log *zap.Logger) *SQLite {
	if log == nil {
		log = zap.NewNop()
	}
	return &SQLite{repo: repo, sealer: sealer, log: log.Named("storage")}
}

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	e, err := s.repo.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	if e == nil {
		return "", false, nil
	}
	if !s.sealed(key) {
		return e.Value, true, nil
	}
	plain, err := s.sealer.Open(e.Value)
	if err != nil {
		if errors.Is(err, secrets.ErrMalformed) {
			s.log.Warn("discarding unreadable sealed value", zap.String("key", key), zap.Error(err))
			return "", false, nil
		}
		return "", false, err
	}
	return plain, true, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	if s.sealed(key) {
		sealed, err := s.sealer.Seal(value)
		if err != nil {
			return err
		}
		value = sealed
	}
	return s.repo.Set(ctx, key, value)
}

func (s *SQLite) Remove(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, key)
}

func (s *SQLite) sealed(key string) bool {
	return s.sealer != nil && sealedKeys[key]
}

// Entries lists stored rows for diagnostics. Sealed values are masked.
func (s *SQLite) Entries(ctx context.Context) ([]repository.Entry, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if s.sealed(entries[i].Key) {
			entries[i].Value = "(sealed)"
		}
	}
	return entries, nil
}
