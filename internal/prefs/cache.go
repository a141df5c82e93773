package prefs

import (
	"context"
	"encoding/json"

	"github.com/jask/coinfeed/internal/storage"
)

// Cache is the locally mirrored copy of the server-side preferences.
type Cache struct {
	store storage.Store
}

func NewCache(store storage.Store) *Cache { return &Cache{store: store} }

// Load returns ok=false when nothing usable is cached. Read errors and malformed
// JSON count as nothing cached.
func (c *Cache) Load(ctx context.Context) (Preferences, bool) {
	raw, ok, err := c.store.Get(ctx, storage.KeyUserPreferences)
	if err != nil || !ok || raw == "" {
		return Preferences{}, false
	}
	var p Preferences
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Preferences{}, false
	}
	return p.Normalize(), true
}

func (c *Cache) Save(ctx context.Context, p Preferences) error {
	data, err := json.Marshal(p.Normalize())
	if err != nil {
		return err
	}
	return c.store.Set(ctx, storage.KeyUserPreferences, string(data))
}

func (c *Cache) Clear(ctx context.Context) error {
	return c.store.Remove(ctx, storage.KeyUserPreferences)
}
