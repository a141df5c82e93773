// Package storage is the durable key-value port the session router and its
// collaborators persist through, plus its in-memory and sqlite adapters.
package storage

import "context"

// Keys written by coinfeed.
const (
	KeyToken           = "token"
	KeyPrefsMarker     = "prefs"
	KeyLastScreen      = "lastScreen"
	KeyUserName        = "userName"
	KeyUser            = "user"
	KeyUserPreferences = "userPreferences"
)

// Store is a string-keyed get/set/remove store. Each call is atomic for its
// own key; there is no cross-key transaction.
type Store interface {
	// Get reports ok=false for an absent key. Adapters report values they
	// cannot decode as absent rather than as errors.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// Remove is idempotent.
	Remove(ctx context.Context, key string) error
}
