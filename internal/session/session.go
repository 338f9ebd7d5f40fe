// Package session holds the signed-in identity and the user's persisted
// preferences. Components receive a *Context explicitly; nothing reads
// ambient state.
package session

import (
	"encoding/json"
	"errors"
	"time"

	"eisen/internal/storage"
)

const (
	keyToken         = "session.token"
	keyUser          = "session.user"
	keyFocusDuration = "prefs.focus_seconds"
)

// DefaultFocusSeconds is used until the user picks a session length.
const DefaultFocusSeconds = 25 * 60

// User is the cached profile returned by the auth endpoints.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Context is the mutable session state, persisted through the local store so
// it survives restarts.
type Context struct {
	store *storage.Store

	Token string
	User  User
}

// Load restores the previous session from the store. A malformed cached
// profile reads as absence rather than an error.
func Load(store *storage.Store) (*Context, error) {
	c := &Context{store: store}
	token, err := store.Get(keyToken)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	c.Token = token

	raw, err := store.Get(keyUser)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	if raw != "" {
		if jsonErr := json.Unmarshal([]byte(raw), &c.User); jsonErr != nil {
			c.User = User{}
		}
	}
	return c, nil
}

// Save records a fresh login.
func (c *Context) Save(token string, user User) error {
	c.Token = token
	c.User = user
	if err := c.store.Set(keyToken, token); err != nil {
		return err
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return c.store.Set(keyUser, string(raw))
}

// Clear forgets the session, both in memory and on disk.
func (c *Context) Clear() error {
	c.Token = ""
	c.User = User{}
	if err := c.store.Delete(keyToken); err != nil {
		return err
	}
	return c.store.Delete(keyUser)
}

// Authenticated reports whether a usable token is held right now.
func (c *Context) Authenticated() bool {
	return ValidateToken(c.Token, time.Now()) == nil
}

// FocusSeconds returns the preferred focus-session duration.
func (c *Context) FocusSeconds() int {
	raw, err := c.store.Get(keyFocusDuration)
	if err != nil {
		return DefaultFocusSeconds
	}
	var seconds int
	if err := json.Unmarshal([]byte(raw), &seconds); err != nil || seconds <= 0 {
		return DefaultFocusSeconds
	}
	return seconds
}

// SetFocusSeconds persists the preferred focus-session duration.
func (c *Context) SetFocusSeconds(seconds int) error {
	raw, err := json.Marshal(seconds)
	if err != nil {
		return err
	}
	return c.store.Set(keyFocusDuration, string(raw))
}
