package session

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"eisen/internal/storage"
)

func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(filepath.Join(t.TempDir(), "eisen.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return s
}

func TestValidateToken(t *testing.T) {
	now := time.Date(2023, 4, 12, 12, 0, 0, 0, time.UTC)

	if err := ValidateToken("", now); !errors.Is(err, ErrNoToken) {
		t.Errorf("empty token: %v, want ErrNoToken", err)
	}
	if err := ValidateToken("not-a-jwt", now); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("garbage token: %v, want ErrTokenInvalid", err)
	}
	if err := ValidateToken(signedToken(t, now.Add(-time.Minute)), now); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expired token: %v, want ErrTokenExpired", err)
	}
	if err := ValidateToken(signedToken(t, now.Add(time.Hour)), now); err != nil {
		t.Errorf("valid token: %v, want nil", err)
	}
}

func TestIsAuthError(t *testing.T) {
	for _, err := range []error{ErrNoToken, ErrTokenInvalid, ErrTokenExpired, ErrUnauthorized} {
		if !IsAuthError(err) {
			t.Errorf("IsAuthError(%v) = false", err)
		}
	}
	if IsAuthError(errors.New("network down")) {
		t.Error("unrelated error classified as auth error")
	}
	if IsAuthError(nil) {
		t.Error("nil classified as auth error")
	}
}

func TestSaveLoadClear(t *testing.T) {
	store := openTestStore(t)

	c, err := Load(store)
	if err != nil {
		t.Fatalf("Load on fresh store: %v", err)
	}
	if c.Token != "" || c.User != (User{}) {
		t.Fatalf("fresh session not empty: %+v", c)
	}
	if c.Authenticated() {
		t.Error("empty session reports authenticated")
	}

	user := User{ID: 3, Email: "m@example.com", Name: "Mina"}
	token := signedToken(t, time.Now().Add(time.Hour))
	if err := c.Save(token, user); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A second Load sees what Save persisted.
	again, err := Load(store)
	if err != nil {
		t.Fatalf("Load after save: %v", err)
	}
	if again.Token != token || again.User != user {
		t.Fatalf("reloaded session = %+v", again)
	}
	if !again.Authenticated() {
		t.Error("saved session not authenticated")
	}

	if err := again.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if again.Token != "" || again.User != (User{}) {
		t.Errorf("session not cleared in memory: %+v", again)
	}
	final, err := Load(store)
	if err != nil {
		t.Fatalf("Load after clear: %v", err)
	}
	if final.Token != "" || final.User != (User{}) {
		t.Errorf("session not cleared on disk: %+v", final)
	}
}

func TestLoadMalformedProfileReadsAsAbsence(t *testing.T) {
	store := openTestStore(t)
	if err := store.Set("session.user", "{not json"); err != nil {
		t.Fatalf("seeding bad profile: %v", err)
	}

	c, err := Load(store)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.User != (User{}) {
		t.Errorf("malformed profile produced %+v, want zero User", c.User)
	}
}

func TestFocusSecondsDefaultAndRoundTrip(t *testing.T) {
	store := openTestStore(t)
	c, err := Load(store)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := c.FocusSeconds(); got != DefaultFocusSeconds {
		t.Errorf("FocusSeconds = %d, want default %d", got, DefaultFocusSeconds)
	}
	if err := c.SetFocusSeconds(600); err != nil {
		t.Fatalf("SetFocusSeconds: %v", err)
	}
	if got := c.FocusSeconds(); got != 600 {
		t.Errorf("FocusSeconds = %d, want 600", got)
	}

	// Bad persisted values fall back to the default.
	if err := store.Set("prefs.focus_seconds", "nonsense"); err != nil {
		t.Fatalf("seeding bad pref: %v", err)
	}
	if got := c.FocusSeconds(); got != DefaultFocusSeconds {
		t.Errorf("FocusSeconds after corruption = %d, want default", got)
	}
}
