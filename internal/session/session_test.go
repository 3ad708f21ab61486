package session

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"file": func(t *testing.T) Store {
			return NewFileStore(filepath.Join(t.TempDir(), "nested", "session.json"), nil)
		},
		"cookie": func(t *testing.T) Store {
			return NewCookieStore(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), false)
		},
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)

			if store.Token() != "" {
				t.Fatalf("expected empty token for new store, got %q", store.Token())
			}

			if err := store.Set("tok-1", RoleAdmin); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if store.Token() != "tok-1" || store.Role() != RoleAdmin {
				t.Errorf("got token %q role %q, want tok-1 admin", store.Token(), store.Role())
			}

			if err := store.Set("tok-2", RoleUser); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if store.Token() != "tok-2" || store.Role() != RoleUser {
				t.Errorf("latest value not returned: got token %q role %q", store.Token(), store.Role())
			}

			if err := store.Clear(); err != nil {
				t.Fatalf("Clear() error = %v", err)
			}
			if store.Token() != "" || store.Role() != "" {
				t.Errorf("expected cleared session, got token %q role %q", store.Token(), store.Role())
			}

			if err := store.Clear(); err != nil {
				t.Errorf("second Clear() should succeed, got %v", err)
			}
		})
	}
}

func TestSetValidation(t *testing.T) {
	tests := []struct {
		name  string
		token string
		role  Role
	}{
		{"empty token", "", RoleUser},
		{"unknown role", "tok", Role("owner")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewMemoryStore().Set(tt.token, tt.role); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestFileStoreRereadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	writer := NewFileStore(path, nil)
	reader := NewFileStore(path, nil)

	if err := writer.Set("from-other-process", RoleUser); err != nil {
		t.Fatal(err)
	}
	if got := reader.Token(); got != "from-other-process" {
		t.Errorf("expected reader to see persisted token, got %q", got)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected session file mode 0600, got %o", perm)
	}

	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := reader.Token(); got != "" {
		t.Errorf("expected corrupt file to read as signed out, got %q", got)
	}
}

func TestCookieStore(t *testing.T) {
	t.Run("reads browser cookies", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/student/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "browser-token"})
		req.AddCookie(&http.Cookie{Name: RoleCookieName, Value: "admin"})

		store := NewCookieStore(httptest.NewRecorder(), req, false)

		if store.Token() != "browser-token" {
			t.Errorf("expected browser-token, got %q", store.Token())
		}
		if !store.Role().IsAdmin() {
			t.Errorf("expected admin role, got %q", store.Role())
		}
	})

	t.Run("clear overrides request cookies and expires them once", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/student/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "browser-token"})
		rr := httptest.NewRecorder()

		store := NewCookieStore(rr, req, true)
		_ = store.Clear()
		_ = store.Clear()

		if store.Token() != "" {
			t.Errorf("expected token to be cleared for the rest of the request, got %q", store.Token())
		}

		cookies := rr.Result().Cookies()
		if len(cookies) != 2 {
			t.Fatalf("expected 2 expired cookies, got %d", len(cookies))
		}
		for _, c := range cookies {
			if c.MaxAge != -1 {
				t.Errorf("cookie %s: expected MaxAge -1, got %d", c.Name, c.MaxAge)
			}
			if !c.HttpOnly || !c.Secure {
				t.Errorf("cookie %s: expected HttpOnly and Secure", c.Name)
			}
		}
	})
}

func TestParseClaims(t *testing.T) {
	sign := func(claims jwt.Claims) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		if err != nil {
			t.Fatal(err)
		}
		return token
	}

	tests := []struct {
		name    string
		token   string
		wantID  int
		wantErr bool
	}{
		{
			name:   "userId claim",
			token:  sign(&Claims{UserID: 42, Role: "user"}),
			wantID: 42,
		},
		{
			name:   "id claim",
			token:  sign(&Claims{ID: 7}),
			wantID: 7,
		},
		{
			name:   "numeric subject",
			token:  sign(&Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "19"}}),
			wantID: 19,
		},
		{
			name:    "not a jwt",
			token:   "opaque-token",
			wantErr: true,
		},
		{
			name:    "empty",
			token:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseClaims(tt.token)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseClaims() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && claims.AccountID() != tt.wantID {
				t.Errorf("AccountID() = %d, want %d", claims.AccountID(), tt.wantID)
			}
		})
	}
}
