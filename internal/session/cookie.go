package session

import (
	"net/http"
	"sync"
)

const (
	TokenCookieName = "token"
	RoleCookieName  = "role"
)

// CookieStore persists the session in HttpOnly browser cookies.
//
// A CookieStore is bound to a single request/response pair. Writes are sent to the browser immediately
// and later reads in the same request observe them, so a 401 that clears the session mid-request
// is not undone by the cookies the browser originally sent.
type CookieStore struct {
	mu       sync.Mutex
	w        http.ResponseWriter
	r        *http.Request
	secure   bool
	override *fileContents // non-nil once Set or Clear has been called during this request
}

func NewCookieStore(w http.ResponseWriter, r *http.Request, secure bool) *CookieStore {
	return &CookieStore{w: w, r: r, secure: secure}
}

func (c *CookieStore) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.override != nil {
		return c.override.Token
	}
	cookie, err := c.r.Cookie(TokenCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (c *CookieStore) Role() Role {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.override != nil {
		return c.override.Role
	}
	cookie, err := c.r.Cookie(RoleCookieName)
	if err != nil {
		return ""
	}
	return ParseRole(cookie.Value)
}

func (c *CookieStore) Set(token string, role Role) error {
	if err := validateSet(token, role); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.setCookie(TokenCookieName, token, 0)
	c.setCookie(RoleCookieName, string(role), 0)
	c.override = &fileContents{Token: token, Role: role}
	return nil
}

// Clear expires both cookies. Repeated calls within one request only write the cookies once.
func (c *CookieStore) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.override != nil && c.override.Token == "" {
		return nil
	}

	c.setCookie(TokenCookieName, "", -1)
	c.setCookie(RoleCookieName, "", -1)
	c.override = &fileContents{}
	return nil
}

func (c *CookieStore) setCookie(name, value string, maxAge int) {
	http.SetCookie(c.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	})
}
