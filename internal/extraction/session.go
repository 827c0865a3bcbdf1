package extraction

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
)

// DefaultSessionTTL is how long a login stays valid in a SessionCache.
const DefaultSessionTTL = 30 * time.Minute

// Session is an authenticated browsing session for one credential identity.
type Session struct {
	Identity  string
	Cookies   []*http.Cookie
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer usable at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionCache holds sessions keyed by credential identity. Expiry is checked
// on lookup; there is no background eviction.
type SessionCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*Session
}

// NewSessionCache creates an empty cache. A non-positive ttl uses DefaultSessionTTL.
func NewSessionCache(ttl time.Duration) *SessionCache {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionCache{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the live session for identity. Expired sessions are dropped.
func (c *SessionCache) Get(identity string) (*Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[identity]
	if !ok {
		return nil, false
	}
	if s.Expired(c.now()) {
		delete(c.sessions, identity)
		return nil, false
	}
	return s, true
}

// Put stores cookies for identity and returns the new session.
func (c *SessionCache) Put(identity string, cookies []*http.Cookie) *Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := &Session{Identity: identity, Cookies: cookies, ExpiresAt: c.now().Add(c.ttl)}
	c.sessions[identity] = s
	return s
}

// Evict removes the session for identity, if any.
func (c *SessionCache) Evict(identity string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, identity)
}

// Purge removes every expired session and returns how many were dropped.
func (c *SessionCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for id, s := range c.sessions {
		if s.Expired(now) {
			delete(c.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired or not.
func (c *SessionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// Credentials identify an account on a site that requires a login.
type Credentials struct {
	Identity string
	Username string
	Password string
}

// LoginFunc performs a site login and returns the session cookies.
type LoginFunc func(ctx context.Context, client Doer, creds Credentials) ([]*http.Cookie, error)

// AuthenticatedFetcher fetches pages that need a logged-in session.
type AuthenticatedFetcher struct {
	base        *Fetcher
	cache       *SessionCache
	login       LoginFunc
	profile     Profile
	maxAttempts int
	baseDelay   time.Duration
}

// NewAuthenticatedFetcher creates a fetcher that resolves sessions through cache.
// Fetcher options apply to the transport and sleep function.
func NewAuthenticatedFetcher(cache *SessionCache, login LoginFunc, opts ...FetcherOption) *AuthenticatedFetcher {
	base := NewFetcher(nil, opts...)
	return &AuthenticatedFetcher{
		base:        base,
		cache:       cache,
		login:       login,
		profile:     base.profiles.orderedDefaults()[0],
		maxAttempts: 3,
		baseDelay:   time.Second,
	}
}

// Fetch retrieves rawURL as the account in creds, logging in when the cache
// holds no live session. Attempts back off by attempt * base delay.
func (a *AuthenticatedFetcher) Fetch(ctx context.Context, rawURL string, creds Credentials) (*FetchResult, error) {
	var attempts []FetchAttempt
	var lastErr error

	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := a.base.sleep(ctx, time.Duration(attempt-1)*a.baseDelay); err != nil {
				lastErr = err
				break
			}
		}

		session, ok := a.cache.Get(creds.Identity)
		if !ok {
			cookies, err := a.login(ctx, a.base.client, creds)
			if err != nil {
				log.Printf("[Fetcher] Login failed for %s (attempt %d): %v", creds.Identity, attempt, err)
				lastErr = fmt.Errorf("login failed: %w", err)
				attempts = append(attempts, FetchAttempt{Profile: a.profile.Name, ErrorClass: ErrorClassTransport})
				continue
			}
			session = a.cache.Put(creds.Identity, cookies)
		}

		result, record, err := a.base.attempt(ctx, rawURL, a.profile, session.Cookies)
		attempts = append(attempts, record)
		if err == nil {
			result.Attempts = attempts
			return result, nil
		}

		lastErr = err
		if record.StatusCode == http.StatusUnauthorized || record.StatusCode == http.StatusForbidden {
			a.cache.Evict(creds.Identity)
		}
		log.Printf("[Fetcher] Authenticated fetch of %s failed (attempt %d): %v", rawURL, attempt, err)
	}

	return nil, &FetchError{URL: rawURL, Attempts: attempts, Err: lastErr}
}
