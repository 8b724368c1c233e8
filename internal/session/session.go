// Package session holds the client-side view of who is logged in.
//
// The persisted token is the only state. Claims are decoded from it on every
// read, so the in-memory view can never drift from what is stored.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"marketplace_auth/internal/model"
	"marketplace_auth/internal/utils"
)

const (
	CookieName = "authToken"
	// CookieTTL matches the lifetime the server gives tokens.
	CookieTTL = 24 * time.Hour
	LoginPath = "/login"
)

type State int

const (
	Uninitialized State = iota
	Loading
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Claims is the identity decoded from the stored token.
type Claims struct {
	UserID    string
	Phone     string
	Role      model.Role
	ExpiresAt time.Time
}

// Navigator moves the UI to a route.
type Navigator interface {
	Navigate(path string)
}

type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Verifier checks a token signature. *utils.JWTUtil implements it.
type Verifier interface {
	ValidateToken(token string) (*utils.JWTClaims, error)
}

var ErrInvalidToken = errors.New("session: invalid token")

type Option func(*Context)

// WithVerifier makes the context check signatures, for callers that hold the
// signing secret. Without it tokens are only decoded and expiry-checked.
func WithVerifier(v Verifier) Option {
	return func(c *Context) { c.verifier = v }
}

// WithHomeRoutes overrides where Login navigates for each role.
func WithHomeRoutes(routes map[model.Role]string) Option {
	return func(c *Context) {
		for role, path := range routes {
			c.homes[role] = path
		}
	}
}

// Context is the session state machine:
// Uninitialized -> Loading -> Authenticated | Anonymous.
type Context struct {
	store    TokenStore
	nav      Navigator
	verifier Verifier
	homes    map[model.Role]string

	mu        sync.Mutex
	// loading is set while Restore reads the store; loaded once it has
	// finished or Login/Logout ran. Authenticated vs Anonymous is never
	// stored: it is decided from the persisted token on every read.
	loading   bool
	loaded    bool
	ready     chan struct{}
	readyOnce sync.Once
}

func New(store TokenStore, nav Navigator, opts ...Option) *Context {
	c := &Context{
		store: store,
		nav:   nav,
		homes: map[model.Role]string{
			model.RoleAdmin:    "/profile",
			model.RoleWorker:   "/profile",
			model.RoleConsumer: "/profile",
		},
		ready: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ready is closed once the persisted token has been examined. Callers must
// not trust State or Claims before that.
func (c *Context) Ready() <-chan struct{} {
	return c.ready
}

// Restore reads the persisted token on startup. A token that cannot be
// decoded or has expired is cleared and the session becomes anonymous.
func (c *Context) Restore() State {
	c.mu.Lock()
	if c.loading || c.loaded {
		c.mu.Unlock()
		<-c.ready
		return c.State()
	}
	c.loading = true
	c.mu.Unlock()

	token, err := c.store.Load()
	if err != nil || token != "" {
		if err == nil {
			_, err = c.decode(token)
		}
		if err != nil {
			_ = c.store.Clear()
		}
	}

	c.markReady()
	return c.State()
}

// Login persists token for one day and navigates to the role's home route.
// An undecodable token is rejected and nothing is stored.
func (c *Context) Login(token string) error {
	claims, err := c.decode(token)
	if err != nil {
		return err
	}
	if err := c.store.Save(token, time.Now().Add(CookieTTL)); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	c.markReady()

	home, ok := c.homes[claims.Role]
	if !ok {
		home = "/"
	}
	c.nav.Navigate(home)
	return nil
}

// Logout forgets the token and navigates to the login page.
func (c *Context) Logout() error {
	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	c.markReady()
	c.nav.Navigate(LoginPath)
	return nil
}

func (c *Context) State() State {
	c.mu.Lock()
	loading, loaded := c.loading, c.loaded
	c.mu.Unlock()
	switch {
	case loaded:
		if _, ok := c.Claims(); ok {
			return Authenticated
		}
		return Anonymous
	case loading:
		return Loading
	default:
		return Uninitialized
	}
}

// Claims decodes the persisted token. It reports false before loading
// completes or when no valid token is stored.
func (c *Context) Claims() (Claims, bool) {
	c.mu.Lock()
	loaded := c.loaded
	c.mu.Unlock()
	if !loaded {
		return Claims{}, false
	}

	token, err := c.store.Load()
	if err != nil || token == "" {
		return Claims{}, false
	}
	claims, err := c.decode(token)
	if err != nil {
		return Claims{}, false
	}
	return claims, true
}

// Token returns the persisted raw token, for attaching to API requests.
func (c *Context) Token() (string, bool) {
	if _, ok := c.Claims(); !ok {
		return "", false
	}
	token, _ := c.store.Load()
	return token, token != ""
}

// markReady ends the loading phase and releases Ready waiters.
func (c *Context) markReady() {
	c.mu.Lock()
	c.loading, c.loaded = false, true
	c.mu.Unlock()
	c.readyOnce.Do(func() { close(c.ready) })
}

func (c *Context) decode(token string) (Claims, error) {
	var (
		jc  *utils.JWTClaims
		err error
	)
	if c.verifier != nil {
		jc, err = c.verifier.ValidateToken(token)
	} else {
		jc, err = utils.DecodeUnverified(token)
	}
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if jc.ExpiresAt == nil || !jc.ExpiresAt.After(time.Now()) {
		return Claims{}, ErrInvalidToken
	}
	return Claims{
		UserID:    jc.UserID,
		Phone:     jc.Phone,
		Role:      jc.Role,
		ExpiresAt: jc.ExpiresAt.Time,
	}, nil
}
