package session

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/diewo77/gst-invoices/internal/services"
	"github.com/google/uuid"
)

const (
	cookieName = "gst_session"
	devSecret  = "devsessionsecret"
)

type ctxKey struct{}

type entry struct {
	ws   *services.Workspace
	seen time.Time
}

// Manager maps signed session cookies to in-memory workspaces. Nothing is
// persisted: a restart or an idle sweep starts a fresh invoice.
type Manager struct {
	secret []byte
	idle   time.Duration
	now    func() time.Time

	// OnItemChange, when set before serving, is registered as the item
	// change hook of every new workspace.
	OnItemChange func(sessionID string, c services.ItemChange)

	mu     sync.Mutex
	spaces map[string]*entry
}

// NewManager returns a Manager signing cookies with secret. Workspaces idle
// for longer than idle are dropped by Sweep; zero keeps them forever.
func NewManager(secret string, idle time.Duration) *Manager {
	if secret == "" {
		secret = devSecret
	}
	return &Manager{
		secret: []byte(secret),
		idle:   idle,
		now:    time.Now,
		spaces: map[string]*entry{},
	}
}

func (m *Manager) sign(id string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// parse validates the cookie and returns the session id.
func (m *Manager) parse(r *http.Request) (string, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	id, sig, ok := strings.Cut(c.Value, ".")
	if !ok {
		return "", false
	}
	if !hmac.Equal([]byte(sig), []byte(m.sign(id))) {
		return "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

func (m *Manager) issue(w http.ResponseWriter) string {
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    id + "." + m.sign(id),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// Workspace returns the workspace for id, creating it on first use.
func (m *Manager) Workspace(id string) *services.Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.spaces[id]
	if !ok {
		var opts []services.StoreOption
		if hook := m.OnItemChange; hook != nil {
			opts = append(opts, services.WithOnChange(func(c services.ItemChange) { hook(id, c) }))
		}
		e = &entry{ws: services.NewWorkspace(opts...)}
		m.spaces[id] = e
	}
	e.seen = m.now()
	return e.ws
}

// Len returns the number of live workspaces.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.spaces)
}

// Sweep drops workspaces idle for longer than the configured limit and
// returns how many were dropped.
func (m *Manager) Sweep() int {
	if m.idle <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idle)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.spaces {
		if e.seen.Before(cutoff) {
			delete(m.spaces, id)
			n++
		}
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, every time.Duration) {
	if m.idle <= 0 || every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := m.Sweep(); n > 0 {
				log.Printf("session: dropped %d idle workspace(s)", n)
			}
		}
	}
}

// Middleware attaches the caller's workspace to the request context, issuing
// a new session cookie when none or an invalid one is presented.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := m.parse(r)
		if !ok {
			id = m.issue(w)
		}
		r = r.WithContext(WithWorkspace(r.Context(), m.Workspace(id)))
		next.ServeHTTP(w, r)
	})
}

// WithWorkspace stores ws in ctx.
func WithWorkspace(ctx context.Context, ws *services.Workspace) context.Context {
	return context.WithValue(ctx, ctxKey{}, ws)
}

// FromContext extracts the workspace.
func FromContext(ctx context.Context) (*services.Workspace, bool) {
	ws, ok := ctx.Value(ctxKey{}).(*services.Workspace)
	return ws, ok && ws != nil
}
