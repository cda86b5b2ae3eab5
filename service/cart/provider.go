package cart

import (
	"context"
	"sync"
	"time"

	"lunelle.GO/core/cache"
)

const sessionTag = "cart_session"

// Provider hands out exactly one Session per visitor so that every page and API
// serving that visitor observes the same cart. Idle sessions expire after ttl
// and are rebuilt from the stored cart id.
type Provider struct {
	gw       Gateway
	ids      KeyedStore
	sessions *cache.Cache
	ttl      time.Duration
	opts     []Option

	mu sync.Mutex
}

func NewProvider(gw Gateway, ids KeyedStore, sessions *cache.Cache, ttl time.Duration, opts ...Option) *Provider {
	if sessions == nil {
		sessions = cache.NewCache()
	}
	return &Provider{gw: gw, ids: ids, sessions: sessions, ttl: ttl, opts: opts}
}

// Session returns the visitor's session, initializing it on first use.
// Init failures are recorded on the session, not returned.
func (p *Provider) Session(ctx context.Context, visitorID string) *Session {
	p.mu.Lock()
	var s *Session
	if v, ok := p.sessions.Get(visitorID); ok {
		s = v.(*Session)
	} else {
		s = NewSession(p.gw, ForKey(p.ids, visitorID), p.opts...)
	}
	p.sessions.SetFor(visitorID, s, p.ttl, []string{sessionTag})
	p.mu.Unlock()

	_ = s.Init(ctx)
	return s
}

// Peek returns the visitor's session without creating one.
func (p *Provider) Peek(visitorID string) (*Session, bool) {
	v, ok := p.sessions.Get(visitorID)
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

// Sweep drops expired sessions and returns how many were removed. Expired
// cart ids are dropped too when the id store holds them in process.
func (p *Provider) Sweep() int {
	if sw, ok := p.ids.(interface{ Sweep() int }); ok {
		sw.Sweep()
	}
	return p.sessions.Sweep()
}

// Len is the number of live sessions.
func (p *Provider) Len() int {
	return len(p.sessions.GetKeysByTag(sessionTag))
}
