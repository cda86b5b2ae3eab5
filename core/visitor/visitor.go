// Package visitor identifies anonymous shoppers by a signed cookie and hands
// each request the visitor's shared cart session.
package visitor

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"lunelle.GO/core/registry"
	"lunelle.GO/service/cart"
)

const (
	CookieName = "lunelle_session"
	// CookieLifetime is how long a visitor id survives; stored cart ids
	// expire with it.
	CookieLifetime = 365 * 24 * time.Hour
	maxAge         = int(CookieLifetime / time.Second)
)

// NewCookieStore returns the signed cookie store for visitor ids.
func NewCookieStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

type ctxKey struct{}

// binding resolves the cart session on first use so requests that never touch
// the cart do not create one.
type binding struct {
	id    string
	carts *cart.Provider
	once  sync.Once
	s     *cart.Session
}

func (b *binding) session(ctx context.Context) *cart.Session {
	b.once.Do(func() {
		b.s = b.carts.Session(ctx, b.id)
	})
	return b.s
}

// Middleware reads or assigns the visitor id and binds it to the request.
func Middleware(store sessions.Store, carts *cart.Provider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			sess, err := store.Get(req, CookieName)
			if err != nil {
				// tampered or rotated-secret cookie: start over with a fresh one
				log.Printf("visitor: discarding session cookie: %v", err)
			}
			id, _ := sess.Values[registry.KeyVisitorID].(string)
			if id == "" {
				id = uuid.NewString()
				sess.Values[registry.KeyVisitorID] = id
				if err := sess.Save(req, c.Response()); err != nil {
					log.Printf("visitor: save session cookie: %v", err)
				}
			}

			b := &binding{id: id, carts: carts}
			c.Set(registry.KeyVisitorID, id)
			c.Set(registry.KeyCartSession, b)
			c.SetRequest(req.WithContext(context.WithValue(req.Context(), ctxKey{}, b)))
			return next(c)
		}
	}
}

// ID returns the visitor id bound to the request, "" outside the middleware.
func ID(c echo.Context) string {
	id, _ := c.Get(registry.KeyVisitorID).(string)
	return id
}

// Cart returns the visitor's cart session, initializing it on first use.
func Cart(c echo.Context) *cart.Session {
	b, ok := c.Get(registry.KeyCartSession).(*binding)
	if !ok {
		return nil
	}
	return b.session(c.Request().Context())
}

// CartFromContext is Cart for code that only has the request context, such as GraphQL resolvers.
func CartFromContext(ctx context.Context) (*cart.Session, bool) {
	b, ok := ctx.Value(ctxKey{}).(*binding)
	if !ok {
		return nil, false
	}
	return b.session(ctx), true
}

// WithCart binds a fixed session to ctx, for the CLI and tests.
func WithCart(ctx context.Context, s *cart.Session) context.Context {
	b := &binding{}
	b.once.Do(func() { b.s = s })
	return context.WithValue(ctx, ctxKey{}, b)
}
