// Package newsletter stores newsletter signups in the configured subscriber store.
package newsletter

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"

	"lunelle.GO/model/entity"
)

const (
	SuccessMessage = "Thank you for subscribing!"
	GenericMessage = "Something went wrong. Please try again later."
)

var (
	ErrNotConfigured = errors.New("Supabase client not initialized. Please configure your environment variables.")
	ErrInvalidEmail  = errors.New("Please enter a valid email address")
	// ErrDuplicate is returned by a Store when the email is already subscribed.
	ErrDuplicate = errors.New("newsletter: email already subscribed")
)

// Source tags identify which form a signup came from.
const (
	SourceHomepage = "homepage"
	SourceFooter   = "footer"
	SourceAPI      = "api"
	SourceCLI      = "cli"
)

// uniqueViolation is the Postgres error code for a unique constraint violation.
const uniqueViolation = "23505"

// Store inserts one subscriber row and returns it as stored.
type Store interface {
	Insert(ctx context.Context, email string, source *string) (*entity.NewsletterSubscriber, error)
}

type Service struct {
	store Store
}

// NewService wraps store; a nil store makes every Subscribe fail with ErrNotConfigured.
func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Configured() bool {
	return s != nil && s.store != nil
}

// Subscribe validates and normalizes email and inserts it. Subscribing an email
// that already exists succeeds with a nil subscriber.
func (s *Service) Subscribe(ctx context.Context, email, source string) (*entity.NewsletterSubscriber, error) {
	normalized, err := Normalize(email)
	if err != nil {
		return nil, err
	}
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	var src *string
	if source = strings.TrimSpace(source); source != "" {
		src = &source
	}

	sub, err := s.store.Insert(ctx, normalized, src)
	if errors.Is(err, ErrDuplicate) {
		log.Printf("newsletter: %s already subscribed", normalized)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("newsletter: subscribe: %w", err)
	}
	return sub, nil
}

// Normalize trims and lower-cases a bare email address, rejecting anything else.
func Normalize(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return "", ErrInvalidEmail
	}
	at := strings.LastIndexByte(email, '@')
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(email), nil
}

// Message is the text shown to the shopper for a Subscribe result.
func Message(err error) string {
	switch {
	case err == nil:
		return SuccessMessage
	case errors.Is(err, ErrInvalidEmail):
		return ErrInvalidEmail.Error()
	}
	return GenericMessage
}
