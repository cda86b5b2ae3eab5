package shopify

import (
	"errors"
	"fmt"
	"strings"
)

// UserError is one entry of a mutation's userErrors list.
type UserError struct {
	Field   []string `mapstructure:"field" json:"field"`
	Message string   `mapstructure:"message" json:"message"`
}

// GatewayError is any failure reported by or while reaching the Storefront API.
type GatewayError struct {
	Op         string
	Status     int
	Message    string
	UserErrors []UserError
	Err        error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("shopify %s: %s", e.Op, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func userErrorsError(op string, errs []UserError) error {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return &GatewayError{Op: op, Message: strings.Join(msgs, ", "), UserErrors: errs}
}

// IsGatewayError reports whether err came from the Storefront API call path.
func IsGatewayError(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge)
}

// Message returns the text to show a shopper for err.
func Message(err error) string {
	var ge *GatewayError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotConfigured):
		return "Shopify client not initialized. Please configure your environment variables."
	case errors.As(err, &ge):
		return ge.Message
	default:
		return err.Error()
	}
}
