package newsletter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"lunelle.GO/model/entity"
)

const table = "newsletter_subscribers"

// RESTStore inserts through the Supabase PostgREST endpoint.
type RESTStore struct {
	endpoint string
	key      string
	http     *http.Client
}

// NewRESTStore returns nil when url or key is missing.
func NewRESTStore(baseURL, anonKey string, hc *http.Client) *RESTStore {
	if baseURL == "" || anonKey == "" {
		return nil
	}
	if hc == nil {
		hc = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &RESTStore{
		endpoint: strings.TrimRight(baseURL, "/") + "/rest/v1/" + table,
		key:      anonKey,
		http:     hc,
	}
}

type postgrestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

func (s *RESTStore) Insert(ctx context.Context, email string, source *string) (*entity.NewsletterSubscriber, error) {
	body, err := json.Marshal(map[string]interface{}{"email": email, "source": source})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase insert: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("supabase insert: read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var pe postgrestError
		_ = json.Unmarshal(raw, &pe)
		if resp.StatusCode == http.StatusConflict || pe.Code == uniqueViolation {
			return nil, ErrDuplicate
		}
		if pe.Message == "" {
			pe.Message = strings.TrimSpace(string(raw))
		}
		return nil, fmt.Errorf("supabase insert: HTTP %d: %s", resp.StatusCode, pe.Message)
	}

	var rows []entity.NewsletterSubscriber
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("supabase insert: decode response: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("supabase insert: no row returned")
	}
	return &rows[0], nil
}
