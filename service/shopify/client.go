package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrNotConfigured is returned by every call when storefront credentials are missing.
var ErrNotConfigured = errors.New("shopify client not initialized: set SHOPIFY_STORE_DOMAIN and SHOPIFY_STOREFRONT_ACCESS_TOKEN")

const maxResponseBytes = 8 << 20

var tracer = otel.Tracer("lunelle.GO/service/shopify")

type Config struct {
	StoreDomain string
	AccessToken string
	APIVersion  string
	// Endpoint overrides the URL derived from StoreDomain and APIVersion.
	Endpoint   string
	HTTPClient *http.Client
}

// Client talks to the Storefront GraphQL API. One method issues exactly one request.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

// New builds a client. Missing credentials yield an uninitialized client whose calls
// fail with ErrNotConfigured without touching the network.
func New(cfg Config) *Client {
	c := &Client{token: cfg.AccessToken, http: cfg.HTTPClient}
	if c.http == nil {
		c.http = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	switch {
	case cfg.Endpoint != "":
		c.endpoint = cfg.Endpoint
	case cfg.StoreDomain != "":
		version := cfg.APIVersion
		if version == "" {
			version = "2024-01"
		}
		domain := strings.TrimSuffix(strings.TrimPrefix(cfg.StoreDomain, "https://"), "/")
		c.endpoint = fmt.Sprintf("https://%s/api/%s/graphql.json", domain, version)
	}
	return c
}

// Configured reports whether the client has an endpoint and a token.
func (c *Client) Configured() bool {
	return c != nil && c.endpoint != "" && c.token != ""
}

type graphQLRequest struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	OperationName string                 `json:"operationName,omitempty"`
}

type graphQLResponse struct {
	Data   map[string]interface{} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// do sends one operation and returns the unwrapped data object.
func (c *Client) do(ctx context.Context, op, query string, vars map[string]interface{}) (map[string]interface{}, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	ctx, span := tracer.Start(ctx, "shopify."+op)
	defer span.End()
	span.SetAttributes(attribute.String("graphql.operation.name", op))

	fail := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	body, err := json.Marshal(graphQLRequest{Query: query, Variables: vars, OperationName: op})
	if err != nil {
		return nil, fail(&GatewayError{Op: op, Message: "encode request", Err: err})
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fail(&GatewayError{Op: op, Message: "build request", Err: err})
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fail(&GatewayError{Op: op, Message: err.Error(), Err: err})
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fail(&GatewayError{Op: op, Message: "read response", Err: err})
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fail(&GatewayError{Op: op, Status: resp.StatusCode, Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, snippet(raw))})
	}

	var out graphQLResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fail(&GatewayError{Op: op, Message: "malformed response", Err: err})
	}
	if len(out.Errors) > 0 {
		msgs := make([]string, 0, len(out.Errors))
		for _, e := range out.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fail(&GatewayError{Op: op, Message: strings.Join(msgs, ", ")})
	}
	if out.Data == nil {
		return nil, fail(&GatewayError{Op: op, Message: "response contained no data"})
	}
	return out.Data, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
