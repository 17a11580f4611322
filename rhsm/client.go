// Copyright (c) 2019 Antonio Romito
// SPDX-License-Identifier: GPL-3.0-or-later

// Package rhsm is a minimal client for the Red Hat Subscription Manager
// management API. Authentication uses the OAuth2 resource-owner password
// grant against Red Hat SSO; expired access tokens are refreshed
// transparently by the underlying token source.
package rhsm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/thanhpk/randstr"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the production subscription management API
	DefaultBaseURL = "https://api.access.redhat.com/management/v1"

	// DefaultTokenURL is the Red Hat SSO 3scale realm token endpoint
	DefaultTokenURL = "https://sso.redhat.com/auth/realms/3scale/protocol/openid-connect/token"

	// MaxPageSize is the largest page the management API will serve
	MaxPageSize = 100
)

// Credentials holds the four values the Red Hat customer portal issues for
// API access: the portal login pair plus an API key client_id/client_secret
type Credentials struct {
	Username     string
	Password     string
	ClientID     string
	ClientSecret string
}

// APIError is a non-2xx response from the management API, decoded from its
// error envelope when one is present.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("rhsm: API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("rhsm: API returned status %d: %s", e.StatusCode, e.Message)
}

// IsAuth reports whether the error was caused by bad or insufficient
// credentials rather than by the request itself
func (e *APIError) IsAuth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// errorEnvelope matches the management API error body:
//
//	{"error": {"code": "...", "message": "..."}}
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to the management API with an authenticated HTTP client.
// All page fetches are sequential; the limiter only paces politeness between
// consecutive requests.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  hclog.Logger
	tokens  oauth2.TokenSource

	// correlationID tags every request of one CLI invocation so server-side
	// logs can be matched up with a support case
	correlationID string
}

// Option customizes a Client during construction
type Option func(*Client)

// WithBaseURL points the client at a non-default API root, e.g. a staging
// environment or a test server
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithLogger supplies a named subsystem logger
func WithLogger(l hclog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRequestsPerSecond throttles paginated fetching. Zero or negative
// disables throttling.
func WithRequestsPerSecond(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewClient performs the password-grant token exchange and returns a client
// whose requests carry (and refresh) the resulting bearer token. A failed
// exchange, i.e. bad credentials, surfaces here rather than on first use.
func NewClient(ctx context.Context, creds Credentials, tokenURL string, opts ...Option) (*Client, error) {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL: tokenURL,
		},
	}

	tok, err := conf.PasswordCredentialsToken(ctx, creds.Username, creds.Password)
	if err != nil {
		return nil, fmt.Errorf("rhsm: unable to fetch access token: %w", err)
	}

	// conf.TokenSource wraps the token in a ReuseTokenSource, so an expired
	// access token is traded for a fresh one via the refresh token without
	// any bookkeeping on our side
	ts := conf.TokenSource(ctx, tok)

	c := &Client{
		baseURL:       DefaultBaseURL,
		http:          oauth2.NewClient(ctx, ts),
		limiter:       rate.NewLimiter(rate.Limit(5), 1),
		logger:        hclog.L().Named("rhsm"),
		tokens:        ts,
		correlationID: randstr.Hex(8),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Token returns the current access token, refreshing it first if it has
// expired. Used by the debug command to report token health.
func (c *Client) Token() (*oauth2.Token, error) {
	return c.tokens.Token()
}

// CorrelationID returns the ID attached to every request of this client
func (c *Client) CorrelationID() string {
	return c.correlationID
}

// Systems fetches one page of the registered-system inventory
func (c *Client) Systems(ctx context.Context, limit, offset int) (*SystemsPage, error) {
	var page SystemsPage
	if err := c.get(ctx, "/systems", pageQuery(limit, offset), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Allocations fetches one page of subscription allocations
func (c *Client) Allocations(ctx context.Context, limit, offset int) (*AllocationsPage, error) {
	var page AllocationsPage
	if err := c.get(ctx, "/allocations", pageQuery(limit, offset), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Subscriptions fetches one page of the account's subscriptions
func (c *Client) Subscriptions(ctx context.Context, limit, offset int) (*SubscriptionsPage, error) {
	var page SubscriptionsPage
	if err := c.get(ctx, "/subscriptions", pageQuery(limit, offset), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Errata fetches one page of published advisories
func (c *Client) Errata(ctx context.Context, limit, offset int) (*ErrataPage, error) {
	var page ErrataPage
	if err := c.get(ctx, "/errata", pageQuery(limit, offset), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Packages fetches one page of the packages installed on a given system
func (c *Client) Packages(ctx context.Context, systemUUID string, limit, offset int) (*PackagesPage, error) {
	var page PackagesPage
	path := fmt.Sprintf("/systems/%s/packages", url.PathEscape(systemUUID))
	if err := c.get(ctx, path, pageQuery(limit, offset), &page); err != nil {
		return nil, err
	}

	// The payload doesn't repeat the system UUID, so stamp it onto each record
	for i := range page.Body {
		page.Body[i].SystemUUID = systemUUID
	}
	return &page, nil
}

func pageQuery(limit, offset int) url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	return q
}

// get performs a single rate-limited GET against the API and decodes the
// JSON response into out
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("rhsm: building request for %s: %w", u, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Correlation-Id", c.correlationID)

	c.logger.Debug("starting request", "url", u)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("rhsm: requesting %s: %w", u, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("request complete", "url", u, "status", resp.StatusCode, "rtt", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("rhsm: decoding response from %s: %w", u, err)
	}
	return nil
}

// decodeAPIError turns a failed response into an *APIError, tolerating
// bodies that aren't the documented error envelope
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var envelope errorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}

	return apiErr
}
