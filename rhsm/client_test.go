// Copyright (c) 2019 Antonio Romito
// SPDX-License-Identifier: GPL-3.0-or-later

package rhsm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tokenHandler serves a valid password-grant token response
func tokenHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"access_token":"test-token","token_type":"Bearer","refresh_token":"test-refresh","expires_in":900}`)
}

// newTestClient spins up a test server with a working token endpoint and
// returns a client pointed at it. Additional API routes can be registered on
// the returned mux.
func newTestClient(t *testing.T) (*Client, *http.ServeMux) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", tokenHandler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	creds := Credentials{
		Username:     "jdoe",
		Password:     "hunter2",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	}
	c, err := NewClient(context.Background(), creds, srv.URL+"/token",
		WithBaseURL(srv.URL+"/management/v1"),
		WithRequestsPerSecond(0),
		WithLogger(hclog.NewNullLogger()),
	)
	require.NoError(t, err, "Client construction against a healthy token endpoint must succeed")

	return c, mux
}

func Test_NewClient(t *testing.T) {
	t.Run("Successful token exchange", func(t *testing.T) {
		c, _ := newTestClient(t)

		tok, err := c.Token()
		require.NoError(t, err)
		assert.Equal(t, "test-token", tok.AccessToken)
		assert.Equal(t, "Bearer", tok.TokenType)
		assert.True(t, tok.Valid(), "Token should not be expired yet")
		assert.NotEmpty(t, c.CorrelationID(), "Every client gets a correlation ID")
	})

	t.Run("Bad credentials fail at construction time", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"invalid_grant","error_description":"Invalid user credentials"}`)
		})
		srv := httptest.NewServer(mux)
		t.Cleanup(srv.Close)

		_, err := NewClient(context.Background(), Credentials{}, srv.URL+"/token")
		assert.Error(t, err, "A rejected grant must surface during NewClient")
	})
}

func Test_TokenRefresh(t *testing.T) {
	// Record every grant the token endpoint sees, and hand out a token so
	// short-lived it is already inside the client's expiry window
	var grants []string
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		grants = append(grants, r.PostFormValue("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"token-%d","token_type":"Bearer","refresh_token":"test-refresh","expires_in":1}`, len(grants))
	})
	mux.HandleFunc("/management/v1/systems", func(w http.ResponseWriter, r *http.Request) {
		// The request must carry the refreshed token, not the original
		assert.Equal(t, "Bearer token-2", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"pagination": {"count": 0, "limit": 100, "offset": 0}, "body": []}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), Credentials{Username: "jdoe", Password: "hunter2"}, srv.URL+"/token",
		WithBaseURL(srv.URL+"/management/v1"),
		WithRequestsPerSecond(0),
		WithLogger(hclog.NewNullLogger()),
	)
	require.NoError(t, err)

	// The first API call finds the token expired and must trade the refresh
	// token for a fresh one before hitting the endpoint
	_, err = c.Systems(context.Background(), 100, 0)
	require.NoError(t, err)

	require.Len(t, grants, 2, "Exactly one refresh on top of the initial exchange")
	assert.Equal(t, "password", grants[0])
	assert.Equal(t, "refresh_token", grants[1])
}

func Test_Systems(t *testing.T) {
	c, mux := newTestClient(t)

	mux.HandleFunc("/management/v1/systems", func(w http.ResponseWriter, r *http.Request) {
		// Every API request must carry the bearer token and correlation ID
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, c.CorrelationID(), r.Header.Get("X-Correlation-Id"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		assert.Equal(t, "0", r.URL.Query().Get("offset"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"pagination": {"count": 2, "limit": 2, "offset": 0},
			"body": [
				{
					"name": "host-01", "uuid": "aaaa-1111", "type": "physical",
					"entitlementCount": 2, "entitlementStatus": "valid",
					"lastCheckin": "2019-02-07T13:30:00.000Z",
					"errataCounts": {"securityCount": 3, "bugfixCount": 1, "enhancementCount": 4}
				},
				{
					"name": "host-02", "uuid": "bbbb-2222", "type": "virtual",
					"entitlementCount": 0, "entitlementStatus": "invalid"
				}
			]
		}`)
	})

	page, err := c.Systems(context.Background(), 2, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, page.Pagination.Count)
	require.Len(t, page.Body, 2)

	// Nested errata counts are flattened onto the record
	assert.Equal(t, "host-01", page.Body[0].Name)
	assert.Equal(t, 3, page.Body[0].SecurityCount)
	assert.Equal(t, 1, page.Body[0].BugfixCount)
	assert.Equal(t, 4, page.Body[0].EnhancementCount)

	// Systems without errataCounts or lastCheckin default to zero values
	assert.Equal(t, "bbbb-2222", page.Body[1].UUID)
	assert.Zero(t, page.Body[1].SecurityCount)
	assert.Empty(t, page.Body[1].LastCheckin)
}

func Test_Packages(t *testing.T) {
	c, mux := newTestClient(t)

	mux.HandleFunc("/management/v1/systems/aaaa-1111/packages", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"pagination": {"count": 1, "limit": 100, "offset": 0},
			"body": [{"name": "bash", "version": "4.4.19", "release": "12.el8", "arch": "x86_64"}]
		}`)
	})

	page, err := c.Packages(context.Background(), "aaaa-1111", 100, 0)
	require.NoError(t, err)
	require.Len(t, page.Body, 1)

	// The system UUID is stamped onto each record so CSV rows stay attributable
	assert.Equal(t, "bash", page.Body[0].Name)
	assert.Equal(t, "aaaa-1111", page.Body[0].SystemUUID)
}

func Test_APIError(t *testing.T) {
	c, mux := newTestClient(t)

	mux.HandleFunc("/management/v1/subscriptions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error": {"code": "403", "message": "Insufficient permissions"}}`)
	})

	_, err := c.Subscriptions(context.Background(), 100, 0)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "Failed requests must yield a typed *APIError")
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "Insufficient permissions", apiErr.Message)
	assert.True(t, apiErr.IsAuth(), "403 is an authorization failure")
	assert.Contains(t, apiErr.Error(), "Insufficient permissions")
}

func Test_APIError_UnexpectedBody(t *testing.T) {
	c, mux := newTestClient(t)

	mux.HandleFunc("/management/v1/errata", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `<html>Bad Gateway</html>`)
	})

	_, err := c.Errata(context.Background(), 100, 0)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.False(t, apiErr.IsAuth())
	assert.Empty(t, apiErr.Message, "Non-envelope bodies are tolerated")
}
