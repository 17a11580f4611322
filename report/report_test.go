// Copyright (c) 2019 Antonio Romito
// SPDX-License-Identifier: GPL-3.0-or-later

package report

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/antonioromito/rhsm-api-client/rhsm"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newInventoryServer serves a token endpoint plus a /systems listing backed
// by the given records, paged by the limit/offset query params the same way
// the real API pages
func newInventoryServer(t *testing.T, systems []rhsm.System, requests *int) *rhsm.Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"test-token","token_type":"Bearer","expires_in":900}`)
	})
	mux.HandleFunc("/management/v1/systems", func(w http.ResponseWriter, r *http.Request) {
		*requests++

		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		require.NoError(t, err)
		offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
		require.NoError(t, err)

		end := offset + limit
		if offset > len(systems) {
			offset = len(systems)
		}
		if end > len(systems) {
			end = len(systems)
		}
		page := systems[offset:end]

		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(map[string]interface{}{
			"pagination": rhsm.Pagination{Count: len(page), Limit: limit, Offset: offset},
			"body":       page,
		})
		require.NoError(t, err)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := rhsm.NewClient(context.Background(), rhsm.Credentials{}, srv.URL+"/token",
		rhsm.WithBaseURL(srv.URL+"/management/v1"),
		rhsm.WithRequestsPerSecond(0),
		rhsm.WithLogger(hclog.NewNullLogger()),
	)
	require.NoError(t, err)
	return c
}

func Test_Systems(t *testing.T) {
	t.Run("Walks every page and stops on the short one", func(t *testing.T) {
		inventory := []rhsm.System{
			{Name: "host-01", UUID: "aaaa-1111"},
			{Name: "host-02", UUID: "bbbb-2222"},
			{Name: "host-03", UUID: "cccc-3333"},
		}
		requests := 0
		c := newInventoryServer(t, inventory, &requests)

		all, err := Systems(context.Background(), c, 2)
		require.NoError(t, err)

		assert.Len(t, all, 3, "All records across pages are collected")
		assert.Equal(t, "host-03", all[2].Name)
		assert.Equal(t, 2, requests, "A short second page ends the walk")
	})

	t.Run("A page count that is a multiple of the limit takes one extra request", func(t *testing.T) {
		inventory := []rhsm.System{
			{Name: "host-01", UUID: "aaaa-1111"},
			{Name: "host-02", UUID: "bbbb-2222"},
		}
		requests := 0
		c := newInventoryServer(t, inventory, &requests)

		all, err := Systems(context.Background(), c, 2)
		require.NoError(t, err)

		assert.Len(t, all, 2)
		assert.Equal(t, 2, requests, "The empty trailing page terminates the walk")
	})

	t.Run("Empty inventory", func(t *testing.T) {
		requests := 0
		c := newInventoryServer(t, nil, &requests)

		all, err := Systems(context.Background(), c, 100)
		require.NoError(t, err)

		assert.Empty(t, all)
		assert.Equal(t, 1, requests)
	})
}

func Test_Transform(t *testing.T) {
	systems := []rhsm.System{
		{
			Name:              "host-01",
			UUID:              "aaaa-1111",
			Type:              "physical",
			EntitlementCount:  2,
			EntitlementStatus: "valid",
			LastCheckin:       "2019-02-07T13:30:00.000Z",
			SecurityCount:     3,
			BugfixCount:       1,
			EnhancementCount:  4,
		},
	}

	rows, err := Transform(systems)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "host-01", rows[0]["Name"])
	assert.Equal(t, "aaaa-1111", rows[0]["UUID"])
	assert.Equal(t, "2", rows[0]["EntitlementCount"], "Integers are rendered as decimal strings")
	assert.Equal(t, "3", rows[0]["SecurityCount"])
	assert.Equal(t, "2019-02-07T13:30:00.000Z", rows[0]["LastCheckin"])
}

func Test_Transform_NotASlice(t *testing.T) {
	_, err := Transform(rhsm.System{})
	assert.Error(t, err, "Single records are rejected; pass a slice")
}

func Test_ValidateInputFields(t *testing.T) {
	tests := []struct {
		name           string
		inputFields    string
		prototype      interface{}
		expectedOutput []string
		expectErr      bool
	}{
		{
			name:           "Valid system fields",
			inputFields:    "Name,UUID,SecurityCount",
			prototype:      &rhsm.System{},
			expectedOutput: []string{"Name", "UUID", "SecurityCount"},
		},
		{
			name:           "Whitespace is trimmed and duplicates dropped",
			inputFields:    " Name , UUID ,Name",
			prototype:      &rhsm.System{},
			expectedOutput: []string{"Name", "UUID"},
		},
		{
			name:        "Unknown field is rejected",
			inputFields: "Name,Hostname",
			prototype:   &rhsm.System{},
			expectErr:   true,
		},
		{
			name:           "Subscription fields validate against the subscription record",
			inputFields:    "SubscriptionName,Quantity",
			prototype:      &rhsm.Subscription{},
			expectedOutput: []string{"SubscriptionName", "Quantity"},
		},
		{
			name:        "System fields do not validate against the package record",
			inputFields: "EntitlementStatus",
			prototype:   &rhsm.Package{},
			expectErr:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actualOutput, err := ValidateInputFields(tt.inputFields, tt.prototype)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedOutput, actualOutput)
		})
	}
}
