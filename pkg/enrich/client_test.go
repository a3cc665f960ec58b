package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liscraper/pkg/config"
	errs "liscraper/pkg/errors"
	"liscraper/pkg/logger"
	"liscraper/pkg/retry"
)

func newTestClient(serverURL string) *Client {
	c := NewClient(config.EnrichmentConfig{
		Enabled: true,
		BaseURL: serverURL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	}, logger.NewNopLogger())
	c.retryCfg.Backoff = &retry.ConstantBackoff{Delay: time.Millisecond}
	c.retryCfg.BackoffFor = nil
	return c
}

func TestLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/companies/acme", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"name": "Acme Corp",
			"industry": "Manufacturing",
			"founded_year": 1947,
			"employee_range": "1001-5000",
			"specialties": ["anvils", "rockets"]
		}`))
	}))
	defer server.Close()

	partial, err := newTestClient(server.URL).Lookup(context.Background(), "acme")
	require.NoError(t, err)
	require.NotNil(t, partial)

	require.NotNil(t, partial.Name)
	assert.Equal(t, "Acme Corp", *partial.Name)
	require.NotNil(t, partial.Industry)
	assert.Equal(t, "Manufacturing", *partial.Industry)
	require.NotNil(t, partial.FoundedYear)
	assert.Equal(t, 1947, *partial.FoundedYear)
	require.NotNil(t, partial.HeadCount)
	assert.Equal(t, "1001-5000", *partial.HeadCount)
	assert.Equal(t, []string{"anvils", "rockets"}, partial.Specialties)

	// Empty fields stay nil so they never overwrite scraped values
	assert.Nil(t, partial.Description)
	assert.Nil(t, partial.Website)
}

func TestLookupNotFoundIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	partial, err := newTestClient(server.URL).Lookup(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, partial)
}

func TestLookupAuthRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Lookup(context.Background(), "acme")
	require.Error(t, err)

	var typed *errs.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, errs.ErrorTypeAuth, typed.Type)
	assert.Equal(t, http.StatusUnauthorized, typed.Code)
}

func TestLookupRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name": "Acme Corp"}`))
	}))
	defer server.Close()

	partial, err := newTestClient(server.URL).Lookup(context.Background(), "acme")
	require.NoError(t, err)
	require.NotNil(t, partial)
	assert.Equal(t, 3, attempts)
}
