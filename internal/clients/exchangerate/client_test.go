package exchangerate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantagefin/vantage/internal/clientdata"
	"github.com/vantagefin/vantage/internal/database"
)

func newTestRepo(t *testing.T) *clientdata.Repository {
	t.Helper()

	db, err := database.New(database.Config{
		Path: fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		Name: "test",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	return clientdata.NewRepository(db.Conn())
}

func TestGetRate_SameCurrency(t *testing.T) {
	c := NewClient("", nil, zerolog.Nop())

	rate, err := c.GetRate(context.Background(), "USD", "USD")
	require.NoError(t, err)
	assert.Equal(t, 1.0, rate)
}

func TestGetRate_FetchesFromAPI(t *testing.T) {
	var requestedPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"base":"EUR","rates":{"USD":1.0842,"GBP":0.8571}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, zerolog.Nop())

	rate, err := c.GetRate(context.Background(), "EUR", "USD")
	require.NoError(t, err)
	assert.Equal(t, 1.0842, rate)
	assert.Equal(t, "/EUR", requestedPath)
}

func TestGetRate_CacheHitSkipsAPI(t *testing.T) {
	repo := newTestRepo(t)
	apiCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiCalls++
		fmt.Fprint(w, `{"rates":{"USD":1.0842}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, repo, zerolog.Nop())

	first, err := c.GetRate(context.Background(), "EUR", "USD")
	require.NoError(t, err)
	second, err := c.GetRate(context.Background(), "EUR", "USD")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, apiCalls)
}

func TestGetRate_StaleCacheFallbackOnAPIError(t *testing.T) {
	repo := newTestRepo(t)
	// Expired entry: fresh reads skip it, the stale fallback does not.
	require.NoError(t, repo.Store("exchangerate", "EUR:USD",
		map[string]float64{"rate": 1.07}, -time.Minute))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, repo, zerolog.Nop())

	rate, err := c.GetRate(context.Background(), "EUR", "USD")
	require.NoError(t, err)
	assert.Equal(t, 1.07, rate)
}

func TestGetRate_ErrorWithoutCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, zerolog.Nop())

	_, err := c.GetRate(context.Background(), "EUR", "USD")
	assert.Error(t, err)
}

func TestGetRate_MissingTargetCurrency(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"rates":{"GBP":0.85}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, zerolog.Nop())

	_, err := c.GetRate(context.Background(), "EUR", "USD")
	assert.ErrorContains(t, err, "rate not found")
}
