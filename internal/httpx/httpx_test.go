package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClient_Do_DefaultHeaders(t *testing.T) {
	t.Parallel()

	// Arrange
	headers := make(chan http.Header, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()
	c := New(time.Second)

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL, http.NoBody)
	require.NoError(t, err)

	// Act
	res, err := c.Do(req)

	// Assert
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusNoContent, res.StatusCode)
	got := <-headers
	require.Equal(t, DefaultUserAgent, got.Get("User-Agent"))
	require.Equal(t, "application/json", got.Get("Accept"))
}

func TestClient_Do_KeepsRequestHeaders(t *testing.T) {
	t.Parallel()

	// Arrange
	headers := make(chan http.Header, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
	}))
	defer srv.Close()
	c := New(time.Second)
	c.Headers["X-Trace"] = "abc"

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL, http.NoBody)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "custom/2.0")
	req.Header.Set("Accept", "text/csv")

	// Act
	res, err := c.Do(req)

	// Assert
	require.NoError(t, err)
	defer res.Body.Close()
	got := <-headers
	require.Equal(t, "custom/2.0", got.Get("User-Agent"))
	require.Equal(t, "text/csv", got.Get("Accept"))
	require.Equal(t, "abc", got.Get("X-Trace"))
}
