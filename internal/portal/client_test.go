package portal

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientGetUsesContentDispositionFilename(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sharing/rest/content/items/A1/data", r.URL.Path)
		w.Header().Set("Content-Disposition", `attachment; filename="streets.zip"`)
		_, _ = w.Write([]byte("payload"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	payload, err := c.Get(context.Background(), "A1")
	require.NoError(t, err)
	defer payload.Body.Close()

	require.Equal(t, "A1", payload.ItemID)
	require.Equal(t, "streets.zip", payload.Filename)

	body, err := io.ReadAll(payload.Body)
	require.NoError(t, err)
	require.Equal(t, "payload", string(body))
}

func TestClientGetFallsBackToURLPathSegment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("payload"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	payload, err := c.Get(context.Background(), "A1")
	require.NoError(t, err)
	defer payload.Body.Close()

	require.Equal(t, "data", payload.Filename)
}

func TestClientGetRejectsNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such item", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.Get(context.Background(), "missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing")
}

func TestClientGetSendsUserAgent(t *testing.T) {
	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	c.UserAgent = "portalsync/test"
	payload, err := c.Get(context.Background(), "A1")
	require.NoError(t, err)
	payload.Body.Close()

	require.Equal(t, "portalsync/test", agent)
}
