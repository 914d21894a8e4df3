package imagesearch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPexelsClient_FindImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)
		assert.Equal(t, "resilient tree", r.URL.Query().Get("query"))
		assert.Equal(t, "1", r.URL.Query().Get("per_page"))
		assert.Equal(t, "secret", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"photos":[{"src":{"large":"https://images.pexels.com/1.jpg"}}]}`)
	}))
	defer server.Close()

	client := NewPexelsClient(server.URL, "secret", 0, testLogger())
	imageURL, err := client.FindImage(context.Background(), " resilient tree ")
	require.NoError(t, err)
	assert.Equal(t, "https://images.pexels.com/1.jpg", imageURL)
}

func TestPexelsClient_NoPhotos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"photos":[]}`)
	}))
	defer server.Close()

	imageURL, err := NewPexelsClient(server.URL, "secret", 0, testLogger()).FindImage(context.Background(), "zzz")
	require.NoError(t, err)
	assert.Empty(t, imageURL)
}

func TestPexelsClient_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, "rate limited")
	}))
	defer server.Close()

	_, err := NewPexelsClient(server.URL, "secret", 0, testLogger()).FindImage(context.Background(), "word")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	_, err = NewPexelsClient(server.URL, "", 0, testLogger()).FindImage(context.Background(), "word")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
