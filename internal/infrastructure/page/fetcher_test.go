package page

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/productlens/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_ParsesHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Chrome")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body><span id="productTitle">Echo Dot</span></body></html>`))
	}))
	defer server.Close()

	f := NewFetcher(Config{Timeout: 5 * time.Second})
	doc, finalURL, err := f.Fetch(context.Background(), server.URL+"/dp/B000")

	require.NoError(t, err)
	assert.Equal(t, server.URL+"/dp/B000", finalURL)
	assert.Equal(t, "Echo Dot", doc.Find("#productTitle").Text())
}

func TestFetch_FollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html></html>`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := NewFetcher(Config{Timeout: 5 * time.Second})
	_, finalURL, err := f.Fetch(context.Background(), server.URL+"/old")

	require.NoError(t, err)
	assert.Equal(t, server.URL+"/new", finalURL)
}

func TestFetch_RejectsErrorsAndNonHTML(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
	}{
		{"server error", http.StatusServiceUnavailable, "text/html"},
		{"not found", http.StatusNotFound, "text/html"},
		{"json body", http.StatusOK, "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				w.Write([]byte(`{}`))
			}))
			defer server.Close()

			f := NewFetcher(Config{Timeout: 5 * time.Second})
			doc, _, err := f.Fetch(context.Background(), server.URL)

			assert.Nil(t, doc)
			assert.ErrorIs(t, err, domain.ErrPageFetchFailure)
		})
	}
}

func TestIsHTMLContentType(t *testing.T) {
	assert.True(t, isHTMLContentType("text/html; charset=utf-8"))
	assert.True(t, isHTMLContentType("application/xhtml+xml"))
	assert.False(t, isHTMLContentType("application/json"))
	assert.False(t, isHTMLContentType(""))
}
