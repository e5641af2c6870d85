package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckURL_Reachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := &http.Client{Timeout: time.Second}
	assert.NoError(t, checkURL(context.Background(), client, srv.URL))
}

func TestCheckURL_RedirectCountsAsReachable(t *testing.T) {
	// The login page answers anonymous requests with a redirect to the
	// identity provider; that still proves the host is up.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			http.Redirect(w, r, "/sso", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := &http.Client{Timeout: time.Second}
	assert.NoError(t, checkURL(context.Background(), client, srv.URL+"/login"))
}

func TestCheckURL_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	url := srv.URL
	srv.Close()

	client := &http.Client{Timeout: time.Second}
	err := checkURL(context.Background(), client, url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reach")
}

func TestCheckURL_BadURL(t *testing.T) {
	client := &http.Client{Timeout: time.Second}
	assert.Error(t, checkURL(context.Background(), client, "://not-a-url"))
}
