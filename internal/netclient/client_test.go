package netclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	c := New(5*time.Second, logrus.NewEntry(logger))
	c.backoff = BackoffConfig{MaxRetries: 3, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}
	return c
}

func TestGetReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()

	body, err := newTestClient().Get(context.Background(), srv.URL, "")
	require.NoError(t, err)
	assert.Equal(t, `{"status":"success"}`, string(body))
}

func TestGetSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	_, err := newTestClient().Get(context.Background(), srv.URL, "tok-123")
	require.NoError(t, err)
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := newTestClient().Get(context.Background(), srv.URL, "")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient().Get(context.Background(), srv.URL, "")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "a 404 will not get better on retry")
}

func TestGetHonoursContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient().Get(ctx, srv.URL, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPostFormEncodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "jwt-bearer", r.PostForm.Get("grant_type"))
		assert.Equal(t, "abc.def.ghi", r.PostForm.Get("assertion"))
		w.Write([]byte(`{"access_token":"tok"}`))
	}))
	defer srv.Close()

	form := url.Values{}
	form.Set("grant_type", "jwt-bearer")
	form.Set("assertion", "abc.def.ghi")

	body, err := newTestClient().PostForm(context.Background(), srv.URL, form)
	require.NoError(t, err)
	assert.Equal(t, `{"access_token":"tok"}`, string(body))
}
