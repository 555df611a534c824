package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danaam/danaam-go/domain"
	"github.com/danaam/danaam-go/internal/mocks"
	"github.com/danaam/danaam-go/internal/session"
)

// tokenSource is a scriptable TokenSource for transport tests.
type tokenSource struct {
	mu      sync.Mutex
	token   string
	refresh func(ctx context.Context) (string, error)

	RefreshCalls int32
}

func (s *tokenSource) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *tokenSource) RefreshAccessToken(ctx context.Context) (string, error) {
	atomic.AddInt32(&s.RefreshCalls, 1)
	token, err := s.refresh(ctx)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return token, nil
}

func newAuthedClient(t *testing.T, src TokenSource) *http.Client {
	t.Helper()
	return &http.Client{Transport: &Transport{Source: src}}
}

func TestTransportRefreshesAndReplaysOnce(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"hello":"world"}`, string(body), "replay must carry the original body")
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	src := &tokenSource{token: "stale", refresh: func(ctx context.Context) (string, error) {
		return "fresh", nil
	}}
	client := newAuthedClient(t, src)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/profile", strings.NewReader(`{"hello":"world"}`))
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
	assert.Equal(t, int32(1), atomic.LoadInt32(&src.RefreshCalls))
}

func TestTransportReplaysBodylessRequestAfterRefresh(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	src := &tokenSource{token: "stale", refresh: func(ctx context.Context) (string, error) {
		return "fresh", nil
	}}
	client := newAuthedClient(t, src)

	// GET carries no body, so there is nothing to rewind on the replay.
	resp, err := client.Get(srv.URL + "/profile")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
	assert.Equal(t, int32(1), atomic.LoadInt32(&src.RefreshCalls))
}

func TestTransportDoesNotRetryTwice(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	src := &tokenSource{token: "stale", refresh: func(ctx context.Context) (string, error) {
		return "still-rejected", nil
	}}
	client := newAuthedClient(t, src)

	resp, err := client.Get(srv.URL + "/profile")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "second 401 is surfaced as-is")
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
	assert.Equal(t, int32(1), atomic.LoadInt32(&src.RefreshCalls))
}

func TestTransportMissingRefreshTokenReturnsOriginal401(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	src := &tokenSource{refresh: func(ctx context.Context) (string, error) {
		return "", domain.ErrRefreshTokenMissing
	}}
	client := newAuthedClient(t, src)

	resp, err := client.Get(srv.URL + "/profile")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTransportRefreshFailurePropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	refreshErr := errors.New("refresh token revoked")
	src := &tokenSource{token: "stale", refresh: func(ctx context.Context) (string, error) {
		return "", refreshErr
	}}
	client := newAuthedClient(t, src)

	_, err := client.Get(srv.URL + "/profile")
	require.Error(t, err)
	assert.ErrorContains(t, err, "refresh token revoked")
}

func TestConcurrent401sTriggerOneRefresh(t *testing.T) {
	var authed int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer fresh" {
			atomic.AddInt32(&authed, 1)
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := mocks.NewMockTokenStore()
	store.Seed(&domain.Session{
		UserID: "user-1", Role: domain.RoleUser,
		AccessToken: "stale", RefreshToken: "refresh-1",
	})
	auth := mocks.NewMockAuthGateway()
	auth.RefreshTokenFunc = func(ctx context.Context, userID, refreshToken string) (*domain.RefreshResult, error) {
		time.Sleep(30 * time.Millisecond)
		return &domain.RefreshResult{AccessToken: "fresh"}, nil
	}
	mgr := session.NewManager(store, auth)
	mgr.Initialize(context.Background())
	client := newAuthedClient(t, mgr)

	const callers = 6
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := client.Get(srv.URL + "/profile")
			if assert.NoError(t, err) {
				resp.Body.Close()
				assert.Equal(t, http.StatusOK, resp.StatusCode)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(callers), atomic.LoadInt32(&authed))
	assert.Equal(t, 1, auth.RefreshCalls, "concurrent 401s must share one refresh")
}
