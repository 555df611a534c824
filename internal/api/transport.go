package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/danaam/danaam-go/domain"
)

// TokenSource supplies the current bearer credential and knows how to obtain
// a fresh one when the backend rejects it. The session manager implements
// this; tests substitute their own.
type TokenSource interface {
	// AccessToken returns the current access token, or "" when logged out.
	AccessToken() string
	// RefreshAccessToken exchanges the stored refresh token for a new access
	// token. It must return domain.ErrRefreshTokenMissing when there is
	// nothing to refresh with; any other error means the refresh call itself
	// failed and the session has been torn down.
	RefreshAccessToken(ctx context.Context) (string, error)
}

// Transport is an http.RoundTripper that attaches the bearer credential to
// every request and, on a 401 response, refreshes the token and replays the
// original request exactly once. A 401 on the replayed attempt is surfaced
// as-is; the retry accounting is local to one RoundTrip call, so no request
// can loop.
type Transport struct {
	Base   http.RoundTripper
	Source TokenSource
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Source == nil {
		return t.base().RoundTrip(req)
	}

	const maxAttempts = 2
	for attempt := 1; ; attempt++ {
		out := req.Clone(req.Context())
		if tok := t.Source.AccessToken(); tok != "" {
			out.Header.Set("Authorization", "Bearer "+tok)
		} else {
			out.Header.Del("Authorization")
		}
		if attempt > 1 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			out.Body = body
		}

		resp, err := t.base().RoundTrip(out)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusUnauthorized || attempt >= maxAttempts {
			return resp, nil
		}
		// A request whose body cannot be rewound cannot be replayed.
		if req.Body != nil && req.GetBody == nil {
			return resp, nil
		}

		_, err = t.Source.RefreshAccessToken(req.Context())
		if errors.Is(err, domain.ErrRefreshTokenMissing) {
			// Nothing to refresh with; the caller gets the original 401.
			return resp, nil
		}
		if err != nil {
			// The refresh call failed. That failure, not the original 401,
			// is what reaches the caller.
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil, err
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
}
