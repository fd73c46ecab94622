package ledgersdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVerifyServer(t *testing.T, hits *atomic.Int64, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	return NewClient(srv.URL)
}

func TestTokenFromURL(t *testing.T) {
	parse := func(raw string) *url.URL {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		return u
	}

	assert.Equal(t, "abc", TokenFromURL(parse("https://x/auth/confirm?token_hash=abc&type=email")))
	assert.Equal(t, "legacy", TokenFromURL(parse("https://x/auth/confirm?token=legacy")))
	assert.Equal(t, "abc", TokenFromURL(parse("https://x/auth/confirm?token_hash=abc&token=legacy")),
		"token_hash wins over the legacy parameter")
	assert.Empty(t, TokenFromURL(parse("https://x/auth/confirm")))
	assert.Empty(t, TokenFromURL(nil))
}

func TestVerifyFlowMissingTokenDecidedLocally(t *testing.T) {
	var hits atomic.Int64
	client := newVerifyServer(t, &hits, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for a missing token")
	})

	flow := &VerifyFlow{Client: client}
	result := flow.Run(context.Background(), "", "email")

	assert.Equal(t, VerifyStateError, result.State)
	assert.Nil(t, result.Session)
	assert.Equal(t, int64(0), hits.Load(), "missing token must not hit the server")
}

func TestVerifyFlowSuccessSchedulesRedirect(t *testing.T) {
	var hits atomic.Int64
	client := newVerifyServer(t, &hits, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/auth/verify", r.URL.Path)

		var req VerifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tok-123", req.TokenHash)
		assert.Equal(t, "email", req.Type, "an empty type defaults to email")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(SessionResponse{
			User:    &User{ID: "u1", Email: "a@b.com", EmailConfirmed: true},
			Session: &TokenResponse{AccessToken: "at", RefreshToken: "rt", TokenType: "Bearer", ExpiresIn: 900},
		})
	})

	redirected := make(chan struct{})
	flow := &VerifyFlow{
		Client:        client,
		RedirectDelay: 10 * time.Millisecond,
		OnRedirect:    func() { close(redirected) },
	}

	result := flow.Run(context.Background(), "tok-123", "")
	require.Equal(t, VerifyStateSuccess, result.State)
	require.NotNil(t, result.Session)
	assert.Equal(t, "a@b.com", result.Session.User().Email)

	select {
	case <-redirected:
	case <-time.After(time.Second):
		t.Fatal("redirect did not fire")
	}
}

func TestVerifyFlowCloseCancelsRedirect(t *testing.T) {
	var hits atomic.Int64
	client := newVerifyServer(t, &hits, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(SessionResponse{
			User:    &User{ID: "u1", Email: "a@b.com", EmailConfirmed: true},
			Session: &TokenResponse{AccessToken: "at", RefreshToken: "rt", ExpiresIn: 900},
		})
	})

	var fired atomic.Bool
	flow := &VerifyFlow{
		Client:        client,
		RedirectDelay: 50 * time.Millisecond,
		OnRedirect:    func() { fired.Store(true) },
	}

	result := flow.Run(context.Background(), "tok-123", "email")
	require.Equal(t, VerifyStateSuccess, result.State)

	flow.Close()
	time.Sleep(150 * time.Millisecond)
	assert.False(t, fired.Load(), "redirect must not fire after Close")
}

func TestVerifyFlowAlreadyConfirmedCode(t *testing.T) {
	var hits atomic.Int64
	client := newVerifyServer(t, &hits, func(w http.ResponseWriter, r *http.Request) {
		ErrAlreadyConfirmed.WriteError(w)
	})

	flow := &VerifyFlow{Client: client}
	result := flow.Run(context.Background(), "tok-123", "email")

	assert.Equal(t, VerifyStateAlreadyConfirmed, result.State)
	assert.Contains(t, result.Message, "already been confirmed")
	assert.Nil(t, result.Session)
}

func TestVerifyFlowAlreadyConfirmedMessageFallback(t *testing.T) {
	// A server that only speaks the legacy shape: recognizable message,
	// no useful code.
	var hits atomic.Int64
	client := newVerifyServer(t, &hits, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"bad_request","message":"Email has already been confirmed"}`))
	})

	flow := &VerifyFlow{Client: client}
	result := flow.Run(context.Background(), "tok-123", "email")

	assert.Equal(t, VerifyStateAlreadyConfirmed, result.State)
}

func TestVerifyFlowExpiredToken(t *testing.T) {
	var hits atomic.Int64
	client := newVerifyServer(t, &hits, func(w http.ResponseWriter, r *http.Request) {
		ErrOTPExpired.WriteError(w)
	})

	flow := &VerifyFlow{Client: client}
	result := flow.Run(context.Background(), "tok-123", "email")

	assert.Equal(t, VerifyStateError, result.State)
	assert.Contains(t, result.Message, "request a new verification email")
}

func TestVerifyFlowExpiredMessageFallback(t *testing.T) {
	var hits atomic.Int64
	client := newVerifyServer(t, &hits, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`token has expired`))
	})

	flow := &VerifyFlow{Client: client}
	result := flow.Run(context.Background(), "tok-123", "email")

	assert.Equal(t, VerifyStateError, result.State)
	assert.Contains(t, result.Message, "expired")
}

func TestTypeFromURL(t *testing.T) {
	parse := func(raw string) *url.URL {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		return u
	}

	assert.Equal(t, "email", TypeFromURL(parse("https://x/auth/confirm?token_hash=abc")))
	assert.Equal(t, "magiclink", TypeFromURL(parse("https://x/auth/confirm?token_hash=abc&type=magiclink")))
	assert.Equal(t, "email", TypeFromURL(nil))
}

func TestVerifyFlowThreadsTypeFromLink(t *testing.T) {
	link, err := url.Parse("https://x/auth/confirm?token_hash=tok-123&type=magiclink")
	require.NoError(t, err)

	var hits atomic.Int64
	client := newVerifyServer(t, &hits, func(w http.ResponseWriter, r *http.Request) {
		var req VerifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tok-123", req.TokenHash)
		assert.Equal(t, "magiclink", req.Type)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(SessionResponse{
			User:    &User{ID: "u1", Email: "a@b.com", EmailConfirmed: true},
			Session: &TokenResponse{AccessToken: "at", RefreshToken: "rt", ExpiresIn: 900},
		})
	})

	flow := &VerifyFlow{Client: client}
	result := flow.Run(context.Background(), TokenFromURL(link), TypeFromURL(link))

	assert.Equal(t, VerifyStateSuccess, result.State)
	assert.Equal(t, int64(1), hits.Load())
}

func TestVerifyFlowEmptySuccessBodyIsAnError(t *testing.T) {
	// A 200 with no user in the body means something upstream mangled the
	// response; treating it as success would redirect with no session.
	var hits atomic.Int64
	client := newVerifyServer(t, &hits, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	flow := &VerifyFlow{
		Client:     client,
		OnRedirect: func() { t.Error("no redirect expected without a session") },
	}
	result := flow.Run(context.Background(), "tok-123", "email")

	assert.Equal(t, VerifyStateError, result.State)
	assert.Nil(t, result.Session)
}

func TestVerifyFlowGenericError(t *testing.T) {
	var hits atomic.Int64
	client := newVerifyServer(t, &hits, func(w http.ResponseWriter, r *http.Request) {
		ErrOTPInvalid.WriteError(w)
	})

	flow := &VerifyFlow{Client: client}
	result := flow.Run(context.Background(), "tok-123", "email")

	assert.Equal(t, VerifyStateError, result.State)
	assert.Nil(t, result.Session)
}
