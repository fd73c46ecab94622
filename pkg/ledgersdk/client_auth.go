package ledgersdk

import (
	"context"
	"fmt"
	"net/http"
)

// SignUp registers a new account. The account stays unconfirmed until the
// emailed link or code is redeemed, so no session is returned.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (*SessionResponse, error) {
	resp, err := c.postJSON(ctx, "/v1/auth/signup", req)
	if err != nil {
		return nil, err
	}

	var out SessionResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}

	return &out, nil
}

// SignIn exchanges credentials for an authenticated session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	resp, err := c.postJSON(ctx, "/v1/auth/signin", SignInRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	var out SessionResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	if out.Session == nil {
		return nil, fmt.Errorf("sign-in response did not include a session")
	}

	return newSession(c, &out), nil
}

// Refresh exchanges a refresh token for a new token pair. The old refresh
// token is revoked server-side.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	resp, err := c.postJSON(ctx, "/v1/auth/refresh", RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, err
	}

	var out TokenResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out, nil
}

// SignOut revokes a refresh token. Unknown tokens are not an error.
func (c *Client) SignOut(ctx context.Context, refreshToken string) error {
	resp, err := c.postJSON(ctx, "/v1/auth/signout", SignOutRequest{RefreshToken: refreshToken})
	if err != nil {
		return err
	}

	return checkStatusNoContent(resp)
}

// Verify redeems an email confirmation token or code. On success the
// account is confirmed and a signed-in session is returned.
func (c *Client) Verify(ctx context.Context, req VerifyRequest) (*Session, error) {
	resp, err := c.postJSON(ctx, "/v1/auth/verify", req)
	if err != nil {
		return nil, err
	}

	var out SessionResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	if out.User == nil {
		return nil, fmt.Errorf("verify response did not include a user")
	}

	return newSession(c, &out), nil
}

// Resend requests a fresh confirmation email for an unconfirmed account.
func (c *Client) Resend(ctx context.Context, email, redirectURL string) error {
	resp, err := c.postJSON(ctx, "/v1/auth/resend", ResendRequest{
		Email:       email,
		RedirectURL: redirectURL,
	})
	if err != nil {
		return err
	}

	return decodeJSON(resp, nil, http.StatusAccepted)
}

// Me fetches the user behind this session's access token.
func (s *Session) Me(ctx context.Context) (*User, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/auth/session", nil, nil)
	if err != nil {
		return nil, err
	}

	var out SessionResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, fmt.Errorf("session response did not include a user")
	}

	s.mu.Lock()
	s.user = out.User
	s.mu.Unlock()

	return out.User, nil
}

// SessionFromTokens rebuilds a session from stored tokens, e.g. after an
// app restart. ExpiresIn of zero forces a refresh on first use.
func (c *Client) SessionFromTokens(user *User, accessToken, refreshToken string, expiresIn int) *Session {
	s := &Session{client: c, user: user}
	s.applyTokens(&TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	})
	return s
}
