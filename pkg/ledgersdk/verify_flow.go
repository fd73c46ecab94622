package ledgersdk

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"
)

// VerifyState is the outcome bucket an email confirmation attempt lands in.
type VerifyState string

const (
	VerifyStateVerifying        VerifyState = "verifying"
	VerifyStateSuccess          VerifyState = "success"
	VerifyStateAlreadyConfirmed VerifyState = "already_confirmed"
	VerifyStateError            VerifyState = "error"
)

// DefaultRedirectDelay is how long a successful confirmation lingers on the
// status page before redirecting, giving the user time to read it.
const DefaultRedirectDelay = 3 * time.Second

// VerifyResult is the terminal state of a confirmation attempt.
type VerifyResult struct {
	State   VerifyState
	Message string
	Session *Session // non-nil only on success
}

// VerifyFlow drives the email confirmation landing page: it redeems the
// token from the link, classifies the outcome and, on success, schedules a
// redirect the user can still cancel by navigating away (Close).
type VerifyFlow struct {
	Client        *Client
	RedirectDelay time.Duration // 0 means DefaultRedirectDelay
	OnRedirect    func()        // called once after the delay, unless cancelled

	mu    sync.Mutex
	timer *time.Timer
}

// TokenFromURL pulls the confirmation token out of an emailed link.
// token_hash is the current parameter name; token is accepted for links
// generated before the rename.
func TokenFromURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	q := u.Query()
	if tok := q.Get("token_hash"); tok != "" {
		return tok
	}
	return q.Get("token")
}

// TypeFromURL pulls the verification type out of an emailed link. Links
// without an explicit type are email confirmations.
func TypeFromURL(u *url.URL) string {
	if u == nil {
		return "email"
	}

	if typ := u.Query().Get("type"); typ != "" {
		return typ
	}
	return "email"
}

// Run redeems the confirmation token and returns the terminal state. The
// otpType comes from the link's type parameter (TypeFromURL); empty means
// "email".
//
// A missing token is decided locally: the link is broken, so there is
// nothing to send and no server call is made. An account that was already
// confirmed is not an error, it just means the user clicked the link twice;
// they can go sign in. An expired token gets a message telling the user to
// request a fresh email.
func (f *VerifyFlow) Run(ctx context.Context, tokenHash, otpType string) VerifyResult {
	if tokenHash == "" {
		return VerifyResult{
			State:   VerifyStateError,
			Message: "No confirmation token found in the link. Please use the link from your email.",
		}
	}

	if otpType == "" {
		otpType = "email"
	}

	session, err := f.Client.Verify(ctx, VerifyRequest{TokenHash: tokenHash, Type: otpType})
	if err != nil {
		return classifyVerifyError(err)
	}

	f.scheduleRedirect()

	return VerifyResult{
		State:   VerifyStateSuccess,
		Message: "Email confirmed. Redirecting...",
		Session: session,
	}
}

// Close cancels a pending redirect. Safe to call at any point, any number
// of times.
func (f *VerifyFlow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}

func (f *VerifyFlow) scheduleRedirect() {
	if f.OnRedirect == nil {
		return
	}

	delay := f.RedirectDelay
	if delay <= 0 {
		delay = DefaultRedirectDelay
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.timer = time.AfterFunc(delay, f.OnRedirect)
}

// classifyVerifyError buckets a redemption failure. Structured error codes
// are preferred; when a proxy or older server strips them, the message text
// is matched as a fallback, so the known phrasings keep working.
func classifyVerifyError(err error) VerifyResult {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case "already_confirmed":
			return VerifyResult{
				State:   VerifyStateAlreadyConfirmed,
				Message: apiErr.Message,
			}
		case "otp_expired":
			return VerifyResult{
				State:   VerifyStateError,
				Message: "This confirmation link has expired. Please request a new verification email.",
			}
		}

		return classifyVerifyMessage(apiErr.Message)
	}

	return VerifyResult{State: VerifyStateError, Message: err.Error()}
}

func classifyVerifyMessage(message string) VerifyResult {
	lower := strings.ToLower(message)

	if strings.Contains(lower, "already been confirmed") {
		return VerifyResult{State: VerifyStateAlreadyConfirmed, Message: message}
	}

	if strings.Contains(lower, "expired") {
		return VerifyResult{
			State:   VerifyStateError,
			Message: "This confirmation link has expired. Please request a new verification email.",
		}
	}

	return VerifyResult{State: VerifyStateError, Message: message}
}
