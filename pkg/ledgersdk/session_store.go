package ledgersdk

import (
	"context"
	"log/slog"
	"sync"
)

// SessionState is a snapshot of the store for subscribers. Loading is true
// while an auth call is in flight; Session is nil when signed out.
type SessionState struct {
	Session *Session
	Loading bool
}

// SessionStore tracks the current signed-in session and tells subscribers
// when it changes. It is the client-side source of truth for "who is signed
// in right now".
//
// After every confirmed sign-in the store runs the ProfileProvisioner so the
// account's profile row exists before the app asks for it. Provisioning
// failures are logged and swallowed: a profile hiccup must never turn a
// successful sign-in into an error.
type SessionStore struct {
	Client      *Client
	Provisioner *ProfileProvisioner
	Logger      *slog.Logger

	mu      sync.RWMutex
	session *Session
	loading bool
	nextID  int
	subs    map[int]func(SessionState)
}

// NewSessionStore creates a session store backed by the given client.
func NewSessionStore(client *Client, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		Client:      client,
		Provisioner: &ProfileProvisioner{Logger: logger},
		Logger:      logger,
		subs:        map[int]func(SessionState){},
	}
}

// State returns the current snapshot.
func (st *SessionStore) State() SessionState {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return SessionState{Session: st.session, Loading: st.loading}
}

// Session returns the current session, or nil when signed out.
func (st *SessionStore) Session() *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.session
}

// Subscribe registers a listener called on every state change. The returned
// function removes the listener.
func (st *SessionStore) Subscribe(fn func(SessionState)) func() {
	st.mu.Lock()
	id := st.nextID
	st.nextID++
	st.subs[id] = fn
	st.mu.Unlock()

	return func() {
		st.mu.Lock()
		delete(st.subs, id)
		st.mu.Unlock()
	}
}

// setState mutates the store under the lock and notifies subscribers after
// releasing it, so listeners can call back into the store.
func (st *SessionStore) setState(session *Session, loading bool) {
	st.mu.Lock()
	st.session = session
	st.loading = loading
	state := SessionState{Session: session, Loading: loading}
	listeners := make([]func(SessionState), 0, len(st.subs))
	for _, fn := range st.subs {
		listeners = append(listeners, fn)
	}
	st.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}

// Init restores a session from persisted tokens, validating them against
// the server. The store reports loading until the lookup resolves; invalid
// tokens resolve to signed-out rather than an error, since there is nothing
// for the app to do about them but show the sign-in screen.
func (st *SessionStore) Init(ctx context.Context, accessToken, refreshToken string) {
	if accessToken == "" && refreshToken == "" {
		st.setState(nil, false)
		return
	}

	st.setState(nil, true)

	session := st.Client.SessionFromTokens(nil, accessToken, refreshToken, 0)
	if _, err := session.Me(ctx); err != nil {
		st.Logger.DebugContext(ctx, "stored session is no longer valid", "error", err)
		st.setState(nil, false)
		return
	}

	st.setState(session, false)
}

// SignUp registers an account. No session results: the account cannot sign
// in until its email is confirmed.
func (st *SessionStore) SignUp(ctx context.Context, req SignUpRequest) (*SessionResponse, error) {
	st.setState(st.Session(), true)
	resp, err := st.Client.SignUp(ctx, req)
	st.setState(st.Session(), false)
	return resp, err
}

// SignIn authenticates and stores the resulting session. The store reports
// a loading state for the duration of the call.
func (st *SessionStore) SignIn(ctx context.Context, email, password string) (*Session, error) {
	st.setState(st.Session(), true)

	session, err := st.Client.SignIn(ctx, email, password)
	if err != nil {
		st.setState(st.Session(), false)
		return nil, err
	}

	st.Adopt(ctx, session)
	return session, nil
}

// Adopt installs an externally created session, e.g. one minted by the
// email verification flow, and runs profile provisioning for it.
func (st *SessionStore) Adopt(ctx context.Context, session *Session) {
	if session != nil && st.Provisioner != nil {
		if err := st.Provisioner.Ensure(ctx, session); err != nil {
			// Intentionally non-fatal.
			st.Logger.WarnContext(ctx, "profile provisioning failed", "error", err)
		}
	}

	st.setState(session, false)
}

// SignOut revokes the current session's refresh token and clears the store.
// The store is cleared even when revocation fails; the token will age out.
func (st *SessionStore) SignOut(ctx context.Context) error {
	session := st.Session()
	st.setState(nil, false)

	if session == nil {
		return nil
	}

	if err := session.Revoke(ctx); err != nil {
		st.Logger.WarnContext(ctx, "sign-out revocation failed", "error", err)
		return err
	}
	return nil
}
