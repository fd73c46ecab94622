package ledger_test

import (
	"context"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	httpapi "github.com/storefrontbuilder/ledger/internal/ledger/http"
	"github.com/storefrontbuilder/ledger/internal/ledger/queue"
	"github.com/storefrontbuilder/ledger/internal/ledger/service"
	"github.com/storefrontbuilder/ledger/internal/ledger/storage"
	"github.com/storefrontbuilder/ledger/internal/ledger/store/drivers/sqlite"
	"github.com/storefrontbuilder/ledger/pkg/cryptox"
	"github.com/storefrontbuilder/ledger/pkg/jwtx"
	"github.com/storefrontbuilder/ledger/pkg/ledgersdk"
	"github.com/storefrontbuilder/ledger/pkg/slogx"
)

/*
 * Common fixtures for ledger service end-to-end tests. The whole stack runs
 * in-process: a real SQLite database, the production router and middleware,
 * and the SDK talking to it over an httptest server.
 */

const (
	testIssuer   = "http://localhost:8080"
	testEmail    = "a@b.com"
	testPassword = "Hunter22!"
	testFullName = "Alice Example"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "ledger-e2e")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// capturePub records published events so tests can fish the verification
// link back out of the pipeline, standing in for the email worker.
type capturePub struct {
	mu     sync.Mutex
	events []capturedEvent
}

type capturedEvent struct {
	key   string
	event any
}

func (p *capturePub) Publish(ctx context.Context, exchange, key string, event any, reqID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, capturedEvent{key: key, event: event})
	return nil
}

func (p *capturePub) Close() error { return nil }

func (p *capturePub) lastVerification(t *testing.T) queue.VerificationRequested {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.events) - 1; i >= 0; i-- {
		if p.events[i].key == queue.KeyVerificationRequested {
			return p.events[i].event.(queue.VerificationRequested)
		}
	}
	t.Fatal("no verification event published")
	return queue.VerificationRequested{}
}

type fixture struct {
	srv    *httptest.Server
	client *ledgersdk.Client
	pub    *capturePub
}

// newFixture stands up the full service and an SDK client pointed at it.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "ledger_e2e.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewEphemeralSignerEdDSA("e2e-key")
	require.NoError(t, err)

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))
	verifier := jwtx.NewVerifierEdDSA(keys, testIssuer)

	objects, err := storage.NewStore(t.TempDir(), testIssuer)
	require.NoError(t, err)

	logger := slogx.New(slogx.Config{
		Service: "ledger-e2e",
		Env:     "test",
		Level:   "error",
		Format:  "text",
	})

	pub := &capturePub{}
	profiles := &service.ProfileService{Store: st}
	verification := &service.VerificationService{
		Store:     st,
		Publisher: pub,
		BaseURL:   testIssuer,
	}
	auth := &service.AuthService{
		Store:      st,
		Signer:     signer,
		Publisher:  pub,
		Verifier:   verification,
		Issuer:     testIssuer,
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}
	verification.Auth = auth

	router := httpapi.NewRouter(keys, verifier, "e2e", st, objects, logger)
	router.AuthService = auth
	router.VerificationService = verification
	router.ProfileService = profiles
	router.CategoryService = &service.CategoryService{Store: st}
	router.TransactionService = &service.TransactionService{Store: st, Storage: objects}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &fixture{
		srv:    srv,
		client: ledgersdk.NewClient(srv.URL),
		pub:    pub,
	}
}

// linkToken extracts the confirmation token from the emailed verify URL.
func linkToken(t *testing.T, verifyURL string) string {
	t.Helper()
	u, err := url.Parse(verifyURL)
	require.NoError(t, err)
	tok := u.Query().Get("token_hash")
	require.NotEmpty(t, tok)
	return tok
}

// signUp registers the default test account and returns the link token from
// the captured verification event.
func (f *fixture) signUp(t *testing.T) string {
	t.Helper()

	resp, err := f.client.SignUp(context.Background(), ledgersdk.SignUpRequest{
		Email:    testEmail,
		Password: testPassword,
		FullName: testFullName,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	require.Nil(t, resp.Session, "unconfirmed sign-up must not return a session")

	return linkToken(t, f.pub.lastVerification(t).VerifyURL)
}

// signUpAndVerify runs the whole registration flow and returns a signed-in
// session.
func (f *fixture) signUpAndVerify(t *testing.T) *ledgersdk.Session {
	t.Helper()

	token := f.signUp(t)
	session, err := f.client.Verify(context.Background(), ledgersdk.VerifyRequest{
		TokenHash: token,
		Type:      "email",
	})
	require.NoError(t, err)
	require.NotNil(t, session)
	return session
}
