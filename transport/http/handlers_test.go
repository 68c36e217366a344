package http

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vibearcade/arcade/adapters/events"
	"github.com/vibearcade/arcade/adapters/localauth"
	"github.com/vibearcade/arcade/adapters/sqlstore"
	"github.com/vibearcade/arcade/adapters/store"
	"github.com/vibearcade/arcade/adapters/tokenizer"
	"github.com/vibearcade/arcade/core"
	"github.com/vibearcade/arcade/internal/eth"
	"github.com/vibearcade/arcade/service"
	"golang.org/x/crypto/bcrypt"
)

var quiet = log.New(io.Discard, "", 0)

type testServer struct {
	router *gin.Engine
	db     *sqlstore.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlstore.Open(context.Background(), sqlstore.DriverSQLite, filepath.Join(t.TempDir(), "arcade.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tk := tokenizer.NewJWTTokenizer(key, "arcade-test")
	backend := localauth.NewBackend(db, tk, localauth.WithHashCost(bcrypt.MinCost))
	pub := events.NopPublisher{}

	bridge := service.NewWalletBridge(
		service.NewSignatureVerifier(),
		service.NewIdentityResolver(backend, backend, "", quiet),
		service.NewSessionMinter(backend, quiet),
		pub,
		quiet,
	)
	auth := service.NewAuthService(tk, store.NewMemoryStore(), backend, backend, pub, quiet)
	arcade := service.NewArcadeService(db, quiet)

	return &testServer{
		router: SetupRouter(NewHandlers(bridge, auth, arcade, quiet), quiet),
		db:     db,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func signedRequest(t *testing.T, signer *eth.Signer) WalletLoginRequest {
	t.Helper()
	addr := signer.Address().Hex()
	msg := eth.LoginMessage(addr, time.Now())
	sig, err := signer.SignMessage(msg)
	require.NoError(t, err)
	return WalletLoginRequest{WalletAddress: addr, Message: msg, Signature: sig}
}

type sessionResponse struct {
	Session struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
		User         struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	} `json:"session"`
}

func login(t *testing.T, s *testServer, signer *eth.Signer) sessionResponse {
	t.Helper()
	w := s.do(t, http.MethodPost, "/functions/v1/metamask-auth", signedRequest(t, signer), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestWalletLoginSuccess(t *testing.T) {
	s := newTestServer(t)
	signer, err := eth.GenerateSigner()
	require.NoError(t, err)

	resp := login(t, s, signer)
	assert.NotEmpty(t, resp.Session.AccessToken)
	assert.NotEmpty(t, resp.Session.RefreshToken)
	assert.Equal(t, "bearer", resp.Session.TokenType)
	assert.Equal(t, core.WalletEmail(core.NormalizeAddress(signer.Address().Hex()), core.DefaultWalletDomain), resp.Session.User.Email)

	again := login(t, s, signer)
	assert.Equal(t, resp.Session.User.ID, again.Session.User.ID)
}

func TestWalletLoginAlias(t *testing.T) {
	s := newTestServer(t)
	signer, err := eth.GenerateSigner()
	require.NoError(t, err)

	w := s.do(t, http.MethodPost, "/auth/wallet", signedRequest(t, signer), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestWalletLoginFailures(t *testing.T) {
	s := newTestServer(t)
	signer, err := eth.GenerateSigner()
	require.NoError(t, err)
	other, err := eth.GenerateSigner()
	require.NoError(t, err)

	tampered := signedRequest(t, signer)
	tampered.Message += "!"

	impersonated := signedRequest(t, other)
	impersonated.WalletAddress = signer.Address().Hex()

	badAddress := signedRequest(t, signer)
	badAddress.WalletAddress = "0x1234"

	tests := []struct {
		name string
		body any
		want string
	}{
		{"tampered message", tampered, "Invalid signature"},
		{"other signer", impersonated, "Invalid signature"},
		{"bad address", badAddress, "Invalid signature"},
		{"garbage signature", WalletLoginRequest{WalletAddress: signer.Address().Hex(), Message: "hi", Signature: "0xzz"}, "Invalid signature"},
		{"missing fields", map[string]string{"wallet_address": signer.Address().Hex()}, "Invalid request"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/functions/v1/metamask-auth", tc.body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.want, resp["error"])
		})
	}

	n, err := s.db.CountUsers(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "failed logins must not create users")
}

func TestWalletLoginUnprefixedAddress(t *testing.T) {
	s := newTestServer(t)
	signer, err := eth.GenerateSigner()
	require.NoError(t, err)

	first := login(t, s, signer)

	bare := signedRequest(t, signer)
	bare.WalletAddress = bare.WalletAddress[2:]

	w := s.do(t, http.MethodPost, "/functions/v1/metamask-auth", bare, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid signature"}`, w.Body.String())

	// Upper-case 0X still maps to the same user
	upper := signedRequest(t, signer)
	upper.WalletAddress = "0X" + upper.WalletAddress[2:]
	w = s.do(t, http.MethodPost, "/functions/v1/metamask-auth", upper, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var again sessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &again))
	assert.Equal(t, first.Session.User.ID, again.Session.User.ID)

	n, err := s.db.CountUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// brokenBackend fails every identity lookup
type brokenBackend struct{}

var errDatabaseDown = errors.New("connection refused")

func (brokenBackend) FindProfileByWallet(context.Context, string) (*core.Profile, error) {
	return nil, errDatabaseDown
}

func (brokenBackend) CreateUser(context.Context, core.NewUser) (*core.User, error) {
	return nil, errDatabaseDown
}

func (brokenBackend) UpdateUserPassword(context.Context, string, string) error {
	return errDatabaseDown
}

func (brokenBackend) SignInWithPassword(context.Context, string, string) (*core.Session, error) {
	return nil, errDatabaseDown
}

func TestWalletLoginStoreOutage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	backend := brokenBackend{}
	bridge := service.NewWalletBridge(
		service.NewSignatureVerifier(),
		service.NewIdentityResolver(backend, backend, "", quiet),
		service.NewSessionMinter(backend, quiet),
		nil,
		quiet,
	)
	s := &testServer{router: SetupRouter(NewHandlers(bridge, nil, nil, quiet), quiet)}

	signer, err := eth.GenerateSigner()
	require.NoError(t, err)

	w := s.do(t, http.MethodPost, "/functions/v1/metamask-auth", signedRequest(t, signer), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Failed to create identity", resp["error"])
	assert.NotContains(t, resp, "session")
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestWalletErrorMessage(t *testing.T) {
	assert.Equal(t, "Invalid signature", walletErrorMessage(errors.Join(core.ErrAuthentication, core.ErrInvalidAddress)))
	assert.Equal(t, "Failed to create identity", walletErrorMessage(errors.Join(core.ErrIdentityCreation, errors.New("db down"))))
	assert.Equal(t, "Failed to authenticate", walletErrorMessage(core.ErrSession))
	assert.Equal(t, "Failed to authenticate", walletErrorMessage(errors.New("boom")))
}

func TestPreflight(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/functions/v1/metamask-auth", "/functions/v1/arcade-api", "/auth/v1/user"} {
		w := s.do(t, http.MethodOptions, path, nil, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, corsAllowHeaders, w.Header().Get("Access-Control-Allow-Headers"))
		assert.Empty(t, w.Body.String())
	}
}

func TestWalletRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORSMiddleware())
	router.POST("/panic", WalletRecovery(quiet), func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/panic", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Failed to authenticate"}`, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t)
	signer, err := eth.GenerateSigner()
	require.NoError(t, err)
	resp := login(t, s, signer)

	bearer := http.Header{"Authorization": {"Bearer " + resp.Session.AccessToken}}

	w := s.do(t, http.MethodGet, "/auth/v1/user", nil, bearer)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var me struct {
		User    core.User    `json:"user"`
		Profile core.Profile `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, resp.Session.User.ID, me.User.ID)
	assert.Equal(t, core.NormalizeAddress(signer.Address().Hex()), me.Profile.WalletAddress)

	w = s.do(t, http.MethodGet, "/auth/v1/user", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/auth/v1/token/refresh", map[string]string{"refresh_token": resp.Session.RefreshToken}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var refreshed struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refreshed))
	assert.NotEqual(t, resp.Session.RefreshToken, refreshed.RefreshToken)

	// The rotated token is dead
	w = s.do(t, http.MethodPost, "/auth/v1/token/refresh", map[string]string{"refresh_token": resp.Session.RefreshToken}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/auth/v1/logout", map[string]string{"refresh_token": refreshed.RefreshToken}, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/auth/v1/user", nil, http.Header{"Authorization": {"Bearer " + refreshed.AccessToken}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/auth/v1/token/refresh", map[string]string{"refresh_token": "nope"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestArcadeGames(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.db.InsertGame(ctx, core.Game{Title: "Snake", PlayURL: "https://example.com/snake", Status: core.GameStatusApproved, Arcade: true})
	require.NoError(t, err)
	_, err = s.db.InsertGame(ctx, core.Game{Title: "Draft", PlayURL: "https://example.com/draft", Arcade: true})
	require.NoError(t, err)

	w := s.do(t, http.MethodGet, "/functions/v1/arcade-api", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool              `json:"success"`
		Data    []core.ArcadeGame `json:"data"`
		Count   int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Snake", resp.Data[0].Title)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
