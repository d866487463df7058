package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/faceauth/internal/common"
	"github.com/dmitrijs2005/faceauth/internal/cryptox"
	"github.com/dmitrijs2005/faceauth/internal/descriptor"
	"github.com/dmitrijs2005/faceauth/internal/logging"
	"github.com/dmitrijs2005/faceauth/internal/matcher"
	"github.com/dmitrijs2005/faceauth/internal/server/config"
	"github.com/dmitrijs2005/faceauth/internal/server/models"
	"github.com/dmitrijs2005/faceauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/faceauth/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DescriptorLength = 3
	cfg.EncryptionKey = testKeyHex
	return cfg
}

func newRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()

	sealer, err := cryptox.NewSealer(cfg.EncryptionKey, cfg.Cipher)
	require.NoError(t, err)
	mt, err := matcher.New(cfg.MatchThreshold, matcher.TieBreak(cfg.TieBreak))
	require.NoError(t, err)
	rm := repomanager.NewInMemoryRepositoryManager()

	s := NewHTTPServer(cfg, logging.Nop{},
		services.NewEnrollmentService(rm, sealer, cfg, logging.Nop{}),
		services.NewAuthenticationService(rm, sealer, mt, cfg, logging.Nop{}),
	)
	return s.Router()
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var resp Response
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
	}
	return w, resp
}

func TestPing(t *testing.T) {
	h := newRouter(t, testConfig())

	w, _ := do(t, h, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"OK"}`, w.Body.String())
}

func TestRegisterLoginMe_Flow(t *testing.T) {
	h := newRouter(t, testConfig())

	// descriptor as a JSON-array string, the browser client's format
	w, resp := do(t, h, http.MethodPost, "/register", `{"username":"alice","descriptor":"[0.1,0.2,0.3]"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, resp.Success)
	assert.Equal(t, "alice", resp.Username)

	// descriptor as a raw array
	w, resp = do(t, h, http.MethodPost, "/register", `{"username":"bob","descriptor":[0.9,-0.5,0.7]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, resp.Success)

	w, resp = do(t, h, http.MethodPost, "/login", `{"descriptor":[0.1,0.2,0.3]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "alice", resp.Username)
	require.NotNil(t, resp.Distance)
	assert.Zero(t, *resp.Distance)
	require.NotEmpty(t, resp.AccessToken)

	w, resp = do(t, h, http.MethodGet, "/me", "", "Authorization", "Bearer "+resp.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "alice", resp.Username)
}

func TestLogin_NotRecognized(t *testing.T) {
	h := newRouter(t, testConfig())

	_, _ = do(t, h, http.MethodPost, "/register", `{"username":"alice","descriptor":[0.1,0.2,0.3]}`)

	w, resp := do(t, h, http.MethodPost, "/login", `{"descriptor":"[5.1,5.2,5.3]"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "Face not recognized", resp.Message)
	assert.Empty(t, resp.AccessToken)
}

func TestRegister_StatusCodes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"empty username", `{"username":"  ","descriptor":[1,2,3]}`, http.StatusBadRequest},
		{"missing descriptor", `{"username":"carol"}`, http.StatusBadRequest},
		{"wrong length", `{"username":"carol","descriptor":[1,2]}`, http.StatusBadRequest},
		{"not numbers", `{"username":"carol","descriptor":"[1,\"x\",3]"}`, http.StatusBadRequest},
		{"quoted components", `{"username":"carol","descriptor":["1","2","3"]}`, http.StatusBadRequest},
		{"descriptor object", `{"username":"carol","descriptor":{"a":1}}`, http.StatusBadRequest},
		{"unknown field", `{"username":"carol","descriptor":[1,2,3],"admin":true}`, http.StatusBadRequest},
		{"not json", `username=carol`, http.StatusBadRequest},
		{"trailing data", `{"username":"carol","descriptor":[1,2,3]} {}`, http.StatusBadRequest},
		{"taken", `{"username":"alice","descriptor":[3,2,1]}`, http.StatusConflict},
		{"ok", `{"username":"dave","descriptor":[3,2,1]}`, http.StatusOK},
	}

	h := newRouter(t, testConfig())
	w, _ := do(t, h, http.MethodPost, "/register", `{"username":"alice","descriptor":[1,2,3]}`)
	require.Equal(t, http.StatusOK, w.Code)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := do(t, h, http.MethodPost, "/register", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.Equal(t, tt.want == http.StatusOK, resp.Success)
		})
	}
}

func TestMe_Unauthorized(t *testing.T) {
	h := newRouter(t, testConfig())

	for _, hdr := range []string{"", "Bearer", "Basic abc", "Bearer not-a-jwt"} {
		w, resp := do(t, h, http.MethodGet, "/me", "", "Authorization", hdr)
		assert.Equal(t, http.StatusUnauthorized, w.Code, hdr)
		assert.False(t, resp.Success)
	}
}

// ---- fakes for failure paths ----

type fakeEnrollment struct{ err error }

func (f *fakeEnrollment) Register(ctx context.Context, username string, d descriptor.Descriptor) (*models.User, error) {
	return nil, f.err
}

type fakeAuthentication struct{ err error }

func (f *fakeAuthentication) Login(ctx context.Context, d descriptor.Descriptor) (*services.LoginResult, error) {
	return nil, f.err
}

func (f *fakeAuthentication) WhoAmI(ctx context.Context, token string) (string, error) {
	return "", f.err
}

func TestStoreFailure_Is500WithGenericMessage(t *testing.T) {
	boom := errors.New("db error: password authentication failed for user postgres")
	s := NewHTTPServer(testConfig(), logging.Nop{}, &fakeEnrollment{err: boom}, &fakeAuthentication{err: boom})
	h := s.Router()

	w, resp := do(t, h, http.MethodPost, "/register", `{"username":"alice","descriptor":[1,2,3]}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, resp.Message, "password")

	w, _ = do(t, h, http.MethodPost, "/login", `{"descriptor":[1,2,3]}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLogin_InvalidDescriptorIs400(t *testing.T) {
	h := newRouter(t, testConfig())

	w, resp := do(t, h, http.MethodPost, "/login", `{"descriptor":[1,2]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
}

func TestMe_ExpiredToken(t *testing.T) {
	s := NewHTTPServer(testConfig(), logging.Nop{}, &fakeEnrollment{}, &fakeAuthentication{err: common.ErrTokenExpired})

	w, resp := do(t, s.Router(), http.MethodGet, "/me", "", "Authorization", "Bearer abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, common.ErrTokenExpired.Error(), resp.Message)
}

func TestCORS(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedOrigins = []string{"https://app.example.com"}
	h := newRouter(t, cfg)

	req := httptest.NewRequest(http.MethodOptions, "/login", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/login", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestModelsDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "weights.json"), []byte(`{"w":1}`), 0o600))

	cfg := testConfig()
	cfg.ModelsDir = dir
	h := newRouter(t, cfg)

	w, _ := do(t, h, http.MethodGet, "/models/weights.json", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"w":1}`, w.Body.String())

	// disabled when no directory is configured
	w, _ = do(t, newRouter(t, testConfig()), http.MethodGet, "/models/weights.json", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServe_StopsOnContextCancel(t *testing.T) {
	cfg := testConfig()
	cfg.EndpointAddrHTTP = "127.0.0.1:0"
	s := NewHTTPServer(cfg, logging.Nop{}, &fakeEnrollment{}, &fakeAuthentication{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	require.NoError(t, <-done)
}
