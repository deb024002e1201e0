package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/deephumans/deephumans/internal/ai"
	"github.com/deephumans/deephumans/internal/config"
	"github.com/deephumans/deephumans/internal/filestore"
	"github.com/deephumans/deephumans/internal/handler"
	"github.com/deephumans/deephumans/internal/middleware"
	"github.com/deephumans/deephumans/internal/repo"
	"github.com/deephumans/deephumans/internal/service"
	"github.com/deephumans/deephumans/internal/session"
	"github.com/deephumans/deephumans/test/testutil"
)

var codePattern = regexp.MustCompile(`\d{6}`)

type captureSender struct {
	lastTo   string
	lastBody string
	sent     int
}

func (s *captureSender) Send(to, subject, htmlBody string) error {
	s.sent++
	s.lastTo = to
	s.lastBody = htmlBody
	return nil
}

func (s *captureSender) lastCode() string {
	return codePattern.FindString(s.lastBody)
}

type stubProvider struct {
	reply string
}

func (p *stubProvider) Name() string {
	return "stub"
}

func (p *stubProvider) Chat(ctx context.Context, model string, messages []ai.Message, opts ai.Options) (string, error) {
	return p.reply, nil
}

type testEnv struct {
	router   http.Handler
	sender   *captureSender
	provider *stubProvider
	cookies  []*http.Cookie
	token    string
}

func setupEnv(t *testing.T) (*testEnv, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, cleanup := testutil.OpenTestDB(t)
	userRepo := repo.NewUserRepo(db)
	chatRepo := repo.NewChatMessageRepo(db)

	jwtSecret := []byte("test-secret")
	sender := &captureSender{}
	provider := &stubProvider{reply: "Indeed, a fascinating question."}

	authService := service.NewAuthService(userRepo, jwtSecret, time.Hour)
	resetService := service.NewPasswordResetService(userRepo, sender, 10*time.Minute)
	assistant := service.NewAssistantService(provider, "llama3.2", ai.Options{}, time.Second)
	chatService := service.NewChatService(chatRepo, assistant)

	tmpDir, err := os.MkdirTemp("", "deephumans-avatar-*")
	require.NoError(t, err)
	store, err := filestore.New(config.FileStoreConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": tmpDir},
	})
	require.NoError(t, err)

	deps := handler.RouterDeps{
		Auth:          handler.NewAuthHandler(authService),
		PasswordReset: handler.NewPasswordResetHandler(resetService),
		Chat:          handler.NewChatHandler(chatService),
		Characters:    handler.NewCharacterHandler(store),
		Users:         userRepo,
		JWTSecret:     jwtSecret,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(nil),
			session.Middleware(session.NewStore(128, time.Hour), 3600),
		),
	)
	require.NoError(t, err)

	env := &testEnv{router: engine, sender: sender, provider: provider}
	return env, func() {
		cleanup()
		_ = os.RemoveAll(tmpDir)
	}
}

// do sends a JSON request, carrying the session cookie and bearer token the
// env has accumulated, and keeps any cookies the response sets.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range e.cookies {
		req.AddCookie(cookie)
	}
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	resp := httptest.NewRecorder()
	e.router.ServeHTTP(resp, req)
	if cookies := resp.Result().Cookies(); len(cookies) > 0 {
		e.cookies = cookies
	}
	return resp
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Code uint32          `json:"code"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Zero(t, envelope.Code, "api error: %s", resp.Body.String())
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	return data
}

func apiCode(t *testing.T, resp *httptest.ResponseRecorder) uint32 {
	t.Helper()
	var envelope struct {
		Code uint32 `json:"code"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Code
}
