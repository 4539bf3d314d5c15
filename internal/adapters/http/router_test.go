package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dkeye/Parley/internal/adapters/ws"
	"github.com/dkeye/Parley/internal/auth"
	"github.com/dkeye/Parley/internal/config"
	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/dkeye/Parley/internal/store"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *store.MessageRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Message{}))

	cfg := &config.Config{
		Mode:       "release",
		Secret:     "test-secret",
		TokenTTL:   time.Hour,
		ReadLimit:  32768,
		SendBuffer: 8,
		PingPeriod: 54 * time.Second,
	}
	tokens := auth.NewTokenService(cfg.Secret, cfg.TokenTTL)
	registry := core.NewRegistry()
	broadcaster := core.NewBroadcaster(registry)
	messages := store.NewMessageRepo(db)
	chat := ws.NewChatController(cfg, auth.NewGate(tokens), registry, broadcaster,
		core.NewPresence(registry, broadcaster), messages)

	r := SetupRouter(context.Background(), cfg, Deps{
		Tokens:   tokens,
		Hasher:   auth.NewPasswordHasher(),
		Users:    store.NewUserRepo(db),
		Messages: messages,
		Registry: registry,
		Chat:     chat,
	})
	return r, messages
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSignupIssuesToken(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := postJSON(t, r, "/signup", gin.H{"username": "alice", "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
}

func TestSignupRejectsDuplicateAndMissingFields(t *testing.T) {
	r, _ := setupTestRouter(t)

	require.Equal(t, http.StatusOK, postJSON(t, r, "/signup", gin.H{"username": "alice", "password": "secret"}).Code)
	assert.Equal(t, http.StatusBadRequest, postJSON(t, r, "/signup", gin.H{"username": "alice", "password": "other"}).Code)
	assert.Equal(t, http.StatusBadRequest, postJSON(t, r, "/signup", gin.H{"username": "", "password": "secret"}).Code)
	assert.Equal(t, http.StatusBadRequest, postJSON(t, r, "/signup", gin.H{"username": "bob"}).Code)
}

func TestLogin(t *testing.T) {
	r, _ := setupTestRouter(t)
	require.Equal(t, http.StatusOK, postJSON(t, r, "/signup", gin.H{"username": "alice", "password": "secret"}).Code)

	assert.Equal(t, http.StatusOK, postJSON(t, r, "/login", gin.H{"username": "alice", "password": "secret"}).Code)
	assert.Equal(t, http.StatusUnauthorized, postJSON(t, r, "/login", gin.H{"username": "alice", "password": "wrong"}).Code)
	assert.Equal(t, http.StatusUnauthorized, postJSON(t, r, "/login", gin.H{"username": "ghost", "password": "secret"}).Code)
}

func TestMessageHistory(t *testing.T) {
	r, messages := setupTestRouter(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, messages.Record("general", "alice", "hello", base))
	require.NoError(t, messages.Record("general", "bob", "hey", base.Add(time.Minute)))
	require.NoError(t, messages.Record("other", "carol", "elsewhere", base))

	req := httptest.NewRequest(http.MethodGet, "/messages/general", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var msgs []struct {
		Username string `json:"username"`
		Content  string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msgs))
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, "hey", msgs[1].Content)
}

func TestCORSPreflight(t *testing.T) {
	r, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/login", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRoomListing(t *testing.T) {
	r, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"rooms":[]}`, w.Body.String())
}
