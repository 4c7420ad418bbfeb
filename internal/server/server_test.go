package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/communityforum/internal/bootstrap"
	"anoa.com/communityforum/internal/config"
	"anoa.com/communityforum/internal/model"
	"anoa.com/communityforum/pkg/mailer"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, bootstrap.Migrate(db))

	cfg := &config.Config{
		AppEnv:         "test",
		Port:           "0",
		AllowedOrigins: "http://localhost:3000",
		AppBaseURL:     "http://localhost:3000",
		JWTSecret:      "test-secret",
		TokenTTL:       time.Hour,
		ResetTTL:       time.Hour,
	}

	return New(cfg, db, nil, mailer.LogSender{})
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func registerAndLogin(t *testing.T, srv *Server, username string) string {
	t.Helper()

	rec, _ := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env := doJSON(t, srv, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var auth struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	require.NotEmpty(t, auth.AccessToken)
	return auth.AccessToken
}

func TestRegisterLoginFlow(t *testing.T) {
	srv := newTestServer(t)

	rec, env := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)

	var auth struct {
		AccessToken string      `json:"access_token"`
		TokenType   string      `json:"token_type"`
		User        *model.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	assert.NotEmpty(t, auth.AccessToken)
	assert.Equal(t, "Bearer", auth.TokenType)
	assert.Equal(t, model.RoleCommunityMember, auth.User.Role)

	rec, env = doJSON(t, srv, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)
}

func TestRegisterValidation(t *testing.T) {
	srv := newTestServer(t)

	rec, env := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "bob",
		"email":    "not-an-email",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
}

func TestThreadAndCommentFlow(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "carol")

	rec, env := doJSON(t, srv, http.MethodPost, "/api/threads", token, gin.H{
		"title":   "welcome aboard",
		"content": "introduce yourself here",
		"tags":    []string{"intro"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var thread struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &thread))
	require.NotEmpty(t, thread.ID)
	assert.Equal(t, "welcome aboard", thread.Title)

	rec, env = doJSON(t, srv, http.MethodPost, "/api/comments", token, gin.H{
		"thread_id": thread.ID,
		"content":   "hello everyone",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env = doJSON(t, srv, http.MethodGet, "/api/threads/"+thread.ID+"/comments", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var comments []struct {
		Content string `json:"content"`
		Author  string `json:"author"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &comments))
	require.Len(t, comments, 1)
	assert.Equal(t, "hello everyone", comments[0].Content)
	assert.Equal(t, "carol", comments[0].Author)

	rec, env = doJSON(t, srv, http.MethodGet, "/api/threads/"+thread.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail struct {
		CommentsCount int `json:"comments_count"`
		Views         int `json:"views"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, 1, detail.CommentsCount)
	// The view increment lands after the row is read, so the first fetch
	// still reports zero.
	assert.Equal(t, 0, detail.Views)
}

func TestAuthRequiredOnProtectedRoutes(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := doJSON(t, srv, http.MethodGet, "/api/threads", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = doJSON(t, srv, http.MethodPost, "/api/threads", "garbage-token", gin.H{
		"title": "nope", "content": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestModerationRequiresPermission(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "dave")

	rec, env := doJSON(t, srv, http.MethodPost, "/api/threads", token, gin.H{
		"title": "ordinary thread", "content": "nothing special",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var thread struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &thread))

	rec, env = doJSON(t, srv, http.MethodPatch, "/api/threads/"+thread.ID+"/moderate", token, gin.H{
		"is_locked": true,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, env.Success)
}

func TestAdminRoutesRejectMembers(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "erin")

	rec, _ := doJSON(t, srv, http.MethodGet, "/api/admin/users", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
