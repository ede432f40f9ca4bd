package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yatube/backend/internal/database"
	"github.com/yatube/backend/internal/feed"
	"github.com/yatube/backend/internal/handlers"
)

type stubService struct {
	db *gorm.DB
}

func (s *stubService) Health() map[string]string { return map[string]string{"status": "up"} }
func (s *stubService) GetDB() *gorm.DB           { return s.db }
func (s *stubService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var testDBSeq atomic.Int64

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:servertest%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))

	var svc database.Service = &stubService{db: db}
	cache := feed.NewPageCache(time.Hour)
	s := &Server{
		db:      svc,
		handler: handlers.NewHandler(db, cache),
	}
	return s.RegisterRoutes()
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func register(t *testing.T, router *gin.Engine, username string) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	token, ok := decode(t, w)["token"].(string)
	require.True(t, ok, "registration returns a token")
	return token
}

func TestRegisterAndLogin(t *testing.T) {
	router := setupTestRouter(t)

	register(t, router, "leo")

	// Duplicate registration is rejected.
	w := doJSON(t, router, http.MethodPost, "/api/register", "", gin.H{
		"username": "leo",
		"email":    "leo@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/login", "", gin.H{
		"email":    "leo@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, decode(t, w)["token"])

	w = doJSON(t, router, http.MethodPost, "/api/login", "", gin.H{
		"email":    "leo@example.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	token := decode(t, doJSON(t, router, http.MethodPost, "/api/login", "", gin.H{
		"email":    "leo@example.com",
		"password": "secret123",
	}))["token"].(string)

	w = doJSON(t, router, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "leo", decode(t, w)["username"])
}

func TestAnonymousWritesRedirectToLogin(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/posts", "", gin.H{"text": "hi"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	body := decode(t, w)
	require.Equal(t, "/api/login", body["login"])
	require.Equal(t, "/api/posts", body["next"], "original destination is preserved")
}

func TestGroupPages(t *testing.T) {
	router := setupTestRouter(t)
	token := register(t, router, "leo")

	w := doJSON(t, router, http.MethodPost, "/api/groups", token, gin.H{
		"title":       "Группа",
		"slug":        "s1",
		"description": "test group",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	groupID := int(decode(t, w)["id"].(float64))

	// Slug derived from title when omitted.
	w = doJSON(t, router, http.MethodPost, "/api/groups", token, gin.H{"title": "Second Group"})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "second-group", decode(t, w)["slug"])

	// Existing empty group: valid empty listing.
	w = doJSON(t, router, http.MethodGet, "/api/groups/s1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Empty(t, body["posts"])
	require.Equal(t, float64(0), body["total"])

	// Unknown slug: 404.
	w = doJSON(t, router, http.MethodGet, "/api/groups/missing", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	// A grouped post shows up; a groupless one does not.
	w = doJSON(t, router, http.MethodPost, "/api/posts", token, gin.H{"text": "in group", "group_id": groupID})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, router, http.MethodPost, "/api/posts", token, gin.H{"text": "groupless"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/groups/s1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	posts := body["posts"].([]any)
	require.Len(t, posts, 1)
	require.Equal(t, "in group", posts[0].(map[string]any)["text"])

	w = doJSON(t, router, http.MethodGet, "/api/groups", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var groups []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &groups))
	require.Len(t, groups, 2)
}

func TestListingCache(t *testing.T) {
	router := setupTestRouter(t)
	token := register(t, router, "leo")

	w := doJSON(t, router, http.MethodPost, "/api/posts", token, gin.H{"text": "first"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode(t, w)["posts"].([]any), 1)

	// A new post does not surface while the snapshot is fresh.
	w = doJSON(t, router, http.MethodPost, "/api/posts", token, gin.H{"text": "second"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode(t, w)["posts"].([]any), 1)

	// An explicit clear forces a recompute on the next request.
	w = doJSON(t, router, http.MethodPost, "/api/admin/cache/clear", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode(t, w)["posts"].([]any), 2)
}

func TestPostOwnership(t *testing.T) {
	router := setupTestRouter(t)
	author := register(t, router, "leo")
	other := register(t, router, "mila")

	w := doJSON(t, router, http.MethodPost, "/api/posts", author, gin.H{"text": "mine"})
	require.Equal(t, http.StatusCreated, w.Code)
	postID := int(decode(t, w)["id"].(float64))

	w = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/posts/%d", postID), other, gin.H{"text": "stolen"})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, fmt.Sprintf("/api/posts/%d", postID), decode(t, w)["redirect"])

	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/posts/%d", postID), other, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/posts/%d", postID), author, gin.H{"text": "edited"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "edited", decode(t, w)["text"])

	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/posts/%d", postID), author, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/posts/%d", postID), "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestFollowFeedFlow(t *testing.T) {
	router := setupTestRouter(t)
	authorToken := register(t, router, "alice")
	readerToken := register(t, router, "reader")

	w := doJSON(t, router, http.MethodPost, "/api/posts", authorToken, gin.H{"text": "by alice"})
	require.Equal(t, http.StatusCreated, w.Code)

	// Following nobody: explicit "no feed" signal.
	w = doJSON(t, router, http.MethodGet, "/api/feed", readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, false, body["following"])
	require.Empty(t, body["posts"])

	w = doJSON(t, router, http.MethodPost, "/api/users/alice/follow", readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Duplicate follow is rejected; self-follow too.
	w = doJSON(t, router, http.MethodPost, "/api/users/alice/follow", readerToken, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(t, router, http.MethodPost, "/api/users/reader/follow", readerToken, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/feed", readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	require.Equal(t, true, body["following"])
	require.Len(t, body["posts"].([]any), 1)

	// Profile personalizes for the logged-in reader.
	w = doJSON(t, router, http.MethodGet, "/api/users/alice", readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode(t, w)
	require.Equal(t, true, profile["is_following"])
	require.Equal(t, float64(1), profile["follower_count"])

	w = doJSON(t, router, http.MethodGet, "/api/users/alice/followers", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var followers []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &followers))
	require.Len(t, followers, 1)
	require.Equal(t, "reader", followers[0]["username"])

	w = doJSON(t, router, http.MethodDelete, "/api/users/alice/follow", readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/feed", readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, false, decode(t, w)["following"])
}

func TestComments(t *testing.T) {
	router := setupTestRouter(t)
	authorToken := register(t, router, "leo")
	readerToken := register(t, router, "mila")

	w := doJSON(t, router, http.MethodPost, "/api/posts", authorToken, gin.H{"text": "discuss"})
	require.Equal(t, http.StatusCreated, w.Code)
	postID := int(decode(t, w)["id"].(float64))

	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", postID), readerToken, gin.H{"text": "nice"})
	require.Equal(t, http.StatusCreated, w.Code)
	commentID := int(decode(t, w)["id"].(float64))

	// Anonymous commenting is rejected.
	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", postID), "", gin.H{"text": "anon"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/posts/%d/comments", postID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var comments []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comments))
	require.Len(t, comments, 1)

	// Single-post page carries the comments and the author's post count.
	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/posts/%d", postID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Len(t, body["comments"].([]any), 1)
	require.Equal(t, float64(1), body["posts_count"])

	// Only the comment's author may delete it.
	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/comments/%d", commentID), authorToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/comments/%d", commentID), readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/posts/999/comments", readerToken, gin.H{"text": "void"})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "up", decode(t, w)["status"])
}
