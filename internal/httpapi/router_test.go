package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/VitaminP8/threadly/internal/aggregate"
	"github.com/VitaminP8/threadly/internal/auth"
	"github.com/VitaminP8/threadly/internal/comment"
	"github.com/VitaminP8/threadly/internal/mocks"
	"github.com/VitaminP8/threadly/internal/model"
	"github.com/VitaminP8/threadly/internal/reaction"
	"github.com/VitaminP8/threadly/internal/storage/memory"
	"github.com/VitaminP8/threadly/internal/subscription"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router  *gin.Engine
	store   *memory.Store
	manager *subscription.SubscriptionManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "http_test_secret")

	store := memory.NewStore()
	manager := subscription.NewSubscriptionManager()
	summary, err := aggregate.NewService(store, store, 10, time.Minute)
	require.NoError(t, err)

	h := &Handler{
		Users:   memory.NewUserMemoryStorage(),
		Posts:   store,
		Threads: comment.NewBuilder(store, store, comment.WithManager(manager)),
		Ledger:  reaction.NewLedger(store, reaction.WithManager(manager)),
		Summary: summary,
		Events:  manager,
	}
	return &testServer{router: NewRouter(h), store: store, manager: manager}
}

func token(t *testing.T, userID uint) string {
	t.Helper()
	tok, err := auth.IssueToken(userID, "user")
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path string, userID uint, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("Authorization", "Bearer "+token(t, userID))
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRouter_Auth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, "POST", "/auth/register", 0, gin.H{"username": "alice", "email": "a@example.com", "password": "secret"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	u := decode[model.User](t, w)
	assert.Equal(t, "alice", u.Username)

	w = s.do(t, "POST", "/auth/register", 0, gin.H{"username": "alice", "password": "other"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, "POST", "/auth/login", 0, gin.H{"username": "alice", "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[map[string]string](t, w)["token"])

	w = s.do(t, "POST", "/auth/login", 0, gin.H{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_PostsAndReactions(t *testing.T) {
	s := newTestServer(t)

	t.Run("Write routes require a user", func(t *testing.T) {
		w := s.do(t, "POST", "/posts", 0, gin.H{"title": "x"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	w := s.do(t, "POST", "/posts", 1, gin.H{"title": "Hello", "content": "world"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := decode[model.Post](t, w)
	assert.Equal(t, uint(1), p.AuthorID)

	t.Run("Title validation", func(t *testing.T) {
		w := s.do(t, "POST", "/posts", 1, gin.H{"title": strings.Repeat("t", 101)})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Like then conflicting dislike", func(t *testing.T) {
		w := s.do(t, "POST", "/posts/1/reactions", 2, gin.H{"reaction_type": "like"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = s.do(t, "POST", "/posts/1/reactions", 2, gin.H{"reaction_type": "dislike"})
		assert.Equal(t, http.StatusConflict, w.Code)

		w = s.do(t, "GET", "/posts/1", 0, nil)
		require.Equal(t, http.StatusOK, w.Code)
		summary := decode[model.PostSummary](t, w)
		assert.Equal(t, 1, summary.LikeCount)
		assert.Equal(t, 0, summary.DislikeCount)
	})

	t.Run("Malformed polarity", func(t *testing.T) {
		w := s.do(t, "POST", "/posts/1/reactions", 3, gin.H{"reaction_type": "meh"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(t, "POST", "/posts/1/reactions", 3, gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "reaction_type is required")
	})

	t.Run("Numeric polarity", func(t *testing.T) {
		w := s.do(t, "POST", "/posts/1/reactions", 3, gin.H{"reaction_type": -1})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"reaction_type":"down"`)

		w = s.do(t, "DELETE", "/reactions/"+fmt.Sprint(decode[model.Reaction](t, w).ID), 3, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Only the author changes a reaction", func(t *testing.T) {
		w := s.do(t, "PUT", "/reactions/1", 3, gin.H{"reaction_type": "down"})
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = s.do(t, "PUT", "/reactions/1", 2, gin.H{"reaction_type": "down"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		summary := decode[model.PostSummary](t, s.do(t, "GET", "/posts/1", 0, nil))
		assert.Equal(t, 0, summary.LikeCount)
		assert.Equal(t, 1, summary.DislikeCount)
		assert.Equal(t, -1, summary.Score)

		w = s.do(t, "DELETE", "/reactions/1", 2, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = s.do(t, "GET", "/reactions/1", 0, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Raw id resolves to the post", func(t *testing.T) {
		w := s.do(t, "POST", "/reactions", 4, gin.H{"target_id": p.ID, "reaction_type": "up"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"kind":"post"`)

		w = s.do(t, "POST", "/reactions", 4, gin.H{"target_id": 77, "target_kind": "story", "reaction_type": "up"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Listing and pagination", func(t *testing.T) {
		w := s.do(t, "GET", "/posts/1/reactions", 0, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]map[string]any](t, w), 1)

		w = s.do(t, "GET", "/posts?page=1&page_size=5", 0, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]model.PostSummary](t, w), 1)

		w = s.do(t, "GET", "/posts?page=0", 0, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		for _, path := range []string{"/posts", "/posts/1/comments"} {
			w = s.do(t, "GET", path+"?page=9223372036854775807", 0, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, path)
			assert.Contains(t, w.Body.String(), "page is too large")
		}

		w = s.do(t, "GET", "/posts/abc", 0, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Owner-only post edit and delete", func(t *testing.T) {
		w := s.do(t, "PUT", "/posts/1", 2, gin.H{"title": "Hijack"})
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = s.do(t, "PUT", "/posts/1", 1, gin.H{"title": "Edited", "content": "new"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Edited", decode[model.Post](t, w).Title)

		w = s.do(t, "DELETE", "/posts/1", 1, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = s.do(t, "GET", "/posts/1", 0, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRouter_Comments(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, "POST", "/posts", 1, gin.H{"title": "Thread"}).Code)

	// depth из тела не принимается, глубина считается от родителя
	w := s.do(t, "POST", "/posts/1/comments", 2, gin.H{"content": "c0", "depth": 7})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	c0 := decode[model.Comment](t, w)
	assert.Equal(t, 0, c0.Depth)

	w = s.do(t, "POST", "/comments/1/reply", 3, gin.H{"content": "c1", "depth": 0})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 1, decode[model.Comment](t, w).Depth)

	w = s.do(t, "POST", "/posts/1/comments", 3, gin.H{"content": "c2", "parent_id": 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 2, decode[model.Comment](t, w).Depth)

	t.Run("Reply past the ceiling", func(t *testing.T) {
		w := s.do(t, "POST", "/comments/3/reply", 3, gin.H{"content": "c3"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "max depth exceeded")
	})

	t.Run("Rendered thread and subtree", func(t *testing.T) {
		w := s.do(t, "GET", "/posts/1/comments", 0, nil)
		require.Equal(t, http.StatusOK, w.Code)
		nodes := decode[[]model.CommentNode](t, w)
		require.Len(t, nodes, 1)
		require.Len(t, nodes[0].Replies, 1)
		assert.Len(t, nodes[0].Replies[0].Replies, 1)

		w = s.do(t, "GET", "/comments/2/tree", 0, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[model.CommentNode](t, w).Replies, 1)
	})

	t.Run("Comment detail and counts", func(t *testing.T) {
		w := s.do(t, "POST", "/comments/1/reactions", 5, gin.H{"reaction_type": "up"})
		require.Equal(t, http.StatusCreated, w.Code)

		w = s.do(t, "GET", "/comments/1", 0, nil)
		require.Equal(t, http.StatusOK, w.Code)
		summary := decode[model.CommentSummary](t, w)
		assert.Equal(t, 1, summary.ReplyCount)
		assert.Equal(t, 1, summary.Score)

		post := decode[model.PostSummary](t, s.do(t, "GET", "/posts/1", 0, nil))
		assert.Equal(t, 3, post.CommentCount)
	})

	t.Run("Owner-only edit and cascading delete", func(t *testing.T) {
		w := s.do(t, "PUT", "/comments/1", 3, gin.H{"content": "x"})
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = s.do(t, "PUT", "/comments/1", 2, gin.H{"content": "edited"})
		require.Equal(t, http.StatusOK, w.Code)

		w = s.do(t, "DELETE", "/comments/1", 2, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = s.do(t, "GET", "/comments/3", 0, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		post := decode[model.PostSummary](t, s.do(t, "GET", "/posts/1", 0, nil))
		assert.Equal(t, 0, post.CommentCount)
	})
}

func TestRouter_PostEvents(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, "POST", "/posts", 1, gin.H{"title": "Live"}).Code)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/posts/1/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		s.router.ServeHTTP(w, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return s.manager.Subscribers(1) == 1 }, time.Second, 5*time.Millisecond)

	require.Equal(t, http.StatusCreated, s.do(t, "POST", "/posts/1/reactions", 2, gin.H{"reaction_type": "up"}).Code)
	require.Equal(t, http.StatusCreated, s.do(t, "POST", "/posts/1/comments", 2, gin.H{"content": "hi"}).Code)

	// оба события уже лежат в буфере канала подписчика
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := w.Body.String()
	assert.Contains(t, body, "event:tally.changed")
	assert.Contains(t, body, "event:comment.attached")
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/event-stream"))
	assert.Zero(t, s.manager.Subscribers(1))

	t.Run("Unknown post", func(t *testing.T) {
		w := s.do(t, "GET", "/posts/9/events", 0, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, "GET", "/posts", 0, nil)
	assert.Len(t, w.Header().Get(requestIDHeader), 36)

	req := httptest.NewRequest("GET", "/posts", nil)
	req.Header.Set(requestIDHeader, "fixed-id")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, "fixed-id", w.Header().Get(requestIDHeader))
}

func TestRouter_AuthErrorsWithMockStorage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	users := mocks.NewMockUserStorage()
	router := NewRouter(&Handler{Users: users})

	post := func(path string, body gin.H) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("POST", path, &buf))
		return w
	}

	w := post("/auth/register", gin.H{"username": "bob", "email": "b@example.com", "password": "pw"})
	require.Equal(t, http.StatusCreated, w.Code)
	u, err := users.GetUserByUsername("bob")
	require.NoError(t, err)
	assert.Equal(t, uint(1), u.ID)

	w = post("/auth/register", gin.H{"username": "carol", "email": "b@example.com", "password": "pw"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = post("/auth/register", gin.H{"username": "dave"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post("/auth/login", gin.H{"username": "bob", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jwt-token-for-user-1", decode[map[string]string](t, w)["token"])
}
