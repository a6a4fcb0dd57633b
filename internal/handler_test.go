package internal

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"filedrive.dev/api/internal/auth"
	"filedrive.dev/api/internal/cache"
	"filedrive.dev/api/internal/database"
	"filedrive.dev/api/internal/files"
	"filedrive.dev/api/internal/middleware"
	"filedrive.dev/api/internal/queue"
	"filedrive.dev/api/internal/users"
)

// memUserStore backs both the signup and auth services in tests.
type memUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]database.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[primitive.ObjectID]database.User)}
}

func (s *memUserStore) GetByEmail(ctx context.Context, email string) (*database.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (s *memUserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*database.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (s *memUserStore) Insert(ctx context.Context, user *database.User) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := primitive.NewObjectID()
	user.ID = id
	s.users[id] = *user
	return id, nil
}

type memFileStore struct {
	mu    sync.Mutex
	files map[primitive.ObjectID]database.File
	order []primitive.ObjectID
}

func newMemFileStore() *memFileStore {
	return &memFileStore{files: make(map[primitive.ObjectID]database.File)}
}

func (s *memFileStore) Insert(ctx context.Context, file *database.File) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := primitive.NewObjectID()
	file.ID = id
	s.files[id] = *file
	s.order = append(s.order, id)
	return id, nil
}

func (s *memFileStore) GetByID(ctx context.Context, id primitive.ObjectID) (*database.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.files[id]; ok {
		return &f, nil
	}
	return nil, nil
}

func (s *memFileStore) GetForUser(ctx context.Context, id, userID primitive.ObjectID) (*database.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.files[id]; ok && f.UserID == userID {
		return &f, nil
	}
	return nil, nil
}

func (s *memFileStore) ListForUser(ctx context.Context, userID primitive.ObjectID, parent database.ParentRef, skip, limit int64) ([]database.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := []database.File{}
	for _, id := range s.order {
		f := s.files[id]
		if f.UserID == userID && f.Parent == parent {
			matched = append(matched, f)
		}
	}
	if skip >= int64(len(matched)) {
		return []database.File{}, nil
	}
	matched = matched[skip:]
	if int64(len(matched)) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

type memMeta struct {
	pingErr   error
	userCount int64
	fileCount int64
}

func (m *memMeta) Ping(ctx context.Context) error                { return m.pingErr }
func (m *memMeta) CountUsers(ctx context.Context) (int64, error) { return m.userCount, nil }
func (m *memMeta) CountFiles(ctx context.Context) (int64, error) { return m.fileCount, nil }

type testEnv struct {
	router   *gin.Engine
	sessions *cache.Memory
	queue    *queue.Memory
	meta     *memMeta
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	userStore := newMemUserStore()
	fileStore := newMemFileStore()
	sessions := cache.NewMemory()
	jobs := queue.NewMemory()
	meta := &memMeta{}

	authService := auth.NewService(userStore, sessions, 24*time.Hour)
	userService := users.NewService(userStore, jobs, logger)
	fileService := files.NewService(fileStore, jobs, t.TempDir(), logger)

	handler := &Handler{
		Logger:   logger,
		Auth:     authService,
		Users:    userService,
		Files:    fileService,
		Sessions: sessions,
		Meta:     meta,
	}

	router := gin.New()
	router.Use(middleware.ErrorHandler(logger))
	router.GET("/status", handler.Status)
	router.GET("/stats", handler.Stats)
	router.GET("/connect", handler.Connect)
	router.GET("/disconnect", handler.Disconnect)
	router.POST("/users", handler.CreateUser)
	router.GET("/users/me", handler.GetMe)
	router.POST("/files", middleware.Protected(authService, handler.UploadFile))
	router.GET("/files", middleware.Protected(authService, handler.ListFiles))
	router.GET("/files/:id", middleware.Protected(authService, handler.GetFile))

	return &testEnv{router: router, sessions: sessions, queue: jobs, meta: meta}
}

func (e *testEnv) do(t *testing.T, method, path, body string, header map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Body.String(), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func basicAuth(email, password string) map[string]string {
	cred := base64.StdEncoding.EncodeToString([]byte(email + ":" + password))
	return map[string]string{"Authorization": "Basic " + cred}
}

func TestStatusEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/status", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["redis"])
	assert.Equal(t, true, body["db"])

	env.meta.pingErr = errors.New("down")
	_, body = env.do(t, http.MethodGet, "/status", "", nil)
	assert.Equal(t, false, body["db"])
	assert.Equal(t, true, body["redis"])
}

func TestStatsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.meta.userCount = 12
	env.meta.fileCount = 1231

	rec, body := env.do(t, http.MethodGet, "/stats", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 12, body["users"])
	assert.EqualValues(t, 1231, body["files"])
}

func TestFullSessionFlow(t *testing.T) {
	env := newTestEnv(t)

	// Sign up.
	rec, body := env.do(t, http.MethodPost, "/users",
		`{"email":"bob@dylan.com","password":"toto1234!"}`,
		map[string]string{"Content-Type": "application/json"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "bob@dylan.com", body["email"])
	userID := body["id"].(string)
	require.NotEmpty(t, userID)
	assert.NotContains(t, body, "password")

	// Signup queued exactly one welcome job.
	assert.Equal(t, 1, env.queue.Len(queue.UserQueue))

	// Log in with Basic auth.
	rec, body = env.do(t, http.MethodGet, "/connect", "", basicAuth("bob@dylan.com", "toto1234!"))
	require.Equal(t, http.StatusOK, rec.Code)
	token := body["token"].(string)
	require.NotEmpty(t, token)

	// Identify the session.
	rec, body = env.do(t, http.MethodGet, "/users/me", "", map[string]string{"X-Token": token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, body["id"])
	assert.Equal(t, "bob@dylan.com", body["email"])

	// Create a folder, then a file inside it.
	rec, body = env.do(t, http.MethodPost, "/files",
		`{"name":"images","type":"folder"}`,
		map[string]string{"X-Token": token, "Content-Type": "application/json"})
	require.Equal(t, http.StatusCreated, rec.Code)
	folderID := body["id"].(string)
	assert.EqualValues(t, 0, body["parentId"])
	assert.NotContains(t, body, "localPath")

	data := base64.StdEncoding.EncodeToString([]byte("Hello Webstack!\n"))
	rec, body = env.do(t, http.MethodPost, "/files",
		`{"name":"myText.txt","type":"file","parentId":"`+folderID+`","data":"`+data+`"}`,
		map[string]string{"X-Token": token, "Content-Type": "application/json"})
	require.Equal(t, http.StatusCreated, rec.Code)
	fileID := body["id"].(string)
	assert.Equal(t, folderID, body["parentId"])

	// Read it back by id.
	rec, body = env.do(t, http.MethodGet, "/files/"+fileID, "", map[string]string{"X-Token": token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "myText.txt", body["name"])
	assert.Equal(t, userID, body["userId"])

	// List the folder.
	rec, _ = env.do(t, http.MethodGet, "/files?parentId="+folderID, "", map[string]string{"X-Token": token})
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "myText.txt", listed[0]["name"])

	// Log out; the token is gone for good.
	rec, _ = env.do(t, http.MethodGet, "/disconnect", "", map[string]string{"X-Token": token})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, body = env.do(t, http.MethodGet, "/users/me", "", map[string]string{"X-Token": token})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", body["error"])
}

func TestCreateUser_Errors(t *testing.T) {
	env := newTestEnv(t)
	header := map[string]string{"Content-Type": "application/json"}

	rec, body := env.do(t, http.MethodPost, "/users", `{"password":"x"}`, header)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing email", body["error"])

	rec, body = env.do(t, http.MethodPost, "/users", `{"email":"bob@dylan.com"}`, header)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing password", body["error"])

	// An empty body reads like missing fields, not a parse failure.
	rec, body = env.do(t, http.MethodPost, "/users", "", header)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing email", body["error"])

	rec, _ = env.do(t, http.MethodPost, "/users", `{"email":"bob@dylan.com","password":"x"}`, header)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec, body = env.do(t, http.MethodPost, "/users", `{"email":"bob@dylan.com","password":"y"}`, header)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Already exist", body["error"])
}

func TestConnect_Unauthorized(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/connect", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", body["error"])

	rec, body = env.do(t, http.MethodGet, "/connect", "", basicAuth("ghost@dylan.com", "nope"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", body["error"])
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	env := newTestEnv(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/files"},
		{http.MethodGet, "/files"},
		{http.MethodGet, "/files/" + primitive.NewObjectID().Hex()},
	} {
		rec, body := env.do(t, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, "Unauthorized", body["error"])
	}
}

func TestUploadFile_NumericRootParent(t *testing.T) {
	env := newTestEnv(t)
	token := signup(t, env, "bob@dylan.com", "toto1234!")

	// A JSON numeric 0 parentId is the root sentinel.
	rec, body := env.do(t, http.MethodPost, "/files",
		`{"name":"top","type":"folder","parentId":0}`,
		map[string]string{"X-Token": token, "Content-Type": "application/json"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.EqualValues(t, 0, body["parentId"])
}

func TestGetFile_NotFound(t *testing.T) {
	env := newTestEnv(t)
	token := signup(t, env, "bob@dylan.com", "toto1234!")

	rec, body := env.do(t, http.MethodGet, "/files/"+primitive.NewObjectID().Hex(), "",
		map[string]string{"X-Token": token})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", body["error"])
}

// signup registers a user and returns a live session token.
func signup(t *testing.T, env *testEnv, email, password string) string {
	t.Helper()

	rec, _ := env.do(t, http.MethodPost, "/users",
		`{"email":"`+email+`","password":"`+password+`"}`,
		map[string]string{"Content-Type": "application/json"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, body := env.do(t, http.MethodGet, "/connect", "", basicAuth(email, password))
	require.Equal(t, http.StatusOK, rec.Code)
	return body["token"].(string)
}
