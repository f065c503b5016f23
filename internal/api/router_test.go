// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package api

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/gallery/internal/auth"
	"github.com/tomtom215/gallery/internal/authz"
	"github.com/tomtom215/gallery/internal/backup"
	"github.com/tomtom215/gallery/internal/blobstore"
	"github.com/tomtom215/gallery/internal/dataset"
	"github.com/tomtom215/gallery/internal/models"
)

type apiEnv struct {
	server     http.Handler
	store      *dataset.Store
	blobs      *blobstore.Store
	backups    *backup.Manager
	jwt        *auth.JWTManager
	adminToken string
}

func newAPIEnv(t *testing.T, maxUpload int64) *apiEnv {
	t.Helper()
	dir := t.TempDir()

	blobs, err := blobstore.New(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	store := dataset.New(dataset.Options{MirrorPath: filepath.Join(dir, "db.json")}, blobs)
	require.NoError(t, store.Open())

	backupCfg := &backup.Config{
		BackupDir: filepath.Join(dir, "backups"),
		Format:    backup.FormatTarGzip,
		LogFile:   filepath.Join(dir, "backup-logs.txt"),
		Schedule:  backup.DefaultScheduleConfig(),
	}
	backups, err := backup.NewManager(backupCfg, store, blobs)
	require.NoError(t, err)

	jwtManager, err := auth.NewJWTManager(strings.Repeat("k", 32), time.Hour)
	require.NoError(t, err)

	enforcer, err := authz.NewEnforcer(nil)
	require.NoError(t, err)

	handler := NewHandler(Dependencies{
		Store:          store,
		Blobs:          blobs,
		Backups:        backups,
		ActivityLog:    backup.NewActivityLog(backupCfg.LogFile),
		JWTManager:     jwtManager,
		MaxUploadBytes: maxUpload,
	})

	chiCfg := DefaultChiMiddlewareConfig()
	chiCfg.RateLimitDisabled = true
	router := NewRouter(handler, auth.NewMiddleware(jwtManager), authz.NewMiddleware(enforcer), NewChiMiddleware(chiCfg))

	adminToken, err := jwtManager.GenerateToken(dataset.DefaultAdminID, true)
	require.NoError(t, err)

	return &apiEnv{
		server:     router.SetupChi(),
		store:      store,
		blobs:      blobs,
		backups:    backups,
		jwt:        jwtManager,
		adminToken: adminToken,
	}
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(auth.TokenHeader, token)
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func (e *apiEnv) upload(t *testing.T, token, field, filename string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, newUploadRequest(t, token, field, filename, content, fields))
	return rec
}

func newUploadRequest(t *testing.T, token, field, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/photos", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(auth.TokenHeader, token)
	return req
}

// register creates an account through the API and returns its token and id.
func (e *apiEnv) register(t *testing.T, username string) (string, string) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp models.AuthResponse
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.User.ID
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var apiErr models.APIError
	decode(t, rec, &apiErr)
	return apiErr.Message
}

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestHealth(t *testing.T) {
	env := newAPIEnv(t, 0)

	rec := env.do(t, http.MethodGet, "/api/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/health/ready", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status models.HealthStatus
	decode(t, rec, &status)
	assert.Equal(t, "ready", status.Status)
	assert.Equal(t, 1, status.Users)
}

func TestRegisterLoginMe(t *testing.T) {
	env := newAPIEnv(t, 0)
	token, id := env.register(t, "alice")

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already exists", errorMessage(t, rec))

	for _, identifier := range []string{"alice", "ALICE@example.com"} {
		rec = env.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Identifier: identifier, Password: "secret123"})
		assert.Equal(t, http.StatusOK, rec.Code, identifier)
	}

	rec = env.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Identifier: "alice", Password: "wrong-password"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid credentials", errorMessage(t, rec))

	rec = env.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me map[string]interface{}
	decode(t, rec, &me)
	assert.Equal(t, id, me["id"])
	assert.NotContains(t, me, "password")

	rec = env.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPhotoLifecycle(t *testing.T) {
	env := newAPIEnv(t, 0)
	ownerToken, ownerID := env.register(t, "owner")
	otherToken, _ := env.register(t, "other")

	rec := env.upload(t, ownerToken, "photo", "sunset.png", pngImage(t, 400, 200), map[string]string{"title": "Sunset"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var photo models.Photo
	decode(t, rec, &photo)
	assert.Regexp(t, regexp.MustCompile(`^photo-\d+-\d+\.png$`), photo.Filename)
	assert.Equal(t, "Sunset", photo.Title)
	assert.Equal(t, dataset.DefaultCategory, photo.Category)
	assert.Equal(t, ownerID, photo.UserID)
	assert.True(t, env.blobs.Exists(photo.Filename))

	rec = env.do(t, http.MethodGet, "/uploads/"+photo.Filename, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	// anonymous listings carry no "liked"
	rec = env.do(t, http.MethodGet, "/api/photos", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var anon []map[string]interface{}
	decode(t, rec, &anon)
	require.Len(t, anon, 1)
	assert.NotContains(t, anon[0], "liked")

	rec = env.do(t, http.MethodPost, "/api/photos/"+photo.ID+"/like", otherToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var like models.LikeResponse
	decode(t, rec, &like)
	assert.Equal(t, models.LikeResponse{Likes: 1, AlreadyLiked: false}, like)

	rec = env.do(t, http.MethodPost, "/api/photos/"+photo.ID+"/like", otherToken, nil)
	decode(t, rec, &like)
	assert.Equal(t, models.LikeResponse{Likes: 1, AlreadyLiked: true}, like)

	rec = env.do(t, http.MethodGet, "/api/photos", otherToken, nil)
	var views []models.PhotoView
	decode(t, rec, &views)
	require.Len(t, views, 1)
	require.NotNil(t, views[0].Liked)
	assert.True(t, *views[0].Liked)

	rec = env.do(t, http.MethodGet, "/api/photos/"+photo.ID, "", nil)
	var view models.PhotoView
	decode(t, rec, &view)
	require.NotNil(t, view.Liked)
	assert.False(t, *view.Liked)

	title := "Evening"
	rec = env.do(t, http.MethodPut, "/api/photos/"+photo.ID, otherToken, PhotoUpdateRequest{Title: &title})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Not authorized to update this photo", errorMessage(t, rec))

	rec = env.do(t, http.MethodPut, "/api/photos/"+photo.ID, ownerToken, PhotoUpdateRequest{Title: &title})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &photo)
	assert.Equal(t, "Evening", photo.Title)
	assert.NotNil(t, photo.UpdatedAt)

	rec = env.do(t, http.MethodGet, "/api/photos/"+photo.ID+"/thumbnail?size=100", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))

	rec = env.do(t, http.MethodDelete, "/api/photos/"+photo.ID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/photos/"+photo.ID, ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, env.blobs.Exists(photo.Filename))

	rec = env.do(t, http.MethodGet, "/api/photos/"+photo.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadRejections(t *testing.T) {
	env := newAPIEnv(t, 1024)
	token, _ := env.register(t, "uploader")

	rec := env.upload(t, token, "photo", "notes.jpg", []byte("just some text, not an image"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Only image files are allowed!", errorMessage(t, rec))

	rec = env.upload(t, token, "", "", nil, map[string]string{"title": "nothing"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file uploaded", errorMessage(t, rec))

	rec = env.upload(t, token, "photo", "big.png", pngImage(t, 4, 4), nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	big := append(pngImage(t, 4, 4), bytes.Repeat([]byte{0}, 4096)...)
	rec = env.upload(t, token, "photo", "big.png", big, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/photos", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestUploadWaitsForRestore checks an upload arriving while the dataset is
// held exclusively is applied after the section ends, blob and record together
func TestUploadWaitsForRestore(t *testing.T) {
	env := newAPIEnv(t, 0)
	token, _ := env.register(t, "carol")
	req := newUploadRequest(t, token, "photo", "late.png", pngImage(t, 4, 4), nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = env.store.Exclusive(func() error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	served := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		rec := httptest.NewRecorder()
		env.server.ServeHTTP(rec, req)
		served <- rec
	}()

	select {
	case <-served:
		t.Fatal("upload completed inside the exclusive section")
	case <-time.After(50 * time.Millisecond):
	}
	blobs, err := env.blobs.List()
	require.NoError(t, err)
	before := len(blobs)

	close(release)
	var rec *httptest.ResponseRecorder
	select {
	case rec = <-served:
	case <-time.After(2 * time.Second):
		t.Fatal("upload never completed")
	}
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	blobs, err = env.blobs.List()
	require.NoError(t, err)
	assert.Len(t, blobs, before+1)
	assert.Empty(t, env.store.MissingBlobs())
}

func TestUsersRequireAdmin(t *testing.T) {
	env := newAPIEnv(t, 0)
	userToken, userID := env.register(t, "regular")

	rec := env.do(t, http.MethodGet, "/api/users", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, authz.DeniedMessage, errorMessage(t, rec))

	rec = env.do(t, http.MethodGet, "/api/users", env.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []map[string]interface{}
	decode(t, rec, &users)
	assert.Len(t, users, 2)
	for _, u := range users {
		assert.NotContains(t, u, "password")
	}

	rec = env.do(t, http.MethodPost, "/api/users", env.adminToken, CreateUserRequest{Username: "bob"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please provide username, email and password", errorMessage(t, rec))

	rec = env.do(t, http.MethodPost, "/api/users", env.adminToken, CreateUserRequest{
		Username: "bob", Email: "bob@example.com", Password: "secret123", IsAdmin: true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var bob models.PublicUser
	decode(t, rec, &bob)
	assert.True(t, bob.IsAdmin)

	rec = env.do(t, http.MethodPost, "/api/users", env.adminToken, CreateUserRequest{
		Username: "bob", Email: "x@example.com", Password: "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/users/"+bob.ID, env.adminToken, UpdateUserRequest{Username: "regular"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Username or email already in use", errorMessage(t, rec))

	rec = env.do(t, http.MethodDelete, "/api/users/"+dataset.DefaultAdminID, env.adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cannot delete your own account", errorMessage(t, rec))

	rec = env.do(t, http.MethodDelete, "/api/users/"+userID, env.adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/users/"+userID, env.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBackupEndpoints(t *testing.T) {
	env := newAPIEnv(t, 0)

	rec := env.do(t, http.MethodPost, "/api/backups", env.adminToken, CreateBackupRequest{Name: "before"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created models.BackupCreatedResponse
	decode(t, rec, &created)
	assert.Contains(t, created.BackupPath, "before")

	rec = env.do(t, http.MethodGet, "/api/backups", env.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.BackupInfo
	decode(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "tar.gz", list[0].Format)
	assert.NotEmpty(t, list[0].SizeFormatted)

	userToken, _ := env.register(t, "latecomer")
	users, _, _ := env.store.Stats()
	require.Equal(t, 2, users)

	rec = env.do(t, http.MethodPost, "/api/backups/restore/"+list[0].ID, userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/backups/restore/"+list[0].ID, env.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	users, _, _ = env.store.Stats()
	assert.Equal(t, 1, users)

	rec = env.do(t, http.MethodPost, "/api/backups/restore/missing", env.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Backup not found", errorMessage(t, rec))

	rec = env.do(t, http.MethodDelete, "/api/backups/"+list[0].ID, env.adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodDelete, "/api/backups/"+list[0].ID, env.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/backups/logs", env.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var logs models.BackupLogsResponse
	decode(t, rec, &logs)
	assert.NotNil(t, logs.Logs)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newAPIEnv(t, 0)
	env.do(t, http.MethodGet, "/api/health/live", "", nil)

	rec := env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gallery_api_requests_total")
}
