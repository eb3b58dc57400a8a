package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sdko-org/media-vault/internal/auth"
	"github.com/sdko-org/media-vault/internal/cache"
	"github.com/sdko-org/media-vault/internal/config"
	"github.com/sdko-org/media-vault/internal/ledger"
	"github.com/sdko-org/media-vault/internal/media"
	"github.com/sdko-org/media-vault/internal/models"
	"github.com/sirupsen/logrus"
)

type fakeStorage struct {
	uploads map[string]string
	deletes []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: make(map[string]string)}
}

func (f *fakeStorage) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.uploads[key] = string(data)
	return "https://cdn.test/" + key, nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	f.deletes = append(f.deletes, key)
	delete(f.uploads, key)
	return nil
}

type testEnv struct {
	router  *mux.Router
	handler *Handler
	assets  *media.MemoryAssetStore
	views   *ledger.MemoryLedger
	admins  *auth.MemoryAdminStore
	store   *fakeStorage
	tokens  *auth.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{
		BaseURL:           "http://localhost:8000",
		StreamSecret:      "test-stream-secret",
		StreamTTL:         10 * time.Minute,
		AnalyticsCacheTTL: 5 * time.Minute,
	}

	assets := media.NewMemoryAssetStore()
	views := ledger.NewMemoryLedger()
	admins := auth.NewMemoryAdminStore()
	store := newFakeStorage()
	tokens := auth.NewTokenService([]byte("jwt-test-secret"), time.Hour, 7*24*time.Hour)
	svc := media.NewService(logger, []byte(cfg.StreamSecret), cfg.BaseURL, cfg.StreamTTL, assets, views)

	h := NewHandler(logger, cfg, svc, tokens, admins, store, cache.New(logger, ""))

	r := mux.NewRouter()
	RegisterRoutes(r, h,
		NewRateLimiter(100, time.Minute),
		NewRateLimiter(100, time.Minute),
		NewRateLimiter(100, time.Minute),
	)

	return &testEnv{router: r, handler: h, assets: assets, views: views, admins: admins, store: store, tokens: tokens}
}

func (env *testEnv) seedAsset(t *testing.T, id string) models.MediaAsset {
	t.Helper()
	asset := models.MediaAsset{
		ID:        id,
		Title:     "Launch recap",
		Kind:      models.MediaKindVideo,
		FileURL:   "https://cdn.test/media/" + id + ".mp4",
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := env.assets.Create(context.Background(), &asset); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return asset
}

func (env *testEnv) authHeader(t *testing.T) string {
	t.Helper()
	access, _, err := env.tokens.IssuePair(1, "admin@example.com", time.Now())
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	return "Bearer " + access
}

func (env *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestStreamURLRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	env.seedAsset(t, "M1")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/media/M1/stream-url", nil)
	rec := env.do(req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestStreamURLIssuesGrant(t *testing.T) {
	env := newTestEnv(t)
	env.seedAsset(t, "M1")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/media/M1/stream-url", nil)
	req.Header.Set("Authorization", env.authHeader(t))
	req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")
	rec := env.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var grant struct {
		StreamURL string `json:"stream_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &grant); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	u, err := url.Parse(grant.StreamURL)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	q := u.Query()
	if q.Get("exp") == "" || q.Get("sig") == "" {
		t.Fatalf("grant missing exp/sig: %s", grant.StreamURL)
	}
	// Descriptor binds to the first forwarded-for entry.
	if got := q.Get("ip"); got != "9.9.9.9" {
		t.Fatalf("ip = %q, want 9.9.9.9", got)
	}

	count, _ := env.views.CountViews(context.Background(), "M1")
	if count != 1 {
		t.Fatalf("issuance should log one view, got %d", count)
	}
}

func TestStreamRedirectsWithValidDescriptor(t *testing.T) {
	env := newTestEnv(t)
	asset := env.seedAsset(t, "M1")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/media/M1/stream-url", nil)
	req.Header.Set("Authorization", env.authHeader(t))
	req.Header.Set("X-Forwarded-For", "9.9.9.9")
	rec := env.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("issue status = %d", rec.Code)
	}

	var grant struct {
		StreamURL string `json:"stream_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &grant); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	u, _ := url.Parse(grant.StreamURL)

	streamReq := httptest.NewRequest(http.MethodGet, u.RequestURI(), nil)
	streamRec := env.do(streamReq)
	if streamRec.Code != http.StatusFound {
		t.Fatalf("stream status = %d, body %s", streamRec.Code, streamRec.Body.String())
	}
	if loc := streamRec.Header().Get("Location"); loc != asset.FileURL {
		t.Fatalf("Location = %q, want %q", loc, asset.FileURL)
	}
}

func TestStreamFailureStatuses(t *testing.T) {
	env := newTestEnv(t)
	env.seedAsset(t, "M1")

	issue := httptest.NewRequest(http.MethodGet, "/api/v1/media/M1/stream-url", nil)
	issue.Header.Set("Authorization", env.authHeader(t))
	issue.Header.Set("X-Forwarded-For", "9.9.9.9")
	rec := env.do(issue)

	var grant struct {
		StreamURL string `json:"stream_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &grant); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	u, _ := url.Parse(grant.StreamURL)
	q := u.Query()

	cases := []struct {
		name string
		url  string
		want int
	}{
		{"missing params", "/api/v1/media/stream/M1", http.StatusBadRequest},
		{"expired", fmt.Sprintf("/api/v1/media/stream/M1?exp=1000&sig=%s&ip=9.9.9.9", q.Get("sig")), http.StatusGone},
		{"bad signature", fmt.Sprintf("/api/v1/media/stream/M1?exp=%s&sig=%s&ip=9.9.9.9", q.Get("exp"), strings.Repeat("0", 64)), http.StatusForbidden},
		{"wrong client", fmt.Sprintf("/api/v1/media/stream/M1?exp=%s&sig=%s&ip=8.8.8.8", q.Get("exp"), q.Get("sig")), http.StatusForbidden},
		{"unknown media", fmt.Sprintf("/api/v1/media/stream/M2?exp=%s&sig=%s&ip=9.9.9.9", q.Get("exp"), q.Get("sig")), http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := env.do(httptest.NewRequest(http.MethodGet, tc.url, nil))
			if r.Code != tc.want {
				t.Fatalf("status = %d, want %d", r.Code, tc.want)
			}
		})
	}
}

func TestLogViewAndAnalytics(t *testing.T) {
	env := newTestEnv(t)
	env.seedAsset(t, "M1")
	authz := env.authHeader(t)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/media/M1/view", nil)
		req.Header.Set("Authorization", authz)
		req.Header.Set("X-Real-IP", "4.4.4.4")
		if rec := env.do(req); rec.Code != http.StatusOK {
			t.Fatalf("view status = %d", rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/media/M1/analytics", nil)
	req.Header.Set("Authorization", authz)
	rec := env.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("analytics status = %d, body %s", rec.Code, rec.Body.String())
	}

	var report struct {
		TotalViews  int64            `json:"total_views"`
		UniqueIPs   int64            `json:"unique_ips"`
		ViewsPerDay map[string]int64 `json:"views_per_day"`
		MediaInfo   struct {
			Title string `json:"title"`
		} `json:"media_info"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if report.TotalViews != 2 || report.UniqueIPs != 1 {
		t.Fatalf("report = %+v", report)
	}
	if report.MediaInfo.Title != "Launch recap" {
		t.Fatalf("media_info = %+v", report.MediaInfo)
	}

	missing := httptest.NewRequest(http.MethodGet, "/api/v1/media/nope/analytics", nil)
	missing.Header.Set("Authorization", authz)
	if rec := env.do(missing); rec.Code != http.StatusNotFound {
		t.Fatalf("missing analytics status = %d, want 404", rec.Code)
	}
}

func TestSignupAndLogin(t *testing.T) {
	env := newTestEnv(t)

	body := `{"email":"Admin@Example.com","password":"s3cret-pass"}`
	rec := env.do(httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = env.do(httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", strings.NewReader(body)))
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate signup status = %d, want 409", rec.Code)
	}

	rec = env.do(httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"admin@example.com","password":"wrong"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d, want 401", rec.Code)
	}

	rec = env.do(httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"ghost@example.com","password":"s3cret-pass"}`)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown admin status = %d, want 404", rec.Code)
	}

	rec = env.do(httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}

	var login struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if login.AccessToken == "" || login.RefreshToken == "" {
		t.Fatal("expected both tokens in login response")
	}

	// The issued access token opens protected routes.
	env.seedAsset(t, "M1")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/media/M1/stream-url", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	if rec := env.do(req); rec.Code != http.StatusOK {
		t.Fatalf("protected route with fresh token = %d", rec.Code)
	}

	stored, err := env.admins.FindByEmail(context.Background(), "admin@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if stored.RefreshToken != login.RefreshToken {
		t.Fatal("refresh token was not persisted")
	}
}

func multipartBody(t *testing.T, fields map[string]string, fileField, fileName, fileContent string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := fw.Write([]byte(fileContent)); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestUpload(t *testing.T) {
	env := newTestEnv(t)
	authz := env.authHeader(t)

	body, contentType := multipartBody(t, map[string]string{"title": "Demo", "type": "VIDEO"}, "media", "demo.mp4", "payload-bytes")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/media", body)
	req.Header.Set("Authorization", authz)
	req.Header.Set("Content-Type", contentType)
	rec := env.do(req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body %s", rec.Code, rec.Body.String())
	}

	var asset models.MediaAsset
	if err := json.Unmarshal(rec.Body.Bytes(), &asset); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if asset.Kind != models.MediaKindVideo {
		t.Fatalf("Kind = %q, want video", asset.Kind)
	}
	if !strings.HasPrefix(asset.FileURL, "https://cdn.test/media/") {
		t.Fatalf("FileURL = %q", asset.FileURL)
	}
	if len(env.store.uploads) != 1 {
		t.Fatalf("stored %d objects, want 1", len(env.store.uploads))
	}
}

func TestUploadRejectsBadRequests(t *testing.T) {
	env := newTestEnv(t)
	authz := env.authHeader(t)

	cases := []struct {
		name   string
		fields map[string]string
		file   bool
		want   int
	}{
		{"missing title", map[string]string{"type": "video"}, true, http.StatusBadRequest},
		{"invalid kind", map[string]string{"title": "x", "type": "image"}, true, http.StatusBadRequest},
		{"missing file", map[string]string{"title": "x", "type": "video"}, false, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fileField := ""
			if tc.file {
				fileField = "media"
			}
			body, contentType := multipartBody(t, tc.fields, fileField, "demo.mp4", "bytes")
			req := httptest.NewRequest(http.MethodPost, "/api/v1/media", body)
			req.Header.Set("Authorization", authz)
			req.Header.Set("Content-Type", contentType)
			if rec := env.do(req); rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}

	// Invalid kind must not leave the payload behind in object storage.
	if len(env.store.uploads) != 0 {
		t.Fatalf("storage holds %d orphaned objects", len(env.store.uploads))
	}
}
