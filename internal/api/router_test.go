package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"sitetrack/internal/api/handlers"
	"sitetrack/internal/api/middleware"
	"sitetrack/internal/engine/tracking"
	"sitetrack/internal/platform/auth"
	"sitetrack/internal/platform/config"
	"sitetrack/internal/platform/database"
	"sitetrack/internal/platform/repositories"
	"sitetrack/migrations"
)

type received struct {
	path   string
	header http.Header
	body   []byte
}

func setupRouter(t *testing.T) (http.Handler, *sync.Mutex, *[]received) {
	var mu sync.Mutex
	var calls []received
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, received{path: r.URL.Path, header: r.Header.Clone(), body: body})
		mu.Unlock()
		w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(remote.Close)

	db, err := database.Open(config.DatabaseConfig{Path: ":memory:", MaxConnections: 1})
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db, migrations.FS); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	deliveries := repositories.NewDeliveryRepository(db)

	trackingCfg := tracking.Config{User: "42", Secret: "deadbeef", BaseURL: remote.URL, Realm: "ACME", Channel: "7"}
	submitter := tracking.NewSubmitter(trackingCfg, tracking.WithRecorder(deliveries))
	dispatcher := tracking.NewDispatcher(submitter, tracking.DispatcherConfig{Async: false, Timeout: 5 * time.Second}, nil)

	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	tokenSvc := auth.NewTokenService(config.JWTConfig{Secret: "s3cret", AccessTokenTTL: time.Minute})

	router := NewRouter(&Dependencies{
		PageHandler:          handlers.NewPageHandler("Site"),
		AuthHandler:          handlers.NewAuthHandler(auth.NewCredentialChecker(config.AdminConfig{Username: "admin", PasswordHash: string(hash)}), tokenSvc),
		DeliveryHandler:      handlers.NewDeliveryHandler(deliveries),
		HealthHandler:        handlers.NewHealthHandler(db, trackingCfg),
		MetricsHandler:       handlers.NewMetricsHandler(nil),
		AuthMiddleware:       middleware.NewAuthMiddleware(tokenSvc),
		PageBrowseMiddleware: middleware.NewPageBrowseMiddleware(dispatcher, "https://site.test"),
		LoginRateLimiter:     middleware.NewRateLimiter(10),
	})
	return router, &mu, &calls
}

func TestRouter_PageViewIsTracked(t *testing.T) {
	router, mu, calls := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	req.AddCookie(&http.Cookie{Name: "liana_t", Value: "tok123"})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected page to render, got %d", rr.Code)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(*calls) != 1 {
		t.Fatalf("Expected 1 import call, got %d", len(*calls))
	}
	call := (*calls)[0]
	if call.path != "/rest/v1/import" {
		t.Errorf("Unexpected path %s", call.path)
	}
	if !strings.HasPrefix(call.header.Get("Authorization"), "ACME 42:") {
		t.Errorf("Unexpected Authorization %s", call.header.Get("Authorization"))
	}
	expected := `{"channel":"7","no_duplicates":false,"data":[{"identity":{"token":"tok123"},"events":[{"verb":"pbr","items":{"url":"https://site.test/page"}}]}]}`
	if string(call.body) != expected {
		t.Errorf("Unexpected body %s", call.body)
	}
}

func TestRouter_NoCookieNotTracked(t *testing.T) {
	router, mu, calls := setupRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected page to render, got %d", rr.Code)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(*calls) != 0 {
		t.Errorf("Expected no import call, got %d", len(*calls))
	}
}

func TestRouter_DeliveriesRequireAdmin(t *testing.T) {
	router, _, _ := setupRouter(t)

	// Generate one delivery.
	req := httptest.NewRequest(http.MethodGet, "/about", nil)
	req.AddCookie(&http.Cookie{Name: "liana_t", Value: "tok"})
	router.ServeHTTP(httptest.NewRecorder(), req)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/deliveries", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/auth/token",
		bytes.NewBufferString(`{"username":"admin","password":"hunter2"}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected token, got %d", rr.Code)
	}
	var token handlers.TokenResponse
	json.NewDecoder(rr.Body).Decode(&token)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/deliveries", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 with token, got %d", rr.Code)
	}

	var list []struct {
		PageURL string `json:"page_url"`
		Result  string `json:"result"`
	}
	json.NewDecoder(rr.Body).Decode(&list)
	if len(list) != 1 || list[0].PageURL != "https://site.test/about" || list[0].Result != "sent" {
		t.Errorf("Unexpected deliveries %+v", list)
	}
}

func TestRouter_Health(t *testing.T) {
	router, _, _ := setupRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rr.Code)
	}
}
