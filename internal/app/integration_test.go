package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/ikkim/storerating-backend/config"
	"github.com/ikkim/storerating-backend/internal/app/controller"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/internal/app/service"
	"github.com/ikkim/storerating-backend/internal/db"
	"github.com/ikkim/storerating-backend/internal/middleware"
	"github.com/ikkim/storerating-backend/internal/router"
	"github.com/ikkim/storerating-backend/internal/validation"
	ws "github.com/ikkim/storerating-backend/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memoryBlacklist stands in for the Redis blacklist.
type memoryBlacklist struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (m *memoryBlacklist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ttl > 0 {
		m.revoked[tokenID] = true
	}
	return nil
}

func (m *memoryBlacklist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[tokenID], nil
}

type TestServer struct {
	Router *gin.Engine
	DB     *gorm.DB
	Hub    *ws.Hub
	Config *config.Config
}

func setupIntegrationTest(t *testing.T) *TestServer {
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.Register())

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	cfg := &config.Config{
		Server: config.ServerConfig{GinMode: gin.TestMode, Environment: "test"},
		JWT:    config.JWTConfig{Secret: "integration-secret", Expiry: time.Hour},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Seed: config.SeedConfig{
			AdminName:     "System Administrator Account",
			AdminEmail:    "admin@example.com",
			AdminPassword: "Admin@1234",
			AdminAddress:  "Head Office",
		},
	}
	require.NoError(t, db.SeedAdmin(testDB, &cfg.Seed))

	blacklist := &memoryBlacklist{revoked: map[string]bool{}}
	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	userRepo := repository.NewUserRepository(testDB)
	storeRepo := repository.NewStoreRepository(testDB)
	ratingRepo := repository.NewRatingRepository(testDB)

	authService := service.NewAuthService(userRepo, blacklist, cfg.JWT.Secret, cfg.JWT.Expiry)
	adminService := service.NewAdminService(userRepo, storeRepo, ratingRepo)
	storeService := service.NewStoreService(storeRepo)
	ratingService := service.NewRatingService(ratingRepo, storeRepo, hub)
	reportService := service.NewReportService(storeRepo, adminService)

	r := router.NewRouter(
		controller.NewAuthController(authService),
		controller.NewAdminController(adminService, reportService),
		controller.NewStoreController(storeService),
		controller.NewRatingController(ratingService),
		controller.NewLiveController(hub, cfg.CORS.AllowedOrigins),
		controller.NewHealthController(testDB),
		middleware.NewAuthMiddleware(cfg.JWT.Secret, userRepo, blacklist),
		cfg,
	)

	return &TestServer{Router: r.Setup(), DB: testDB, Hub: hub, Config: cfg}
}

func (ts *TestServer) request(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
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
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)

	var resp map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w.Code, resp
}

func (ts *TestServer) login(t *testing.T, email, password string) string {
	t.Helper()
	code, resp := ts.request(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, code, resp)
	return resp["token"].(string)
}

func TestCompleteRatingJourney(t *testing.T) {
	ts := setupIntegrationTest(t)

	t.Log("Step 1: Admin logs in with the seeded account")
	adminToken := ts.login(t, "admin@example.com", "Admin@1234")

	t.Log("Step 2: Admin creates a store owner and a store")
	code, resp := ts.request(t, "POST", "/api/admin/users", adminToken, map[string]string{
		"name":     "Store Owner Number One",
		"email":    "owner@example.com",
		"password": "Owner#Pass1",
		"address":  "7 Market Road",
		"role":     "store_owner",
	})
	require.Equal(t, http.StatusCreated, code, resp)
	ownerID := resp["user"].(map[string]interface{})["id"].(float64)

	code, resp = ts.request(t, "POST", "/api/admin/stores", adminToken, map[string]interface{}{
		"name":    "The Corner Coffee House",
		"email":   "corner@example.com",
		"address": "1 Corner Street",
		"ownerId": ownerID,
	})
	require.Equal(t, http.StatusCreated, code, resp)
	storeID := resp["store"].(map[string]interface{})["id"].(float64)

	t.Log("Step 3: Owner opens the live feed")
	ownerToken := ts.login(t, "owner@example.com", "Owner#Pass1")
	server := httptest.NewServer(ts.Router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/stores/my-store/live?token=" + ownerToken
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return ts.Hub.IsOwnerOnline(uint(ownerID)) }, time.Second, 5*time.Millisecond)

	t.Log("Step 4: A user registers and rates the store")
	code, resp = ts.request(t, "POST", "/api/auth/register", "", map[string]string{
		"name":     "Alice Wonderland Smithson",
		"email":    "alice@example.com",
		"password": "Alice#Pass1",
		"address":  "3 River Lane",
	})
	require.Equal(t, http.StatusCreated, code, resp)
	userToken := resp["token"].(string)

	code, resp = ts.request(t, "POST", "/api/ratings", userToken, map[string]interface{}{
		"storeId": storeID,
		"rating":  4,
	})
	require.Equal(t, http.StatusOK, code, resp)
	assert.Equal(t, "Rating submitted successfully", resp["message"])

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event ws.RatingEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, ws.EventRating, event.Type)
	assert.True(t, event.Created)
	assert.Equal(t, 4, event.Rating.Rating)

	code, resp = ts.request(t, "POST", "/api/ratings", userToken, map[string]interface{}{
		"storeId": storeID,
		"rating":  5,
	})
	require.Equal(t, http.StatusOK, code, resp)
	assert.Equal(t, "Rating updated successfully", resp["message"])

	t.Log("Step 5: The user sees the aggregate and their own rating")
	code, resp = ts.request(t, "GET", "/api/stores?name=corner", userToken, nil)
	require.Equal(t, http.StatusOK, code, resp)
	stores := resp["stores"].([]interface{})
	require.Len(t, stores, 1)
	store := stores[0].(map[string]interface{})
	assert.EqualValues(t, 5, store["average_rating"])
	assert.EqualValues(t, 1, store["total_ratings"])
	assert.EqualValues(t, 5, store["user_rating"])

	t.Log("Step 6: The owner sees the rating on their dashboard")
	code, resp = ts.request(t, "GET", "/api/stores/my-store/ratings", ownerToken, nil)
	require.Equal(t, http.StatusOK, code, resp)
	ratings := resp["ratings"].([]interface{})
	require.Len(t, ratings, 1)
	assert.Equal(t, "alice@example.com", ratings[0].(map[string]interface{})["email"])

	t.Log("Step 7: Admin dashboard reflects all records")
	code, resp = ts.request(t, "GET", "/api/admin/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 3, resp["totalUsers"])
	assert.EqualValues(t, 1, resp["totalStores"])
	assert.EqualValues(t, 1, resp["totalRatings"])

	t.Log("Step 8: Logout revokes the token")
	code, _ = ts.request(t, "POST", "/api/auth/logout", userToken, nil)
	require.Equal(t, http.StatusOK, code)
	code, resp = ts.request(t, "GET", "/api/auth/profile", userToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "AUTH_TOKEN_REVOKED", resp["code"])
}

func TestRouteGuards(t *testing.T) {
	ts := setupIntegrationTest(t)
	adminToken := ts.login(t, "admin@example.com", "Admin@1234")

	tests := []struct {
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{"GET", "/api/health", "", http.StatusOK},
		{"GET", "/api/admin/dashboard", "", http.StatusUnauthorized},
		{"GET", "/api/admin/dashboard", "garbage", http.StatusForbidden},
		{"GET", "/api/stores", adminToken, http.StatusForbidden},
		{"POST", "/api/ratings", adminToken, http.StatusForbidden},
		{"GET", "/api/stores/my-store", adminToken, http.StatusForbidden},
		{"GET", "/api/users/profile", adminToken, http.StatusOK},
		{"GET", "/api/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %s", tt.method, tt.path), func(t *testing.T) {
			code, _ := ts.request(t, tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.wantStatus, code)
		})
	}

	code, resp := ts.request(t, "GET", "/api/does-not-exist", "", nil)
	require.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Route not found", resp["error"])
	assert.Equal(t, "ROUTE_NOT_FOUND", resp["code"])
}

func TestCORSPreflight(t *testing.T) {
	ts := setupIntegrationTest(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
