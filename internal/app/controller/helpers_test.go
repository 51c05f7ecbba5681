package controller

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/internal/app/service"
	"github.com/ikkim/storerating-backend/internal/db"
	apperrors "github.com/ikkim/storerating-backend/internal/errors"
	"github.com/ikkim/storerating-backend/internal/middleware"
	"github.com/ikkim/storerating-backend/internal/validation"
	"github.com/ikkim/storerating-backend/pkg/util"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testJWTSecret = "test-secret"
	testPassword  = "Abcdefg!"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := validation.Register(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type testServer struct {
	router  *gin.Engine
	db      *gorm.DB
	users   repository.UserRepository
	stores  repository.StoreRepository
	ratings repository.RatingRepository
}

// setupControllerTest wires the controllers against an in-memory database
// with the same paths and role gates as the production router.
func setupControllerTest(t *testing.T) *testServer {
	t.Helper()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	storeRepo := repository.NewStoreRepository(testDB)
	ratingRepo := repository.NewRatingRepository(testDB)

	authService := service.NewAuthService(userRepo, nil, testJWTSecret, time.Hour)
	adminService := service.NewAdminService(userRepo, storeRepo, ratingRepo)
	storeService := service.NewStoreService(storeRepo)
	ratingService := service.NewRatingService(ratingRepo, storeRepo, nil)
	reportService := service.NewReportService(storeRepo, adminService)

	authCtrl := NewAuthController(authService)
	adminCtrl := NewAdminController(adminService, reportService)
	storeCtrl := NewStoreController(storeService)
	ratingCtrl := NewRatingController(ratingService)

	auth := middleware.NewAuthMiddleware(testJWTSecret, userRepo, nil)
	authenticated := auth.Authenticate()

	router := gin.New()
	api := router.Group("/api")

	api.POST("/auth/register", authCtrl.Register)
	api.POST("/auth/login", authCtrl.Login)
	api.GET("/auth/profile", authenticated, authCtrl.Profile)
	api.PUT("/auth/password", authenticated, authCtrl.ChangePassword)
	api.POST("/auth/logout", authenticated, authCtrl.Logout)

	admin := api.Group("/admin", authenticated, auth.RequireRole(model.RoleAdmin))
	admin.GET("/dashboard", adminCtrl.Dashboard)
	admin.POST("/users", adminCtrl.CreateUser)
	admin.GET("/users", adminCtrl.ListUsers)
	admin.GET("/users/:id", adminCtrl.GetUser)
	admin.POST("/stores", adminCtrl.CreateStore)
	admin.GET("/stores", adminCtrl.ListStores)
	admin.GET("/reports/stores", adminCtrl.DownloadStoreReport)

	api.GET("/stores", authenticated, auth.RequireRole(model.RoleUser), storeCtrl.List)
	owner := api.Group("/stores/my-store", authenticated, auth.RequireRole(model.RoleStoreOwner))
	owner.GET("", storeCtrl.MyStore)
	owner.GET("/ratings", storeCtrl.MyStoreRatings)

	ratings := api.Group("/ratings", authenticated, auth.RequireRole(model.RoleUser))
	ratings.POST("", ratingCtrl.Submit)
	ratings.GET("/store/:storeId", ratingCtrl.GetForStore)

	return &testServer{
		router:  router,
		db:      testDB,
		users:   userRepo,
		stores:  storeRepo,
		ratings: ratingRepo,
	}
}

func (s *testServer) createUser(t *testing.T, name, email string, role model.UserRole) *model.User {
	t.Helper()
	hash, err := util.HashPassword(testPassword)
	require.NoError(t, err)
	user := &model.User{Name: name, Email: email, PasswordHash: hash, Address: "1 Test Street", Role: role}
	require.NoError(t, s.users.Create(user))
	return user
}

func (s *testServer) createStore(t *testing.T, name, email string, ownerID uint) *model.Store {
	t.Helper()
	store := &model.Store{Name: name, Email: email, Address: "1 Store Street", OwnerID: ownerID}
	require.NoError(t, s.stores.Create(store))
	return store
}

func tokenFor(t *testing.T, user *model.User) string {
	t.Helper()
	token, err := util.GenerateToken(user.ID, user.Email, user.Role.String(), testJWTSecret, time.Hour)
	require.NoError(t, err)
	return token
}

// do sends a request; body is JSON-encoded unless it is a string.
func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf *bytes.Buffer
	switch b := body.(type) {
	case nil:
		buf = &bytes.Buffer{}
	case string:
		buf = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		buf = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
