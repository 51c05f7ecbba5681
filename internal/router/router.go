package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storerating-backend/config"
	"github.com/ikkim/storerating-backend/internal/app/controller"
	"github.com/ikkim/storerating-backend/internal/app/model"
	apperrors "github.com/ikkim/storerating-backend/internal/errors"
	"github.com/ikkim/storerating-backend/internal/middleware"
)

type Router struct {
	authController   *controller.AuthController
	adminController  *controller.AdminController
	storeController  *controller.StoreController
	ratingController *controller.RatingController
	liveController   *controller.LiveController
	healthController *controller.HealthController
	authMiddleware   *middleware.AuthMiddleware
	config           *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	adminController *controller.AdminController,
	storeController *controller.StoreController,
	ratingController *controller.RatingController,
	liveController *controller.LiveController,
	healthController *controller.HealthController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:   authController,
		adminController:  adminController,
		storeController:  storeController,
		ratingController: ratingController,
		liveController:   liveController,
		healthController: healthController,
		authMiddleware:   authMiddleware,
		config:           cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	authenticated := r.authMiddleware.Authenticate()
	adminOnly := r.authMiddleware.RequireRole(model.RoleAdmin)
	userOnly := r.authMiddleware.RequireRole(model.RoleUser)
	ownerOnly := r.authMiddleware.RequireRole(model.RoleStoreOwner)

	api := router.Group("/api")
	{
		api.GET("/health", r.healthController.Health)

		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.GET("/profile", authenticated, r.authController.Profile)
			auth.PUT("/password", authenticated, r.authController.ChangePassword)
			auth.POST("/logout", authenticated, r.authController.Logout)
		}

		users := api.Group("/users", authenticated)
		{
			users.GET("/profile", r.authController.Profile)
		}

		admin := api.Group("/admin", authenticated, adminOnly)
		{
			admin.GET("/dashboard", r.adminController.Dashboard)
			admin.POST("/users", r.adminController.CreateUser)
			admin.GET("/users", r.adminController.ListUsers)
			admin.GET("/users/:id", r.adminController.GetUser)
			admin.POST("/stores", r.adminController.CreateStore)
			admin.GET("/stores", r.adminController.ListStores)
			admin.GET("/reports/stores", r.adminController.DownloadStoreReport)
		}

		stores := api.Group("/stores", authenticated)
		{
			stores.GET("", userOnly, r.storeController.List)
			stores.GET("/my-store", ownerOnly, r.storeController.MyStore)
			stores.GET("/my-store/ratings", ownerOnly, r.storeController.MyStoreRatings)
			stores.GET("/my-store/live", ownerOnly, r.liveController.Connect)
		}

		ratings := api.Group("/ratings", authenticated, userOnly)
		{
			ratings.POST("", r.ratingController.Submit)
			ratings.GET("/store/:storeId", r.ratingController.GetForStore)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		apperrors.NotFound(c, apperrors.RouteNotFound, "Route not found")
	})

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
