package controller

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/internal/app/service"
	apperrors "github.com/ikkim/storerating-backend/internal/errors"
	"github.com/ikkim/storerating-backend/internal/middleware"
	"github.com/ikkim/storerating-backend/internal/storage"
	"github.com/ikkim/storerating-backend/internal/validation"
)

type AdminController struct {
	adminService  service.AdminService
	reportService service.ReportService
}

func NewAdminController(adminService service.AdminService, reportService service.ReportService) *AdminController {
	return &AdminController{
		adminService:  adminService,
		reportService: reportService,
	}
}

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,min=20,max=60"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,password"`
	Address  string `json:"address" binding:"required,max=400"`
	Role     string `json:"role" binding:"required,role"`
}

type CreateStoreRequest struct {
	Name    string `json:"name" binding:"required,min=20,max=60"`
	Email   string `json:"email" binding:"required,email,max=255"`
	Address string `json:"address" binding:"required,max=400"`
	OwnerID uint   `json:"ownerId" binding:"required,min=1"`
}

// Dashboard returns platform totals
// GET /api/admin/dashboard
func (ctrl *AdminController) Dashboard(c *gin.Context) {
	stats, err := ctrl.adminService.Dashboard()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to load dashboard", err)
		apperrors.InternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// CreateUser creates a user with an explicit role
// POST /api/admin/users
func (ctrl *AdminController) CreateUser(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateUserRequest
	if !validation.Bind(c, &req) {
		return
	}

	user, err := ctrl.adminService.CreateUser(req.Name, req.Email, req.Password, req.Address, model.UserRole(req.Role))
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			apperrors.RespondWithValidationError(c, "email", apperrors.AuthEmailAlreadyExists, "User already exists with this email")
			return
		}
		log.Error("Failed to create user", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ParseAndRespond(c, err, "create user")
		return
	}

	log.Info("Admin created user", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user":    user,
	})
}

// ListUsers lists users with filters, sorting and pagination
// GET /api/admin/users
func (ctrl *AdminController) ListUsers(c *gin.Context) {
	filter, ok := bindListQuery(c, repository.UserSortKeys)
	if !ok {
		return
	}

	users, pagination, err := ctrl.adminService.ListUsers(filter)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list users", err)
		apperrors.InternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":      users,
		"pagination": pagination,
	})
}

// GetUser returns one user; store owners include their store summary
// GET /api/admin/users/:id
func (ctrl *AdminController) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id", "Invalid user ID")
	if !ok {
		return
	}

	detail, err := ctrl.adminService.GetUser(id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
			return
		}
		middleware.GetLoggerFromContext(c).Error("Failed to load user", err, map[string]interface{}{
			"user_id": id,
		})
		apperrors.InternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": detail,
	})
}

// CreateStore creates a store for an existing store owner
// POST /api/admin/stores
func (ctrl *AdminController) CreateStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateStoreRequest
	if !validation.Bind(c, &req) {
		return
	}

	store, err := ctrl.adminService.CreateStore(req.Name, req.Email, req.Address, req.OwnerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStoreEmailExists):
			apperrors.RespondWithValidationError(c, "email", apperrors.StoreEmailExists, "Store already exists with this email")
		case errors.Is(err, service.ErrOwnerNotFound):
			apperrors.RespondWithValidationError(c, "ownerId", apperrors.StoreOwnerNotFound, "Owner not found")
		case errors.Is(err, service.ErrOwnerNotStoreOwner):
			apperrors.RespondWithValidationError(c, "ownerId", apperrors.StoreOwnerInvalid, "User must be a store owner")
		case errors.Is(err, service.ErrOwnerHasStore):
			apperrors.RespondWithValidationError(c, "ownerId", apperrors.StoreAlreadyOwned, "Store owner already has a store")
		default:
			log.Error("Failed to create store", err)
			apperrors.ParseAndRespond(c, err, "create store")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Store created successfully",
		"store":   store,
	})
}

// ListStores lists stores with owner name and rating aggregates
// GET /api/admin/stores
func (ctrl *AdminController) ListStores(c *gin.Context) {
	filter, ok := bindListQuery(c, repository.AdminStoreSortKeys)
	if !ok {
		return
	}
	filter.Role = ""

	stores, pagination, err := ctrl.adminService.ListStores(filter)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list stores", err)
		apperrors.InternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stores":     stores,
		"pagination": pagination,
	})
}

// DownloadStoreReport streams the store report workbook
// GET /api/admin/reports/stores
func (ctrl *AdminController) DownloadStoreReport(c *gin.Context) {
	data, err := ctrl.reportService.BuildStoreReport()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to build store report", err)
		apperrors.InternalError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, ctrl.reportService.FileName(time.Now())))
	c.Data(http.StatusOK, storage.ReportContentType, data)
}
