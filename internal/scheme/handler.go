package scheme

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/welfare-management-backend/internal/apperrors"
	"github.com/sharath018/welfare-management-backend/middleware"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func respondWithError(c *gin.Context, err error) {
	switch {
	case apperrors.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperrors.IsInvalidState(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case apperrors.IsAccessDenied(err):
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func (h *Handler) CreateScheme(c *gin.Context) {
	var req CreateSchemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.GetUserFromContext(c)
	scheme, err := h.svc.CreateScheme(c.Request.Context(), req, user.ID, middleware.GetIPFromContext(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data":    scheme,
		"success": true,
	})
}

func (h *Handler) UpdateScheme(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scheme id"})
		return
	}

	var req UpdateSchemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.GetUserFromContext(c)
	scheme, err := h.svc.UpdateScheme(c.Request.Context(), uint(id), req, user.ID, middleware.GetIPFromContext(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    scheme,
		"success": true,
	})
}

func (h *Handler) DeactivateScheme(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scheme id"})
		return
	}

	user := middleware.GetUserFromContext(c)
	if err := h.svc.DeactivateScheme(c.Request.Context(), uint(id), user.ID, middleware.GetIPFromContext(c)); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Scheme deactivated",
		"success": true,
	})
}

func (h *Handler) GetScheme(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scheme id"})
		return
	}

	scheme, err := h.svc.GetScheme(c.Request.Context(), uint(id))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    scheme,
		"success": true,
	})
}

func (h *Handler) ListSchemes(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := SchemeFilter{
		SchemeType: c.Query("scheme_type"),
		Status:     c.Query("status"),
		Search:     c.Query("search"),
		Limit:      limit,
		Offset:     offset,
	}
	if projectStr := c.Query("project_id"); projectStr != "" {
		if pid, err := strconv.ParseUint(projectStr, 10, 32); err == nil {
			id := uint(pid)
			filter.ProjectID = &id
		}
	}

	schemes, total, err := h.svc.ListSchemes(c.Request.Context(), filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    schemes,
		"total":   total,
		"success": true,
	})
}

// ListOpenSchemes is the public catalog shown to beneficiaries
func (h *Handler) ListOpenSchemes(c *gin.Context) {
	schemes, err := h.svc.ListOpenSchemes(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    schemes,
		"success": true,
	})
}
