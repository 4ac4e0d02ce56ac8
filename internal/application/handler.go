package application

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/welfare-management-backend/internal/apperrors"
	"github.com/sharath018/welfare-management-backend/internal/auth"
	"github.com/sharath018/welfare-management-backend/internal/rbac"
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

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application id"})
		return 0, false
	}
	return uint(id), true
}

func recordRef(app *Application) rbac.RecordRef {
	return rbac.RecordRef{
		StateID:     app.StateID,
		DistrictID:  app.DistrictID,
		AreaID:      app.AreaID,
		UnitID:      app.UnitID,
		ProjectID:   app.ProjectID,
		SchemeID:    &app.SchemeID,
		OwnerUserID: &app.BeneficiaryID,
	}
}

// requireAccess loads the application and enforces the caller's scope over it
// before any read or state change. On failure the response is written and
// false returned.
func (h *Handler) requireAccess(c *gin.Context, id uint) (*Application, bool) {
	app, err := h.svc.GetApplication(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return nil, false
	}
	if !middleware.CanAccessRecord(c, recordRef(app)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return nil, false
	}
	return app, true
}

// CreateApplication files an aid request. Beneficiaries file for themselves;
// admins may file on a beneficiary's behalf by setting beneficiary_id.
func (h *Handler) CreateApplication(c *gin.Context) {
	var req CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.GetUserFromContext(c)
	beneficiaryID := user.ID
	if req.BeneficiaryID != 0 && user.Role.RoleName != auth.RoleBeneficiary {
		beneficiaryID = req.BeneficiaryID
	}

	app, err := h.svc.CreateApplication(c.Request.Context(), req, beneficiaryID, middleware.GetIPFromContext(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data":    app,
		"success": true,
	})
}

func (h *Handler) GetApplication(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	app, ok := h.requireAccess(c, id)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    app,
		"success": true,
	})
}

// ListApplications returns applications visible inside the caller's scope
func (h *Handler) ListApplications(c *gin.Context) {
	filter := ApplicationFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Page:   parseIntQuery(c, "page", 1),
		Limit:  parseIntQuery(c, "limit", 10),
	}
	filter.SchemeID = parseUintQuery(c, "scheme_id")
	filter.ProjectID = parseUintQuery(c, "project_id")
	filter.BeneficiaryID = parseUintQuery(c, "beneficiary_id")
	filter.DistrictID = parseUintQuery(c, "district_id")
	filter.AreaID = parseUintQuery(c, "area_id")
	filter.UnitID = parseUintQuery(c, "unit_id")

	scope := middleware.GetScopeFromContext(c)
	var regionIDs, projectIDs, schemeIDs []uint
	if !scope.IsGlobal {
		regionIDs = keys(scope.RegionIDs)
		projectIDs = keys(scope.ProjectIDs)
		schemeIDs = keys(scope.SchemeIDs)
	}

	result, err := h.svc.ListApplications(c.Request.Context(), filter, regionIDs, projectIDs, schemeIDs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    result,
		"success": true,
	})
}

// ListMyApplications returns the calling beneficiary's own applications
func (h *Handler) ListMyApplications(c *gin.Context) {
	user := middleware.GetUserFromContext(c)

	apps, err := h.svc.ListMyApplications(c.Request.Context(), user.ID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    apps,
		"success": true,
	})
}

func (h *Handler) MoveToReview(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if _, ok := h.requireAccess(c, id); !ok {
		return
	}

	user := middleware.GetUserFromContext(c)
	app, err := h.svc.MoveToReview(c.Request.Context(), id, user.ID, middleware.GetIPFromContext(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    app,
		"success": true,
	})
}

func (h *Handler) ApproveApplication(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if _, ok := h.requireAccess(c, id); !ok {
		return
	}

	var req ApproveApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.GetUserFromContext(c)
	app, err := h.svc.ApproveApplication(c.Request.Context(), id, req, user.ID, middleware.GetIPFromContext(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    app,
		"success": true,
	})
}

func (h *Handler) RejectApplication(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if _, ok := h.requireAccess(c, id); !ok {
		return
	}

	var req RejectApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.GetUserFromContext(c)
	app, err := h.svc.RejectApplication(c.Request.Context(), id, req.Reason, user.ID, middleware.GetIPFromContext(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    app,
		"success": true,
	})
}

func (h *Handler) CompleteApplication(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if _, ok := h.requireAccess(c, id); !ok {
		return
	}

	user := middleware.GetUserFromContext(c)
	app, err := h.svc.CompleteApplication(c.Request.Context(), id, user.ID, middleware.GetIPFromContext(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    app,
		"success": true,
	})
}

// CancelApplication withdraws an application. Beneficiaries may cancel their
// own; admins are limited to applications inside their scope.
func (h *Handler) CancelApplication(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if _, ok := h.requireAccess(c, id); !ok {
		return
	}

	user := middleware.GetUserFromContext(c)
	app, err := h.svc.CancelApplication(c.Request.Context(), id, user.ID, middleware.GetIPFromContext(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    app,
		"success": true,
	})
}

func parseIntQuery(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func parseUintQuery(c *gin.Context, key string) *uint {
	valueStr := c.Query(key)
	if valueStr == "" {
		return nil
	}
	value, err := strconv.ParseUint(valueStr, 10, 32)
	if err != nil {
		return nil
	}
	id := uint(value)
	return &id
}

func keys(set map[uint]struct{}) []uint {
	out := make([]uint, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
