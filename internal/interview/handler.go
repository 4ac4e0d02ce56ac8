package interview

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/welfare-management-backend/internal/apperrors"
	"github.com/sharath018/welfare-management-backend/internal/application"
	"github.com/sharath018/welfare-management-backend/internal/rbac"
	"github.com/sharath018/welfare-management-backend/middleware"
)

// ApplicationGetter loads the application an interview verifies for
// record-level access checks
type ApplicationGetter interface {
	GetApplication(ctx context.Context, id uint) (*application.Application, error)
}

type Handler struct {
	svc  Service
	apps ApplicationGetter
}

func NewHandler(svc Service, apps ApplicationGetter) *Handler {
	return &Handler{svc: svc, apps: apps}
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

func parseInterviewID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid interview id"})
		return 0, false
	}
	return uint(id), true
}

// requireInterviewAccess loads the interview and enforces the caller's scope
// over its region chain. On failure the response is written and false
// returned.
func (h *Handler) requireInterviewAccess(c *gin.Context, id uint) (*Interview, bool) {
	interview, err := h.svc.GetInterview(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return nil, false
	}
	if !middleware.CanAccessRecord(c, rbac.RecordRef{
		StateID:     interview.StateID,
		DistrictID:  interview.DistrictID,
		AreaID:      interview.AreaID,
		UnitID:      interview.UnitID,
		OwnerUserID: &interview.BeneficiaryID,
	}) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return nil, false
	}
	return interview, true
}

// requireApplicationAccess guards routes keyed by application id
func (h *Handler) requireApplicationAccess(c *gin.Context, applicationID uint) bool {
	app, err := h.apps.GetApplication(c.Request.Context(), applicationID)
	if err != nil {
		respondWithError(c, err)
		return false
	}
	if !middleware.CanAccessRecord(c, rbac.RecordRef{
		StateID:     app.StateID,
		DistrictID:  app.DistrictID,
		AreaID:      app.AreaID,
		UnitID:      app.UnitID,
		ProjectID:   app.ProjectID,
		SchemeID:    &app.SchemeID,
		OwnerUserID: &app.BeneficiaryID,
	}) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return false
	}
	return true
}

func (h *Handler) ScheduleInterview(c *gin.Context) {
	var req ScheduleInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.requireApplicationAccess(c, req.ApplicationID) {
		return
	}

	user := middleware.GetUserFromContext(c)
	interview, err := h.svc.ScheduleInterview(c.Request.Context(), req, user.ID, middleware.GetIPFromContext(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data":    interview,
		"success": true,
	})
}

func (h *Handler) RescheduleInterview(c *gin.Context) {
	id, ok := parseInterviewID(c)
	if !ok {
		return
	}
	if _, ok := h.requireInterviewAccess(c, id); !ok {
		return
	}

	var req RescheduleInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.GetUserFromContext(c)
	interview, err := h.svc.RescheduleInterview(c.Request.Context(), id, req, user.ID, middleware.GetIPFromContext(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    interview,
		"success": true,
	})
}

// RecordResult completes an interview; a passed result approves the
// application and starts disbursement
func (h *Handler) RecordResult(c *gin.Context) {
	id, ok := parseInterviewID(c)
	if !ok {
		return
	}
	if _, ok := h.requireInterviewAccess(c, id); !ok {
		return
	}

	var req RecordResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.GetUserFromContext(c)
	interview, err := h.svc.RecordResult(c.Request.Context(), id, req, user.ID, middleware.GetIPFromContext(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    interview,
		"success": true,
	})
}

func (h *Handler) CancelInterview(c *gin.Context) {
	id, ok := parseInterviewID(c)
	if !ok {
		return
	}
	if _, ok := h.requireInterviewAccess(c, id); !ok {
		return
	}

	user := middleware.GetUserFromContext(c)
	interview, err := h.svc.CancelInterview(c.Request.Context(), id, user.ID, middleware.GetIPFromContext(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    interview,
		"success": true,
	})
}

func (h *Handler) GetInterview(c *gin.Context) {
	id, ok := parseInterviewID(c)
	if !ok {
		return
	}

	interview, ok := h.requireInterviewAccess(c, id)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    interview,
		"success": true,
	})
}

func (h *Handler) ListByApplication(c *gin.Context) {
	appID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application id"})
		return
	}
	if !h.requireApplicationAccess(c, uint(appID)) {
		return
	}

	interviews, err := h.svc.ListByApplication(c.Request.Context(), uint(appID))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    interviews,
		"success": true,
	})
}

func (h *Handler) ListInterviews(c *gin.Context) {
	filter := InterviewFilter{
		Status: c.Query("status"),
		Page:   parseIntQuery(c, "page", 1),
		Limit:  parseIntQuery(c, "limit", 10),
	}
	if appStr := c.Query("application_id"); appStr != "" {
		if id, err := strconv.ParseUint(appStr, 10, 32); err == nil {
			appID := uint(id)
			filter.ApplicationID = &appID
		}
	}
	if intStr := c.Query("interviewer_id"); intStr != "" {
		if id, err := strconv.ParseUint(intStr, 10, 32); err == nil {
			interviewerID := uint(id)
			filter.InterviewerID = &interviewerID
		}
	}

	scope := middleware.GetScopeFromContext(c)
	var regionIDs []uint
	if !scope.IsGlobal {
		for id := range scope.RegionIDs {
			regionIDs = append(regionIDs, id)
		}
	}

	interviews, total, err := h.svc.ListInterviews(c.Request.Context(), filter, regionIDs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    interviews,
		"total":   total,
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
