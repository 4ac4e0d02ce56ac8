package recurringpayment

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/welfare-management-backend/internal/apperrors"
	"github.com/sharath018/welfare-management-backend/internal/application"
	"github.com/sharath018/welfare-management-backend/internal/rbac"
	"github.com/sharath018/welfare-management-backend/middleware"
)

// ApplicationGetter loads the application a schedule belongs to for
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

func parsePaymentID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return 0, false
	}
	return uint(id), true
}

// requirePaymentAccess loads the payment and enforces the caller's scope over
// its region chain. On failure the response is written and false returned.
func (h *Handler) requirePaymentAccess(c *gin.Context, id uint) (*RecurringPayment, bool) {
	payment, err := h.svc.GetPayment(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return nil, false
	}
	if !middleware.CanAccessRecord(c, rbac.RecordRef{
		StateID:     payment.StateID,
		DistrictID:  payment.DistrictID,
		AreaID:      payment.AreaID,
		UnitID:      payment.UnitID,
		ProjectID:   payment.ProjectID,
		SchemeID:    &payment.SchemeID,
		OwnerUserID: &payment.BeneficiaryID,
	}) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return nil, false
	}
	return payment, true
}

// requireApplicationAccess does the same for schedule-level routes, where the
// record being guarded is the application itself
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

// GenerateSchedule creates the full disbursement plan for an approved
// application
func (h *Handler) GenerateSchedule(c *gin.Context) {
	var req GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.requireApplicationAccess(c, req.ApplicationID) {
		return
	}

	user := middleware.GetUserFromContext(c)
	payments, err := h.svc.GenerateSchedule(c.Request.Context(), req, user.ID, middleware.GetIPFromContext(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data":    payments,
		"count":   len(payments),
		"success": true,
	})
}

func (h *Handler) GetPayment(c *gin.Context) {
	id, ok := parsePaymentID(c)
	if !ok {
		return
	}

	payment, ok := h.requirePaymentAccess(c, id)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    payment,
		"success": true,
	})
}

// ListByApplication returns an application's full schedule in payment order
func (h *Handler) ListByApplication(c *gin.Context) {
	appID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application id"})
		return
	}
	if !h.requireApplicationAccess(c, uint(appID)) {
		return
	}

	payments, err := h.svc.ListByApplication(c.Request.Context(), uint(appID))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    payments,
		"success": true,
	})
}

func (h *Handler) ListPayments(c *gin.Context) {
	filter := PaymentFilter{
		Status: c.Query("status"),
		Page:   parseIntQuery(c, "page", 1),
		Limit:  parseIntQuery(c, "limit", 10),
	}
	filter.ApplicationID = parseUintQuery(c, "application_id")
	filter.BeneficiaryID = parseUintQuery(c, "beneficiary_id")
	filter.SchemeID = parseUintQuery(c, "scheme_id")

	if fromStr := c.Query("from"); fromStr != "" {
		if from, err := time.Parse("2006-01-02", fromStr); err == nil {
			filter.FromDate = &from
		}
	}
	if toStr := c.Query("to"); toStr != "" {
		if to, err := time.Parse("2006-01-02", toStr); err == nil {
			filter.ToDate = &to
		}
	}

	scope := middleware.GetScopeFromContext(c)
	var regionIDs, projectIDs, schemeIDs []uint
	if !scope.IsGlobal {
		regionIDs = setToSlice(scope.RegionIDs)
		projectIDs = setToSlice(scope.ProjectIDs)
		schemeIDs = setToSlice(scope.SchemeIDs)
	}

	payments, total, err := h.svc.ListPayments(c.Request.Context(), filter, regionIDs, projectIDs, schemeIDs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    payments,
		"total":   total,
		"page":    filter.Page,
		"limit":   filter.Limit,
		"success": true,
	})
}

func (h *Handler) RecordPayment(c *gin.Context) {
	id, ok := parsePaymentID(c)
	if !ok {
		return
	}

	if _, ok := h.requirePaymentAccess(c, id); !ok {
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.GetUserFromContext(c)
	payment, err := h.svc.RecordPayment(c.Request.Context(), id, req, user.ID, middleware.GetIPFromContext(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    payment,
		"success": true,
	})
}

func (h *Handler) UpdatePayment(c *gin.Context) {
	id, ok := parsePaymentID(c)
	if !ok {
		return
	}

	if _, ok := h.requirePaymentAccess(c, id); !ok {
		return
	}

	var req UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.GetUserFromContext(c)
	payment, err := h.svc.UpdatePayment(c.Request.Context(), id, req, user.ID, middleware.GetIPFromContext(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    payment,
		"success": true,
	})
}

func (h *Handler) CancelPayment(c *gin.Context) {
	id, ok := parsePaymentID(c)
	if !ok {
		return
	}

	if _, ok := h.requirePaymentAccess(c, id); !ok {
		return
	}

	var req CancelPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.GetUserFromContext(c)
	payment, err := h.svc.CancelPayment(c.Request.Context(), id, req.Reason, user.ID, middleware.GetIPFromContext(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    payment,
		"success": true,
	})
}

// CancelSchedule cancels all pending payments of an application
func (h *Handler) CancelSchedule(c *gin.Context) {
	appID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application id"})
		return
	}
	if !h.requireApplicationAccess(c, uint(appID)) {
		return
	}

	var req CancelPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.GetUserFromContext(c)
	cancelled, err := h.svc.CancelSchedule(c.Request.Context(), uint(appID), req.Reason, user.ID, middleware.GetIPFromContext(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cancelled": cancelled,
		"success":   true,
	})
}

// RunSweep triggers the due/overdue sweep on demand (it also runs on a timer)
func (h *Handler) RunSweep(c *gin.Context) {
	result, err := h.svc.RunOverdueSweep(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    result,
		"success": true,
	})
}

func (h *Handler) GetBudgetForecast(c *gin.Context) {
	months := parseIntQuery(c, "months", 12)
	filter := ForecastFilter{
		SchemeID:  parseUintQuery(c, "scheme_id"),
		ProjectID: parseUintQuery(c, "project_id"),
	}

	scope := middleware.GetScopeFromContext(c)
	var regionIDs, projectIDs, schemeIDs []uint
	if !scope.IsGlobal {
		regionIDs = setToSlice(scope.RegionIDs)
		projectIDs = setToSlice(scope.ProjectIDs)
		schemeIDs = setToSlice(scope.SchemeIDs)
	}

	buckets, err := h.svc.GetBudgetForecast(c.Request.Context(), months, filter, regionIDs, projectIDs, schemeIDs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    buckets,
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

func setToSlice(set map[uint]struct{}) []uint {
	out := make([]uint, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
