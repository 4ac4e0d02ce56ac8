package payment

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

// ApplicationGetter loads the application a payment is filed against for
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

// requirePaymentAccess loads the payment and enforces the caller's scope over
// its region chain. On failure the response is written and false returned.
func (h *Handler) requirePaymentAccess(c *gin.Context, id uint) (*Payment, bool) {
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

// requireApplicationAccess guards creation, where the record being checked is
// the target application
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

func (h *Handler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.requireApplicationAccess(c, req.ApplicationID) {
		return
	}

	user := middleware.GetUserFromContext(c)
	payment, err := h.svc.CreatePayment(c.Request.Context(), req, user.ID, middleware.GetIPFromContext(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data":    payment,
		"success": true,
	})
}

func (h *Handler) CompletePayment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}
	if _, ok := h.requirePaymentAccess(c, uint(id)); !ok {
		return
	}

	var req CompletePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.GetUserFromContext(c)
	payment, err := h.svc.CompletePayment(c.Request.Context(), uint(id), req, user.ID, middleware.GetIPFromContext(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    payment,
		"success": true,
	})
}

func (h *Handler) FailPayment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}
	if _, ok := h.requirePaymentAccess(c, uint(id)); !ok {
		return
	}

	var body struct {
		Notes string `json:"notes"`
	}
	_ = c.ShouldBindJSON(&body)

	user := middleware.GetUserFromContext(c)
	payment, err := h.svc.FailPayment(c.Request.Context(), uint(id), body.Notes, user.ID, middleware.GetIPFromContext(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    payment,
		"success": true,
	})
}

func (h *Handler) GetPayment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}

	payment, ok := h.requirePaymentAccess(c, uint(id))
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    payment,
		"success": true,
	})
}

func (h *Handler) ListPayments(c *gin.Context) {
	filter := PaymentFilter{
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
	if benStr := c.Query("beneficiary_id"); benStr != "" {
		if id, err := strconv.ParseUint(benStr, 10, 32); err == nil {
			benID := uint(id)
			filter.BeneficiaryID = &benID
		}
	}

	scope := middleware.GetScopeFromContext(c)
	var regionIDs []uint
	if !scope.IsGlobal {
		for id := range scope.RegionIDs {
			regionIDs = append(regionIDs, id)
		}
	}

	payments, total, err := h.svc.ListPayments(c.Request.Context(), filter, regionIDs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    payments,
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
