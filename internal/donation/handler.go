package donation

import (
	"net/http"
	"strconv"
	"time"

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

// StartDonation creates a razorpay order for the caller
func (h *Handler) StartDonation(c *gin.Context) {
	var req CreateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.GetUserFromContext(c)
	req.UserID = user.ID
	req.IPAddress = middleware.GetIPFromContext(c)

	resp, err := h.svc.StartDonation(c.Request.Context(), req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data":    resp,
		"success": true,
	})
}

// VerifyPayment confirms a razorpay payment callback
func (h *Handler) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.IPAddress = middleware.GetIPFromContext(c)

	if err := h.svc.VerifyAndUpdateDonation(c.Request.Context(), req); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment verified",
		"success": true,
	})
}

// ListMyDonations returns the caller's own donation history
func (h *Handler) ListMyDonations(c *gin.Context) {
	user := middleware.GetUserFromContext(c)

	donations, err := h.svc.GetDonationsByUser(c.Request.Context(), user.ID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    donations,
		"success": true,
	})
}

// ListDonations is the admin-side filtered listing
func (h *Handler) ListDonations(c *gin.Context) {
	filters := DonationFilters{
		Status: c.Query("status"),
		Type:   c.Query("type"),
	}
	filters.SchemeID = parseUintQuery(c, "scheme_id")
	filters.ProjectID = parseUintQuery(c, "project_id")
	filters.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filters.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filters.From = &t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			end := t.AddDate(0, 0, 1)
			filters.To = &end
		}
	}

	donations, total, err := h.svc.GetDonationsWithFilters(c.Request.Context(), filters)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    donations,
		"total":   total,
		"page":    filters.Page,
		"limit":   filters.Limit,
		"success": true,
	})
}

func (h *Handler) GetDashboardStats(c *gin.Context) {
	stats, err := h.svc.GetDashboardStats(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    stats,
		"success": true,
	})
}

func (h *Handler) GetTopDonors(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	donors, err := h.svc.GetTopDonors(c.Request.Context(), limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    donors,
		"success": true,
	})
}

// GetReceipt returns the donation with a receipt number, generating one on
// first request. Donors may only fetch receipts for their own donations.
func (h *Handler) GetReceipt(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid donation id"})
		return
	}

	user := middleware.GetUserFromContext(c)
	donation, svcErr := h.svc.EnsureReceiptNumber(c.Request.Context(), uint(id))
	if svcErr != nil {
		respondWithError(c, svcErr)
		return
	}

	scope := middleware.GetScopeFromContext(c)
	if !scope.IsGlobal && donation.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    donation,
		"success": true,
	})
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
