package beneficiary

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/welfare-management-backend/internal/apperrors"
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

// SaveMyProfile upserts the calling beneficiary's profile
func (h *Handler) SaveMyProfile(c *gin.Context) {
	var profile BeneficiaryProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.GetUserFromContext(c)
	saved, err := h.svc.SaveProfile(c.Request.Context(), &profile, user.ID, middleware.GetIPFromContext(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    saved,
		"success": true,
	})
}

func (h *Handler) GetMyProfile(c *gin.Context) {
	user := middleware.GetUserFromContext(c)

	profile, err := h.svc.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    profile,
		"success": true,
	})
}

// GetBeneficiary returns another user's profile for admins inside whose
// scope the beneficiary falls
func (h *Handler) GetBeneficiary(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	profile, err := h.svc.GetProfile(c.Request.Context(), uint(userID))
	if err != nil {
		respondWithError(c, err)
		return
	}

	if !middleware.CanAccessRecord(c, rbac.RecordRef{
		StateID:     profile.StateID,
		DistrictID:  profile.DistrictID,
		AreaID:      profile.AreaID,
		UnitID:      profile.UnitID,
		OwnerUserID: &profile.UserID,
	}) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    profile,
		"success": true,
	})
}

func (h *Handler) ListBeneficiaries(c *gin.Context) {
	filter := BeneficiaryFilter{
		Search: c.Query("search"),
		Page:   parseIntQuery(c, "page", 1),
		Limit:  parseIntQuery(c, "limit", 10),
	}
	if dStr := c.Query("district_id"); dStr != "" {
		if id, err := strconv.ParseUint(dStr, 10, 32); err == nil {
			did := uint(id)
			filter.DistrictID = &did
		}
	}
	if aStr := c.Query("area_id"); aStr != "" {
		if id, err := strconv.ParseUint(aStr, 10, 32); err == nil {
			aid := uint(id)
			filter.AreaID = &aid
		}
	}
	if uStr := c.Query("unit_id"); uStr != "" {
		if id, err := strconv.ParseUint(uStr, 10, 32); err == nil {
			uid := uint(id)
			filter.UnitID = &uid
		}
	}

	scope := middleware.GetScopeFromContext(c)
	var regionIDs []uint
	if !scope.IsGlobal {
		for id := range scope.RegionIDs {
			regionIDs = append(regionIDs, id)
		}
	}

	profiles, total, err := h.svc.ListBeneficiaries(c.Request.Context(), filter, regionIDs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    profiles,
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
