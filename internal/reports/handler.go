package reports

import (
	"fmt"
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
	case apperrors.IsAccessDenied(err):
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// ExportReport streams a report download. Report type comes from the path,
// filters and format from query params.
func (h *Handler) ExportReport(c *gin.Context) {
	reportType := c.Param("type")

	req := ReportRequest{
		DateRange: c.DefaultQuery("date_range", DateRangeMonthly),
		Status:    c.Query("status"),
		Format:    c.DefaultQuery("format", FormatCSV),
	}
	req.SchemeID = parseUintQuery(c, "scheme_id")
	req.ProjectID = parseUintQuery(c, "project_id")

	if start := c.Query("start_date"); start != "" {
		if t, err := time.Parse("2006-01-02", start); err == nil {
			req.StartDate = t
		}
	}
	if end := c.Query("end_date"); end != "" {
		if t, err := time.Parse("2006-01-02", end); err == nil {
			req.EndDate = t
		}
	}

	scope := middleware.GetScopeFromContext(c)
	var regionIDs []uint
	if !scope.IsGlobal {
		regionIDs = make([]uint, 0, len(scope.RegionIDs))
		for id := range scope.RegionIDs {
			regionIDs = append(regionIDs, id)
		}
	}

	user := middleware.GetUserFromContext(c)
	fileBytes, fname, mime, err := h.svc.ExportReport(
		c.Request.Context(), reportType, req, regionIDs, user.ID, middleware.GetIPFromContext(c),
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fname))
	c.Data(http.StatusOK, mime, fileBytes)
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
