package handler

import (
	"context"
	"net/http"

	"github.com/appdotbuilder/bidan-hebat-management/internal/apierror"
	"github.com/appdotbuilder/bidan-hebat-management/internal/dto"
	"github.com/appdotbuilder/bidan-hebat-management/internal/service"
	"github.com/appdotbuilder/bidan-hebat-management/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type DashboardHandler struct{ svc service.DashboardService }

func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Stats godoc
// @Summary      Dashboard statistics
// @Description  Served from the cache when available; refreshed after every write.
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} dto.DashboardStats
// @Router       /api/dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	resp, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SalesSummary godoc
// @Summary      Sales summary for a date range
// @Tags         dashboard
// @Produce      json
// @Param        from query string false "Range start (default first of month)"
// @Param        to   query string false "Range end (default today)"
// @Success      200 {object} dto.SalesSummary
// @Failure      400 {object} apierror.APIError
// @Router       /api/dashboard/sales-summary [get]
func (h *DashboardHandler) SalesSummary(c *gin.Context) {
	var filter dto.RangeFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.SalesSummary(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// TopMedicines godoc
// @Summary      Best selling medicines
// @Tags         dashboard
// @Produce      json
// @Param        from  query string false "Range start (default first of month)"
// @Param        to    query string false "Range end (default today)"
// @Param        limit query int    false "How many (default 5)"
// @Success      200 {array} dto.TopMedicine
// @Router       /api/dashboard/top-medicines [get]
func (h *DashboardHandler) TopMedicines(c *gin.Context) {
	var filter dto.RangeFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.TopMedicines(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// NotificationLister reads the low-stock notification feed.
type NotificationLister interface {
	List(ctx context.Context, limit int) ([]worker.Notification, error)
}

type notificationsQuery struct {
	Limit int `form:"limit,default=20" validate:"min=1,max=100"`
}

// Notifications godoc
// @Summary      Recent low-stock notifications
// @Tags         dashboard
// @Produce      json
// @Param        limit query int false "How many (default 20, max 100)"
// @Success      200 {array}  worker.Notification
// @Failure      503 {object} apierror.APIError
// @Router       /api/notifications [get]
func Notifications(feed NotificationLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q notificationsQuery
		if !bindQuery(c, &q) {
			return
		}
		items, err := feed.List(c.Request.Context(), q.Limit)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, apierror.New("Notification feed unavailable"))
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// DeadLetters godoc
// @Summary      Low-stock jobs that exhausted their retries
// @Tags         dashboard
// @Produce      json
// @Param        limit query int false "How many (default 20, max 100)"
// @Success      200 {array}  worker.DeadLetter
// @Failure      503 {object} apierror.APIError
// @Router       /api/notifications/dead-letters [get]
func DeadLetters(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q notificationsQuery
		if !bindQuery(c, &q) {
			return
		}
		if rdb == nil {
			c.JSON(http.StatusOK, []worker.DeadLetter{})
			return
		}
		items, err := worker.ListDLQ(c.Request.Context(), rdb, worker.QueueStockAlert, int64(q.Limit))
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, apierror.New("Dead letter queue unavailable"))
			return
		}
		c.JSON(http.StatusOK, items)
	}
}
