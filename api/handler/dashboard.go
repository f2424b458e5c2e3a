package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/habits/api/transport"
	"github.com/fastygo/habits/domain"
	"github.com/fastygo/habits/pkg/httpcontext"
	dashboardUC "github.com/fastygo/habits/usecase/dashboard"
)

type DashboardHandler struct {
	baseHandler
	uc *dashboardUC.UseCase
}

func NewDashboardHandler(uc *dashboardUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Monthly dashboard
// @Tags dashboard
// @Param year query int false "defaults to the current UTC year"
// @Param month query int false "defaults to the current UTC month"
// @Router /api/v1/dashboard [get]
func (h *DashboardHandler) GetDashboard(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	year, ok := h.queryInt(ctx, "year")
	if !ok {
		return
	}
	month, ok := h.queryInt(ctx, "month")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	dashboard, err := h.uc.GetDashboard(stdCtx, userID, year, month)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, dashboard)
}

// @Summary Analytics of one activity
// @Tags dashboard
// @Router /api/v1/dashboard/activities/{id}/analytics [get]
func (h *DashboardHandler) GetActivityAnalytics(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	year, ok := h.queryInt(ctx, "year")
	if !ok {
		return
	}
	month, ok := h.queryInt(ctx, "month")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	analytics, err := h.uc.GetActivityAnalytics(stdCtx, userID, pathParam(ctx, "id"), year, month)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, analytics)
}

// @Summary Set completion of an activity for one day
// @Tags dashboard
// @Accept json
// @Router /api/v1/dashboard/activities/{id}/status [put]
func (h *DashboardHandler) UpdateActivityStatus(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.StatusUpdateRequest
	if !h.decode(ctx, &req) {
		return
	}
	if req.IsCompleted == nil {
		h.respondInvalid(ctx, "is_completed is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	log, err := h.uc.UpdateActivityStatus(stdCtx, userID, pathParam(ctx, "id"), domain.StatusUpdate{
		Date:        req.Date,
		IsCompleted: *req.IsCompleted,
	})
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewActivityLogResponse(log))
}
