package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/habits/api/transport"
	"github.com/fastygo/habits/domain"
	"github.com/fastygo/habits/pkg/httpcontext"
	planUC "github.com/fastygo/habits/usecase/plan"
)

type PlanHandler struct {
	baseHandler
	uc *planUC.UseCase
}

func NewPlanHandler(uc *planUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Monthly plan
// @Tags plans
// @Param year query int true "plan year"
// @Param month query int true "plan month"
// @Router /api/v1/plans [get]
func (h *PlanHandler) GetPlan(ctx *fasthttp.RequestCtx) {
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

	plan, err := h.uc.GetPlan(stdCtx, userID, year, month)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, plan)
}

// @Summary Replace the monthly plan
// @Tags plans
// @Accept json
// @Router /api/v1/plans [put]
func (h *PlanHandler) UpdatePlan(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.PlanUpdateRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	plan, err := h.uc.UpdatePlan(stdCtx, userID, domain.PlanUpdate{
		Year:        req.Year,
		Month:       req.Month,
		ActivityIDs: req.ActivityIDs,
	})
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, plan)
}
