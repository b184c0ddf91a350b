// Package handler exposes subscription billing over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"skillproof/internal/platform/middleware"
	id "skillproof/pkg/domain"
	dErrors "skillproof/pkg/domain-errors"
	"skillproof/pkg/platform/httputil"
)

// Service defines the billing operations the handler exposes.
type Service interface {
	PlanPrice(ctx context.Context, planKey string) (int64, error)
	Pay(ctx context.Context, teamID id.TeamID, planKey string) (string, error)
}

// Handler handles billing endpoints.
type Handler struct {
	logger  *slog.Logger
	billing Service
}

// New creates a billing Handler.
func New(billing Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, billing: billing}
}

// Register registers the billing routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/billing/plans/{planKey}/price", h.handlePlanPrice)
	r.Post("/billing/subscriptions/pay", h.handlePay)
}

type payPayload struct {
	PlanKey string `json:"plan_key"`
}

func (h *Handler) handlePlanPrice(w http.ResponseWriter, r *http.Request) {
	planKey := chi.URLParam(r, "planKey")

	price, err := h.billing.PlanPrice(r.Context(), planKey)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"plan":  planKey,
		"price": price,
	})
}

func (h *Handler) handlePay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := middleware.GetActor(ctx)
	if !ok || actor.Role != middleware.RoleCandidate {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "only candidates may pay for their team"))
		return
	}
	var payload payPayload
	if err := httputil.DecodeJSON(r, &payload); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if payload.PlanKey == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "plan_key is required"))
		return
	}

	txHash, err := h.billing.Pay(ctx, actor.TeamID, payload.PlanKey)
	if err != nil {
		h.logger.WarnContext(ctx, "subscription payment failed",
			"request_id", middleware.GetRequestID(ctx),
			"plan", payload.PlanKey,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"tx_hash": txHash})
}
