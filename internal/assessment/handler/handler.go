// Package handler exposes the assessment flow over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"skillproof/internal/assessment/models"
	"skillproof/internal/assessment/service"
	"skillproof/internal/platform/middleware"
	id "skillproof/pkg/domain"
	dErrors "skillproof/pkg/domain-errors"
	"skillproof/pkg/platform/httputil"
)

// Service defines the assessment operations the handler exposes.
type Service interface {
	RequestSeed(ctx context.Context, quizID id.QuizID) (*service.SeedResult, error)
	SubmitAttempt(ctx context.Context, req service.SubmitRequest) (*models.Attempt, error)
	GetAttempt(ctx context.Context, attemptID id.AttemptID) (*models.Attempt, error)
	ListAttempts(ctx context.Context, candidateID id.CandidateID) ([]*models.Attempt, error)
}

// Handler handles assessment endpoints.
type Handler struct {
	logger      *slog.Logger
	assessments Service
}

// New creates an assessment Handler.
func New(assessments Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:      logger,
		assessments: assessments,
	}
}

// Register registers the assessment routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/quizzes/{quizID}/seed", h.handleRequestSeed)
	r.Post("/quizzes/{quizID}/attempts", h.handleSubmitAttempt)
	r.Get("/attempts", h.handleListAttempts)
	r.Get("/attempts/{attemptID}", h.handleGetAttempt)
}

type seedResponse struct {
	Seed      string            `json:"seed"`
	Questions []models.Question `json:"questions"`
}

type attemptPayload struct {
	Seed   string `json:"seed"`
	Answer string `json:"answer"`
}

type attemptResponse struct {
	ID        string    `json:"id"`
	QuizID    string    `json:"quiz_id"`
	Seed      string    `json:"seed"`
	Score     int       `json:"score"`
	MaxScore  int       `json:"max_score"`
	Pass      bool      `json:"pass"`
	AnchorTx  string    `json:"anchor_tx,omitempty"`
	Anchored  bool      `json:"anchored"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) handleRequestSeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := h.candidate(r); err != nil {
		httputil.WriteError(w, err)
		return
	}
	quizID, err := id.ParseQuizID(chi.URLParam(r, "quizID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.assessments.RequestSeed(ctx, quizID)
	if err != nil {
		h.logger.WarnContext(ctx, "seed request failed",
			"request_id", middleware.GetRequestID(ctx),
			"quiz_id", quizID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, seedResponse{Seed: result.Seed, Questions: result.Questions})
}

func (h *Handler) handleSubmitAttempt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := h.candidate(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	quizID, err := id.ParseQuizID(chi.URLParam(r, "quizID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var payload attemptPayload
	if err := httputil.DecodeJSON(r, &payload); err != nil {
		httputil.WriteError(w, err)
		return
	}

	attempt, err := h.assessments.SubmitAttempt(ctx, service.SubmitRequest{
		CandidateID: actor.CandidateID,
		TeamID:      actor.TeamID,
		QuizID:      quizID,
		Seed:        payload.Seed,
		Answer:      payload.Answer,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "attempt submission failed",
			"request_id", middleware.GetRequestID(ctx),
			"quiz_id", quizID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(attempt))
}

func (h *Handler) handleGetAttempt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := h.candidate(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	attemptID, err := id.ParseAttemptID(chi.URLParam(r, "attemptID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	attempt, err := h.assessments.GetAttempt(ctx, attemptID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if attempt.CandidateID != actor.CandidateID {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "attempt belongs to another candidate"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(attempt))
}

func (h *Handler) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := h.candidate(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	attempts, err := h.assessments.ListAttempts(ctx, actor.CandidateID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]attemptResponse, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, toResponse(a))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"attempts": out})
}

func (h *Handler) candidate(r *http.Request) (middleware.Actor, error) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok || actor.Role != middleware.RoleCandidate {
		return middleware.Actor{}, dErrors.New(dErrors.CodeForbidden, "only candidates may take assessments")
	}
	return actor, nil
}

func toResponse(a *models.Attempt) attemptResponse {
	return attemptResponse{
		ID:        a.ID.String(),
		QuizID:    a.QuizID.String(),
		Seed:      a.Seed,
		Score:     a.Score,
		MaxScore:  a.MaxScore,
		Pass:      a.Pass,
		AnchorTx:  a.AnchorTx,
		Anchored:  a.Anchored(),
		Message:   a.Message,
		CreatedAt: a.CreatedAt,
	}
}
