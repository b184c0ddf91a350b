// Package httptransport wires handlers, middleware, and operational
// endpoints into the service's HTTP surface.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	assessmenthandler "skillproof/internal/assessment/handler"
	billinghandler "skillproof/internal/billing/handler"
	credentialhandler "skillproof/internal/credential/handler"
	"skillproof/internal/platform/health"
	"skillproof/internal/platform/middleware"
)

// Deps carries everything the router mounts.
type Deps struct {
	Credentials *credentialhandler.Handler
	Assessments *assessmenthandler.Handler
	Billing     *billinghandler.Handler
	Health      *health.Handler
	Tokens      middleware.TokenValidator
	Logger      *slog.Logger
}

// NewRouter assembles the full route tree. Lifecycle endpoints sit behind
// bearer auth; health and metrics stay open for probes and scrapers.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Timeout(30 * time.Second))

	d.Health.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireActor(d.Tokens, d.Logger))

		d.Credentials.Register(r)
		d.Assessments.Register(r)
		d.Billing.Register(r)
	})

	return r
}
