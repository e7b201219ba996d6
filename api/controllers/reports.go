package controllers

import (
	"net/http"

	"github.com/kainanhq/kainan-pos-backend/api/responses"
	"github.com/kainanhq/kainan-pos-backend/internal/reports"
	"github.com/kainanhq/kainan-pos-backend/pkg/logger"
)

// SalesReport returns today's and all-time sales aggregates, scoped by role.
func SalesReport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats, err := svc.Sales(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
