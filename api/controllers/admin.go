package controllers

import (
	"net/http"

	"github.com/ogsoda/delivery-backend/api/responses"
	"github.com/ogsoda/delivery-backend/internal/admin"
	"github.com/ogsoda/delivery-backend/pkg/logger"
)

// AdminMetrics serves the dashboard counters.
func AdminMetrics(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("admin"))
			return
		}

		dashboard, err := svc.Dashboard(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dashboard)
	}
}
