package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/agrojardin/checkout/libs/logging"
)

// HealthCheckResponse - response structure for healthchecks
type HealthCheckResponse struct {
	BuildTime string `json:"buildTime"`
	Commit    string `json:"commit"`
	Version   string `json:"version"`
	// service status is an accumulated map of dependency health mapped on dependency name
	ServiceStatus map[string]interface{} `json:"serviceStatus,omitempty"`
}

// StatusFunc reports the health of the service dependencies, and whether all are healthy
type StatusFunc func(ctx context.Context) (map[string]interface{}, bool)

// RenderJSON - helper to render a HealthCheckResponse as Json to an http.ResponseWriter
func (hcr HealthCheckResponse) RenderJSON(ctx context.Context, w http.ResponseWriter, status int) error {
	logger := logging.Logger(ctx, "handlers.HealthCheckResponse.RenderJSON")
	body, err := json.Marshal(hcr)
	if err != nil {
		return fmt.Errorf("failed to marshal response in render json: %w", err)
	}
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logger.Error().Err(err).Msg("failed to write response to writer")
	}
	return nil
}

// HealthCheckHandler - function which generates a health check http.HandlerFunc.
// statusFn may be nil.
func HealthCheckHandler(version, buildTime, commit string, statusFn StatusFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.Logger(ctx, "handlers.HealthCheckHandler")

		hcr := HealthCheckResponse{
			Commit:    commit,
			BuildTime: buildTime,
			Version:   version,
		}

		status := http.StatusOK
		if statusFn != nil {
			var healthy bool
			hcr.ServiceStatus, healthy = statusFn(ctx)
			if !healthy {
				status = http.StatusServiceUnavailable
			}
		}

		if err := hcr.RenderJSON(ctx, w, status); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			if _, err := w.Write([]byte("unhealthy")); err != nil {
				logger.Error().Err(err).Msg("failed to write response to writer")
			}
		}
	}
}
