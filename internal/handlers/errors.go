package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"weather-telemetry/internal/models"
	"weather-telemetry/internal/provider"
	"weather-telemetry/internal/repository"
	"weather-telemetry/pkg/logging"
)

// Error kinds reported in ErrorResponse.Kind.
const (
	KindValidation   = "validation"
	KindNotFound     = "not_found"
	KindUpstreamAuth = "upstream_auth"
	KindRateLimited  = "rate_limited"
	KindUpstream     = "upstream"
	KindTimeout      = "timeout"
	KindInternal     = "internal"
)

// classify maps a service error to an HTTP status and error kind.
func classify(err error) (int, string) {
	var vErr *models.ValidationError
	var nf *repository.NotFoundError

	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, KindValidation
	case errors.As(err, &nf), errors.Is(err, provider.ErrNotFound):
		return http.StatusNotFound, KindNotFound
	case errors.Is(err, provider.ErrUnauthorized):
		return http.StatusBadGateway, KindUpstreamAuth
	case errors.Is(err, provider.ErrRateLimited):
		return http.StatusTooManyRequests, KindRateLimited
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, KindTimeout
	case errors.Is(err, provider.ErrUpstream):
		return http.StatusBadGateway, KindUpstream
	default:
		return http.StatusInternalServerError, KindInternal
	}
}

// sendServiceError logs err and writes the matching error response.
// Internal failures are not echoed to the client.
func (h *StationHandler) sendServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := classify(err)
	ctx := r.Context()
	fields := logging.Fields{
		"path":   r.URL.Path,
		"status": status,
		"kind":   kind,
	}

	message := err.Error()
	switch {
	case status == http.StatusInternalServerError:
		h.logger.Error(ctx, "[API_ERROR] Request failed", fields, err)
		message = "internal error"
	case status >= http.StatusInternalServerError || status == http.StatusTooManyRequests:
		h.logger.WarnErr(ctx, "[API_UPSTREAM_ERROR] Upstream request failed", fields, err)
	default:
		h.logger.Debug(ctx, "[API_CLIENT_ERROR] Request rejected", fields)
	}

	var apiErr *provider.APIError
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(apiErr.RetryAfter.Seconds())))
	}

	h.sendError(w, r, kind, message, status)
}
