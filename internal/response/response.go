// Package response builds the JSON envelope every API handler writes.
package response

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"opphub/internal/middleware"
	"opphub/internal/services"

	"go.uber.org/zap"
)

// APIResponse is the uniform envelope for every endpoint.
type APIResponse struct {
	Success   bool         `json:"success"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
	Timestamp int64        `json:"timestamp"`
}

// ErrorDetail carries the client-facing error body.
type ErrorDetail struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Builder writes API responses with consistent shape and logging.
type Builder struct {
	logger *zap.Logger
}

// NewBuilder creates a response builder.
func NewBuilder(logger *zap.Logger) *Builder {
	return &Builder{logger: logger}
}

// WriteSuccess writes a 200 with the data payload.
func (b *Builder) WriteSuccess(w http.ResponseWriter, r *http.Request, data interface{}) {
	b.writeJSON(w, r, &APIResponse{Success: true, Data: data}, http.StatusOK)
}

// WriteCreated writes a 201 with the data payload.
func (b *Builder) WriteCreated(w http.ResponseWriter, r *http.Request, data interface{}) {
	b.writeJSON(w, r, &APIResponse{Success: true, Data: data}, http.StatusCreated)
}

// WriteServiceUnavailable writes a 503 with the data payload, for degraded
// health reports.
func (b *Builder) WriteServiceUnavailable(w http.ResponseWriter, r *http.Request, data interface{}) {
	b.writeJSON(w, r, &APIResponse{Success: false, Data: data}, http.StatusServiceUnavailable)
}

// WriteError converts an error into the envelope, mapping ServiceError types
// to their HTTP status codes.
func (b *Builder) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	detail := &ErrorDetail{
		Type:    "INTERNAL_ERROR",
		Message: "an unexpected error occurred",
	}

	if se, ok := services.AsServiceError(err); ok {
		status = se.GetStatusCode()
		detail.Type = se.Type
		detail.Message = se.Message
		detail.Code = se.Code
		detail.Details = se.Details
	}

	if status >= http.StatusInternalServerError {
		b.logError(r.Context(), err)
	}

	b.writeJSON(w, r, &APIResponse{Success: false, Error: detail}, status)
}

func (b *Builder) writeJSON(w http.ResponseWriter, r *http.Request, resp *APIResponse, status int) {
	resp.RequestID = middleware.GetRequestID(r.Context())
	resp.Timestamp = time.Now().Unix()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		b.logger.Error("Failed to encode response",
			zap.String("request_id", resp.RequestID),
			zap.Error(err),
		)
	}
}

func (b *Builder) logError(ctx context.Context, err error) {
	logger := b.logger
	if middleware.GetRequestID(ctx) != "" {
		logger = middleware.GetRequestLogger(ctx)
	}
	logger.Error("Request failed", zap.Error(err))
}
