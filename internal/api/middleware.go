package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/mitchsteamy/crome-lab-fmsp/internal/service"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const maxBodyBytes = 10 << 20

var validate = validator.New()

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// WriteError writes a standardized error response
func WriteError(w http.ResponseWriter, code int, errCode, message string, log *zap.Logger) {
	if code >= http.StatusInternalServerError {
		log.Error("API error", zap.Int("status", code), zap.String("code", errCode), zap.String("message", message))
	} else {
		log.Debug("API error", zap.Int("status", code), zap.String("code", errCode), zap.String("message", message))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	resp := ErrorResponse{
		Error:   errCode,
		Message: message,
	}
	if errCode != "" {
		resp.Code = errCode
	}

	json.NewEncoder(w).Encode(resp)
}

var statusByCode = map[string]int{
	service.CodeNotFound:      http.StatusNotFound,
	service.CodeInvalidInput:  http.StatusBadRequest,
	service.CodeCannotProceed: http.StatusConflict,
	service.CodeNotCompleted:  http.StatusConflict,
	service.CodeInvalidImport: http.StatusBadRequest,
	service.CodeNotConfigured: http.StatusServiceUnavailable,
	service.CodeStoreFailed:   http.StatusInternalServerError,
}

func (d Dependencies) writeServiceError(w http.ResponseWriter, err error) {
	code := service.ErrorCode(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	WriteError(w, status, code, err.Error(), d.Log)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeBody reads a JSON body into v. An empty body is allowed when
// optional is set.
func (d Dependencies) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}, optional bool) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) && optional {
		err = nil
	}
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", d.Log)
		return false
	}
	return true
}

// decodeJSON is decodeBody followed by the request DTO's validate tags
func (d Dependencies) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}, optional bool) bool {
	if !d.decodeBody(w, r, v, optional) {
		return false
	}
	if err := validate.Struct(v); err != nil {
		WriteError(w, http.StatusBadRequest, service.CodeInvalidInput, err.Error(), d.Log)
		return false
	}
	return true
}

// RequestLogger logs HTTP requests and responses
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip wrapping for WebSocket upgrades - they need direct access to ResponseWriter
			if r.Header.Get("Upgrade") == "websocket" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			log.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", wrapped.statusCode),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
