package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"libraryapi/internal/apperr"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	titleValidation   = "Erro de validação"
	titleBusinessRule = "Resource Already Exists"
	titleNotFound     = "Resource not found"
	titleBadRequest   = "Bad Request"
	titleInternal     = "Internal Server Error"
	titleUnauthorized = "Unauthorized"
	titleConflict     = "Conflict"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Timestamp time.Time    `json:"timestamp"`
	Status    int          `json:"status"`
	Error     string       `json:"error"`
	Message   string       `json:"message"`
	Path      string       `json:"path"`
	Errors    []FieldError `json:"errors,omitempty"`
}

// FieldError describes one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// JSON writes data with the given status code.
func JSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode response", slog.Any("error", err))
	}
}

func JSONSuccess(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

func JSONSuccessCreated(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

func JSONSuccessNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError writes an ErrorResponse for the current request.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int, title, message string, details []FieldError) {
	if requestID := RequestIDFrom(r); requestID != "" {
		w.Header().Set(requestIDHeader, requestID)
	}
	JSON(w, statusCode, ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    statusCode,
		Error:     title,
		Message:   message,
		Path:      r.URL.Path,
		Errors:    details,
	})
}

// ValidationFailed writes a 400 carrying per-field messages.
func ValidationFailed(w http.ResponseWriter, r *http.Request, details []FieldError) {
	WriteError(w, r, http.StatusBadRequest, titleValidation, "Campos inválidos", details)
}

// BadRequest writes a 400 for a request that could not be read.
func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	WriteError(w, r, http.StatusBadRequest, titleBadRequest, message, nil)
}

// NotFound writes a 404 with message.
func NotFound(w http.ResponseWriter, r *http.Request, message string) {
	WriteError(w, r, http.StatusNotFound, titleNotFound, message, nil)
}

// Error maps err to a status code: not-found kinds to 404, business rule
// kinds to 400, conflicts to 409, anything else to a logged 500.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		NotFound(w, r, apperr.Message(err, "Recurso não encontrado."))
	case errors.Is(err, apperr.ErrBusinessRule):
		WriteError(w, r, http.StatusBadRequest, titleBusinessRule, apperr.Message(err, err.Error()), nil)
	case errors.Is(err, apperr.ErrConflict):
		WriteError(w, r, http.StatusConflict, titleConflict, apperr.Message(err, err.Error()), nil)
	default:
		slog.ErrorContext(r.Context(), "request failed",
			slog.String("request_id", RequestIDFrom(r)),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		WriteError(w, r, http.StatusInternalServerError, titleInternal, "An internal error occurred", nil)
	}
}

// Unauthorized writes a 401 with message.
func Unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	WriteError(w, r, http.StatusUnauthorized, titleUnauthorized, message, nil)
}
