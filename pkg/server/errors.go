package server

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/algotrace/pkg/errors"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

var codeToStatus = map[errors.Code]int{
	errors.ErrCodeInvalidConfig:    http.StatusBadRequest,
	errors.ErrCodeInvalidInput:     http.StatusBadRequest,
	errors.ErrCodeInvalidEngine:    http.StatusBadRequest,
	errors.ErrCodeInvalidOperation: http.StatusBadRequest,
	errors.ErrCodeInvalidFormat:    http.StatusBadRequest,
	errors.ErrCodeInvalidPath:      http.StatusBadRequest,
	errors.ErrCodeNotFound:         http.StatusNotFound,
	errors.ErrCodeTraceNotFound:    http.StatusNotFound,
	errors.ErrCodeStepOutOfRange:   http.StatusNotFound,
	errors.ErrCodeBackendNotFound:  http.StatusNotFound,
	errors.ErrCodeUnsupported:      http.StatusNotImplemented,
	errors.ErrCodeInternal:         http.StatusInternalServerError,
}

// statusFor maps an error to its HTTP status and code. Errors without a code
// are internal.
func statusFor(err error) (int, errors.Code) {
	code := errors.GetCode(err)
	if status, ok := codeToStatus[code]; ok {
		return status, code
	}
	return http.StatusInternalServerError, errors.ErrCodeInternal
}

func notFound(format string, args ...any) error {
	return errors.New(errors.ErrCodeNotFound, format, args...)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, logger *log.Logger, err error) {
	status, code := statusFor(err)
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "code", code, "err", err)
		if code == errors.ErrCodeInternal {
			msg = "internal error"
		}
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: msg})
}
