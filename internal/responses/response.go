// Package responses writes the JSON bodies of the /ui-api endpoints.
package responses

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/pasc-cca/ccadash/internal/apperrors"
	"github.com/pasc-cca/ccadash/internal/logger"
)

type ErrorResponse struct {
	ErrorCode apperrors.ErrorCode `json:"error_code"`
	Message   string              `json:"message"`
	ReqID     string              `json:"request_id,omitempty"`
}

var marshalFailure = []byte(`{"error_code":"` + string(apperrors.ErrCodeInternalError) + `","message":"Internal Server Error"}`)

// RespondWithError writes {error_code, message, request_id} and records the code and message in the final request log
func RespondWithError(w http.ResponseWriter, r *http.Request, statusCode int, errorCode apperrors.ErrorCode, message string) {
	logger.ContextWithLogAttrs(r.Context(),
		slog.String("error_code", string(errorCode)),
		slog.String("error_message", message),
	)

	writeJSON(w, statusCode, ErrorResponse{
		ErrorCode: errorCode,
		Message:   message,
		ReqID:     middleware.GetReqID(r.Context()),
	})
}

func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		status, data = http.StatusInternalServerError, marshalFailure
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
