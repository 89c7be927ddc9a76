package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quizdesk/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

// writeError maps a service error onto a status and a short public message.
// Server-side failures are logged with their full cause.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, errorResponse{Error: message})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest, "invalid payload"
	case errors.Is(err, domain.ErrQuizNotFound):
		return http.StatusNotFound, "quiz not found"
	case errors.Is(err, domain.ErrSubmissionNotFound):
		return http.StatusNotFound, "submission not found"
	case errors.Is(err, domain.ErrInvalidFormat):
		return http.StatusInternalServerError, "Invalid quiz format"
	case errors.Is(err, domain.ErrEmptyQuiz):
		return http.StatusInternalServerError, "Invalid quiz questions"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
