package http

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"quizdesk/internal/app"
	"quizdesk/internal/auth"
	"quizdesk/internal/domain"
)

const maxBodyBytes = 5 << 20

// QuizHandler serves the participant endpoints and quiz management.
type QuizHandler struct {
	service *app.QuizService
}

func NewQuizHandler(service *app.QuizService) *QuizHandler {
	return &QuizHandler{service: service}
}

// GetQuestions returns the participant view of a quiz.
func (h *QuizHandler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.service.GetQuiz(r.Context(), mux.Vars(r)["quizId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

// Submit scores and stores a finished attempt.
func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req app.SubmitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", domain.ErrBadRequest, err))
		return
	}
	receipt, err := h.service.Submit(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// ListQuizzes returns id and title of every stored quiz.
func (h *QuizHandler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.service.ListQuizzes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

type createQuizResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	QuizID  string `json:"quizId"`
}

// CreateQuiz stores or replaces a quiz document.
func (h *QuizHandler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", domain.ErrBadRequest, err))
		return
	}
	quizID, err := h.service.CreateQuiz(r.Context(), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		log.Printf("quiz %s saved by %s", quizID, claims.Username)
	}
	writeJSON(w, http.StatusOK, createQuizResponse{Success: true, Message: "quiz created", QuizID: quizID})
}
