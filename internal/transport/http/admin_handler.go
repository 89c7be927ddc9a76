package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"quizdesk/internal/app"
	"quizdesk/internal/auth"
	"quizdesk/internal/domain"
)

// AdminHandler serves login and the results views.
type AdminHandler struct {
	auth    *auth.Service
	results *app.ResultService
}

func NewAdminHandler(authService *auth.Service, results *app.ResultService) *AdminHandler {
	return &AdminHandler{auth: authService, results: results}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Role    string `json:"role,omitempty"`
	Message string `json:"message,omitempty"`
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, loginResponse{Message: "invalid payload"})
		return
	}
	token, role, err := h.auth.Login(req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeJSON(w, http.StatusUnauthorized, loginResponse{Message: err.Error()})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Success: true, Token: token, Role: role})
}

// ListResults returns every submission, newest first.
func (h *AdminHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	rows, err := h.results.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// GetResult returns one submission with its answer key and review.
func (h *AdminHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, r, domain.ErrSubmissionNotFound)
		return
	}
	detail, err := h.results.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
