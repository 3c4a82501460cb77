package handler

import (
	"encoding/json"
	"net/http"

	"github.com/nestegg/backend/internal/apperror"
	"github.com/nestegg/backend/internal/service"
)

type AdvisorHandler struct {
	service AdvisorServiceInterface
}

func NewAdvisorHandler(service AdvisorServiceInterface) *AdvisorHandler {
	return &AdvisorHandler{service: service}
}

func (h *AdvisorHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	var input service.ChatInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondAppError(w, apperror.BadRequest("invalid request body"))
		return
	}
	if input.Message == "" {
		respondAppError(w, apperror.ValidationError("message", "message is required"))
		return
	}

	resp, err := h.service.Chat(r.Context(), userID, input)
	if err != nil {
		respondError(w, http.StatusBadGateway, "advisor is unavailable")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *AdvisorHandler) ConfirmGoal(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	var proposal service.ProposedGoal
	if err := json.NewDecoder(r.Body).Decode(&proposal); err != nil {
		respondAppError(w, apperror.BadRequest("invalid request body"))
		return
	}

	goal, err := h.service.ConfirmGoal(r.Context(), userID, proposal)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, goal)
}
