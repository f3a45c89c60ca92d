package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/lhs0609a-cpu/pharmatch-service/internal/models"
	"github.com/lhs0609a-cpu/pharmatch-service/internal/services"
	"github.com/lhs0609a-cpu/pharmatch-service/internal/utils"
)

// MatchHandler handles match lifecycle and chat HTTP requests.
type MatchHandler struct {
	Service *services.MatchService
	Chat    *services.ChatService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(service *services.MatchService, chat *services.ChatService, logger *log.Logger, timeout time.Duration) *MatchHandler {
	return &MatchHandler{
		Service: service,
		Chat:    chat,
		Logger:  logger,
		Timeout: timeout,
	}
}

// CreateMatch handles requests to create a match.
func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only POST is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var matchReq models.MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&matchReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	newMatch, err := h.Service.CreateMatch(ctx, matchReq)
	if err != nil {
		writeServiceError(w, h.Logger, err, "failed to create match")
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, newMatch)
}

// GetMatch handles requests for one match.
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	view, err := h.Service.GetMatch(ctx, r.PathValue("matchId"), utils.GetSubject(r))
	if err != nil {
		writeServiceError(w, h.Logger, err, "failed to retrieve match")
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, view)
}

// GetMyMatches handles requests for the caller's matches.
func (h *MatchHandler) GetMyMatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only GET is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	query := r.URL.Query()
	matches, err := h.Service.ListMatches(ctx, utils.GetSubject(r), query.Get("limit"), query.Get("offset"))
	if err != nil {
		writeServiceError(w, h.Logger, err, "failed to retrieve matches")
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, matches)
}

// MarkInterest handles requests to mark the caller's interest.
func (h *MatchHandler) MarkInterest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only POST is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	view, err := h.Service.MarkInterest(ctx, r.PathValue("matchId"), utils.GetSubject(r))
	if err != nil {
		writeServiceError(w, h.Logger, err, "failed to mark interest")
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, view)
}

// UpdateStatus handles match status transitions.
func (h *MatchHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var updateReq models.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.Service.UpdateStatus(ctx, r.PathValue("matchId"), utils.GetSubject(r), updateReq.Status, updateReq.Reason)
	if err != nil {
		writeServiceError(w, h.Logger, err, "failed to update match status")
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, view)
}

// SendMessage handles requests to send a chat message.
func (h *MatchHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only POST is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var messageReq models.MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&messageReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	newMessage, err := h.Chat.SendMessage(ctx, r.PathValue("matchId"), utils.GetSubject(r), messageReq.Content)
	if err != nil {
		writeServiceError(w, h.Logger, err, "failed to send message")
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, newMessage)
}

// GetMessages handles requests for the chat history of a match.
func (h *MatchHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only GET is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	query := r.URL.Query()
	messages, err := h.Chat.ListMessages(ctx, r.PathValue("matchId"), utils.GetSubject(r), query.Get("limit"), query.Get("offset"))
	if err != nil {
		writeServiceError(w, h.Logger, err, "failed to retrieve messages")
		return
	}
	if len(messages) == 0 {
		writeJSON(w, h.Logger, http.StatusOK, []models.Message{})
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, messages)
}
