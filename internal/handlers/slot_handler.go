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

// SlotHandler handles slot auction HTTP requests.
type SlotHandler struct {
	Service *services.SlotService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewSlotHandler creates a new SlotHandler.
func NewSlotHandler(service *services.SlotService, logger *log.Logger, timeout time.Duration) *SlotHandler {
	return &SlotHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// CreateSlot handles requests to open a slot for bidding.
func (h *SlotHandler) CreateSlot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only POST is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var slotReq models.SlotRequest
	if err := json.NewDecoder(r.Body).Decode(&slotReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	newSlot, err := h.Service.CreateSlot(ctx, slotReq)
	if err != nil {
		writeServiceError(w, h.Logger, err, "failed to create slot")
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, newSlot)
}

// GetSlots handles requests to list slots.
func (h *SlotHandler) GetSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only GET is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	query := r.URL.Query()
	slots, err := h.Service.FetchSlots(ctx, query.Get("limit"), query.Get("offset"), query["status"])
	if err != nil {
		writeServiceError(w, h.Logger, err, "failed to retrieve slots")
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, slots)
}

// PlaceBid handles requests to place a sealed bid.
func (h *SlotHandler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var bidReq models.BidRequest
	if err := json.NewDecoder(r.Body).Decode(&bidReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	newBid, err := h.Service.PlaceBid(ctx, r.PathValue("slotId"), utils.GetSubject(r), bidReq.Amount)
	if err != nil {
		writeServiceError(w, h.Logger, err, "failed to place bid")
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, newBid)
}

// GetMyBids handles requests for the caller's own bids on a slot.
// Competing bids stay sealed until resolution.
func (h *SlotHandler) GetMyBids(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	view, err := h.Service.GetBidderBids(ctx, r.PathValue("slotId"), utils.GetSubject(r))
	if err != nil {
		writeServiceError(w, h.Logger, err, "failed to retrieve bids")
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, view)
}

// ResolveSlot handles admin requests to resolve a slot immediately.
// Bidders cannot trigger resolution: an early resolve would lock out
// later bids before the deadline.
func (h *SlotHandler) ResolveSlot(w http.ResponseWriter, r *http.Request) {
	if utils.GetRole(r) != utils.AdminRole {
		utils.SendErrorResponse(w, http.StatusForbidden, "resolving a slot requires the admin role")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	slot, err := h.Service.ResolveSlot(ctx, r.PathValue("slotId"))
	if err != nil {
		writeServiceError(w, h.Logger, err, "failed to resolve slot")
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, slot)
}
