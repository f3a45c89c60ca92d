package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/lhs0609a-cpu/pharmatch-service/internal/models"
	"github.com/lhs0609a-cpu/pharmatch-service/internal/services"
	"github.com/lhs0609a-cpu/pharmatch-service/internal/utils"
)

// ListingHandler handles listing and profile HTTP requests.
type ListingHandler struct {
	Service *services.ListingService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(service *services.ListingService, logger *log.Logger, timeout time.Duration) *ListingHandler {
	return &ListingHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// writeServiceError unwraps an ErrorResponse and sends it, falling back
// to a generic 500.
func writeServiceError(w http.ResponseWriter, logger *log.Logger, err error, fallback string) {
	logger.Println(err)
	var errResp *models.ErrorResponse
	if errors.As(err, &errResp) {
		utils.SendError(w, errResp)
		return
	}
	utils.SendErrorResponse(w, http.StatusInternalServerError, fallback)
}

func writeJSON(w http.ResponseWriter, logger *log.Logger, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Println(err)
	}
}

// CreateListing handles requests to create a listing.
func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only POST is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var listingReq models.ListingRequest
	if err := json.NewDecoder(r.Body).Decode(&listingReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	newListing, err := h.Service.CreateListing(ctx, listingReq)
	if err != nil {
		writeServiceError(w, h.Logger, err, "failed to create listing")
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, newListing)
}

// GetListings handles requests to list active listings, redacted to the
// caller's access level.
func (h *ListingHandler) GetListings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only GET is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	query := r.URL.Query()
	views, err := h.Service.FetchListings(ctx, utils.GetSubject(r),
		query.Get("limit"), query.Get("offset"),
		query["region"], query["pharmacyType"])
	if err != nil {
		writeServiceError(w, h.Logger, err, "failed to retrieve listings")
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, views)
}

// GetListing handles requests for one listing.
func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	view, err := h.Service.GetListing(ctx, utils.GetSubject(r), r.PathValue("listingId"))
	if err != nil {
		writeServiceError(w, h.Logger, err, "failed to retrieve listing")
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, view)
}

// UpdateModerationStatus handles moderation transitions. Owners submit
// listings; only moderation staff move them through review.
func (h *ListingHandler) UpdateModerationStatus(w http.ResponseWriter, r *http.Request) {
	if utils.GetRole(r) != utils.AdminRole {
		utils.SendErrorResponse(w, http.StatusForbidden, "moderation requires the admin role")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	status := r.URL.Query().Get("status")
	updated, err := h.Service.UpdateModerationStatus(ctx, r.PathValue("listingId"), models.ModerationStatus(status))
	if err != nil {
		writeServiceError(w, h.Logger, err, "failed to update moderation status")
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, updated)
}

// CreateProfile handles requests to create a buyer profile.
func (h *ListingHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only POST is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var profile models.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if profile.SubjectID == "" {
		profile.SubjectID = utils.GetSubject(r)
	}

	newProfile, err := h.Service.CreateProfile(ctx, profile)
	if err != nil {
		writeServiceError(w, h.Logger, err, "failed to create profile")
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, newProfile)
}

// GetProfile handles requests for one profile.
func (h *ListingHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	profile, err := h.Service.GetProfile(ctx, r.PathValue("profileId"))
	if err != nil {
		writeServiceError(w, h.Logger, err, "failed to retrieve profile")
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, profile)
}
