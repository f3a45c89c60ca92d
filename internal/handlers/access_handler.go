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

// AccessHandler handles disclosure-tier HTTP requests.
type AccessHandler struct {
	Service *services.AccessService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewAccessHandler creates a new AccessHandler.
func NewAccessHandler(service *services.AccessService, logger *log.Logger, timeout time.Duration) *AccessHandler {
	return &AccessHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// GrantAccess handles requests to purchase a tier upgrade.
func (h *AccessHandler) GrantAccess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only POST is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var grantReq models.GrantRequest
	if err := json.NewDecoder(r.Body).Decode(&grantReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	grant, err := h.Service.GrantAccess(ctx, utils.GetSubject(r), grantReq.ListingID, grantReq.TargetLevel, grantReq.PaymentRef)
	if err != nil {
		writeServiceError(w, h.Logger, err, "failed to grant access")
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, grant)
}

// CheckAccess handles requests for the caller's level on a listing.
func (h *AccessHandler) CheckAccess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only GET is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	listingId := r.URL.Query().Get("listingId")
	if listingId == "" {
		utils.SendErrorResponse(w, http.StatusBadRequest, "missing required query parameter: listingId")
		return
	}

	level, err := h.Service.CheckAccess(ctx, utils.GetSubject(r), listingId)
	if err != nil {
		writeServiceError(w, h.Logger, err, "failed to check access")
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, map[string]models.AccessLevel{"level": level})
}

// ListGrants handles requests for the grant history of a pair.
func (h *AccessHandler) ListGrants(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only GET is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	grants, err := h.Service.ListGrants(ctx, utils.GetSubject(r), r.URL.Query().Get("listingId"))
	if err != nil {
		writeServiceError(w, h.Logger, err, "failed to list grants")
		return
	}
	if len(grants) == 0 {
		writeJSON(w, h.Logger, http.StatusOK, []models.AccessGrant{})
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, grants)
}
