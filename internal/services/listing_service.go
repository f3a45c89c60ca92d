package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lhs0609a-cpu/pharmatch-service/internal/models"
	"github.com/lhs0609a-cpu/pharmatch-service/internal/repository"
	"github.com/lhs0609a-cpu/pharmatch-service/internal/utils"
)

type ListingService struct {
	Repo   repository.ListingRepository
	Access *AccessService
}

// NewListingService creates a new ListingService.
func NewListingService(repo repository.ListingRepository, access *AccessService) *ListingService {
	return &ListingService{Repo: repo, Access: access}
}

// CreateListing creates a new listing in PENDING_REVIEW.
func (s *ListingService) CreateListing(ctx context.Context, req models.ListingRequest) (*models.Listing, error) {
	if req.OwnerID == "" || req.Region == "" || req.ExactAddress == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "missing required fields")
	}
	if !models.AllowedPharmacyTypes[req.PharmacyType] {
		return nil, models.NewErrorResponse(http.StatusBadRequest, fmt.Sprintf("invalid pharmacy type: %s", req.PharmacyType))
	}
	if req.Premium < 0 || req.MonthlyRevenue < 0 || req.MonthlyRent < 0 {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "financial fields must be non-negative")
	}
	if req.OwnerPlan == "" {
		req.OwnerPlan = models.BasicPlan
	}
	return s.Repo.CreateListing(ctx, req)
}

// FetchListings returns ACTIVE listings redacted to the caller's access
// level per listing.
func (s *ListingService) FetchListings(ctx context.Context, subjectId, limitStr, offsetStr string, regions, pharmacyTypes []string) ([]*models.RedactedListing, error) {
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	for _, pharmacyType := range pharmacyTypes {
		if !models.AllowedPharmacyTypes[models.PharmacyType(pharmacyType)] {
			return nil, models.NewErrorResponse(http.StatusBadRequest, fmt.Sprintf("unsupported pharmacy type: %s", pharmacyType))
		}
	}

	listings, err := s.Repo.GetListings(ctx, limit, offset, regions, pharmacyTypes)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "internal server error")
	}

	views := make([]*models.RedactedListing, 0, len(listings))
	for i := range listings {
		level, err := s.Access.CheckAccess(ctx, subjectId, listings[i].ID)
		if err != nil {
			return nil, err
		}
		views = append(views, models.RedactListing(&listings[i], level))
	}
	return views, nil
}

// GetListing returns one listing redacted to the caller's access level.
// The stored record is always complete; only the view is trimmed.
func (s *ListingService) GetListing(ctx context.Context, subjectId, listingId string) (*models.RedactedListing, error) {
	listingExists, err := s.Repo.ListingExists(ctx, listingId)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "internal server error")
	}
	if !listingExists {
		return nil, models.NewCodedError(http.StatusNotFound, models.CodeListingNotFound, "listing not found")
	}

	listing, err := s.Repo.GetListing(ctx, listingId)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "internal server error")
	}

	level, err := s.Access.CheckAccess(ctx, subjectId, listingId)
	if err != nil {
		return nil, err
	}
	// Owners always see their own listing in full.
	if listing.OwnerID != "" && listing.OwnerID == subjectId {
		level = models.FullAccess
	}
	return models.RedactListing(listing, level), nil
}

// UpdateModerationStatus moves a listing through its moderation
// lifecycle. Invalid edges are rejected with the allowed next statuses.
func (s *ListingService) UpdateModerationStatus(ctx context.Context, listingId string, status models.ModerationStatus) (*models.Listing, error) {
	if listingId == "" || status == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "missing required parameters: listingId or status")
	}

	listing, err := s.Repo.GetListing(ctx, listingId)
	if err != nil {
		return nil, models.NewCodedError(http.StatusNotFound, models.CodeListingNotFound, "listing not found")
	}

	if !models.ValidListingTransition(listing.ModerationStatus, status) {
		allowed := models.AllowedListingTransitions(listing.ModerationStatus)
		allowedStrs := make([]string, 0, len(allowed))
		for _, a := range allowed {
			allowedStrs = append(allowedStrs, string(a))
		}
		return nil, models.NewTransitionError(http.StatusConflict,
			fmt.Sprintf("cannot move listing from %s to %s", listing.ModerationStatus, status),
			string(status), allowedStrs)
	}
	return s.Repo.UpdateModerationStatus(ctx, listingId, status)
}

// CreateProfile creates a new buyer profile.
func (s *ListingService) CreateProfile(ctx context.Context, profile models.Profile) (*models.Profile, error) {
	if profile.SubjectID == "" || profile.Name == "" || profile.Region == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "missing required fields")
	}
	if profile.PreferredType != "" && !models.AllowedPharmacyTypes[profile.PreferredType] {
		return nil, models.NewErrorResponse(http.StatusBadRequest, fmt.Sprintf("invalid pharmacy type: %s", profile.PreferredType))
	}
	return s.Repo.CreateProfile(ctx, profile)
}

// GetProfile returns one profile by ID.
func (s *ListingService) GetProfile(ctx context.Context, profileId string) (*models.Profile, error) {
	profile, err := s.Repo.GetProfile(ctx, profileId)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusNotFound, "profile not found")
	}
	return profile, nil
}
