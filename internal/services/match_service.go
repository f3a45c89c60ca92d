package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/lhs0609a-cpu/pharmatch-service/internal/models"
	"github.com/lhs0609a-cpu/pharmatch-service/internal/repository"
	"github.com/lhs0609a-cpu/pharmatch-service/internal/utils"

	"github.com/shopspring/decimal"
)

type MatchService struct {
	Repo        repository.MatchRepository
	ListingRepo repository.ListingRepository
}

// NewMatchService creates a new MatchService.
func NewMatchService(repo repository.MatchRepository, listingRepo repository.ListingRepository) *MatchService {
	return &MatchService{Repo: repo, ListingRepo: listingRepo}
}

// MatchView is a match plus the consent-driven disclosure state.
// Contact info appears as soon as the match leaves PENDING, regardless
// of either party's paid access level.
type MatchView struct {
	models.Match
	ContactRevealed bool    `json:"contactRevealed"`
	ListingContact  *string `json:"listingContact,omitempty"`
	ProfileContact  *string `json:"profileContact,omitempty"`
}

// CreateMatch creates a PENDING match between a listing and a profile.
// The match score is computed here, once, and the owner's commission
// rate is frozen onto the row; later plan changes do not affect it.
func (s *MatchService) CreateMatch(ctx context.Context, req models.MatchRequest) (*models.Match, error) {
	if req.ListingID == "" || req.ProfileID == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "missing required fields")
	}

	listing, err := s.ListingRepo.GetListing(ctx, req.ListingID)
	if err != nil {
		return nil, models.NewCodedError(http.StatusNotFound, models.CodeListingNotFound, "listing not found")
	}
	if listing.ModerationStatus != models.ActiveListing {
		return nil, models.NewErrorResponse(http.StatusConflict, "listing is not active")
	}

	profile, err := s.ListingRepo.GetProfile(ctx, req.ProfileID)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusNotFound, "profile not found")
	}

	newMatch := models.Match{
		ListingID:      req.ListingID,
		ProfileID:      req.ProfileID,
		MatchScore:     models.ComputeMatchScore(listing, profile),
		CommissionRate: models.CommissionRateFor(listing.OwnerPlan).String(),
	}
	return s.Repo.CreateMatch(ctx, newMatch)
}

// GetMatch returns the match view for one of its parties.
func (s *MatchService) GetMatch(ctx context.Context, matchId, subjectId string) (*MatchView, error) {
	match, err := s.requireParty(ctx, matchId, subjectId)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, match)
}

// ListMatches returns the caller's matches.
func (s *MatchService) ListMatches(ctx context.Context, subjectId, limitStr, offsetStr string) ([]models.Match, error) {
	if subjectId == "" {
		return nil, models.NewErrorResponse(http.StatusUnauthorized, "caller identity is required")
	}
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	return s.Repo.ListMatchesForSubject(ctx, subjectId, limit, offset)
}

// MarkInterest records the caller's interest. When both sides have
// marked interest the match promotes PENDING -> MUTUAL through the
// same compare-and-swap path as every other transition.
func (s *MatchService) MarkInterest(ctx context.Context, matchId, subjectId string) (*MatchView, error) {
	match, err := s.requireParty(ctx, matchId, subjectId)
	if err != nil {
		return nil, err
	}
	if match.Status.IsTerminal() {
		return nil, models.NewErrorResponse(http.StatusConflict, fmt.Sprintf("match is %s", match.Status))
	}

	ownerSide, err := s.ListingRepo.IsListingOwner(ctx, subjectId, match.ListingID)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "internal server error")
	}

	updated, err := s.Repo.SetInterest(ctx, matchId, ownerSide)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "internal server error")
	}

	if updated.OwnerInterest && updated.ProfileInterest && updated.Status == models.PendingMatch {
		promoted, err := s.Repo.UpdateStatusCAS(ctx, matchId, models.PendingMatch, models.MutualMatch, "", nil)
		if err != nil {
			// A concurrent actor already moved the match; the fresh row
			// tells the caller where it landed.
			var errResp *models.ErrorResponse
			if errors.As(err, &errResp) && errResp.Code == models.CodeStaleStatus {
				refreshed, ferr := s.Repo.GetMatch(ctx, matchId)
				if ferr != nil {
					return nil, models.NewErrorResponse(http.StatusInternalServerError, "internal server error")
				}
				return s.buildView(ctx, refreshed)
			}
			return nil, err
		}
		return s.buildView(ctx, promoted)
	}
	return s.buildView(ctx, updated)
}

// UpdateStatus transitions a match. Every edge is validated against the
// central transition table; the write itself is a compare-and-swap on
// the status the caller observed, so a lost race surfaces as
// STALE_STATUS rather than a silent double transition.
func (s *MatchService) UpdateStatus(ctx context.Context, matchId, subjectId string, next models.MatchStatus, reason string) (*MatchView, error) {
	match, err := s.requireParty(ctx, matchId, subjectId)
	if err != nil {
		return nil, err
	}

	if !models.ValidMatchTransition(match.Status, next) {
		allowed := models.AllowedMatchTransitions(match.Status)
		allowedStrs := make([]string, 0, len(allowed))
		for _, a := range allowed {
			allowedStrs = append(allowedStrs, string(a))
		}
		return nil, models.NewTransitionError(http.StatusConflict,
			fmt.Sprintf("cannot move match from %s to %s", match.Status, next),
			string(next), allowedStrs)
	}

	if next == models.CancelledMatch && reason == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "a cancel reason is required")
	}

	var commissionAmount *int64
	if next == models.ContractedMatch {
		listing, err := s.ListingRepo.GetListing(ctx, match.ListingID)
		if err != nil {
			return nil, models.NewCodedError(http.StatusNotFound, models.CodeListingNotFound, "listing not found")
		}
		if listing.OwnerID != subjectId {
			return nil, models.NewErrorResponse(http.StatusForbidden, "only the listing owner can confirm a contract")
		}
		if listing.Premium <= 0 {
			return nil, models.NewErrorResponse(http.StatusConflict, "listing premium must be set before contracting")
		}
		rate, err := decimal.NewFromString(match.CommissionRate)
		if err != nil {
			return nil, models.NewErrorResponse(http.StatusInternalServerError, "invalid stored commission rate")
		}
		amount := models.ComputeCommission(rate, listing.Premium)
		commissionAmount = &amount
	}

	updated, err := s.Repo.UpdateStatusCAS(ctx, matchId, match.Status, next, reason, commissionAmount)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, updated)
}

// requireParty fetches a match and checks the caller is one of its two
// parties.
func (s *MatchService) requireParty(ctx context.Context, matchId, subjectId string) (*models.Match, error) {
	if matchId == "" || subjectId == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "missing required parameters: matchId or caller identity")
	}

	match, err := s.Repo.GetMatch(ctx, matchId)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusNotFound, "match not found")
	}

	isOwner, err := s.ListingRepo.IsListingOwner(ctx, subjectId, match.ListingID)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "internal server error")
	}
	isProfile, err := s.ListingRepo.IsProfileOwner(ctx, subjectId, match.ProfileID)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "internal server error")
	}
	if !isOwner && !isProfile {
		return nil, models.NewErrorResponse(http.StatusForbidden, "you are not a party to this match")
	}
	return match, nil
}

// buildView attaches the consent-driven contact disclosure to a match.
func (s *MatchService) buildView(ctx context.Context, match *models.Match) (*MatchView, error) {
	view := &MatchView{Match: *match, ContactRevealed: models.IsContactRevealed(match)}
	if !view.ContactRevealed {
		return view, nil
	}

	listing, err := s.ListingRepo.GetListing(ctx, match.ListingID)
	if err == nil {
		view.ListingContact = &listing.Contact
	}
	profile, err := s.ListingRepo.GetProfile(ctx, match.ProfileID)
	if err == nil {
		view.ProfileContact = &profile.Contact
	}
	return view, nil
}
