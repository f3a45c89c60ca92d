package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/lhs0609a-cpu/pharmatch-service/internal/models"
	"github.com/lhs0609a-cpu/pharmatch-service/internal/payments"
	"github.com/lhs0609a-cpu/pharmatch-service/internal/repository"

	"github.com/redis/go-redis/v9"
)

// Levels only ever go up, so a stale cache entry can only under-report
// access; the read path falls through to the ledger and rewrites it.
const accessCacheTTL = time.Hour

type AccessService struct {
	Repo     repository.AccessRepository
	Listings repository.ListingRepository
	Verifier payments.Verifier
	Cache    *redis.Client // optional, nil disables caching
}

// NewAccessService creates a new AccessService.
func NewAccessService(repo repository.AccessRepository, listings repository.ListingRepository, verifier payments.Verifier, cache *redis.Client) *AccessService {
	return &AccessService{Repo: repo, Listings: listings, Verifier: verifier, Cache: cache}
}

func accessCacheKey(subjectId, listingId string) string {
	return fmt.Sprintf("access:%s:%s", subjectId, listingId)
}

// GrantAccess records a paid tier upgrade for (subject, listing).
// Resubmitting the same paymentRef returns the grant already recorded
// for it; a failed verification is terminal and requires a new payment
// event.
func (s *AccessService) GrantAccess(ctx context.Context, subjectId, listingId string, target models.AccessLevel, paymentRef string) (*models.AccessGrant, error) {
	if subjectId == "" || listingId == "" || paymentRef == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "missing required fields")
	}
	if target != models.PartialAccess && target != models.FullAccess {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "target level must be PARTIAL or FULL")
	}

	listingExists, err := s.Listings.ListingExists(ctx, listingId)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "internal server error")
	}
	if !listingExists {
		return nil, models.NewCodedError(http.StatusNotFound, models.CodeListingNotFound, "listing not found")
	}

	// Duplicate submission of an already-processed payment event is an
	// idempotent no-op.
	existing, err := s.Repo.GetGrantByPaymentRef(ctx, paymentRef)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "internal server error")
	}
	if existing != nil {
		if existing.SubjectID != subjectId || existing.ListingID != listingId {
			return nil, models.NewCodedError(http.StatusConflict, models.CodePaymentNotVerified,
				"payment reference was already used for a different grant")
		}
		return existing, nil
	}

	current, err := s.Repo.MaxLevel(ctx, subjectId, listingId)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "internal server error")
	}
	if target.Rank() <= current.Rank() {
		return nil, models.NewCodedError(http.StatusConflict, models.CodeAlreadyAtLevel,
			fmt.Sprintf("subject already holds %s access for this listing", current))
	}

	price, ok := models.UpgradePriceFor(current, target)
	if !ok {
		return nil, models.NewErrorResponse(http.StatusBadRequest,
			fmt.Sprintf("no upgrade is sold from %s to %s", current, target))
	}

	info, err := s.Verifier.VerifyPayment(ctx, paymentRef)
	if err != nil {
		return nil, models.NewCodedError(http.StatusPaymentRequired, models.CodePaymentNotVerified,
			"payment could not be verified")
	}
	if info.Status != payments.StatusConfirmed || info.Amount != price.Amount || info.SKU != price.SKU {
		return nil, models.NewCodedError(http.StatusPaymentRequired, models.CodePaymentNotVerified,
			fmt.Sprintf("payment does not match the %s price of %d", price.SKU, price.Amount))
	}

	grant, err := s.Repo.CreateGrant(ctx, subjectId, listingId, target, paymentRef)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to record access grant")
	}

	if s.Cache != nil {
		s.Cache.Set(ctx, accessCacheKey(subjectId, listingId), string(grant.Level), accessCacheTTL)
	}
	return grant, nil
}

// CheckAccess returns the effective disclosure level for the pair.
// Unauthenticated callers get PUBLIC; any authenticated subject holds
// at least MINIMAL.
func (s *AccessService) CheckAccess(ctx context.Context, subjectId, listingId string) (models.AccessLevel, error) {
	if subjectId == "" {
		return models.PublicAccess, nil
	}

	if s.Cache != nil {
		cached, err := s.Cache.Get(ctx, accessCacheKey(subjectId, listingId)).Result()
		if err == nil {
			level := models.AccessLevel(cached)
			if level.Rank() >= models.MinimalAccess.Rank() {
				return level, nil
			}
		}
	}

	level, err := s.Repo.MaxLevel(ctx, subjectId, listingId)
	if err != nil {
		return "", models.NewErrorResponse(http.StatusInternalServerError, "internal server error")
	}

	if s.Cache != nil {
		s.Cache.Set(ctx, accessCacheKey(subjectId, listingId), string(level), accessCacheTTL)
	}
	return level, nil
}

// ListGrants returns the audit trail for a pair, oldest first.
func (s *AccessService) ListGrants(ctx context.Context, subjectId, listingId string) ([]models.AccessGrant, error) {
	if subjectId == "" || listingId == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "missing required query parameters: subjectId or listingId")
	}
	grants, err := s.Repo.ListGrants(ctx, subjectId, listingId)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "internal server error")
	}
	return grants, nil
}
