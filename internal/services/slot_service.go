package services

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/lhs0609a-cpu/pharmatch-service/internal/models"
	"github.com/lhs0609a-cpu/pharmatch-service/internal/repository"
	"github.com/lhs0609a-cpu/pharmatch-service/internal/utils"
)

type SlotService struct {
	Repo   repository.SlotRepository
	Logger *log.Logger
}

// NewSlotService creates a new SlotService.
func NewSlotService(repo repository.SlotRepository, logger *log.Logger) *SlotService {
	return &SlotService{Repo: repo, Logger: logger}
}

// SlotBidsView is what a bidder sees before resolution: their own bids
// and the total count, never competing amounts (sealed-bid).
type SlotBidsView struct {
	SlotID   string       `json:"slotId"`
	MyBids   []models.Bid `json:"myBids"`
	BidCount int          `json:"bidCount"`
}

// CreateSlot creates a new slot in OPEN.
func (s *SlotService) CreateSlot(ctx context.Context, req models.SlotRequest) (*models.Slot, error) {
	if req.Address == "" || req.ClinicType == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "missing required fields")
	}
	if req.MinBidAmount <= 0 {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "minimum bid amount must be positive")
	}
	if !req.BidDeadline.After(time.Now()) {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "bid deadline must be in the future")
	}
	return s.Repo.CreateSlot(ctx, req)
}

// FetchSlots returns slots with an optional status filter.
func (s *SlotService) FetchSlots(ctx context.Context, limitStr, offsetStr string, statuses []string) ([]models.Slot, error) {
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	allowedStatuses := map[models.SlotStatus]bool{
		models.OpenSlot:    true,
		models.BiddingSlot: true,
		models.MatchedSlot: true,
		models.ClosedSlot:  true,
	}
	for _, status := range statuses {
		if !allowedStatuses[models.SlotStatus(status)] {
			return nil, models.NewErrorResponse(http.StatusBadRequest, "unsupported slot status: "+status)
		}
	}
	return s.Repo.GetSlots(ctx, limit, offset, statuses)
}

// PlaceBid places a sealed bid for the caller.
func (s *SlotService) PlaceBid(ctx context.Context, slotId, bidderId string, amount int64) (*models.Bid, error) {
	if slotId == "" || bidderId == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "missing required parameters: slotId or bidder")
	}
	if amount <= 0 {
		return nil, models.NewCodedError(http.StatusBadRequest, models.CodeBelowMinimum, "bid amount must be positive")
	}

	slotExists, err := s.Repo.SlotExists(ctx, slotId)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "internal server error")
	}
	if !slotExists {
		return nil, models.NewErrorResponse(http.StatusNotFound, "slot not found")
	}
	return s.Repo.PlaceBid(ctx, slotId, bidderId, amount, time.Now())
}

// GetBidderBids returns the caller's own bids on a slot plus the total
// bid count.
func (s *SlotService) GetBidderBids(ctx context.Context, slotId, bidderId string) (*SlotBidsView, error) {
	if slotId == "" || bidderId == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "missing required parameters: slotId or bidder")
	}

	slotExists, err := s.Repo.SlotExists(ctx, slotId)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "internal server error")
	}
	if !slotExists {
		return nil, models.NewErrorResponse(http.StatusNotFound, "slot not found")
	}

	bids, err := s.Repo.GetBidderBids(ctx, slotId, bidderId)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "internal server error")
	}
	count, err := s.Repo.CountBids(ctx, slotId)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "internal server error")
	}
	return &SlotBidsView{SlotID: slotId, MyBids: bids, BidCount: count}, nil
}

// ResolveSlot resolves a slot now (admin action). Safe to re-run.
func (s *SlotService) ResolveSlot(ctx context.Context, slotId string) (*models.Slot, error) {
	if slotId == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "missing required parameter: slotId")
	}

	slotExists, err := s.Repo.SlotExists(ctx, slotId)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "internal server error")
	}
	if !slotExists {
		return nil, models.NewErrorResponse(http.StatusNotFound, "slot not found")
	}
	return s.Repo.ResolveSlot(ctx, slotId, time.Now())
}

// SweepExpiredSlots resolves every slot whose deadline has passed.
// Deadlines are only enforced here and at the next write, never via
// blocking waits; the sweep is idempotent and safe to run concurrently
// because each slot resolves under its own row lock.
func (s *SlotService) SweepExpiredSlots(ctx context.Context) int {
	ids, err := s.Repo.ListExpiredSlotIds(ctx, time.Now())
	if err != nil {
		s.Logger.Printf("deadline sweep: listing expired slots failed: %v", err)
		return 0
	}

	resolved := 0
	for _, id := range ids {
		if _, err := s.Repo.ResolveSlot(ctx, id, time.Now()); err != nil {
			s.Logger.Printf("deadline sweep: resolving slot %s failed: %v", id, err)
			continue
		}
		resolved++
	}
	if resolved > 0 {
		s.Logger.Printf("deadline sweep: resolved %d slot(s)", resolved)
	}
	return resolved
}
