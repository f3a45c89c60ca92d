package handlers

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lhs0609a-cpu/pharmatch-service/internal/models"
	"github.com/lhs0609a-cpu/pharmatch-service/internal/services"
	"github.com/lhs0609a-cpu/pharmatch-service/internal/utils"
)

type memSlotRepo struct {
	slots map[string]*models.Slot
	bids  map[string][]models.Bid
}

func (m *memSlotRepo) CreateSlot(ctx context.Context, req models.SlotRequest) (*models.Slot, error) {
	s := &models.Slot{ID: "slt-1", Address: req.Address, ClinicType: req.ClinicType,
		MinBidAmount: req.MinBidAmount, BidDeadline: req.BidDeadline, Status: models.OpenSlot}
	m.slots[s.ID] = s
	return s, nil
}

func (m *memSlotRepo) GetSlots(ctx context.Context, limit, offset int, statuses []string) ([]models.Slot, error) {
	var out []models.Slot
	for _, s := range m.slots {
		out = append(out, *s)
	}
	return out, nil
}

func (m *memSlotRepo) GetSlot(ctx context.Context, slotId string) (*models.Slot, error) {
	s := m.slots[slotId]
	copied := *s
	return &copied, nil
}

func (m *memSlotRepo) SlotExists(ctx context.Context, slotId string) (bool, error) {
	_, ok := m.slots[slotId]
	return ok, nil
}

func (m *memSlotRepo) PlaceBid(ctx context.Context, slotId, bidderId string, amount int64, now time.Time) (*models.Bid, error) {
	bid := models.Bid{SlotID: slotId, BidderID: bidderId, Amount: amount, SubmittedAt: now, Result: models.PendingBid}
	m.bids[slotId] = append(m.bids[slotId], bid)
	m.slots[slotId].Status = models.BiddingSlot
	return &bid, nil
}

func (m *memSlotRepo) ResolveSlot(ctx context.Context, slotId string, now time.Time) (*models.Slot, error) {
	s := m.slots[slotId]
	if models.ResolveWinner(m.bids[slotId]) == nil {
		s.Status = models.ClosedSlot
	} else {
		s.Status = models.MatchedSlot
	}
	copied := *s
	return &copied, nil
}

func (m *memSlotRepo) ListExpiredSlotIds(ctx context.Context, now time.Time) ([]string, error) {
	return nil, nil
}

func (m *memSlotRepo) GetBidderBids(ctx context.Context, slotId, bidderId string) ([]models.Bid, error) {
	return m.bids[slotId], nil
}

func (m *memSlotRepo) CountBids(ctx context.Context, slotId string) (int, error) {
	return len(m.bids[slotId]), nil
}

func newSlotTestHandler() (*SlotHandler, *memSlotRepo) {
	repo := &memSlotRepo{slots: make(map[string]*models.Slot), bids: make(map[string][]models.Bid)}
	logger := log.New(io.Discard, "", 0)
	svc := services.NewSlotService(repo, logger)
	return NewSlotHandler(svc, logger, 2*time.Second), repo
}

func TestResolveSlotHandlerRequiresAdminRole(t *testing.T) {
	handler, repo := newSlotTestHandler()
	repo.slots["slt-1"] = &models.Slot{ID: "slt-1", Status: models.BiddingSlot,
		BidDeadline: time.Now().Add(time.Hour)}

	req := httptest.NewRequest(http.MethodPost, "/api/slots/slt-1/resolve", nil)
	req.SetPathValue("slotId", "slt-1")
	req.Header.Set("X-Subject-Id", "sub-bidder")
	rec := httptest.NewRecorder()
	handler.ResolveSlot(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if repo.slots["slt-1"].Status != models.BiddingSlot {
		t.Errorf("slot resolved to %s by a non-admin caller", repo.slots["slt-1"].Status)
	}
}

func TestResolveSlotHandlerAdminResolves(t *testing.T) {
	handler, repo := newSlotTestHandler()
	repo.slots["slt-1"] = &models.Slot{ID: "slt-1", Status: models.BiddingSlot,
		BidDeadline: time.Now().Add(time.Hour)}
	repo.bids["slt-1"] = []models.Bid{{ID: "bid-1", SlotID: "slt-1", BidderID: "sub-a",
		Amount: 60000000, SubmittedAt: time.Now(), Result: models.PendingBid}}

	req := httptest.NewRequest(http.MethodPost, "/api/slots/slt-1/resolve", nil)
	req.SetPathValue("slotId", "slt-1")
	req.Header.Set("X-Subject-Role", utils.AdminRole)
	rec := httptest.NewRecorder()
	handler.ResolveSlot(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if repo.slots["slt-1"].Status != models.MatchedSlot {
		t.Errorf("status = %s, want MATCHED", repo.slots["slt-1"].Status)
	}
}
