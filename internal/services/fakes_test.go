package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/lhs0609a-cpu/pharmatch-service/internal/models"
	"github.com/lhs0609a-cpu/pharmatch-service/internal/payments"
)

// In-memory fakes for the repository interfaces. They mirror the
// database behavior the services rely on: idempotent grant appends,
// compare-and-swap status writes and unique live match pairs.

type fakeListingRepo struct {
	listings map[string]*models.Listing
	profiles map[string]*models.Profile
	nextID   int
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{
		listings: make(map[string]*models.Listing),
		profiles: make(map[string]*models.Profile),
	}
}

func (f *fakeListingRepo) CreateListing(ctx context.Context, req models.ListingRequest) (*models.Listing, error) {
	f.nextID++
	l := &models.Listing{
		ID:               fmt.Sprintf("lst-%d", f.nextID),
		OwnerID:          req.OwnerID,
		Region:           req.Region,
		PharmacyType:     req.PharmacyType,
		AreaSize:         req.AreaSize,
		MonthlyRevenue:   req.MonthlyRevenue,
		Premium:          req.Premium,
		MonthlyRent:      req.MonthlyRent,
		ExactAddress:     req.ExactAddress,
		Contact:          req.Contact,
		OwnerPlan:        req.OwnerPlan,
		ModerationStatus: models.PendingReviewListing,
		CreatedAt:        time.Now(),
	}
	f.listings[l.ID] = l
	return l, nil
}

func (f *fakeListingRepo) GetListings(ctx context.Context, limit, offset int, regions, pharmacyTypes []string) ([]models.Listing, error) {
	var out []models.Listing
	for _, l := range f.listings {
		if l.ModerationStatus == models.ActiveListing {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeListingRepo) GetListing(ctx context.Context, listingId string) (*models.Listing, error) {
	l, ok := f.listings[listingId]
	if !ok {
		return nil, fmt.Errorf("no rows")
	}
	copied := *l
	return &copied, nil
}

func (f *fakeListingRepo) ListingExists(ctx context.Context, listingId string) (bool, error) {
	_, ok := f.listings[listingId]
	return ok, nil
}

func (f *fakeListingRepo) IsListingOwner(ctx context.Context, subjectId, listingId string) (bool, error) {
	l, ok := f.listings[listingId]
	return ok && l.OwnerID == subjectId, nil
}

func (f *fakeListingRepo) UpdateModerationStatus(ctx context.Context, listingId string, status models.ModerationStatus) (*models.Listing, error) {
	l, ok := f.listings[listingId]
	if !ok {
		return nil, fmt.Errorf("no rows")
	}
	l.ModerationStatus = status
	copied := *l
	return &copied, nil
}

func (f *fakeListingRepo) CreateProfile(ctx context.Context, profile models.Profile) (*models.Profile, error) {
	f.nextID++
	profile.ID = fmt.Sprintf("prf-%d", f.nextID)
	profile.CreatedAt = time.Now()
	f.profiles[profile.ID] = &profile
	return &profile, nil
}

func (f *fakeListingRepo) GetProfile(ctx context.Context, profileId string) (*models.Profile, error) {
	p, ok := f.profiles[profileId]
	if !ok {
		return nil, fmt.Errorf("no rows")
	}
	copied := *p
	return &copied, nil
}

func (f *fakeListingRepo) IsProfileOwner(ctx context.Context, subjectId, profileId string) (bool, error) {
	p, ok := f.profiles[profileId]
	return ok && p.SubjectID == subjectId, nil
}

type fakeAccessRepo struct {
	grants []models.AccessGrant
}

func (f *fakeAccessRepo) CreateGrant(ctx context.Context, subjectId, listingId string, level models.AccessLevel, paymentRef string) (*models.AccessGrant, error) {
	for i := range f.grants {
		if f.grants[i].PaymentRef == paymentRef {
			return &f.grants[i], nil
		}
	}
	grant := models.AccessGrant{
		ID:         fmt.Sprintf("grt-%d", len(f.grants)+1),
		SubjectID:  subjectId,
		ListingID:  listingId,
		Level:      level,
		PaymentRef: paymentRef,
		GrantedAt:  time.Now(),
	}
	f.grants = append(f.grants, grant)
	return &grant, nil
}

func (f *fakeAccessRepo) GetGrantByPaymentRef(ctx context.Context, paymentRef string) (*models.AccessGrant, error) {
	for i := range f.grants {
		if f.grants[i].PaymentRef == paymentRef {
			return &f.grants[i], nil
		}
	}
	return nil, nil
}

func (f *fakeAccessRepo) MaxLevel(ctx context.Context, subjectId, listingId string) (models.AccessLevel, error) {
	level := models.MinimalAccess
	for _, g := range f.grants {
		if g.SubjectID == subjectId && g.ListingID == listingId {
			level = models.MaxAccessLevel(level, g.Level)
		}
	}
	return level, nil
}

func (f *fakeAccessRepo) ListGrants(ctx context.Context, subjectId, listingId string) ([]models.AccessGrant, error) {
	var out []models.AccessGrant
	for _, g := range f.grants {
		if g.SubjectID == subjectId && g.ListingID == listingId {
			out = append(out, g)
		}
	}
	return out, nil
}

type fakeVerifier struct {
	payments map[string]payments.PaymentInfo
	err      error
}

func (f *fakeVerifier) VerifyPayment(ctx context.Context, paymentRef string) (*payments.PaymentInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	info, ok := f.payments[paymentRef]
	if !ok {
		return nil, fmt.Errorf("unknown payment %s", paymentRef)
	}
	return &info, nil
}

type fakeMatchRepo struct {
	matches map[string]*models.Match
	nextID  int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[string]*models.Match)}
}

func (f *fakeMatchRepo) CreateMatch(ctx context.Context, match models.Match) (*models.Match, error) {
	for _, m := range f.matches {
		if m.ListingID == match.ListingID && m.ProfileID == match.ProfileID && m.Status != models.CancelledMatch {
			return nil, models.NewErrorResponse(http.StatusConflict, "an active match already exists for this listing and profile")
		}
	}
	f.nextID++
	match.ID = fmt.Sprintf("mch-%d", f.nextID)
	match.Status = models.PendingMatch
	match.CreatedAt = time.Now()
	f.matches[match.ID] = &match
	copied := match
	return &copied, nil
}

func (f *fakeMatchRepo) GetMatch(ctx context.Context, matchId string) (*models.Match, error) {
	m, ok := f.matches[matchId]
	if !ok {
		return nil, fmt.Errorf("no rows")
	}
	copied := *m
	return &copied, nil
}

func (f *fakeMatchRepo) ListMatchesForSubject(ctx context.Context, subjectId string, limit, offset int) ([]models.Match, error) {
	var out []models.Match
	for _, m := range f.matches {
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeMatchRepo) UpdateStatusCAS(ctx context.Context, matchId string, expected, next models.MatchStatus, reason string, commissionAmount *int64) (*models.Match, error) {
	m, ok := f.matches[matchId]
	if !ok || m.Status != expected {
		return nil, models.NewCodedError(http.StatusConflict, models.CodeStaleStatus,
			"match status changed since it was read")
	}
	m.Status = next
	if next == models.CancelledMatch {
		m.CancelReason = reason
	}
	if commissionAmount != nil {
		m.CommissionAmount = commissionAmount
	}
	copied := *m
	return &copied, nil
}

func (f *fakeMatchRepo) SetInterest(ctx context.Context, matchId string, ownerSide bool) (*models.Match, error) {
	m, ok := f.matches[matchId]
	if !ok {
		return nil, fmt.Errorf("no rows")
	}
	if ownerSide {
		m.OwnerInterest = true
	} else {
		m.ProfileInterest = true
	}
	copied := *m
	return &copied, nil
}

type fakeMessageRepo struct {
	messages  []models.Message
	createErr error
}

func (f *fakeMessageRepo) CreateMessage(ctx context.Context, message models.Message) (*models.Message, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	message.ID = fmt.Sprintf("msg-%d", len(f.messages)+1)
	message.CreatedAt = time.Now()
	f.messages = append(f.messages, message)
	copied := message
	return &copied, nil
}

func (f *fakeMessageRepo) ListMessages(ctx context.Context, matchId string, limit, offset int) ([]models.Message, error) {
	var out []models.Message
	for _, m := range f.messages {
		if m.MatchID == matchId {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) MarkRead(ctx context.Context, matchId, readerId string) error {
	for i := range f.messages {
		if f.messages[i].MatchID == matchId && f.messages[i].SenderID != readerId {
			f.messages[i].IsRead = true
		}
	}
	return nil
}

type fakeSlotRepo struct {
	slots  map[string]*models.Slot
	bids   map[string][]models.Bid
	nextID int
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{
		slots: make(map[string]*models.Slot),
		bids:  make(map[string][]models.Bid),
	}
}

func (f *fakeSlotRepo) CreateSlot(ctx context.Context, req models.SlotRequest) (*models.Slot, error) {
	f.nextID++
	s := &models.Slot{
		ID:           fmt.Sprintf("slt-%d", f.nextID),
		Address:      req.Address,
		ClinicType:   req.ClinicType,
		MinBidAmount: req.MinBidAmount,
		BidDeadline:  req.BidDeadline,
		Status:       models.OpenSlot,
		CreatedAt:    time.Now(),
	}
	f.slots[s.ID] = s
	return s, nil
}

func (f *fakeSlotRepo) GetSlots(ctx context.Context, limit, offset int, statuses []string) ([]models.Slot, error) {
	var out []models.Slot
	for _, s := range f.slots {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeSlotRepo) GetSlot(ctx context.Context, slotId string) (*models.Slot, error) {
	s, ok := f.slots[slotId]
	if !ok {
		return nil, fmt.Errorf("no rows")
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSlotRepo) SlotExists(ctx context.Context, slotId string) (bool, error) {
	_, ok := f.slots[slotId]
	return ok, nil
}

func (f *fakeSlotRepo) PlaceBid(ctx context.Context, slotId, bidderId string, amount int64, now time.Time) (*models.Bid, error) {
	s, ok := f.slots[slotId]
	if !ok {
		return nil, fmt.Errorf("no rows")
	}
	if !s.Status.AcceptsBids() {
		return nil, models.NewCodedError(http.StatusConflict, models.CodeSlotClosed, "slot is no longer accepting bids")
	}
	if !now.Before(s.BidDeadline) {
		return nil, models.NewCodedError(http.StatusConflict, models.CodeDeadlinePassed, "bid deadline has passed")
	}
	if amount < s.MinBidAmount {
		return nil, models.NewCodedError(http.StatusBadRequest, models.CodeBelowMinimum,
			fmt.Sprintf("bid is below the minimum of %d", s.MinBidAmount))
	}
	bid := models.Bid{
		ID:          fmt.Sprintf("bid-%d", len(f.bids[slotId])+1),
		SlotID:      slotId,
		BidderID:    bidderId,
		Amount:      amount,
		SubmittedAt: now,
		Result:      models.PendingBid,
	}
	f.bids[slotId] = append(f.bids[slotId], bid)
	s.Status = models.BiddingSlot
	return &bid, nil
}

func (f *fakeSlotRepo) ResolveSlot(ctx context.Context, slotId string, now time.Time) (*models.Slot, error) {
	s, ok := f.slots[slotId]
	if !ok {
		return nil, fmt.Errorf("no rows")
	}
	if !s.Status.AcceptsBids() {
		copied := *s
		return &copied, nil
	}
	bids := f.bids[slotId]
	winner := models.ResolveWinner(bids)
	if winner == nil {
		s.Status = models.ClosedSlot
	} else {
		for i := range bids {
			if bids[i].ID == winner.ID {
				bids[i].Result = models.WinningBid
			} else {
				bids[i].Result = models.LostBid
			}
		}
		s.Status = models.MatchedSlot
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSlotRepo) ListExpiredSlotIds(ctx context.Context, now time.Time) ([]string, error) {
	var out []string
	for id, s := range f.slots {
		if s.Status.AcceptsBids() && !s.BidDeadline.After(now) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeSlotRepo) GetBidderBids(ctx context.Context, slotId, bidderId string) ([]models.Bid, error) {
	var out []models.Bid
	for _, b := range f.bids[slotId] {
		if b.BidderID == bidderId {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeSlotRepo) CountBids(ctx context.Context, slotId string) (int, error) {
	return len(f.bids[slotId]), nil
}
