package models

import "time"

type (
	SlotStatus string // Auction state of a slot
	BidResult  string // Outcome of a single bid
)

const (
	OpenSlot    SlotStatus = "OPEN"    // Accepting bids, none placed yet
	BiddingSlot SlotStatus = "BIDDING" // At least one sealed bid placed
	MatchedSlot SlotStatus = "MATCHED" // Resolved with a winning bid
	ClosedSlot  SlotStatus = "CLOSED"  // Resolved without bids, or withdrawn

	PendingBid BidResult = "PENDING"
	WinningBid BidResult = "WINNING"
	LostBid    BidResult = "LOST"
)

// Slot represents a pharmacy slot under sealed-bid auction.
type Slot struct {
	ID           string     `json:"id"`
	Address      string     `json:"address"`
	ClinicType   string     `json:"clinicType"`
	MinBidAmount int64      `json:"minBidAmount"`
	BidDeadline  time.Time  `json:"bidDeadline"`
	Status       SlotStatus `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// SlotRequest represents the request body for creating a slot.
type SlotRequest struct {
	Address      string    `json:"address"`
	ClinicType   string    `json:"clinicType"`
	MinBidAmount int64     `json:"minBidAmount"`
	BidDeadline  time.Time `json:"bidDeadline"`
}

// AcceptsBids reports whether the slot is still in a biddable state.
func (s SlotStatus) AcceptsBids() bool {
	return s == OpenSlot || s == BiddingSlot
}

// Bid represents one sealed bid on a slot. Amounts are never shown to
// competing bidders before resolution.
type Bid struct {
	ID          string    `json:"id"`
	SlotID      string    `json:"slotId"`
	BidderID    string    `json:"bidderId"`
	Amount      int64     `json:"amount"`
	SubmittedAt time.Time `json:"submittedAt"`
	Result      BidResult `json:"result"`
}

// BidRequest represents the request body for placing a bid.
type BidRequest struct {
	Amount int64 `json:"amount"`
}

// ResolveWinner picks the winning bid: maximum amount, ties broken by
// earliest submission. Returns nil when there are no bids.
func ResolveWinner(bids []Bid) *Bid {
	var winner *Bid
	for i := range bids {
		b := &bids[i]
		if winner == nil {
			winner = b
			continue
		}
		if b.Amount > winner.Amount ||
			(b.Amount == winner.Amount && b.SubmittedAt.Before(winner.SubmittedAt)) {
			winner = b
		}
	}
	return winner
}
