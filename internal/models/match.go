package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type (
	MatchStatus string // Negotiation state of a match
	OwnerPlan   string // Subscription plan of a listing owner
)

const (
	PendingMatch    MatchStatus = "PENDING"    // Created, no mutual interest yet
	MutualMatch     MatchStatus = "MUTUAL"     // Both sides marked interest
	ChattingMatch   MatchStatus = "CHATTING"   // First message sent
	MeetingMatch    MatchStatus = "MEETING"    // Meeting proposed
	ContractedMatch MatchStatus = "CONTRACTED" // Owner confirmed; terminal
	CancelledMatch  MatchStatus = "CANCELLED"  // Either party cancelled; terminal

	BasicPlan   OwnerPlan = "BASIC"
	PlusPlan    OwnerPlan = "PLUS"
	PremiumPlan OwnerPlan = "PREMIUM"
)

// The single source of truth for match transitions. Every status
// change, including the MUTUAL promotion and the first-message
// CHATTING flip, goes through this table.
var matchTransitions = map[MatchStatus][]MatchStatus{
	PendingMatch:    {MutualMatch, CancelledMatch},
	MutualMatch:     {ChattingMatch, CancelledMatch},
	ChattingMatch:   {MeetingMatch, CancelledMatch},
	MeetingMatch:    {ContractedMatch, CancelledMatch},
	ContractedMatch: {},
	CancelledMatch:  {},
}

// AllowedMatchTransitions returns the statuses reachable from the
// current one.
func AllowedMatchTransitions(current MatchStatus) []MatchStatus {
	return matchTransitions[current]
}

// ValidMatchTransition reports whether current -> next is a legal edge.
func ValidMatchTransition(current, next MatchStatus) bool {
	for _, s := range matchTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s MatchStatus) IsTerminal() bool {
	return len(matchTransitions[s]) == 0
}

// Commission rates by owner plan at match creation. The rate is frozen
// on the match row; later plan changes do not touch it.
var commissionRates = map[OwnerPlan]decimal.Decimal{
	BasicPlan:   decimal.NewFromFloat(0.015),
	PlusPlan:    decimal.NewFromFloat(0.020),
	PremiumPlan: decimal.NewFromFloat(0.025),
}

// Commission clamp bounds in KRW.
const (
	CommissionFloor   = 500_000
	CommissionCeiling = 30_000_000
)

// CommissionRateFor returns the rate for an owner plan. Unknown plans
// fall back to BASIC.
func CommissionRateFor(plan OwnerPlan) decimal.Decimal {
	rate, ok := commissionRates[plan]
	if !ok {
		return commissionRates[BasicPlan]
	}
	return rate
}

// ComputeCommission returns clamp(rate * premium, floor, ceiling),
// rounded down to whole KRW.
func ComputeCommission(rate decimal.Decimal, premium int64) int64 {
	amount := rate.Mul(decimal.NewFromInt(premium)).IntPart()
	if amount < CommissionFloor {
		return CommissionFloor
	}
	if amount > CommissionCeiling {
		return CommissionCeiling
	}
	return amount
}

// Match score weights. Sub-scores are 0..100; the total is their
// weighted average, computed once at creation and never again.
var scoreWeights = struct {
	region, budget, size, revenue, pharmacyType, experience int64
}{25, 20, 15, 15, 15, 10}

// ComputeMatchScore scores how well a profile fits a listing, 0..100.
func ComputeMatchScore(l *Listing, p *Profile) int {
	region := int64(0)
	if l.Region != "" && l.Region == p.Region {
		region = 100
	}

	budget := ratioScore(p.Budget, l.Premium)
	size := ratioScore(int64(l.AreaSize), int64(p.MinAreaSize))
	revenue := ratioScore(l.MonthlyRevenue, p.TargetRevenue)

	pharmacyType := int64(0)
	if l.PharmacyType == p.PreferredType {
		pharmacyType = 100
	}

	experience := int64(p.LicenseYears) * 10
	if experience > 100 {
		experience = 100
	}

	total := region*scoreWeights.region +
		budget*scoreWeights.budget +
		size*scoreWeights.size +
		revenue*scoreWeights.revenue +
		pharmacyType*scoreWeights.pharmacyType +
		experience*scoreWeights.experience
	return int(total / 100)
}

// ratioScore gives 100 when have covers want, otherwise the coverage
// percentage. A zero want is trivially satisfied.
func ratioScore(have, want int64) int64 {
	if want <= 0 || have >= want {
		return 100
	}
	if have <= 0 {
		return 0
	}
	return have * 100 / want
}

// Match represents the negotiation between one listing and one profile.
type Match struct {
	ID               string      `json:"id"`
	ListingID        string      `json:"listingId"`
	ProfileID        string      `json:"profileId"`
	Status           MatchStatus `json:"status"`
	MatchScore       int         `json:"matchScore"`
	CommissionRate   string      `json:"commissionRate"` // frozen at creation
	CommissionAmount *int64      `json:"commissionAmount,omitempty"`
	OwnerInterest    bool        `json:"ownerInterest"`
	ProfileInterest  bool        `json:"profileInterest"`
	CancelReason     string      `json:"cancelReason,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
}

// MatchRequest represents the request body for creating a match.
type MatchRequest struct {
	ListingID string `json:"listingId"`
	ProfileID string `json:"profileId"`
}

// StatusUpdateRequest represents the request body for a transition.
type StatusUpdateRequest struct {
	Status MatchStatus `json:"status"`
	Reason string      `json:"reason,omitempty"`
}

// IsContactRevealed reports whether the two parties may see each
// other's contact info. Mutual consent is a separate disclosure channel
// from paid access tiers: any status past PENDING reveals contact,
// whatever the parties' AccessGrant levels are.
func IsContactRevealed(m *Match) bool {
	return m.Status != PendingMatch
}
