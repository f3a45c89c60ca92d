package models

import "time"

type AccessLevel string // Disclosure tier for a (subject, listing) pair

const (
	PublicAccess  AccessLevel = "PUBLIC"  // Unauthenticated callers
	MinimalAccess AccessLevel = "MINIMAL" // Baseline for any authenticated subject
	PartialAccess AccessLevel = "PARTIAL"
	FullAccess    AccessLevel = "FULL"
)

// Rank orders are fixed; grants only ever move a pair upward.
var accessRank = map[AccessLevel]int{
	PublicAccess:  0,
	MinimalAccess: 1,
	PartialAccess: 2,
	FullAccess:    3,
}

// Rank returns the ordinal position of the level. Unknown levels rank
// below PUBLIC.
func (l AccessLevel) Rank() int {
	rank, ok := accessRank[l]
	if !ok {
		return -1
	}
	return rank
}

// MaxAccessLevel returns the higher of two levels.
func MaxAccessLevel(a, b AccessLevel) AccessLevel {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// AccessGrant is one row of the append-only disclosure ledger.
type AccessGrant struct {
	ID         string      `json:"id"`
	SubjectID  string      `json:"subjectId"`
	ListingID  string      `json:"listingId"`
	Level      AccessLevel `json:"level"`
	PaymentRef string      `json:"paymentRef"`
	GrantedAt  time.Time   `json:"grantedAt"`
}

// GrantRequest represents the request body for purchasing a tier upgrade.
type GrantRequest struct {
	ListingID   string      `json:"listingId"`
	TargetLevel AccessLevel `json:"targetLevel"`
	PaymentRef  string      `json:"paymentRef"`
}

// UpgradePrice is one entry of the fixed price table.
type UpgradePrice struct {
	Amount int64
	SKU    string
}

// The price table is fixed. The MINIMAL->FULL bundle is a single
// discounted charge, not two sequential purchases.
var priceTable = map[AccessLevel]map[AccessLevel]UpgradePrice{
	MinimalAccess: {
		PartialAccess: {Amount: 50_000, SKU: "ACCESS_PARTIAL"},
		FullAccess:    {Amount: 130_000, SKU: "ACCESS_FULL_BUNDLE"},
	},
	PartialAccess: {
		FullAccess: {Amount: 100_000, SKU: "ACCESS_FULL"},
	},
}

// UpgradePriceFor returns the charge for moving a pair from the current
// level to the target level, or false when no such jump is sold.
func UpgradePriceFor(current, target AccessLevel) (UpgradePrice, bool) {
	if current.Rank() < MinimalAccess.Rank() {
		current = MinimalAccess
	}
	price, ok := priceTable[current][target]
	return price, ok
}
