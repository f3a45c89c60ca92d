package models

import "time"

type (
	PharmacyType     string // Pharmacy format of a listing
	ModerationStatus string // Moderation state of a listing
)

const (
	ClinicSidePharmacy PharmacyType = "ClinicSide" // Attached to a clinic building
	StreetPharmacy     PharmacyType = "Street"
	HospitalFront      PharmacyType = "HospitalFront"
	OfficePharmacy     PharmacyType = "Office"

	PendingReviewListing ModerationStatus = "PENDING_REVIEW"
	ActiveListing        ModerationStatus = "ACTIVE"
	ClosedListing        ModerationStatus = "CLOSED"
)

// AllowedPharmacyTypes lists the pharmacy formats accepted on creation.
var AllowedPharmacyTypes = map[PharmacyType]bool{
	ClinicSidePharmacy: true,
	StreetPharmacy:     true,
	HospitalFront:      true,
	OfficePharmacy:     true,
}

// Moderation transitions: a listing goes live once, then closes once.
var listingTransitions = map[ModerationStatus][]ModerationStatus{
	PendingReviewListing: {ActiveListing, ClosedListing},
	ActiveListing:        {ClosedListing},
	ClosedListing:        {},
}

// AllowedListingTransitions returns the moderation statuses reachable
// from the current one.
func AllowedListingTransitions(current ModerationStatus) []ModerationStatus {
	return listingTransitions[current]
}

// ValidListingTransition reports whether current -> next is a legal
// moderation edge.
func ValidListingTransition(current, next ModerationStatus) bool {
	for _, s := range listingTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}

// Listing represents a moderated pharmacy listing. The stored record is
// always complete; redaction happens at read time against the caller's
// access level.
type Listing struct {
	ID               string           `json:"id"`
	OwnerID          string           `json:"ownerId"`
	Region           string           `json:"region"`
	PharmacyType     PharmacyType     `json:"pharmacyType"`
	AreaSize         int              `json:"areaSize"` // pyeong
	MonthlyRevenue   int64            `json:"monthlyRevenue"`
	Premium          int64            `json:"premium"`
	MonthlyRent      int64            `json:"monthlyRent"`
	ExactAddress     string           `json:"exactAddress"`
	Contact          string           `json:"contact"`
	OwnerPlan        OwnerPlan        `json:"ownerPlan"`
	ModerationStatus ModerationStatus `json:"moderationStatus"`
	CreatedAt        time.Time        `json:"createdAt"`
}

// ListingRequest represents the request body for creating a listing.
type ListingRequest struct {
	OwnerID        string       `json:"ownerId"`
	Region         string       `json:"region"`
	PharmacyType   PharmacyType `json:"pharmacyType"`
	AreaSize       int          `json:"areaSize"`
	MonthlyRevenue int64        `json:"monthlyRevenue"`
	Premium        int64        `json:"premium"`
	MonthlyRent    int64        `json:"monthlyRent"`
	ExactAddress   string       `json:"exactAddress"`
	Contact        string       `json:"contact"`
	OwnerPlan      OwnerPlan    `json:"ownerPlan"`
}

// Profile represents a buyer/pharmacist profile. SubjectID is the
// account that owns the profile and acts for it in matches.
type Profile struct {
	ID            string       `json:"id"`
	SubjectID     string       `json:"subjectId"`
	Name          string       `json:"name"`
	Region        string       `json:"region"`
	Budget        int64        `json:"budget"`
	PreferredType PharmacyType `json:"preferredType"`
	MinAreaSize   int          `json:"minAreaSize"`
	TargetRevenue int64        `json:"targetRevenue"`
	LicenseYears  int          `json:"licenseYears"`
	Contact       string       `json:"contact"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// MoneyBand is a coarse [low, high) range disclosed in place of an
// exact figure at the lower access tiers.
type MoneyBand struct {
	Low  int64 `json:"low"`
	High int64 `json:"high"`
}

// Band widths per tier, in KRW.
const (
	bucketWidth = 100_000_000 // MINIMAL: premium bucket in 1억 steps
	bandWidth   = 10_000_000  // PARTIAL: 천만 단위 ranges
)

func bandOf(amount, width int64) MoneyBand {
	low := (amount / width) * width
	return MoneyBand{Low: low, High: low + width}
}

// RedactedListing is the read-time view of a listing for a given access
// level. Fields absent at a level stay nil and are omitted from JSON.
type RedactedListing struct {
	ID               string           `json:"id"`
	Region           string           `json:"region"`
	PharmacyType     PharmacyType     `json:"pharmacyType"`
	ModerationStatus ModerationStatus `json:"moderationStatus"`

	PremiumBucket *MoneyBand `json:"premiumBucket,omitempty"` // MINIMAL+

	AreaSize    *int       `json:"areaSize,omitempty"` // PARTIAL+
	PremiumBand *MoneyBand `json:"premiumBand,omitempty"`
	RevenueBand *MoneyBand `json:"revenueBand,omitempty"`
	RentBand    *MoneyBand `json:"rentBand,omitempty"`

	ExactAddress   *string `json:"exactAddress,omitempty"` // FULL only
	Contact        *string `json:"contact,omitempty"`
	Premium        *int64  `json:"premium,omitempty"`
	MonthlyRevenue *int64  `json:"monthlyRevenue,omitempty"`
	MonthlyRent    *int64  `json:"monthlyRent,omitempty"`
}

// RedactListing projects a stored listing down to what the given access
// level may see.
func RedactListing(l *Listing, level AccessLevel) *RedactedListing {
	view := &RedactedListing{
		ID:               l.ID,
		Region:           l.Region,
		PharmacyType:     l.PharmacyType,
		ModerationStatus: l.ModerationStatus,
	}
	if level.Rank() >= MinimalAccess.Rank() {
		bucket := bandOf(l.Premium, bucketWidth)
		view.PremiumBucket = &bucket
	}
	if level.Rank() >= PartialAccess.Rank() {
		area := l.AreaSize
		premiumBand := bandOf(l.Premium, bandWidth)
		revenueBand := bandOf(l.MonthlyRevenue, bandWidth)
		rentBand := bandOf(l.MonthlyRent, bandWidth)
		view.AreaSize = &area
		view.PremiumBand = &premiumBand
		view.RevenueBand = &revenueBand
		view.RentBand = &rentBand
	}
	if level.Rank() >= FullAccess.Rank() {
		address := l.ExactAddress
		contact := l.Contact
		premium := l.Premium
		revenue := l.MonthlyRevenue
		rent := l.MonthlyRent
		view.ExactAddress = &address
		view.Contact = &contact
		view.Premium = &premium
		view.MonthlyRevenue = &revenue
		view.MonthlyRent = &rent
	}
	return view
}
