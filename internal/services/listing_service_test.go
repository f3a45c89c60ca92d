package services

import (
	"context"
	"testing"

	"github.com/lhs0609a-cpu/pharmatch-service/internal/models"
	"github.com/lhs0609a-cpu/pharmatch-service/internal/payments"
)

func newListingFixture() (*ListingService, *fakeListingRepo, *fakeVerifier) {
	listingRepo := newFakeListingRepo()
	verifier := &fakeVerifier{payments: make(map[string]payments.PaymentInfo)}
	access := NewAccessService(&fakeAccessRepo{}, listingRepo, verifier, nil)
	return NewListingService(listingRepo, access), listingRepo, verifier
}

func TestCreateListingStartsInReview(t *testing.T) {
	svc, _, _ := newListingFixture()

	listing, err := svc.CreateListing(context.Background(), models.ListingRequest{
		OwnerID:      "sub-owner",
		Region:       "서울 강남구",
		PharmacyType: models.StreetPharmacy,
		Premium:      100_000_000,
		ExactAddress: "서울 강남구 테헤란로 123",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if listing.ModerationStatus != models.PendingReviewListing {
		t.Errorf("status = %s, want PENDING_REVIEW", listing.ModerationStatus)
	}
	if listing.OwnerPlan != models.BasicPlan {
		t.Errorf("plan = %s, want the BASIC default", listing.OwnerPlan)
	}
}

func TestCreateListingValidation(t *testing.T) {
	svc, _, _ := newListingFixture()

	tests := []struct {
		name string
		req  models.ListingRequest
	}{
		{"missing owner", models.ListingRequest{Region: "r", PharmacyType: models.StreetPharmacy, ExactAddress: "a"}},
		{"bad type", models.ListingRequest{OwnerID: "o", Region: "r", PharmacyType: "Floating", ExactAddress: "a"}},
		{"negative premium", models.ListingRequest{OwnerID: "o", Region: "r", PharmacyType: models.StreetPharmacy, ExactAddress: "a", Premium: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateListing(context.Background(), tt.req); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestGetListingRedactsByCallerLevel(t *testing.T) {
	svc, listingRepo, verifier := newListingFixture()
	listing := seedListing(listingRepo)

	// Anonymous caller: PUBLIC view only.
	view, err := svc.GetListing(context.Background(), "", listing.ID)
	if err != nil {
		t.Fatalf("anonymous get: %v", err)
	}
	if view.PremiumBucket != nil || view.Contact != nil {
		t.Error("anonymous callers get the PUBLIC projection")
	}

	// Authenticated baseline: coarse premium bucket appears.
	view, err = svc.GetListing(context.Background(), "sub-buyer", listing.ID)
	if err != nil {
		t.Fatalf("minimal get: %v", err)
	}
	if view.PremiumBucket == nil {
		t.Error("MINIMAL callers see the premium bucket")
	}
	if view.Contact != nil || view.ExactAddress != nil {
		t.Error("MINIMAL callers must not see FULL fields")
	}

	// After buying FULL the same read discloses everything.
	verifier.payments["pay-1"] = payments.PaymentInfo{
		PaymentRef: "pay-1", Amount: 130_000, SKU: "ACCESS_FULL_BUNDLE", Status: payments.StatusConfirmed,
	}
	if _, err := svc.Access.GrantAccess(context.Background(), "sub-buyer", listing.ID, models.FullAccess, "pay-1"); err != nil {
		t.Fatalf("grant: %v", err)
	}
	view, err = svc.GetListing(context.Background(), "sub-buyer", listing.ID)
	if err != nil {
		t.Fatalf("full get: %v", err)
	}
	if view.Contact == nil || view.ExactAddress == nil || view.Premium == nil {
		t.Error("FULL callers see the complete listing")
	}
}

func TestGetListingOwnerSeesEverything(t *testing.T) {
	svc, listingRepo, _ := newListingFixture()
	listing := seedListing(listingRepo)

	view, err := svc.GetListing(context.Background(), "sub-owner", listing.ID)
	if err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if view.Contact == nil || view.ExactAddress == nil {
		t.Error("owners always see their own listing in full")
	}
}

func TestGetListingNotFound(t *testing.T) {
	svc, _, _ := newListingFixture()

	_, err := svc.GetListing(context.Background(), "sub-buyer", "lst-none")
	if err == nil {
		t.Fatal("expected not found")
	}
	if code := errCode(t, err); code != models.CodeListingNotFound {
		t.Errorf("code = %s, want %s", code, models.CodeListingNotFound)
	}
}

func TestUpdateModerationStatusLifecycle(t *testing.T) {
	svc, listingRepo, _ := newListingFixture()
	listing := seedListing(listingRepo)

	updated, err := svc.UpdateModerationStatus(context.Background(), listing.ID, models.ActiveListing)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if updated.ModerationStatus != models.ActiveListing {
		t.Errorf("status = %s, want ACTIVE", updated.ModerationStatus)
	}

	// A closed listing never reopens.
	if _, err := svc.UpdateModerationStatus(context.Background(), listing.ID, models.ClosedListing); err != nil {
		t.Fatalf("close: %v", err)
	}
	_, err = svc.UpdateModerationStatus(context.Background(), listing.ID, models.ActiveListing)
	if err == nil {
		t.Fatal("CLOSED -> ACTIVE must be rejected")
	}
	if code := errCode(t, err); code != models.CodeInvalidTransition {
		t.Errorf("code = %s, want %s", code, models.CodeInvalidTransition)
	}
}

func TestCreateProfileValidation(t *testing.T) {
	svc, _, _ := newListingFixture()

	if _, err := svc.CreateProfile(context.Background(), models.Profile{Name: "김약사", Region: "서울"}); err == nil {
		t.Error("a profile without an owning subject must be rejected")
	}
	if _, err := svc.CreateProfile(context.Background(), models.Profile{SubjectID: "s", Name: "김약사", Region: "서울", PreferredType: "Floating"}); err == nil {
		t.Error("an unknown preferred type must be rejected")
	}

	profile, err := svc.CreateProfile(context.Background(), models.Profile{SubjectID: "s", Name: "김약사", Region: "서울"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if profile.ID == "" {
		t.Error("created profiles get an ID")
	}
}
