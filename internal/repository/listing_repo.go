package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lhs0609a-cpu/pharmatch-service/internal/models"
	"github.com/lhs0609a-cpu/pharmatch-service/internal/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// ListingRepository handles listings and buyer profiles.
type ListingRepository interface {
	CreateListing(ctx context.Context, req models.ListingRequest) (*models.Listing, error)
	GetListings(ctx context.Context, limit, offset int, regions, pharmacyTypes []string) ([]models.Listing, error)
	GetListing(ctx context.Context, listingId string) (*models.Listing, error)
	ListingExists(ctx context.Context, listingId string) (bool, error)
	IsListingOwner(ctx context.Context, subjectId, listingId string) (bool, error)
	UpdateModerationStatus(ctx context.Context, listingId string, status models.ModerationStatus) (*models.Listing, error)
	CreateProfile(ctx context.Context, profile models.Profile) (*models.Profile, error)
	GetProfile(ctx context.Context, profileId string) (*models.Profile, error)
	IsProfileOwner(ctx context.Context, subjectId, profileId string) (bool, error)
}

// PostgresListingRepository is the ListingRepository database implementation.
type PostgresListingRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresListingRepository creates a new PostgresListingRepository.
func NewPostgresListingRepository(db *pgxpool.Pool) *PostgresListingRepository {
	return &PostgresListingRepository{DB: db}
}

const listingColumns = `id, owner_id, region, pharmacy_type, area_size, monthly_revenue, premium, monthly_rent,
                        exact_address, contact, owner_plan, moderation_status, created_at`

func scanListing(row interface{ Scan(dest ...any) error }) (*models.Listing, error) {
	var l models.Listing
	err := row.Scan(
		&l.ID,
		&l.OwnerID,
		&l.Region,
		&l.PharmacyType,
		&l.AreaSize,
		&l.MonthlyRevenue,
		&l.Premium,
		&l.MonthlyRent,
		&l.ExactAddress,
		&l.Contact,
		&l.OwnerPlan,
		&l.ModerationStatus,
		&l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateListing creates a new listing in PENDING_REVIEW.
func (r *PostgresListingRepository) CreateListing(ctx context.Context, req models.ListingRequest) (*models.Listing, error) {
	newListing := models.Listing{
		ID:               uuid.New().String(),
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
		CreatedAt:        time.Now().UTC(),
	}
	_, err := r.DB.Exec(ctx, `
       INSERT INTO listing (id, owner_id, region, pharmacy_type, area_size, monthly_revenue, premium, monthly_rent,
                            exact_address, contact, owner_plan, moderation_status, created_at)
       VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
   `,
		newListing.ID,
		newListing.OwnerID,
		newListing.Region,
		newListing.PharmacyType,
		newListing.AreaSize,
		newListing.MonthlyRevenue,
		newListing.Premium,
		newListing.MonthlyRent,
		newListing.ExactAddress,
		newListing.Contact,
		newListing.OwnerPlan,
		newListing.ModerationStatus,
		newListing.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert listing: %w", err)
	}
	return &newListing, nil
}

// GetListings returns ACTIVE listings with optional region and type filters.
func (r *PostgresListingRepository) GetListings(ctx context.Context, limit, offset int, regions, pharmacyTypes []string) ([]models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listing`
	filters := []string{"moderation_status = 'ACTIVE'"}
	var args []interface{}
	argIndex := 1

	if len(regions) > 0 {
		filters = append(filters, fmt.Sprintf("region = ANY($%d)", argIndex))
		args = append(args, pq.Array(regions))
		argIndex++
	}
	if len(pharmacyTypes) > 0 {
		filters = append(filters, fmt.Sprintf("pharmacy_type = ANY($%d)", argIndex))
		args = append(args, pq.Array(pharmacyTypes))
		argIndex++
	}

	query += " WHERE " + strings.Join(filters, " AND ")
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *listing)
	}
	return listings, nil
}

// GetListing returns one listing by ID.
func (r *PostgresListingRepository) GetListing(ctx context.Context, listingId string) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listing WHERE id = $1`
	return scanListing(r.DB.QueryRow(ctx, query, listingId))
}

// ListingExists checks whether a listing exists.
func (r *PostgresListingRepository) ListingExists(ctx context.Context, listingId string) (bool, error) {
	return utils.CheckListingExists(ctx, r.DB, listingId)
}

// IsListingOwner checks whether the subject owns the listing.
func (r *PostgresListingRepository) IsListingOwner(ctx context.Context, subjectId, listingId string) (bool, error) {
	return utils.CheckListingOwner(ctx, r.DB, subjectId, listingId)
}

// IsProfileOwner checks whether the subject owns the profile.
func (r *PostgresListingRepository) IsProfileOwner(ctx context.Context, subjectId, profileId string) (bool, error) {
	return utils.CheckProfileOwner(ctx, r.DB, subjectId, profileId)
}

// UpdateModerationStatus moves a listing to a new moderation status.
func (r *PostgresListingRepository) UpdateModerationStatus(ctx context.Context, listingId string, status models.ModerationStatus) (*models.Listing, error) {
	query := `UPDATE listing SET moderation_status = $1 WHERE id = $2 RETURNING ` + listingColumns
	return scanListing(r.DB.QueryRow(ctx, query, status, listingId))
}

// CreateProfile creates a new buyer profile.
func (r *PostgresListingRepository) CreateProfile(ctx context.Context, profile models.Profile) (*models.Profile, error) {
	profile.ID = uuid.New().String()
	profile.CreatedAt = time.Now().UTC()
	_, err := r.DB.Exec(ctx, `
       INSERT INTO profile (id, subject_id, name, region, budget, preferred_type, min_area_size, target_revenue, license_years, contact, created_at)
       VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
   `,
		profile.ID,
		profile.SubjectID,
		profile.Name,
		profile.Region,
		profile.Budget,
		profile.PreferredType,
		profile.MinAreaSize,
		profile.TargetRevenue,
		profile.LicenseYears,
		profile.Contact,
		profile.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert profile: %w", err)
	}
	return &profile, nil
}

// GetProfile returns one profile by ID.
func (r *PostgresListingRepository) GetProfile(ctx context.Context, profileId string) (*models.Profile, error) {
	var p models.Profile
	query := `SELECT id, subject_id, name, region, budget, preferred_type, min_area_size, target_revenue, license_years, contact, created_at
	          FROM profile WHERE id = $1`
	err := r.DB.QueryRow(ctx, query, profileId).Scan(
		&p.ID,
		&p.SubjectID,
		&p.Name,
		&p.Region,
		&p.Budget,
		&p.PreferredType,
		&p.MinAreaSize,
		&p.TargetRevenue,
		&p.LicenseYears,
		&p.Contact,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
