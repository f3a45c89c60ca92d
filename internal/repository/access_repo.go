package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lhs0609a-cpu/pharmatch-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccessRepository is the append-only disclosure ledger. Grants are
// never updated or deleted; the effective level of a pair is the
// maximum level ever granted.
type AccessRepository interface {
	CreateGrant(ctx context.Context, subjectId, listingId string, level models.AccessLevel, paymentRef string) (*models.AccessGrant, error)
	GetGrantByPaymentRef(ctx context.Context, paymentRef string) (*models.AccessGrant, error)
	MaxLevel(ctx context.Context, subjectId, listingId string) (models.AccessLevel, error)
	ListGrants(ctx context.Context, subjectId, listingId string) ([]models.AccessGrant, error)
}

// PostgresAccessRepository is the AccessRepository database implementation.
type PostgresAccessRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresAccessRepository creates a new PostgresAccessRepository.
func NewPostgresAccessRepository(db *pgxpool.Pool) *PostgresAccessRepository {
	return &PostgresAccessRepository{DB: db}
}

// CreateGrant appends a grant. The UNIQUE(payment_ref) constraint makes
// duplicate submissions of the same payment event yield exactly one
// row; the stored row is returned either way.
func (r *PostgresAccessRepository) CreateGrant(ctx context.Context, subjectId, listingId string, level models.AccessLevel, paymentRef string) (*models.AccessGrant, error) {
	_, err := r.DB.Exec(ctx, `
       INSERT INTO access_grant (id, subject_id, listing_id, level, payment_ref, granted_at)
       VALUES ($1, $2, $3, $4, $5, $6)
       ON CONFLICT (payment_ref) DO NOTHING
   `,
		uuid.New().String(),
		subjectId,
		listingId,
		level,
		paymentRef,
		time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to insert access grant: %w", err)
	}
	return r.GetGrantByPaymentRef(ctx, paymentRef)
}

// GetGrantByPaymentRef returns the grant recorded for a payment event,
// or nil when none exists.
func (r *PostgresAccessRepository) GetGrantByPaymentRef(ctx context.Context, paymentRef string) (*models.AccessGrant, error) {
	var g models.AccessGrant
	query := `SELECT id, subject_id, listing_id, level, payment_ref, granted_at
	          FROM access_grant WHERE payment_ref = $1`
	err := r.DB.QueryRow(ctx, query, paymentRef).Scan(
		&g.ID,
		&g.SubjectID,
		&g.ListingID,
		&g.Level,
		&g.PaymentRef,
		&g.GrantedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// MaxLevel returns the highest level ever granted for the pair, or
// MINIMAL when no grant exists.
func (r *PostgresAccessRepository) MaxLevel(ctx context.Context, subjectId, listingId string) (models.AccessLevel, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT level FROM access_grant WHERE subject_id = $1 AND listing_id = $2`,
		subjectId, listingId)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	level := models.MinimalAccess
	for rows.Next() {
		var granted models.AccessLevel
		if err := rows.Scan(&granted); err != nil {
			return "", err
		}
		level = models.MaxAccessLevel(level, granted)
	}
	return level, nil
}

// ListGrants returns the full grant history for a pair, oldest first.
func (r *PostgresAccessRepository) ListGrants(ctx context.Context, subjectId, listingId string) ([]models.AccessGrant, error) {
	rows, err := r.DB.Query(ctx, `
       SELECT id, subject_id, listing_id, level, payment_ref, granted_at
       FROM access_grant WHERE subject_id = $1 AND listing_id = $2
       ORDER BY granted_at
   `, subjectId, listingId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []models.AccessGrant
	for rows.Next() {
		var g models.AccessGrant
		if err := rows.Scan(&g.ID, &g.SubjectID, &g.ListingID, &g.Level, &g.PaymentRef, &g.GrantedAt); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, nil
}
