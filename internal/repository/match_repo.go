package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lhs0609a-cpu/pharmatch-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MatchRepository drives the per-(listing, profile) negotiation rows.
// Status changes are compare-and-swap on the expected current status;
// a lost race surfaces as STALE_STATUS, never a silent double write.
type MatchRepository interface {
	CreateMatch(ctx context.Context, match models.Match) (*models.Match, error)
	GetMatch(ctx context.Context, matchId string) (*models.Match, error)
	ListMatchesForSubject(ctx context.Context, subjectId string, limit, offset int) ([]models.Match, error)
	UpdateStatusCAS(ctx context.Context, matchId string, expected, next models.MatchStatus, reason string, commissionAmount *int64) (*models.Match, error)
	SetInterest(ctx context.Context, matchId string, ownerSide bool) (*models.Match, error)
}

// PostgresMatchRepository is the MatchRepository database implementation.
type PostgresMatchRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresMatchRepository creates a new PostgresMatchRepository.
func NewPostgresMatchRepository(db *pgxpool.Pool) *PostgresMatchRepository {
	return &PostgresMatchRepository{DB: db}
}

const matchColumns = `id, listing_id, profile_id, status, match_score, commission_rate, commission_amount,
                      owner_interest, profile_interest, cancel_reason, created_at`

func scanMatch(row interface{ Scan(dest ...any) error }) (*models.Match, error) {
	var m models.Match
	err := row.Scan(
		&m.ID,
		&m.ListingID,
		&m.ProfileID,
		&m.Status,
		&m.MatchScore,
		&m.CommissionRate,
		&m.CommissionAmount,
		&m.OwnerInterest,
		&m.ProfileInterest,
		&m.CancelReason,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMatch inserts a new match. The partial unique index on
// (listing_id, profile_id) WHERE status <> 'CANCELLED' enforces at most
// one live match per pair.
func (r *PostgresMatchRepository) CreateMatch(ctx context.Context, match models.Match) (*models.Match, error) {
	match.ID = uuid.New().String()
	match.Status = models.PendingMatch
	match.CreatedAt = time.Now().UTC()

	_, err := r.DB.Exec(ctx, `
       INSERT INTO match (id, listing_id, profile_id, status, match_score, commission_rate, commission_amount,
                          owner_interest, profile_interest, cancel_reason, created_at)
       VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
   `,
		match.ID,
		match.ListingID,
		match.ProfileID,
		match.Status,
		match.MatchScore,
		match.CommissionRate,
		match.CommissionAmount,
		match.OwnerInterest,
		match.ProfileInterest,
		match.CancelReason,
		match.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, models.NewErrorResponse(http.StatusConflict, "an active match already exists for this listing and profile")
		}
		return nil, fmt.Errorf("failed to insert match: %w", err)
	}
	return &match, nil
}

// GetMatch returns one match by ID.
func (r *PostgresMatchRepository) GetMatch(ctx context.Context, matchId string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM match WHERE id = $1`
	return scanMatch(r.DB.QueryRow(ctx, query, matchId))
}

// ListMatchesForSubject returns matches where the subject is either the
// listing owner or the profile holder.
func (r *PostgresMatchRepository) ListMatchesForSubject(ctx context.Context, subjectId string, limit, offset int) ([]models.Match, error) {
	rows, err := r.DB.Query(ctx, `
       SELECT m.id, m.listing_id, m.profile_id, m.status, m.match_score, m.commission_rate, m.commission_amount,
              m.owner_interest, m.profile_interest, m.cancel_reason, m.created_at
       FROM match m
       JOIN listing l ON l.id = m.listing_id
       JOIN profile p ON p.id = m.profile_id
       WHERE l.owner_id = $1 OR p.subject_id = $1
       ORDER BY m.created_at DESC LIMIT $2 OFFSET $3
   `, subjectId, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *match)
	}
	return matches, nil
}

// UpdateStatusCAS transitions a match only if its status still equals
// the expected one. Zero affected rows means the caller lost a race and
// must re-fetch before retrying.
func (r *PostgresMatchRepository) UpdateStatusCAS(ctx context.Context, matchId string, expected, next models.MatchStatus, reason string, commissionAmount *int64) (*models.Match, error) {
	row := r.DB.QueryRow(ctx, `
       UPDATE match
       SET status = $1,
           cancel_reason = CASE WHEN $1 = 'CANCELLED' THEN $2 ELSE cancel_reason END,
           commission_amount = COALESCE($3, commission_amount)
       WHERE id = $4 AND status = $5
       RETURNING `+matchColumns+`
   `, next, reason, commissionAmount, matchId, expected)

	match, err := scanMatch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		// The status moved underneath the caller (or the match is gone).
		return nil, models.NewCodedError(http.StatusConflict, models.CodeStaleStatus,
			fmt.Sprintf("match status is no longer %s, re-fetch and retry", expected))
	}
	if err != nil {
		return nil, err
	}
	return match, nil
}

// SetInterest records one side's interest flag and returns the fresh row.
func (r *PostgresMatchRepository) SetInterest(ctx context.Context, matchId string, ownerSide bool) (*models.Match, error) {
	column := "profile_interest"
	if ownerSide {
		column = "owner_interest"
	}
	query := fmt.Sprintf(`UPDATE match SET %s = TRUE WHERE id = $1 RETURNING `+matchColumns, column)
	return scanMatch(r.DB.QueryRow(ctx, query, matchId))
}
