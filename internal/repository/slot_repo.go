package repository

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/lhs0609a-cpu/pharmatch-service/internal/models"
	"github.com/lhs0609a-cpu/pharmatch-service/internal/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// SlotRepository handles slots and sealed bids. Bid placement and
// resolution both serialize through a row lock on the slot, so
// resolution always observes a consistent snapshot of committed bids.
type SlotRepository interface {
	CreateSlot(ctx context.Context, req models.SlotRequest) (*models.Slot, error)
	GetSlots(ctx context.Context, limit, offset int, statuses []string) ([]models.Slot, error)
	GetSlot(ctx context.Context, slotId string) (*models.Slot, error)
	SlotExists(ctx context.Context, slotId string) (bool, error)
	PlaceBid(ctx context.Context, slotId, bidderId string, amount int64, now time.Time) (*models.Bid, error)
	ResolveSlot(ctx context.Context, slotId string, now time.Time) (*models.Slot, error)
	ListExpiredSlotIds(ctx context.Context, now time.Time) ([]string, error)
	GetBidderBids(ctx context.Context, slotId, bidderId string) ([]models.Bid, error)
	CountBids(ctx context.Context, slotId string) (int, error)
}

// PostgresSlotRepository is the SlotRepository database implementation.
type PostgresSlotRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresSlotRepository creates a new PostgresSlotRepository.
func NewPostgresSlotRepository(db *pgxpool.Pool) *PostgresSlotRepository {
	return &PostgresSlotRepository{DB: db}
}

const slotColumns = `id, address, clinic_type, min_bid_amount, bid_deadline, status, created_at`

func scanSlot(row interface{ Scan(dest ...any) error }) (*models.Slot, error) {
	var s models.Slot
	err := row.Scan(
		&s.ID,
		&s.Address,
		&s.ClinicType,
		&s.MinBidAmount,
		&s.BidDeadline,
		&s.Status,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSlot creates a new slot in OPEN.
func (r *PostgresSlotRepository) CreateSlot(ctx context.Context, req models.SlotRequest) (*models.Slot, error) {
	newSlot := models.Slot{
		ID:           uuid.New().String(),
		Address:      req.Address,
		ClinicType:   req.ClinicType,
		MinBidAmount: req.MinBidAmount,
		BidDeadline:  req.BidDeadline.UTC(),
		Status:       models.OpenSlot,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := r.DB.Exec(ctx, `
       INSERT INTO slot (id, address, clinic_type, min_bid_amount, bid_deadline, status, created_at)
       VALUES ($1, $2, $3, $4, $5, $6, $7)
   `,
		newSlot.ID,
		newSlot.Address,
		newSlot.ClinicType,
		newSlot.MinBidAmount,
		newSlot.BidDeadline,
		newSlot.Status,
		newSlot.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert slot: %w", err)
	}
	return &newSlot, nil
}

// GetSlots returns slots with an optional status filter.
func (r *PostgresSlotRepository) GetSlots(ctx context.Context, limit, offset int, statuses []string) ([]models.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slot`
	var args []interface{}
	argIndex := 1

	if len(statuses) > 0 {
		query += fmt.Sprintf(" WHERE status = ANY($%d)", argIndex)
		args = append(args, pq.Array(statuses))
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY bid_deadline LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []models.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, *slot)
	}
	return slots, nil
}

// GetSlot returns one slot by ID.
func (r *PostgresSlotRepository) GetSlot(ctx context.Context, slotId string) (*models.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slot WHERE id = $1`
	return scanSlot(r.DB.QueryRow(ctx, query, slotId))
}

// SlotExists checks whether a slot exists.
func (r *PostgresSlotRepository) SlotExists(ctx context.Context, slotId string) (bool, error) {
	return utils.CheckSlotExists(ctx, r.DB, slotId)
}

// PlaceBid places a sealed bid. The slot row is locked for the whole
// check-and-insert so concurrent bids on the same slot serialize; the
// first bid flips the slot OPEN -> BIDDING in the same transaction.
func (r *PostgresSlotRepository) PlaceBid(ctx context.Context, slotId, bidderId string, amount int64, now time.Time) (*models.Bid, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	slot, err := scanSlot(tx.QueryRow(ctx, `SELECT `+slotColumns+` FROM slot WHERE id = $1 FOR UPDATE`, slotId))
	if err != nil {
		return nil, err
	}

	if !slot.Status.AcceptsBids() {
		return nil, models.NewCodedError(http.StatusConflict, models.CodeSlotClosed,
			fmt.Sprintf("slot is %s and no longer accepts bids", slot.Status))
	}
	if !now.Before(slot.BidDeadline) {
		return nil, models.NewCodedError(http.StatusConflict, models.CodeDeadlinePassed, "bid deadline has passed")
	}
	if amount < slot.MinBidAmount {
		return nil, models.NewCodedError(http.StatusBadRequest, models.CodeBelowMinimum,
			fmt.Sprintf("bid amount is below the minimum of %d", slot.MinBidAmount))
	}

	newBid := models.Bid{
		ID:          uuid.New().String(),
		SlotID:      slotId,
		BidderID:    bidderId,
		Amount:      amount,
		SubmittedAt: now.UTC(),
		Result:      models.PendingBid,
	}
	_, err = tx.Exec(ctx, `
       INSERT INTO bid (id, slot_id, bidder_id, amount, submitted_at, result)
       VALUES ($1, $2, $3, $4, $5, $6)
   `,
		newBid.ID,
		newBid.SlotID,
		newBid.BidderID,
		newBid.Amount,
		newBid.SubmittedAt,
		newBid.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to insert bid: %w", err)
	}

	if slot.Status == models.OpenSlot {
		if _, err = tx.Exec(ctx, `UPDATE slot SET status = $1 WHERE id = $2`, models.BiddingSlot, slotId); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &newBid, nil
}

// ResolveSlot resolves a slot under its row lock. Re-running on an
// already MATCHED or CLOSED slot is a no-op returning the current
// state, so the deadline sweep is safe under concurrent invocation.
func (r *PostgresSlotRepository) ResolveSlot(ctx context.Context, slotId string, now time.Time) (*models.Slot, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	slot, err := scanSlot(tx.QueryRow(ctx, `SELECT `+slotColumns+` FROM slot WHERE id = $1 FOR UPDATE`, slotId))
	if err != nil {
		return nil, err
	}

	if !slot.Status.AcceptsBids() {
		return slot, nil
	}

	rows, err := tx.Query(ctx,
		`SELECT id, slot_id, bidder_id, amount, submitted_at, result FROM bid WHERE slot_id = $1`, slotId)
	if err != nil {
		return nil, err
	}
	var bids []models.Bid
	for rows.Next() {
		var b models.Bid
		if err := rows.Scan(&b.ID, &b.SlotID, &b.BidderID, &b.Amount, &b.SubmittedAt, &b.Result); err != nil {
			rows.Close()
			return nil, err
		}
		bids = append(bids, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	winner := models.ResolveWinner(bids)
	if winner == nil {
		slot.Status = models.ClosedSlot
		if _, err = tx.Exec(ctx, `UPDATE slot SET status = $1 WHERE id = $2`, models.ClosedSlot, slotId); err != nil {
			return nil, err
		}
		if err = tx.Commit(ctx); err != nil {
			return nil, err
		}
		return slot, nil
	}

	if _, err = tx.Exec(ctx, `UPDATE bid SET result = $1 WHERE slot_id = $2`, models.LostBid, slotId); err != nil {
		return nil, err
	}
	if _, err = tx.Exec(ctx, `UPDATE bid SET result = $1 WHERE id = $2`, models.WinningBid, winner.ID); err != nil {
		return nil, err
	}
	slot.Status = models.MatchedSlot
	if _, err = tx.Exec(ctx, `UPDATE slot SET status = $1 WHERE id = $2`, models.MatchedSlot, slotId); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return slot, nil
}

// ListExpiredSlotIds returns slots whose deadline has passed but which
// have not been resolved yet.
func (r *PostgresSlotRepository) ListExpiredSlotIds(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id FROM slot WHERE status IN ($1, $2) AND bid_deadline <= $3`,
		models.OpenSlot, models.BiddingSlot, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// GetBidderBids returns the caller's own bids on a slot. Competing bids
// are deliberately not reachable through any query before resolution.
func (r *PostgresSlotRepository) GetBidderBids(ctx context.Context, slotId, bidderId string) ([]models.Bid, error) {
	rows, err := r.DB.Query(ctx, `
       SELECT id, slot_id, bidder_id, amount, submitted_at, result
       FROM bid WHERE slot_id = $1 AND bidder_id = $2 ORDER BY submitted_at
   `, slotId, bidderId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []models.Bid
	for rows.Next() {
		var b models.Bid
		if err := rows.Scan(&b.ID, &b.SlotID, &b.BidderID, &b.Amount, &b.SubmittedAt, &b.Result); err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	return bids, nil
}

// CountBids returns the number of bids on a slot.
func (r *PostgresSlotRepository) CountBids(ctx context.Context, slotId string) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM bid WHERE slot_id = $1`, slotId).Scan(&count)
	return count, err
}
