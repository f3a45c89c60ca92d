package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lhs0609a-cpu/pharmatch-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository persists chat messages. Raw content is immutable
// and kept alongside the filtered version for moderation.
type MessageRepository interface {
	CreateMessage(ctx context.Context, message models.Message) (*models.Message, error)
	ListMessages(ctx context.Context, matchId string, limit, offset int) ([]models.Message, error)
	MarkRead(ctx context.Context, matchId, readerId string) error
}

// PostgresMessageRepository is the MessageRepository database implementation.
type PostgresMessageRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresMessageRepository creates a new PostgresMessageRepository.
func NewPostgresMessageRepository(db *pgxpool.Pool) *PostgresMessageRepository {
	return &PostgresMessageRepository{DB: db}
}

// CreateMessage inserts a message with its raw and filtered content.
func (r *PostgresMessageRepository) CreateMessage(ctx context.Context, message models.Message) (*models.Message, error) {
	message.ID = uuid.New().String()
	message.CreatedAt = time.Now().UTC()

	_, err := r.DB.Exec(ctx, `
       INSERT INTO message (id, match_id, sender_id, content, filtered_content, contains_contact, is_read, created_at)
       VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
   `,
		message.ID,
		message.MatchID,
		message.SenderID,
		message.Content,
		message.FilteredContent,
		message.ContainsContact,
		message.IsRead,
		message.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}
	return &message, nil
}

// ListMessages returns the messages of a match, oldest first.
func (r *PostgresMessageRepository) ListMessages(ctx context.Context, matchId string, limit, offset int) ([]models.Message, error) {
	rows, err := r.DB.Query(ctx, `
       SELECT id, match_id, sender_id, content, filtered_content, contains_contact, is_read, created_at
       FROM message WHERE match_id = $1 ORDER BY created_at LIMIT $2 OFFSET $3
   `, matchId, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(
			&m.ID,
			&m.MatchID,
			&m.SenderID,
			&m.Content,
			&m.FilteredContent,
			&m.ContainsContact,
			&m.IsRead,
			&m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, nil
}

// MarkRead marks every message in the match not sent by the reader as read.
func (r *PostgresMessageRepository) MarkRead(ctx context.Context, matchId, readerId string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE message SET is_read = TRUE WHERE match_id = $1 AND sender_id <> $2 AND is_read = FALSE`,
		matchId, readerId)
	return err
}
