package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hoctap-backend/internal/models"
)

// PostgresMessageRepo persists the whole log; it is never trimmed.
type PostgresMessageRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresMessageRepo(pool *pgxpool.Pool) *PostgresMessageRepo {
	return &PostgresMessageRepo{pool: pool}
}

const insertMessageQuery = `INSERT INTO chat_messages (id, role, content, action, image_data, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

func (r *PostgresMessageRepo) Save(ctx context.Context, m *models.ChatMessage) error {
	if err := prepare(m); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, insertMessageQuery,
		m.ID, m.Role, m.Content, m.Action, m.ImageData, m.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (r *PostgresMessageRepo) SaveAll(ctx context.Context, msgs []*models.ChatMessage) error {
	if err := prepare(msgs...); err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, m := range msgs {
			if _, err := tx.Exec(ctx, insertMessageQuery,
				m.ID, m.Role, m.Content, m.Action, m.ImageData, m.Timestamp,
			); err != nil {
				return fmt.Errorf("failed to insert message %s: %w", m.ID, err)
			}
		}
		return nil
	})
}

// seedLockKey serializes SaveIfEmpty across connections and instances.
const seedLockKey = 7_201_001

func (r *PostgresMessageRepo) SaveIfEmpty(ctx context.Context, m *models.ChatMessage) (bool, error) {
	if err := prepare(m); err != nil {
		return false, err
	}

	var saved bool
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", seedLockKey); err != nil {
			return fmt.Errorf("failed to lock message log: %w", err)
		}
		tag, err := tx.Exec(ctx, `INSERT INTO chat_messages (id, role, content, action, image_data, created_at)
			SELECT $1, $2, $3, $4, $5, $6
			WHERE NOT EXISTS (SELECT 1 FROM chat_messages)`,
			m.ID, m.Role, m.Content, m.Action, m.ImageData, m.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("failed to seed message log: %w", err)
		}
		saved = tag.RowsAffected() == 1
		return nil
	})
	return saved, err
}

func (r *PostgresMessageRepo) List(ctx context.Context) ([]*models.ChatMessage, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, role, content, action, image_data, created_at
		FROM chat_messages ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		m := &models.ChatMessage{}
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &m.Action, &m.ImageData, &m.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *PostgresMessageRepo) Clear(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM chat_messages")
	return err
}
