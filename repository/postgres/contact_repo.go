package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paresh-enterprises/backend/domain"
	"github.com/paresh-enterprises/backend/repository"
)

type contactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository instantiates a Postgres-backed contact repository.
func NewContactRepository(pool *pgxpool.Pool) repository.ContactRepository {
	return &contactRepository{pool: pool}
}

func (r *contactRepository) Insert(ctx context.Context, contact *domain.Contact) (*domain.Contact, error) {
	if contact == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
		INSERT INTO contacts (id, name, email, subject, message, phone, company, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	record := *contact
	record.ID = uuid.NewString()

	err := r.pool.QueryRow(ctx, query,
		record.ID,
		record.Name,
		record.Email,
		nullString(record.Subject),
		record.Message,
		nullString(record.Phone),
		nullString(record.Company),
		time.Now().UTC(),
	).Scan(&record.CreatedAt)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeUnavailable, "insert contact", err)
	}

	return &record, nil
}
