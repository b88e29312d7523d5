package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paresh-enterprises/backend/domain"
	"github.com/paresh-enterprises/backend/repository"
)

const userColumns = `
	id, email, username, full_name, password_hash, role, is_active,
	email_verified, phone, address, preferences, profile_picture,
	created_at, updated_at, last_login_at
`

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates a Postgres-backed user repository. The
// unique indexes on email and username are the uniqueness authority; this
// adapter only translates their violations into domain errors.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*domain.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1 OR username = $2
		LIMIT 1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, email, username))
}

func (r *userRepository) Insert(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
		INSERT INTO users (
			id, email, username, full_name, password_hash, role, is_active,
			email_verified, phone, address, preferences, profile_picture,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
		RETURNING created_at, updated_at
	`

	record := *user
	record.ID = uuid.NewString()
	now := time.Now().UTC()

	err := r.pool.QueryRow(ctx, query,
		record.ID,
		record.Email,
		record.Username,
		record.FullName,
		record.PasswordHash,
		string(record.Role),
		record.IsActive,
		record.EmailVerified,
		nullString(record.Phone),
		marshalMap(record.Address),
		marshalMap(record.Preferences),
		nullString(record.ProfilePicture),
		now,
	).Scan(&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, domain.WrapError(domain.ErrCodeUnavailable, "insert user", err)
	}

	return &record, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	const query = `
		UPDATE users
		SET last_login_at = $2, updated_at = $2
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, at.UTC())
	if err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, "update last login", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) scanOne(row pgx.Row) (*domain.User, error) {
	var (
		user           domain.User
		role           string
		phone          *string
		profilePicture *string
		address        []byte
		preferences    []byte
	)

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.FullName,
		&user.PasswordHash,
		&role,
		&user.IsActive,
		&user.EmailVerified,
		&phone,
		&address,
		&preferences,
		&profilePicture,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.WrapError(domain.ErrCodeUnavailable, "query user", err)
	}

	user.Role = domain.Role(role)
	if phone != nil {
		user.Phone = *phone
	}
	if profilePicture != nil {
		user.ProfilePicture = *profilePicture
	}
	user.Address = unmarshalMap(address)
	user.Preferences = unmarshalMap(preferences)

	return &user, nil
}
