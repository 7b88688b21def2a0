package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pkgerrors "github.com/pkg/errors"
)

var (
	// ErrEmailTaken is returned by Create when the email already has a credential.
	ErrEmailTaken = errors.New("email already registered")
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
)

const uniqueViolation = "23505"

// Repository persists users. Implementations must enforce email uniqueness
// themselves; the service-level pre-check alone would race.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
}

// DBPool is the subset of *pgxpool.Pool the repository uses, so tests can
// substitute pgxmock.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db DBPool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db DBPool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user. The users.email unique index turns a concurrent
// duplicate signup into ErrEmailTaken.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return pkgerrors.Wrap(err, "parse user id")
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, name, email, password_hash, phone, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`, userID, user.Name, user.Email, user.PasswordHash, user.Phone, user.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return pkgerrors.Wrap(err, "insert user")
	}
	return nil
}

// FindByEmail fetches a user by normalized email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, email, password_hash, phone, created_at FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, name, email, password_hash, phone, created_at FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

func scanUser(row pgx.Row) (User, error) {
	var (
		createdAt time.Time
		user      User
	)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Phone, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, pkgerrors.Wrap(err, "scan user")
	}
	user.CreatedAt = createdAt.UTC()
	return user, nil
}
