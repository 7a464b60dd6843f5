package postgres

import (
	"context"
	"errors"

	"github.com/aprendefacil/backend/internal/domain/user"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the postgres error code raised by the users table's
// unique indexes. It is the authoritative duplicate check; the handler's
// existence lookup is only a fast path.
const uniqueViolation = "23505"

// DB is the slice of pgxpool.Pool the repo needs. Kept narrow so tests can
// substitute a pgxmock pool.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UsersRepo struct {
	db DB
}

func NewUsersRepo(db DB) *UsersRepo {
	return &UsersRepo{db: db}
}

const userColumns = `id, username, first_name, last_name, age, email, password_hash, role, avatar, is_active, created_at, updated_at`

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	_, err := r.db.Exec(
		ctx,
		`INSERT INTO users (`+userColumns+`)
         VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		u.ID,
		u.Username,
		u.FirstName,
		u.LastName,
		u.Age,
		u.Email,
		u.PasswordHash,
		u.Role,
		u.Avatar,
		u.IsActive,
		u.CreatedAt,
		u.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError

		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.User{}, user.ErrDuplicate
		}

		return user.User{}, err
	}

	return u, nil
}

// GetByIdentifier matches a single login value against both the email and
// username columns. Emails are stored lowercase, so the value is folded for
// the email comparison; usernames stay case-sensitive.
func (r *UsersRepo) GetByIdentifier(ctx context.Context, value string) (user.User, error) {
	return r.scanOne(r.db.QueryRow(
		ctx,
		`SELECT `+userColumns+`
         FROM users
         WHERE email = lower($1) OR username = $1`,
		value,
	))
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.scanOne(r.db.QueryRow(
		ctx,
		`SELECT `+userColumns+`
         FROM users
         WHERE id = $1`,
		id,
	))
}

func (r *UsersRepo) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	var exists bool

	err := r.db.QueryRow(
		ctx,
		`SELECT EXISTS (
            SELECT 1 FROM users WHERE email = $1 OR username = $2
         )`,
		email, username,
	).Scan(&exists)

	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *UsersRepo) Count(ctx context.Context) (int, error) {
	var n int

	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)

	if err != nil {
		return 0, err
	}

	return n, nil
}

func (r *UsersRepo) scanOne(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.Age,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Avatar,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}
