package db

import (
	"context"
	"errors"
	"time"

	"github.com/aprendefacil/backend/internal/config"
	"github.com/aprendefacil/backend/internal/domain/user"
	"github.com/aprendefacil/backend/internal/security"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the slice of pgxpool.Pool the seeding needs.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// EnsureAdminUser creates the bootstrap admin account when the admin env
// vars are set. Idempotent: it backs off if the email or the username is
// already taken, so a pre-existing account never turns startup into a
// unique-violation crash.
func EnsureAdminUser(ctx context.Context, db DB, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var exists bool

	err := db.QueryRow(ctx,
		`SELECT EXISTS (
            SELECT 1 FROM users WHERE email = $1 OR username = $2
         )`,
		cfg.AdminEmail, cfg.AdminUsername,
	).Scan(&exists)

	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Username:     cfg.AdminUsername,
		FirstName:    cfg.AdminFirstName,
		LastName:     cfg.AdminLastName,
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Role:         user.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = db.Exec(ctx,
		`INSERT INTO users (id, username, first_name, last_name, age, email, password_hash, role, avatar, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		`,
		u.ID, u.Username, u.FirstName, u.LastName, u.Age, u.Email, u.PasswordHash, u.Role, u.Avatar, u.IsActive, u.CreatedAt, u.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError

		// another instance seeded first; the account is there, we're done
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil
		}

		return err
	}

	return nil
}
