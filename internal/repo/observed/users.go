package observed

import (
	"context"
	"errors"

	"github.com/aprendefacil/backend/internal/domain/user"
	"github.com/aprendefacil/backend/internal/observability"
)

// Store is the credential-store surface this decorator instruments.
type Store interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByIdentifier(ctx context.Context, value string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// Users wraps a store with per-operation latency and error metrics.
type Users struct {
	next Store
	prom *observability.Prom
}

func NewUsers(next Store, prom *observability.Prom) *Users {
	return &Users{next: next, prom: prom}
}

func (s *Users) Create(ctx context.Context, u user.User) (user.User, error) {
	var out user.User

	err := s.observe("users.create", func() error {
		var err error
		out, err = s.next.Create(ctx, u)
		return err
	})

	return out, err
}

func (s *Users) GetByIdentifier(ctx context.Context, value string) (user.User, error) {
	var out user.User

	err := s.observe("users.get_by_identifier", func() error {
		var err error
		out, err = s.next.GetByIdentifier(ctx, value)
		return err
	})

	return out, err
}

func (s *Users) GetByID(ctx context.Context, id string) (user.User, error) {
	var out user.User

	err := s.observe("users.get_by_id", func() error {
		var err error
		out, err = s.next.GetByID(ctx, id)
		return err
	})

	return out, err
}

func (s *Users) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	var out bool

	err := s.observe("users.exists", func() error {
		var err error
		out, err = s.next.ExistsByEmailOrUsername(ctx, email, username)
		return err
	})

	return out, err
}

func (s *Users) Count(ctx context.Context) (int, error) {
	var out int

	err := s.observe("users.count", func() error {
		var err error
		out, err = s.next.Count(ctx)
		return err
	})

	return out, err
}

// observe funnels the call through ObserveDB while keeping expected domain
// outcomes (miss, duplicate) out of the error counter.
func (s *Users) observe(op string, fn func() error) error {
	var opErr error

	_ = s.prom.ObserveDB(op, func() error {
		opErr = fn()

		if errors.Is(opErr, user.ErrNotFound) || errors.Is(opErr, user.ErrDuplicate) {
			return nil
		}

		return opErr
	})

	return opErr
}
