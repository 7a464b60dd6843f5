package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/aprendefacil/backend/internal/domain/user"
)

// UsersRepo is an in-memory credential store with the same contract as the
// postgres repo, including uniqueness enforcement on email and username.
// Used by tests and local spikes; not safe to rely on across restarts.
type UsersRepo struct {
	mu    sync.RWMutex
	users map[string]user.User // keyed by id
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		users: make(map[string]user.User),
	}
}

func (r *UsersRepo) Create(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return user.User{}, user.ErrDuplicate
		}
	}

	r.users[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByIdentifier(_ context.Context, value string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// stored emails are lowercase; fold the value for that comparison only
	email := strings.ToLower(value)

	for _, u := range r.users {
		if u.Email == email || u.Username == value {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email || u.Username == username {
			return true, nil
		}
	}

	return false, nil
}

func (r *UsersRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.users), nil
}

// Update replaces a stored record in place. Tests use it to flip isActive.
func (r *UsersRepo) Update(_ context.Context, u user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.ID]; !ok {
		return user.ErrNotFound
	}

	r.users[u.ID] = u

	return nil
}
