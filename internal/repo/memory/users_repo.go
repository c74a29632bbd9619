package memory

import (
	"context"

	"github.com/geocoder89/hbnb/internal/domain/user"
)

type UsersRepo struct {
	s       *store[user.User]
	byEmail map[string]string
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		s:       newStore(func(u user.User) string { return u.ID }),
		byEmail: make(map[string]string),
	}
}

func (r *UsersRepo) Create(_ context.Context, u user.User) (user.User, error) {
	u.Ensure()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.byEmail[u.Email]; taken {
		return user.User{}, user.ErrEmailTaken
	}

	if !r.s.insertLocked(u) {
		return user.User{}, user.ErrDuplicateID
	}

	r.byEmail[u.Email] = u.ID
	return u, nil
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := r.s.get(id)
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return r.s.items[id], nil
}

func (r *UsersRepo) List(_ context.Context) ([]user.User, error) {
	return r.s.list(nil), nil
}

func (r *UsersRepo) Update(_ context.Context, id string, patch user.Patch) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	oldEmail := u.Email
	if patch.Email != nil && *patch.Email != oldEmail {
		if _, taken := r.byEmail[*patch.Email]; taken {
			return user.User{}, user.ErrEmailTaken
		}
	}

	u.Apply(patch)

	if u.Email != oldEmail {
		delete(r.byEmail, oldEmail)
		r.byEmail[u.Email] = u.ID
	}

	r.s.items[id] = u
	return u, nil
}

// Ping satisfies the readiness check; memory is always reachable.
func (r *UsersRepo) Ping(context.Context) error {
	return nil
}
