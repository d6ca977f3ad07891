// Package memory provides mutex-guarded in-memory store implementations.
// They back the "memory" database driver for local runs and give the test
// suite a real store with the same semantics as the Postgres repositories.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/skycast/skycast-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]model.User
	index map[string]uuid.UUID // email -> id
	names map[string]uuid.UUID // username -> id
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:  make(map[uuid.UUID]model.User),
		index: make(map[string]uuid.UUID),
		names: make(map[string]uuid.UUID),
	}
}

func (r *UserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.index[email]
	return ok, nil
}

func (r *UserRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.names[username]
	return ok, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.index[email]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return user, nil
}

func (r *UserRepository) Create(_ context.Context, user model.User) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[user.ID] = user
	r.index[user.Email] = user.ID
	r.names[user.Username] = user.ID
	return user, nil
}

// Delete removes a user record. Used by tests to simulate a refresh token
// whose owner no longer exists.
func (r *UserRepository) Delete(_ context.Context, id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.byID, id)
	delete(r.index, user.Email)
	delete(r.names, user.Username)
}
