package memoryrepo

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/simaris-dev/simaris-auth/internal/errors"
	"github.com/simaris-dev/simaris-auth/users"
)

var _ users.Repo = (*Repo)(nil)

// Repo is an in-memory implementation of users.Repo
type Repo struct {
	users    map[string]*users.User
	emailIds map[string]string // email to user id
	lock     sync.RWMutex
}

func New() *Repo {
	return &Repo{
		users:    make(map[string]*users.User),
		emailIds: make(map[string]string),
	}
}

func (r *Repo) Upsert(user *users.User) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.Email = users.NormalizeEmail(user.Email)

	r.users[user.ID] = user
	r.emailIds[user.Email] = user.ID
	return nil
}

func (r *Repo) Delete(email string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	email = users.NormalizeEmail(email)
	userID, ok := r.emailIds[email]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	delete(r.emailIds, email)
	delete(r.users, userID)
	return nil
}

func (r *Repo) GetByEmail(email string) (*users.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	userID, ok := r.emailIds[users.NormalizeEmail(email)]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	user, ok := r.users[userID]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *Repo) GetByID(id string) (*users.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *Repo) List(offset, limit int) ([]*users.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	all := make([]*users.User, 0, len(r.users))
	for _, u := range r.users {
		copied := *u
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })

	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *Repo) SetLastLogin(email string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	userID, ok := r.emailIds[users.NormalizeEmail(email)]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	r.users[userID].LastLoginAt = time.Now()
	return nil
}
