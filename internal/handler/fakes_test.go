package handler

import (
	"context"
	"strings"
	"sync"

	"github.com/yitocode/members-api/internal/model"
	"github.com/yitocode/members-api/internal/repository"
)

// memIdentityRepo is an in-memory IdentityRepository enforcing the
// same uniqueness rules as the MySQL implementation.
type memIdentityRepo struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]*model.Identity
}

func newMemIdentityRepo() *memIdentityRepo {
	return &memIdentityRepo{byID: make(map[uint64]*model.Identity)}
}

func (r *memIdentityRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func (r *memIdentityRepo) Create(_ context.Context, ident *model.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ident.Email = strings.ToLower(strings.TrimSpace(ident.Email))
	for _, ex := range r.byID {
		if ex.Email == ident.Email || ex.Nickname == ident.Nickname ||
			(ident.PhoneNumber != "" && ex.PhoneNumber == ident.PhoneNumber) {
			return repository.ErrDuplicateIdentity
		}
	}
	if len(ident.Roles) == 0 {
		ident.Roles = model.RoleSet{model.RoleUser}
	}
	r.nextID++
	ident.ID = r.nextID
	cp := *ident
	r.byID[ident.ID] = &cp
	return nil
}

func (r *memIdentityRepo) FindByID(_ context.Context, id uint64) (*model.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ident, ok := r.byID[id]; ok {
		cp := *ident
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memIdentityRepo) FindByEmail(_ context.Context, email string) (*model.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, ident := range r.byID {
		if ident.Email == email {
			cp := *ident
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memIdentityRepo) FindAnyUnique(_ context.Context, email, nickname, phone string) (*model.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, ident := range r.byID {
		if (email != "" && ident.Email == email) ||
			(nickname != "" && ident.Nickname == nickname) ||
			(phone != "" && ident.PhoneNumber == phone) {
			cp := *ident
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

var _ repository.IdentityRepository = (*memIdentityRepo)(nil)

// memProfileRepo is an in-memory ProfileRepository.
type memProfileRepo struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]*model.Profile
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{byID: make(map[uint64]*model.Profile)}
}

func (r *memProfileRepo) Create(_ context.Context, p *model.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ex := range r.byID {
		if ex.IdentityID == p.IdentityID {
			return repository.ErrProfileExists
		}
	}
	r.nextID++
	p.ID = r.nextID
	cp := *p
	r.byID[p.ID] = &cp
	return nil
}

func (r *memProfileRepo) FindByID(_ context.Context, id uint64) (*model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memProfileRepo) ListByIdentity(_ context.Context, identityID uint64, skip, take int) ([]model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Profile
	for _, p := range r.byID {
		if p.IdentityID == identityID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProfileRepo) Update(_ context.Context, p *model.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[p.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *p
	r.byID[p.ID] = &cp
	return nil
}

func (r *memProfileRepo) Delete(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

var _ repository.ProfileRepository = (*memProfileRepo)(nil)

// memNotificationRepo is an in-memory NotificationRepository.
type memNotificationRepo struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]*model.Notification
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{byID: make(map[uint64]*model.Notification)}
}

func (r *memNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	n.ID = r.nextID
	cp := *n
	r.byID[n.ID] = &cp
	return nil
}

func (r *memNotificationRepo) FindByID(_ context.Context, id uint64) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.byID[id]; ok {
		cp := *n
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memNotificationRepo) List(_ context.Context, skip, take int) ([]model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Notification
	for _, n := range r.byID {
		out = append(out, *n)
	}
	return out, nil
}

func (r *memNotificationRepo) Update(_ context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[n.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *n
	r.byID[n.ID] = &cp
	return nil
}

func (r *memNotificationRepo) Delete(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

var _ repository.NotificationRepository = (*memNotificationRepo)(nil)
