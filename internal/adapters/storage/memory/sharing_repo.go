package memory

import (
	"context"
	"errors"
	"sync"

	"pet-discharge-portal/internal/domain/sharing"
)

type sharingRepo struct {
	mu   sync.RWMutex
	byID map[string]sharing.Share
}

func NewSharingRepo() sharing.Repository {
	return &sharingRepo{
		byID: make(map[string]sharing.Share),
	}
}

func (r *sharingRepo) Create(ctx context.Context, sh sharing.Share) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sh.ID == "" {
		return errors.New("share id required")
	}
	if _, exists := r.byID[sh.ID]; exists {
		return errors.New("share already exists")
	}
	r.byID[sh.ID] = sh
	return nil
}

func (r *sharingRepo) Update(ctx context.Context, sh sharing.Share) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[sh.ID]; !ok {
		return ErrNotFound
	}
	r.byID[sh.ID] = sh
	return nil
}

func (r *sharingRepo) GetByID(ctx context.Context, id string) (sharing.Share, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sh, ok := r.byID[id]
	if !ok {
		return sharing.Share{}, ErrNotFound
	}
	return sh, nil
}

func (r *sharingRepo) ListByVisit(ctx context.Context, visitID string) ([]sharing.Share, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]sharing.Share, 0)
	for _, sh := range r.byID {
		if sh.VisitID == visitID {
			out = append(out, sh)
		}
	}
	return out, nil
}

func (r *sharingRepo) GetActiveShare(ctx context.Context, visitID, granteeUserID string) (sharing.Share, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var winner sharing.Share
	has := false

	for _, sh := range r.byID {
		if sh.VisitID != visitID || sh.GranteeUserID != granteeUserID {
			continue
		}
		if sh.Status != sharing.StatusActive {
			continue
		}

		if !has {
			winner = sh
			has = true
			continue
		}
		if sh.UpdatedAt.After(winner.UpdatedAt) {
			winner = sh
			continue
		}
		if sh.UpdatedAt.Equal(winner.UpdatedAt) && sh.CreatedAt.After(winner.CreatedAt) {
			winner = sh
		}
	}

	if !has {
		return sharing.Share{}, ErrNotFound
	}
	return winner, nil
}

func (r *sharingRepo) ListByGrantee(ctx context.Context, granteeUserID string) ([]sharing.Share, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]sharing.Share, 0)
	for _, sh := range r.byID {
		if sh.GranteeUserID == granteeUserID {
			out = append(out, sh)
		}
	}
	return out, nil
}
