package sharing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBadState     = errors.New("invalid state")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type ShareInput struct {
	VisitID       string
	ClinicUserID  string
	GranteeUserID string
	Scopes        []Scope
}

// Share invita al tutor a un alta. Si ya existía un share no-revocado para el
// mismo (alta, tutor), se reusa actualizando scopes; los duplicados viejos se
// revocan. Un share revocado permite re-invitar creando uno nuevo.
func (s *Service) Share(ctx context.Context, in ShareInput) (Share, error) {
	visitID := strings.TrimSpace(in.VisitID)
	clinicUserID := strings.TrimSpace(in.ClinicUserID)
	granteeID := strings.TrimSpace(in.GranteeUserID)

	if visitID == "" || clinicUserID == "" || granteeID == "" {
		return Share{}, ErrInvalidInput
	}
	if clinicUserID == granteeID {
		return Share{}, ErrInvalidInput
	}

	// Sin scopes explícitos: default útil (ver plan + loggear dosis y síntomas).
	var scopes []Scope
	var err error
	if len(in.Scopes) == 0 {
		scopes = []Scope{ScopePlanView, ScopeDosesLog, ScopeSymptomsLog}
	} else {
		scopes, err = normalizeScopesStrict(in.Scopes)
		if err != nil {
			return Share{}, err
		}
		if len(scopes) == 0 {
			return Share{}, ErrInvalidInput
		}
	}

	now := s.now()

	existing, matches, err := s.findLatestMatch(ctx, visitID, granteeID)
	if err == nil && existing.ID != "" && existing.Status != StatusRevoked {
		s.revokeOtherMatches(ctx, existing.ID, matches, now)

		existing.Scopes = scopes
		existing.UpdatedAt = now
		if err := s.repo.Update(ctx, existing); err != nil {
			return Share{}, err
		}
		return existing, nil
	}

	sh := Share{
		ID:            uuid.NewString(),
		VisitID:       visitID,
		ClinicUserID:  clinicUserID,
		GranteeUserID: granteeID,
		Scopes:        scopes,
		Status:        StatusInvited,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, sh); err != nil {
		return Share{}, err
	}
	return sh, nil
}

// Accept es idempotente: aceptar un share ya activo lo devuelve tal cual.
func (s *Service) Accept(ctx context.Context, shareID, granteeUserID string) (Share, error) {
	shareID = strings.TrimSpace(shareID)
	granteeUserID = strings.TrimSpace(granteeUserID)

	if shareID == "" || granteeUserID == "" {
		return Share{}, ErrInvalidInput
	}

	sh, err := s.repo.GetByID(ctx, shareID)
	if err != nil {
		return Share{}, ErrNotFound
	}

	if sh.GranteeUserID != granteeUserID {
		return Share{}, ErrForbidden
	}
	if sh.Status == StatusRevoked {
		return Share{}, ErrBadState
	}
	if sh.Status == StatusActive {
		return sh, nil
	}
	if sh.Status != StatusInvited {
		return Share{}, ErrBadState
	}

	now := s.now()
	sh.Status = StatusActive
	sh.UpdatedAt = now

	if err := s.repo.Update(ctx, sh); err != nil {
		return Share{}, err
	}
	return sh, nil
}

// Revoke es idempotente y solo puede hacerlo quien compartió.
func (s *Service) Revoke(ctx context.Context, shareID, clinicUserID string) (Share, error) {
	shareID = strings.TrimSpace(shareID)
	clinicUserID = strings.TrimSpace(clinicUserID)

	if shareID == "" || clinicUserID == "" {
		return Share{}, ErrInvalidInput
	}

	sh, err := s.repo.GetByID(ctx, shareID)
	if err != nil {
		return Share{}, ErrNotFound
	}

	if sh.ClinicUserID != clinicUserID {
		return Share{}, ErrForbidden
	}
	if sh.Status == StatusRevoked {
		return sh, nil
	}

	now := s.now()
	sh.Status = StatusRevoked
	sh.UpdatedAt = now
	sh.RevokedAt = &now

	if err := s.repo.Update(ctx, sh); err != nil {
		return Share{}, err
	}
	return sh, nil
}

func (s *Service) ListByVisit(ctx context.Context, visitID string) ([]Share, error) {
	visitID = strings.TrimSpace(visitID)
	if visitID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByVisit(ctx, visitID)
}

func (s *Service) GetActiveShare(ctx context.Context, visitID, granteeUserID string) (Share, error) {
	visitID = strings.TrimSpace(visitID)
	granteeUserID = strings.TrimSpace(granteeUserID)

	if visitID == "" || granteeUserID == "" {
		return Share{}, ErrInvalidInput
	}
	sh, err := s.repo.GetActiveShare(ctx, visitID, granteeUserID)
	if err != nil {
		return Share{}, ErrNotFound
	}
	return sh, nil
}

func (s *Service) ListByGrantee(ctx context.Context, granteeUserID string) ([]Share, error) {
	granteeUserID = strings.TrimSpace(granteeUserID)
	if granteeUserID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByGrantee(ctx, granteeUserID)
}

// HasScope valida si el share incluye un scope.
func HasScope(sh Share, scope Scope) bool {
	for _, s := range sh.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

func (s *Service) findLatestMatch(ctx context.Context, visitID, granteeID string) (Share, []Share, error) {
	items, err := s.repo.ListByVisit(ctx, visitID)
	if err != nil {
		return Share{}, nil, err
	}

	matches := make([]Share, 0)
	var winner Share
	hasWinner := false

	for _, sh := range items {
		if sh.GranteeUserID != granteeID {
			continue
		}
		matches = append(matches, sh)

		if !hasWinner || sh.UpdatedAt.After(winner.UpdatedAt) {
			winner = sh
			hasWinner = true
		}
	}

	if !hasWinner {
		return Share{}, matches, ErrNotFound
	}
	return winner, matches, nil
}

func (s *Service) revokeOtherMatches(ctx context.Context, winnerID string, matches []Share, now time.Time) {
	for _, sh := range matches {
		if sh.ID == "" || sh.ID == winnerID {
			continue
		}
		if sh.Status == StatusRevoked {
			continue
		}
		sh.Status = StatusRevoked
		sh.UpdatedAt = now
		sh.RevokedAt = &now
		_ = s.repo.Update(ctx, sh) // best-effort
	}
}

func normalizeScopesStrict(in []Scope) ([]Scope, error) {
	allowed := map[Scope]struct{}{
		ScopePlanView:    {},
		ScopeDosesLog:    {},
		ScopeSymptomsLog: {},
	}

	seen := map[Scope]struct{}{}
	out := make([]Scope, 0, len(in))

	for _, raw := range in {
		s := Scope(strings.TrimSpace(string(raw)))
		if s == "" {
			continue
		}
		if _, ok := allowed[s]; !ok {
			return nil, ErrInvalidInput
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out, nil
}
