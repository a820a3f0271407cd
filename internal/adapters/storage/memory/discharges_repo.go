package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-discharge-portal/internal/domain/discharges"
	"pet-discharge-portal/internal/domain/patients"
)

var (
	ErrNotFound = errors.New("not found")
)

type dischargeRepo struct {
	mu   sync.RWMutex
	byID map[string]discharges.Visit
}

func NewDischargeRepo() discharges.Repository {
	return &dischargeRepo{
		byID: make(map[string]discharges.Visit),
	}
}

func (r *dischargeRepo) Create(ctx context.Context, v discharges.Visit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(v.ID) == "" {
		return errors.New("visit id required")
	}
	if _, exists := r.byID[v.ID]; exists {
		return errors.New("visit already exists")
	}
	r.byID[v.ID] = v
	return nil
}

func (r *dischargeRepo) GetByID(ctx context.Context, id string) (discharges.Visit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.byID[id]
	if !ok {
		return discharges.Visit{}, ErrNotFound
	}
	return v, nil
}

func (r *dischargeRepo) ListByClinic(ctx context.Context, clinicID string, filter discharges.ListFilter) ([]discharges.Visit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	out := make([]discharges.Visit, 0)
	for _, v := range r.byID {
		if v.ClinicID != clinicID {
			continue
		}
		if q := strings.TrimSpace(filter.Query); q != "" {
			hay := strings.ToLower(v.Patient.Name + " " + v.Diagnosis)
			if !strings.Contains(hay, strings.ToLower(q)) {
				continue
			}
		}
		out = append(out, v)
	}

	// Más reciente primero.
	sort.Slice(out, func(i, j int) bool {
		return out[i].VisitDate.After(out[j].VisitDate)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *dischargeRepo) ListByPatient(ctx context.Context, clinicID, patientName, species string) ([]discharges.Visit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]discharges.Visit, 0)
	for _, v := range r.byID {
		if v.ClinicID != clinicID {
			continue
		}
		// Reusa la regla centralizada del agregador de pacientes.
		if !patients.MatchesPatient(v, patientName, species) {
			continue
		}
		out = append(out, v)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].VisitDate.Before(out[j].VisitDate)
	})
	return out, nil
}
