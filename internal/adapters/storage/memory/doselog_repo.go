package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"pet-discharge-portal/internal/domain/doselog"
)

type doseLogRepo struct {
	mu      sync.RWMutex
	byVisit map[string][]doselog.LoggedDoseEvent
}

func NewDoseLogRepo() doselog.DoseRepository {
	return &doseLogRepo{
		byVisit: make(map[string][]doselog.LoggedDoseEvent),
	}
}

func (r *doseLogRepo) Append(ctx context.Context, e doselog.LoggedDoseEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(e.ID) == "" {
		return errors.New("dose event id required")
	}
	r.byVisit[e.VisitID] = append(r.byVisit[e.VisitID], e)
	return nil
}

func (r *doseLogRepo) ListByVisit(ctx context.Context, visitID string, filter doselog.DoseFilter) ([]doselog.LoggedDoseEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]doselog.LoggedDoseEvent, 0)
	for _, e := range r.byVisit[visitID] {
		if filter.From != nil && e.ScheduledAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.ScheduledAt.After(*filter.To) {
			continue
		}
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		// El tope se queda con los más recientes.
		out = out[len(out)-filter.Limit:]
	}
	return out, nil
}

type symptomLogRepo struct {
	mu      sync.RWMutex
	byVisit map[string][]doselog.SymptomEntry
}

func NewSymptomLogRepo() doselog.SymptomRepository {
	return &symptomLogRepo{
		byVisit: make(map[string][]doselog.SymptomEntry),
	}
}

func (r *symptomLogRepo) Append(ctx context.Context, e doselog.SymptomEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(e.ID) == "" {
		return errors.New("symptom entry id required")
	}
	r.byVisit[e.VisitID] = append(r.byVisit[e.VisitID], e)
	return nil
}

func (r *symptomLogRepo) ListByVisit(ctx context.Context, visitID string, from, to time.Time) ([]doselog.SymptomEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]doselog.SymptomEntry, 0)
	for _, e := range r.byVisit[visitID] {
		if !from.IsZero() && e.Date.Before(from) {
			continue
		}
		if !to.IsZero() && e.Date.After(to) {
			continue
		}
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}
