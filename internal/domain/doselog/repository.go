package doselog

import (
	"context"
	"time"
)

type DoseRepository interface {
	Append(ctx context.Context, e LoggedDoseEvent) error
	ListByVisit(ctx context.Context, visitID string, filter DoseFilter) ([]LoggedDoseEvent, error)
}

type SymptomRepository interface {
	Append(ctx context.Context, e SymptomEntry) error
	ListByVisit(ctx context.Context, visitID string, from, to time.Time) ([]SymptomEntry, error)
}

type DoseFilter struct {
	From  *time.Time // sobre ScheduledAt
	To    *time.Time
	Limit int // 0 = sin tope
}
