package doselog

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeDoseRepo struct {
	events []LoggedDoseEvent
}

func (r *fakeDoseRepo) Append(ctx context.Context, e LoggedDoseEvent) error {
	r.events = append(r.events, e)
	return nil
}

func (r *fakeDoseRepo) ListByVisit(ctx context.Context, visitID string, filter DoseFilter) ([]LoggedDoseEvent, error) {
	return r.events, nil
}

type fakeSymptomRepo struct {
	entries []SymptomEntry
}

func (r *fakeSymptomRepo) Append(ctx context.Context, e SymptomEntry) error {
	r.entries = append(r.entries, e)
	return nil
}

func (r *fakeSymptomRepo) ListByVisit(ctx context.Context, visitID string, from, to time.Time) ([]SymptomEntry, error) {
	return r.entries, nil
}

func newTestService() (*Service, *fakeDoseRepo, *fakeSymptomRepo) {
	doses := &fakeDoseRepo{}
	symptoms := &fakeSymptomRepo{}
	svc := NewService(doses, symptoms)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	}
	return svc, doses, symptoms
}

func TestLogDose_RejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.LogDose(context.Background(), "v1", LogDoseInput{
		MedicationID: "m1",
		ScheduledAt:  time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
		Status:       DoseStatus("administered"),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown status, got %v", err)
	}
}

func TestLogDose_GivenAtOnlyForGiven(t *testing.T) {
	svc, _, _ := newTestService()

	givenAt := time.Date(2026, 3, 10, 8, 15, 0, 0, time.UTC)
	_, err := svc.LogDose(context.Background(), "v1", LogDoseInput{
		MedicationID: "m1",
		ScheduledAt:  time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
		GivenAt:      &givenAt,
		Status:       DoseMissed,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for given_at on missed dose, got %v", err)
	}
}

func TestLogDose_AppendsEvent(t *testing.T) {
	svc, doses, _ := newTestService()

	scheduled := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	e, err := svc.LogDose(context.Background(), " v1 ", LogDoseInput{
		MedicationID: "m1",
		ScheduledAt:  scheduled,
		Status:       DoseSkipped,
		Notes:        " vomitó ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if e.ID == "" {
		t.Fatal("expected generated event id")
	}
	if e.VisitID != "v1" {
		t.Fatalf("expected trimmed visit id, got %q", e.VisitID)
	}
	if e.Notes != "vomitó" {
		t.Fatalf("expected trimmed notes, got %q", e.Notes)
	}
	if !e.LoggedAt.Equal(svc.now()) {
		t.Fatalf("expected logged_at from clock, got %v", e.LoggedAt)
	}
	if len(doses.events) != 1 {
		t.Fatalf("expected 1 appended event, got %d", len(doses.events))
	}

	// Re-loggear el mismo instante agrega otro evento (append-only);
	// el motor de adherencia resuelve por LoggedAt.
	if _, err := svc.LogDose(context.Background(), "v1", LogDoseInput{
		MedicationID: "m1",
		ScheduledAt:  scheduled,
		Status:       DoseMissed,
	}); err != nil {
		t.Fatalf("unexpected error relogging: %v", err)
	}
	if len(doses.events) != 2 {
		t.Fatalf("expected 2 appended events, got %d", len(doses.events))
	}
}

func TestLogSymptom_ValidatesRanges(t *testing.T) {
	svc, _, _ := newTestService()

	cases := []struct {
		name     string
		appetite int
		energy   int
	}{
		{"appetite too low", 0, 3},
		{"appetite too high", 6, 3},
		{"energy too low", 3, 0},
		{"energy too high", 3, 6},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.LogSymptom(context.Background(), "v1", LogSymptomInput{
				Date:     time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
				Appetite: tc.appetite,
				Energy:   tc.energy,
			})
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestLogSymptom_AppendsEntry(t *testing.T) {
	svc, _, symptoms := newTestService()

	e, err := svc.LogSymptom(context.Background(), "v1", LogSymptomInput{
		Date:     time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Appetite: 4,
		Energy:   2,
		Panting:  true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if e.ID == "" {
		t.Fatal("expected generated entry id")
	}
	if len(symptoms.entries) != 1 {
		t.Fatalf("expected 1 appended entry, got %d", len(symptoms.entries))
	}
}
