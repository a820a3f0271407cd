package discharges

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// repo in-memory mínimo para testear el servicio sin adapters.
type fakeRepo struct {
	mu   sync.Mutex
	byID map[string]Visit
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[string]Visit{}}
}

func (r *fakeRepo) Create(ctx context.Context, v Visit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[v.ID] = v
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (Visit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.byID[id]
	if !ok {
		return Visit{}, errors.New("not found")
	}
	return v, nil
}

func (r *fakeRepo) ListByClinic(ctx context.Context, clinicID string, filter ListFilter) ([]Visit, error) {
	return nil, nil
}

func (r *fakeRepo) ListByPatient(ctx context.Context, clinicID, patientName, species string) ([]Visit, error) {
	return nil, nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	svc := NewService(repo)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	}
	return svc, repo
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreate_NormalizesSimplePlan(t *testing.T) {
	svc, _ := newTestService()

	v, err := svc.Create(context.Background(), "clinic-1", CreateInput{
		PatientName:    "  Milo ",
		PatientSpecies: "Dog",
		VisitDate:      date(2026, 3, 1),
		Medications: []MedicationInput{
			{
				Name:      " Amoxicillin ",
				Dosage:    "250 mg",
				Frequency: 2,
				Times:     []string{"08:00", " 20:00 ", "08:00"},
				StartDate: date(2026, 3, 1),
			},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v.Patient.Name != "Milo" {
		t.Fatalf("expected trimmed name, got %q", v.Patient.Name)
	}
	// especie normalizada a minúsculas
	if v.Patient.Species != "dog" {
		t.Fatalf("expected lowercase species, got %q", v.Patient.Species)
	}

	med := v.Medications[0]
	if med.ID == "" {
		t.Fatal("expected generated medication id")
	}
	if med.Name != "Amoxicillin" {
		t.Fatalf("expected trimmed medication name, got %q", med.Name)
	}
	// times deduplicados conservando orden
	if len(med.Times) != 2 || med.Times[0] != "08:00" || med.Times[1] != "20:00" {
		t.Fatalf("expected deduped times, got %v", med.Times)
	}
}

func TestCreate_RejectsBadTimeOfDay(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), "clinic-1", CreateInput{
		PatientName: "Milo",
		VisitDate:   date(2026, 3, 1),
		Medications: []MedicationInput{
			{
				Name:      "Amoxicillin",
				Frequency: 1,
				Times:     []string{"25:99"},
				StartDate: date(2026, 3, 1),
			},
		},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad time, got %v", err)
	}
}

func TestCreate_RejectsEndBeforeStart(t *testing.T) {
	svc, _ := newTestService()

	end := date(2026, 2, 1)
	_, err := svc.Create(context.Background(), "clinic-1", CreateInput{
		PatientName: "Milo",
		VisitDate:   date(2026, 3, 1),
		Medications: []MedicationInput{
			{
				Name:      "Amoxicillin",
				Frequency: 1,
				StartDate: date(2026, 3, 1),
				EndDate:   &end,
			},
		},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for end before start, got %v", err)
	}
}

func TestCreate_RejectsTaperedWithoutStages(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), "clinic-1", CreateInput{
		PatientName: "Milo",
		VisitDate:   date(2026, 3, 1),
		Medications: []MedicationInput{
			{Name: "Prednisone", Tapered: true},
		},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for tapered without stages, got %v", err)
	}
	// el error identifica la medicación que falló
	if err == nil || !strings.Contains(err.Error(), "Prednisone") {
		t.Fatalf("expected medication name in error, got %v", err)
	}
}

func TestCreate_TaperedDiscardsSimpleFields(t *testing.T) {
	svc, _ := newTestService()

	v, err := svc.Create(context.Background(), "clinic-1", CreateInput{
		PatientName: "Milo",
		VisitDate:   date(2026, 3, 1),
		Medications: []MedicationInput{
			{
				Name:      "Prednisone",
				Frequency: 99, // exactamente una forma es autoritativa: esto se descarta
				Tapered:   true,
				TaperStages: []StageInput{
					{Dosage: "10 mg", Frequency: 2, StartDate: date(2026, 3, 1), Times: []string{"08:00", "20:00"}},
					{Dosage: "5 mg", Frequency: 1, StartDate: date(2026, 3, 8), Times: []string{"08:00"}},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	med := v.Medications[0]
	if !med.Tapered || len(med.TaperStages) != 2 {
		t.Fatalf("expected tapered plan with 2 stages, got %+v", med)
	}
	if med.Frequency != 0 {
		t.Fatalf("expected simple frequency discarded, got %d", med.Frequency)
	}
	// StartDate del plan = inicio de la primera etapa
	if !med.StartDate.Equal(date(2026, 3, 1)) {
		t.Fatalf("expected plan start from first stage, got %v", med.StartDate)
	}
}

func TestCreate_RejectsStageEndBeforeStart(t *testing.T) {
	svc, _ := newTestService()

	end := date(2026, 3, 1)
	_, err := svc.Create(context.Background(), "clinic-1", CreateInput{
		PatientName: "Milo",
		VisitDate:   date(2026, 3, 1),
		Medications: []MedicationInput{
			{
				Name:    "Prednisone",
				Tapered: true,
				TaperStages: []StageInput{
					{Frequency: 1, StartDate: date(2026, 3, 8), EndDate: &end},
				},
			},
		},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for stage end before start, got %v", err)
	}
}

func TestCreate_RequiresClinicAndPatient(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Create(context.Background(), "", CreateInput{PatientName: "Milo", VisitDate: date(2026, 3, 1)}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without clinic, got %v", err)
	}
	if _, err := svc.Create(context.Background(), "clinic-1", CreateInput{VisitDate: date(2026, 3, 1)}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without patient name, got %v", err)
	}
	if _, err := svc.Create(context.Background(), "clinic-1", CreateInput{PatientName: "Milo"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without visit date, got %v", err)
	}
}
