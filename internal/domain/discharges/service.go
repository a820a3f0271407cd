package discharges

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
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

type StageInput struct {
	Dosage        string
	Frequency     int
	Times         []string
	StartDate     time.Time
	EndDate       *time.Time
	EveryOtherDay bool
	MaxDoses      int
}

type MedicationInput struct {
	Name          string
	Dosage        string
	Frequency     int
	Times         []string
	StartDate     time.Time
	EndDate       *time.Time
	EveryOtherDay bool
	MaxDoses      int
	Tapered       bool
	TaperStages   []StageInput
	Notes         string
}

type CreateInput struct {
	PatientName    string
	PatientSpecies string
	WeightKg       float64
	VisitDate      time.Time
	Diagnosis      string
	Medications    []MedicationInput
	Notes          string
}

// Create registra un alta nueva. La visita es append-only: una vez creada,
// sus medicaciones no se editan (la UI agrega visitas nuevas, no corrige históricas).
// Los documentos de entrada llegan sueltos (campos opcionales, variantes legacy);
// acá pasa la única normalización total a tipos estrictos. Un plan contradictorio
// corta el Create con ErrInvalidInput en vez de guardarse a medias.
func (s *Service) Create(ctx context.Context, clinicID string, in CreateInput) (Visit, error) {
	clinicID = strings.TrimSpace(clinicID)
	if clinicID == "" {
		return Visit{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.PatientName) == "" {
		return Visit{}, fmt.Errorf("%w: patient name required", ErrInvalidInput)
	}
	if in.VisitDate.IsZero() {
		return Visit{}, fmt.Errorf("%w: visit date required", ErrInvalidInput)
	}

	meds := make([]MedicationPlan, 0, len(in.Medications))
	for i, m := range in.Medications {
		plan, err := normalizeMedication(m)
		if err != nil {
			return Visit{}, fmt.Errorf("medication %d (%s): %w", i, strings.TrimSpace(m.Name), err)
		}
		meds = append(meds, plan)
	}

	v := Visit{
		ID:       uuid.NewString(),
		ClinicID: clinicID,
		Patient: PatientSnapshot{
			Name:     strings.TrimSpace(in.PatientName),
			Species:  strings.ToLower(strings.TrimSpace(in.PatientSpecies)),
			WeightKg: in.WeightKg,
		},
		VisitDate:   in.VisitDate,
		Diagnosis:   strings.TrimSpace(in.Diagnosis),
		Medications: meds,
		Notes:       strings.TrimSpace(in.Notes),
		CreatedAt:   s.now(),
	}

	if err := s.repo.Create(ctx, v); err != nil {
		return Visit{}, err
	}
	return v, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Visit, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Visit{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByClinic(ctx context.Context, clinicID string, filter ListFilter) ([]Visit, error) {
	clinicID = strings.TrimSpace(clinicID)
	if clinicID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByClinic(ctx, clinicID, filter)
}

func (s *Service) ListByPatient(ctx context.Context, clinicID, patientName, species string) ([]Visit, error) {
	clinicID = strings.TrimSpace(clinicID)
	patientName = strings.TrimSpace(patientName)
	if clinicID == "" || patientName == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByPatient(ctx, clinicID, patientName, strings.TrimSpace(species))
}

// normalizeMedication valida y convierte un MedicationInput a MedicationPlan estricto.
// Exactamente una de las dos formas debe quedar autoritativa:
// tapered con etapas, o simple (los campos simples se descartan si es tapered).
func normalizeMedication(in MedicationInput) (MedicationPlan, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return MedicationPlan{}, fmt.Errorf("%w: name required", ErrInvalidInput)
	}

	plan := MedicationPlan{
		ID:     uuid.NewString(),
		Name:   name,
		Dosage: strings.TrimSpace(in.Dosage),
		Notes:  strings.TrimSpace(in.Notes),
	}

	if in.Tapered {
		if len(in.TaperStages) == 0 {
			return MedicationPlan{}, fmt.Errorf("%w: tapered plan without stages", ErrInvalidInput)
		}
		stages := make([]TaperStage, 0, len(in.TaperStages))
		for i, st := range in.TaperStages {
			if st.StartDate.IsZero() {
				return MedicationPlan{}, fmt.Errorf("%w: stage %d missing start date", ErrInvalidInput, i)
			}
			if st.EndDate != nil && st.EndDate.Before(st.StartDate) {
				return MedicationPlan{}, fmt.Errorf("%w: stage %d ends before it starts", ErrInvalidInput, i)
			}
			times, err := normalizeTimes(st.Times)
			if err != nil {
				return MedicationPlan{}, fmt.Errorf("stage %d: %w", i, err)
			}
			stages = append(stages, TaperStage{
				Dosage:        strings.TrimSpace(st.Dosage),
				Frequency:     st.Frequency,
				Times:         times,
				StartDate:     st.StartDate,
				EndDate:       st.EndDate,
				EveryOtherDay: st.EveryOtherDay,
				MaxDoses:      st.MaxDoses,
			})
		}
		plan.Tapered = true
		plan.TaperStages = stages
		plan.StartDate = stages[0].StartDate
		return plan, nil
	}

	if in.StartDate.IsZero() {
		return MedicationPlan{}, fmt.Errorf("%w: start date required", ErrInvalidInput)
	}
	if in.EndDate != nil && in.EndDate.Before(in.StartDate) {
		return MedicationPlan{}, fmt.Errorf("%w: end date before start date", ErrInvalidInput)
	}
	if in.Frequency < 0 || in.MaxDoses < 0 {
		return MedicationPlan{}, ErrInvalidInput
	}

	times, err := normalizeTimes(in.Times)
	if err != nil {
		return MedicationPlan{}, err
	}

	plan.Frequency = in.Frequency
	plan.Times = times
	plan.StartDate = in.StartDate
	plan.EndDate = in.EndDate
	plan.EveryOtherDay = in.EveryOtherDay
	plan.MaxDoses = in.MaxDoses
	return plan, nil
}

// normalizeTimes valida formato "HH:MM" y deduplica conservando el orden.
func normalizeTimes(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}

	for _, raw := range in {
		t := strings.TrimSpace(raw)
		if t == "" {
			continue
		}
		if _, err := time.Parse("15:04", t); err != nil {
			return nil, fmt.Errorf("%w: bad time of day %q", ErrInvalidInput, raw)
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}
