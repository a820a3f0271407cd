package patients

import (
	"context"
	"strings"
	"sync"
	"time"

	"pet-discharge-portal/internal/domain/adherence"
	"pet-discharge-portal/internal/domain/discharges"
	"pet-discharge-portal/internal/domain/doselog"
	"pet-discharge-portal/internal/domain/schedule"
	"pet-discharge-portal/internal/domain/symptoms"
	"pet-discharge-portal/internal/platform/logger"
)

// Lectores del store externo de visitas/logs. El motor solo lee; reintentos y
// backoff son responsabilidad del colaborador.
type VisitReader interface {
	ListByPatient(ctx context.Context, clinicID, patientName, species string) ([]discharges.Visit, error)
}

type DoseReader interface {
	ListByVisit(ctx context.Context, visitID string, filter doselog.DoseFilter) ([]doselog.LoggedDoseEvent, error)
}

type SymptomReader interface {
	ListByVisit(ctx context.Context, visitID string, from, to time.Time) ([]doselog.SymptomEntry, error)
}

type Service struct {
	visits   VisitReader
	doses    DoseReader
	symptoms SymptomReader
	log      logger.Logger
	now      func() time.Time
}

func NewService(visits VisitReader, doses DoseReader, symptoms SymptomReader, log logger.Logger) *Service {
	return &Service{
		visits:   visits,
		doses:    doses,
		symptoms: symptoms,
		log:      log,
		now:      time.Now,
	}
}

// Query identifica un paciente dentro de una clínica. No hay ID estable entre
// visitas legacy: el match es por nombre (y especie si viene).
type Query struct {
	ClinicID string
	Name     string
	Species  string
}

// MatchesPatient es LA regla de identidad difusa de paciente, centralizada acá
// a propósito: nombre case-insensitive, especie case-insensitive si se pide.
// Puede sobre- o sub-fusionar si dos pacientes comparten nombre en la clínica;
// una futura migración a ID estable solo toca esta función.
func MatchesPatient(v discharges.Visit, name, species string) bool {
	if !strings.EqualFold(strings.TrimSpace(v.Patient.Name), strings.TrimSpace(name)) {
		return false
	}
	if strings.TrimSpace(species) == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(v.Patient.Species), strings.TrimSpace(species))
}

// Metrics junta todo el historial del paciente y computa PatientMetrics.
func (s *Service) Metrics(ctx context.Context, q Query) (PatientMetrics, error) {
	visits, events, entries, err := s.fetch(ctx, q)
	if err != nil {
		return PatientMetrics{}, err
	}

	m, err := ComputePatientMetrics(visits, events, entries, s.now())
	if err != nil {
		return PatientMetrics{}, err
	}

	s.warn(q, m.Warnings)
	return m, nil
}

// Adherence computa las métricas de adherencia sobre los últimos windowDays
// (0 = historia completa), con los warnings de expansión por medicación.
func (s *Service) Adherence(ctx context.Context, q Query, windowDays int) (adherence.Metrics, []schedule.Warning, error) {
	visits, events, _, err := s.fetch(ctx, q)
	if err != nil {
		return adherence.Metrics{}, nil, err
	}

	m, warnings, err := ComputeAdherence(visits, events, windowDays, s.now())
	if err != nil {
		return adherence.Metrics{}, nil, err
	}

	s.warn(q, warnings)
	return m, warnings, nil
}

func (s *Service) Symptoms(ctx context.Context, q Query, windowDays int) (symptoms.Analysis, error) {
	_, _, entries, err := s.fetch(ctx, q)
	if err != nil {
		return symptoms.Analysis{}, err
	}
	return ComputeSymptoms(entries, windowDays, s.now())
}

// fetch trae visitas y después los logs de cada una en paralelo: son lecturas
// independientes y read-only, y el volumen está acotado por el historial de una
// clínica, así que se juntan completas antes de computar.
func (s *Service) fetch(ctx context.Context, q Query) ([]discharges.Visit, []doselog.LoggedDoseEvent, []doselog.SymptomEntry, error) {
	clinicID := strings.TrimSpace(q.ClinicID)
	name := strings.TrimSpace(q.Name)
	if clinicID == "" || name == "" {
		return nil, nil, nil, ErrInvalidInput
	}

	all, err := s.visits.ListByPatient(ctx, clinicID, name, strings.TrimSpace(q.Species))
	if err != nil {
		return nil, nil, nil, err
	}

	// El lector puede pre-filtrar, pero la regla autoritativa vive acá.
	visits := make([]discharges.Visit, 0, len(all))
	for _, v := range all {
		if MatchesPatient(v, name, q.Species) {
			visits = append(visits, v)
		}
	}

	type visitLogs struct {
		doses    []doselog.LoggedDoseEvent
		symptoms []doselog.SymptomEntry
	}

	results := make([]visitLogs, len(visits))
	errs := make([]error, len(visits))

	var wg sync.WaitGroup
	for i, v := range visits {
		wg.Add(1)
		go func(i int, visitID string) {
			defer wg.Done()

			ds, err := s.doses.ListByVisit(ctx, visitID, doselog.DoseFilter{})
			if err != nil {
				errs[i] = err
				return
			}
			sy, err := s.symptoms.ListByVisit(ctx, visitID, time.Time{}, time.Time{})
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = visitLogs{doses: ds, symptoms: sy}
		}(i, v.ID)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, nil, nil, err
		}
	}

	events := make([]doselog.LoggedDoseEvent, 0)
	entries := make([]doselog.SymptomEntry, 0)
	for _, r := range results {
		events = append(events, r.doses...)
		entries = append(entries, r.symptoms...)
	}

	return visits, events, entries, nil
}

func (s *Service) warn(q Query, warnings []schedule.Warning) {
	if s.log == nil {
		return
	}
	for _, w := range warnings {
		s.log.Warn("medication skipped during expansion", map[string]any{
			"clinic_id":  q.ClinicID,
			"patient":    q.Name,
			"medication": w.MedicationName,
			"reason":     w.Reason,
		})
	}
}
