// Package patients es el único componente del motor con I/O: junta las visitas
// de un paciente, corre expansión + reconciliación + agregación por medicación
// y fusiona todo en la vista longitudinal que consume el dashboard.
package patients

import (
	"errors"
	"fmt"
	"time"

	"pet-discharge-portal/internal/domain/adherence"
	"pet-discharge-portal/internal/domain/discharges"
	"pet-discharge-portal/internal/domain/doselog"
	"pet-discharge-portal/internal/domain/schedule"
	"pet-discharge-portal/internal/domain/symptoms"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// Ventanas fijas de diseño del dashboard.
const (
	overallWindowDays = 90 // tasa general
	recentWindowDays  = 30 // conteos de missed/late recientes
	flagWindowDays    = 14 // flags de síntomas recientes
	statusWindowDays  = 7  // paciente "active" si la última dosis cae acá
)

type ActivityStatus string

const (
	StatusActive   ActivityStatus = "active"
	StatusInactive ActivityStatus = "inactive"
)

// PatientMetrics agrega todas las visitas de un paciente. Es un objeto de
// valor recalculado en cada consulta; el motor no guarda estado.
type PatientMetrics struct {
	PatientName string
	Species     string
	VisitCount  int

	OverallRate    int // 90 días, todas las dosis contables
	ActiveOnlyRate int // restringida a medicaciones actualmente activas

	ActiveMedications   int
	ArchivedMedications int

	MissedLast30 int
	LateLast30   int

	LastDoseAt *time.Time

	SymptomFlags14d int

	CurrentStatus ActivityStatus

	Warnings []schedule.Warning
}

// ComputeAdherence expande, reconcilia y agrega las dosis de todas las visitas
// dentro de los últimos windowDays (0 = historia completa). Puro: el "ahora"
// entra por parámetro. windowDays negativo es un bug del caller.
func ComputeAdherence(visits []discharges.Visit, events []doselog.LoggedDoseEvent, windowDays int, now time.Time) (adherence.Metrics, []schedule.Warning, error) {
	if windowDays < 0 {
		return adherence.Metrics{}, nil, fmt.Errorf("%w: negative window %d", ErrInvalidInput, windowDays)
	}

	var w schedule.Window
	if windowDays > 0 {
		w.From = now.AddDate(0, 0, -windowDays)
	}

	records, warnings := buildDoseRecords(visits, events, w, now)
	return adherence.Aggregate(records, adherence.Options{From: w.From}), warnings, nil
}

// ComputeSymptoms corre el analizador sobre las entradas dentro de la ventana
// (default 30 días). Sin entradas devuelve métricas en cero, no error.
func ComputeSymptoms(entries []doselog.SymptomEntry, windowDays int, now time.Time) (symptoms.Analysis, error) {
	if windowDays < 0 {
		return symptoms.Analysis{}, fmt.Errorf("%w: negative window %d", ErrInvalidInput, windowDays)
	}
	if windowDays == 0 {
		windowDays = 30
	}

	from := now.AddDate(0, 0, -windowDays)
	scoped := make([]doselog.SymptomEntry, 0, len(entries))
	for _, e := range entries {
		if e.Date.Before(from) || e.Date.After(now) {
			continue
		}
		scoped = append(scoped, e)
	}

	return symptoms.Analyze(scoped, windowDays)
}

// ComputePatientMetrics fusiona adherencia y síntomas de todas las visitas en
// el objeto que consume el dashboard. Logs ausentes son "sin datos todavía":
// métricas en cero, nunca error.
func ComputePatientMetrics(visits []discharges.Visit, events []doselog.LoggedDoseEvent, entries []doselog.SymptomEntry, now time.Time) (PatientMetrics, error) {
	m := PatientMetrics{
		VisitCount:    len(visits),
		CurrentStatus: StatusInactive,
	}
	if len(visits) > 0 {
		m.PatientName = visits[0].Patient.Name
		m.Species = visits[0].Patient.Species
	}

	records, warnings := buildDoseRecords(visits, events, schedule.Window{}, now)
	m.Warnings = warnings

	from90 := now.AddDate(0, 0, -overallWindowDays)
	overall := adherence.Aggregate(records, adherence.Options{From: from90})
	m.OverallRate = overall.Rate

	activeIDs := map[string]bool{}
	for _, v := range visits {
		for _, plan := range v.Medications {
			if planActive(plan, now) {
				activeIDs[plan.ID] = true
				m.ActiveMedications++
			} else {
				m.ArchivedMedications++
			}
		}
	}

	active := adherence.Aggregate(records, adherence.Options{From: from90, ActiveMedIDs: activeIDs})
	m.ActiveOnlyRate = active.Rate

	recent := adherence.Aggregate(records, adherence.Options{From: now.AddDate(0, 0, -recentWindowDays)})
	m.MissedLast30 = recent.Missed
	m.LateLast30 = recent.Late

	m.LastDoseAt = lastDoseAt(events)
	if m.LastDoseAt != nil && m.LastDoseAt.After(now.AddDate(0, 0, -statusWindowDays)) {
		m.CurrentStatus = StatusActive
	}

	analysis, err := ComputeSymptoms(entries, 30, now)
	if err != nil {
		return PatientMetrics{}, err
	}
	flagFrom := now.AddDate(0, 0, -flagWindowDays)
	for _, f := range analysis.Flags {
		if !f.Date.Before(flagFrom) {
			m.SymptomFlags14d++
		}
	}

	return m, nil
}

// buildDoseRecords corre el expander y el reconciler por medicación de cada
// visita y anota cada dosis clasificada con nombre de medicación y visita.
func buildDoseRecords(visits []discharges.Visit, events []doselog.LoggedDoseEvent, w schedule.Window, now time.Time) ([]adherence.DoseRecord, []schedule.Warning) {
	byVisit := map[string][]doselog.LoggedDoseEvent{}
	for _, e := range events {
		byVisit[e.VisitID] = append(byVisit[e.VisitID], e)
	}

	records := make([]adherence.DoseRecord, 0)
	warnings := make([]schedule.Warning, 0)

	for _, v := range visits {
		visitEvents := byVisit[v.ID]

		for _, plan := range v.Medications {
			expected, warns := schedule.Expand(plan, w, now)
			warnings = append(warnings, warns...)
			if len(expected) == 0 {
				continue
			}

			for _, cd := range adherence.Reconcile(expected, visitEvents) {
				records = append(records, adherence.DoseRecord{
					ClassifiedDose: cd,
					MedicationName: plan.Name,
					VisitID:        v.ID,
				})
			}
		}
	}

	return records, warnings
}

// lastDoseAt busca la administración más reciente entre todos los eventos.
func lastDoseAt(events []doselog.LoggedDoseEvent) *time.Time {
	var last *time.Time
	for _, e := range events {
		if e.Status != doselog.DoseGiven {
			continue
		}
		at := e.LoggedAt
		if e.GivenAt != nil {
			at = *e.GivenAt
		}
		if last == nil || at.After(*last) {
			t := at
			last = &t
		}
	}
	return last
}
