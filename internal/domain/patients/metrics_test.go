package patients

import (
	"testing"
	"time"

	"pet-discharge-portal/internal/domain/discharges"
	"pet-discharge-portal/internal/domain/doselog"
)

func datePtr(t time.Time) *time.Time { return &t }

// dayOf ancla al día calendario: los instantes esperados del expander parten de
// medianoche, así que los eventos de test deben construirse igual.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func simpleVisit(id string, name string, start time.Time, days int) discharges.Visit {
	end := start.AddDate(0, 0, days-1)
	return discharges.Visit{
		ID:       id,
		ClinicID: "clinic-1",
		Patient:  discharges.PatientSnapshot{Name: name, Species: "dog"},
		Medications: []discharges.MedicationPlan{
			{
				ID:        id + "-med",
				Name:      "Amoxicilina",
				Frequency: 1,
				Times:     []string{"08:00"},
				StartDate: start,
				EndDate:   datePtr(end),
			},
		},
		VisitDate: start,
	}
}

func givenEvents(visitID, medID string, start time.Time, days int, loggedAt time.Time) []doselog.LoggedDoseEvent {
	out := make([]doselog.LoggedDoseEvent, 0, days)
	for i := 0; i < days; i++ {
		at := dayOf(start).AddDate(0, 0, i).Add(8 * time.Hour)
		given := at.Add(30 * time.Minute)
		out = append(out, doselog.LoggedDoseEvent{
			VisitID:      visitID,
			MedicationID: medID,
			ScheduledAt:  at,
			GivenAt:      &given,
			Status:       doselog.DoseGiven,
			LoggedAt:     loggedAt,
		})
	}
	return out
}

func TestComputeAdherence_NegativeWindow_Fails(t *testing.T) {
	now := time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)
	if _, _, err := ComputeAdherence(nil, nil, -5, now); err == nil {
		t.Fatal("expected error for negative window")
	}
}

func TestComputeAdherence_FullHistory(t *testing.T) {
	now := time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)
	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	v := simpleVisit("v1", "Milo", start, 10)
	events := givenEvents("v1", "v1-med", start, 10, now)

	m, warns, err := ComputeAdherence([]discharges.Visit{v}, events, 0, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings: %v", warns)
	}
	if m.Scheduled != 10 || m.Rate != 100 {
		t.Fatalf("metrics = %+v rate=%d", m.Counts, m.Rate)
	}
}

func TestComputeAdherence_MalformedPlanWarnsInsteadOfZeroRate(t *testing.T) {
	now := time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)
	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	good := simpleVisit("v1", "Milo", start, 10)
	bad := discharges.Visit{
		ID:       "v2",
		ClinicID: "clinic-1",
		Patient:  discharges.PatientSnapshot{Name: "Milo", Species: "dog"},
		Medications: []discharges.MedicationPlan{
			{ID: "bad-med", Name: "Corrupta", Frequency: 1, Times: []string{"zz:zz"}, StartDate: start},
		},
		VisitDate: start,
	}

	events := givenEvents("v1", "v1-med", start, 10, now)

	m, warns, err := ComputeAdherence([]discharges.Visit{good, bad}, events, 0, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// El plan malformado aporta cero dosis y un warning; no arrastra la tasa a 0.
	if len(warns) != 1 || warns[0].MedicationName != "Corrupta" {
		t.Fatalf("warnings = %+v", warns)
	}
	if m.Rate != 100 {
		t.Fatalf("rate = %d, want 100", m.Rate)
	}
}

func TestComputePatientMetrics_NoData(t *testing.T) {
	now := time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)

	m, err := ComputePatientMetrics(nil, nil, nil, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Logs ausentes son "sin datos todavía", no un error.
	if m.OverallRate != 0 || m.VisitCount != 0 {
		t.Fatalf("metrics = %+v", m)
	}
	if m.CurrentStatus != StatusInactive {
		t.Fatalf("status = %s, want inactive", m.CurrentStatus)
	}
	if m.LastDoseAt != nil {
		t.Fatal("expected no last dose")
	}
}

func TestComputePatientMetrics_Longitudinal(t *testing.T) {
	now := time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)

	// Visita vieja (archivada) + visita corriente (activa, cruza "hoy").
	oldStart := now.AddDate(0, 0, -80)
	v1 := simpleVisit("v1", "Milo", oldStart, 10)

	curStart := now.AddDate(0, 0, -5)
	v2 := simpleVisit("v2", "Milo", curStart, 14)

	events := append(
		givenEvents("v1", "v1-med", oldStart, 10, now.AddDate(0, 0, -70)),
		givenEvents("v2", "v2-med", curStart, 5, now)...,
	)

	m, err := ComputePatientMetrics([]discharges.Visit{v1, v2}, events, nil, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.VisitCount != 2 || m.PatientName != "Milo" {
		t.Fatalf("metrics = %+v", m)
	}
	if m.ActiveMedications != 1 || m.ArchivedMedications != 1 {
		t.Fatalf("active=%d archived=%d", m.ActiveMedications, m.ArchivedMedications)
	}
	if m.OverallRate != 100 || m.ActiveOnlyRate != 100 {
		t.Fatalf("overall=%d active=%d", m.OverallRate, m.ActiveOnlyRate)
	}
	if m.CurrentStatus != StatusActive {
		t.Fatalf("status = %s, want active (dose within 7 days)", m.CurrentStatus)
	}
	if m.LastDoseAt == nil {
		t.Fatal("expected last dose timestamp")
	}
}

func TestComputePatientMetrics_CountsRecentMissedAndFlags(t *testing.T) {
	now := time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -9)

	v := simpleVisit("v1", "Luna", start, 10)

	// 5 given, 3 missed explícitos, resto sin log.
	events := givenEvents("v1", "v1-med", start, 5, now)
	for i := 5; i < 8; i++ {
		events = append(events, doselog.LoggedDoseEvent{
			VisitID:      "v1",
			MedicationID: "v1-med",
			ScheduledAt:  dayOf(start).AddDate(0, 0, i).Add(8 * time.Hour),
			Status:       doselog.DoseMissed,
			LoggedAt:     now,
		})
	}

	entries := []doselog.SymptomEntry{
		{VisitID: "v1", Date: now.AddDate(0, 0, -2), Appetite: 1, Energy: 5},
		{VisitID: "v1", Date: now.AddDate(0, 0, -1), Appetite: 5, Energy: 2},
	}

	m, err := ComputePatientMetrics([]discharges.Visit{v}, events, entries, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.MissedLast30 != 3 {
		t.Fatalf("missed last 30 = %d, want 3", m.MissedLast30)
	}
	// 5 given / (5 + 3 missed) = 63%
	if m.OverallRate != 63 {
		t.Fatalf("overall rate = %d, want 63", m.OverallRate)
	}
	if m.SymptomFlags14d != 2 {
		t.Fatalf("symptom flags = %d, want 2", m.SymptomFlags14d)
	}
}

func TestPlanActive_OpenEndedFallback(t *testing.T) {
	now := time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)

	open := discharges.MedicationPlan{
		ID: "m", Name: "X", Frequency: 1, Times: []string{"08:00"},
		StartDate: now.AddDate(0, 0, -10),
	}
	if !planActive(open, now) {
		t.Fatal("open-ended plan within 30 days should be active")
	}

	stale := open
	stale.StartDate = now.AddDate(0, 0, -31)
	if planActive(stale, now) {
		t.Fatal("open-ended plan past 30 days should not be active")
	}
}

func TestPlanActive_TaperStageWindow(t *testing.T) {
	now := time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)
	end := now.AddDate(0, 0, -40)

	plan := discharges.MedicationPlan{
		ID: "m", Name: "X", Tapered: true,
		TaperStages: []discharges.TaperStage{
			{StartDate: now.AddDate(0, 0, -60), EndDate: &end},
			{StartDate: now.AddDate(0, 0, -3)}, // abierta: fallback 30 días
		},
	}
	if !planActive(plan, now) {
		t.Fatal("plan with a current taper stage should be active")
	}
}

func TestMatchesPatient_CaseInsensitive(t *testing.T) {
	v := discharges.Visit{Patient: discharges.PatientSnapshot{Name: "Milo", Species: "Dog"}}

	if !MatchesPatient(v, "milo", "") {
		t.Fatal("name match should ignore case")
	}
	if !MatchesPatient(v, "MILO", "dog") {
		t.Fatal("species match should ignore case")
	}
	if MatchesPatient(v, "milo", "cat") {
		t.Fatal("different species should not match")
	}
	if MatchesPatient(v, "mila", "") {
		t.Fatal("different name should not match")
	}
}
