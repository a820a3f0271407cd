package adherence

import (
	"reflect"
	"testing"
	"time"

	"pet-discharge-portal/internal/domain/doselog"
	"pet-discharge-portal/internal/domain/schedule"
)

func ts(h int) time.Time {
	return time.Date(2026, 1, 10, h, 0, 0, 0, time.UTC)
}

func timePtr(t time.Time) *time.Time { return &t }

func TestReconcile_Classification(t *testing.T) {
	expected := []schedule.ExpectedDose{
		{MedicationID: "m1", ScheduledAt: ts(8)},
		{MedicationID: "m1", ScheduledAt: ts(12)},
		{MedicationID: "m1", ScheduledAt: ts(16)},
		{MedicationID: "m1", ScheduledAt: ts(20)},
		{MedicationID: "m1", ScheduledAt: ts(22)},
	}

	logged := []doselog.LoggedDoseEvent{
		// exactamente en el umbral de 2h: sigue siendo on-time
		{MedicationID: "m1", ScheduledAt: ts(8), Status: doselog.DoseGiven, GivenAt: timePtr(ts(10)), LoggedAt: ts(10)},
		// 3h tarde
		{MedicationID: "m1", ScheduledAt: ts(12), Status: doselog.DoseGiven, GivenAt: timePtr(ts(15)), LoggedAt: ts(15)},
		{MedicationID: "m1", ScheduledAt: ts(16), Status: doselog.DoseMissed, LoggedAt: ts(17)},
		{MedicationID: "m1", ScheduledAt: ts(20), Status: doselog.DoseSkipped, LoggedAt: ts(21)},
		// ts(22) sin evento => unlogged
	}

	out := Reconcile(expected, logged)
	if len(out) != 5 {
		t.Fatalf("expected 5 classified doses, got %d", len(out))
	}

	wantStatus := []Status{StatusGivenOnTime, StatusGivenLate, StatusMissed, StatusSkipped, StatusUnlogged}
	for i, cd := range out {
		if cd.Status != wantStatus[i] {
			t.Fatalf("dose %d status = %s, want %s", i, cd.Status, wantStatus[i])
		}
	}

	if out[0].LatenessHours != 0 {
		t.Fatalf("on-time lateness = %v, want 0", out[0].LatenessHours)
	}
	if out[1].LatenessHours != 3 {
		t.Fatalf("late lateness = %v, want 3", out[1].LatenessHours)
	}
	if out[4].Logged != nil {
		t.Fatalf("unlogged dose should have no matched event")
	}
}

func TestReconcile_EarlyDoseIsNotNegative(t *testing.T) {
	expected := []schedule.ExpectedDose{{MedicationID: "m1", ScheduledAt: ts(8)}}
	logged := []doselog.LoggedDoseEvent{
		{MedicationID: "m1", ScheduledAt: ts(8), Status: doselog.DoseGiven, GivenAt: timePtr(ts(7)), LoggedAt: ts(7)},
	}

	out := Reconcile(expected, logged)
	if out[0].Status != StatusGivenOnTime || out[0].LatenessHours != 0 {
		t.Fatalf("early dose: status=%s lateness=%v", out[0].Status, out[0].LatenessHours)
	}
}

func TestReconcile_LastWriteWins(t *testing.T) {
	expected := []schedule.ExpectedDose{{MedicationID: "m1", ScheduledAt: ts(8)}}

	logged := []doselog.LoggedDoseEvent{
		{MedicationID: "m1", ScheduledAt: ts(8), Status: doselog.DoseMissed, LoggedAt: ts(9)},
		// re-loggeado después como given: gana el más reciente
		{MedicationID: "m1", ScheduledAt: ts(8), Status: doselog.DoseGiven, GivenAt: timePtr(ts(9)), LoggedAt: ts(10)},
	}

	out := Reconcile(expected, logged)
	if out[0].Status != StatusGivenOnTime {
		t.Fatalf("status = %s, want given_on_time (last write wins)", out[0].Status)
	}
}

func TestReconcile_NoNearestNeighborMatching(t *testing.T) {
	expected := []schedule.ExpectedDose{{MedicationID: "m1", ScheduledAt: ts(8)}}

	// Evento loggeado contra otro instante: no debe matchear por cercanía.
	logged := []doselog.LoggedDoseEvent{
		{MedicationID: "m1", ScheduledAt: ts(8).Add(time.Minute), Status: doselog.DoseGiven, GivenAt: timePtr(ts(8)), LoggedAt: ts(9)},
	}

	out := Reconcile(expected, logged)
	if out[0].Status != StatusUnlogged {
		t.Fatalf("status = %s, want unlogged (exact matching only)", out[0].Status)
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	expected := []schedule.ExpectedDose{
		{MedicationID: "m1", ScheduledAt: ts(8)},
		{MedicationID: "m2", ScheduledAt: ts(8)},
	}
	logged := []doselog.LoggedDoseEvent{
		{MedicationID: "m1", ScheduledAt: ts(8), Status: doselog.DoseGiven, GivenAt: timePtr(ts(8)), LoggedAt: ts(9)},
	}

	first := Reconcile(expected, logged)
	second := Reconcile(expected, logged)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("reconciliation is not idempotent:\n%+v\n%+v", first, second)
	}
}
