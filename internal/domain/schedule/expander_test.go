package schedule

import (
	"strings"
	"testing"
	"time"

	"pet-discharge-portal/internal/domain/discharges"
)

func day(base time.Time, d int) time.Time {
	return base.AddDate(0, 0, d)
}

func datePtr(t time.Time) *time.Time { return &t }

func TestExpand_SimpleDaily_EmitsNTimesPerDay(t *testing.T) {
	// 2 tomas/día por 10 días completos en el pasado => exactamente 20 dosis.
	now := time.Date(2026, 1, 20, 6, 0, 0, 0, time.UTC)
	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	plan := discharges.MedicationPlan{
		ID:        "med-1",
		Name:      "Amoxicilina",
		Frequency: 2,
		Times:     []string{"08:00", "20:00"},
		StartDate: start,
	}

	doses, warns := Expand(plan, Window{}, now)
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings: %v", warns)
	}
	if len(doses) != 20 {
		t.Fatalf("expected 20 doses, got %d", len(doses))
	}

	for i, d := range doses {
		if d.ScheduledAt.After(now) {
			t.Fatalf("dose %d scheduled after now: %s", i, d.ScheduledAt)
		}
		if i > 0 && !doses[i-1].ScheduledAt.Before(d.ScheduledAt) {
			t.Fatalf("doses out of order at %d", i)
		}
	}

	first := doses[0].ScheduledAt
	want := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	if !first.Equal(want) {
		t.Fatalf("first dose = %s, want %s", first, want)
	}
}

func TestExpand_EOD_ParityAnchoredToStart(t *testing.T) {
	// Start día 0, end día 9 => días esperados {0,2,4,6,8}, 5 dosis, no 10.
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := day(start, 9)
	now := day(start, 30)

	plan := discharges.MedicationPlan{
		ID:            "med-eod",
		Name:          "Prednisona",
		Frequency:     1,
		Times:         []string{"09:00"},
		StartDate:     start,
		EndDate:       datePtr(end),
		EveryOtherDay: true,
	}

	doses, warns := Expand(plan, Window{}, now)
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings: %v", warns)
	}
	if len(doses) != 5 {
		t.Fatalf("expected 5 doses, got %d", len(doses))
	}

	for i, d := range doses {
		offset := int(d.ScheduledAt.Sub(start).Hours() / 24)
		if offset%2 != 0 {
			t.Fatalf("dose %d on odd day offset %d", i, offset)
		}
	}
}

func TestExpand_AsNeeded_EmitsNothing(t *testing.T) {
	now := time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)

	plan := discharges.MedicationPlan{
		ID:        "med-prn",
		Name:      "Gabapentina",
		Frequency: discharges.FrequencyAsNeeded,
		Times:     nil, // sin horarios: a demanda
		StartDate: day(now, -10),
	}

	doses, warns := Expand(plan, Window{}, now)
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings: %v", warns)
	}
	if len(doses) != 0 {
		t.Fatalf("as-needed plan emitted %d doses", len(doses))
	}
}

func TestExpand_FutureDosesNeverEmitted(t *testing.T) {
	now := time.Date(2026, 1, 20, 10, 0, 0, 0, time.UTC)
	start := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)

	plan := discharges.MedicationPlan{
		ID:        "med-today",
		Name:      "Carprofeno",
		Frequency: 2,
		Times:     []string{"08:00", "20:00"},
		StartDate: start,
		EndDate:   datePtr(day(start, 5)),
	}

	doses, _ := Expand(plan, Window{}, now)
	if len(doses) != 1 {
		t.Fatalf("expected only the 08:00 dose, got %d", len(doses))
	}
	if doses[0].ScheduledAt.Hour() != 8 {
		t.Fatalf("unexpected dose at %s", doses[0].ScheduledAt)
	}
}

func TestExpand_Tapered_StageHandoff(t *testing.T) {
	// Etapa 1: 2 tomas/día por 14 días. Etapa 2: 1 toma/día en adelante.
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	stage1End := day(start, 13)
	now := day(start, 20) // fin del día 20

	plan := discharges.MedicationPlan{
		ID:      "med-taper",
		Name:    "Prednisolona",
		Tapered: true,
		TaperStages: []discharges.TaperStage{
			{
				Dosage:    "10 mg",
				Frequency: 2,
				Times:     []string{"08:00", "20:00"},
				StartDate: start,
				EndDate:   datePtr(stage1End),
			},
			{
				Dosage:    "5 mg",
				Frequency: 1,
				Times:     []string{"08:00"},
				StartDate: day(start, 14),
			},
		},
	}

	doses, warns := Expand(plan, Window{}, now)
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings: %v", warns)
	}

	// Primeros 14 días: solo expansión de etapa 1 (28 dosis).
	// Días 15..21 (7 días, hasta "now" medianoche): 1 dosis diaria de etapa 2.
	stage1Count := 0
	stage2Count := 0
	for _, d := range doses {
		if !d.ScheduledAt.After(stage1End.Add(24 * time.Hour)) {
			stage1Count++
		} else {
			stage2Count++
		}
	}
	if stage1Count != 28 {
		t.Fatalf("stage 1 doses = %d, want 28", stage1Count)
	}
	if stage2Count != 6 {
		t.Fatalf("stage 2 doses = %d, want 6", stage2Count)
	}
}

func TestExpand_Tapered_OverlapLaterStageWins(t *testing.T) {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	now := day(start, 10)

	// Ambas etapas cubren el día 2; la segunda debe pisar a la primera ahí.
	plan := discharges.MedicationPlan{
		ID:      "med-overlap",
		Name:    "Metronidazol",
		Tapered: true,
		TaperStages: []discharges.TaperStage{
			{
				Frequency: 2,
				Times:     []string{"08:00", "20:00"},
				StartDate: start,
				EndDate:   datePtr(day(start, 2)),
			},
			{
				Frequency: 1,
				Times:     []string{"12:00"},
				StartDate: day(start, 2),
				EndDate:   datePtr(day(start, 4)),
			},
		},
	}

	doses, warns := Expand(plan, Window{}, now)
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings: %v", warns)
	}

	overlapDay := day(start, 2)
	var onOverlap []ExpectedDose
	for _, d := range doses {
		if d.ScheduledAt.Year() == overlapDay.Year() && d.ScheduledAt.YearDay() == overlapDay.YearDay() {
			onOverlap = append(onOverlap, d)
		}
	}

	if len(onOverlap) != 1 {
		t.Fatalf("overlap day has %d doses, want 1 (later stage wins)", len(onOverlap))
	}
	if onOverlap[0].ScheduledAt.Hour() != 12 {
		t.Fatalf("overlap day dose at hour %d, want 12", onOverlap[0].ScheduledAt.Hour())
	}
}

func TestExpand_MaxDoses_CapsTotal(t *testing.T) {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	now := day(start, 30)

	plan := discharges.MedicationPlan{
		ID:        "med-cap",
		Name:      "Tramadol",
		Frequency: 2,
		Times:     []string{"08:00", "20:00"},
		StartDate: start,
		MaxDoses:  7,
	}

	doses, _ := Expand(plan, Window{}, now)
	if len(doses) != 7 {
		t.Fatalf("expected 7 doses (cap), got %d", len(doses))
	}
}

func TestExpand_MalformedTime_SkipsWithWarning(t *testing.T) {
	now := time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)

	plan := discharges.MedicationPlan{
		ID:        "med-bad",
		Name:      "Enrofloxacina",
		Frequency: 1,
		Times:     []string{"25:99"},
		StartDate: day(now, -5),
	}

	doses, warns := Expand(plan, Window{}, now)
	if len(doses) != 0 {
		t.Fatalf("malformed plan emitted %d doses", len(doses))
	}
	if len(warns) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warns))
	}
	if warns[0].MedicationName != "Enrofloxacina" || !strings.Contains(warns[0].Reason, "25:99") {
		t.Fatalf("unexpected warning: %+v", warns[0])
	}
}

func TestExpand_TaperedWithoutStages_Warns(t *testing.T) {
	now := time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)

	plan := discharges.MedicationPlan{
		ID:      "med-empty-taper",
		Name:    "Furosemida",
		Tapered: true,
	}

	doses, warns := Expand(plan, Window{}, now)
	if len(doses) != 0 || len(warns) != 1 {
		t.Fatalf("got %d doses, %d warnings; want 0 and 1", len(doses), len(warns))
	}
}

func TestExpand_WindowClipsBothEnds(t *testing.T) {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	now := day(start, 30)

	plan := discharges.MedicationPlan{
		ID:        "med-window",
		Name:      "Omeprazol",
		Frequency: 1,
		Times:     []string{"08:00"},
		StartDate: start,
	}

	w := Window{From: day(start, 5), To: day(start, 9).Add(23 * time.Hour)}
	doses, _ := Expand(plan, w, now)

	if len(doses) != 5 {
		t.Fatalf("expected 5 doses inside window, got %d", len(doses))
	}
	for _, d := range doses {
		if d.ScheduledAt.Before(w.From) || d.ScheduledAt.After(w.To) {
			t.Fatalf("dose outside window: %s", d.ScheduledAt)
		}
	}
}
