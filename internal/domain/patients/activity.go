package patients

import (
	"time"

	"pet-discharge-portal/internal/domain/discharges"
)

// openEndedActiveDays es la ventana de fallback para planes sin fecha de fin:
// un plan abierto deja de contar como activo 30 días después de su inicio.
const openEndedActiveDays = 30

// planActive decide si una medicación cuenta como activa "hoy".
// Simple: hoy dentro de [start, end]. Tapered: hoy dentro de la ventana de
// alguna etapa. Sin fecha de fin: dentro de openEndedActiveDays desde el inicio.
func planActive(plan discharges.MedicationPlan, now time.Time) bool {
	if plan.Tapered {
		for _, st := range plan.TaperStages {
			if windowActive(st.StartDate, st.EndDate, now) {
				return true
			}
		}
		return false
	}
	return windowActive(plan.StartDate, plan.EndDate, now)
}

func windowActive(start time.Time, end *time.Time, now time.Time) bool {
	if start.IsZero() {
		return false
	}
	today := dateOnly(now)
	if today.Before(dateOnly(start)) {
		return false
	}
	if end != nil {
		return !today.After(dateOnly(*end))
	}
	return !today.After(dateOnly(start).AddDate(0, 0, openEndedActiveDays))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
