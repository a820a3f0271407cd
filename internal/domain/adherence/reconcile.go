// Package adherence clasifica dosis esperadas contra lo loggeado y reduce las
// clasificaciones a tasas de adherencia. Computación pura, sin I/O.
package adherence

import (
	"time"

	"pet-discharge-portal/internal/domain/doselog"
	"pet-discharge-portal/internal/domain/schedule"
)

type Status string

const (
	StatusGivenOnTime Status = "given_on_time"
	StatusGivenLate   Status = "given_late"
	StatusMissed      Status = "missed"
	StatusSkipped     Status = "skipped"
	StatusUnlogged    Status = "unlogged"
)

// LateThreshold es el corte fijo de diseño entre on-time y late.
// No es configurable por clínica.
const LateThreshold = 2 * time.Hour

// ClassifiedDose es derivado: dosis esperada + evento matcheado (o ninguno).
type ClassifiedDose struct {
	MedicationID string
	ScheduledAt  time.Time

	Status        Status
	LatenessHours float64 // 0 si on-time o si no se administró

	Logged *doselog.LoggedDoseEvent // nil si unlogged
}

// Reconcile produce exactamente un ClassifiedDose por dosis esperada.
//
// El matching es por igualdad exacta del instante programado (el cliente de
// logging devuelve el instante sobre el que fue recordado); nada de vecino más
// cercano, que se vuelve ambiguo con dosis muy juntas. Si hay más de un evento
// contra el mismo instante, gana el loggeado más recientemente.
func Reconcile(expected []schedule.ExpectedDose, logged []doselog.LoggedDoseEvent) []ClassifiedDose {
	type key struct {
		medID string
		at    int64
	}

	latest := make(map[key]doselog.LoggedDoseEvent, len(logged))
	for _, e := range logged {
		k := key{medID: e.MedicationID, at: e.ScheduledAt.UTC().Unix()}
		if prev, ok := latest[k]; ok && !e.LoggedAt.After(prev.LoggedAt) {
			continue
		}
		latest[k] = e
	}

	out := make([]ClassifiedDose, 0, len(expected))
	for _, exp := range expected {
		cd := ClassifiedDose{
			MedicationID: exp.MedicationID,
			ScheduledAt:  exp.ScheduledAt,
			Status:       StatusUnlogged,
		}

		k := key{medID: exp.MedicationID, at: exp.ScheduledAt.UTC().Unix()}
		if e, ok := latest[k]; ok {
			ev := e
			cd.Logged = &ev

			switch e.Status {
			case doselog.DoseGiven:
				lateness := 0.0
				if e.GivenAt != nil {
					lateness = e.GivenAt.Sub(exp.ScheduledAt).Hours()
					if lateness < 0 {
						lateness = 0
					}
				}
				if lateness > LateThreshold.Hours() {
					cd.Status = StatusGivenLate
					cd.LatenessHours = lateness
				} else {
					cd.Status = StatusGivenOnTime
				}
			case doselog.DoseMissed:
				cd.Status = StatusMissed
			case doselog.DoseSkipped:
				cd.Status = StatusSkipped
			}
		}

		out = append(out, cd)
	}

	return out
}
