// Package schedule expande planes de medicación en la secuencia concreta de
// dosis esperadas. Es computación pura: sin I/O, sin estado, el "ahora" entra
// por parámetro.
package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"pet-discharge-portal/internal/domain/discharges"
)

// ExpectedDose es derivado, nunca se persiste: se recalcula en cada consulta.
type ExpectedDose struct {
	MedicationID string
	ScheduledAt  time.Time
}

// Warning reporta una medicación cuya expansión se saltó por datos malformados.
// El plan malo aporta cero dosis esperadas; no aborta el cómputo del paciente
// ni se disfraza de 0% de adherencia.
type Warning struct {
	MedicationID   string
	MedicationName string
	Reason         string
}

// Window acota la expansión a [From, To]. Un extremo en cero no acota.
type Window struct {
	From time.Time
	To   time.Time
}

// Expand produce la secuencia ordenada y deduplicada de dosis esperadas de un
// plan dentro de la ventana. Nunca emite dosis con instante posterior a now:
// la adherencia no se computa contra el futuro.
//
// Un plan sin horarios configurados ("a demanda") emite cero dosis y queda
// fuera de los denominadores; no es un warning.
func Expand(plan discharges.MedicationPlan, w Window, now time.Time) ([]ExpectedDose, []Warning) {
	if plan.Tapered {
		return expandTapered(plan, w, now)
	}

	doses, err := expandSimple(plan.ID, plan.Times, plan.StartDate, plan.EndDate, plan.EveryOtherDay, plan.MaxDoses, w, now)
	if err != nil {
		return nil, []Warning{{
			MedicationID:   plan.ID,
			MedicationName: plan.Name,
			Reason:         err.Error(),
		}}
	}
	return doses, nil
}

// expandTapered corre la expansión simple por etapa sobre la ventana propia de
// cada una. Por contrato las etapas no se solapan; si el dato viene solapado,
// la etapa listada después pisa a la anterior para ese día calendario.
// Ojo: el pisado es por día con dosis emitidas. Si todas las dosis de la etapa
// posterior para ese día caen en el futuro (y el clamp de "now" las descarta),
// esa etapa no emite nada para el día y las dosis pasadas de la etapa anterior
// sobreviven.
func expandTapered(plan discharges.MedicationPlan, w Window, now time.Time) ([]ExpectedDose, []Warning) {
	if len(plan.TaperStages) == 0 {
		return nil, []Warning{{
			MedicationID:   plan.ID,
			MedicationName: plan.Name,
			Reason:         "tapered plan without stages",
		}}
	}

	byDay := map[time.Time][]ExpectedDose{}

	for i, st := range plan.TaperStages {
		doses, err := expandSimple(plan.ID, st.Times, st.StartDate, st.EndDate, st.EveryOtherDay, st.MaxDoses, w, now)
		if err != nil {
			return nil, []Warning{{
				MedicationID:   plan.ID,
				MedicationName: plan.Name,
				Reason:         fmt.Sprintf("stage %d: %v", i, err),
			}}
		}

		perStageDay := map[time.Time][]ExpectedDose{}
		for _, d := range doses {
			day := dateOnly(d.ScheduledAt)
			perStageDay[day] = append(perStageDay[day], d)
		}
		for day, ds := range perStageDay {
			byDay[day] = ds
		}
	}

	out := make([]ExpectedDose, 0)
	for _, ds := range byDay {
		out = append(out, ds...)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out, nil
}

// expandSimple itera días calendario desde el inicio del plan. Con EOD el cursor
// avanza de a 2 días anclado al start del plan (no a una época global: si el
// start se corre, toda la cadencia se corre con él). El tope MaxDoses cuenta
// instantes programados desde el inicio del plan, no desde la ventana.
func expandSimple(medID string, times []string, start time.Time, end *time.Time, eod bool, maxDoses int, w Window, now time.Time) ([]ExpectedDose, error) {
	minutes, err := parseTimes(times)
	if err != nil {
		return nil, err
	}
	if len(minutes) == 0 {
		return nil, nil
	}
	if start.IsZero() {
		return nil, fmt.Errorf("missing start date")
	}

	// La fecha de fin es inclusiva como día calendario: las dosis del último
	// día cuentan aunque el EndDate venga guardado como medianoche.
	upperDay := dateOnly(now)
	if end != nil {
		if d := dateOnly(*end); d.Before(upperDay) {
			upperDay = d
		}
	}
	if !w.To.IsZero() {
		if d := dateOnly(w.To); d.Before(upperDay) {
			upperDay = d
		}
	}

	step := 1
	if eod {
		step = 2
	}

	out := make([]ExpectedDose, 0)
	count := 0

	for day := dateOnly(start); !day.After(upperDay); day = day.AddDate(0, 0, step) {
		for _, m := range minutes {
			if maxDoses > 0 && count >= maxDoses {
				return out, nil
			}
			count++

			ts := day.Add(time.Duration(m) * time.Minute)
			if ts.After(now) {
				continue
			}
			if !w.To.IsZero() && ts.After(w.To) {
				continue
			}
			if !w.From.IsZero() && ts.Before(w.From) {
				continue
			}
			out = append(out, ExpectedDose{MedicationID: medID, ScheduledAt: ts})
		}
	}

	return out, nil
}

// parseTimes convierte "HH:MM" a minutos del día, ordenados y deduplicados.
func parseTimes(times []string) ([]int, error) {
	out := make([]int, 0, len(times))
	seen := map[int]struct{}{}

	for _, raw := range times {
		t := strings.TrimSpace(raw)
		if t == "" {
			continue
		}

		parts := strings.SplitN(t, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("bad time of day %q", raw)
		}
		h, err1 := strconv.Atoi(parts[0])
		m, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
			return nil, fmt.Errorf("bad time of day %q", raw)
		}

		v := h*60 + m
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	sort.Ints(out)
	return out, nil
}

// dateOnly trunca a medianoche conservando la location del timestamp
// (las fechas-solo se interpretan como medianoche local de la clínica).
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
