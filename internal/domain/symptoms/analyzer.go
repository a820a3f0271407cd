// Package symptoms reduce registros de síntomas a tendencias y flags discretos.
// Computación pura: misma entrada, mismo set de flags, sin duplicados entre
// recomputaciones.
package symptoms

import (
	"fmt"
	"sort"
	"time"

	"pet-discharge-portal/internal/domain/doselog"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type FlagType string

const (
	FlagAppetiteDrop    FlagType = "appetite_drop"
	FlagEnergyDrop      FlagType = "energy_drop"
	FlagFrequentPanting FlagType = "frequent_panting"
)

type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendStable  Trend = "stable"
)

// Constantes fijas de diseño; no configurables por clínica.
const (
	trendDeadBand = 0.5 // |actual - promedio 7d| menor a esto = stable

	lowValueMax = 2 // apetito/energía <= 2 genera flag

	sustainedMediumDays = 2 // racha que escala a medium
	sustainedHighDays   = 4 // racha que escala a high

	pantingWindow      = 7 // últimos N días loggeados
	pantingFrequentMin = 3 // trues dentro de la ventana para "frecuente"
)

// Flag es un alerta discreta y fechada. Su identidad es (Type, Date):
// recomputar sobre las mismas entradas produce exactamente el mismo set.
type Flag struct {
	Type        FlagType
	Date        time.Time
	Severity    Severity
	Description string
}

// MetricTrend resume una métrica 1-5: valor actual vs promedio móvil de 7 días.
type MetricTrend struct {
	Current   int
	Average7d float64
	Trend     Trend
}

type Analysis struct {
	Appetite MetricTrend
	Energy   MetricTrend

	PantingCount7d  int
	PantingFrequent bool

	Flags []Flag

	EntryCount int
	WindowDays int
}

// Analyze procesa entradas ordenadas cronológicamente sobre una ventana
// (default 30 días si windowDays es 0). windowDays negativo es un bug del
// caller y falla fuerte.
func Analyze(entries []doselog.SymptomEntry, windowDays int) (Analysis, error) {
	if windowDays < 0 {
		return Analysis{}, fmt.Errorf("negative window: %d", windowDays)
	}
	if windowDays == 0 {
		windowDays = 30
	}

	// Orden defensivo por fecha; los lectores no garantizan orden.
	sorted := make([]doselog.SymptomEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	// Un día puede venir loggeado más de una vez; gana el LoggedAt más
	// nuevo. Las ventanas cuentan días calendario, no registros.
	sorted = dedupeByDay(sorted)

	a := Analysis{
		EntryCount: len(sorted),
		WindowDays: windowDays,
	}
	if len(sorted) == 0 {
		a.Appetite.Trend = TrendStable
		a.Energy.Trend = TrendStable
		return a, nil
	}

	latest := sorted[len(sorted)-1]
	a.Appetite = metricTrend(sorted, latest.Date, func(e doselog.SymptomEntry) int { return e.Appetite })
	a.Energy = metricTrend(sorted, latest.Date, func(e doselog.SymptomEntry) int { return e.Energy })

	a.PantingCount7d = pantingCount(sorted, len(sorted)-1)
	a.PantingFrequent = a.PantingCount7d >= pantingFrequentMin

	a.Flags = buildFlags(sorted)
	return a, nil
}

// metricTrend compara el último valor contra el promedio móvil de los 7 días
// previos al último registro, con banda muerta fija.
func metricTrend(sorted []doselog.SymptomEntry, latestDate time.Time, value func(doselog.SymptomEntry) int) MetricTrend {
	cutoff := latestDate.AddDate(0, 0, -6)

	sum, n := 0, 0
	for _, e := range sorted {
		if e.Date.Before(cutoff) || e.Date.After(latestDate) {
			continue
		}
		sum += value(e)
		n++
	}

	mt := MetricTrend{Current: value(sorted[len(sorted)-1])}
	if n > 0 {
		mt.Average7d = float64(sum) / float64(n)
	}

	diff := float64(mt.Current) - mt.Average7d
	switch {
	case diff >= trendDeadBand:
		mt.Trend = TrendRising
	case diff <= -trendDeadBand:
		mt.Trend = TrendFalling
	default:
		mt.Trend = TrendStable
	}
	return mt
}

// pantingCount cuenta trues dentro de los últimos pantingWindow días loggeados
// terminando en la entrada idx (días con registro, no días calendario).
func pantingCount(sorted []doselog.SymptomEntry, idx int) int {
	count := 0
	seen := 0
	for i := idx; i >= 0 && seen < pantingWindow; i-- {
		if sorted[i].Panting {
			count++
		}
		seen++
	}
	return count
}

// buildFlags evalúa cada regla de flag por entrada. La severidad de una caída
// escala con la racha de días consecutivos: 1 día low, >= 2 medium, >= 4 high.
func buildFlags(sorted []doselog.SymptomEntry) []Flag {
	flags := make([]Flag, 0)

	appetiteRun, energyRun := 0, 0
	var prevDate time.Time

	for i, e := range sorted {
		consecutive := !prevDate.IsZero() && sameDay(e.Date, prevDate.AddDate(0, 0, 1))

		if e.Appetite <= lowValueMax {
			if consecutive && appetiteRun > 0 {
				appetiteRun++
			} else {
				appetiteRun = 1
			}
			flags = append(flags, Flag{
				Type:        FlagAppetiteDrop,
				Date:        e.Date,
				Severity:    runSeverity(appetiteRun),
				Description: fmt.Sprintf("appetite at %d/5 (%s)", e.Appetite, runLabel(appetiteRun)),
			})
		} else {
			appetiteRun = 0
		}

		if e.Energy <= lowValueMax {
			if consecutive && energyRun > 0 {
				energyRun++
			} else {
				energyRun = 1
			}
			flags = append(flags, Flag{
				Type:        FlagEnergyDrop,
				Date:        e.Date,
				Severity:    runSeverity(energyRun),
				Description: fmt.Sprintf("energy at %d/5 (%s)", e.Energy, runLabel(energyRun)),
			})
		} else {
			energyRun = 0
		}

		// Jadeo frecuente: ventana móvil sobre días loggeados. Escala a high
		// si coincide con una caída de apetito o energía ese mismo día.
		if e.Panting && pantingCount(sorted, i) >= pantingFrequentMin {
			sev := SeverityMedium
			if e.Appetite <= lowValueMax || e.Energy <= lowValueMax {
				sev = SeverityHigh
			}
			flags = append(flags, Flag{
				Type:        FlagFrequentPanting,
				Date:        e.Date,
				Severity:    sev,
				Description: fmt.Sprintf("panting on %d of last %d logged days", pantingCount(sorted, i), pantingWindow),
			})
		}

		prevDate = e.Date
	}

	return flags
}

func runSeverity(run int) Severity {
	switch {
	case run >= sustainedHighDays:
		return SeverityHigh
	case run >= sustainedMediumDays:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func runLabel(run int) string {
	if run == 1 {
		return "single day"
	}
	return fmt.Sprintf("day %d in a row", run)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// dedupeByDay colapsa registros del mismo día calendario quedándose con el
// de LoggedAt más nuevo. Espera entrada ordenada por fecha.
func dedupeByDay(sorted []doselog.SymptomEntry) []doselog.SymptomEntry {
	out := make([]doselog.SymptomEntry, 0, len(sorted))
	for _, e := range sorted {
		if n := len(out); n > 0 && sameDay(out[n-1].Date, e.Date) {
			if !e.LoggedAt.Before(out[n-1].LoggedAt) {
				out[n-1] = e
			}
			continue
		}
		out = append(out, e)
	}
	return out
}
