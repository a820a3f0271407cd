package adherence

import (
	"math"
	"sort"
	"time"
)

// DoseRecord es un ClassifiedDose anotado con el contexto que el agregador
// necesita para el desglose: nombre de medicación (match exacto, case-sensitive
// entre visitas, sin canonicalizar) y la visita que lo aportó.
type DoseRecord struct {
	ClassifiedDose

	MedicationName string
	VisitID        string
}

// Options acota la agregación. Ventana opcional sobre ScheduledAt;
// ActiveMedIDs no-nil restringe a esas medicaciones ("solo activas").
type Options struct {
	From time.Time
	To   time.Time

	ActiveMedIDs map[string]bool
}

type Counts struct {
	Scheduled int // todas las esperadas en scope, incluidas unlogged/skipped
	Given     int // administradas a tiempo
	Late      int
	Missed    int
	Skipped   int
	Unlogged  int
}

// MedicationBreakdown es el desglose por nombre de medicación, con las visitas
// que aportaron dosis bajo ese nombre.
type MedicationBreakdown struct {
	Name string
	Counts
	Rate     int
	VisitIDs []string
}

// DayBucket es un punto de la línea de tiempo diaria para graficar.
type DayBucket struct {
	Date      time.Time
	Scheduled int
	Given     int // a tiempo + tarde
	Missed    int
	Rate      int
}

type Metrics struct {
	Counts
	Rate int

	PerMedication []MedicationBreakdown
	Timeline      []DayBucket
}

// Aggregate reduce dosis clasificadas a tasas por medicación y totales.
//
// La tasa es (given + late) / (given + late + missed), redondeada al entero
// más cercano. Unlogged y skipped quedan fuera de numerador y denominador.
// Denominador cero reporta 0, nunca null ni 100: un 0% sin dosis contables
// no significa mala adherencia.
func Aggregate(records []DoseRecord, opts Options) Metrics {
	scoped := make([]DoseRecord, 0, len(records))
	for _, r := range records {
		if !opts.From.IsZero() && r.ScheduledAt.Before(opts.From) {
			continue
		}
		if !opts.To.IsZero() && r.ScheduledAt.After(opts.To) {
			continue
		}
		if opts.ActiveMedIDs != nil && !opts.ActiveMedIDs[r.MedicationID] {
			continue
		}
		scoped = append(scoped, r)
	}

	var m Metrics
	perMed := map[string]*MedicationBreakdown{}
	medVisits := map[string]map[string]bool{}
	perDay := map[time.Time]*DayBucket{}

	for _, r := range scoped {
		count(&m.Counts, r.Status)

		mb, ok := perMed[r.MedicationName]
		if !ok {
			mb = &MedicationBreakdown{Name: r.MedicationName}
			perMed[r.MedicationName] = mb
			medVisits[r.MedicationName] = map[string]bool{}
		}
		count(&mb.Counts, r.Status)
		if r.VisitID != "" {
			medVisits[r.MedicationName][r.VisitID] = true
		}

		day := time.Date(r.ScheduledAt.Year(), r.ScheduledAt.Month(), r.ScheduledAt.Day(), 0, 0, 0, 0, r.ScheduledAt.Location())
		db, ok := perDay[day]
		if !ok {
			db = &DayBucket{Date: day}
			perDay[day] = db
		}
		db.Scheduled++
		switch r.Status {
		case StatusGivenOnTime, StatusGivenLate:
			db.Given++
		case StatusMissed:
			db.Missed++
		}
	}

	m.Rate = rate(m.Counts)

	names := make([]string, 0, len(perMed))
	for name := range perMed {
		names = append(names, name)
	}
	sort.Strings(names)

	m.PerMedication = make([]MedicationBreakdown, 0, len(names))
	for _, name := range names {
		mb := perMed[name]
		mb.Rate = rate(mb.Counts)

		ids := make([]string, 0, len(medVisits[name]))
		for id := range medVisits[name] {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		mb.VisitIDs = ids

		m.PerMedication = append(m.PerMedication, *mb)
	}

	days := make([]time.Time, 0, len(perDay))
	for d := range perDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	m.Timeline = make([]DayBucket, 0, len(days))
	for _, d := range days {
		db := perDay[d]
		denom := db.Given + db.Missed
		if denom > 0 {
			db.Rate = int(math.Round(100 * float64(db.Given) / float64(denom)))
		}
		m.Timeline = append(m.Timeline, *db)
	}

	return m
}

func count(c *Counts, st Status) {
	c.Scheduled++
	switch st {
	case StatusGivenOnTime:
		c.Given++
	case StatusGivenLate:
		c.Late++
	case StatusMissed:
		c.Missed++
	case StatusSkipped:
		c.Skipped++
	case StatusUnlogged:
		c.Unlogged++
	}
}

// rate calcula el porcentaje entero de adherencia. Siempre en [0, 100].
func rate(c Counts) int {
	denom := c.Given + c.Late + c.Missed
	if denom == 0 {
		return 0
	}
	return int(math.Round(100 * float64(c.Given+c.Late) / float64(denom)))
}
