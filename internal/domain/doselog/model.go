package doselog

import "time"

// DoseStatus es el estado que reporta el cliente de logging móvil.
type DoseStatus string

const (
	DoseGiven   DoseStatus = "given"
	DoseMissed  DoseStatus = "missed"
	DoseSkipped DoseStatus = "skipped"
)

// LoggedDoseEvent es una observación del colaborador de logging móvil.
// El cliente devuelve el instante programado exacto sobre el que fue recordado;
// el matching del motor es por igualdad de ese instante, no por vecino más cercano.
type LoggedDoseEvent struct {
	ID           string
	VisitID      string
	MedicationID string

	ScheduledAt time.Time  // instante programado contra el que se loggea
	GivenAt     *time.Time // instante real de administración (solo si Status = given)

	Status DoseStatus

	LoggedAt time.Time
	Notes    string
}

// SymptomEntry es un registro diario de síntomas del paciente.
type SymptomEntry struct {
	ID      string
	VisitID string

	// Date se interpreta como medianoche local de la clínica.
	Date time.Time

	Appetite int // 1-5
	Energy   int // 1-5
	Panting  bool

	Note string

	LoggedAt time.Time
}
