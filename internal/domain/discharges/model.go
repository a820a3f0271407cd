package discharges

import "time"

// PatientSnapshot es la foto del paciente al momento del alta.
// No hay identificador estable de paciente entre visitas legacy,
// así que nombre+especie es lo único que viaja con cada visita.
type PatientSnapshot struct {
	Name     string
	Species  string
	WeightKg float64
}

// TaperStage es un sub-período de una medicación con su propia dosis/frecuencia.
// Por convención las etapas son contiguas y no se solapan; el dato no lo garantiza.
type TaperStage struct {
	Dosage    string // texto opaco: "2.5 ml"
	Frequency int    // dosis por día
	Times     []string // "HH:MM"

	StartDate time.Time
	EndDate   *time.Time

	EveryOtherDay bool
	MaxDoses      int // 0 = sin tope
}

// MedicationPlan es una medicación prescrita dentro de una visita.
// Exactamente uno de {campos simples, TaperStages} es autoritativo:
// si Tapered es true, los campos simples se ignoran.
type MedicationPlan struct {
	ID   string
	Name string

	Dosage    string   // texto opaco, nunca se parsea
	Frequency int      // dosis por día; 0 = a demanda / custom
	Times     []string // "HH:MM", hora local de clínica

	StartDate time.Time
	EndDate   *time.Time // nil + MaxDoses 0 = plan abierto (sigue activo "hoy")

	EveryOtherDay bool
	MaxDoses      int // 0 = sin tope

	Tapered     bool
	TaperStages []TaperStage

	Notes string
}

// Visit es un alta clínica. Se crea una vez y sus medicaciones son
// inmutables después: la UI solo agrega visitas nuevas, nunca edita históricas.
type Visit struct {
	ID       string
	ClinicID string

	Patient   PatientSnapshot
	VisitDate time.Time
	Diagnosis string

	Medications []MedicationPlan

	Notes string

	CreatedAt time.Time
}
