package discharges

import "context"

type Repository interface {
	Create(ctx context.Context, v Visit) error
	GetByID(ctx context.Context, id string) (Visit, error)
	ListByClinic(ctx context.Context, clinicID string, filter ListFilter) ([]Visit, error)

	// ListByPatient devuelve todas las visitas de un paciente dentro de una clínica,
	// matcheando nombre (y especie si viene) de forma case-insensitive.
	// No hay ID estable de paciente entre visitas; este match difuso es intencional.
	ListByPatient(ctx context.Context, clinicID, patientName, species string) ([]Visit, error)
}

type ListFilter struct {
	Query string // búsqueda simple en nombre de paciente / diagnóstico
	Limit int
}
