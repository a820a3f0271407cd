package capabilities

import "context"

// CapabilityCheck pregunta si una clínica (o un usuario suelto) tiene
// habilitada una feature del plan comercial, p.ej. "reports:export".
type CapabilityCheck struct {
	UserID   string
	ClinicID string
	Feature  string
}

type CapabilitiesResolver interface {
	HasFeature(ctx context.Context, in CapabilityCheck) (bool, error)
}
