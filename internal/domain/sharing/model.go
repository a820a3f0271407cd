package sharing

import "time"

// Scope define qué puede hacer el tutor con el alta compartida.
type Scope string

const (
	ScopePlanView    Scope = "plan:view"
	ScopeDosesLog    Scope = "doses:log"
	ScopeSymptomsLog Scope = "symptoms:log"
)

type Status string

const (
	StatusInvited Status = "invited"
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// Share es el vínculo entre un alta y el tutor de la mascota: la clínica
// comparte el plan, el tutor lo acepta y desde ahí puede loggear dosis/síntomas.
type Share struct {
	ID string

	VisitID string

	ClinicUserID  string // staff que compartió
	GranteeUserID string // tutor

	Scopes []Scope
	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
