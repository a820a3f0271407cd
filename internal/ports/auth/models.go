package auth

// Claims representa la información extraída del token.
// ClinicID viene del tenant del staff; los tutores no tienen clínica.
type Claims struct {
	UserID   string
	Email    string
	ClinicID string
}
