package discharges

import "context"

// ClinicOf expone el clinicID de un alta.
// Se usa para evitar ciclos de imports entre módulos (discharges <-> sharing).
func (s *Service) ClinicOf(ctx context.Context, visitID string) (string, error) {
	v, err := s.GetByID(ctx, visitID)
	if err != nil {
		return "", err
	}
	return v.ClinicID, nil
}
