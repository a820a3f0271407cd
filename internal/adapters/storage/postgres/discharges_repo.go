package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"pet-discharge-portal/internal/domain/discharges"
)

type DischargesRepo struct {
	db *sql.DB
}

func NewDischargesRepo(db *sql.DB) *DischargesRepo {
	return &DischargesRepo{db: db}
}

func (r *DischargesRepo) Create(ctx context.Context, v discharges.Visit) error {
	meds, err := json.Marshal(v.Medications)
	if err != nil {
		return fmt.Errorf("marshal medications: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO discharges (
			id, clinic_id,
			patient_name, patient_species, patient_weight_kg,
			visit_date, diagnosis,
			medications, notes,
			created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		v.ID,
		v.ClinicID,
		v.Patient.Name,
		v.Patient.Species,
		v.Patient.WeightKg,
		v.VisitDate,
		v.Diagnosis,
		meds,
		v.Notes,
		v.CreatedAt,
	)
	return err
}

func (r *DischargesRepo) GetByID(ctx context.Context, id string) (discharges.Visit, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return discharges.Visit{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, clinic_id,
			patient_name, patient_species, patient_weight_kg,
			visit_date, diagnosis,
			medications, notes,
			created_at
		FROM discharges
		WHERE id = $1
	`, id)

	v, err := scanVisit(row)
	if err == sql.ErrNoRows {
		return discharges.Visit{}, ErrNotFound
	}
	return v, err
}

func (r *DischargesRepo) ListByClinic(ctx context.Context, clinicID string, filter discharges.ListFilter) ([]discharges.Visit, error) {
	clinicID = strings.TrimSpace(clinicID)
	if clinicID == "" {
		return nil, nil
	}

	sb := strings.Builder{}
	sb.WriteString(`
		SELECT
			id, clinic_id,
			patient_name, patient_species, patient_weight_kg,
			visit_date, diagnosis,
			medications, notes,
			created_at
		FROM discharges
		WHERE clinic_id = $1
	`)

	args := []any{clinicID}
	argN := 2

	if strings.TrimSpace(filter.Query) != "" {
		sb.WriteString(fmt.Sprintf(" AND (patient_name ILIKE $%d OR diagnosis ILIKE $%d)", argN, argN))
		args = append(args, "%"+strings.TrimSpace(filter.Query)+"%")
		argN++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	sb.WriteString(" ORDER BY visit_date DESC")
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
	args = append(args, limit)

	return r.queryVisits(ctx, sb.String(), args...)
}

func (r *DischargesRepo) ListByPatient(ctx context.Context, clinicID, patientName, species string) ([]discharges.Visit, error) {
	clinicID = strings.TrimSpace(clinicID)
	patientName = strings.TrimSpace(patientName)
	if clinicID == "" || patientName == "" {
		return nil, nil
	}

	// Pre-filtro SQL case-insensitive; la regla autoritativa de identidad
	// difusa vuelve a aplicarse en el agregador de pacientes.
	sb := strings.Builder{}
	sb.WriteString(`
		SELECT
			id, clinic_id,
			patient_name, patient_species, patient_weight_kg,
			visit_date, diagnosis,
			medications, notes,
			created_at
		FROM discharges
		WHERE clinic_id = $1
		  AND LOWER(patient_name) = LOWER($2)
	`)

	args := []any{clinicID, patientName}
	if strings.TrimSpace(species) != "" {
		sb.WriteString(" AND LOWER(patient_species) = LOWER($3)")
		args = append(args, strings.TrimSpace(species))
	}
	sb.WriteString(" ORDER BY visit_date ASC")

	return r.queryVisits(ctx, sb.String(), args...)
}

func (r *DischargesRepo) queryVisits(ctx context.Context, query string, args ...any) ([]discharges.Visit, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]discharges.Visit, 0)
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVisit(row rowScanner) (discharges.Visit, error) {
	var v discharges.Visit
	var meds []byte

	if err := row.Scan(
		&v.ID,
		&v.ClinicID,
		&v.Patient.Name,
		&v.Patient.Species,
		&v.Patient.WeightKg,
		&v.VisitDate,
		&v.Diagnosis,
		&meds,
		&v.Notes,
		&v.CreatedAt,
	); err != nil {
		return discharges.Visit{}, err
	}

	if len(meds) > 0 {
		if err := json.Unmarshal(meds, &v.Medications); err != nil {
			return discharges.Visit{}, fmt.Errorf("unmarshal medications: %w", err)
		}
	}
	return v, nil
}
