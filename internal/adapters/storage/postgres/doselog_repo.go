package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"pet-discharge-portal/internal/domain/doselog"
)

type DoseLogRepo struct {
	db *sql.DB
}

func NewDoseLogRepo(db *sql.DB) *DoseLogRepo {
	return &DoseLogRepo{db: db}
}

func (r *DoseLogRepo) Append(ctx context.Context, e doselog.LoggedDoseEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dose_events (
			id, visit_id, medication_id,
			scheduled_at, given_at, status,
			logged_at, notes
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		e.ID,
		e.VisitID,
		e.MedicationID,
		e.ScheduledAt,
		toNullTime(e.GivenAt),
		string(e.Status),
		e.LoggedAt,
		e.Notes,
	)
	return err
}

func (r *DoseLogRepo) ListByVisit(ctx context.Context, visitID string, filter doselog.DoseFilter) ([]doselog.LoggedDoseEvent, error) {
	visitID = strings.TrimSpace(visitID)
	if visitID == "" {
		return nil, nil
	}

	sb := strings.Builder{}
	sb.WriteString(`
		SELECT
			id, visit_id, medication_id,
			scheduled_at, given_at, status,
			logged_at, notes
		FROM dose_events
		WHERE visit_id = $1
	`)

	args := []any{visitID}
	argN := 2

	if filter.From != nil {
		sb.WriteString(fmt.Sprintf(" AND scheduled_at >= $%d", argN))
		args = append(args, *filter.From)
		argN++
	}
	if filter.To != nil {
		sb.WriteString(fmt.Sprintf(" AND scheduled_at <= $%d", argN))
		args = append(args, *filter.To)
		argN++
	}

	query := sb.String() + " ORDER BY scheduled_at ASC"

	if filter.Limit > 0 {
		// El tope se queda con los más recientes (igual que el repo en
		// memoria); el orden final sigue siendo ascendente.
		query = fmt.Sprintf(
			"SELECT * FROM (%s ORDER BY scheduled_at DESC LIMIT $%d) recent ORDER BY scheduled_at ASC",
			sb.String(), argN,
		)
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]doselog.LoggedDoseEvent, 0)
	for rows.Next() {
		var e doselog.LoggedDoseEvent
		var status string
		var givenAt sql.NullTime

		if err := rows.Scan(
			&e.ID,
			&e.VisitID,
			&e.MedicationID,
			&e.ScheduledAt,
			&givenAt,
			&status,
			&e.LoggedAt,
			&e.Notes,
		); err != nil {
			return nil, err
		}

		e.Status = doselog.DoseStatus(status)
		if givenAt.Valid {
			t := givenAt.Time
			e.GivenAt = &t
		}
		out = append(out, e)
	}

	return out, rows.Err()
}

type SymptomLogRepo struct {
	db *sql.DB
}

func NewSymptomLogRepo(db *sql.DB) *SymptomLogRepo {
	return &SymptomLogRepo{db: db}
}

func (r *SymptomLogRepo) Append(ctx context.Context, e doselog.SymptomEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO symptom_entries (
			id, visit_id, entry_date,
			appetite, energy, panting,
			note, logged_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		e.ID,
		e.VisitID,
		e.Date,
		e.Appetite,
		e.Energy,
		e.Panting,
		e.Note,
		e.LoggedAt,
	)
	return err
}

func (r *SymptomLogRepo) ListByVisit(ctx context.Context, visitID string, from, to time.Time) ([]doselog.SymptomEntry, error) {
	visitID = strings.TrimSpace(visitID)
	if visitID == "" {
		return nil, nil
	}

	sb := strings.Builder{}
	sb.WriteString(`
		SELECT
			id, visit_id, entry_date,
			appetite, energy, panting,
			note, logged_at
		FROM symptom_entries
		WHERE visit_id = $1
	`)

	args := []any{visitID}
	argN := 2

	if !from.IsZero() {
		sb.WriteString(fmt.Sprintf(" AND entry_date >= $%d", argN))
		args = append(args, from)
		argN++
	}
	if !to.IsZero() {
		sb.WriteString(fmt.Sprintf(" AND entry_date <= $%d", argN))
		args = append(args, to)
	}

	sb.WriteString(" ORDER BY entry_date ASC")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]doselog.SymptomEntry, 0)
	for rows.Next() {
		var e doselog.SymptomEntry
		if err := rows.Scan(
			&e.ID,
			&e.VisitID,
			&e.Date,
			&e.Appetite,
			&e.Energy,
			&e.Panting,
			&e.Note,
			&e.LoggedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	return out, rows.Err()
}
