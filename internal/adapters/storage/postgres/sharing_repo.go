package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pet-discharge-portal/internal/domain/sharing"
)

type SharingRepo struct {
	db *sql.DB
}

func NewSharingRepo(db *sql.DB) *SharingRepo {
	return &SharingRepo{db: db}
}

// Los scopes se guardan como texto separado por comas para no atar el
// esquema a un tipo array del motor.
func joinScopes(scopes []sharing.Scope) string {
	parts := make([]string, 0, len(scopes))
	for _, sc := range scopes {
		parts = append(parts, string(sc))
	}
	return strings.Join(parts, ",")
}

func splitScopes(raw string) []sharing.Scope {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]sharing.Scope, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, sharing.Scope(p))
	}
	return out
}

func (r *SharingRepo) Create(ctx context.Context, sh sharing.Share) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO shares (
			id, visit_id, clinic_user_id, grantee_user_id,
			scopes, status,
			created_at, updated_at, revoked_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		sh.ID,
		sh.VisitID,
		sh.ClinicUserID,
		sh.GranteeUserID,
		joinScopes(sh.Scopes),
		string(sh.Status),
		sh.CreatedAt,
		sh.UpdatedAt,
		toNullTime(sh.RevokedAt),
	)
	return err
}

func (r *SharingRepo) Update(ctx context.Context, sh sharing.Share) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE shares SET
			scopes = $2,
			status = $3,
			updated_at = $4,
			revoked_at = $5
		WHERE id = $1
	`,
		sh.ID,
		joinScopes(sh.Scopes),
		string(sh.Status),
		sh.UpdatedAt,
		toNullTime(sh.RevokedAt),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SharingRepo) GetByID(ctx context.Context, id string) (sharing.Share, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, visit_id, clinic_user_id, grantee_user_id,
			scopes, status,
			created_at, updated_at, revoked_at
		FROM shares
		WHERE id = $1
	`, id)

	sh, err := scanShare(row)
	if err == sql.ErrNoRows {
		return sharing.Share{}, ErrNotFound
	}
	if err != nil {
		return sharing.Share{}, err
	}
	return sh, nil
}

func (r *SharingRepo) ListByVisit(ctx context.Context, visitID string) ([]sharing.Share, error) {
	return r.queryShares(ctx, `
		SELECT
			id, visit_id, clinic_user_id, grantee_user_id,
			scopes, status,
			created_at, updated_at, revoked_at
		FROM shares
		WHERE visit_id = $1
		ORDER BY created_at ASC
	`, visitID)
}

func (r *SharingRepo) GetActiveShare(ctx context.Context, visitID, granteeUserID string) (sharing.Share, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, visit_id, clinic_user_id, grantee_user_id,
			scopes, status,
			created_at, updated_at, revoked_at
		FROM shares
		WHERE visit_id = $1 AND grantee_user_id = $2 AND status = $3
		ORDER BY updated_at DESC, created_at DESC
		LIMIT 1
	`, visitID, granteeUserID, string(sharing.StatusActive))

	sh, err := scanShare(row)
	if err == sql.ErrNoRows {
		return sharing.Share{}, ErrNotFound
	}
	if err != nil {
		return sharing.Share{}, err
	}
	return sh, nil
}

func (r *SharingRepo) ListByGrantee(ctx context.Context, granteeUserID string) ([]sharing.Share, error) {
	return r.queryShares(ctx, `
		SELECT
			id, visit_id, clinic_user_id, grantee_user_id,
			scopes, status,
			created_at, updated_at, revoked_at
		FROM shares
		WHERE grantee_user_id = $1
		ORDER BY created_at ASC
	`, granteeUserID)
}

func (r *SharingRepo) queryShares(ctx context.Context, query string, args ...any) ([]sharing.Share, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]sharing.Share, 0)
	for rows.Next() {
		sh, err := scanShare(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

func scanShare(row rowScanner) (sharing.Share, error) {
	var sh sharing.Share
	var scopes, status string
	var revokedAt sql.NullTime

	if err := row.Scan(
		&sh.ID,
		&sh.VisitID,
		&sh.ClinicUserID,
		&sh.GranteeUserID,
		&scopes,
		&status,
		&sh.CreatedAt,
		&sh.UpdatedAt,
		&revokedAt,
	); err != nil {
		return sharing.Share{}, err
	}

	sh.Scopes = splitScopes(scopes)
	sh.Status = sharing.Status(status)
	if revokedAt.Valid {
		t := revokedAt.Time
		sh.RevokedAt = &t
	}
	return sh, nil
}
