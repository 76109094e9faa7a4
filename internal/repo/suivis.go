package repo

import (
	"context"
	"database/sql"
	"strings"

	"ptaplan/internal/domain"
)

const suiviColumns = `id,activity_id,observation_date,COALESCE(remark,''),advancement,
late_notification,COALESCE(notification_message,''),created_at,updated_at`

func scanSuivi(row activityScanner) (domain.Suivi, error) {
	var s domain.Suivi
	var adv sql.NullInt64
	err := row.Scan(&s.ID, &s.ActivityID, &s.ObservationDate, &s.Remark, &adv,
		&s.LateNotification, &s.NotificationMessage, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return s, ErrNotFound
	}
	if err != nil {
		return s, err
	}
	if adv.Valid {
		v := int(adv.Int64)
		s.Advancement = &v
	}
	return s, nil
}

func (r Repo) InsertSuiviTx(ctx context.Context, tx *sql.Tx, s domain.Suivi) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO suivis(id,activity_id,observation_date,remark,advancement,late_notification,notification_message,created_at,updated_at)
VALUES (?,?,?,?,?,?,?,?,?)`,
		s.ID, s.ActivityID, s.ObservationDate, nullable(s.Remark), nullableInt(s.Advancement),
		s.LateNotification, nullable(s.NotificationMessage), s.CreatedAt, s.UpdatedAt)
	return err
}

func (r Repo) UpdateSuiviTx(ctx context.Context, tx *sql.Tx, s domain.Suivi) error {
	res, err := tx.ExecContext(ctx, `UPDATE suivis SET observation_date=?,remark=?,advancement=?,late_notification=?,notification_message=?,updated_at=? WHERE id=?`,
		s.ObservationDate, nullable(s.Remark), nullableInt(s.Advancement),
		s.LateNotification, nullable(s.NotificationMessage), s.UpdatedAt, s.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r Repo) GetSuivi(ctx context.Context, id string) (domain.Suivi, error) {
	return scanSuivi(r.DB.QueryRowContext(ctx, `SELECT `+suiviColumns+` FROM suivis WHERE id=?`, id))
}

func (r Repo) GetSuiviTx(ctx context.Context, tx *sql.Tx, id string) (domain.Suivi, error) {
	return scanSuivi(tx.QueryRowContext(ctx, `SELECT `+suiviColumns+` FROM suivis WHERE id=?`, id))
}

// SuiviFilter narrows ListSuivis. Dates are inclusive YYYY-MM-DD bounds.
type SuiviFilter struct {
	ActivityID string
	From       string
	To         string
}

func (r Repo) ListSuivis(ctx context.Context, f SuiviFilter) ([]domain.Suivi, error) {
	var conds []string
	var args []any
	if f.ActivityID != "" {
		conds = append(conds, "activity_id=?")
		args = append(args, f.ActivityID)
	}
	if f.From != "" {
		conds = append(conds, "observation_date>=?")
		args = append(args, f.From)
	}
	if f.To != "" {
		conds = append(conds, "observation_date<=?")
		args = append(args, f.To)
	}
	query := `SELECT ` + suiviColumns + ` FROM suivis`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY observation_date DESC, created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Suivi
	for rows.Next() {
		s, err := scanSuivi(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

func (r Repo) DeleteSuivi(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM suivis WHERE id=?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
