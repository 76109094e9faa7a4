package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"ptaplan/internal/domain"
)

type Repo struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")

// --- structures ---

func (r Repo) InsertStructure(ctx context.Context, s domain.Structure) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO structures(id,code,name,description,created_at) VALUES (?,?,?,?,?)`,
		s.ID, s.Code, s.Name, nullable(s.Description), s.CreatedAt)
	return err
}

func (r Repo) GetStructure(ctx context.Context, id string) (domain.Structure, error) {
	var s domain.Structure
	err := r.DB.QueryRowContext(ctx, `SELECT id,code,name,COALESCE(description,''),created_at FROM structures WHERE id=?`, id).
		Scan(&s.ID, &s.Code, &s.Name, &s.Description, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return s, ErrNotFound
	}
	return s, err
}

func (r Repo) ListStructures(ctx context.Context) ([]domain.Structure, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,code,name,COALESCE(description,''),created_at FROM structures ORDER BY code ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Structure
	for rows.Next() {
		var s domain.Structure
		if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.Description, &s.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

func (r Repo) UpdateStructure(ctx context.Context, s domain.Structure) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE structures SET code=?,name=?,description=? WHERE id=?`,
		s.Code, s.Name, nullable(s.Description), s.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r Repo) DeleteStructure(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM structures WHERE id=?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// --- directions ---

func (r Repo) InsertDirection(ctx context.Context, d domain.Direction) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO directions(id,structure_id,code,name,description,created_at) VALUES (?,?,?,?,?,?)`,
		d.ID, nullableStringPtr(d.StructureID), d.Code, d.Name, nullable(d.Description), d.CreatedAt)
	return err
}

func (r Repo) GetDirection(ctx context.Context, id string) (domain.Direction, error) {
	var d domain.Direction
	var parent sql.NullString
	err := r.DB.QueryRowContext(ctx, `SELECT id,structure_id,code,name,COALESCE(description,''),created_at FROM directions WHERE id=?`, id).
		Scan(&d.ID, &parent, &d.Code, &d.Name, &d.Description, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return d, ErrNotFound
	}
	d.StructureID = fromNullString(parent)
	return d, err
}

func (r Repo) ListDirections(ctx context.Context, structureID string) ([]domain.Direction, error) {
	query := `SELECT id,structure_id,code,name,COALESCE(description,''),created_at FROM directions`
	var args []any
	if structureID != "" {
		query += ` WHERE structure_id=?`
		args = append(args, structureID)
	}
	query += ` ORDER BY code ASC`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Direction
	for rows.Next() {
		var d domain.Direction
		var parent sql.NullString
		if err := rows.Scan(&d.ID, &parent, &d.Code, &d.Name, &d.Description, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.StructureID = fromNullString(parent)
		res = append(res, d)
	}
	return res, rows.Err()
}

func (r Repo) UpdateDirection(ctx context.Context, d domain.Direction) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE directions SET structure_id=?,code=?,name=?,description=? WHERE id=?`,
		nullableStringPtr(d.StructureID), d.Code, d.Name, nullable(d.Description), d.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r Repo) DeleteDirection(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM directions WHERE id=?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// --- services ---

func (r Repo) InsertService(ctx context.Context, s domain.Service) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO services(id,direction_id,code,name,description,created_at) VALUES (?,?,?,?,?,?)`,
		s.ID, nullableStringPtr(s.DirectionID), s.Code, s.Name, nullable(s.Description), s.CreatedAt)
	return err
}

func (r Repo) GetService(ctx context.Context, id string) (domain.Service, error) {
	var s domain.Service
	var parent sql.NullString
	err := r.DB.QueryRowContext(ctx, `SELECT id,direction_id,code,name,COALESCE(description,''),created_at FROM services WHERE id=?`, id).
		Scan(&s.ID, &parent, &s.Code, &s.Name, &s.Description, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return s, ErrNotFound
	}
	s.DirectionID = fromNullString(parent)
	return s, err
}

func (r Repo) ListServices(ctx context.Context, directionID string) ([]domain.Service, error) {
	query := `SELECT id,direction_id,code,name,COALESCE(description,''),created_at FROM services`
	var args []any
	if directionID != "" {
		query += ` WHERE direction_id=?`
		args = append(args, directionID)
	}
	query += ` ORDER BY code ASC`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Service
	for rows.Next() {
		var s domain.Service
		var parent sql.NullString
		if err := rows.Scan(&s.ID, &parent, &s.Code, &s.Name, &s.Description, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.DirectionID = fromNullString(parent)
		res = append(res, s)
	}
	return res, rows.Err()
}

func (r Repo) UpdateService(ctx context.Context, s domain.Service) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE services SET direction_id=?,code=?,name=?,description=? WHERE id=?`,
		nullableStringPtr(s.DirectionID), s.Code, s.Name, nullable(s.Description), s.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r Repo) DeleteService(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM services WHERE id=?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// --- divisions ---

func (r Repo) InsertDivision(ctx context.Context, d domain.Division) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO divisions(id,service_id,code,name,description,created_at) VALUES (?,?,?,?,?,?)`,
		d.ID, nullableStringPtr(d.ServiceID), d.Code, d.Name, nullable(d.Description), d.CreatedAt)
	return err
}

func (r Repo) GetDivision(ctx context.Context, id string) (domain.Division, error) {
	var d domain.Division
	var parent sql.NullString
	err := r.DB.QueryRowContext(ctx, `SELECT id,service_id,code,name,COALESCE(description,''),created_at FROM divisions WHERE id=?`, id).
		Scan(&d.ID, &parent, &d.Code, &d.Name, &d.Description, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return d, ErrNotFound
	}
	d.ServiceID = fromNullString(parent)
	return d, err
}

func (r Repo) ListDivisions(ctx context.Context, serviceID string) ([]domain.Division, error) {
	query := `SELECT id,service_id,code,name,COALESCE(description,''),created_at FROM divisions`
	var args []any
	if serviceID != "" {
		query += ` WHERE service_id=?`
		args = append(args, serviceID)
	}
	query += ` ORDER BY code ASC`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Division
	for rows.Next() {
		var d domain.Division
		var parent sql.NullString
		if err := rows.Scan(&d.ID, &parent, &d.Code, &d.Name, &d.Description, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.ServiceID = fromNullString(parent)
		res = append(res, d)
	}
	return res, rows.Err()
}

func (r Repo) UpdateDivision(ctx context.Context, d domain.Division) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE divisions SET service_id=?,code=?,name=?,description=? WHERE id=?`,
		nullableStringPtr(d.ServiceID), d.Code, d.Name, nullable(d.Description), d.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r Repo) DeleteDivision(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM divisions WHERE id=?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// --- helpers ---

func requireAffected(res sql.Result) error {
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullableStringPtr(v *string) any {
	if v == nil || *v == "" {
		return nil
	}
	return *v
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	s := ns.String
	return &s
}

func nullableDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func fromNullDecimal(ns sql.NullString) (*decimal.Decimal, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
