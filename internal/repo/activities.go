package repo

import (
	"context"
	"database/sql"
	"strings"

	"ptaplan/internal/domain"
)

const activityColumns = `id,general_objective_id,specific_objective_id,expected_result_id,
structure_id,direction_id,service_id,division_id,pcop_id,
start_date,end_date,
COALESCE(description,''),COALESCE(sub_activity,''),COALESCE(products,''),
COALESCE(targets,''),COALESCE(funding_sources,''),COALESCE(remark,''),
unit_cost,quantity,amount,status,created_at,updated_at`

type activityScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row activityScanner) (domain.Activity, error) {
	var a domain.Activity
	var genObj, specObj, expRes, structure, direction, service, division, pcop sql.NullString
	var start, end sql.NullString
	var unitCost, quantity, amount sql.NullString
	err := row.Scan(&a.ID, &genObj, &specObj, &expRes,
		&structure, &direction, &service, &division, &pcop,
		&start, &end,
		&a.Description, &a.SubActivity, &a.Products,
		&a.Targets, &a.FundingSources, &a.Remark,
		&unitCost, &quantity, &amount, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return a, ErrNotFound
	}
	if err != nil {
		return a, err
	}
	a.GeneralObjectiveID = fromNullString(genObj)
	a.SpecificObjectiveID = fromNullString(specObj)
	a.ExpectedResultID = fromNullString(expRes)
	a.StructureID = fromNullString(structure)
	a.DirectionID = fromNullString(direction)
	a.ServiceID = fromNullString(service)
	a.DivisionID = fromNullString(division)
	a.PCOPID = fromNullString(pcop)
	a.StartDate = fromNullString(start)
	a.EndDate = fromNullString(end)
	if a.UnitCost, err = fromNullDecimal(unitCost); err != nil {
		return a, err
	}
	if a.Quantity, err = fromNullDecimal(quantity); err != nil {
		return a, err
	}
	if a.Amount, err = fromNullDecimal(amount); err != nil {
		return a, err
	}
	return a, nil
}

func (r Repo) InsertActivity(ctx context.Context, tx *sql.Tx, a domain.Activity) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO activities(
id,general_objective_id,specific_objective_id,expected_result_id,
structure_id,direction_id,service_id,division_id,pcop_id,
start_date,end_date,description,sub_activity,products,targets,funding_sources,remark,
unit_cost,quantity,amount,status,created_at,updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		a.ID, nullableStringPtr(a.GeneralObjectiveID), nullableStringPtr(a.SpecificObjectiveID), nullableStringPtr(a.ExpectedResultID),
		nullableStringPtr(a.StructureID), nullableStringPtr(a.DirectionID), nullableStringPtr(a.ServiceID), nullableStringPtr(a.DivisionID), nullableStringPtr(a.PCOPID),
		nullableStringPtr(a.StartDate), nullableStringPtr(a.EndDate),
		a.Description, nullable(a.SubActivity), nullable(a.Products), nullable(a.Targets), nullable(a.FundingSources), nullable(a.Remark),
		nullableDecimal(a.UnitCost), nullableDecimal(a.Quantity), nullableDecimal(a.Amount),
		a.Status, a.CreatedAt, a.UpdatedAt)
	return err
}

func (r Repo) GetActivity(ctx context.Context, id string) (domain.Activity, error) {
	return scanActivity(r.DB.QueryRowContext(ctx, `SELECT `+activityColumns+` FROM activities WHERE id=?`, id))
}

func (r Repo) GetActivityTx(ctx context.Context, tx *sql.Tx, id string) (domain.Activity, error) {
	return scanActivity(tx.QueryRowContext(ctx, `SELECT `+activityColumns+` FROM activities WHERE id=?`, id))
}

// ActivityFilter narrows ListActivities. Zero values mean no constraint;
// lateness is derived, so it is filtered by the caller, not here.
type ActivityFilter struct {
	StructureID string
	DirectionID string
	ServiceID   string
	DivisionID  string
	Status      string
}

func (r Repo) ListActivities(ctx context.Context, f ActivityFilter) ([]domain.Activity, error) {
	var conds []string
	var args []any
	if f.StructureID != "" {
		conds = append(conds, "structure_id=?")
		args = append(args, f.StructureID)
	}
	if f.DirectionID != "" {
		conds = append(conds, "direction_id=?")
		args = append(args, f.DirectionID)
	}
	if f.ServiceID != "" {
		conds = append(conds, "service_id=?")
		args = append(args, f.ServiceID)
	}
	if f.DivisionID != "" {
		conds = append(conds, "division_id=?")
		args = append(args, f.DivisionID)
	}
	if f.Status != "" {
		conds = append(conds, "status=?")
		args = append(args, f.Status)
	}
	query := `SELECT ` + activityColumns + ` FROM activities`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

func (r Repo) UpdateActivity(ctx context.Context, tx *sql.Tx, a domain.Activity) error {
	res, err := tx.ExecContext(ctx, `UPDATE activities SET
general_objective_id=?,specific_objective_id=?,expected_result_id=?,
structure_id=?,direction_id=?,service_id=?,division_id=?,pcop_id=?,
start_date=?,end_date=?,description=?,sub_activity=?,products=?,targets=?,funding_sources=?,remark=?,
unit_cost=?,quantity=?,amount=?,status=?,updated_at=? WHERE id=?`,
		nullableStringPtr(a.GeneralObjectiveID), nullableStringPtr(a.SpecificObjectiveID), nullableStringPtr(a.ExpectedResultID),
		nullableStringPtr(a.StructureID), nullableStringPtr(a.DirectionID), nullableStringPtr(a.ServiceID), nullableStringPtr(a.DivisionID), nullableStringPtr(a.PCOPID),
		nullableStringPtr(a.StartDate), nullableStringPtr(a.EndDate),
		a.Description, nullable(a.SubActivity), nullable(a.Products), nullable(a.Targets), nullable(a.FundingSources), nullable(a.Remark),
		nullableDecimal(a.UnitCost), nullableDecimal(a.Quantity), nullableDecimal(a.Amount),
		a.Status, a.UpdatedAt, a.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r Repo) UpdateActivityStatusTx(ctx context.Context, tx *sql.Tx, id, status, updatedAt string) error {
	res, err := tx.ExecContext(ctx, `UPDATE activities SET status=?,updated_at=? WHERE id=?`, status, updatedAt, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r Repo) DeleteActivity(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM activities WHERE id=?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// CountActivitiesByStatus powers the dashboard. Keys are the raw status
// strings found in storage.
func (r Repo) CountActivitiesByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM activities GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		res[status] = n
	}
	return res, rows.Err()
}
