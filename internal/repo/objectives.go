package repo

import (
	"context"
	"database/sql"

	"ptaplan/internal/domain"
)

// --- general objectives ---

func (r Repo) InsertGeneralObjective(ctx context.Context, o domain.GeneralObjective) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO general_objectives(id,code,title,description,created_at) VALUES (?,?,?,?,?)`,
		o.ID, o.Code, o.Title, nullable(o.Description), o.CreatedAt)
	return err
}

func (r Repo) GetGeneralObjective(ctx context.Context, id string) (domain.GeneralObjective, error) {
	var o domain.GeneralObjective
	err := r.DB.QueryRowContext(ctx, `SELECT id,code,title,COALESCE(description,''),created_at FROM general_objectives WHERE id=?`, id).
		Scan(&o.ID, &o.Code, &o.Title, &o.Description, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return o, ErrNotFound
	}
	return o, err
}

func (r Repo) ListGeneralObjectives(ctx context.Context) ([]domain.GeneralObjective, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,code,title,COALESCE(description,''),created_at FROM general_objectives ORDER BY code ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.GeneralObjective
	for rows.Next() {
		var o domain.GeneralObjective
		if err := rows.Scan(&o.ID, &o.Code, &o.Title, &o.Description, &o.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, o)
	}
	return res, rows.Err()
}

func (r Repo) UpdateGeneralObjective(ctx context.Context, o domain.GeneralObjective) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE general_objectives SET code=?,title=?,description=? WHERE id=?`,
		o.Code, o.Title, nullable(o.Description), o.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r Repo) DeleteGeneralObjective(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM general_objectives WHERE id=?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// --- specific objectives ---

func (r Repo) InsertSpecificObjective(ctx context.Context, o domain.SpecificObjective) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO specific_objectives(id,general_objective_id,code,title,description,created_at) VALUES (?,?,?,?,?,?)`,
		o.ID, o.GeneralObjectiveID, o.Code, o.Title, nullable(o.Description), o.CreatedAt)
	return err
}

func (r Repo) GetSpecificObjective(ctx context.Context, id string) (domain.SpecificObjective, error) {
	var o domain.SpecificObjective
	err := r.DB.QueryRowContext(ctx, `SELECT id,general_objective_id,code,title,COALESCE(description,''),created_at FROM specific_objectives WHERE id=?`, id).
		Scan(&o.ID, &o.GeneralObjectiveID, &o.Code, &o.Title, &o.Description, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return o, ErrNotFound
	}
	return o, err
}

func (r Repo) ListSpecificObjectives(ctx context.Context, generalObjectiveID string) ([]domain.SpecificObjective, error) {
	query := `SELECT id,general_objective_id,code,title,COALESCE(description,''),created_at FROM specific_objectives`
	var args []any
	if generalObjectiveID != "" {
		query += ` WHERE general_objective_id=?`
		args = append(args, generalObjectiveID)
	}
	query += ` ORDER BY code ASC`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.SpecificObjective
	for rows.Next() {
		var o domain.SpecificObjective
		if err := rows.Scan(&o.ID, &o.GeneralObjectiveID, &o.Code, &o.Title, &o.Description, &o.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, o)
	}
	return res, rows.Err()
}

func (r Repo) UpdateSpecificObjective(ctx context.Context, o domain.SpecificObjective) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE specific_objectives SET general_objective_id=?,code=?,title=?,description=? WHERE id=?`,
		o.GeneralObjectiveID, o.Code, o.Title, nullable(o.Description), o.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r Repo) DeleteSpecificObjective(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM specific_objectives WHERE id=?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// --- expected results ---

func (r Repo) InsertExpectedResult(ctx context.Context, e domain.ExpectedResult) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO expected_results(id,specific_objective_id,code,description,created_at) VALUES (?,?,?,?,?)`,
		e.ID, e.SpecificObjectiveID, e.Code, e.Description, e.CreatedAt)
	return err
}

func (r Repo) GetExpectedResult(ctx context.Context, id string) (domain.ExpectedResult, error) {
	var e domain.ExpectedResult
	err := r.DB.QueryRowContext(ctx, `SELECT id,specific_objective_id,code,description,created_at FROM expected_results WHERE id=?`, id).
		Scan(&e.ID, &e.SpecificObjectiveID, &e.Code, &e.Description, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return e, ErrNotFound
	}
	return e, err
}

func (r Repo) ListExpectedResults(ctx context.Context, specificObjectiveID string) ([]domain.ExpectedResult, error) {
	query := `SELECT id,specific_objective_id,code,description,created_at FROM expected_results`
	var args []any
	if specificObjectiveID != "" {
		query += ` WHERE specific_objective_id=?`
		args = append(args, specificObjectiveID)
	}
	query += ` ORDER BY code ASC`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.ExpectedResult
	for rows.Next() {
		var e domain.ExpectedResult
		if err := rows.Scan(&e.ID, &e.SpecificObjectiveID, &e.Code, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func (r Repo) UpdateExpectedResult(ctx context.Context, e domain.ExpectedResult) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE expected_results SET specific_objective_id=?,code=?,description=? WHERE id=?`,
		e.SpecificObjectiveID, e.Code, e.Description, e.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r Repo) DeleteExpectedResult(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM expected_results WHERE id=?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// --- PCOP entries ---

func (r Repo) InsertPCOPEntry(ctx context.Context, p domain.PCOPEntry) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO pcop_entries(id,code,label,unit_cost,created_at) VALUES (?,?,?,?,?)`,
		p.ID, p.Code, p.Label, p.UnitCost.String(), p.CreatedAt)
	return err
}

func (r Repo) GetPCOPEntry(ctx context.Context, id string) (domain.PCOPEntry, error) {
	var p domain.PCOPEntry
	var cost sql.NullString
	err := r.DB.QueryRowContext(ctx, `SELECT id,code,label,unit_cost,created_at FROM pcop_entries WHERE id=?`, id).
		Scan(&p.ID, &p.Code, &p.Label, &cost, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return p, ErrNotFound
	}
	if err != nil {
		return p, err
	}
	c, err := fromNullDecimal(cost)
	if err != nil {
		return p, err
	}
	if c != nil {
		p.UnitCost = *c
	}
	return p, nil
}

func (r Repo) ListPCOPEntries(ctx context.Context) ([]domain.PCOPEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,code,label,unit_cost,created_at FROM pcop_entries ORDER BY code ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.PCOPEntry
	for rows.Next() {
		var p domain.PCOPEntry
		var cost sql.NullString
		if err := rows.Scan(&p.ID, &p.Code, &p.Label, &cost, &p.CreatedAt); err != nil {
			return nil, err
		}
		c, err := fromNullDecimal(cost)
		if err != nil {
			return nil, err
		}
		if c != nil {
			p.UnitCost = *c
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (r Repo) UpdatePCOPEntry(ctx context.Context, p domain.PCOPEntry) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE pcop_entries SET code=?,label=?,unit_cost=? WHERE id=?`,
		p.Code, p.Label, p.UnitCost.String(), p.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r Repo) DeletePCOPEntry(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM pcop_entries WHERE id=?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
