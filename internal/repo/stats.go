package repo

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

// TableCounts is the raw material for the dashboard.
type TableCounts struct {
	Users              int
	Structures         int
	Directions         int
	Services           int
	Divisions          int
	GeneralObjectives  int
	SpecificObjectives int
	ExpectedResults    int
	PCOPEntries        int
	Activities         int
	Suivis             int
}

func (r Repo) CountAll(ctx context.Context) (TableCounts, error) {
	var c TableCounts
	for _, q := range []struct {
		table string
		dst   *int
	}{
		{"users", &c.Users},
		{"structures", &c.Structures},
		{"directions", &c.Directions},
		{"services", &c.Services},
		{"divisions", &c.Divisions},
		{"general_objectives", &c.GeneralObjectives},
		{"specific_objectives", &c.SpecificObjectives},
		{"expected_results", &c.ExpectedResults},
		{"pcop_entries", &c.PCOPEntries},
		{"activities", &c.Activities},
		{"suivis", &c.Suivis},
	} {
		if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+q.table).Scan(q.dst); err != nil {
			return c, err
		}
	}
	return c, nil
}

func (r Repo) CountUsersByRole(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := map[string]int{}
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		res[role] = n
	}
	return res, rows.Err()
}

func (r Repo) CountActivitiesByStructure(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT s.name, COUNT(a.id)
FROM structures s LEFT JOIN activities a ON a.structure_id = s.id
GROUP BY s.id ORDER BY s.code ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := map[string]int{}
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		res[name] = n
	}
	return res, rows.Err()
}

// TotalActivityAmount sums the amount column. Amounts are TEXT decimals, so
// the sum happens here rather than in SQL.
func (r Repo) TotalActivityAmount(ctx context.Context) (decimal.Decimal, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT amount FROM activities WHERE amount IS NOT NULL`)
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()
	total := decimal.Zero
	for rows.Next() {
		var amount sql.NullString
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, err
		}
		d, err := fromNullDecimal(amount)
		if err != nil {
			return decimal.Zero, err
		}
		if d != nil {
			total = total.Add(*d)
		}
	}
	return total, rows.Err()
}

func (r Repo) AverageAdvancement(ctx context.Context) (float64, error) {
	var avg sql.NullFloat64
	err := r.DB.QueryRowContext(ctx, `SELECT AVG(advancement) FROM suivis WHERE advancement IS NOT NULL`).Scan(&avg)
	if err != nil {
		return 0, err
	}
	return avg.Float64, nil
}
