package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/rulego/indicators/condition"
	"github.com/rulego/indicators/model"
	"github.com/rulego/indicators/store"
)

const indicatorColumns = `id, name, description, indicator_type, unit, baseline, target,
	formula, filter_criteria, is_active, created_at, updated_at`

type indicatorRepository struct {
	db *sqlx.DB
}

// NewIndicatorRepository creates an indicator repository backed by db.
func NewIndicatorRepository(db *sqlx.DB) store.IndicatorRepository {
	return &indicatorRepository{db: db}
}

// indicatorRow mirrors the indicators table.
type indicatorRow struct {
	ID             int64           `db:"id"`
	Name           string          `db:"name"`
	Description    string          `db:"description"`
	Type           string          `db:"indicator_type"`
	Unit           string          `db:"unit"`
	Baseline       sql.NullFloat64 `db:"baseline"`
	Target         sql.NullFloat64 `db:"target"`
	Formula        string          `db:"formula"`
	FilterCriteria []byte          `db:"filter_criteria"`
	IsActive       bool            `db:"is_active"`
	CreatedAt      sql.NullTime    `db:"created_at"`
	UpdatedAt      sql.NullTime    `db:"updated_at"`
}

func (row indicatorRow) toModel() (*model.Indicator, error) {
	ind := &model.Indicator{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Type:        model.IndicatorType(row.Type),
		Unit:        row.Unit,
		Baseline:    fromNull(row.Baseline),
		Target:      fromNull(row.Target),
		Formula:     row.Formula,
		IsActive:    row.IsActive,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
	if len(row.FilterCriteria) > 0 {
		var c condition.Criteria
		if err := json.Unmarshal(row.FilterCriteria, &c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal filter criteria: %w", err)
		}
		ind.FilterCriteria = c
	}
	return ind, nil
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func toNull(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func criteriaJSON(c condition.Criteria) ([]byte, error) {
	if c == nil {
		c = condition.Criteria{}
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal filter criteria: %w", err)
	}
	return b, nil
}

func (r *indicatorRepository) Create(ctx context.Context, ind *model.Indicator) error {
	filterJSON, err := criteriaJSON(ind.FilterCriteria)
	if err != nil {
		return err
	}

	query := `INSERT INTO indicators (
		name, description, indicator_type, unit, baseline, target, formula, filter_criteria, is_active
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9
	) RETURNING id, created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		ind.Name, ind.Description, string(ind.Type), ind.Unit, toNull(ind.Baseline), toNull(ind.Target),
		ind.Formula, filterJSON, ind.IsActive,
	).Scan(&ind.ID, &ind.CreatedAt, &ind.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create indicator: %w", err)
	}
	return nil
}

func (r *indicatorRepository) Get(ctx context.Context, id int64) (*model.Indicator, error) {
	query := `SELECT ` + indicatorColumns + ` FROM indicators WHERE id = $1`

	var row indicatorRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get indicator: %w", err)
	}
	return row.toModel()
}

func (r *indicatorRepository) List(ctx context.Context) ([]*model.Indicator, error) {
	query := `SELECT ` + indicatorColumns + ` FROM indicators ORDER BY id`

	var rows []indicatorRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list indicators: %w", err)
	}
	out := make([]*model.Indicator, 0, len(rows))
	for _, row := range rows {
		ind, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, ind)
	}
	return out, nil
}

func (r *indicatorRepository) Update(ctx context.Context, ind *model.Indicator) error {
	filterJSON, err := criteriaJSON(ind.FilterCriteria)
	if err != nil {
		return err
	}

	query := `UPDATE indicators SET
		name = $1, description = $2, indicator_type = $3, unit = $4, baseline = $5, target = $6,
		formula = $7, filter_criteria = $8, is_active = $9, updated_at = now()
	WHERE id = $10
	RETURNING created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		ind.Name, ind.Description, string(ind.Type), ind.Unit, toNull(ind.Baseline), toNull(ind.Target),
		ind.Formula, filterJSON, ind.IsActive, ind.ID,
	).Scan(&ind.CreatedAt, &ind.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return fmt.Errorf("failed to update indicator: %w", err)
	}
	return nil
}

func (r *indicatorRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM indicators WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete indicator: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
