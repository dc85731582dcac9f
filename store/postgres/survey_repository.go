// Package postgres implements the store ports on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/rulego/indicators/model"
	"github.com/rulego/indicators/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type surveyRepository struct {
	db *sqlx.DB
}

// NewSurveyRepository creates a survey repository backed by db.
func NewSurveyRepository(db *sqlx.DB) store.SurveyRepository {
	return &surveyRepository{db: db}
}

func (r *surveyRepository) Create(ctx context.Context, s *model.Survey) error {
	fieldsJSON, err := json.Marshal(s.Fields)
	if err != nil {
		return fmt.Errorf("failed to marshal fields: %w", err)
	}
	rows := s.Rows
	if rows == nil {
		rows = []map[string]any{}
	}
	rowsJSON, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal rows: %w", err)
	}
	s.RowCount = len(s.Rows)

	query := `INSERT INTO surveys (name, fields, records, row_count)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at`

	err = r.db.QueryRowContext(ctx, query, s.Name, fieldsJSON, rowsJSON, s.RowCount).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create survey: %w", err)
	}
	return nil
}

func (r *surveyRepository) Get(ctx context.Context, id int64) (*model.Survey, error) {
	query := `SELECT id, name, fields, records, row_count, created_at FROM surveys WHERE id = $1`

	var s model.Survey
	var fieldsJSON, rowsJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.Name, &fieldsJSON, &rowsJSON, &s.RowCount, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	if err := json.Unmarshal(fieldsJSON, &s.Fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fields: %w", err)
	}
	if err := json.Unmarshal(rowsJSON, &s.Rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rows: %w", err)
	}
	return &s, nil
}

func (r *surveyRepository) List(ctx context.Context) ([]*model.Survey, error) {
	query := `SELECT id, name, fields, row_count, created_at FROM surveys ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query surveys: %w", err)
	}
	defer rows.Close()

	var out []*model.Survey
	for rows.Next() {
		var s model.Survey
		var fieldsJSON []byte
		if err := rows.Scan(&s.ID, &s.Name, &fieldsJSON, &s.RowCount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan survey: %w", err)
		}
		if err := json.Unmarshal(fieldsJSON, &s.Fields); err != nil {
			return nil, fmt.Errorf("failed to unmarshal fields: %w", err)
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate surveys: %w", err)
	}
	return out, nil
}
