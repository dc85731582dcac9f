// Package store defines the persistence ports of the indicator service.
package store

import (
	"context"
	"errors"

	"github.com/rulego/indicators/model"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// SurveyRepository persists surveys together with their rows.
type SurveyRepository interface {
	Create(ctx context.Context, s *model.Survey) error
	Get(ctx context.Context, id int64) (*model.Survey, error)
	// List returns surveys without their rows.
	List(ctx context.Context) ([]*model.Survey, error)
}

// IndicatorRepository persists indicator definitions.
type IndicatorRepository interface {
	Create(ctx context.Context, ind *model.Indicator) error
	Get(ctx context.Context, id int64) (*model.Indicator, error)
	List(ctx context.Context) ([]*model.Indicator, error)
	Update(ctx context.Context, ind *model.Indicator) error
	Delete(ctx context.Context, id int64) error
}
