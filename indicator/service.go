// Package indicator implements the indicator management service: surveys,
// indicator definitions and their evaluation.
package indicator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rulego/indicators"
	"github.com/rulego/indicators/condition"
	"github.com/rulego/indicators/dataset"
	apperrors "github.com/rulego/indicators/internal/errors"
	"github.com/rulego/indicators/logger"
	"github.com/rulego/indicators/model"
	"github.com/rulego/indicators/store"
)

// Service ties the formula engine to the stored surveys and indicators.
type Service struct {
	engine     *indicators.Engine
	surveys    store.SurveyRepository
	indicators store.IndicatorRepository
	threshold  float64
	logger     logger.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithNumericThreshold sets the share of parseable values above which an
// uploaded column is typed numeric.
func WithNumericThreshold(t float64) Option {
	return func(s *Service) {
		if t > 0 && t <= 1 {
			s.threshold = t
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		s.logger = log
	}
}

// NewService creates a Service.
func NewService(engine *indicators.Engine, surveys store.SurveyRepository, inds store.IndicatorRepository, opts ...Option) *Service {
	s := &Service{
		engine:     engine,
		surveys:    surveys,
		indicators: inds,
		threshold:  dataset.DefaultNumericThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.GetDefault()
	}
	s.logger = s.logger.With("component", "indicator")
	return s
}

func storeError(err error, resource string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NotFound(resource)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(err, "request cancelled")
	}
	return apperrors.DatabaseError(fmt.Sprintf("failed to load %s", resource), err)
}

func (s *Service) survey(ctx context.Context, id int64) (*model.Survey, error) {
	sv, err := s.surveys.Get(ctx, id)
	if err != nil {
		return nil, storeError(err, fmt.Sprintf("survey %d", id))
	}
	return sv, nil
}

// ValidateFormula checks a formula. When surveyID is set, field references
// are resolved against that survey's schema.
func (s *Service) ValidateFormula(ctx context.Context, src string, surveyID *int64) (indicators.ValidationResult, error) {
	var schema *dataset.Schema
	if surveyID != nil {
		sv, err := s.survey(ctx, *surveyID)
		if err != nil {
			return indicators.ValidationResult{}, err
		}
		schema = sv.Schema()
	}
	return s.engine.Validate(src, schema), nil
}

// Preview evaluates an unsaved formula against a survey.
func (s *Service) Preview(ctx context.Context, surveyID int64, src string, criteria condition.Criteria) (indicators.PreviewResult, error) {
	sv, err := s.survey(ctx, surveyID)
	if err != nil {
		return indicators.PreviewResult{}, err
	}
	return s.engine.Preview(ctx, src, sv.Dataset(), criteria), nil
}

// Compute evaluates stored indicators against a survey. An empty ids list
// selects every active indicator. Each indicator uses its own filter criteria.
func (s *Service) Compute(ctx context.Context, surveyID int64, ids []int64) (indicators.ComputeReport, error) {
	sv, err := s.survey(ctx, surveyID)
	if err != nil {
		return indicators.ComputeReport{}, err
	}
	var selected []*model.Indicator
	if len(ids) == 0 {
		all, err := s.indicators.List(ctx)
		if err != nil {
			return indicators.ComputeReport{}, storeError(err, "indicators")
		}
		for _, ind := range all {
			if ind.IsActive {
				selected = append(selected, ind)
			}
		}
	} else {
		for _, id := range ids {
			ind, err := s.GetIndicator(ctx, id)
			if err != nil {
				return indicators.ComputeReport{}, err
			}
			selected = append(selected, ind)
		}
	}

	specs := make([]indicators.IndicatorSpec, len(selected))
	for i, ind := range selected {
		specs[i] = indicators.IndicatorSpec{ID: ind.ID, Name: ind.Name, Formula: ind.Formula, Filter: ind.FilterCriteria}
	}
	s.logger.Info("survey %d: computing %d indicators", surveyID, len(specs))
	return s.engine.Compute(ctx, sv.Dataset(), specs), nil
}

// checkIndicator validates required fields and formula syntax.
func (s *Service) checkIndicator(ind *model.Indicator) error {
	if err := ind.Validate(); err != nil {
		return apperrors.ValidationError(err.Error())
	}
	if res := s.engine.Validate(ind.Formula, nil); !res.Valid {
		return apperrors.ValidationError("invalid formula: " + res.Details.Error())
	}
	return nil
}

// CreateIndicator stores a new indicator and sets its ID and timestamps.
func (s *Service) CreateIndicator(ctx context.Context, ind *model.Indicator) error {
	if err := s.checkIndicator(ind); err != nil {
		return err
	}
	if err := s.indicators.Create(ctx, ind); err != nil {
		return apperrors.DatabaseError("failed to create indicator", err)
	}
	s.logger.Info("created indicator %d (%s)", ind.ID, ind.Name)
	return nil
}

// GetIndicator returns a stored indicator.
func (s *Service) GetIndicator(ctx context.Context, id int64) (*model.Indicator, error) {
	ind, err := s.indicators.Get(ctx, id)
	if err != nil {
		return nil, storeError(err, fmt.Sprintf("indicator %d", id))
	}
	return ind, nil
}

// ListIndicators returns all indicators ordered by ID.
func (s *Service) ListIndicators(ctx context.Context) ([]*model.Indicator, error) {
	list, err := s.indicators.List(ctx)
	if err != nil {
		return nil, storeError(err, "indicators")
	}
	return list, nil
}

// UpdateIndicator applies a partial update and revalidates the result.
func (s *Service) UpdateIndicator(ctx context.Context, id int64, patch model.IndicatorPatch) (*model.Indicator, error) {
	ind, err := s.GetIndicator(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(ind)
	if err := s.checkIndicator(ind); err != nil {
		return nil, err
	}
	if err := s.indicators.Update(ctx, ind); err != nil {
		return nil, storeError(err, fmt.Sprintf("indicator %d", id))
	}
	return ind, nil
}

// DeleteIndicator removes an indicator.
func (s *Service) DeleteIndicator(ctx context.Context, id int64) error {
	if err := s.indicators.Delete(ctx, id); err != nil {
		return storeError(err, fmt.Sprintf("indicator %d", id))
	}
	s.logger.Info("deleted indicator %d", id)
	return nil
}

// CreateSurvey infers a schema from rows and stores the normalised survey.
func (s *Service) CreateSurvey(ctx context.Context, name string, rows []map[string]any) (*model.Survey, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.ValidationError("survey name is required")
	}
	ds := dataset.FromRecords(rows, s.threshold)
	sv := &model.Survey{
		Name:   name,
		Fields: ds.Schema().Fields(),
		Rows:   ds.Records(),
	}
	if err := s.surveys.Create(ctx, sv); err != nil {
		return nil, apperrors.DatabaseError("failed to create survey", err)
	}
	s.logger.Info("created survey %d (%s) with %d rows and %d fields", sv.ID, sv.Name, len(rows), len(sv.Fields))
	return sv, nil
}

// GetSurvey returns a stored survey with its rows.
func (s *Service) GetSurvey(ctx context.Context, id int64) (*model.Survey, error) {
	return s.survey(ctx, id)
}

// ListSurveys returns all surveys without their rows.
func (s *Service) ListSurveys(ctx context.Context) ([]*model.Survey, error) {
	list, err := s.surveys.List(ctx)
	if err != nil {
		return nil, storeError(err, "surveys")
	}
	return list, nil
}

// SurveyFields profiles every field of a survey for the field browser.
func (s *Service) SurveyFields(ctx context.Context, id int64) ([]dataset.FieldProfile, error) {
	sv, err := s.survey(ctx, id)
	if err != nil {
		return nil, err
	}
	return dataset.Profile(sv.Dataset()), nil
}
