// Package memory implements the store ports in process memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rulego/indicators/model"
	"github.com/rulego/indicators/store"
)

// Store keeps surveys and indicators in maps guarded by one mutex.
type Store struct {
	mu         sync.RWMutex
	surveys    map[int64]*model.Survey
	indicators map[int64]*model.Indicator
	nextSurvey int64
	nextInd    int64
	now        func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		surveys:    make(map[int64]*model.Survey),
		indicators: make(map[int64]*model.Indicator),
		now:        time.Now,
	}
}

// Surveys returns the survey repository view of the store.
func (s *Store) Surveys() store.SurveyRepository { return surveyRepo{s} }

// Indicators returns the indicator repository view of the store.
func (s *Store) Indicators() store.IndicatorRepository { return indicatorRepo{s} }

type surveyRepo struct{ s *Store }

func (r surveyRepo) Create(ctx context.Context, sv *model.Survey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextSurvey++
	sv.ID = r.s.nextSurvey
	sv.CreatedAt = r.s.now().UTC()
	sv.RowCount = len(sv.Rows)
	cp := *sv
	r.s.surveys[sv.ID] = &cp
	return nil
}

func (r surveyRepo) Get(ctx context.Context, id int64) (*model.Survey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sv, ok := r.s.surveys[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *sv
	return &cp, nil
}

func (r surveyRepo) List(ctx context.Context) ([]*model.Survey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*model.Survey, 0, len(r.s.surveys))
	for _, sv := range r.s.surveys {
		cp := *sv
		cp.Rows = nil
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type indicatorRepo struct{ s *Store }

func (r indicatorRepo) Create(ctx context.Context, ind *model.Indicator) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextInd++
	now := r.s.now().UTC()
	ind.ID = r.s.nextInd
	ind.CreatedAt = now
	ind.UpdatedAt = now
	cp := *ind
	r.s.indicators[ind.ID] = &cp
	return nil
}

func (r indicatorRepo) Get(ctx context.Context, id int64) (*model.Indicator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ind, ok := r.s.indicators[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *ind
	return &cp, nil
}

func (r indicatorRepo) List(ctx context.Context) ([]*model.Indicator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*model.Indicator, 0, len(r.s.indicators))
	for _, ind := range r.s.indicators {
		cp := *ind
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r indicatorRepo) Update(ctx context.Context, ind *model.Indicator) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.indicators[ind.ID]
	if !ok {
		return store.ErrNotFound
	}
	ind.CreatedAt = old.CreatedAt
	ind.UpdatedAt = r.s.now().UTC()
	cp := *ind
	r.s.indicators[ind.ID] = &cp
	return nil
}

func (r indicatorRepo) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.indicators[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.indicators, id)
	return nil
}
