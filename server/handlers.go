package server

import (
	"net/http"

	"github.com/rulego/indicators/condition"
	apperrors "github.com/rulego/indicators/internal/errors"
	"github.com/rulego/indicators/model"
)

type validateRequest struct {
	Formula  string `json:"formula"`
	SurveyID *int64 `json:"survey_id"`
}

type previewRequest struct {
	SurveyID       int64              `json:"survey_id"`
	Formula        string             `json:"formula"`
	FilterCriteria condition.Criteria `json:"filter_criteria"`
}

type computeRequest struct {
	IndicatorIDs []int64 `json:"indicator_ids"`
}

type surveyRequest struct {
	Name string           `json:"name"`
	Rows []map[string]any `json:"rows"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleValidateFormula(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := decode(w, r, &req, false); err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.svc.ValidateFormula(r.Context(), req.Formula, req.SurveyID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decode(w, r, &req, false); err != nil {
		s.writeError(w, err)
		return
	}
	if req.SurveyID <= 0 {
		s.writeError(w, apperrors.InvalidInput("survey_id is required"))
		return
	}
	res, err := s.svc.Preview(r.Context(), req.SurveyID, req.Formula, req.FilterCriteria)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"result": res})
}

func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	surveyID, err := idParam(r, "surveyID")
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req computeRequest
	if err := decode(w, r, &req, true); err != nil {
		s.writeError(w, err)
		return
	}
	report, err := s.svc.Compute(r.Context(), surveyID, req.IndicatorIDs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleListIndicators(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListIndicators(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateIndicator(w http.ResponseWriter, r *http.Request) {
	ind := model.Indicator{IsActive: true}
	if err := decode(w, r, &ind, false); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.svc.CreateIndicator(r.Context(), &ind); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, ind)
}

func (s *Server) handleGetIndicator(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	ind, err := s.svc.GetIndicator(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ind)
}

func (s *Server) handleUpdateIndicator(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	var patch model.IndicatorPatch
	if err := decode(w, r, &patch, false); err != nil {
		s.writeError(w, err)
		return
	}
	ind, err := s.svc.UpdateIndicator(r.Context(), id, patch)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ind)
}

func (s *Server) handleDeleteIndicator(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.svc.DeleteIndicator(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSurveys(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListSurveys(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateSurvey(w http.ResponseWriter, r *http.Request) {
	var req surveyRequest
	if err := decode(w, r, &req, false); err != nil {
		s.writeError(w, err)
		return
	}
	sv, err := s.svc.CreateSurvey(r.Context(), req.Name, req.Rows)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, sv)
}

func (s *Server) handleGetSurvey(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	sv, err := s.svc.GetSurvey(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sv)
}

func (s *Server) handleSurveyFields(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	fields, err := s.svc.SurveyFields(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, fields)
}
