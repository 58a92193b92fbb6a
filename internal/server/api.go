package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-formbuilder/internal/metrics"
	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

const maxJSONBody = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

type addFieldRequest struct {
	Type string `json:"type"`
}

type addOptionRequest struct {
	Option string `json:"option"`
}

type changeRequest struct {
	Value json.RawMessage `json:"value"`
}

type changeResponse struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
	Error string `json:"error"`
}

type conditionRequest struct {
	DependsOn string `json:"dependsOn"`
	Condition string `json:"condition"`
}

type submitResponse struct {
	Valid  bool           `json:"valid"`
	Data   model.FormData `json:"data,omitempty"`
	Errors model.Errors   `json:"errors,omitempty"`
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	view, err := render.NewFormView(s.session)
	s.mu.Unlock()
	s.observe(view)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAddSection(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	section := s.session.AddSection()
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, section)
}

func (s *Server) handleSelectSection(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	err := s.session.SelectSection(chi.URLParam(r, "id"))
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddField(w http.ResponseWriter, r *http.Request) {
	var req addFieldRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	fieldType, err := model.ParseFieldType(req.Type)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	field, err := s.session.AddField(fieldType)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, field)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	err := s.session.DeleteItem(chi.URLParam(r, "id"))
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteField(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	err := s.session.DeleteField(chi.URLParam(r, "id"))
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddOption(w http.ResponseWriter, r *http.Request) {
	var req addOptionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.session.Field(id); !ok {
		s.writeError(w, http.StatusNotFound, builder.ErrFieldNotFound)
		return
	}
	if !s.session.AddOption(id, req.Option) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "option ignored"})
		return
	}
	field, _ := s.session.Field(id)
	writeJSON(w, http.StatusOK, field)
}

func (s *Server) handleChange(w http.ResponseWriter, r *http.Request) {
	var req changeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	field, ok := s.session.Field(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, builder.ErrFieldNotFound)
		return
	}
	value, err := decodeValue(field.Type, req.Value)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	err = s.session.Change(id, value)
	var fieldErr *validation.FieldValidationError
	if err != nil && !errors.As(err, &fieldErr) {
		s.logger.Warn().Err(err).Str("field", id).Msg("change")
	}
	stored, _ := s.session.Value(id)
	writeJSON(w, http.StatusOK, changeResponse{ID: id, Value: stored, Error: s.session.Errors()[id]})
}

func (s *Server) handleSetCondition(w http.ResponseWriter, r *http.Request) {
	var req conditionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	err := s.session.SetCondition(chi.URLParam(r, "id"), req.DependsOn, req.Condition)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	result := s.session.Submit()
	s.mu.Unlock()
	if s.metrics {
		metrics.RecordSubmission(result.Valid)
	}

	if !result.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, submitResponse{Errors: result.Errors})
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{Valid: true, Data: result.Data})
}

// statusFor maps builder sentinels to HTTP statuses. Anything else is
// treated as a rejected condition or value.
func statusFor(err error) int {
	switch {
	case errors.Is(err, builder.ErrNoSectionSelected):
		return http.StatusConflict
	case errors.Is(err, builder.ErrSectionNotFound),
		errors.Is(err, builder.ErrFieldNotFound),
		errors.Is(err, builder.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, builder.ErrUnknownFieldType):
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

// rejectReason is the metrics label for a refused request.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, builder.ErrNoSectionSelected):
		return "no_section_selected"
	case errors.Is(err, builder.ErrSectionNotFound),
		errors.Is(err, builder.ErrFieldNotFound),
		errors.Is(err, builder.ErrItemNotFound):
		return "not_found"
	case errors.Is(err, builder.ErrUnknownFieldType):
		return "unknown_type"
	default:
		return "invalid"
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	msg := builder.Warning(err)
	if msg == "" {
		msg = err.Error()
	}
	if s.metrics && status < http.StatusInternalServerError {
		metrics.RecordRejected(rejectReason(err))
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("server: invalid JSON body: " + err.Error())
	}
	return nil
}
