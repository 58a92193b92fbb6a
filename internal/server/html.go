package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-formbuilder/internal/metrics"
	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	options := s.renderOptions
	options.Warning = s.warning
	s.warning = ""
	out, contentType, err := s.renderPage(r, options)
	s.mu.Unlock()
	if err != nil {
		s.logger.Error().Err(err).Msg("render page")
		http.Error(w, "failed to render form", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) formAddSection(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func() error {
		s.session.AddSection()
		return nil
	})
}

func (s *Server) formSelectSection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mutate(w, r, func() error {
		return s.session.SelectSection(id)
	})
}

func (s *Server) formAddField(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func() error {
		fieldType, err := model.ParseFieldType(r.PostForm.Get("type"))
		if err != nil {
			return errors.Join(builder.ErrUnknownFieldType, err)
		}
		_, err = s.session.AddField(fieldType)
		return err
	})
}

func (s *Server) formDeleteItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mutate(w, r, func() error {
		return s.session.DeleteItem(id)
	})
}

func (s *Server) formDeleteField(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mutate(w, r, func() error {
		return s.session.DeleteField(id)
	})
}

func (s *Server) formAddOption(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mutate(w, r, func() error {
		s.session.AddOption(id, r.PostForm.Get("option-"+id))
		return nil
	})
}

func (s *Server) formSubmit(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func() error {
		result := s.session.Submit()
		if s.metrics {
			metrics.RecordSubmission(result.Valid)
		}
		return nil
	})
}

// mutate applies posted field values, runs action and redirects back to the
// page. Precondition failures become the page warning.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, action func() error) {
	if err := parseForm(r); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.applyFormValues(r)
	if err := action(); err != nil {
		s.warning = builder.Warning(err)
		if s.warning == "" {
			s.warning = err.Error()
		}
		s.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("form action rejected")
		if s.metrics {
			metrics.RecordRejected(rejectReason(err))
		}
	}
	s.mu.Unlock()

	http.Redirect(w, r, s.renderOptions.ActionPrefix+"/", http.StatusSeeOther)
}

// applyFormValues stores every rendered field whose posted value differs
// from the session. Fields are recognised by their present-{id} marker so
// hidden fields keep their values.
func (s *Server) applyFormValues(r *http.Request) {
	for _, section := range s.session.Sections() {
		for _, field := range section.Children {
			if r.PostForm.Get("present-"+field.ID) == "" {
				continue
			}
			next, ok := formValue(r, field)
			if !ok {
				continue
			}
			current, had := s.session.Value(field.ID)
			if !changed(current, had, next) {
				continue
			}
			err := s.session.Change(field.ID, next)
			var fieldErr *validation.FieldValidationError
			if err != nil && !errors.As(err, &fieldErr) {
				s.logger.Warn().Err(err).Str("field", field.ID).Msg("apply form value")
			}
		}
	}
}

func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxUploadMemory)
	}
	return r.ParseForm()
}

// renderPage must be called with s.mu held.
func (s *Server) renderPage(r *http.Request, options render.RenderOptions) ([]byte, string, error) {
	view, err := render.NewFormView(s.session)
	if err != nil {
		return nil, "", err
	}
	s.observe(view)
	out, err := s.renderer.Render(r.Context(), view, options)
	if err != nil {
		return nil, "", err
	}
	return out, s.renderer.ContentType(), nil
}

// observe publishes form gauges when metrics are enabled.
func (s *Server) observe(view render.FormView) {
	if !s.metrics {
		return
	}
	count := 0
	for _, section := range view.Sections {
		count += len(section.Fields)
	}
	metrics.SetFieldCount(count)
}
