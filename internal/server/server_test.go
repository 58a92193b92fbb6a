package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/renderers/vanilla"
	"github.com/goliatone/go-formbuilder/pkg/visibility/expr"
)

func newTestServer(t *testing.T, options ...Option) (http.Handler, *builder.Session) {
	t.Helper()

	renderer, err := vanilla.New()
	require.NoError(t, err)

	session := builder.New(builder.WithEvaluator(expr.New()))
	srv, err := New(session, append([]Option{WithRenderer(renderer)}, options...)...)
	require.NoError(t, err)
	return srv.Handler(), session
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestNew_RequiresSessionAndRenderer(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)

	_, err = New(builder.New())
	require.Error(t, err)
}

func TestAPI_AddFieldWithoutSection(t *testing.T) {
	h, _ := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/sections/fields", map[string]string{"type": "text"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Please select a section first!", decodeBody(t, rec)["error"])
}

func TestAPI_BuildFillSubmit(t *testing.T) {
	h, _ := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/sections", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Section 1", decodeBody(t, rec)["label"])

	rec = doJSON(t, h, http.MethodPost, "/api/sections/fields", map[string]string{"type": "text"})
	require.Equal(t, http.StatusCreated, rec.Code)
	fieldID := decodeBody(t, rec)["id"].(string)

	rec = doJSON(t, h, http.MethodPut, "/api/fields/"+fieldID+"/value", map[string]any{"value": "ab"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Minimum length is 3 characters", decodeBody(t, rec)["error"])

	rec = doJSON(t, h, http.MethodPost, "/api/submit", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["valid"])
	assert.Equal(t, map[string]any{fieldID: "Minimum length is 3 characters"}, body["errors"])

	rec = doJSON(t, h, http.MethodPut, "/api/fields/"+fieldID+"/value", map[string]any{"value": "hello"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", decodeBody(t, rec)["error"])

	rec = doJSON(t, h, http.MethodPost, "/api/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, map[string]any{fieldID: "hello"}, body["data"])

	rec = doJSON(t, h, http.MethodGet, "/api/form", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	form := decodeBody(t, rec)
	assert.Equal(t, true, form["hasSubmission"])
	assert.Equal(t, true, form["canSubmit"])
}

func TestAPI_ValueDecodingPerType(t *testing.T) {
	h, session := newTestServer(t)
	session.AddSection()
	text, _ := session.AddField(model.FieldTypeText)
	boxes, _ := session.AddField(model.FieldTypeCheckbox)
	date, _ := session.AddField(model.FieldTypeDate)
	file, _ := session.AddField(model.FieldTypeFile)
	session.AddOption(boxes.ID, "a")

	cases := []struct {
		id        string
		value     any
		wantError string
		wantValue any
	}{
		{id: text.ID, value: 42, wantError: "Expected string, received number", wantValue: float64(42)},
		{id: boxes.ID, value: []string{"a"}, wantValue: []string{"a"}},
		{id: boxes.ID, value: []string{}, wantError: "Please select at least one option", wantValue: []string{}},
		{id: date.ID, value: "2024-05-17", wantValue: time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)},
		{id: date.ID, value: "17/05/2024", wantError: "Invalid date", wantValue: time.Time{}},
		{id: date.ID, value: nil, wantError: "Required", wantValue: nil},
		{id: file.ID, value: map[string]any{"name": "cv.pdf", "size": 10}, wantValue: model.FileRef{Name: "cv.pdf", Size: 10}},
	}

	for _, tc := range cases {
		rec := doJSON(t, h, http.MethodPut, "/api/fields/"+tc.id+"/value", map[string]any{"value": tc.value})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, tc.wantError, decodeBody(t, rec)["error"], "value %v", tc.value)

		stored, _ := session.Value(tc.id)
		assert.Equal(t, tc.wantValue, stored, "value %v", tc.value)
	}
}

func TestAPI_NotFoundAndBadRequests(t *testing.T) {
	h, session := newTestServer(t)
	session.AddSection()
	text, _ := session.AddField(model.FieldTypeText)

	assert.Equal(t, http.StatusNotFound, doJSON(t, h, http.MethodPut, "/api/fields/missing/value", map[string]any{"value": "x"}).Code)
	// Deleting an unknown item is a no-op, like filtering an empty match.
	assert.Equal(t, http.StatusNoContent, doJSON(t, h, http.MethodDelete, "/api/items/missing", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, h, http.MethodDelete, "/api/fields/missing", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, h, http.MethodPost, "/api/sections/missing/select", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, h, http.MethodPost, "/api/sections/fields", map[string]string{"type": "slider"}).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, h, http.MethodPut, "/api/fields/"+text.ID+"/value", map[string]any{"other": 1}).Code)
}

func TestAPI_OptionsAndDeletes(t *testing.T) {
	h, session := newTestServer(t)
	section := session.AddSection()
	dropdown, _ := session.AddField(model.FieldTypeDropdown)
	text, _ := session.AddField(model.FieldTypeText)

	rec := doJSON(t, h, http.MethodPost, "/api/fields/"+dropdown.ID+"/options", map[string]string{"option": " red "})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"red"}, decodeBody(t, rec)["options"])

	rec = doJSON(t, h, http.MethodPost, "/api/fields/"+text.ID+"/options", map[string]string{"option": "red"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/fields/"+text.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, ok := session.Field(text.ID)
	assert.False(t, ok)

	rec = doJSON(t, h, http.MethodDelete, "/api/items/"+section.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, session.Sections())
	assert.Equal(t, "", session.Selected())
}

func TestAPI_Condition(t *testing.T) {
	h, session := newTestServer(t)
	session.AddSection()
	trigger, _ := session.AddField(model.FieldTypeText)
	dependent, _ := session.AddField(model.FieldTypePhone)

	rec := doJSON(t, h, http.MethodPut, "/api/items/"+dependent.ID+"/condition", map[string]string{
		"dependsOn": trigger.ID,
		"condition": `value == "show"`,
	})
	require.Equal(t, http.StatusNoContent, rec.Code)
	field, _ := session.Field(dependent.ID)
	assert.False(t, field.Visible)

	doJSON(t, h, http.MethodPut, "/api/fields/"+trigger.ID+"/value", map[string]any{"value": "show"})
	field, _ = session.Field(dependent.ID)
	assert.True(t, field.Visible)

	rec = doJSON(t, h, http.MethodPut, "/api/items/"+dependent.ID+"/condition", map[string]string{
		"dependsOn": trigger.ID,
		"condition": "value ==",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func postForm(t *testing.T, h http.Handler, path string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func getPage(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	return rec.Body.String()
}

func TestHTML_WarningIsShownOnce(t *testing.T) {
	h, _ := newTestServer(t)

	rec := postForm(t, h, "/form/fields", url.Values{"type": {"text"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	assert.Contains(t, getPage(t, h), "Please select a section first!")
	assert.NotContains(t, getPage(t, h), "Please select a section first!")
}

func TestHTML_ToolbarFlow(t *testing.T) {
	h, session := newTestServer(t)

	postForm(t, h, "/form/sections", nil)
	postForm(t, h, "/form/sections", nil)
	postForm(t, h, "/form/sections/1/select", nil)
	postForm(t, h, "/form/fields", url.Values{"type": {"radio"}})
	postForm(t, h, "/form/fields/3/options", url.Values{"option-3": {"yes"}})

	sections := session.Sections()
	require.Len(t, sections, 2)
	require.Len(t, sections[0].Children, 1)
	assert.Equal(t, []string{"yes"}, sections[0].Children[0].Options)

	page := getPage(t, h)
	assert.Contains(t, page, "Radio Field")
	assert.Contains(t, page, `value="yes"`)

	postForm(t, h, "/form/fields/3/delete", nil)
	postForm(t, h, "/form/items/2/delete", nil)
	require.Len(t, session.Sections(), 1)
	assert.False(t, session.HasFields())
}

func TestHTML_MultipartSubmitAppliesChangedValues(t *testing.T) {
	h, session := newTestServer(t)
	session.AddSection()
	text, _ := session.AddField(model.FieldTypeText)
	boxes, _ := session.AddField(model.FieldTypeCheckbox)
	file, _ := session.AddField(model.FieldTypeFile)
	untouched, _ := session.AddField(model.FieldTypePhone)
	session.AddOption(boxes.ID, "a")
	session.AddOption(boxes.ID, "b")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, id := range []string{text.ID, boxes.ID, file.ID, untouched.ID} {
		require.NoError(t, mw.WriteField("present-"+id, "1"))
	}
	require.NoError(t, mw.WriteField("field-"+text.ID, "hello"))
	require.NoError(t, mw.WriteField("field-"+boxes.ID, "a"))
	require.NoError(t, mw.WriteField("field-"+boxes.ID, "b"))
	require.NoError(t, mw.WriteField("field-"+untouched.ID, ""))
	part, err := mw.CreateFormFile("field-"+file.ID, "cv.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/form/submit", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	data := session.FormData()
	assert.Equal(t, "hello", data[text.ID])
	assert.Equal(t, []string{"a", "b"}, data[boxes.ID])
	ref, ok := data[file.ID].(model.FileRef)
	require.True(t, ok)
	assert.Equal(t, "cv.pdf", ref.Name)
	assert.Equal(t, int64(8), ref.Size)
	_, touched := data[untouched.ID]
	assert.False(t, touched)

	// The phone field was never filled, so the submission fails on it alone.
	_, published := session.Submitted()
	assert.False(t, published)
	assert.Equal(t, "Invalid phone number", session.Errors()[untouched.ID])
	assert.Contains(t, getPage(t, h), "Invalid phone number")
}

func TestAssets(t *testing.T) {
	h, _ := newTestServer(t, WithAssets(fstest.MapFS{
		"formbuilder.css": {Data: []byte(".fb-page{}")},
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/formbuilder.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ".fb-page{}", rec.Body.String())
}

func TestRateLimit(t *testing.T) {
	h, _ := newTestServer(t, WithRateLimit(1, time.Minute))

	first := doJSON(t, h, http.MethodGet, "/api/form", nil)
	assert.Equal(t, http.StatusOK, first.Code)

	second := doJSON(t, h, http.MethodGet, "/api/form", nil)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
}

func TestMetrics(t *testing.T) {
	h, _ := newTestServer(t, WithMetrics(true))

	rec := doJSON(t, h, http.MethodPost, "/api/sections/fields", map[string]string{"type": "text"})
	require.Equal(t, http.StatusConflict, rec.Code)
	doJSON(t, h, http.MethodPost, "/api/sections", nil)
	doJSON(t, h, http.MethodPost, "/api/sections/fields", map[string]string{"type": "text"})
	doJSON(t, h, http.MethodGet, "/api/form", nil)
	doJSON(t, h, http.MethodPost, "/api/submit", nil)

	scrape := httptest.NewRecorder()
	h.ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, scrape.Code)
	body := scrape.Body.String()
	assert.Contains(t, body, `formbuilder_http_requests_total{code="201",method="POST",route="/api/sections"}`)
	assert.Contains(t, body, `formbuilder_rejected_actions_total{reason="no_section_selected"}`)
	assert.Contains(t, body, `formbuilder_submissions_total{outcome="invalid"}`)
	assert.Contains(t, body, "formbuilder_fields 1")
}

func TestMetricsDisabledByDefault(t *testing.T) {
	h, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListenAndServe_ShutdownNoGoroutineLeak(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	renderer, err := vanilla.New()
	require.NoError(t, err)
	srv, err := New(builder.New(), WithRenderer(renderer))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.ListenAndServe(ctx, "127.0.0.1:0")
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
