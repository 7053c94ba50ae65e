package bulk

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyboxhn/keybox/internal/domains/templates"
	"github.com/keyboxhn/keybox/internal/handlers"
)

type fakeTemplates map[uuid.UUID]*templates.TemplateResponse

func (f fakeTemplates) Get(_ context.Context, id uuid.UUID) (*templates.TemplateResponse, error) {
	t, ok := f[id]
	if !ok {
		return nil, templates.ErrTemplateNotFound
	}
	return t, nil
}

var _ TemplateGetter = fakeTemplates(nil)

type bulkFixture struct {
	router     http.Handler
	store      *MemoryStore
	templateID uuid.UUID
}

func newBulkFixture() *bulkFixture {
	id := uuid.New()
	store := NewMemoryStore(0)
	h := NewHandler(store, fakeTemplates{id: {ID: id.String(), Title: "Aviso", Body: testBody}})
	h.now = func() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC) }

	r := chi.NewRouter()
	r.Route("/templates", h.RegisterUploadRoute)
	r.Route("/bulk", h.RegisterBulkRoutes)
	return &bulkFixture{router: r, store: store, templateID: id}
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (f *bulkFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func (f *bulkFixture) upload(t *testing.T, filename string, content []byte) (*httptest.ResponseRecorder, SessionResponse) {
	t.Helper()
	body, contentType := multipartBody(t, filename, content)
	req := httptest.NewRequest(http.MethodPost, "/templates/"+f.templateID.String()+"/bulk", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var resp SessionResponse
	if rec.Code == http.StatusCreated {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	}
	return rec, resp
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp handlers.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error.Code
}

func TestHandler_FullWorkflow(t *testing.T) {
	f := newBulkFixture()

	rec, session := f.upload(t, "clientes.csv", testCSV(7))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, StepMapping, session.Step)
	assert.Equal(t, 7, session.TotalRows)
	assert.Equal(t, []string{"Nombre", "Telefono", "Cantidad"}, session.Headers)

	base := "/bulk/" + session.ID

	rec = f.do(t, http.MethodPost, base+"/preview", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INVALID_MAPPING", errorCode(t, rec))

	rec = f.do(t, http.MethodPut, base+"/mapping",
		`{"phone_column":"Telefono","columns":{"nombre":"Nombre","cantidad":"Cantidad"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, base+"/preview", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var preview SessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&preview))
	assert.Equal(t, StepPreview, preview.Step)
	require.Len(t, preview.Messages, PreviewSize)
	assert.Equal(t, "Hola Cliente 1, tienes 1 paquetes", preview.Messages[0].Message)

	rec = f.do(t, http.MethodGet, base+"/export", "")
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INVALID_BULK_STEP", errorCode(t, rec))

	rec = f.do(t, http.MethodPost, base+"/generate", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var results SessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&results))
	assert.Equal(t, StepResults, results.Step)
	require.Len(t, results.Messages, 7)
	assert.Equal(t, preview.Messages, results.Messages[:PreviewSize])

	rec = f.do(t, http.MethodGet, base+"/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="mensajes_Aviso_2026-10-18.csv"`, rec.Header().Get("Content-Disposition"))
	lines := strings.Split(strings.TrimSuffix(rec.Body.String(), "\r\n"), "\r\n")
	assert.Equal(t, "Teléfono,Mensaje,Link WhatsApp,Link Telegram", lines[0])
	assert.Len(t, lines, 8)

	rec = f.do(t, http.MethodDelete, base, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "BULK_SESSION_NOT_FOUND", errorCode(t, rec))
}

func TestHandler_RejectedFileKeepsUploadStep(t *testing.T) {
	f := newBulkFixture()

	rec, _ := f.upload(t, "clientes.xlsx", testCSV(2))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INVALID_FILE", errorCode(t, rec))

	// The session was stored in the upload step and accepts a new file
	require.Len(t, f.store.sessions, 1)
	var sessionID string
	for id := range f.store.sessions {
		sessionID = id
	}
	stored, err := f.store.Load(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, StepUpload, stored.Step)

	body, contentType := multipartBody(t, "clientes.csv", testCSV(2))
	req := httptest.NewRequest(http.MethodPost, "/bulk/"+sessionID+"/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err = f.store.Load(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, StepMapping, stored.Step)
}

func TestHandler_HeaderOnlyFile(t *testing.T) {
	f := newBulkFixture()

	rec, _ := f.upload(t, "vacio.csv", []byte("Nombre,Telefono\n\n"))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INVALID_FILE", errorCode(t, rec))
}

func TestHandler_BackToUploadDiscardsFile(t *testing.T) {
	f := newBulkFixture()

	_, session := f.upload(t, "clientes.csv", testCSV(3))
	rec := f.do(t, http.MethodPost, "/bulk/"+session.ID+"/back", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, StepUpload, resp.Step)
	assert.Equal(t, 0, resp.TotalRows)
	assert.Empty(t, resp.Headers)

	rec = f.do(t, http.MethodPost, "/bulk/"+session.ID+"/back", "")
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandler_UnknownTemplate(t *testing.T) {
	f := newBulkFixture()
	f.templateID = uuid.New()

	rec, _ := f.upload(t, "clientes.csv", testCSV(1))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "TEMPLATE_NOT_FOUND", errorCode(t, rec))
}

func TestHandler_MappingUnknownVariable(t *testing.T) {
	f := newBulkFixture()

	_, session := f.upload(t, "clientes.csv", testCSV(1))
	rec := f.do(t, http.MethodPut, "/bulk/"+session.ID+"/mapping", `{"phone_column":"Telefono","columns":{"apellido":"Nombre"}}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INVALID_MAPPING", errorCode(t, rec))
}
