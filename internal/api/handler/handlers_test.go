package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nikhilraghav/complaintdesk/internal/ai"
	"github.com/nikhilraghav/complaintdesk/internal/api/handler"
	"github.com/nikhilraghav/complaintdesk/internal/ingest"
	"github.com/nikhilraghav/complaintdesk/internal/source"
	"github.com/nikhilraghav/complaintdesk/internal/store"
	"github.com/nikhilraghav/complaintdesk/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeSource struct {
	rows []source.Row
	err  error
}

func (f *fakeSource) FetchRows(_ context.Context) ([]source.Row, error) {
	return f.rows, f.err
}

type fakeResolver struct {
	report  ingest.Report
	err     error
	gotRows []source.Row
}

func (f *fakeResolver) Ingest(_ context.Context, rows []source.Row) (ingest.Report, error) {
	f.gotRows = rows
	return f.report, f.err
}

type fakeCache struct {
	data      map[string][]byte
	deleted   []string
	jobStatus map[uuid.UUID]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}, jobStatus: map[uuid.UUID]string{}}
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.data[key] = value
	return nil
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	delete(f.data, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeCache) Ping(_ context.Context) error { return nil }

func (f *fakeCache) SetJobStatus(_ context.Context, jobID uuid.UUID, status string, _ time.Duration) error {
	f.jobStatus[jobID] = status
	return nil
}

func (f *fakeCache) GetJobStatus(_ context.Context, jobID uuid.UUID) (string, bool, error) {
	s, ok := f.jobStatus[jobID]
	return s, ok, nil
}

func (f *fakeCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 1, nil
}

type fakeProcessor struct {
	job     *models.Job
	err     error
	gotMode string
}

func (f *fakeProcessor) TriggerProcessing(_ context.Context, mode string) (*models.Job, error) {
	f.gotMode = mode
	return f.job, f.err
}

type fakeJobStore struct {
	job *models.Job
	err error
}

func (f *fakeJobStore) GetJob(_ context.Context, _ uuid.UUID) (*models.Job, error) {
	return f.job, f.err
}

type fakeReader struct {
	complaints []*models.Complaint
	total      int
	found      *models.Complaint
	err        error
	gotFilter  store.ComplaintFilter
}

func (f *fakeReader) ListComplaints(_ context.Context, filter store.ComplaintFilter) ([]*models.Complaint, int, error) {
	f.gotFilter = filter
	return f.complaints, f.total, f.err
}

func (f *fakeReader) FindComplaint(_ context.Context, _ string) (*models.Complaint, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.found, nil
}

type fakeSummaryStore struct {
	summary *models.Summary
	err     error
	calls   int
}

func (f *fakeSummaryStore) Summary(_ context.Context) (*models.Summary, error) {
	f.calls++
	return f.summary, f.err
}

type fakeAdminStore struct {
	resetCount int64
	purgeCount int64
	resetErr   error
	keys       []*models.APIKey
	created    *models.APIKey
	revokeErr  error
}

func (f *fakeAdminStore) MarkAllUnprocessed(_ context.Context) (int64, error) {
	return f.resetCount, f.resetErr
}
func (f *fakeAdminStore) PurgeComplaints(_ context.Context) (int64, error) {
	return f.purgeCount, nil
}
func (f *fakeAdminStore) CreateAPIKey(_ context.Context, key *models.APIKey) error {
	f.created = key
	return nil
}
func (f *fakeAdminStore) ListAPIKeys(_ context.Context) ([]*models.APIKey, error) {
	return f.keys, nil
}
func (f *fakeAdminStore) RevokeAPIKey(_ context.Context, _ uuid.UUID) error {
	return f.revokeErr
}

// --- helpers ---

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func dataOf(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	return decodeBody(t, w)["data"].(map[string]any)
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody(t, w)["error"].(map[string]any)["code"].(string)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// ========================================
// Ingest Handler Tests
// ========================================

func TestIngestHandler_Success(t *testing.T) {
	src := &fakeSource{rows: []source.Row{
		{OrderID: "ORD-1", Fields: map[string]string{"Order ID": "ORD-1"}},
		{OrderID: "ORD-2", Fields: map[string]string{"Order ID": "ORD-2"}},
	}}
	resolver := &fakeResolver{report: ingest.Report{New: 2}}
	ca := newFakeCache()

	h := handler.NewIngestHandler(src, resolver, ca)
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("POST", "/api/v1/ingest", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, float64(2), data["new"])
	assert.Equal(t, float64(0), data["skipped_duplicate"])
	assert.Len(t, resolver.gotRows, 2)
	assert.Contains(t, ca.deleted, "complaints:summary")
}

func TestIngestHandler_NoNewRows_KeepsCache(t *testing.T) {
	src := &fakeSource{rows: []source.Row{{OrderID: "ORD-1", Fields: map[string]string{}}}}
	resolver := &fakeResolver{report: ingest.Report{SkippedDuplicate: 1}}
	ca := newFakeCache()

	h := handler.NewIngestHandler(src, resolver, ca)
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("POST", "/api/v1/ingest", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, ca.deleted)
}

func TestIngestHandler_SourceErrors(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"timeout", source.ErrSourceTimeout, http.StatusGatewayTimeout, "SOURCE_TIMEOUT"},
		{"format", source.ErrSourceFormat, http.StatusBadGateway, "SOURCE_FORMAT"},
		{"unavailable", source.ErrSourceUnavailable, http.StatusBadGateway, "SOURCE_UNAVAILABLE"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := &fakeSource{err: tc.err}
			resolver := &fakeResolver{}
			h := handler.NewIngestHandler(src, resolver, newFakeCache())

			w := httptest.NewRecorder()
			h(w, httptest.NewRequest("POST", "/api/v1/ingest", nil))

			assert.Equal(t, tc.wantCode, w.Code)
			assert.Equal(t, tc.wantErr, errCode(t, w))
			assert.Nil(t, resolver.gotRows)
		})
	}
}

func TestIngestHandler_ResolverError(t *testing.T) {
	src := &fakeSource{rows: []source.Row{{OrderID: "ORD-1"}}}
	resolver := &fakeResolver{err: errors.New("db down")}
	h := handler.NewIngestHandler(src, resolver, newFakeCache())

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("POST", "/api/v1/ingest", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", errCode(t, w))
}

// ========================================
// Process Handler Tests
// ========================================

func processBody(mode string) *bytes.Buffer {
	return bytes.NewBufferString(`{"mode":"` + mode + `"}`)
}

func TestProcessHandler_202_WithJob(t *testing.T) {
	job := &models.Job{ID: uuid.New(), Type: "process", Status: models.JobStatusPending, Mode: ai.ModePendingAndFailed}
	proc := &fakeProcessor{job: job}
	ca := newFakeCache()

	h := handler.NewProcessHandler(proc, ca)
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("POST", "/api/v1/process", processBody(ai.ModePendingAndFailed)))

	assert.Equal(t, http.StatusAccepted, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, job.ID.String(), data["id"])
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, ai.ModePendingAndFailed, proc.gotMode)
	assert.Contains(t, ca.deleted, "complaints:summary")
}

func TestProcessHandler_EmptyModeDefaultsToNewOnly(t *testing.T) {
	proc := &fakeProcessor{job: &models.Job{ID: uuid.New()}}
	h := handler.NewProcessHandler(proc, newFakeCache())

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("POST", "/api/v1/process", bytes.NewBufferString(`{}`)))

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, ai.ModeNewOnly, proc.gotMode)
}

func TestProcessHandler_400_UnknownMode(t *testing.T) {
	proc := &fakeProcessor{}
	h := handler.NewProcessHandler(proc, newFakeCache())

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("POST", "/api/v1/process", processBody("everything")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", errCode(t, w))
	assert.Empty(t, proc.gotMode)
}

func TestProcessHandler_400_InvalidJSON(t *testing.T) {
	h := handler.NewProcessHandler(&fakeProcessor{}, newFakeCache())

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("POST", "/api/v1/process", strings.NewReader("{not json")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProcessHandler_409_Overlapping(t *testing.T) {
	proc := &fakeProcessor{err: ai.ErrProcessingInProgress}
	h := handler.NewProcessHandler(proc, newFakeCache())

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("POST", "/api/v1/process", processBody(ai.ModeAll)))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "PROCESSING_IN_PROGRESS", errCode(t, w))
}

// ========================================
// Poll Job Handler Tests
// ========================================

func TestPollJobHandler_CacheFastPathWhileRunning(t *testing.T) {
	jobID := uuid.New()
	ca := newFakeCache()
	ca.jobStatus[jobID] = models.JobStatusRunning
	js := &fakeJobStore{err: store.ErrNotFound} // must not be consulted

	h := handler.NewPollJobHandler(js, ca)
	w := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest("GET", "/api/v1/process/"+jobID.String(), nil), "jobID", jobID.String())
	h(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, "running", data["status"])
}

func TestPollJobHandler_TerminalStatusComesFromStore(t *testing.T) {
	jobID := uuid.New()
	ca := newFakeCache()
	ca.jobStatus[jobID] = models.JobStatusCompleted
	js := &fakeJobStore{job: &models.Job{
		ID: jobID, Status: models.JobStatusCompleted,
		Selected: 5, Succeeded: 4, Failed: 1,
	}}

	h := handler.NewPollJobHandler(js, ca)
	w := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest("GET", "/api/v1/process/"+jobID.String(), nil), "jobID", jobID.String())
	h(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, float64(5), data["selected"])
	assert.Equal(t, float64(4), data["succeeded"])
	assert.Equal(t, float64(1), data["failed"])
}

func TestPollJobHandler_400_BadID(t *testing.T) {
	h := handler.NewPollJobHandler(&fakeJobStore{}, newFakeCache())

	w := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest("GET", "/api/v1/process/nope", nil), "jobID", "nope")
	h(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPollJobHandler_404_Unknown(t *testing.T) {
	h := handler.NewPollJobHandler(&fakeJobStore{err: store.ErrNotFound}, newFakeCache())

	jobID := uuid.New()
	w := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest("GET", "/api/v1/process/"+jobID.String(), nil), "jobID", jobID.String())
	h(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errCode(t, w))
}

// ========================================
// Complaint Handler Tests
// ========================================

func strPtr(s string) *string { return &s }

func TestListComplaints_200_Paginated(t *testing.T) {
	reader := &fakeReader{
		complaints: []*models.Complaint{
			{ID: "COMP-000001", OrderID: "ORD-1", Status: models.StatusPending},
			{ID: "COMP-000002", OrderID: "ORD-2", Status: models.StatusProcessed, Category: strPtr("Shipping Damage")},
		},
		total: 42,
	}
	h := handler.NewListComplaintsHandler(reader)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("GET", "/api/v1/complaints?page=2&limit=2", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Len(t, body["data"].([]any), 2)

	meta := body["meta"].(map[string]any)
	assert.Equal(t, float64(2), meta["page"])
	assert.Equal(t, float64(2), meta["limit"])
	assert.Equal(t, float64(42), meta["total"])
	assert.Equal(t, true, meta["has_next"])
}

func TestListComplaints_FiltersPassedThrough(t *testing.T) {
	reader := &fakeReader{}
	h := handler.NewListComplaintsHandler(reader)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("GET", "/api/v1/complaints?status=failed&order_id=ORD-9", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusFailed, reader.gotFilter.Status)
	assert.Equal(t, "ORD-9", reader.gotFilter.OrderID)
}

func TestListComplaints_400_BadStatus(t *testing.T) {
	h := handler.NewListComplaintsHandler(&fakeReader{})

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("GET", "/api/v1/complaints?status=resolved", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", errCode(t, w))
}

func TestGetComplaint_200(t *testing.T) {
	reader := &fakeReader{found: &models.Complaint{
		ID: "COMP-000007", OrderID: "ORD-7", Status: models.StatusProcessed,
		Category: strPtr("Late Delivery"),
	}}
	h := handler.NewGetComplaintHandler(reader)

	w := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest("GET", "/api/v1/complaints/COMP-000007", nil), "id", "COMP-000007")
	h(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, "COMP-000007", data["id"])
	assert.Equal(t, "Late Delivery", data["category"])
}

func TestGetComplaint_404(t *testing.T) {
	h := handler.NewGetComplaintHandler(&fakeReader{err: store.ErrNotFound})

	w := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest("GET", "/api/v1/complaints/COMP-404404", nil), "id", "COMP-404404")
	h(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ========================================
// Summary Handler Tests
// ========================================

func TestSummaryHandler_200(t *testing.T) {
	st := &fakeSummaryStore{summary: &models.Summary{
		Total: 10, Processed: 7, Pending: 2, Failed: 1, SuccessRate: 70,
	}}
	h := handler.NewSummaryHandler(st, newFakeCache())

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("GET", "/api/v1/summary", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, float64(10), data["total"])
	assert.Equal(t, float64(70), data["success_rate"])
}

func TestSummaryHandler_SecondReadServedFromCache(t *testing.T) {
	st := &fakeSummaryStore{summary: &models.Summary{Total: 3}}
	ca := newFakeCache()
	h := handler.NewSummaryHandler(st, ca)

	for range 2 {
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest("GET", "/api/v1/summary", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, 1, st.calls)
}

func TestSummaryHandler_500_StoreError(t *testing.T) {
	st := &fakeSummaryStore{err: errors.New("db down")}
	h := handler.NewSummaryHandler(st, newFakeCache())

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("GET", "/api/v1/summary", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// ========================================
// Export Handler Tests
// ========================================

type fakeExportStore struct {
	complaints []*models.Complaint
	err        error
}

func (f *fakeExportStore) ListComplaintsByStatus(_ context.Context, _ []models.Status) ([]*models.Complaint, error) {
	return f.complaints, f.err
}

func TestExportHandler_200_CSVAttachment(t *testing.T) {
	st := &fakeExportStore{complaints: []*models.Complaint{
		{ID: "COMP-000001", OrderID: "ORD-1", Status: models.StatusPending, Fields: map[string]string{}},
	}}
	h := handler.NewExportHandler(st)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("GET", "/api/v1/export", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	disposition := w.Header().Get("Content-Disposition")
	assert.Contains(t, disposition, "attachment")
	assert.Contains(t, disposition, "complaints_export_")
	assert.Contains(t, w.Body.String(), "COMP-000001")
	assert.Contains(t, w.Body.String(), "Complaint ID")
}

func TestExportHandler_500_StoreError(t *testing.T) {
	h := handler.NewExportHandler(&fakeExportStore{err: errors.New("db down")})

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("GET", "/api/v1/export", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// ========================================
// Admin Handler Tests
// ========================================

func confirmBody(confirm bool, phrase string) *bytes.Buffer {
	b, _ := json.Marshal(map[string]any{"confirm": confirm, "phrase": phrase})
	return bytes.NewBuffer(b)
}

func TestResetAll_200_WithConfirmation(t *testing.T) {
	st := &fakeAdminStore{resetCount: 12}
	ca := newFakeCache()
	h := handler.NewResetAllHandler(st, ca)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("POST", "/api/v1/admin/reset",
		confirmBody(true, handler.ResetConfirmationPhrase)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(12), dataOf(t, w)["reset"])
	assert.Contains(t, ca.deleted, "complaints:summary")
}

func TestResetAll_400_MissingConfirmation(t *testing.T) {
	cases := []struct {
		name string
		body *bytes.Buffer
	}{
		{"confirm false", confirmBody(false, handler.ResetConfirmationPhrase)},
		{"wrong phrase", confirmBody(true, "yes really")},
		{"purge phrase on reset", confirmBody(true, handler.PurgeConfirmationPhrase)},
		{"empty body", bytes.NewBufferString(`{}`)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := &fakeAdminStore{}
			h := handler.NewResetAllHandler(st, newFakeCache())

			w := httptest.NewRecorder()
			h(w, httptest.NewRequest("POST", "/api/v1/admin/reset", tc.body))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "CONFIRMATION_REQUIRED", errCode(t, w))
		})
	}
}

func TestPurge_200_WithConfirmation(t *testing.T) {
	st := &fakeAdminStore{purgeCount: 99}
	h := handler.NewPurgeHandler(st, newFakeCache())

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("POST", "/api/v1/admin/purge",
		confirmBody(true, handler.PurgeConfirmationPhrase)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(99), dataOf(t, w)["deleted"])
}

func TestPurge_400_ResetPhraseRejected(t *testing.T) {
	h := handler.NewPurgeHandler(&fakeAdminStore{}, newFakeCache())

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("POST", "/api/v1/admin/purge",
		confirmBody(true, handler.ResetConfirmationPhrase)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "CONFIRMATION_REQUIRED", errCode(t, w))
}

func TestCreateKey_201_WithRawKey(t *testing.T) {
	st := &fakeAdminStore{}
	h := handler.NewCreateKeyHandler(st)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("POST", "/api/v1/admin/keys",
		bytes.NewBufferString(`{"name":"ci-bot","scopes":["read","admin"]}`)))

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataOf(t, w)

	rawKey := data["key"].(string)
	assert.True(t, strings.HasPrefix(rawKey, "cd_"))
	assert.Equal(t, rawKey[:8], data["key_prefix"])
	assert.Equal(t, "ci-bot", data["name"])

	// Only the hash is persisted.
	require.NotNil(t, st.created)
	assert.NotEqual(t, rawKey, st.created.KeyHash)
	assert.NotEmpty(t, st.created.KeyHash)
	assert.Equal(t, []string{"read", "admin"}, st.created.Scopes)
}

func TestCreateKey_DefaultsToReadScope(t *testing.T) {
	st := &fakeAdminStore{}
	h := handler.NewCreateKeyHandler(st)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("POST", "/api/v1/admin/keys",
		bytes.NewBufferString(`{"name":"reader"}`)))

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, st.created)
	assert.Equal(t, []string{"read"}, st.created.Scopes)
}

func TestCreateKey_400_MissingName(t *testing.T) {
	h := handler.NewCreateKeyHandler(&fakeAdminStore{})

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("POST", "/api/v1/admin/keys", bytes.NewBufferString(`{}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListKeys_DoesNotExposeHash(t *testing.T) {
	st := &fakeAdminStore{keys: []*models.APIKey{{
		ID:        uuid.New(),
		Name:      "ci-bot",
		KeyHash:   "$2a$10$secret",
		KeyPrefix: "cd_abc12",
		Scopes:    []string{"read"},
	}}}
	h := handler.NewListKeysHandler(st)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("GET", "/api/v1/admin/keys", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "$2a$10$secret")
	assert.Contains(t, w.Body.String(), "cd_abc12")
}

func TestRevokeKey_200(t *testing.T) {
	h := handler.NewRevokeKeyHandler(&fakeAdminStore{})

	keyID := uuid.New()
	w := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest("DELETE", "/api/v1/admin/keys/"+keyID.String(), nil), "keyID", keyID.String())
	h(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "revoked", dataOf(t, w)["status"])
}

func TestRevokeKey_404(t *testing.T) {
	h := handler.NewRevokeKeyHandler(&fakeAdminStore{revokeErr: store.ErrNotFound})

	keyID := uuid.New()
	w := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest("DELETE", "/api/v1/admin/keys/"+keyID.String(), nil), "keyID", keyID.String())
	h(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRevokeKey_400_BadID(t *testing.T) {
	h := handler.NewRevokeKeyHandler(&fakeAdminStore{})

	w := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest("DELETE", "/api/v1/admin/keys/nope", nil), "keyID", "nope")
	h(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
