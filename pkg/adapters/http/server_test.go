package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/candidhq/candid/pkg/domain"
	"github.com/candidhq/candid/pkg/engine"
)

type stubEngine struct {
	startOut  *engine.Outcome
	resumeOut *engine.Outcome
	snapshot  *domain.Session
	records   []domain.InterviewRecord
	err       error
}

func (s *stubEngine) Start(_ context.Context, _ engine.StartInput) (*engine.Outcome, error) {
	return s.startOut, s.err
}

func (s *stubEngine) Resume(_ context.Context, _, _ string) (*engine.Outcome, error) {
	return s.resumeOut, s.err
}

func (s *stubEngine) Snapshot(_ context.Context, _ string) (*domain.Session, error) {
	return s.snapshot, s.err
}

func (s *stubEngine) Records(_ context.Context, user string) ([]domain.InterviewRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.InterviewRecord
	for _, r := range s.records {
		if user == "" || r.User == user {
			out = append(out, r)
		}
	}
	return out, nil
}

type stubConsultant struct {
	answer string
	err    error
}

func (c *stubConsultant) Advise(_ context.Context, _ string) (string, error) {
	return c.answer, c.err
}

func suspendedOutcome(id, question string) *engine.Outcome {
	s := domain.NewSession(id, "material", 2)
	s.Stage = domain.StageAwaitAnswer
	_ = s.AppendTurn(question)
	return &engine.Outcome{Session: s, Suspended: true, Question: question}
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestStartInterview(t *testing.T) {
	eng := &stubEngine{startOut: suspendedOutcome("abc", "First question?")}
	handler := NewHandler(eng)

	rec := doJSON(t, handler, http.MethodPost, "/api/interview/start",
		`{"material": "resume text", "user": "alice", "max_rounds": 2}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp startResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "abc", resp.SessionID)
	assert.Equal(t, "First question?", resp.Question)
	assert.Equal(t, 2, resp.MaxRounds)
}

func TestStartInterviewRejectsBadBody(t *testing.T) {
	handler := NewHandler(&stubEngine{})
	rec := doJSON(t, handler, http.MethodPost, "/api/interview/start", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitAnswerSuspended(t *testing.T) {
	eng := &stubEngine{resumeOut: suspendedOutcome("abc", "Second question?")}
	handler := NewHandler(eng)

	rec := doJSON(t, handler, http.MethodPost, "/api/interview/submit",
		`{"session_id": "abc", "answer": "my answer"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp submitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Finished)
	assert.Equal(t, "Second question?", resp.Question)
}

func TestSubmitAnswerFinished(t *testing.T) {
	s := domain.NewSession("abc", "material", 1)
	s.Stage = domain.StageEnd
	require.NoError(t, s.AppendTurn("Q1"))
	require.NoError(t, s.RecordAnswer("A1"))
	require.NoError(t, s.SetFeedback("good answer"))
	require.NoError(t, s.CompleteRound())
	require.NoError(t, s.MarkFinished())
	require.NoError(t, s.SetReport("final report"))

	eng := &stubEngine{resumeOut: &engine.Outcome{Session: s, Finished: true, Report: "final report"}}
	handler := NewHandler(eng)

	rec := doJSON(t, handler, http.MethodPost, "/api/interview/submit",
		`{"session_id": "abc", "answer": "A1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp submitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Finished)
	assert.Equal(t, "final report", resp.Report)
	assert.Equal(t, "good answer", resp.Feedback)
	assert.Equal(t, 1, resp.Round)
}

func TestSubmitAnswerRequiresSessionID(t *testing.T) {
	handler := NewHandler(&stubEngine{})
	rec := doJSON(t, handler, http.MethodPost, "/api/interview/submit", `{"answer": "a"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownSessionIsActionable404(t *testing.T) {
	handler := NewHandler(&stubEngine{err: domain.ErrSessionNotFound})

	rec := doJSON(t, handler, http.MethodPost, "/api/interview/submit",
		`{"session_id": "gone", "answer": "a"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "start a new interview")
}

func TestBusySessionIs409(t *testing.T) {
	handler := NewHandler(&stubEngine{err: domain.ErrSessionBusy})
	rec := doJSON(t, handler, http.MethodPost, "/api/interview/submit",
		`{"session_id": "abc", "answer": "a"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestInvariantErrorIs400(t *testing.T) {
	handler := NewHandler(&stubEngine{err: &domain.InvariantError{Op: "RecordAnswer", Reason: "answer must not be empty"}})
	rec := doJSON(t, handler, http.MethodPost, "/api/interview/submit",
		`{"session_id": "abc", "answer": ""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "answer must not be empty")
}

func TestGetInterview(t *testing.T) {
	s := domain.NewSession("abc", "material", 2)
	handler := NewHandler(&stubEngine{snapshot: s})

	rec := doJSON(t, handler, http.MethodGet, "/api/interview/abc", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap domain.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "abc", snap.ID)
}

func TestListRecordsFiltersByUser(t *testing.T) {
	handler := NewHandler(&stubEngine{records: []domain.InterviewRecord{
		{SessionID: "s1", User: "alice"},
		{SessionID: "s2", User: "bob"},
	}})

	rec := doJSON(t, handler, http.MethodGet, "/api/interview/records?user=alice", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var records []domain.InterviewRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "s1", records[0].SessionID)
}

func TestListRecordsEmptyIsArray(t *testing.T) {
	handler := NewHandler(&stubEngine{})
	rec := doJSON(t, handler, http.MethodGet, "/api/interview/records", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestAskConsultant(t *testing.T) {
	handler := NewHandler(&stubEngine{}, WithConsultant(&stubConsultant{answer: "practice daily"}))

	rec := doJSON(t, handler, http.MethodPost, "/api/consultant/ask", `{"question": "how to prepare?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp consultantResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "practice daily", resp.Answer)
}

func TestAskConsultantWithoutConsultant(t *testing.T) {
	handler := NewHandler(&stubEngine{})
	rec := doJSON(t, handler, http.MethodPost, "/api/consultant/ask", `{"question": "q"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	handler := NewHandler(&stubEngine{startOut: suspendedOutcome("abc", "Q?")})

	rec := doJSON(t, handler, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Drive one request through the middleware so counters are non-empty.
	doJSON(t, handler, http.MethodPost, "/api/interview/start", `{"material": "m"}`)

	rec = doJSON(t, handler, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "candid_http_requests_total")
}
