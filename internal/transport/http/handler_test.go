package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"quiz-proctor-service/internal/app"
	"quiz-proctor-service/internal/domain"
	"quiz-proctor-service/internal/infra/memory"
)

func TestQuizSessionFlow(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	// Upload a quiz.
	resp := uploadQuiz(t, server.URL, `{
		"title": "Flow Quiz",
		"timeLimit": 60,
		"questions": [
			{"id": 1, "question": "First?", "options": ["a", "b", "c"], "correctAnswer": 2, "points": 10},
			{"id": 2, "question": "Second?", "options": ["a", "b"], "correctAnswer": 1, "points": 10}
		]
	}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload status %d", resp.StatusCode)
	}

	// Connect a participant.
	var connected struct {
		ClientID   string                 `json:"clientId"`
		ClientName string                 `json:"clientName"`
		QuizData   *domain.QuizDefinition `json:"quizData"`
	}
	postJSON(t, server.URL+"/api/client/connect", `{}`, http.StatusOK, &connected)
	if connected.ClientID == "" || connected.ClientName != "Client 1" {
		t.Fatalf("unexpected connect payload %+v", connected)
	}
	if connected.QuizData == nil || connected.QuizData.Title != "Flow Quiz" {
		t.Fatalf("expected quiz data on connect, got %+v", connected.QuizData)
	}

	// Start the session.
	postJSON(t, server.URL+"/api/quiz/start", ``, http.StatusOK, nil)

	// Status reflects the running session.
	var status domain.SessionStatus
	getJSON(t, server.URL+"/api/status", &status)
	if !status.QuizInProgress || status.TotalClients != 1 || status.StartedAt == nil {
		t.Fatalf("unexpected status %+v", status)
	}
	if status.QuizTitle != "Flow Quiz" || status.TotalQuestions != 2 {
		t.Fatalf("expected quiz metadata in status, got %+v", status)
	}

	// Advance clamps at the last question.
	for i := 0; i < 4; i++ {
		var advanced struct {
			CurrentQuestion int `json:"currentQuestion"`
		}
		postJSON(t, server.URL+"/api/quiz/advance", ``, http.StatusOK, &advanced)
		if advanced.CurrentQuestion > 1 {
			t.Fatalf("advance exceeded last question: %d", advanced.CurrentQuestion)
		}
	}

	// Submit with a string-typed answer; coercion applies.
	var record domain.ResultRecord
	postJSON(t, server.URL+"/api/client/submit",
		`{"clientId": "`+connected.ClientID+`", "answers": ["2", 1]}`,
		http.StatusOK, &record)
	if record.CorrectAnswers != 2 || record.Accuracy != 100 {
		t.Fatalf("unexpected result %+v", record)
	}

	// Results are ranked and served.
	var results struct {
		Results []domain.ResultRecord `json:"results"`
	}
	getJSON(t, server.URL+"/api/results", &results)
	if len(results.Results) != 1 || results.Results[0].ClientID != connected.ClientID {
		t.Fatalf("unexpected results %+v", results)
	}

	// Download produces a spreadsheet attachment.
	dl, err := http.Get(server.URL + "/api/results/download")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer dl.Body.Close()
	if dl.StatusCode != http.StatusOK {
		t.Fatalf("download status %d", dl.StatusCode)
	}
	if ct := dl.Header.Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("unexpected content type %q", ct)
	}
	body, _ := io.ReadAll(dl.Body)
	if len(body) == 0 {
		t.Fatalf("empty spreadsheet body")
	}
}

func TestUploadWhileActiveConflicts(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	uploadQuiz(t, server.URL, validQuizJSON)
	postJSON(t, server.URL+"/api/quiz/start", ``, http.StatusOK, nil)

	resp := uploadQuiz(t, server.URL, validQuizJSON)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 uploading during active session, got %d", resp.StatusCode)
	}
}

func TestStartConflictsAndAdvanceState(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	// No quiz loaded yet.
	postJSON(t, server.URL+"/api/quiz/start", ``, http.StatusNotFound, nil)
	postJSON(t, server.URL+"/api/quiz/advance", ``, http.StatusConflict, nil)

	uploadQuiz(t, server.URL, validQuizJSON)
	postJSON(t, server.URL+"/api/quiz/start", ``, http.StatusOK, nil)
	postJSON(t, server.URL+"/api/quiz/start", ``, http.StatusConflict, nil)
}

func TestUploadValidationErrorVerbatim(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	resp := uploadQuiz(t, server.URL, `{"title": "x", "timeLimit": 60, "questions": []}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "quiz must contain at least one question" {
		t.Fatalf("expected verbatim validation message, got %q", body.Error)
	}
}

func TestSubmitUnknownClientIs404(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	uploadQuiz(t, server.URL, validQuizJSON)
	postJSON(t, server.URL+"/api/client/submit", `{"clientId": "ghost", "answers": [0]}`, http.StatusNotFound, nil)
}

func TestDownloadWithoutResultsIs404(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/results/download")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 without results, got %d", resp.StatusCode)
	}
}

func TestGetQuizBeforeUploadIs404(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/quiz")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 with no quiz, got %d", resp.StatusCode)
	}
}

func TestClientsListing(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	uploadQuiz(t, server.URL, validQuizJSON)
	postJSON(t, server.URL+"/api/client/connect", `{"name": "Alice"}`, http.StatusOK, nil)
	postJSON(t, server.URL+"/api/client/connect", `{}`, http.StatusOK, nil)

	var clients struct {
		TotalClients int                  `json:"totalClients"`
		Clients      []domain.Participant `json:"clients"`
	}
	getJSON(t, server.URL+"/api/clients", &clients)
	if clients.TotalClients != 2 || len(clients.Clients) != 2 {
		t.Fatalf("unexpected clients %+v", clients)
	}
	if clients.Clients[0].Name != "Alice" || clients.Clients[1].Name != "Client 2" {
		t.Fatalf("unexpected names %+v", clients.Clients)
	}
}

const validQuizJSON = `{
	"title": "Valid Quiz",
	"timeLimit": 60,
	"questions": [
		{"id": 1, "question": "Q?", "options": ["a", "b"], "correctAnswer": 0, "points": 5}
	]
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	service := app.NewService(memory.NewDefinitionStore())
	if err := service.Bootstrap(context.Background(), nil); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	handler := NewHandler(service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return httptest.NewServer(handler.Router())
}

func uploadQuiz(t *testing.T, baseURL, quizJSON string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "quiz.json")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(quizJSON)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	resp, err := http.Post(baseURL+"/api/quiz/upload", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func postJSON(t *testing.T, url, body string, wantStatus int, out any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("post %s: status %d, want %d (body %s)", url, resp.StatusCode, wantStatus, raw)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
}

func getJSON(t *testing.T, url string, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}
