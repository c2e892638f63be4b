package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"quiz-results-service/internal/app"
	"quiz-results-service/internal/domain"
	"quiz-results-service/internal/infra/memory"
)

func TestSubmitThenReadViews(t *testing.T) {
	server := httptest.NewServer(newTestRouter())
	defer server.Close()

	resp := postAttempt(t, server.URL, "alice", `{"quizId":"quiz-1","answers":[{"id":1,"userAnswer":1},{"id":2,"userAnswer":" PARIS "}]}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var result app.SubmissionResult
	decodeBody(t, resp, &result)
	if result.Score != 100 || result.Total != 2 || result.QuizName != "Capitals" {
		t.Fatalf("unexpected result %+v", result)
	}

	var boards map[string][]domain.LeaderboardRow
	getJSON(t, server.URL+"/api/leaderboard?window=weekly", "", &boards)
	if rows := boards["Capitals"]; len(rows) != 1 || rows[0].Username != "alice" || rows[0].Rank != 1 {
		t.Fatalf("unexpected leaderboard %+v", boards)
	}

	var results []resultView
	getJSON(t, server.URL+"/api/results", "alice", &results)
	if len(results) != 1 || results[0].ID != result.AttemptID {
		t.Fatalf("unexpected results %+v", results)
	}

	var review reviewView
	getJSON(t, server.URL+"/api/results/"+result.AttemptID+"/review", "alice", &review)
	if len(review.Questions) != 2 || !review.Questions[1].IsCorrect || review.Score != 100 {
		t.Fatalf("unexpected review %+v", review)
	}

	var points []domain.ProgressPoint
	getJSON(t, server.URL+"/api/progress?quiz=Capitals", "alice", &points)
	if len(points) != 1 || points[0].Score != 100 {
		t.Fatalf("unexpected progress %+v", points)
	}

	var names []string
	getJSON(t, server.URL+"/api/quizzes/names", "", &names)
	if len(names) != 1 || names[0] != "Capitals" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestSubmitValidationAndErrors(t *testing.T) {
	server := httptest.NewServer(newTestRouter())
	defer server.Close()

	resp := postAttempt(t, server.URL, "alice", `{"answers":[]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing quizId, got %d", resp.StatusCode)
	}
	var body errorBody
	decodeBody(t, resp, &body)
	if body.Fields["quizId"] != "required" {
		t.Fatalf("expected quizId field error, got %+v", body)
	}

	resp = postAttempt(t, server.URL, "alice", `{"quizId":"nope","answers":[]}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown quiz, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postAttempt(t, server.URL, "", `{"quizId":"quiz-1","answers":[]}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp, err := http.Get(server.URL + "/api/leaderboard?window=daily")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown window, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestReviewIsScopedToUser(t *testing.T) {
	server := httptest.NewServer(newTestRouter())
	defer server.Close()

	resp := postAttempt(t, server.URL, "alice", `{"quizId":"quiz-1","answers":[]}`)
	var result app.SubmissionResult
	decodeBody(t, resp, &result)

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/results/"+result.AttemptID+"/review", nil)
	req.Header.Set(UsernameHeader, "bob")
	other, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer other.Body.Close()
	if other.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for another user's attempt, got %d", other.StatusCode)
	}
}

func newTestRouter() http.Handler {
	return NewRouter(newTestService(), zerolog.Nop(), nil)
}

func newTestService() *app.ResultService {
	quizzes := memory.NewQuizRepository(memory.NewStaticQuizLoader(sampleQuiz()), time.Minute)
	return app.NewResultService(memory.NewAttemptStore(), quizzes, zerolog.Nop())
}

func postAttempt(t *testing.T, base, user, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, base+"/api/attempts", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(UsernameHeader, user)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	return resp
}

func getJSON(t *testing.T, url, user string, dst any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if user != "" {
		req.Header.Set(UsernameHeader, user)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get %s: status %d", url, resp.StatusCode)
	}
	decodeBody(t, resp, dst)
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func sampleQuiz() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:        "quiz-1",
			Name:      "Capitals",
			Questions: `[{"id":1,"type":"single","prompt":"Capital of Italy?","options":["Oslo","Rome"]},{"id":2,"type":"text","prompt":"Capital of France?"}]`,
			Answers:   `[{"id":1,"correct":1},{"id":2,"correct":"Paris"}]`,
		},
	}
}
