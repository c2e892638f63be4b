package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"quiz-results-service/internal/app"
	"quiz-results-service/internal/domain"
	"quiz-results-service/internal/scoring"
)

// UsernameHeader carries the identity resolved by the upstream auth layer.
const UsernameHeader = "X-Username"

const maxBodyBytes = 1 << 20

var timeNow = time.Now

type Handler struct {
	service  *app.ResultService
	validate *validator.Validate
	log      zerolog.Logger
}

func NewHandler(service *app.ResultService, log zerolog.Logger) *Handler {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{
		service:  service,
		validate: v,
		log:      log.With().Str("component", "http").Logger(),
	}
}

type submitRequest struct {
	QuizID  string          `json:"quizId" validate:"required,max=128"`
	Answers json.RawMessage `json:"answers" validate:"required"`
}

type resultView struct {
	ID       string    `json:"id"`
	QuizName string    `json:"quizName"`
	Score    int       `json:"score"`
	QuizDone time.Time `json:"quizDone"`
}

type reviewView struct {
	resultView
	Questions []scoring.QuestionReview `json:"questions"`
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Leaderboard serves GET /api/leaderboard?quiz=&window=.
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	window, err := domain.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		h.fail(w, err)
		return
	}
	boards, err := h.service.Leaderboard(r.Context(), r.URL.Query().Get("quiz"), window)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, boards)
}

// QuizNames serves GET /api/quizzes/names.
func (h *Handler) QuizNames(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.QuizNames(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

// Submit serves POST /api/attempts.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "validation failed", Fields: fieldErrors(err)})
		return
	}
	result, err := h.service.Submit(r.Context(), app.Submission{
		QuizID:   req.QuizID,
		Username: username(r),
		Answers:  req.Answers,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// UserResults serves GET /api/results for the current user.
func (h *Handler) UserResults(w http.ResponseWriter, r *http.Request) {
	scored, err := h.service.UserResults(r.Context(), username(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	out := make([]resultView, 0, len(scored))
	for _, s := range scored {
		out = append(out, toResultView(s))
	}
	writeJSON(w, http.StatusOK, out)
}

// Review serves GET /api/results/{id}/review.
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	scored, questions, err := h.service.Review(r.Context(), chi.URLParam(r, "id"), username(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviewView{resultView: toResultView(scored), Questions: questions})
}

// Progress serves GET /api/progress?quiz=.
func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	quiz := r.URL.Query().Get("quiz")
	if quiz == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "quiz is required"})
		return
	}
	points, err := h.service.Progress(r.Context(), quiz, username(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrAttemptNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrMissingUser):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidWindow):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("request failed")
		writeJSON(w, status, errorBody{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func fieldErrors(err error) map[string]string {
	fields := make(map[string]string)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Tag()
		}
		return fields
	}
	fields["detail"] = err.Error()
	return fields
}

func toResultView(s domain.ScoredAttempt) resultView {
	return resultView{ID: s.ID, QuizName: s.QuizName, Score: s.Score, QuizDone: s.QuizDone}
}

func username(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(UsernameHeader))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
