// Package codec translates quiz content between the typed model and its JSON wire format.
//
// Decoding is tolerant: malformed payloads degrade to empty or neutral values and are
// reported as anomalies, never as errors.
package codec

import (
	"bytes"
	"encoding/json"
	"math"

	"quiz-results-service/internal/domain"
)

type questionOut struct {
	ID      int                 `json:"id"`
	Type    domain.QuestionType `json:"type"`
	Prompt  string              `json:"prompt"`
	Options *[]string           `json:"options,omitempty"`
}

type answerKeyOut struct {
	ID      int          `json:"id"`
	Correct domain.Value `json:"correct"`
}

type answerEntryOut struct {
	ID         int          `json:"id"`
	Correct    domain.Value `json:"correct"`
	UserAnswer domain.Value `json:"userAnswer"`
}

// EncodeQuestions serializes question definitions. Options are emitted only for
// single and multiple choice questions.
func EncodeQuestions(questions []domain.Question) (string, error) {
	out := make([]questionOut, 0, len(questions))
	for _, q := range questions {
		item := questionOut{ID: q.ID, Type: q.Type, Prompt: q.Prompt}
		if q.Type.HasOptions() {
			opts := q.Options
			if opts == nil {
				opts = []string{}
			}
			item.Options = &opts
		}
		out = append(out, item)
	}
	return marshal(out)
}

// EncodeAnswerKeys serializes answer keys; the JSON shape of correct follows the value arm.
func EncodeAnswerKeys(keys []domain.AnswerKey) (string, error) {
	out := make([]answerKeyOut, 0, len(keys))
	for _, k := range keys {
		out = append(out, answerKeyOut{ID: k.ID, Correct: k.Correct})
	}
	return marshal(out)
}

// EncodeAnswers serializes the answer snapshot stored on an attempt.
func EncodeAnswers(entries []domain.AnswerEntry) (string, error) {
	out := make([]answerEntryOut, 0, len(entries))
	for _, e := range entries {
		out = append(out, answerEntryOut{ID: e.ID, Correct: e.Correct, UserAnswer: e.UserAnswer})
	}
	return marshal(out)
}

func marshal(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeQuestions parses a question list. A payload that is not a JSON array yields an
// empty slice. Elements that are not objects are skipped; a missing id falls back to the
// element position (1-based).
func DecodeQuestions(raw string) []domain.Question {
	elems, ok := splitArray([]byte(raw))
	if !ok {
		return []domain.Question{}
	}
	questions := make([]domain.Question, 0, len(elems))
	for i, elem := range elems {
		fields, ok := object(elem)
		if !ok {
			continue
		}
		q := domain.Question{ID: i + 1}
		if id, ok := integral(fields["id"]); ok {
			q.ID = id
		}
		var typ string
		if decodeString(fields["type"], &typ) {
			q.Type = domain.QuestionType(typ)
		}
		decodeString(fields["prompt"], &q.Prompt)
		if q.Type.HasOptions() {
			q.Options = decodeOptions(fields["options"])
		}
		questions = append(questions, q)
	}
	return questions
}

// DecodeAnswerKeys merges an answer key list onto questions by id. Every question gets a
// key: a missing or mistyped entry is replaced by the neutral value of its type and
// reported as an anomaly.
func DecodeAnswerKeys(raw string, questions []domain.Question) ([]domain.AnswerKey, []domain.Anomaly) {
	byID := map[int]json.RawMessage{}
	if elems, ok := splitArray([]byte(raw)); ok {
		for _, elem := range elems {
			fields, ok := object(elem)
			if !ok {
				continue
			}
			id, ok := integral(fields["id"])
			if !ok {
				continue
			}
			if _, seen := byID[id]; !seen {
				byID[id] = fields["correct"]
			}
		}
	}

	keys := make([]domain.AnswerKey, 0, len(questions))
	var anomalies []domain.Anomaly
	for _, q := range questions {
		correct, state := decodeValue(q.Type, byID[q.ID])
		if state != valueOK {
			correct = domain.NeutralValue(q.Type)
			anomalies = append(anomalies, domain.Anomaly{QuestionID: q.ID, Reason: keyReason(q.Type, state)})
		}
		keys = append(keys, domain.AnswerKey{ID: q.ID, Correct: correct})
	}
	return keys, anomalies
}

// DecodeAnswers parses the answer snapshot of an attempt. Values are coerced against the
// declared type of the question with the same id; mistyped values become absent.
// Entries for unknown questions are dropped.
func DecodeAnswers(raw string, questions []domain.Question) ([]domain.AnswerEntry, []domain.Anomaly) {
	elems, ok := splitArray([]byte(raw))
	if !ok {
		return []domain.AnswerEntry{}, nil
	}
	types := typesByID(questions)
	entries := make([]domain.AnswerEntry, 0, len(elems))
	var anomalies []domain.Anomaly
	for _, elem := range elems {
		fields, ok := object(elem)
		if !ok {
			anomalies = append(anomalies, domain.Anomaly{Reason: "answer entry is not an object"})
			continue
		}
		id, ok := integral(fields["id"])
		if !ok {
			anomalies = append(anomalies, domain.Anomaly{Reason: "answer entry has no id"})
			continue
		}
		typ, known := types[id]
		if !known {
			anomalies = append(anomalies, domain.Anomaly{QuestionID: id, Reason: "answer for unknown question"})
			continue
		}
		entry := domain.AnswerEntry{ID: id}
		var state valueState
		entry.Correct, state = decodeValue(typ, fields["correct"])
		if state == valueMismatch {
			anomalies = append(anomalies, domain.Anomaly{QuestionID: id, Reason: "correct value does not match question type"})
		}
		entry.UserAnswer, state = decodeValue(typ, fields["userAnswer"])
		if state == valueMismatch {
			anomalies = append(anomalies, domain.Anomaly{QuestionID: id, Reason: "user answer does not match question type"})
		}
		entries = append(entries, entry)
	}
	return entries, anomalies
}

// DecodeSubmission parses raw client answers ({id, userAnswer}) against the quiz questions.
func DecodeSubmission(data []byte, questions []domain.Question) ([]domain.SubmittedAnswer, []domain.Anomaly) {
	elems, ok := splitArray(data)
	if !ok {
		return []domain.SubmittedAnswer{}, []domain.Anomaly{{Reason: "answers payload is not an array"}}
	}
	types := typesByID(questions)
	submitted := make([]domain.SubmittedAnswer, 0, len(elems))
	var anomalies []domain.Anomaly
	for _, elem := range elems {
		fields, ok := object(elem)
		if !ok {
			continue
		}
		id, ok := integral(fields["id"])
		if !ok {
			continue
		}
		typ, known := types[id]
		if !known {
			anomalies = append(anomalies, domain.Anomaly{QuestionID: id, Reason: "answer for unknown question"})
			continue
		}
		value, state := decodeValue(typ, fields["userAnswer"])
		if state == valueMismatch {
			anomalies = append(anomalies, domain.Anomaly{QuestionID: id, Reason: "user answer does not match question type"})
		}
		submitted = append(submitted, domain.SubmittedAnswer{ID: id, UserAnswer: value})
	}
	return submitted, anomalies
}

// DecodeAttempt turns a persisted record into a decoded attempt.
func DecodeAttempt(rec domain.Record) (domain.Attempt, []domain.Anomaly) {
	questions := DecodeQuestions(rec.Questions)
	answers, anomalies := DecodeAnswers(rec.Answers, questions)
	return domain.Attempt{
		ID:        rec.ID,
		QuizName:  rec.QuizName,
		Username:  rec.Username,
		QuizDone:  rec.QuizDone,
		Questions: questions,
		Answers:   answers,
	}, anomalies
}

// DecodeAttempts decodes every record; anomalies are discarded.
func DecodeAttempts(records []domain.Record) []domain.Attempt {
	attempts := make([]domain.Attempt, 0, len(records))
	for _, rec := range records {
		a, _ := DecodeAttempt(rec)
		attempts = append(attempts, a)
	}
	return attempts
}

type valueState int

const (
	valueAbsent valueState = iota
	valueOK
	valueMismatch
)

// decodeValue coerces raw JSON into the arm dictated by t. There is no implicit
// coercion between shapes: 0/1 is not a boolean and "2" is not an index.
func decodeValue(t domain.QuestionType, raw json.RawMessage) (domain.Value, valueState) {
	if isNull(raw) {
		return nil, valueAbsent
	}
	switch t {
	case domain.TypeSingle:
		if n, ok := integral(raw); ok {
			return domain.SingleAnswer(n), valueOK
		}
	case domain.TypeMultiple:
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, valueMismatch
		}
		set := make(domain.MultipleAnswer, 0, len(elems))
		for _, e := range elems {
			n, ok := integral(e)
			if !ok {
				return nil, valueMismatch
			}
			set = append(set, n)
		}
		return set, valueOK
	case domain.TypeTrueFalse:
		var b bool
		if err := json.Unmarshal(raw, &b); err == nil {
			return domain.BoolAnswer(b), valueOK
		}
	case domain.TypeText:
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return domain.TextAnswer(s), valueOK
		}
	}
	return nil, valueMismatch
}

func keyReason(t domain.QuestionType, state valueState) string {
	switch {
	case !t.Known():
		return "unknown question type"
	case state == valueAbsent:
		return "missing answer key"
	default:
		return "answer key does not match question type"
	}
}

func typesByID(questions []domain.Question) map[int]domain.QuestionType {
	types := make(map[int]domain.QuestionType, len(questions))
	for _, q := range questions {
		if _, seen := types[q.ID]; !seen {
			types[q.ID] = q.Type
		}
	}
	return types
}

func splitArray(data []byte) ([]json.RawMessage, bool) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil || elems == nil {
		return nil, false
	}
	return elems, true
}

func object(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// integral accepts JSON numbers with no fractional part.
func integral(raw json.RawMessage) (int, bool) {
	if isNull(raw) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

func decodeString(raw json.RawMessage, dst *string) bool {
	if isNull(raw) {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// decodeOptions keeps string options as-is and renders any other scalar by its JSON text.
func decodeOptions(raw json.RawMessage) []string {
	var elems []json.RawMessage
	if isNull(raw) || json.Unmarshal(raw, &elems) != nil {
		return []string{}
	}
	opts := make([]string, 0, len(elems))
	for _, e := range elems {
		var s string
		switch {
		case decodeString(e, &s):
			opts = append(opts, s)
		case isNull(e):
			opts = append(opts, "")
		default:
			opts = append(opts, string(bytes.TrimSpace(e)))
		}
	}
	return opts
}
