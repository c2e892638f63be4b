package domain

import "encoding/json"

// QuestionType is the tag of the question union.
type QuestionType string

const (
	TypeSingle    QuestionType = "single"
	TypeMultiple  QuestionType = "multiple"
	TypeTrueFalse QuestionType = "tf"
	TypeText      QuestionType = "text"
)

// Known reports whether t is one of the four supported kinds.
func (t QuestionType) Known() bool {
	switch t {
	case TypeSingle, TypeMultiple, TypeTrueFalse, TypeText:
		return true
	}
	return false
}

// HasOptions reports whether questions of this kind carry an option list.
func (t QuestionType) HasOptions() bool {
	return t == TypeSingle || t == TypeMultiple
}

// Value is one arm of the answer union. A nil Value means the answer is absent.
type Value interface {
	Type() QuestionType
	json.Marshaler
}

// SingleAnswer is an option index.
type SingleAnswer int

// MultipleAnswer is a set of option indexes; order and duplicates are irrelevant.
type MultipleAnswer []int

// BoolAnswer is a true/false answer.
type BoolAnswer bool

// TextAnswer is a free-text answer.
type TextAnswer string

func (SingleAnswer) Type() QuestionType   { return TypeSingle }
func (MultipleAnswer) Type() QuestionType { return TypeMultiple }
func (BoolAnswer) Type() QuestionType     { return TypeTrueFalse }
func (TextAnswer) Type() QuestionType     { return TypeText }

func (v SingleAnswer) MarshalJSON() ([]byte, error) { return json.Marshal(int(v)) }

func (v MultipleAnswer) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]int(v))
}

func (v BoolAnswer) MarshalJSON() ([]byte, error) { return json.Marshal(bool(v)) }
func (v TextAnswer) MarshalJSON() ([]byte, error) { return json.Marshal(string(v)) }

// NeutralValue is the default correct value used when an answer key is missing or malformed.
func NeutralValue(t QuestionType) Value {
	switch t {
	case TypeSingle:
		return SingleAnswer(0)
	case TypeMultiple:
		return MultipleAnswer{}
	case TypeTrueFalse:
		return BoolAnswer(true)
	case TypeText:
		return TextAnswer("")
	}
	return nil
}

// Question is an authored question definition. Options is only meaningful for
// single and multiple choice questions.
type Question struct {
	ID      int
	Type    QuestionType
	Prompt  string
	Options []string
}

// AnswerKey holds the authoritative answer for one question.
type AnswerKey struct {
	ID      int
	Correct Value
}

// SubmittedAnswer is a raw client answer for one question.
type SubmittedAnswer struct {
	ID         int
	UserAnswer Value
}

// AnswerEntry is the per-question snapshot stored on an attempt.
type AnswerEntry struct {
	ID         int
	Correct    Value
	UserAnswer Value
}

// Anomaly records a soft decode problem that was replaced by a safe default.
type Anomaly struct {
	QuestionID int    `json:"questionId"`
	Reason     string `json:"reason"`
}
