package domain

import (
	"encoding/json"
	"strings"
)

// Difficulty scales the bonus granted for a correct answer.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// QuestionType selects how an answer is evaluated.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeTrueFalse      QuestionType = "true_false"
	TypeMatching       QuestionType = "matching"
)

// Option represents a possible answer for a multiple-choice question.
type Option struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// MatchPair is one left/right association of a matching question.
type MatchPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Question is a trivia question together with its answer key.
type Question struct {
	ID         string       `json:"id"`
	Prompt     string       `json:"prompt"`
	Type       QuestionType `json:"type"`
	Difficulty Difficulty   `json:"difficulty"`
	Options    []Option     `json:"options,omitempty"`
	Answer     string       `json:"answer,omitempty"` // true_false key: "true" or "false"
	Pairs      []MatchPair  `json:"pairs,omitempty"`
}

// PublicOption is an option without its correctness flag.
type PublicOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// PublicQuestion is what clients see: no answer key.
type PublicQuestion struct {
	ID         string         `json:"id"`
	Prompt     string         `json:"prompt"`
	Type       QuestionType   `json:"type"`
	Difficulty Difficulty     `json:"difficulty"`
	Options    []PublicOption `json:"options,omitempty"`
	Left       []string       `json:"left,omitempty"`
	Right      []string       `json:"right,omitempty"`
}

// Public strips the answer key.
func (q Question) Public() *PublicQuestion {
	pq := &PublicQuestion{
		ID:         q.ID,
		Prompt:     q.Prompt,
		Type:       q.Type,
		Difficulty: q.Difficulty,
	}
	for _, opt := range q.Options {
		pq.Options = append(pq.Options, PublicOption{ID: opt.ID, Text: opt.Text})
	}
	for _, p := range q.Pairs {
		pq.Left = append(pq.Left, p.Left)
		pq.Right = append(pq.Right, p.Right)
	}
	return pq
}

// Evaluate checks a submitted answer against the question's answer key.
// Matching questions are all-or-nothing: board movement has no partial credit.
// Malformed answers are incorrect rather than errors.
func (q Question) Evaluate(answer string) bool {
	answer = strings.TrimSpace(answer)
	switch q.Type {
	case TypeMultipleChoice, "":
		for _, opt := range q.Options {
			if opt.ID == answer {
				return opt.Correct
			}
		}
		return false
	case TypeTrueFalse:
		key := strings.ToLower(strings.TrimSpace(q.Answer))
		got := strings.ToLower(answer)
		if got != "true" && got != "false" {
			return false
		}
		return got == key
	case TypeMatching:
		var submitted map[string]string
		if err := json.Unmarshal([]byte(answer), &submitted); err != nil {
			return false
		}
		if len(submitted) != len(q.Pairs) || len(q.Pairs) == 0 {
			return false
		}
		for _, p := range q.Pairs {
			if submitted[p.Left] != p.Right {
				return false
			}
		}
		return true
	}
	return false
}
