package app

import (
	"context"
	"errors"
	"fmt"

	"quizboard-service/internal/domain"
)

// DifficultyPolicy picks the question difficulty for a dice value.
type DifficultyPolicy func(dice int) domain.Difficulty

// DiceDifficulty maps low rolls to easy, middle rolls to medium and high rolls to hard.
func DiceDifficulty(dice int) domain.Difficulty {
	switch {
	case dice <= 2:
		return domain.DifficultyEasy
	case dice <= 4:
		return domain.DifficultyMedium
	default:
		return domain.DifficultyHard
	}
}

// FixedDifficulty always asks questions of one difficulty.
func FixedDifficulty(d domain.Difficulty) DifficultyPolicy {
	return func(int) domain.Difficulty { return d }
}

// PolicyFor resolves a configured policy name: "dice" or a difficulty.
func PolicyFor(name string) (DifficultyPolicy, error) {
	if name == "" || name == "dice" {
		return DiceDifficulty, nil
	}
	d := domain.Difficulty(name)
	if !d.Valid() {
		return nil, fmt.Errorf("unknown difficulty policy %q", name)
	}
	return FixedDifficulty(d), nil
}

// QuestionGate selects the question that gates a roll and judges answers.
type QuestionGate struct {
	bank   QuestionBank
	policy DifficultyPolicy
}

func NewQuestionGate(bank QuestionBank, policy DifficultyPolicy) *QuestionGate {
	if policy == nil {
		policy = DiceDifficulty
	}
	return &QuestionGate{bank: bank, policy: policy}
}

// Select returns a question for the dice outcome. domain.ErrQuestionUnavailable
// signals the roll should resolve without gating.
func (g *QuestionGate) Select(ctx context.Context, dice int) (domain.Question, error) {
	if g == nil || g.bank == nil {
		return domain.Question{}, domain.ErrQuestionUnavailable
	}
	difficulty := g.policy(dice)
	q, err := g.bank.GetQuestion(ctx, difficulty)
	if err != nil {
		if errors.Is(err, domain.ErrQuestionUnavailable) {
			return domain.Question{}, err
		}
		return domain.Question{}, fmt.Errorf("select question: %w", err)
	}
	if q.Difficulty == "" {
		q.Difficulty = difficulty
	}
	return q, nil
}

// Evaluate reports whether answer is correct for q.
func (g *QuestionGate) Evaluate(q domain.Question, answer string) bool {
	return q.Evaluate(answer)
}
