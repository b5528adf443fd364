package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"learnhub_backend/internal/model"
	"math"
	"strconv"
	"strings"
	"time"
)

// Deadline returns when the quiz closes. ok is false when no limit is set.
func Deadline(quiz *model.Quiz) (deadline time.Time, ok bool) {
	if quiz.TimeLimit == nil || quiz.TimeLimitStart == nil {
		return time.Time{}, false
	}
	return quiz.TimeLimitStart.Add(time.Duration(*quiz.TimeLimit) * time.Minute), true
}

// IsExpired reports whether now is strictly past the quiz deadline.
func IsExpired(quiz *model.Quiz, now time.Time) bool {
	deadline, ok := Deadline(quiz)
	if !ok {
		return false
	}
	return now.After(deadline)
}

// RemainingSeconds is nil when the quiz has no limit and never negative.
func RemainingSeconds(quiz *model.Quiz, now time.Time) *int {
	deadline, ok := Deadline(quiz)
	if !ok {
		return nil
	}
	secs := int(deadline.Sub(now).Seconds())
	if secs < 0 {
		secs = 0
	}
	return &secs
}

// Selection is a learner's answer to one question. It decodes from either a
// single index or a list of indices.
type Selection []int

func (s *Selection) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var list []int
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("selection: %w", err)
		}
		*s = list
		return nil
	}
	var single int
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("selection: %w", err)
	}
	*s = Selection{single}
	return nil
}

// Normalize drops duplicate indices, keeping first-seen order.
func (s Selection) Normalize() []int {
	seen := make(map[int]struct{}, len(s))
	out := make([]int, 0, len(s))
	for _, idx := range s {
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		out = append(out, idx)
	}
	return out
}

// joinIndices flattens the indices, as submitted, to the comma-joined form
// stored per question.
func joinIndices(indices []int) string {
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ",")
}

type QuestionScore struct {
	Points       float64
	FullyCorrect bool
}

// ScoreQuestion awards credit in proportion to the correct options covered.
// Extra wrong picks cost the fully-correct flag but not points.
func ScoreQuestion(question *model.Question, selected Selection) QuestionScore {
	correct := question.CorrectIndices()
	if len(correct) == 0 {
		return QuestionScore{}
	}

	picked := selected.Normalize()
	pickedSet := make(map[int]struct{}, len(picked))
	for _, idx := range picked {
		pickedSet[idx] = struct{}{}
	}

	matched := 0
	for _, idx := range correct {
		if _, ok := pickedSet[idx]; ok {
			matched++
		}
	}

	return QuestionScore{
		Points:       float64(matched) / float64(len(correct)) * question.Points,
		FullyCorrect: matched == len(correct) && len(picked) == len(correct),
	}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// ScaleScore maps obtained/total onto 0-10. persisted keeps two decimals;
// display is derived from persisted with one decimal.
func ScaleScore(obtained, total float64) (persisted, display float64) {
	if total <= 0 {
		return 0, 0
	}
	persisted = roundTo(obtained/total*10, 2)
	display = roundTo(persisted, 1)
	return persisted, display
}

func Percentage(obtained, total float64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(obtained / total * 100))
}
