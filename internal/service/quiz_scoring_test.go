package service

import (
	"encoding/json"
	"learnhub_backend/internal/model"
	"reflect"
	"testing"
	"time"
)

func questionWith(points float64, correct ...bool) *model.Question {
	q := &model.Question{Points: points}
	for _, c := range correct {
		q.Options = append(q.Options, model.Option{IsCorrect: c})
	}
	return q
}

func TestScoreQuestion(t *testing.T) {
	// options 0 and 2 are correct
	q := questionWith(4, true, false, true, false)

	tests := []struct {
		name     string
		selected Selection
		points   float64
		full     bool
	}{
		{"exact", Selection{0, 2}, 4, true},
		{"exact unordered", Selection{2, 0}, 4, true},
		{"subset", Selection{2}, 2, false},
		{"superset", Selection{0, 1, 2}, 4, false},
		{"wrong only", Selection{1}, 0, false},
		{"empty", nil, 0, false},
		{"duplicates ignored", Selection{0, 0, 2, 2}, 4, true},
		{"out of range", Selection{9}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreQuestion(q, tt.selected)
			if got.Points != tt.points || got.FullyCorrect != tt.full {
				t.Errorf("ScoreQuestion(%v) = %+v, want points=%v full=%v", tt.selected, got, tt.points, tt.full)
			}
		})
	}
}

func TestScoreQuestionNoCorrectOption(t *testing.T) {
	q := questionWith(4, false, false)
	if got := ScoreQuestion(q, Selection{0}); got.Points != 0 || got.FullyCorrect {
		t.Errorf("got %+v, want zero", got)
	}
}

func TestScaleScore(t *testing.T) {
	tests := []struct {
		obtained, total    float64
		persisted, display float64
	}{
		{8, 8, 10, 10},
		{6, 8, 7.5, 7.5},
		{0, 8, 0, 0},
		{1, 3, 3.33, 3.3},
		{2, 3, 6.67, 6.7},
		{5, 0, 0, 0},
	}
	for _, tt := range tests {
		p, d := ScaleScore(tt.obtained, tt.total)
		if p != tt.persisted || d != tt.display {
			t.Errorf("ScaleScore(%v, %v) = %v, %v; want %v, %v", tt.obtained, tt.total, p, d, tt.persisted, tt.display)
		}
		if roundTo(p, 1) != d {
			t.Errorf("display %v not derived from persisted %v", d, p)
		}
	}
}

func TestPercentage(t *testing.T) {
	if got := Percentage(6, 8); got != 75 {
		t.Errorf("Percentage(6, 8) = %d", got)
	}
	if got := Percentage(1, 0); got != 0 {
		t.Errorf("Percentage(1, 0) = %d", got)
	}
}

func TestSelectionUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want Selection
	}{
		{`2`, Selection{2}},
		{`[0,3]`, Selection{0, 3}},
		{`[]`, Selection{}},
		{`null`, nil},
	}
	for _, tt := range tests {
		var s Selection
		if err := json.Unmarshal([]byte(tt.in), &s); err != nil {
			t.Fatalf("Unmarshal(%s): %v", tt.in, err)
		}
		if !reflect.DeepEqual(s, tt.want) {
			t.Errorf("Unmarshal(%s) = %#v, want %#v", tt.in, s, tt.want)
		}
	}

	var s Selection
	if err := json.Unmarshal([]byte(`"a"`), &s); err == nil {
		t.Error("expected error for string selection")
	}
}

func TestExpiry(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	limit := 10
	start := now.Add(-5 * time.Minute)
	quiz := &model.Quiz{TimeLimit: &limit, TimeLimitStart: &start}

	if IsExpired(quiz, now) {
		t.Fatal("quiz expired before deadline")
	}
	if secs := RemainingSeconds(quiz, now); secs == nil || *secs != 300 {
		t.Fatalf("RemainingSeconds = %v, want 300", secs)
	}
	if IsExpired(quiz, now.Add(5*time.Minute)) {
		t.Error("quiz expired exactly at deadline")
	}
	if !IsExpired(quiz, now.Add(5*time.Minute+time.Second)) {
		t.Error("quiz not expired after deadline")
	}

	open := &model.Quiz{}
	if IsExpired(open, now) || RemainingSeconds(open, now) != nil {
		t.Error("quiz without a limit must never expire")
	}
}

func TestJoinIndices(t *testing.T) {
	if got := joinIndices(Selection{3, 1, 3}.Normalize()); got != "3,1" {
		t.Errorf("joinIndices = %q", got)
	}
	if got := joinIndices(nil); got != "" {
		t.Errorf("joinIndices(nil) = %q", got)
	}
}
