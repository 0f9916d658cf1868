package quiz

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestAnswerJSON(t *testing.T) {
	tests := []struct {
		name   string
		answer Answer
		want   string
	}{
		{"single", Single("x"), `"x"`},
		{"set", Set("x", "y"), `["x","y"]`},
		{"set of one stays a set", Set("x"), `["x"]`},
		{"set dedups", Set("x", "x", "y"), `["x","y"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.answer)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAnswerUnmarshal(t *testing.T) {
	var a Answer
	if err := json.Unmarshal([]byte(`["b","a"]`), &a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.IsSet() || len(a.Values()) != 2 {
		t.Fatalf("expected set of two, got %+v", a)
	}

	if err := json.Unmarshal([]byte(`"a"`), &a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.IsSet() || a.String() != "a" {
		t.Fatalf("expected single a, got %+v", a)
	}

	if err := json.Unmarshal([]byte(`42`), &a); err == nil {
		t.Fatal("expected error for numeric answer")
	}
}

func TestAnswerMatches(t *testing.T) {
	set := Set("a", "c")
	if !set.Matches([]string{"c", "a"}) {
		t.Error("order should not matter")
	}
	if set.Matches([]string{"a"}) {
		t.Error("partial answer should not match")
	}
	if set.Matches([]string{"a", "c", "d"}) {
		t.Error("extra option should not match")
	}
	if !Single("x").Matches([]string{"x"}) {
		t.Error("single answer should match")
	}
	if (Answer{}).Matches(nil) {
		t.Error("empty answer never matches")
	}
}

func TestSettingsValidate(t *testing.T) {
	valid := Settings{
		Topics:            []string{"Unit Tests"},
		Difficulties:      []Difficulty{DifficultyEasy},
		NumberOfQuestions: 5,
		Mode:              ModePractice,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name  string
		edit  func(*Settings)
		field string
	}{
		{"zero count", func(s *Settings) { s.NumberOfQuestions = 0 }, "numberOfQuestions"},
		{"no difficulties", func(s *Settings) { s.Difficulties = nil }, "difficulties"},
		{"bad difficulty", func(s *Settings) { s.Difficulties = []Difficulty{"brutal"} }, "difficulties"},
		{"no topics", func(s *Settings) { s.Topics = nil }, "topics"},
		{"bad mode", func(s *Settings) { s.Mode = "exam" }, "mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.edit(&s)
			err := s.Validate()
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("got field %q, want %q", ve.Field, tt.field)
			}
		})
	}
}

func TestSettingsValidate_AssessmentNeedsNoTopics(t *testing.T) {
	s := Settings{
		Difficulties:      AllDifficulties(),
		NumberOfQuestions: 40,
		Mode:              ModeAssessment,
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGrade(t *testing.T) {
	q := Question{ID: 1, Options: []string{"x", "y"}, CorrectAnswer: Single("y")}
	r := Grade(q, []string{"y"}, 3*time.Second)
	if !r.Correct {
		t.Error("expected correct result")
	}
	if r.TimeSpent != 3*time.Second {
		t.Errorf("got time %v", r.TimeSpent)
	}
	if Grade(q, []string{"x"}, 0).Correct {
		t.Error("expected incorrect result")
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range AllModes() {
		got, err := ParseMode(string(m))
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %q, %v", m, got, err)
		}
	}
	if _, err := ParseMode("exam"); err == nil {
		t.Error("expected error for unknown mode")
	}
	if ModeAssessment.Generated() {
		t.Error("assessment mode is not generated")
	}
}
