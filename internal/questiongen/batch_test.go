package questiongen

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/abhisek/quizdeck/internal/curriculum"
	"github.com/abhisek/quizdeck/internal/quiz"
)

// scriptedGenerator returns one scripted outcome per call.
type scriptedGenerator struct {
	outcomes []error
	requests []Request
}

func (g *scriptedGenerator) Generate(_ context.Context, req Request) (*quiz.Question, error) {
	i := len(g.requests)
	g.requests = append(g.requests, req)
	if i < len(g.outcomes) && g.outcomes[i] != nil {
		return nil, g.outcomes[i]
	}
	return &quiz.Question{ID: i + 1, Text: "question " + req.Topic, Topic: req.Topic, Difficulty: req.Difficulty}, nil
}

func slotsFor(n int) []Slot {
	slots := make([]Slot, n)
	for i := range slots {
		slots[i] = Slot{Topic: "Loops", Difficulty: quiz.DifficultyEasy}
	}
	return slots
}

func TestBatch_AllSucceed(t *testing.T) {
	gen := &scriptedGenerator{}
	b := NewBatch(gen, slotsFor(3), BatchOptions{Path: func(s string) string { return "P > " + s }})

	qs, err := b.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 3 || !b.Done() {
		t.Fatalf("expected 3 questions, got %d", len(qs))
	}
	if got := gen.requests[2].PriorQuestions; len(got) != 2 {
		t.Errorf("third request should carry 2 prior questions, got %v", got)
	}
	if gen.requests[0].TopicPath != "P > Loops" {
		t.Errorf("topic path = %q", gen.requests[0].TopicPath)
	}
}

func TestBatch_MalformedResponseSkipsSlot(t *testing.T) {
	gen := &scriptedGenerator{outcomes: []error{nil, &MalformedResponse{Step: "brace-scan"}, nil}}
	b := NewBatch(gen, slotsFor(3), BatchOptions{})

	qs, err := b.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 2 || b.Skipped() != 1 {
		t.Errorf("got %d questions, %d skipped", len(qs), b.Skipped())
	}
	if len(gen.requests) != 3 {
		t.Errorf("expected every slot requested, got %d", len(gen.requests))
	}
}

func TestBatch_MalformedQuestionStops(t *testing.T) {
	gen := &scriptedGenerator{outcomes: []error{nil, &MalformedQuestion{Rule: RuleAnswerKeyRange}, nil}}
	b := NewBatch(gen, slotsFor(3), BatchOptions{})

	qs, err := b.Run(context.Background())
	var mq *MalformedQuestion
	if !errors.As(err, &mq) {
		t.Fatalf("expected *MalformedQuestion, got %v", err)
	}
	if len(qs) != 1 {
		t.Errorf("expected the first question kept, got %d", len(qs))
	}
	if len(gen.requests) != 2 {
		t.Errorf("batch should stop after the failing slot, made %d requests", len(gen.requests))
	}
}

func TestBatch_ProviderErrorStops(t *testing.T) {
	gen := &scriptedGenerator{outcomes: []error{errors.New("connection refused")}}
	b := NewBatch(gen, slotsFor(2), BatchOptions{})

	qs, err := b.Run(context.Background())
	if err == nil || len(qs) != 0 {
		t.Fatalf("expected error and no questions, got %v / %d", err, len(qs))
	}
}

func TestBatch_AllSkippedReportsMalformedResponse(t *testing.T) {
	mr := &MalformedResponse{Step: "decode"}
	gen := &scriptedGenerator{outcomes: []error{mr, mr}}
	b := NewBatch(gen, slotsFor(2), BatchOptions{})

	_, err := b.Run(context.Background())
	var got *MalformedResponse
	if !errors.As(err, &got) {
		t.Errorf("expected *MalformedResponse, got %v", err)
	}
}

func TestBatch_StepwiseRecord(t *testing.T) {
	gen := &scriptedGenerator{}
	b := NewBatch(gen, slotsFor(2), BatchOptions{})

	i, ok := b.Next()
	if !ok || i != 0 {
		t.Fatalf("Next = %d, %v", i, ok)
	}
	q, err := b.Generate(context.Background(), i)
	if !b.Record(i, q, err) {
		t.Fatal("batch should continue after first slot")
	}
	i, _ = b.Next()
	q, err = b.Generate(context.Background(), i)
	if b.Record(i, q, err) {
		t.Error("batch should be done after last slot")
	}
	if _, ok := b.Next(); ok {
		t.Error("Next should report done")
	}
	if b.Record(5, nil, nil) {
		t.Error("Record after done must be ignored")
	}
	if len(b.Questions()) != 2 {
		t.Errorf("expected 2 questions, got %d", len(b.Questions()))
	}
}

func TestBatch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := NewBatch(&scriptedGenerator{}, slotsFor(2), BatchOptions{})
	if _, err := b.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPlan(t *testing.T) {
	settings := quiz.Settings{
		Topics:            []string{"Loops", "Recursion", "Hash Maps"},
		Difficulties:      []quiz.Difficulty{quiz.DifficultyEasy, quiz.DifficultyHard},
		NumberOfQuestions: 7,
		Mode:              quiz.ModePractice,
	}
	slots, err := Plan(settings, rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 7 {
		t.Fatalf("expected 7 slots, got %d", len(slots))
	}

	// Every topic appears before any repeats.
	first := []string{slots[0].Topic, slots[1].Topic, slots[2].Topic}
	slices.Sort(first)
	if !slices.Equal(first, []string{"Hash Maps", "Loops", "Recursion"}) {
		t.Errorf("first round = %v", first)
	}
	if slots[0].Difficulty != quiz.DifficultyEasy || slots[1].Difficulty != quiz.DifficultyHard {
		t.Errorf("difficulties not alternating: %v", slots[:2])
	}
	if !slices.Equal(settings.Topics, []string{"Loops", "Recursion", "Hash Maps"}) {
		t.Error("Plan must not reorder the caller's topics")
	}
}

func TestPlan_RejectsEmptyTopics(t *testing.T) {
	_, err := Plan(quiz.Settings{
		Difficulties:      []quiz.Difficulty{quiz.DifficultyEasy},
		NumberOfQuestions: 3,
		Mode:              quiz.ModePractice,
	}, nil)
	var verr *quiz.ValidationError
	if !errors.As(err, &verr) || verr.Field != "topics" {
		t.Errorf("expected topics ValidationError, got %v", err)
	}
}

func TestLeafTopics(t *testing.T) {
	tree := curriculum.Default()

	practice := quiz.Settings{Mode: quiz.ModePractice, Topics: []string{"Control Flow", "Loops", "Hash Maps"}}
	if got := LeafTopics(tree, practice); !slices.Equal(got, []string{"Loops", "Hash Maps"}) {
		t.Errorf("practice leaves = %v", got)
	}

	remedial := quiz.Settings{Mode: quiz.ModeRemedial, Topics: []string{"Control Flow"}}
	if got := LeafTopics(tree, remedial); !slices.Equal(got, []string{"Conditionals", "Loops", "Recursion"}) {
		t.Errorf("remedial leaves = %v", got)
	}
}

func TestPrepare(t *testing.T) {
	gen := &scriptedGenerator{}
	settings := quiz.Settings{
		Topics:            []string{"Recursion"},
		Difficulties:      []quiz.Difficulty{quiz.DifficultyMedium},
		NumberOfQuestions: 2,
		Mode:              quiz.ModePractice,
		StyleAligned:      true,
	}
	b, err := Prepare(curriculum.Default(), gen, settings, BatchOptions{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := b.Request(0)
	if req.TopicPath != "Programming Fundamentals > Control Flow > Recursion" || !req.StyleAligned {
		t.Errorf("unexpected request: %+v", req)
	}

	// Only a parent selected in practice mode leaves nothing to generate.
	settings.Topics = []string{"Control Flow"}
	_, err = Prepare(curriculum.Default(), gen, settings, BatchOptions{}, nil)
	var verr *quiz.ValidationError
	if !errors.As(err, &verr) || verr.Field != "topics" {
		t.Errorf("expected topics ValidationError, got %v", err)
	}

	settings.Mode = quiz.ModeAssessment
	if _, err := Prepare(curriculum.Default(), gen, settings, BatchOptions{}, nil); !errors.As(err, &verr) || verr.Field != "mode" {
		t.Errorf("expected mode ValidationError, got %v", err)
	}
}
