package questiongen

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/quizdeck/internal/logger"
	"github.com/abhisek/quizdeck/internal/quiz"
)

// BatchOptions carries per-run request context.
type BatchOptions struct {
	StyleAligned bool
	Examples     []quiz.Question

	// Path returns the curriculum path of a topic. Optional.
	Path func(topic string) string
}

// Batch generates a planned list of slots sequentially, one request per
// slot. A malformed response skips its slot; a malformed question or a
// provider failure stops the batch. Questions produced before a stop are
// kept.
//
// Generate does not change the batch, so it can run off the UI goroutine;
// Record must be called from the goroutine that owns the batch.
type Batch struct {
	gen   Generator
	slots []Slot
	opts  BatchOptions

	questions []quiz.Question
	skipped   []error
	err       error
	next      int
	done      bool
}

// NewBatch creates a batch over slots.
func NewBatch(gen Generator, slots []Slot, opts BatchOptions) *Batch {
	return &Batch{gen: gen, slots: slots, opts: opts, done: len(slots) == 0}
}

// Len returns the number of planned slots.
func (b *Batch) Len() int { return len(b.slots) }

// Next returns the index of the next slot to generate.
func (b *Batch) Next() (int, bool) {
	if b.done {
		return 0, false
	}
	return b.next, true
}

// Done reports whether no more slots will be generated.
func (b *Batch) Done() bool { return b.done }

// Questions returns the questions produced so far.
func (b *Batch) Questions() []quiz.Question { return b.questions }

// Skipped returns the number of slots skipped after malformed responses.
func (b *Batch) Skipped() int { return len(b.skipped) }

// Err returns the error that stopped the batch. When every slot was
// skipped it returns the last malformed response.
func (b *Batch) Err() error {
	if b.err != nil {
		return b.err
	}
	if b.done && len(b.questions) == 0 && len(b.skipped) > 0 {
		return b.skipped[len(b.skipped)-1]
	}
	return nil
}

// Request builds the generation request for slot i.
func (b *Batch) Request(i int) Request {
	s := b.slots[i]
	req := Request{
		Topic:        s.Topic,
		Difficulty:   s.Difficulty,
		StyleAligned: b.opts.StyleAligned,
		Examples:     b.opts.Examples,
	}
	if b.opts.Path != nil {
		req.TopicPath = b.opts.Path(s.Topic)
	}
	for _, q := range b.questions {
		req.PriorQuestions = append(req.PriorQuestions, q.Text)
	}
	return req
}

// Generate requests the question for slot i.
func (b *Batch) Generate(ctx context.Context, i int) (*quiz.Question, error) {
	if i < 0 || i >= len(b.slots) {
		return nil, fmt.Errorf("slot %d out of range", i)
	}
	return b.gen.Generate(ctx, b.Request(i))
}

// Record stores the outcome of slot i and reports whether the batch
// continues.
func (b *Batch) Record(i int, q *quiz.Question, err error) bool {
	if b.done {
		return false
	}
	log := logger.Get()

	var malformed *MalformedResponse
	switch {
	case err == nil && q != nil:
		b.questions = append(b.questions, *q)
	case errors.As(err, &malformed):
		log.Warn("skipping question slot after malformed response",
			zap.Int("slot", i),
			zap.String("topic", b.slots[i].Topic),
			zap.String("step", malformed.Step),
			zap.String("reason", malformed.Reason))
		b.skipped = append(b.skipped, err)
	default:
		if err == nil {
			err = fmt.Errorf("slot %d produced no question", i)
		}
		log.Warn("question batch stopped",
			zap.Int("slot", i),
			zap.Int("produced", len(b.questions)),
			zap.Error(err))
		b.err = err
		b.done = true
		return false
	}

	b.next = i + 1
	if b.next >= len(b.slots) {
		b.done = true
	}
	return !b.done
}

// Run generates every remaining slot in order. It returns the produced
// questions together with the error that stopped the batch, if any.
func (b *Batch) Run(ctx context.Context) ([]quiz.Question, error) {
	for {
		i, ok := b.Next()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			b.err = err
			b.done = true
			break
		}
		q, err := b.Generate(ctx, i)
		b.Record(i, q, err)
	}
	return b.questions, b.Err()
}
