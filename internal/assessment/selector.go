package assessment

import (
	"math/rand/v2"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/abhisek/quizdeck/internal/curriculum"
	"github.com/abhisek/quizdeck/internal/logger"
	"github.com/abhisek/quizdeck/internal/quiz"
)

// Options tweak selection behavior.
type Options struct {
	// Strict fails with *quiz.InsufficientPoolError when the pool is
	// smaller than the target instead of returning a short result.
	Strict bool

	// Rand is the randomness source. Nil uses a randomly seeded PCG.
	Rand *rand.Rand

	// Logger receives shortfall warnings. Nil uses the package logger.
	Logger *zap.Logger
}

// Selector samples part-weighted assessments from a question pool.
type Selector struct {
	partOf map[string]string
	dist   Distribution
	opts   Options
}

// NewSelector builds a selector. The topic->part lookup is taken from the
// tree once.
func NewSelector(tree *curriculum.Tree, dist Distribution, opts Options) *Selector {
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Logger == nil {
		opts.Logger = logger.Get()
	}
	return &Selector{partOf: tree.PartLookup(), dist: dist, opts: opts}
}

// Select draws min(target, len(pool)) distinct questions. Each part
// contributes its rounded quota; parts that fall short are taken whole
// and the gap is backfilled at random from the rest of the pool.
// Questions are tracked by position in pool, so identical content can
// appear twice only if it appears twice in pool.
func (s *Selector) Select(pool []quiz.Question, target int) ([]quiz.Question, error) {
	if target <= 0 {
		return nil, &quiz.ValidationError{Field: "numberOfQuestions", Message: "number of questions must be greater than zero"}
	}
	if s.opts.Strict && len(pool) < target {
		return nil, &quiz.InsufficientPoolError{Have: len(pool), Need: target}
	}

	byPart := lo.GroupBy(lo.Range(len(pool)), func(i int) string {
		return s.partOf[pool[i].Topic]
	})

	quotas := s.dist.Quotas(target)
	selected := make(map[int]bool, target)
	var picked []int

	for _, part := range s.dist.Parts() {
		quota := quotas[part]
		available := byPart[part]
		if len(available) < quota {
			s.opts.Logger.Warn("assessment part shortfall",
				zap.String("part", part),
				zap.Int("quota", quota),
				zap.Int("available", len(available)))
			picked = append(picked, available...)
			continue
		}
		picked = append(picked, s.sample(available, quota)...)
	}
	for _, i := range picked {
		selected[i] = true
	}

	want := min(target, len(pool))
	switch {
	case len(picked) > want:
		picked = s.sample(picked, want)
	case len(picked) < want:
		rest := lo.Filter(lo.Range(len(pool)), func(i int, _ int) bool { return !selected[i] })
		picked = append(picked, s.sample(rest, want-len(picked))...)
	}

	s.shuffle(picked)
	return lo.Map(picked, func(i int, _ int) quiz.Question { return pool[i] }), nil
}

// sample returns n random elements of idx without replacement.
func (s *Selector) sample(idx []int, n int) []int {
	cp := append([]int(nil), idx...)
	s.shuffle(cp)
	if n > len(cp) {
		n = len(cp)
	}
	return cp[:n]
}

func (s *Selector) shuffle(idx []int) {
	s.opts.Rand.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
}
