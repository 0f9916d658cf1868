package questiongen

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/abhisek/quizdeck/internal/curriculum"
	"github.com/abhisek/quizdeck/internal/quiz"
)

// Slot is one question to generate.
type Slot struct {
	Topic      string
	Difficulty quiz.Difficulty
}

// Plan spreads the requested number of questions over the selected leaf
// topics and difficulties. Topics are shuffled once and then assigned
// round-robin, so every topic is used before any repeats.
func Plan(settings quiz.Settings, rng *rand.Rand) ([]Slot, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if len(settings.Topics) == 0 {
		return nil, &quiz.ValidationError{Field: "topics", Message: "select at least one leaf topic"}
	}

	topics := slices.Clone(settings.Topics)
	if rng != nil {
		rng.Shuffle(len(topics), func(i, j int) { topics[i], topics[j] = topics[j], topics[i] })
	}

	slots := make([]Slot, settings.NumberOfQuestions)
	for i := range slots {
		slots[i] = Slot{
			Topic:      topics[i%len(topics)],
			Difficulty: settings.Difficulties[i%len(settings.Difficulties)],
		}
	}
	return slots, nil
}

// LeafTopics narrows the selected titles to the leaf topics questions are
// generated for. Remedial runs first expand each weak topic to its subtree.
func LeafTopics(tree *curriculum.Tree, settings quiz.Settings) []string {
	titles := settings.Topics
	if settings.Mode == quiz.ModeRemedial {
		titles = tree.ExpandWeakTopics(titles)
	}
	return tree.LeafFilter(titles)
}

// Prepare plans a generator run over tree and returns its batch. Requests
// carry the curriculum path of their topic.
func Prepare(tree *curriculum.Tree, gen Generator, settings quiz.Settings, opts BatchOptions, rng *rand.Rand) (*Batch, error) {
	if !settings.Mode.Generated() {
		return nil, &quiz.ValidationError{Field: "mode", Message: fmt.Sprintf("%s questions are not generated", settings.Mode.DisplayName())}
	}
	settings.Topics = LeafTopics(tree, settings)
	slots, err := Plan(settings, rng)
	if err != nil {
		return nil, err
	}
	if opts.Path == nil {
		opts.Path = tree.Path
	}
	opts.StyleAligned = opts.StyleAligned || settings.StyleAligned
	return NewBatch(gen, slots, opts), nil
}
