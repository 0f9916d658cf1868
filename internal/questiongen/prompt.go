package questiongen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/quizdeck/internal/quiz"
)

const systemPrompt = `You are an experienced instructor writing quiz questions for a software engineering course.

Rules:
- Write exactly one question about the given topic at the given difficulty.
- Respond with a single JSON object and nothing else. No prose, no code fences.
- The object has the fields "question", "options", "answer_keys", "isMultipleChoice" and "explanation".
- Prefix every option with its letter: "A) ", "B) ", "C) " and so on. Use at most 6 options.
- "answer_keys" lists the letters of the correct options, e.g. ["B"].
- Set "isMultipleChoice" to true only when more than one option is correct.
- Distractors should reflect common misconceptions, not obviously wrong values.
- The explanation says briefly why the correct options are correct.
- Do not repeat any question from the "already asked" list.`

// buildUserMessage constructs the user message for one generation request.
func buildUserMessage(req Request, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	if req.TopicPath != "" && req.TopicPath != req.Topic {
		fmt.Fprintf(&b, "Curriculum path: %s\n", req.TopicPath)
	}
	fmt.Fprintf(&b, "Difficulty: %s\n", req.Difficulty)
	fmt.Fprintf(&b, "Minimum options: %d\n", cfg.contract(req).minOptions())

	b.WriteString("\nAlready asked in this session:\n")
	b.WriteString(buildDedup(req.PriorQuestions, cfg.MaxPriorQuestions))

	if req.StyleAligned && len(req.Examples) > 0 {
		b.WriteString("\n\nMatch the style, length and tone of these example questions:\n")
		b.WriteString(buildExamples(req.Examples, cfg.MaxExamples))
	}

	return b.String()
}

// buildDedup formats prior questions for the prompt, respecting the max limit.
// Returns "None" if there are no prior questions.
func buildDedup(priorQuestions []string, max int) string {
	if len(priorQuestions) == 0 {
		return "None"
	}

	// Keep only the most recent N questions.
	if max > 0 && len(priorQuestions) > max {
		priorQuestions = priorQuestions[len(priorQuestions)-max:]
	}

	var b strings.Builder
	for i, q := range priorQuestions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}

// buildExamples renders example questions in the response format so the
// model sees the expected shape as well as the style.
func buildExamples(examples []quiz.Question, max int) string {
	if max > 0 && len(examples) > max {
		examples = examples[:max]
	}

	var b strings.Builder
	for _, q := range examples {
		c := toCandidate(q)
		data, err := json.Marshal(c)
		if err != nil {
			continue
		}
		b.Write(data)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// toCandidate renders a question back into the lettered response format.
func toCandidate(q quiz.Question) Candidate {
	c := Candidate{
		Question:         q.Text,
		IsMultipleChoice: q.IsMultipleChoice,
		Explanation:      q.Explanation,
	}
	correct := q.CorrectAnswer.Values()
	for i, o := range q.Options {
		letter := string(rune('A' + i))
		c.Options = append(c.Options, letter+") "+o)
		for _, v := range correct {
			if v == o {
				c.AnswerKeys = append(c.AnswerKeys, letter)
				break
			}
		}
	}
	return c
}
