package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/quizdeck/internal/analysis"
	"github.com/abhisek/quizdeck/internal/assessment"
	"github.com/abhisek/quizdeck/internal/bank"
	"github.com/abhisek/quizdeck/internal/logger"
	"github.com/abhisek/quizdeck/internal/questiongen"
	"github.com/abhisek/quizdeck/internal/quiz"
	"github.com/abhisek/quizdeck/internal/session"
)

var errQuit = errors.New("quit")

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Take a quiz in line mode on stdin",
	Long: "Take a quiz without the full-screen interface. Answer with the option number,\n" +
		"or several numbers separated by commas for multi-select questions. Type q to stop.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, envOptions{llm: true})
		if err != nil {
			return err
		}
		defer e.close()

		ctx := commandContext(cmd)
		settings, err := settingsFromFlags(ctx, cmd, e)
		if err != nil {
			return err
		}

		banks, _ := cmd.Flags().GetStringSlice("bank")
		questions, err := prepareQuestions(ctx, e, settings, e.bankPaths(banks), seededRand(cmd), os.Stderr)
		if err != nil {
			return err
		}

		return playLines(ctx, cmd, e, settings, questions)
	},
}

func init() {
	addSettingsFlags(quizCmd)
	quizCmd.Flags().StringSliceP("bank", "b", nil, "Question bank file for assessments (JSON or YAML, repeatable)")
	quizCmd.Flags().Bool("no-save", false, "Do not record the run in history")
}

// addSettingsFlags registers the flags that describe a run.
func addSettingsFlags(c *cobra.Command) {
	c.Flags().StringP("mode", "m", string(quiz.ModePractice), "Run mode: practice, remedial or assessment")
	c.Flags().StringSliceP("topic", "t", nil, "Topic title or id, fuzzy matched (repeatable)")
	c.Flags().StringSliceP("difficulty", "d", nil, "Difficulty: easy, medium or hard (repeatable, default all)")
	c.Flags().IntP("count", "n", 0, "Number of questions (default from config)")
	c.Flags().Bool("style", false, "Align generated questions with the style of bank questions")
	c.Flags().Uint64("seed", 0, "Seed for topic planning and sampling (0 = random)")
}

// settingsFromFlags builds run settings from the command line. A remedial
// run without topics drills the weak topics of the last run.
func settingsFromFlags(ctx context.Context, cmd *cobra.Command, e *env) (quiz.Settings, error) {
	modeFlag, _ := cmd.Flags().GetString("mode")
	mode, err := quiz.ParseMode(modeFlag)
	if err != nil {
		return quiz.Settings{}, err
	}

	settings := quiz.Settings{Mode: mode}
	settings.StyleAligned, _ = cmd.Flags().GetBool("style")

	settings.NumberOfQuestions, _ = cmd.Flags().GetInt("count")
	if settings.NumberOfQuestions == 0 {
		settings.NumberOfQuestions = e.cfg.QuestionCount(mode)
	}

	diffs, _ := cmd.Flags().GetStringSlice("difficulty")
	if len(diffs) == 0 || mode == quiz.ModeAssessment {
		settings.Difficulties = quiz.AllDifficulties()
	}
	for _, d := range diffs {
		if mode == quiz.ModeAssessment {
			break
		}
		parsed, err := quiz.ParseDifficulty(d)
		if err != nil {
			return quiz.Settings{}, err
		}
		settings.Difficulties = append(settings.Difficulties, parsed)
	}

	queries, _ := cmd.Flags().GetStringSlice("topic")
	for _, q := range queries {
		title, err := e.tree.Resolve(q)
		if err != nil {
			return quiz.Settings{}, err
		}
		settings.Topics = append(settings.Topics, title)
	}

	if mode == quiz.ModeRemedial && len(settings.Topics) == 0 {
		settings.Topics, err = lastWeakTopics(ctx, e)
		if err != nil {
			return quiz.Settings{}, err
		}
	}
	if mode == quiz.ModePractice && len(settings.Topics) == 0 {
		return quiz.Settings{}, &quiz.ValidationError{Field: "topics", Message: "name at least one topic with --topic"}
	}

	return settings, settings.Validate()
}

func lastWeakTopics(ctx context.Context, e *env) ([]string, error) {
	items, err := e.history().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if len(items) == 0 {
		return nil, errors.New("no previous run to take weak topics from; pass --topic")
	}
	weak := session.SummaryFromHistory(items[0], e.cfg.Analysis.Threshold).WeakTopics
	if len(weak) == 0 {
		return nil, errors.New("the last run has no weak topics; pass --topic")
	}
	return weak, nil
}

func seededRand(cmd *cobra.Command) *rand.Rand {
	if seed, _ := cmd.Flags().GetUint64("seed"); seed != 0 {
		return rand.New(rand.NewPCG(seed, seed))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// prepareQuestions generates or samples the questions of a run, writing
// progress to w.
func prepareQuestions(ctx context.Context, e *env, settings quiz.Settings, bankPaths []string, rng *rand.Rand, w io.Writer) ([]quiz.Question, error) {
	if settings.Mode == quiz.ModeAssessment {
		res, err := bank.NewLoader(e.tree).LoadFiles(bankPaths)
		if err != nil {
			return nil, err
		}
		if len(res.Dropped) > 0 {
			fmt.Fprintf(w, "Skipped %d invalid bank entries.\n", len(res.Dropped))
		}
		sel := assessment.NewSelector(e.tree, e.cfg.Distribution(), assessment.Options{
			Strict: e.cfg.Assessment.Strict,
			Rand:   rng,
		})
		return sel.Select(res.Questions, settings.NumberOfQuestions)
	}
	return generate(ctx, e, settings, bankPaths, rng, w)
}

// generate runs a question batch, reporting each slot on w.
func generate(ctx context.Context, e *env, settings quiz.Settings, bankPaths []string, rng *rand.Rand, w io.Writer) ([]quiz.Question, error) {
	gen := e.generator()
	if gen == nil {
		return nil, errors.New("question generation needs an LLM provider; see llm.provider in the config")
	}

	opts := questiongen.BatchOptions{}
	if settings.StyleAligned {
		opts.Examples = e.examples(bankPaths)
	}
	batch, err := questiongen.Prepare(e.tree, gen, settings, opts, rng)
	if err != nil {
		return nil, err
	}

	for {
		i, ok := batch.Next()
		if !ok {
			break
		}
		fmt.Fprintf(w, "Generating question %d/%d...\n", i+1, batch.Len())
		q, err := batch.Generate(ctx, i)
		batch.Record(i, q, err)
	}

	questions := batch.Questions()
	if len(questions) == 0 {
		if err := batch.Err(); err != nil {
			return nil, err
		}
		return nil, &quiz.InsufficientPoolError{Have: 0, Need: batch.Len()}
	}
	if err := batch.Err(); err != nil {
		fmt.Fprintf(w, "Generation stopped after %d of %d questions: %v\n", len(questions), batch.Len(), err)
	} else if n := batch.Skipped(); n > 0 {
		fmt.Fprintf(w, "%d questions were skipped after malformed responses.\n", n)
	}
	return questions, nil
}

// playLines runs a quiz over stdin and stdout.
func playLines(ctx context.Context, cmd *cobra.Command, e *env, settings quiz.Settings, questions []quiz.Question) error {
	out := cmd.OutOrStdout()
	in := bufio.NewScanner(cmd.InOrStdin())

	state, err := session.New(settings, questions, time.Now())
	if err != nil {
		return err
	}

	for !state.Done() {
		q, _ := state.Current()
		cur, total := state.Progress()
		fmt.Fprintf(out, "\n[%d/%d] %s (%s)\n", cur, total, q.Topic, q.Difficulty)
		fmt.Fprintln(out, q.Text)
		for i, opt := range q.Options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
		}
		if q.IsMultipleChoice {
			fmt.Fprintln(out, "Select all that apply.")
		}

		answer, err := readAnswer(in, out, q)
		if errors.Is(err, errQuit) {
			break
		}
		if err != nil {
			return err
		}

		res, err := state.Submit(answer, time.Now())
		if err != nil {
			return err
		}
		if res.Correct {
			fmt.Fprintln(out, "Correct!")
		} else {
			fmt.Fprintf(out, "Incorrect. Correct answer: %s\n", q.CorrectAnswer)
		}
		if q.Explanation != "" {
			fmt.Fprintln(out, q.Explanation)
		}
		state.Advance(time.Now())
	}

	if len(state.Results) == 0 {
		fmt.Fprintln(out, "No questions answered.")
		return nil
	}
	state.Questions = state.Questions[:len(state.Results)]

	now := time.Now()
	sum := session.BuildSummary(state, e.cfg.Analysis.Threshold, now)
	printSummary(out, sum)

	actx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	report, err := e.analyzer().Analyze(actx, sum)
	if err != nil {
		logger.Get().Warn("analysis failed, using rule-based weak topics", zap.Error(err))
		report, _ = analysis.RuleAnalyzer{Threshold: e.cfg.Analysis.Threshold}.Analyze(actx, sum)
	}
	if report.Feedback != "" {
		fmt.Fprintf(out, "\n%s\n", report.Feedback)
	}
	if len(report.WeakTopics) > 0 {
		fmt.Fprintf(out, "\nWeak topics: %s\n", strings.Join(report.WeakTopics, ", "))
	}

	if noSave, _ := cmd.Flags().GetBool("no-save"); noSave {
		return nil
	}
	if _, err := e.history().Save(ctx, session.ToHistoryItem(state, now)); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// readAnswer reads option numbers until a valid answer is given.
func readAnswer(in *bufio.Scanner, out io.Writer, q quiz.Question) ([]string, error) {
	for {
		fmt.Fprint(out, "> ")
		if !in.Scan() {
			if err := in.Err(); err != nil {
				return nil, err
			}
			return nil, errQuit
		}
		line := strings.TrimSpace(in.Text())
		if line == "q" || line == "quit" {
			return nil, errQuit
		}
		answer, err := parseAnswer(line, q)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		return answer, nil
	}
}

// parseAnswer maps "2" or "1,3" to option texts.
func parseAnswer(line string, q quiz.Question) ([]string, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) == 0 {
		return nil, errors.New("enter an option number")
	}
	if !q.IsMultipleChoice && len(fields) > 1 {
		return nil, errors.New("pick a single option")
	}

	seen := make(map[int]bool)
	var answer []string
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 1 || n > len(q.Options) {
			return nil, fmt.Errorf("%q is not an option between 1 and %d", f, len(q.Options))
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		answer = append(answer, q.Options[n-1])
	}
	return answer, nil
}

func printSummary(w io.Writer, sum *session.Summary) {
	secs := int(sum.Duration.Seconds())
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("─", 48))
	fmt.Fprintf(w, "%s: %d/%d correct (%.0f%%) in %d:%02d\n",
		sum.Mode.DisplayName(), sum.TotalCorrect, sum.TotalQuestions, sum.Accuracy*100, secs/60, secs%60)
	fmt.Fprintln(w, strings.Repeat("─", 48))
	for _, t := range sum.Topics {
		fmt.Fprintf(w, "%-32s  %d/%d\n", truncate(t.Label, 32), t.Correct, t.Attempted)
	}
	if len(sum.Difficulties) > 0 {
		fmt.Fprintln(w)
		for _, d := range sum.Difficulties {
			fmt.Fprintf(w, "%-32s  %d/%d\n", d.Label, d.Correct, d.Attempted)
		}
	}
}
