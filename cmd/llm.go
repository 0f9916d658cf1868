package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizdeck/internal/llm"
	"github.com/abhisek/quizdeck/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM calls and their cost",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		since, _ := cmd.Flags().GetDuration("since")

		deps, err := newEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer deps.close()

		opts := store.QueryOpts{Limit: limit, Purpose: purpose}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}
		events, err := deps.store.EventRepo().QueryLLMEvents(commandContext(cmd), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No LLM calls recorded.")
			return nil
		}

		tw := newTable(out)
		fmt.Fprintln(tw, "ID\tTIME\tPURPOSE\tMODEL\tIN\tOUT\tMS\tSTATUS")
		for _, e := range events {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
				e.ID, e.Timestamp.Local().Format(timeLayout), e.Purpose,
				truncate(e.Model, 28), e.InputTokens, e.OutputTokens, e.LatencyMs, eventStatus(e))
		}
		return tw.Flush()
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the captured request and response of one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q", args[0])
		}

		deps, err := newEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer deps.close()

		ev, err := deps.store.EventRepo().GetLLMEvent(commandContext(cmd), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if ev == nil {
			return fmt.Errorf("event %d not found", id)
		}
		printEvent(cmd.OutOrStdout(), ev)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage per purpose and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer deps.close()

		ctx := commandContext(cmd)
		repo := deps.store.EventRepo()
		byPurpose, err := repo.LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(byPurpose) == 0 {
			fmt.Fprintln(out, "No LLM usage recorded yet.")
			return nil
		}
		byModel, err := repo.LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}

		if err := printPurposeUsage(out, byPurpose); err != nil {
			return err
		}
		fmt.Fprintln(out)
		return printModelCost(out, byModel)
	},
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func eventStatus(e store.LLMEvent) string {
	switch {
	case !e.Success:
		return "failed"
	case e.Cached:
		return "cached"
	default:
		return "ok"
	}
}

func printEvent(w io.Writer, e *store.LLMEvent) {
	fmt.Fprintf(w, "ID:        %d\n", e.ID)
	fmt.Fprintf(w, "Time:      %s\n", e.Timestamp.Local().Format(timeLayout))
	fmt.Fprintf(w, "Provider:  %s\n", e.Provider)
	fmt.Fprintf(w, "Model:     %s\n", e.Model)
	fmt.Fprintf(w, "Purpose:   %s\n", e.Purpose)
	fmt.Fprintf(w, "Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
	fmt.Fprintf(w, "Latency:   %dms\n", e.LatencyMs)
	fmt.Fprintf(w, "Status:    %s\n", eventStatus(*e))
	if e.ErrorMessage != "" {
		fmt.Fprintf(w, "Error:     %s\n", e.ErrorMessage)
	}

	section := func(title, body string) {
		rule := strings.Repeat("─", 60)
		fmt.Fprintf(w, "\n%s\n%s\n%s\n", rule, title, rule)
		if body == "" {
			body = "(not captured)"
		}
		fmt.Fprintln(w, body)
	}
	section("REQUEST", e.RequestBody)
	section("RESPONSE", e.ResponseBody)
}

func printPurposeUsage(w io.Writer, rows []store.PurposeUsage) error {
	fmt.Fprintln(w, "Usage by purpose")
	tw := newTable(w)
	fmt.Fprintln(tw, "PURPOSE\tCALLS\tINPUT\tOUTPUT\tTOTAL\tAVG MS")
	var calls, in, out int
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n",
			r.Purpose, r.Calls, r.InputTokens, r.OutputTokens, r.InputTokens+r.OutputTokens, r.AvgLatencyMs)
		calls += r.Calls
		in += r.InputTokens
		out += r.OutputTokens
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t%d\t%d\t%d\t\n", calls, in, out, in+out)
	return tw.Flush()
}

func printModelCost(w io.Writer, rows []store.ModelUsage) error {
	if len(rows) == 0 {
		return nil
	}
	fmt.Fprintln(w, "Estimated cost (USD)")
	tw := newTable(w)
	fmt.Fprintln(tw, "MODEL\tCALLS\tINPUT\tOUTPUT\tCOST")

	var total float64
	var unpriced []string
	for _, r := range rows {
		cost := "?"
		if price := llm.LookupCost(r.Model); price != nil {
			c := price.Cost(r.InputTokens, r.OutputTokens)
			total += c
			cost = formatCost(c)
		} else {
			unpriced = append(unpriced, r.Model)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", truncate(r.Model, 32), r.Calls, r.InputTokens, r.OutputTokens, cost)
	}

	label := "TOTAL"
	if len(unpriced) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(tw, "%s\t\t\t\t%s\n", label, formatCost(total))
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(unpriced) > 0 {
		fmt.Fprintf(w, "\nNo pricing for: %s\n", strings.Join(unpriced, ", "))
	}
	return nil
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only calls with this purpose (question-gen, weak-topic-analysis)")
	llmListCmd.Flags().Duration("since", 0, "Only calls newer than this, e.g. 24h")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
