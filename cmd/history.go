package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizdeck/internal/session"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and manage past runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past runs, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.close()

		items, err := e.history().List(commandContext(cmd))
		if err != nil {
			return fmt.Errorf("list history: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(items) == 0 {
			fmt.Fprintln(out, "No runs recorded yet.")
			return nil
		}

		tw := newTable(out)
		fmt.Fprintln(tw, "ID\tCOMPLETED\tMODE\tSCORE\tTIME\tTOPICS")
		for _, it := range items {
			correct, total := it.Score()
			secs := int(it.TotalTime.Seconds())
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%d:%02d\t%s\n",
				it.ID,
				it.CompletedAt.Local().Format("2006-01-02 15:04"),
				it.Settings.Mode.DisplayName(),
				correct, total,
				secs/60, secs%60,
				truncate(strings.Join(it.Settings.Topics, ", "), 40),
			)
		}
		return tw.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the per-topic breakdown of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.close()

		item, err := e.history().Get(commandContext(cmd), args[0])
		if err != nil {
			return fmt.Errorf("get run: %w", err)
		}
		if item == nil {
			return fmt.Errorf("run %s not found", args[0])
		}

		fmt.Printf("ID:        %s\n", item.ID)
		fmt.Printf("Completed: %s\n", item.CompletedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Topics:    %s\n", strings.Join(item.Settings.Topics, ", "))

		sum := session.SummaryFromHistory(*item, e.cfg.Analysis.Threshold)
		printSummary(os.Stdout, sum)
		if len(sum.WeakTopics) > 0 {
			fmt.Printf("\nWeak topics: %s\n", strings.Join(sum.WeakTopics, ", "))
		}
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.close()

		if err := e.history().Delete(commandContext(cmd), args[0]); err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
		fmt.Printf("Deleted %s.\n", args[0])
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("this deletes every recorded run; pass --yes to confirm")
		}

		e, err := newEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.close()

		if err := e.history().Clear(commandContext(cmd)); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		fmt.Println("History cleared.")
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export runs as a JSON array (stdout when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.close()

		out := cmd.OutOrStdout()
		if len(args) == 1 {
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			defer f.Close()
			out = f
		}
		return e.history().Export(commandContext(cmd), out)
	},
}

var historyImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import runs from a JSON export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open import file: %w", err)
		}
		defer f.Close()

		e, err := newEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.close()

		n, err := e.history().Import(commandContext(cmd), f)
		if err != nil {
			return fmt.Errorf("import history: %w", err)
		}
		fmt.Printf("Imported %d runs.\n", n)
		return nil
	},
}

func init() {
	historyClearCmd.Flags().BoolP("yes", "y", false, "Confirm deleting all runs")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyImportCmd)
}
