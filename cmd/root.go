package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/quizdeck/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "quizdeck",
	Short: "Terminal quiz trainer backed by LLM generated questions",
	Long: "quizdeck - practice any topic of a curriculum with generated multiple-choice questions,\n" +
		"drill weak topics from earlier runs, or take an assessment drawn from question banks.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, nil)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides QUIZDECK_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: ./config.yaml or ~/.config/quizdeck/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the db.path setting, then QUIZDECK_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, configured string) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if configured != "" {
		return configured, store.EnsureDir(configured)
	}
	return store.DefaultDBPath()
}
