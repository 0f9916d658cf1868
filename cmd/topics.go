package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizdeck/internal/config"
	"github.com/abhisek/quizdeck/internal/curriculum"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Show the curriculum topic tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := loadTree(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if leaves, _ := cmd.Flags().GetBool("leaves"); leaves {
			for _, t := range tree.Leaves() {
				fmt.Fprintln(out, t)
			}
			return nil
		}

		fmt.Fprintln(out, tree.Name())
		tree.Walk(func(n curriculum.Node) {
			fmt.Fprintf(out, "%s%s  (%s)\n", strings.Repeat("  ", n.Depth+1), n.Title, n.ID)
		})
		return nil
	},
}

var topicsResolveCmd = &cobra.Command{
	Use:   "resolve <query>",
	Short: "Resolve a topic title or id, with fuzzy matching",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := loadTree(cmd)
		if err != nil {
			return err
		}
		title, err := tree.Resolve(strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tree.Path(title))
		return nil
	},
}

func init() {
	topicsCmd.Flags().Bool("leaves", false, "List leaf topics only")
	topicsCmd.AddCommand(topicsResolveCmd)
}

// loadTree returns the configured curriculum without opening the store.
func loadTree(cmd *cobra.Command) (*curriculum.Tree, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if cfg.Curriculum.Path == "" {
		return curriculum.Default(), nil
	}
	return curriculum.LoadFile(cfg.Curriculum.Path)
}
