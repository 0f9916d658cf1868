package cmd

import (
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start the interactive quiz",
	RunE: func(cmd *cobra.Command, args []string) error {
		banks, _ := cmd.Flags().GetStringSlice("bank")
		return runApp(cmd, banks)
	},
}

func init() {
	playCmd.Flags().StringSliceP("bank", "b", nil, "Question bank file for assessments (JSON or YAML, repeatable)")
}
