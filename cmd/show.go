package cmd

import (
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Load the pipeline board and print it",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		s := newSession(cmd.Context())
		s.print(cmd.OutOrStdout(), s.load(cmd.Context()))
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
