package main

import (
	"github.com/spf13/cobra"

	"github.com/1broseidon/tagtile/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive dashboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("config")
		return tui.Run(ipcClient(cmd), path)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
