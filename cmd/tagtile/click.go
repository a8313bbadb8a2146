package main

import (
	"github.com/spf13/cobra"

	"github.com/1broseidon/tagtile/internal/ipc"
)

var clickCmd = &cobra.Command{
	Use:   "click <tagbar|ltsymbol|title|status> <button>",
	Short: "Report a click on an external bar",
	Long: `Resolve a bar click against the button bindings, for bars that run a
command per clickable area, e.g. with lemonbar:

  %{A1:tagtile click tagbar left --tag 3:}3%{A}
  %{A3:tagtile click ltsymbol right:}[]=%{A}`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mods, _ := cmd.Flags().GetStringSlice("mod")
		tag, _ := cmd.Flags().GetInt("tag")
		monitor, _ := cmd.Flags().GetString("monitor")
		_, err := ipcClient(cmd).Click(ipc.ClickPayload{
			Monitor: monitor,
			Click:   args[0],
			Mods:    mods,
			Button:  args[1],
			Tag:     tag,
		})
		return err
	},
}

func init() {
	clickCmd.Flags().StringSlice("mod", nil, "Modifiers held during the click (mod, shift, ctrl, alt, ...)")
	clickCmd.Flags().Int("tag", 0, "Clicked tag number for tagbar clicks")
	clickCmd.Flags().String("monitor", "", "Output name of the bar (default: selected monitor)")
	rootCmd.AddCommand(clickCmd)
}
