package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/1broseidon/tagtile/internal/palette"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick a window, tag, layout or scratchpad in rofi, bemenu or dmenu",
	Long: `Show the running window manager's windows, tags, layouts and scratchpads
in an external picker and dispatch the chosen action.

Bind it to a key with an action such as: spawn tagtile menu`,
	Args: cobra.NoArgs,
	RunE: runMenu,
}

func init() {
	menuCmd.Flags().String("backend", "auto", "Picker: auto, rofi, bemenu, dmenu")
	rootCmd.AddCommand(menuCmd)
}

func runMenu(cmd *cobra.Command, _ []string) error {
	name, _ := cmd.Flags().GetString("backend")
	backend, err := palette.NewBackend(name)
	if err != nil {
		return err
	}

	client := ipcClient(cmd)
	st, err := client.Status()
	if err != nil {
		return err
	}
	clients, err := client.Clients()
	if err != nil {
		return err
	}
	// Layout and scratchpad names come from the config; without it the
	// menu still offers windows and tags.
	res, _, err := loadConfig(cmd)
	var items []palette.MenuItem
	if err == nil {
		items = palette.Entries(st, clients, res.Config)
	} else {
		items = palette.Entries(st, clients, nil)
	}

	action, err := palette.NewMenu(backend, "tagtile", items).Show()
	if errors.Is(err, palette.ErrCancelled) {
		return nil
	}
	if err != nil {
		return err
	}
	return client.Dispatch(action)
}
