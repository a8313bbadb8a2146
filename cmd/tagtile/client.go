package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/1broseidon/tagtile/internal/ipc"
	"github.com/1broseidon/tagtile/internal/status"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the status of every monitor",
	Long:  "Print the per-monitor status lines a bar consumes, or the raw status as JSON.",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "List managed windows",
	Args:  cobra.NoArgs,
	RunE:  runClients,
}

var monitorsCmd = &cobra.Command{
	Use:   "monitors",
	Short: "List monitors",
	Args:  cobra.NoArgs,
	RunE:  runMonitors,
}

var dispatchCmd = &cobra.Command{
	Use:   "dispatch <action> [args...]",
	Short: "Run an action in the running window manager",
	Long: `Run an action exactly as a key binding would, e.g.

  tagtile dispatch view 3
  tagtile dispatch setmfact +0.05
  tagtile dispatch spawn foot`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return ipcClient(cmd).Dispatch(strings.Join(args, " "))
	},
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload the configuration of the running window manager",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := ipcClient(cmd).Reload(); err != nil {
			return err
		}
		fmt.Println("config reloaded")
		return nil
	},
}

func init() {
	statusCmd.Flags().Bool("json", false, "Print JSON")
	clientsCmd.Flags().Bool("json", false, "Print JSON")
	monitorsCmd.Flags().Bool("json", false, "Print JSON")
	rootCmd.AddCommand(statusCmd, clientsCmd, monitorsCmd, dispatchCmd, reloadCmd)
}

func ipcClient(cmd *cobra.Command) *ipc.Client {
	if socket, _ := cmd.Flags().GetString("socket"); socket != "" {
		return ipc.NewClientWithSocket(socket)
	}
	return ipc.NewClient()
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func runStatus(cmd *cobra.Command, _ []string) error {
	st, err := ipcClient(cmd).Status()
	if err != nil {
		return err
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(st)
	}
	status.NewWriter(os.Stdout, nil).Update(st.Monitors)
	return nil
}

func runClients(cmd *cobra.Command, _ []string) error {
	data, err := ipcClient(cmd).Clients()
	if err != nil {
		return err
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(data)
	}
	t := newTable("ID", "APP ID", "TITLE", "MONITOR", "TAGS", "STATE")
	for _, c := range data.Clients {
		var state []string
		if c.Focused {
			state = append(state, "focused")
		}
		if c.Floating {
			state = append(state, "floating")
		}
		if c.Fullscreen {
			state = append(state, "fullscreen")
		}
		if c.Urgent {
			state = append(state, "urgent")
		}
		if !c.Visible {
			state = append(state, "hidden")
		}
		t.Row(fmt.Sprintf("%#x", c.ID), c.AppID, truncate(c.Title, 40), c.Monitor, c.Tags, strings.Join(state, ","))
	}
	fmt.Println(t.String())
	return nil
}

func runMonitors(cmd *cobra.Command, _ []string) error {
	data, err := ipcClient(cmd).Monitors()
	if err != nil {
		return err
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(data)
	}
	t := newTable("NAME", "GEOMETRY", "TAGS", "LAYOUT", "MFACT", "NMASTER", "CLIENTS", "")
	for _, m := range data.Monitors {
		sel := ""
		if m.Selected {
			sel = "*"
		}
		g := m.Geometry
		t.Row(m.Name,
			fmt.Sprintf("%dx%d+%d+%d", g.Width, g.Height, g.X, g.Y),
			m.Tags, m.Layout,
			fmt.Sprintf("%.2f", m.MFact),
			fmt.Sprint(m.NMaster),
			fmt.Sprint(m.Clients),
			sel)
	}
	fmt.Println(t.String())
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
