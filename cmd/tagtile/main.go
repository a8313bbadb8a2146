// Command tagtile is a tag-based tiling window manager for X11 and the
// tools that talk to a running instance.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/1broseidon/tagtile/internal/config"
	"github.com/1broseidon/tagtile/internal/runtimepath"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "tagtile",
	Short:         "Tag-based tiling window manager",
	Long:          "tagtile arranges X11 windows by tags: each window carries a set of tags and each monitor shows a set of tags.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().String("config", "", "Config file (default: $XDG_CONFIG_HOME/tagtile/config.yaml)")
	rootCmd.PersistentFlags().String("socket", "", "Control socket (default: $XDG_RUNTIME_DIR/tagtile.sock)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (default: from config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "tagtile: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the stderr text logger. An explicit --log-level wins
// over the configured level.
func newLogger(cmd *cobra.Command, configured string) *slog.Logger {
	level := configured
	if flag, _ := cmd.Flags().GetString("log-level"); flag != "" {
		level = flag
	}
	if level == "warning" {
		level = "warn"
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

func configPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p, nil
	}
	return config.DefaultConfigPath()
}

func socketPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("socket"); p != "" {
		return p, nil
	}
	return runtimepath.SocketPath()
}
