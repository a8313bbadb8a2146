package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/1broseidon/tagtile/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration without starting the window manager",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		res, path, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		for _, w := range res.Config.Warnings() {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
		if len(res.Files) == 0 {
			fmt.Printf("%s not found, built-in defaults are valid\n", path)
			return nil
		}
		for _, f := range res.Files {
			fmt.Printf("ok %s\n", f)
		}
		return nil
	},
}

var configPrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.DefaultConfig()
		if defaults, _ := cmd.Flags().GetBool("defaults"); !defaults {
			res, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg = res.Config
		}
		out, err := config.Render(cfg)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := configPath(cmd)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	configPrintCmd.Flags().Bool("defaults", false, "Print the built-in defaults instead of the loaded file")
	configCmd.AddCommand(configValidateCmd, configPrintCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func loadConfig(cmd *cobra.Command) (*config.LoadResult, string, error) {
	path, err := configPath(cmd)
	if err != nil {
		return nil, "", err
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, path, err
	}
	return res, path, nil
}
