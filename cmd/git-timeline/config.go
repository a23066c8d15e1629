package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/PramodKumarYadav/git-timeline-mcp-server/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect git-timeline configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return render(os.Stdout, formatYAML, cfg)
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result := cfg.Validate()
		for _, w := range result.Warnings {
			fmt.Printf("⚠️  %s\n", w)
		}
		if result.HasErrors() {
			return result
		}
		fmt.Println("✅ Configuration is valid")
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = filepath.Join(".git-timeline", "config.yaml")
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		fmt.Printf("✅ Wrote %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configInitCmd)
}
