package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"framecore/internal/app"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := app.ResolveDir(rootDir)
		if err != nil {
			return err
		}
		cfg, err := app.LoadConfig(dir)
		if err != nil {
			return err
		}
		if rootSession != "" {
			cfg.App.Session = rootSession
		}
		if cfg.App.Dir == "" {
			cfg.App.Dir = dir
		}

		out, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}
