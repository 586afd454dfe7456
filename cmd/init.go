package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"framecore/internal/app"
	"framecore/internal/store"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the framecore store in the project directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := app.ResolveDir(rootDir)
		if err != nil {
			return err
		}
		if store.Exists(dir) {
			fmt.Printf("Already initialized - %s exists\n", filepath.Join(store.DirName, store.DBName))
			return nil
		}

		a, err := app.New(app.Options{Dir: dir, Session: rootSession, Create: true})
		if err != nil {
			return fmt.Errorf("init failed: %w", err)
		}
		defer a.Close()

		dbFile := filepath.Join(store.DirName, store.DBName)
		fmt.Printf("Initialized framecore in %s\n", a.Dir)
		fmt.Printf("State database at %s\n", dbFile)
		return nil
	},
}
