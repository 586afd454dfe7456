package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"framecore/internal/app"
	"framecore/internal/errx"
)

var (
	rootDir     string
	rootSession string
)

var rootCmd = &cobra.Command{
	Use:   "framecore",
	Short: "Gesture and persistent-state core of the frame mini-app",
	Long: `framecore keeps the recent-link list and the compressed session snapshot
in a local store, and replays recorded motion, touch, pointer and resize
events through the shake, swipe, long-press and viewport detectors.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "dir", "", "project directory (default: FRAMECORE_DIR or the working directory)")
	rootCmd.PersistentFlags().StringVar(&rootSession, "session", "", "session scope to resume (default: FRAMECORE_SESSION)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openApp() (*app.App, error) {
	return app.New(app.Options{Dir: rootDir, Session: rootSession})
}

// openSessionApp is openApp with a session scope that outlives the command.
// When no session was given a new one is started and its ID printed so a
// later command can resume it.
func openSessionApp() (*app.App, error) {
	if rootSession != "" || os.Getenv("FRAMECORE_SESSION") != "" {
		return openApp()
	}
	a, err := app.New(app.Options{Dir: rootDir, Session: uuid.NewString()})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(os.Stderr, "Session %s (export FRAMECORE_SESSION=%s to resume)\n", a.Store.SessionID(), a.Store.SessionID())
	return a, nil
}

// storageFailure prints the user-facing notice for a failed write and
// returns the error for the exit status.
func storageFailure(err error) error {
	fmt.Fprintln(os.Stderr, errx.UserMessage(err))
	return err
}
