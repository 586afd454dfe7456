package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"framecore/internal/replay"
)

var (
	replayCopy bool
	replayJSON bool
)

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().BoolVar(&replayCopy, "copy", false, "copy links chosen from the long-press menu to the clipboard")
	replayCmd.Flags().BoolVar(&replayJSON, "json", false, "print the result as JSON")
}

var replayCmd = &cobra.Command{
	Use:   "replay <recording.jsonl | dir>",
	Short: "Replay recorded input events through the detectors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openSessionApp()
		if err != nil {
			return err
		}
		defer a.Close()

		opts := a.ReplayOptions()
		if replayCopy {
			opts.Copy = clipboard.WriteAll
		}

		files := []string{args[0]}
		if info, err := os.Stat(args[0]); err == nil && info.IsDir() {
			files, err = replay.FindRecordings(args[0])
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Println("No .jsonl recordings found.")
				return nil
			}
		}

		for _, f := range files {
			res, err := replay.RunFile(cmd.Context(), a.Engine, f, opts)
			if err != nil {
				return err
			}
			if err := printResult(f, res, len(files) > 1); err != nil {
				return err
			}
		}
		return nil
	},
}

func printResult(path string, res *replay.Result, header bool) error {
	if replayJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	if header {
		fmt.Printf("== %s\n", path)
	}
	fmt.Printf("%-24s %-14s %s\n", "AT", "OUTCOME", "DETAIL")
	for _, o := range res.Outcomes {
		fmt.Printf("%-24s %-14s %s\n",
			time.UnixMilli(o.At).UTC().Format("2006-01-02 15:04:05.000"),
			o.Kind,
			o.Detail,
		)
	}
	fmt.Printf("\n%d events replayed, %d skipped\n", res.Events, res.Skipped)
	for _, e := range res.Errors {
		fmt.Printf("  warning: %s\n", e)
	}
	return nil
}
