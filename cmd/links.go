package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

var linksTitle string

func init() {
	rootCmd.AddCommand(linksCmd)
	linksCmd.AddCommand(linksSaveCmd)
	linksCmd.AddCommand(linksListCmd)
	linksCmd.AddCommand(linksCopyCmd)
	linksCmd.AddCommand(linksClearCmd)

	linksSaveCmd.Flags().StringVar(&linksTitle, "title", "", "display title for the link")
}

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Manage the recent-link list",
}

var linksSaveCmd = &cobra.Command{
	Use:   "save <url>",
	Short: "Move a link to the front of the recent list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Engine.SaveLinkWithTitle(cmd.Context(), args[0], linksTitle); err != nil {
			return storageFailure(err)
		}
		fmt.Printf("Saved %s\n", args[0])
		return nil
	},
}

var linksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent links, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		links := a.Engine.RecentLinks(cmd.Context())
		if len(links) == 0 {
			fmt.Println("No recent links yet - run 'framecore links save <url>' first")
			return nil
		}

		fmt.Printf("%-4s %-17s %-24s %s\n", "#", "SAVED", "TITLE", "URL")
		fmt.Println(strings.Repeat("-", 72))
		for i, l := range links {
			fmt.Printf("%-4d %-17s %-24s %s\n",
				i+1,
				time.UnixMilli(l.Timestamp).Local().Format("2006-01-02 15:04"),
				truncate(l.Title, 24),
				l.URL,
			)
		}
		return nil
	},
}

var linksCopyCmd = &cobra.Command{
	Use:   "copy <n>",
	Short: "Copy the n-th recent link to the clipboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid link number %q", args[0])
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		links := a.Engine.RecentLinks(cmd.Context())
		if n > len(links) {
			return fmt.Errorf("only %d recent links", len(links))
		}

		u := links[n-1].URL
		if err := clipboard.WriteAll(u); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not copy to clipboard: %v\n", err)
			fmt.Println(u)
			return nil
		}
		fmt.Printf("Copied %s\n", u)
		return nil
	},
}

var linksClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the recent-link list",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Engine.ClearLinks(cmd.Context()); err != nil {
			return storageFailure(err)
		}
		fmt.Println("Recent links cleared")
		return nil
	},
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
