package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var cacheExpiredOnly bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or empty the image search cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached search keys",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		c := openSearchCache()
		p := newPrinter(os.Stdout)
		p.blank()
		p.line(toneInfo, "%s", c.Path())
		rows := make([][]string, 0, c.Len())
		for _, info := range c.List() {
			state := "fresh"
			if !info.Fresh {
				state = "expired"
			}
			rows = append(rows, []string{
				info.Key,
				info.CachedAt.Local().Format(time.DateTime),
				info.Age.Round(time.Second).String(),
				state,
			})
		}
		p.table([]string{"Key", "Cached at", "Age", "State"}, rows)
		p.line(toneOK, "%d entries", len(rows))
		p.blank()
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached search results",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		c := openSearchCache()
		removed := 0
		if cacheExpiredOnly {
			for _, info := range c.List() {
				if !info.Fresh && c.Delete(info.Key) {
					removed++
				}
			}
		} else {
			removed = c.Len()
			c.Clear()
		}
		if err := c.Save(); err != nil {
			return fmt.Errorf("save cache: %w", err)
		}
		newPrinter(os.Stdout).line(toneOK, "removed %d entries", removed)
		return nil
	},
}

func init() {
	cacheClearCmd.Flags().BoolVar(&cacheExpiredOnly, "expired", false, "only remove entries older than the cache ttl")
	cacheCmd.AddCommand(cacheListCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
