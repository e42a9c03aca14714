package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show tool usage statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := buildEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		stats := eng.store.GetStats()
		fmt.Printf("Total tools run:   %d\n", stats.TotalToolsRun)
		fmt.Printf("Total space freed: %.1f MB\n", eng.store.TotalFreedMB())
		fmt.Printf("Last full cleanup: %s\n", formatTime(stats.LastFullCleanup))

		if tool, count := eng.store.MostUsed(); tool != "" {
			fmt.Printf("Most used:         %s (%d runs)\n", tool, count)
		}

		if len(stats.ToolRuns) == 0 {
			return nil
		}
		fmt.Println("\nPer tool:")
		ids := make([]string, 0, len(stats.ToolRuns))
		for id := range stats.ToolRuns {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			entry := stats.ToolRuns[id]
			fmt.Printf("  %-24s runs=%-4d last=%-7s %s\n",
				id, entry.RunCount, entry.LastResult, formatTime(entry.LastRun))
		}
		return nil
	},
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
