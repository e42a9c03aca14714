package cli

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/callan/sweep/pkg/cleanup"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Run the quick-cleanup tool sequence",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := buildEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		seq := cleanup.New(eng.registry, eng.store, eng.cfg.CleanupSequence(), printStep)
		run := seq.Start(cmd.Context(), eng.callContext())

		// Interrupt requests cooperative cancellation; the step in
		// flight still finishes.
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		defer signal.Stop(interrupt)

		for {
			select {
			case <-interrupt:
				fmt.Println("Cancelling after current step...")
				run.Cancel()
			case <-run.Done():
				summary := run.Summary()
				if summary.Cancelled {
					fmt.Printf("Cancelled after %d/%d steps.\n", summary.Completed, summary.Total)
				} else {
					fmt.Printf("Quick cleanup complete. Freed %.1f GB across %d steps.\n",
						summary.TotalFreedMB/1024, summary.Total)
				}
				return nil
			}
		}
	},
}

func printStep(update cleanup.StepUpdate) {
	switch update.State {
	case cleanup.StepRunning:
		fmt.Printf("  %-24s running...\n", update.ToolID)
	case cleanup.StepCompleted:
		fmt.Printf("  %-24s %s\n", update.ToolID, update.Message)
	case cleanup.StepFailed:
		fmt.Printf("  %-24s FAILED: %s\n", update.ToolID, update.Message)
	}
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}
