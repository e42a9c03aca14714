package cli

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/callan/sweep/pkg/definitions"
	"github.com/callan/sweep/pkg/plugin"
)

var (
	listIssues bool
	listWatch  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered tools by section",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := buildEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		printTools(eng)
		if !listWatch {
			return nil
		}

		// Watch mode reloads the registry table wholesale whenever the
		// definitions file changes and reprints.
		w, err := definitions.NewWatcher(eng.cfg.ToolsFile, 0, func(path string) {
			doc, issues, err := definitions.LoadFile(path)
			if err != nil {
				log.Error().Err(err).Msg("Definitions reload failed")
				return
			}
			for _, issue := range issues {
				log.Warn().Str("issue", issue).Msg("Tool definitions document issue")
			}
			eng.registry.Load(doc.Sections, plugin.AdaptAll(plugin.Builtin(), eng.cfg))
			fmt.Println()
			printTools(eng)
		})
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()

		fmt.Println("\nWatching for definition changes. Ctrl-C to exit.")
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		defer signal.Stop(interrupt)
		<-interrupt
		return nil
	},
}

func printTools(eng *engine) {
	for _, section := range eng.registry.Sections() {
		fmt.Printf("%s", section.Title)
		if section.Tab != "" {
			fmt.Printf(" (%s)", section.Tab)
		}
		fmt.Println()
		for _, tool := range section.Tools {
			if eng.registry.GetToolByID(tool.ID) == nil {
				continue
			}
			admin := ""
			if tool.RequiresAdmin {
				admin = " [admin]"
			}
			fmt.Printf("  %-24s %s%s\n", tool.ID, tool.Title, admin)
		}
	}

	fmt.Println("External Tools")
	for _, id := range eng.registry.ToolIDs() {
		tool := eng.registry.GetToolByID(id)
		if tool == nil || tool.Spec != nil {
			continue
		}
		fmt.Printf("  %-24s %s\n", tool.ID, tool.Title)
	}

	if listIssues {
		issues := eng.registry.IntegrityIssues()
		if len(issues) == 0 {
			fmt.Println("No integrity issues")
			return
		}
		fmt.Printf("%d integrity issue(s):\n", len(issues))
		for _, issue := range issues {
			fmt.Printf("  [%s] %s: %s\n", issue.Kind, issue.ToolID, issue.Detail)
		}
	}
}

func init() {
	listCmd.Flags().BoolVar(&listIssues, "issues", false, "show registry integrity diagnostics")
	listCmd.Flags().BoolVar(&listWatch, "watch", false, "reload and reprint when the definitions file changes")
	rootCmd.AddCommand(listCmd)
}
