package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <tool-id>",
	Short: "Execute one tool by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := buildEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		result := eng.registry.Execute(cmd.Context(), args[0], eng.callContext())
		if !result.Success {
			return fmt.Errorf("%s", result.Message)
		}
		fmt.Println(result.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
