package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List and detect application actions",
	Args:  cobra.NoArgs,
	RunE:  runActionsList,
}

var actionsDetectCmd = &cobra.Command{
	Use:   "detect [query]",
	Short: "Detect which action a query asks for",
	Long: `Asks the model which catalogued action the query requests and falls back
to keyword and pattern matching when the model is unavailable or unsure.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runActionsDetect,
}

func init() {
	actionsCmd.AddCommand(actionsDetectCmd)
	rootCmd.AddCommand(actionsCmd)
}

func runActionsList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	list := a.Actions.Actions()
	cmd.Printf("%d actions available:\n", len(list))
	for _, act := range list {
		cmd.Printf("  %s: %s\n", act.ID, act.Name)
		if act.Description != "" {
			cmd.Printf("      %s\n", act.Description)
		}
	}
	return nil
}

func runActionsDetect(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	det, ok := a.Actions.Detect(cmd.Context(), query)
	if !ok {
		cmd.Println("No action detected.")
		return nil
	}

	cmd.Printf("Detected: %s (%s)\n", det.Action.Name, det.ActionID)
	cmd.Printf("Confidence: %.2f via %s\n", det.Confidence, det.Method)
	if det.Reasoning != "" {
		cmd.Printf("Reasoning: %s\n", det.Reasoning)
	}
	if len(det.Action.ExampleQueries) > 0 {
		cmd.Println("Example queries:")
		for _, q := range det.Action.ExampleQueries {
			cmd.Printf("  - %s\n", q)
		}
	}
	return nil
}
