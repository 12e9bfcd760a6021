package main

import (
	"github.com/cookie-jar-solutions/honey/internal/cli"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the prompts found in the directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		withVars, _ := cmd.Flags().GetBool("vars")
		return cli.RunList(cmd.Context(), optionsFrom(cmd), withVars, cmd.OutOrStdout())
	},
}

var renderCmd = &cobra.Command{
	Use:   "render <prompt>",
	Short: "Render a prompt without calling a model",
	Long: `Renders a prompt with the given --var values and prints the text.
With --watch the prompt is rendered again every time a .hny file changes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := optionsFrom(cmd)
		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			ctx := cli.NewSignalContext(cmd.Context())
			defer ctx.Cancel()
			return cli.RunWatch(ctx, opts, args[0], cmd.OutOrStdout())
		}
		return cli.RunRender(cmd.Context(), opts, args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(renderCmd)

	listCmd.Flags().Bool("vars", false, "Show the variables each prompt expects")
	renderCmd.Flags().BoolP("watch", "w", false, "Render again on every change")
}
