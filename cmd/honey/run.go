package main

import (
	"github.com/cookie-jar-solutions/honey/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <prompt>",
	Short: "Send a prompt to the configured executor and print the reply",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		async, _ := cmd.Flags().GetBool("async")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.RunOnce(ctx, optionsFrom(cmd), args[0], async, cmd.OutOrStdout())
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch <prompt> <input>",
	Short: "Run a prompt once per variable set, concurrently",
	Long: `Reads a YAML or JSON list of variable maps from <input> ("-" for stdin)
and runs the prompt for each of them on its own executor. --var values apply to
every item unless the item sets the same key. Replies are printed as YAML.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := cli.ReadBatch(args[1])
		if err != nil {
			return err
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.RunBatch(ctx, optionsFrom(cmd), args[0], items, cmd.OutOrStdout())
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat [prompt]",
	Short: "Start an interactive conversation",
	Long: `Starts a conversation with the configured executor. When a prompt is given it is
rendered and sent as the first turn. Commands: /history, /reset, /exit.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) > 0 {
			name = args[0]
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.RunChat(ctx, optionsFrom(cmd), name, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(chatCmd)

	runCmd.Flags().Bool("async", false, "Use the suspending call path")
}
