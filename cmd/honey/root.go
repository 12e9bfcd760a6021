package main

import (
	"fmt"
	"os"

	"github.com/cookie-jar-solutions/honey/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "honey",
	Short: "honey renders prompt templates and dispatches them to language models",
	Long: `honey keeps prompts in .hny template files and sends them to whichever
executor is active: a hosted model, a local OpenAI-compatible server, or the mock.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	f := rootCmd.PersistentFlags()
	f.String("dir", ".", "Directory containing the .hny prompt files")
	f.String("config", "", "Executor configuration file (default <dir>/honey.yaml)")
	f.StringP("profile", "p", "", "Executor profile from the configuration file")
	f.String("backend", "", "Override the profile backend (mock, openai, openai-compatible, anthropic, gemini)")
	f.StringP("model", "m", "", "Override the profile model")
	f.String("system", "", "Override the profile system prompt")
	f.StringArray("var", nil, "Template variable as key=value (repeatable)")
	f.Bool("markdown", false, "Render replies as markdown")
	f.Bool("debug", false, "Enable debug logging to stderr")
}

// optionsFrom reads the persistent flags.
func optionsFrom(cmd *cobra.Command) cli.Options {
	f := cmd.Flags()
	dir, _ := f.GetString("dir")
	configPath, _ := f.GetString("config")
	profile, _ := f.GetString("profile")
	backend, _ := f.GetString("backend")
	model, _ := f.GetString("model")
	system, _ := f.GetString("system")
	vars, _ := f.GetStringArray("var")
	markdown, _ := f.GetBool("markdown")
	debug, _ := f.GetBool("debug")

	return cli.Options{
		Dir:        dir,
		ConfigPath: configPath,
		Profile:    profile,
		Backend:    backend,
		Model:      model,
		System:     system,
		Vars:       vars,
		Markdown:   markdown,
		Debug:      debug,
	}
}
