package main

import (
	"time"

	"github.com/cookie-jar-solutions/honey/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the prompt directory as a JSON API over HTTP. Prompts can be listed,
rendered and invoked; invocations are grouped into sessions, each with its own executor.
Prometheus metrics are exposed on /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		ttl, _ := cmd.Flags().GetDuration("session-ttl")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.Serve(ctx, optionsFrom(cmd), cli.ServeOptions{Port: port, SessionTTL: ttl})
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Publishes every prompt as an MCP prompt, with tools to render and invoke them.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		ttl, _ := cmd.Flags().GetDuration("session-ttl")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.ServeMCP(ctx, optionsFrom(cmd), cli.ServeOptions{Port: port, SessionTTL: ttl, Transport: transport})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().Duration("session-ttl", 30*time.Minute, "Drop sessions idle for longer than this (0 keeps them)")

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().Duration("session-ttl", 30*time.Minute, "Drop sessions idle for longer than this (0 keeps them)")
}
