package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/aretw0/blockflow/internal/cli"
	"github.com/aretw0/blockflow/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts blockflow as an MCP Server.
This allows AI agents to validate workflows, list their issues and resolve
the fields an API block can send, as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		// Logs go to Stderr so they never corrupt JSON-RPC on Stdout.
		log.SetOutput(os.Stderr)
		engine, _, closeFn, err := setup(ctx, cmd)
		exitOnError("Error initializing blockflow", err)
		defer closeFn()

		logger := engine.Logger()
		srv := mcp.NewServer(engine, mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			logger.Info("starting blockflow MCP server (stdio)")
			if err := srv.ServeStdio(); err != nil {
				logger.Error("MCP server execution failed", "err", err)
				closeFn()
				os.Exit(1)
			}
		case "sse":
			logger.Info("starting blockflow MCP server (SSE)", "port", port)
			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("MCP server execution failed", "err", err)
				closeFn()
				os.Exit(1)
			}
			logger.Info("MCP server stopped gracefully")
		default:
			log.Fatalf("Unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
