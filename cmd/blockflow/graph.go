package main

import (
	"context"
	"fmt"

	"github.com/aretw0/blockflow/internal/cli"
	"github.com/aretw0/blockflow/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <workflow-file>",
	Short: "Export the workflow graph visualization",
	Long: `Outputs a Mermaid (graph TD) or Graphviz DOT diagram of the workflow.
Blocks on a complete path are highlighted and protected blocks are marked.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		format, _ := cmd.Flags().GetString("format")

		engine, cfg, closeFn, err := setup(context.Background(), cmd)
		exitOnError("Error initializing blockflow", err)
		defer closeFn()

		doc, err := cli.ReadDocument(args[0])
		exitOnError("Error reading workflow", err)

		g := engine.Inspect(doc)
		overlay := graph.NewOverlay(g, cli.TraversalOptions(cfg)...)

		switch format {
		case "mermaid":
			fmt.Print(graph.GenerateMermaid(g, overlay))
		case "dot":
			out, err := graph.GenerateDOT(g, overlay)
			exitOnError("Error generating DOT", err)
			fmt.Print(out)
		default:
			exitOnError("Error", fmt.Errorf("unknown format %q (supported: mermaid, dot)", format))
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("format", "f", "mermaid", "Output format: 'mermaid' or 'dot'")
}
