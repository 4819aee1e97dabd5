package main

import (
	"context"
	"os"

	"github.com/aretw0/blockflow/internal/cli"
	"github.com/aretw0/blockflow/internal/presentation/tui"
	"github.com/aretw0/blockflow/internal/validator"
	"github.com/spf13/cobra"
)

var lintCmd = &cobra.Command{
	Use:   "lint <workflow-file>",
	Short: "List every issue in a workflow file",
	Long: `Unlike validate, lint does not stop at the first failure. It reports duplicate ids,
unknown block types, dangling edges, unreachable blocks and unconfigured blocks.
Exits with status 1 when any issue is an error.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		engine, _, closeFn, err := setup(context.Background(), cmd)
		exitOnError("Error initializing blockflow", err)
		defer closeFn()

		doc, err := cli.ReadDocument(args[0])
		exitOnError("Error reading workflow", err)

		issues := engine.Lint(doc)
		exitOnError("Error writing report", tui.Write(os.Stdout, tui.LintReport(documentName(doc, args[0]), issues)))
		if validator.HasErrors(issues) {
			closeFn()
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)
}
