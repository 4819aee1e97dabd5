package main

import (
	"context"
	"os"

	"github.com/aretw0/blockflow/internal/cli"
	"github.com/aretw0/blockflow/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields <workflow-file> <node-id>",
	Short: "List the form fields available upstream of a block",
	Long:  `Walks backwards from the block and lists every field declared by a Form block on the way, as offered to an API block's request body.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		engine, _, closeFn, err := setup(context.Background(), cmd)
		exitOnError("Error initializing blockflow", err)
		defer closeFn()

		doc, err := cli.ReadDocument(args[0])
		exitOnError("Error reading workflow", err)

		fields, err := engine.AvailableFields(doc, args[1])
		exitOnError("Error resolving fields", err)

		exitOnError("Error writing report", tui.Write(os.Stdout, tui.FieldsReport(args[1], fields)))
	},
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
}
