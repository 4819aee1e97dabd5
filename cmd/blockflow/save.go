package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/blockflow/internal/cli"
	"github.com/aretw0/blockflow/internal/presentation/tui"
	"github.com/aretw0/blockflow/pkg/session"
	"github.com/spf13/cobra"
)

var saveCmd = &cobra.Command{
	Use:   "save <workflow-file>",
	Short: "Validate a workflow file and store it",
	Long: `Loads the workflow into an editor session and saves it to the configured store.
The save is refused, and nothing is written, when validation fails.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, _ := cmd.Flags().GetString("id")
		if id == "" {
			id = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		engine, _, closeFn, err := setup(ctx, cmd)
		exitOnError("Error initializing blockflow", err)
		defer closeFn()

		doc, err := cli.ReadDocument(args[0])
		exitOnError("Error reading workflow", err)

		err = engine.Sessions().WithEditor(ctx, id, func(ctx context.Context, ed *session.Editor) error {
			ed.Load(doc)
			_, err := ed.Save(ctx)
			return err
		})
		if err != nil {
			tui.Status(os.Stdout, false, err.Error())
			closeFn()
			os.Exit(1)
		}
		tui.Status(os.Stdout, true, fmt.Sprintf("Saved workflow %q", id))
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the workflows in the configured store",
	Run: func(cmd *cobra.Command, args []string) {
		engine, _, closeFn, err := setup(context.Background(), cmd)
		exitOnError("Error initializing blockflow", err)
		defer closeFn()

		ids, err := engine.Sessions().Saved(context.Background())
		exitOnError("Error listing workflows", err)
		for _, id := range ids {
			fmt.Println(id)
		}
	},
}

func init() {
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(listCmd)
	saveCmd.Flags().String("id", "", "Workflow id to save under (defaults to the file name)")
}
