package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/blockflow/internal/cli"
	"github.com/aretw0/blockflow/internal/presentation/tui"
	"github.com/aretw0/blockflow/internal/validator"
	"github.com/aretw0/blockflow/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <workflow-file>",
	Short: "Run the save checks on a workflow file",
	Long: `Runs the same checks the editor applies on save: one Start and at least one End block,
a complete start-to-end path, and configured Form and API blocks on every complete path.
Exits with status 1 when the workflow would be rejected.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ok, err := runValidate(cmd, args[0])
		exitOnError("Validation failed", err)
		if !ok {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, path string) (bool, error) {
	engine, _, closeFn, err := setup(context.Background(), cmd)
	if err != nil {
		return false, err
	}
	defer closeFn()

	doc, err := cli.ReadDocument(path)
	if err != nil {
		return false, err
	}

	res := engine.Validate(doc)
	if err := tui.Write(os.Stdout, tui.ValidationReport(documentName(doc, path), res)); err != nil {
		return false, err
	}
	tui.Status(os.Stdout, res.OK(), verdict(res))
	return res.OK(), nil
}

func verdict(res validator.Result) string {
	if res.OK() {
		return fmt.Sprintf("Workflow is valid (%d complete path(s))", len(res.CompletePaths))
	}
	return res.Err.Error()
}

// documentName prefers the saved workflow name and falls back to the file name.
func documentName(doc *domain.Document, path string) string {
	if doc.Metadata.Name != "" {
		return doc.Metadata.Name
	}
	return filepath.Base(path)
}
