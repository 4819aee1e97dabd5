package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/blockflow"
	"github.com/aretw0/blockflow/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of blockflow",
	Run: func(cmd *cobra.Command, args []string) {
		version := strings.TrimSpace(blockflow.Version)
		if tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout, "v"+version)
			return
		}
		fmt.Printf("blockflow version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
