package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes: 0 success, 1 findings (lint failures, stale README), 2 usage,
// 3 runtime error.
const (
	exitFindings = 1
	exitUsage    = 2
	exitRuntime  = 3
)

var (
	configPath string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "til",
	Short: "Manage a Today I Learned knowledge log",
	Long: `til keeps a tree of Markdown notes as the canonical knowledge log.
It syncs the tree into a rebuildable index, verifies structure and links,
maintains the README digest, and renders a static site.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitUsage)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default til.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(exitRuntime)
}
