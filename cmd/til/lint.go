package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/goliatone/go-til/cmd/til/internal/bootstrap"
	lintcmd "github.com/goliatone/go-til/internal/commands/lint"
	"github.com/spf13/cobra"
)

var lintJSON bool

// lintCmd represents the lint command
var lintCmd = &cobra.Command{
	Use:   "lint [path]",
	Short: "Verify note structure, link targets, and fenced code blocks",
	Long: `Check every note for well-formed Markdown, resolvable link targets,
and fenced code blocks that carry a language tag. With a path argument only
that file is checked.

The exit code is 1 when any error-severity finding is reported, so the
command slots into commit hooks and CI.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mod, err := bootstrap.BuildModule(bootstrap.Options{ConfigPath: configPath, Verbose: verbose})
		if err != nil {
			fatal("bootstrap", err)
		}

		handlers := mod.Module.Container().LintCommands()
		if handlers == nil {
			fatal("lint notes", fmt.Errorf("commands are disabled in config"))
		}

		var envelope lintcmd.ResultEnvelope
		capture := func(res lintcmd.ResultEnvelope) { envelope = res }

		if len(args) == 1 {
			err = handlers.File.Execute(context.Background(), lintcmd.CheckFileCommand{
				Path:           args[0],
				ResultCallback: capture,
			})
		} else {
			err = handlers.Tree.Execute(context.Background(), lintcmd.CheckTreeCommand{
				Directory:      ".",
				ResultCallback: capture,
			})
		}
		if err != nil {
			fatal("lint notes", err)
		}

		report := envelope.Report
		if report == nil {
			fatal("lint notes", fmt.Errorf("no report returned"))
		}

		if lintJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(report); err != nil {
				fatal("encode report", err)
			}
		} else {
			for _, finding := range report.Findings {
				fmt.Printf("%s:%d [%s] %s: %s\n",
					finding.Path, finding.Line, finding.Severity, finding.Rule, finding.Message)
			}
			fmt.Printf("Checked %d files, %d findings\n", report.Checked, len(report.Findings))
		}

		if report.Failed() {
			os.Exit(exitFindings)
		}
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)
	lintCmd.Flags().BoolVar(&lintJSON, "json", false, "Output the report in JSON format")
}
