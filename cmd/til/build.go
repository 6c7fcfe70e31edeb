package main

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-til/cmd/til/internal/bootstrap"
	sitecmd "github.com/goliatone/go-til/internal/commands/site"
	"github.com/spf13/cobra"
)

var (
	buildForce     bool
	buildScheduled bool
	buildDryRun    bool
	buildPage      string
	buildSkipSync  bool
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the static site from the note index",
	Long: `Render the published notes into a static site under the configured
output directory. The notes tree is synced into the index first and due
publish transitions are applied, so a build always reflects the files on
disk.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		mod, err := bootstrap.BuildModule(bootstrap.Options{
			ConfigPath: configPath,
			Verbose:    verbose,
			Site:       true,
			Scheduling: true,
		})
		if err != nil {
			fatal("bootstrap", err)
		}

		ctx := context.Background()
		if !buildSkipSync {
			if err := syncTree(ctx, mod); err != nil {
				fatal("sync notes", err)
			}
		}

		// Due transitions land before rendering so a scheduled note whose
		// time has come shows up in this build, not the next one.
		if err := mod.Module.Publisher().Process(ctx); err != nil {
			fatal("apply scheduled transitions", err)
		}

		handlers := mod.Module.Container().SiteCommands()
		if handlers == nil {
			fatal("build site", fmt.Errorf("commands are disabled in config"))
		}

		var envelope sitecmd.ResultEnvelope
		capture := func(res sitecmd.ResultEnvelope) { envelope = res }

		if buildPage != "" {
			err = handlers.BuildPage.Execute(ctx, sitecmd.BuildPageCommand{
				Slug:           buildPage,
				ResultCallback: capture,
			})
		} else {
			err = handlers.Build.Execute(ctx, sitecmd.BuildSiteCommand{
				Force:            buildForce,
				IncludeScheduled: buildScheduled,
				DryRun:           buildDryRun,
				ResultCallback:   capture,
			})
		}
		if err != nil {
			fatal("build site", err)
		}

		result := envelope.Result
		if result == nil {
			fatal("build site", fmt.Errorf("no result returned"))
		}

		label := "Built"
		if result.DryRun {
			label = "Would build"
		}
		fmt.Printf("%s %d pages (%d unchanged, %d pruned), %d assets, %d feeds in %s\n",
			label, result.PagesBuilt, result.PagesSkipped, result.PagesPruned,
			result.AssetsBuilt, result.FeedsBuilt, result.Duration.Round(time.Millisecond))
		for _, diag := range result.Diagnostics {
			if diag.Err != nil {
				fmt.Printf("  warning: %s: %v\n", diag.Route, diag.Err)
			}
		}
		for _, buildErr := range result.Errors {
			fmt.Printf("  error: %v\n", buildErr)
		}
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().BoolVar(&buildForce, "force", false, "Re-render every page ignoring the build manifest")
	buildCmd.Flags().BoolVar(&buildScheduled, "include-scheduled", false, "Render notes whose publish time is in the future")
	buildCmd.Flags().BoolVar(&buildDryRun, "dry-run", false, "Render without writing artifacts")
	buildCmd.Flags().StringVar(&buildPage, "page", "", "Rebuild a single note by slug")
	buildCmd.Flags().BoolVar(&buildSkipSync, "skip-sync", false, "Build from the index as-is without syncing files first")
}
