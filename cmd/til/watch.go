package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	til "github.com/goliatone/go-til"
	"github.com/goliatone/go-til/cmd/til/internal/bootstrap"
	"github.com/goliatone/go-til/internal/site"
	"github.com/spf13/cobra"
)

var watchBuild bool

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the notes tree and keep the index fresh",
	Long: `Watch the notes tree and re-sync the index whenever note files
change. With --build (or the site feature enabled in config) each settled
batch of changes also triggers an incremental site build.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		mod, err := bootstrap.BuildModule(bootstrap.Options{
			ConfigPath: configPath,
			Verbose:    verbose,
			Watch:      true,
			Site:       watchBuild,
			Scheduling: watchBuild,
		})
		if err != nil {
			fatal("bootstrap", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle graceful shutdown
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			fmt.Println("\nStopping...")
			cancel()
		}()

		buildSite := mod.Config.Features.Site

		refresh := func(ctx context.Context) {
			if err := syncTree(ctx, mod); err != nil {
				fmt.Fprintf(os.Stderr, "sync failed: %v\n", err)
				return
			}
			if !buildSite {
				fmt.Println("Index refreshed")
				return
			}
			if err := mod.Module.Publisher().Process(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "publish transitions failed: %v\n", err)
			}
			result, err := mod.Module.Site().Build(ctx, site.BuildOptions{})
			if err != nil {
				fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
				return
			}
			fmt.Printf("Rebuilt %d pages (%d unchanged) in %s\n",
				result.PagesBuilt, result.PagesSkipped, result.Duration.Round(time.Millisecond))
		}

		handler := func(ctx context.Context, events []til.WatchEvent) {
			for _, event := range events {
				fmt.Printf("  %s %s\n", event.Op, event.Path)
			}
			refresh(ctx)
		}

		watcher, err := mod.Module.Watcher(handler)
		if err != nil {
			fatal("start watcher", err)
		}

		// Full pass up front so the first change starts from a fresh index.
		refresh(ctx)

		fmt.Printf("Watching %s (ctrl-c to stop)\n", mod.Config.NotesDir)
		if err := watcher.Run(ctx); err != nil {
			fatal("watch notes", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchBuild, "build", false, "Rebuild the site after each change batch")
}
