package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-til/cmd/til/internal/bootstrap"
	readmecmd "github.com/goliatone/go-til/internal/commands/readme"
	"github.com/spf13/cobra"
)

var (
	readmeCheck         bool
	readmeCategoryPages bool
	readmeDrafts        bool
	readmeTitle         string
	readmeIntro         string
	readmeLinkPrefix    string
	readmeSkipSync      bool
)

// readmeCmd represents the readme command
var readmeCmd = &cobra.Command{
	Use:   "readme",
	Short: "Regenerate the README digest",
	Long: `Rewrite the README digest from the index: one section per category
with a link line per note. With --check the file is compared instead of
written and a stale digest exits with code 1, which keeps the digest
honest in commit hooks.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		mod, err := bootstrap.BuildModule(bootstrap.Options{ConfigPath: configPath, Verbose: verbose})
		if err != nil {
			fatal("bootstrap", err)
		}

		ctx := context.Background()
		if !readmeSkipSync {
			if err := syncTree(ctx, mod); err != nil {
				fatal("sync notes", err)
			}
		}

		handlers := mod.Module.Container().ReadmeCommands()
		if handlers == nil {
			fatal("refresh readme", fmt.Errorf("commands are disabled in config"))
		}

		title := readmeTitle
		if strings.TrimSpace(title) == "" {
			title = mod.Config.Index.HeaderTitle
		}
		file := mod.Config.Index.ReadmePath

		var envelope readmecmd.ResultEnvelope
		msg := readmecmd.RefreshReadmeCommand{
			File:           file,
			Title:          title,
			Intro:          readmeIntro,
			IncludeDrafts:  readmeDrafts,
			LinkPrefix:     readmeLinkPrefix,
			Check:          readmeCheck,
			CategoryPages:  readmeCategoryPages,
			NotesDir:       mod.Config.NotesDir,
			ResultCallback: func(res readmecmd.ResultEnvelope) { envelope = res },
		}
		if err := handlers.Refresh.Execute(ctx, msg); err != nil {
			fatal("refresh readme", err)
		}

		if readmeCheck {
			if envelope.Stale {
				fmt.Printf("%s is stale, run 'til readme' to refresh it\n", file)
				os.Exit(exitFindings)
			}
			fmt.Printf("%s is up to date\n", file)
			return
		}

		if envelope.Wrote {
			fmt.Println("Updated", file)
		} else {
			fmt.Printf("%s already up to date\n", file)
		}
		if readmeCategoryPages {
			fmt.Printf("Wrote %d category pages\n", envelope.CategoryPages)
		}
	},
}

func init() {
	rootCmd.AddCommand(readmeCmd)
	readmeCmd.Flags().BoolVar(&readmeCheck, "check", false, "Verify freshness without writing; stale exits 1")
	readmeCmd.Flags().BoolVar(&readmeCategoryPages, "category-pages", false, "Also rewrite per-category digests")
	readmeCmd.Flags().BoolVar(&readmeDrafts, "drafts", false, "Include draft notes in the digest")
	readmeCmd.Flags().StringVar(&readmeTitle, "title", "", "Digest heading (defaults to the configured header title)")
	readmeCmd.Flags().StringVar(&readmeIntro, "intro", "", "Intro blockquote under the heading")
	readmeCmd.Flags().StringVar(&readmeLinkPrefix, "link-prefix", "", "Prefix prepended to note links")
	readmeCmd.Flags().BoolVar(&readmeSkipSync, "skip-sync", false, "Use the index as-is without syncing files first")
}
