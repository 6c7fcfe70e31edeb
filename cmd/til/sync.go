package main

import (
	"context"
	"fmt"

	"github.com/goliatone/go-til/cmd/til/internal/bootstrap"
	notescmd "github.com/goliatone/go-til/internal/commands/notes"
	"github.com/spf13/cobra"
)

var (
	syncDryRun         bool
	syncDeleteOrphaned bool
	syncUpdateExisting bool
	syncStatus         string
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync [dir]",
	Short: "Reconcile the index with the notes tree",
	Long: `Walk the notes tree and reconcile the index against it: new files
create notes, changed files update them, and notes whose files disappeared
are removed. Files are canonical; the index is always rebuildable.

An optional directory argument limits the run to a subtree of the notes
directory.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mod, err := bootstrap.BuildModule(bootstrap.Options{ConfigPath: configPath, Verbose: verbose})
		if err != nil {
			fatal("bootstrap", err)
		}

		handlers := mod.Module.Container().NoteCommands()
		if handlers == nil || handlers.Sync == nil {
			fatal("sync notes", fmt.Errorf("commands are disabled in config"))
		}

		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		var envelope notescmd.ResultEnvelope
		msg := notescmd.SyncDirectoryCommand{
			Directory:      dir,
			StatusOverride: syncStatus,
			DryRun:         syncDryRun,
			DeleteOrphaned: syncDeleteOrphaned,
			UpdateExisting: syncUpdateExisting,
			ResultCallback: func(res notescmd.ResultEnvelope) { envelope = res },
		}
		if err := handlers.Sync.Execute(context.Background(), msg); err != nil {
			fatal("sync notes", err)
		}

		result := envelope.Sync
		if result == nil {
			fatal("sync notes", fmt.Errorf("no result returned"))
		}

		label := "Synced"
		if syncDryRun {
			label = "Would sync"
		}
		fmt.Printf("%s %s: %d created, %d updated, %d deleted, %d unchanged\n",
			label, mod.Config.NotesDir, result.Created, result.Updated, result.Deleted, result.Skipped)
		for _, syncErr := range result.Errors {
			fmt.Printf("  warning: %v\n", syncErr)
		}
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Report changes without writing the index")
	syncCmd.Flags().BoolVar(&syncDeleteOrphaned, "delete-orphaned", true, "Remove index records whose files are gone")
	syncCmd.Flags().BoolVar(&syncUpdateExisting, "update-existing", true, "Update index records for changed files")
	syncCmd.Flags().StringVar(&syncStatus, "status", "", "Force a lifecycle status for every imported note")
}
