package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/goliatone/go-til/cmd/til/internal/bootstrap"
	"github.com/goliatone/go-til/note"
	"github.com/spf13/cobra"
)

var (
	listJSON     bool
	listCategory string
	listTag      string
	listStatus   string
	listVisible  bool
	listLimit    int
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed notes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		mod, err := bootstrap.BuildModule(bootstrap.Options{ConfigPath: configPath, Verbose: verbose})
		if err != nil {
			fatal("bootstrap", err)
		}

		ctx := context.Background()
		if err := syncTree(ctx, mod); err != nil {
			fatal("sync notes", err)
		}

		opts := []note.NoteListOption{
			note.InCategory(listCategory),
			note.WithTag(listTag),
			note.WithStatus(listStatus),
			note.WithLimit(listLimit),
			note.OrderBy("-updated_at"),
		}
		if listVisible {
			opts = append(opts, note.VisibleOnly())
		}

		notes, err := mod.Module.Notes().List(ctx, opts...)
		if err != nil {
			fatal("list notes", err)
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(notes); err != nil {
				fatal("encode notes", err)
			}
			return
		}

		if len(notes) == 0 {
			fmt.Println("No notes found.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CATEGORY/SLUG\tSTATUS\tUPDATED\tTITLE")
		for _, n := range notes {
			fmt.Fprintf(w, "%s/%s\t%s\t%s\t%s\n",
				n.Category, n.Slug, n.EffectiveStatus, n.UpdatedAt.Format("2006-01-02"), n.Title)
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&listCategory, "category", "", "Filter notes by category")
	listCmd.Flags().StringVar(&listTag, "tag", "", "Filter notes by tag")
	listCmd.Flags().StringVar(&listStatus, "status", "", "Filter notes by stored status")
	listCmd.Flags().BoolVar(&listVisible, "visible", false, "Only notes whose effective status is published")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Cap the number of results")
}
