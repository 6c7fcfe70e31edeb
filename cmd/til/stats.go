package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/goliatone/go-til/cmd/til/internal/bootstrap"
	"github.com/spf13/cobra"
)

var statsJSON bool

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise the note index",
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

		stats, err := mod.Module.Notes().Stats(ctx)
		if err != nil {
			fatal("collect stats", err)
		}

		if statsJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(stats); err != nil {
				fatal("encode stats", err)
			}
			return
		}

		fmt.Printf("%d notes, %d words, %d links\n", stats.Notes, stats.Words, stats.Links)

		if len(stats.ByStatus) > 0 {
			statuses := make([]string, 0, len(stats.ByStatus))
			for status := range stats.ByStatus {
				statuses = append(statuses, status)
			}
			sort.Strings(statuses)
			fmt.Println("\nBy status:")
			for _, status := range statuses {
				fmt.Printf("  %-10s %d\n", status, stats.ByStatus[status])
			}
		}

		if len(stats.Categories) > 0 {
			fmt.Println("\nBy category:")
			for _, category := range stats.Categories {
				fmt.Printf("  %-16s %d\n", category.Name, category.Count)
			}
		}

		if len(stats.Tags) > 0 {
			fmt.Println("\nTop tags:")
			for i, tag := range stats.Tags {
				if i == 10 {
					break
				}
				fmt.Printf("  %-16s %d\n", tag.Name, tag.Count)
			}
		}

		if stats.Broken > 0 || stats.Orphans > 0 {
			fmt.Printf("\n%d broken links, %d orphan notes\n", stats.Broken, stats.Orphans)
		}
		if stats.Oldest != nil && stats.Newest != nil {
			fmt.Printf("\nOldest %s, newest %s\n",
				stats.Oldest.Format("2006-01-02"), stats.Newest.Format("2006-01-02"))
		}
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output in JSON format")
}
