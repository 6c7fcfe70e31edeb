package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/goliatone/go-til/cmd/til/internal/bootstrap"
	"github.com/spf13/cobra"
)

var showRaw bool

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <slug>",
	Short: "Render a note in the terminal",
	Long: `Look up a note by slug and render its Markdown file in the terminal.
With --raw the file is printed as-is.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mod, err := bootstrap.BuildModule(bootstrap.Options{ConfigPath: configPath, Verbose: verbose})
		if err != nil {
			fatal("bootstrap", err)
		}

		ctx := context.Background()
		if err := syncTree(ctx, mod); err != nil {
			fatal("sync notes", err)
		}

		n, err := mod.Module.Notes().GetBySlug(ctx, args[0])
		if err != nil {
			fatal("find note", err)
		}

		path := filepath.Join(mod.Config.NotesDir, filepath.FromSlash(n.SourcePath))
		content, err := os.ReadFile(path)
		if err != nil {
			fatal("read note file", err)
		}

		if showRaw {
			fmt.Print(string(content))
			return
		}

		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err != nil {
			fatal("initialise renderer", err)
		}
		rendered, err := renderer.Render(string(content))
		if err != nil {
			fatal("render note", err)
		}
		fmt.Print(rendered)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print the Markdown file without terminal styling")
}
