package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	til "github.com/goliatone/go-til"
	"github.com/goliatone/go-til/note"
	"github.com/spf13/cobra"
)

// newCmd represents the new command
var newCmd = &cobra.Command{
	Use:   "new <category> <title>",
	Short: "Scaffold a note file with front matter",
	Long: `Create a Markdown note under the category directory. The file name
is the slugified title; existing files are never overwritten.`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := til.LoadConfig(configPath)
		if err != nil {
			fatal("load config", err)
		}

		category := strings.ToLower(strings.TrimSpace(args[0]))
		if category == "" {
			fatal("create note", fmt.Errorf("category must not be empty"))
		}
		title := strings.TrimSpace(strings.Join(args[1:], " "))
		slug, err := note.NormalizeSlug(title)
		if err != nil {
			fatal("derive slug", err)
		}

		dir := filepath.Join(cfg.NotesDir, category)
		path := filepath.Join(dir, slug+".md")
		if _, err := os.Stat(path); err == nil {
			fatal("create note", fmt.Errorf("%s already exists", path))
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fatal("create category directory", err)
		}

		content := fmt.Sprintf("---\ntitle: %q\ndate: %s\ntags: []\n---\n\n",
			title, time.Now().Format("2006-01-02"))
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			fatal("write note", err)
		}

		fmt.Println("Created", path)
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
}
