package main

import (
	"fmt"
	"os"
	"path/filepath"

	til "github.com/goliatone/go-til"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a TIL log in the current directory",
	Long: `Initialize a new TIL log: writes a starter til.yaml, creates the
notes directory, and drops a minimal theme so 'til build' works out of
the box. Existing files are left untouched.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cwd, err := os.Getwd()
		if err != nil {
			fatal("resolve working directory", err)
		}

		if _, err := os.Stat(til.DefaultConfigFile); err == nil {
			fatal("initialise log", fmt.Errorf("%s already exists", til.DefaultConfigFile))
		}

		cfg := til.DefaultConfig()
		if err := os.MkdirAll(cfg.NotesDir, 0o755); err != nil {
			fatal("create notes directory", err)
		}
		if err := os.MkdirAll(filepath.Join(cfg.Site.ThemeDir, "assets"), 0o755); err != nil {
			fatal("create theme directory", err)
		}

		if err := os.WriteFile(til.DefaultConfigFile, []byte(starterConfig), 0o644); err != nil {
			fatal("write config", err)
		}
		for name, content := range starterTheme {
			path := filepath.Join(cfg.Site.ThemeDir, filepath.FromSlash(name))
			if _, err := os.Stat(path); err == nil {
				continue
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				fatal("write theme file", err)
			}
		}

		fmt.Println("Initialized TIL log in", cwd)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
