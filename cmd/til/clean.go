package main

import (
	"context"
	"fmt"

	"github.com/goliatone/go-til/cmd/til/internal/bootstrap"
	sitecmd "github.com/goliatone/go-til/internal/commands/site"
	"github.com/spf13/cobra"
)

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove generated site artifacts",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		mod, err := bootstrap.BuildModule(bootstrap.Options{
			ConfigPath: configPath,
			Verbose:    verbose,
			Site:       true,
		})
		if err != nil {
			fatal("bootstrap", err)
		}

		handlers := mod.Module.Container().SiteCommands()
		if handlers == nil {
			fatal("clean site", fmt.Errorf("commands are disabled in config"))
		}

		if err := handlers.Clean.Execute(context.Background(), sitecmd.CleanSiteCommand{}); err != nil {
			fatal("clean site", err)
		}
		fmt.Println("Removed", mod.Config.Site.OutputDir)
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
