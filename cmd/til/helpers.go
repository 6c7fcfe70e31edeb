package main

import (
	"context"

	"github.com/goliatone/go-til/cmd/til/internal/bootstrap"
	"github.com/goliatone/go-til/pkg/interfaces"
)

// syncTree reconciles the index with the notes tree. Commands that read the
// index run it first: under the default in-memory driver the index starts
// empty on every invocation, and under a database driver it picks up edits
// made since the last run. The checksum short-circuit keeps repeat runs cheap.
func syncTree(ctx context.Context, mod *bootstrap.Module) error {
	_, err := mod.Module.Markdown().Sync(ctx, ".", interfaces.SyncOptions{
		DeleteOrphaned: true,
		UpdateExisting: true,
	})
	return err
}
