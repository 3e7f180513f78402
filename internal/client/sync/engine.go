// Package sync holds the one-way reconciliation engine: it diffs a local
// folder snapshot against the remote listing and pushes the difference.
package sync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/mirrorbox/mirrorbox/internal/disksdk"
)

// RemoteStore is the slice of the disk SDK the engine drives.
type RemoteStore interface {
	ListFolder(ctx context.Context) (disksdk.RemoteListing, error)
	Upload(ctx context.Context, localPath, name string, overwrite bool) error
	Delete(ctx context.Context, name string) error
}

// SyncResult counts the actions taken in one cycle.
type SyncResult struct {
	Uploaded    int
	Overwritten int
	Deleted     int
}

// Engine mirrors one local folder into one remote folder. It holds no
// state between cycles; every decision is re-derived from the current
// filesystem and remote listing, which makes cycles idempotent.
type Engine struct {
	localDir string
	store    RemoteStore
}

func NewEngine(localDir string, store RemoteStore) *Engine {
	return &Engine{
		localDir: localDir,
		store:    store,
	}
}

// Sync runs one reconciliation cycle: a missing remote file is uploaded,
// a remote file older than its local counterpart is overwritten, and a
// remote file with no local counterpart is deleted. Equal timestamps mean
// already synced, so the remote wins ties. Store errors propagate
// unchanged; the scheduler around Sync owns logging and recovery.
func (e *Engine) Sync(ctx context.Context) (*SyncResult, error) {
	remote, err := e.store.ListFolder(ctx)
	if err != nil {
		return nil, fmt.Errorf("list remote folder: %w", err)
	}

	local, err := localSnapshot(e.localDir)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{}

	for _, file := range local {
		remoteModified, exists := remote[file.Name]
		// consume the entry: names left over at the end are remote-only
		delete(remote, file.Name)

		switch {
		case !exists:
			if err := e.store.Upload(ctx, file.Path, file.Name, false); err != nil {
				return nil, err
			}
			slog.Info("sync", "op", "upload", "file", file.Name, "size", humanize.Bytes(uint64(file.Size)))
			result.Uploaded++

		case file.Modified.After(remoteModified):
			if err := e.store.Upload(ctx, file.Path, file.Name, true); err != nil {
				return nil, err
			}
			slog.Info("sync", "op", "overwrite", "file", file.Name, "size", humanize.Bytes(uint64(file.Size)))
			result.Overwritten++
		}
	}

	for name := range remote {
		if err := e.store.Delete(ctx, name); err != nil {
			return nil, err
		}
		slog.Info("sync", "op", "delete", "file", name)
		result.Deleted++
	}

	return result, nil
}
