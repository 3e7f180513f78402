// Package client drives periodic one-way sync cycles against the remote
// folder and is the error boundary around them.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mirrorbox/mirrorbox/internal/client/config"
	"github.com/mirrorbox/mirrorbox/internal/client/sync"
	"github.com/mirrorbox/mirrorbox/internal/disksdk"
)

type Client struct {
	config *config.Config
	sdk    *disksdk.DiskSDK
	engine *sync.Engine
}

func New(cfg *config.Config) (*Client, error) {
	sdk, err := disksdk.New(&disksdk.Config{
		BaseURL: cfg.BaseURL,
		Token:   cfg.Token,
		Folder:  cfg.RemoteFolder,
	})
	if err != nil {
		return nil, fmt.Errorf("create disk sdk: %w", err)
	}

	return &Client{
		config: cfg,
		sdk:    sdk,
		engine: sync.NewEngine(cfg.LocalDir, sdk),
	}, nil
}

// Start runs sync cycles until ctx is cancelled. The remote folder is
// created once at startup if it does not exist yet.
func (c *Client) Start(ctx context.Context) error {
	slog.Info("mirrorbox client start",
		"local", c.config.LocalDir,
		"remote", c.config.RemoteFolder,
		"period", c.config.SyncPeriod,
	)

	if err := c.sdk.EnsureFolder(ctx); err != nil {
		return fmt.Errorf("ensure remote folder: %w", err)
	}

	c.runCycle(ctx)

	// a timer instead of a ticker, so a cycle slower than the period
	// never queues up the next one
	timer := time.NewTimer(c.config.SyncPeriod)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("received interrupt signal, stopping client")
			return nil
		case <-timer.C:
			c.runCycle(ctx)
			timer.Reset(c.config.SyncPeriod)
		}
	}
}

// runCycle is the error boundary around one sync pass. Store errors are
// logged and swallowed so the next scheduled cycle still runs; the next
// cycle re-derives everything and is the de facto retry.
func (c *Client) runCycle(ctx context.Context) {
	slog.Info("sync cycle start")

	result, err := c.engine.Sync(ctx)
	if err != nil {
		c.logCycleError(err)
		return
	}

	slog.Info("sync cycle complete",
		"uploaded", result.Uploaded,
		"overwritten", result.Overwritten,
		"deleted", result.Deleted,
	)
}

func (c *Client) logCycleError(err error) {
	var transportErr *disksdk.TransportError
	var apiErr *disksdk.APIError

	switch {
	case errors.Is(err, context.Canceled):
		// interrupted mid-cycle during shutdown, nothing to report
	case errors.As(err, &transportErr):
		slog.Error("no connection, check your network", "error", transportErr.Err)
	case errors.Is(err, disksdk.ErrUnauthorized):
		slog.Error("authorization failed, check your access token")
	case errors.As(err, &apiErr):
		slog.Error("sync cycle failed", "error", apiErr)
	default:
		slog.Error("sync cycle failed", "error", err)
	}
}
