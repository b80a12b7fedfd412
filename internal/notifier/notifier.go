package notifier

import (
	"context"
	"time"
)

type Notifier interface {
	NotifyPruneStart(ctx context.Context, backup, runID string) error
	NotifyPruneSuccess(ctx context.Context, backup, runID string, kept, deleted int, duration time.Duration) error
	NotifyPruneDryRun(ctx context.Context, backup, runID string, kept, candidates int) error
	NotifyPruneWarning(ctx context.Context, backup, runID, message string) error
	NotifyPruneError(ctx context.Context, backup, runID string, err error) error
}
