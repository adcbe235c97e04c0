package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/warung-io/backend-warung/internal/lock"
)

// TaskSnapshotRefresh rebuilds one catalog's cached snapshot.
const TaskSnapshotRefresh = "catalog:snapshot:refresh"

// TaskSnapshotRefreshAll fans out a refresh task per known catalog. The
// scheduler fires it periodically so delegate-facing snapshots stay warm.
const TaskSnapshotRefreshAll = "catalog:snapshot:refresh_all"

type refreshPayload struct {
	CatalogID string `json:"catalogId"`
}

// NewSnapshotRefreshTask builds the asynq task for one catalog.
func NewSnapshotRefreshTask(catalogID string) (*asynq.Task, error) {
	payload, err := json.Marshal(refreshPayload{CatalogID: catalogID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSnapshotRefresh, payload), nil
}

// RefreshHandler processes snapshot refresh tasks. When a Locker is set,
// rebuilds for the same catalog are serialised across workers.
type RefreshHandler struct {
	Svc    *Service
	Locker *lock.Locker
}

// ProcessTask rebuilds the snapshot named in the task payload.
func (h RefreshHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload refreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode refresh payload: %w", err)
	}
	if payload.CatalogID == "" {
		return nil
	}
	rebuild := func(ctx context.Context) error {
		if _, err := h.Svc.Rebuild(ctx, payload.CatalogID); err != nil {
			return fmt.Errorf("rebuild snapshot for %s: %w", payload.CatalogID, err)
		}
		return nil
	}
	if h.Locker != nil {
		return h.Locker.WithLock(ctx, "lock:snapshot:"+payload.CatalogID, 30*time.Second, rebuild)
	}
	return rebuild(ctx)
}

// CatalogLister enumerates catalog ids for the fan-out handler.
type CatalogLister interface {
	ListCatalogIDs(ctx context.Context) ([]string, error)
}

// FanoutHandler expands a refresh-all task into one refresh task per catalog.
type FanoutHandler struct {
	Lister CatalogLister
	Client *asynq.Client
}

// ProcessTask enqueues a per-catalog refresh for every known catalog.
func (h FanoutHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	ids, err := h.Lister.ListCatalogIDs(ctx)
	if err != nil {
		return fmt.Errorf("list catalogs: %w", err)
	}
	return EnqueueRefreshAll(ctx, h.Client, ids)
}

// EnqueueRefreshAll schedules a refresh task for every known catalog. It is
// called from the worker's periodic tick and after catalog mutations.
func EnqueueRefreshAll(ctx context.Context, client *asynq.Client, catalogIDs []string) error {
	for _, id := range catalogIDs {
		task, err := NewSnapshotRefreshTask(id)
		if err != nil {
			return err
		}
		if _, err := client.EnqueueContext(ctx, task, asynq.Queue("maintenance")); err != nil {
			return fmt.Errorf("enqueue snapshot refresh for %s: %w", id, err)
		}
	}
	return nil
}
