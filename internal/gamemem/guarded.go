package gamemem

import (
	"context"
	"fmt"
	"time"

	"github.com/sourpuh/WaymarkPresetPlugin/pkg/core"
	"github.com/sourpuh/WaymarkPresetPlugin/pkg/fieldmarker"
	"golang.org/x/sync/semaphore"
)

// DefaultLockTimeout bounds how long a caller waits for the store.
const DefaultLockTimeout = 250 * time.Millisecond

// Guarded serialises access to an inner Store. Each call takes the single
// permit for its own duration only.
type Guarded struct {
	inner   Store
	sem     *semaphore.Weighted
	timeout time.Duration
}

func NewGuarded(inner Store, timeout time.Duration) *Guarded {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	return &Guarded{
		inner:   inner,
		sem:     semaphore.NewWeighted(1),
		timeout: timeout,
	}
}

func (g *Guarded) acquire(ctx context.Context) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreBusy, err)
	}
	return func() { g.sem.Release(1) }, nil
}

func (g *Guarded) ReadSlot(ctx context.Context, slot int) (fieldmarker.FieldMarkerPreset, error) {
	release, err := g.acquire(ctx)
	if err != nil {
		return fieldmarker.FieldMarkerPreset{}, err
	}
	defer release()
	return g.inner.ReadSlot(ctx, slot)
}

func (g *Guarded) WriteSlot(ctx context.Context, slot int, p fieldmarker.FieldMarkerPreset) error {
	release, err := g.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return g.inner.WriteSlot(ctx, slot, p)
}

func (g *Guarded) Place(ctx context.Context, p fieldmarker.FieldMarkerPreset) error {
	release, err := g.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return g.inner.Place(ctx, p)
}

func (g *Guarded) CurrentWaymarks(ctx context.Context) ([core.WaymarkCount]core.Waymark, error) {
	release, err := g.acquire(ctx)
	if err != nil {
		return [core.WaymarkCount]core.Waymark{}, err
	}
	defer release()
	return g.inner.CurrentWaymarks(ctx)
}
