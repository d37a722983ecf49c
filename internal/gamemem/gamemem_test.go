package gamemem

import (
	"context"
	"encoding/hex"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sourpuh/WaymarkPresetPlugin/pkg/core"
	"github.com/sourpuh/WaymarkPresetPlugin/pkg/fieldmarker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	function string
	args     []any
}

type recorder struct {
	mu    sync.Mutex
	calls []call
	err   error
}

func (r *recorder) Notify(function string, args ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{function, args})
	return r.err
}

func samplePreset() fieldmarker.FieldMarkerPreset {
	var gp fieldmarker.FieldMarkerPreset
	gp.Markers[0] = fieldmarker.GamePresetPoint{X: 1000, Y: 2000, Z: -3000}
	gp.ActiveMarkers.Set(0, true)
	gp.ContentFinderConditionID = 777
	gp.Timestamp = 1_600_000_000
	return gp
}

func TestCheckSlot(t *testing.T) {
	assert.NoError(t, CheckSlot(1))
	assert.NoError(t, CheckSlot(MaxPresetSlotNum))
	assert.ErrorIs(t, CheckSlot(0), ErrInvalidSlot)
	assert.ErrorIs(t, CheckSlot(MaxPresetSlotNum+1), ErrInvalidSlot)
}

func TestMirrorWriteAndRead(t *testing.T) {
	rec := &recorder{}
	m := NewMirror(rec)
	ctx := context.Background()

	gp := samplePreset()
	require.NoError(t, m.WriteSlot(ctx, 5, gp))

	got, err := m.ReadSlot(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, gp, got)

	empty, err := m.ReadSlot(ctx, 6)
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	raw, _ := gp.MarshalBinary()
	require.Len(t, rec.calls, 1)
	assert.Equal(t, call{NotifyWriteSlot, []any{5, hex.EncodeToString(raw)}}, rec.calls[0])

	assert.ErrorIs(t, m.WriteSlot(ctx, 31, gp), ErrInvalidSlot)
	_, err = m.ReadSlot(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidSlot)
}

func TestMirrorSetSlotData(t *testing.T) {
	rec := &recorder{}
	m := NewMirror(rec)

	raw, err := samplePreset().MarshalBinary()
	require.NoError(t, err)
	require.NoError(t, m.SetSlotData(2, raw))
	assert.Empty(t, rec.calls, "host pushes are not echoed")

	got, err := m.ReadSlot(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, uint16(777), got.ContentFinderConditionID)

	assert.ErrorIs(t, m.SetSlotData(2, raw[:10]), fieldmarker.ErrMalformedSlotData)
	assert.ErrorIs(t, m.SetSlotData(40, raw), ErrInvalidSlot)
}

func TestMirrorPlace(t *testing.T) {
	rec := &recorder{}
	m := NewMirror(rec)
	ctx := context.Background()

	require.NoError(t, m.Place(ctx, samplePreset()))
	ws, err := m.CurrentWaymarks(ctx)
	require.NoError(t, err)
	assert.True(t, ws[core.A].Active)
	assert.Equal(t, float32(-3), ws[core.A].Z)
	assert.False(t, ws[core.B].Active)

	require.Len(t, rec.calls, 1)
	assert.Equal(t, NotifyPlace, rec.calls[0].function)

	rec.err = errors.New("host gone")
	assert.ErrorContains(t, m.Place(ctx, samplePreset()), "host gone")
}

func TestMirrorRejectedWriteLeavesStateUnchanged(t *testing.T) {
	rec := &recorder{}
	m := NewMirror(rec)
	ctx := context.Background()

	first := samplePreset()
	require.NoError(t, m.WriteSlot(ctx, 3, first))
	require.NoError(t, m.Place(ctx, first))

	rec.err = errors.New("no callback")
	second := samplePreset()
	second.ContentFinderConditionID = 888
	second.Markers[0].Z = 5000
	assert.ErrorContains(t, m.WriteSlot(ctx, 3, second), "no callback")
	assert.ErrorContains(t, m.WriteSlot(ctx, 4, second), "no callback")
	assert.ErrorContains(t, m.Place(ctx, second), "no callback")

	got, err := m.ReadSlot(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, first, got)
	got, err = m.ReadSlot(ctx, 4)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())

	ws, err := m.CurrentWaymarks(ctx)
	require.NoError(t, err)
	assert.Equal(t, float32(-3), ws[core.A].Z)
}

func TestMirrorSetCurrentWaymarks(t *testing.T) {
	m := NewMirror(nil)
	var ws [core.WaymarkCount]core.Waymark
	ws[3] = core.Waymark{X: 1, Active: true, ID: core.A}
	m.SetCurrentWaymarks(ws)

	got, err := m.CurrentWaymarks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.D, got[3].ID, "ids follow position")
	assert.True(t, got[3].Active)
}

type blockingStore struct {
	*Mirror
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStore) ReadSlot(ctx context.Context, slot int) (fieldmarker.FieldMarkerPreset, error) {
	close(b.entered)
	<-b.release
	return b.Mirror.ReadSlot(ctx, slot)
}

func TestGuardedTimesOut(t *testing.T) {
	inner := &blockingStore{Mirror: NewMirror(nil), entered: make(chan struct{}), release: make(chan struct{})}
	g := NewGuarded(inner, 20*time.Millisecond)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := g.ReadSlot(ctx, 1)
		done <- err
	}()
	<-inner.entered

	assert.ErrorIs(t, g.WriteSlot(ctx, 1, samplePreset()), ErrStoreBusy)

	close(inner.release)
	require.NoError(t, <-done)
	assert.NoError(t, g.WriteSlot(ctx, 1, samplePreset()), "permit released after each call")
}

func TestGuardedPassThrough(t *testing.T) {
	g := NewGuarded(NewMirror(nil), 0)
	ctx := context.Background()

	require.NoError(t, g.WriteSlot(ctx, 3, samplePreset()))
	got, err := g.ReadSlot(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, samplePreset(), got)

	require.NoError(t, g.Place(ctx, got))
	ws, err := g.CurrentWaymarks(ctx)
	require.NoError(t, err)
	assert.True(t, ws[core.A].Active)
	assert.Equal(t, DefaultLockTimeout, g.timeout)
}
