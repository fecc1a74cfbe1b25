package playout

import (
	"testing"

	"github.com/ventosilenzioso/cubesync/internal/cube"
	"github.com/ventosilenzioso/cubesync/internal/vecmath"
)

func snap(x float32) cube.Snapshot {
	return cube.Snapshot{{
		Interacting: true,
		Position:    vecmath.Vector3{X: x},
		Orientation: vecmath.Identity,
	}}
}

func TestGetViewUpdateStallsWithNoData(t *testing.T) {
	b := New(256, 0.1, Linear)
	if _, ok := b.GetViewUpdate(1.0); ok {
		t.Fatalf("expected stall with empty buffer")
	}
}

func TestGetViewUpdateStallsBeforeDelayElapses(t *testing.T) {
	b := New(256, 0.1, Linear)
	b.AddSnapshot(1.0, 0, snap(0))
	if _, ok := b.GetViewUpdate(1.0); ok {
		t.Fatalf("expected stall before any later snapshot has arrived")
	}
}

func TestGetViewUpdateLinearInterpolation(t *testing.T) {
	b := New(256, 0.1, Linear)
	b.AddSnapshot(1.0, 0, snap(0))
	b.AddSnapshot(1.1, 1, snap(10))

	updates, ok := b.GetViewUpdate(1.15) // t_play = 1.05, bracket [1.0,1.1], u=0.5
	if !ok {
		t.Fatalf("expected an interpolated update")
	}
	if len(updates) != 1 {
		t.Fatalf("expected 1 cube update, got %d", len(updates))
	}
	if got := updates[0].Position.X; got < 4.9 || got > 5.1 {
		t.Fatalf("expected interpolated X near 5, got %v", got)
	}
}

func TestGetViewUpdateHermiteFallsBackToLinearWithoutNeighbors(t *testing.T) {
	b := New(256, 0.1, Hermite)
	b.AddSnapshot(1.0, 0, snap(0))
	b.AddSnapshot(1.1, 1, snap(10))

	updates, ok := b.GetViewUpdate(1.15)
	if !ok {
		t.Fatalf("expected an interpolated update despite missing hermite neighbors")
	}
	if got := updates[0].Position.X; got < 4.9 || got > 5.1 {
		t.Fatalf("expected linear fallback result near 5, got %v", got)
	}
}

func TestGetViewUpdateHermiteUsesNeighborsWhenPresent(t *testing.T) {
	b := New(256, 0.1, Hermite)
	b.AddSnapshot(0.9, 65535, snap(-10))
	b.AddSnapshot(1.0, 0, snap(0))
	b.AddSnapshot(1.1, 1, snap(10))
	b.AddSnapshot(1.2, 2, snap(20))

	updates, ok := b.GetViewUpdate(1.15)
	if !ok {
		t.Fatalf("expected an interpolated update")
	}
	if len(updates) != 1 {
		t.Fatalf("expected 1 cube update, got %d", len(updates))
	}
}
