package world

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

func TestEntityReconcileFirstTickSnapshot(t *testing.T) {
	entities := NewEntityIndex()
	regions := NewRegionIndex()

	id := uuid.New()
	pos := mgl64.Vec3{8, 8, 8}
	entities.Track(id, pos, 0)
	r := NewRegion(regionOf(pos))
	regions.Insert(r)

	entities.Reconcile(regions)
	if _, ok := r.Entities[id]; !ok {
		t.Fatalf("entity should be recorded in its starting region on the first Reconcile")
	}
}

func TestEntityReconcileMovesBetweenRegions(t *testing.T) {
	entities := NewEntityIndex()
	regions := NewRegionIndex()

	id := uuid.New()
	start := mgl64.Vec3{0, 0, 0}
	entities.Track(id, start, 0)
	oldRegion := NewRegion(regionOf(start))
	regions.Insert(oldRegion)
	entities.Reconcile(regions)

	moved := mgl64.Vec3{100, 0, 0}
	newRegion := NewRegion(regionOf(moved))
	regions.Insert(newRegion)
	entities.Move(id, moved, 0)
	entities.Reconcile(regions)

	if _, ok := oldRegion.Entities[id]; ok {
		t.Fatalf("entity should be removed from its old region after moving")
	}
	if _, ok := newRegion.Entities[id]; !ok {
		t.Fatalf("entity should be added to its new region after moving")
	}
}

func TestEntityReconcileToleratesMissingRegion(t *testing.T) {
	entities := NewEntityIndex()
	regions := NewRegionIndex()

	id := uuid.New()
	pos := mgl64.Vec3{0, 0, 0}
	entities.Track(id, pos, 0)

	// No region resident at pos: Reconcile must not panic.
	entities.Reconcile(regions)

	entities.Move(id, mgl64.Vec3{50, 0, 0}, 0)
	entities.Reconcile(regions)
}

func TestEntityUntrack(t *testing.T) {
	entities := NewEntityIndex()
	id := uuid.New()
	entities.Track(id, mgl64.Vec3{0, 0, 0}, 0)
	entities.Untrack(id)
	if _, ok := entities.byID[id]; ok {
		t.Fatalf("entity should no longer be tracked after Untrack")
	}
}
