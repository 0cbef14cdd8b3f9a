package world

import (
	"log/slog"
	"testing"
)

// TestDimensionRegionLifecycle is scenario S3: a region spawned purely by an
// Unknown ticket is generated, its 1-tick timeout fires at tick T+1, and the
// region is torn down one tick later at T+2, with no viewer involved to
// receive packets.
func TestDimensionRegionLifecycle(t *testing.T) {
	conf := Config{Log: slog.Default(), Seed: 1}
	d := conf.New()
	defer d.Close()

	pos := RegionPos{3, 3, 3}
	d.tickets.Add(pos, TicketUnknown)

	// Tick T: PRE spawns the region and submits it for generation; POST
	// ticks the timeout down but the ticket survives its first tick.
	d.pre()
	r, ok := d.regions.Get(pos)
	if !ok {
		t.Fatalf("region should be spawned once its ticket bucket is non-empty")
	}
	if r.Status != RegionGenerating {
		t.Fatalf("Status after Submit = %v, want RegionGenerating", r.Status)
	}
	d.post()
	if !d.regions.Contains(pos) {
		t.Fatalf("region should still be resident after tick T")
	}

	// Tick T+1: the ticket's timeout expires during POST, moving the
	// region to Unloading.
	d.pre()
	d.post()
	r, ok = d.regions.Get(pos)
	if !ok {
		t.Fatalf("region should still be resident (Unloading) at tick T+1")
	}
	if r.Status != RegionUnloading {
		t.Fatalf("Status at tick T+1 = %v, want RegionUnloading", r.Status)
	}

	// Tick T+2: the region has had no ticket for a full extra tick and is
	// removed from the index.
	d.pre()
	d.post()
	if d.regions.Contains(pos) {
		t.Fatalf("region should be removed from the index at tick T+2")
	}
}

func TestDimensionViewerLifecycle(t *testing.T) {
	conf := Config{Log: slog.Default(), Seed: 1}
	d := conf.New()
	defer d.Close()

	id := EntityID{1}
	viewer := &fakeViewer{}
	tracker := d.AddViewer(id, viewer, [3]float64{0, 64, 0}, 0)
	if tracker == nil {
		t.Fatalf("AddViewer should return a tracker")
	}
	if _, ok := d.trackers[id]; !ok {
		t.Fatalf("dimension should hold onto the new tracker")
	}

	d.RemoveViewer(id)
	if _, ok := d.trackers[id]; ok {
		t.Fatalf("tracker should be gone after RemoveViewer")
	}
	if len(d.tickets.Demand()) != 0 {
		t.Fatalf("disconnecting a viewer should release every ticket it held")
	}
}

// TestEditDispatcherMergingThroughQueueEdit is a lighter variant of S4 run
// through the public Dimension.QueueEdit/Tick path rather than the
// dispatcher directly.
func TestEditDispatcherMergingThroughQueueEdit(t *testing.T) {
	conf := Config{Log: slog.Default(), Seed: 1}
	d := conf.New()
	defer d.Close()

	r := NewRegion(RegionPos{0, 0, 0})
	r.Status = RegionLoaded
	d.regions.Insert(r)

	id := EntityID{2}
	viewer := &fakeViewer{}
	tracker := visibleTracker(viewer, RegionPos{0, 0, 0})
	d.trackers[id] = tracker

	d.QueueEdit(BlockSetRequest{Pos: BlockPos{1, 1, 1}, NewState: 5, Flags: FlagClients})
	d.QueueEdit(BlockSetRequest{Pos: BlockPos{2, 1, 1}, NewState: 6, Flags: FlagClients})
	d.update()

	if viewer.sectionUpdates != 1 {
		t.Fatalf("sectionUpdates = %d, want 1", viewer.sectionUpdates)
	}
}
