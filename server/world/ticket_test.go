package world

import "testing"

// TestTicketKindOnlyOrdering is scenario S7: tickets added out of priority
// order must settle into kind-ascending order regardless of arrival order.
func TestTicketKindOnlyOrdering(t *testing.T) {
	m := NewTicketManager()
	pos := RegionPos{0, 0, 0}

	m.Add(pos, TicketUnknown)
	m.Add(pos, TicketForced)
	m.Add(pos, TicketPlayerLoading)

	slot, ok := m.slots.Get(pos.Hash())
	if !ok {
		t.Fatalf("pos should have a slot after Add")
	}
	bucket := m.buckets[slot]
	if len(bucket) != 3 {
		t.Fatalf("bucket length = %d, want 3", len(bucket))
	}
	want := []TicketKind{TicketPlayerLoading, TicketForced, TicketUnknown}
	for i, k := range want {
		if bucket[i].Kind != k {
			t.Fatalf("bucket[%d].Kind = %v, want %v", i, bucket[i].Kind, k)
		}
	}
}

func TestTicketAddRemoveConvergence(t *testing.T) {
	m := NewTicketManager()
	pos := RegionPos{1, 2, 3}

	newDemand := m.Add(pos, TicketPlayerLoading)
	if !newDemand {
		t.Fatalf("first Add should report new demand")
	}
	if again := m.Add(pos, TicketForced); again {
		t.Fatalf("second Add on an already-demanded pos should not report new demand")
	}
	if !m.Contains(pos) {
		t.Fatalf("Contains should be true while the bucket is non-empty")
	}

	if empty := m.Remove(pos, TicketForced); empty {
		t.Fatalf("removing one of two tickets must not empty the bucket")
	}
	if empty := m.Remove(pos, TicketPlayerLoading); !empty {
		t.Fatalf("removing the last ticket must report becameEmpty")
	}
	if m.Contains(pos) {
		t.Fatalf("Contains should be false once the bucket is empty")
	}
}

// TestTicketExpiry is scenario S3's ticket half: an Unknown ticket survives
// exactly one tick before tick_timeouts reclaims it.
func TestTicketExpiry(t *testing.T) {
	m := NewTicketManager()
	pos := RegionPos{5, 0, 5}
	m.Add(pos, TicketUnknown)

	if emptied := m.TickTimeouts(); len(emptied) != 0 {
		t.Fatalf("ticket should still be alive after its first tick, got emptied=%v", emptied)
	}
	if !m.Contains(pos) {
		t.Fatalf("ticket should still be resident after its first tick")
	}

	emptied := m.TickTimeouts()
	if len(emptied) != 1 || emptied[0] != pos {
		t.Fatalf("expected pos to be reported emptied on its timeout tick, got %v", emptied)
	}
	if m.Contains(pos) {
		t.Fatalf("bucket should be gone once the Unknown ticket times out")
	}
}

func TestTicketNoTimeoutForOtherKinds(t *testing.T) {
	for _, kind := range []TicketKind{TicketPlayerLoading, TicketPlayerSimulation, TicketForced} {
		m := NewTicketManager()
		pos := RegionPos{0, 0, 0}
		m.Add(pos, kind)
		for i := 0; i < 50; i++ {
			m.TickTimeouts()
		}
		if !m.Contains(pos) {
			t.Fatalf("ticket kind %v must not expire on its own", kind)
		}
	}
}
