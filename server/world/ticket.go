package world

import (
	"github.com/brentp/intintmap"
	"golang.org/x/exp/slices"
)

// TicketKind is the type of a Ticket. Kinds form a total order; lower values
// are higher priority. Ordering is by kind alone — a richer (level, kind)
// ordering existed upstream as an abandoned design and must not be
// reintroduced.
type TicketKind uint8

const (
	// TicketPlayerLoading keeps a region resident while a viewer has it
	// queued or sent. No timeout.
	TicketPlayerLoading TicketKind = iota
	// TicketPlayerSimulation keeps a region resident for simulation
	// (entity ticking, redstone, etc). No timeout.
	TicketPlayerSimulation
	// TicketForced is held by a viewer's vertical-window mapping for
	// every server-y section backing one of its client sections. No
	// timeout.
	TicketForced
	// TicketUnknown is a one-shot ticket with a 1-tick timeout, used for
	// admin-triggered or otherwise unclassified loads.
	TicketUnknown
)

// timeout returns the number of ticks the ticket survives after creation,
// or -1 for a ticket with no timeout.
func (k TicketKind) timeout() int64 {
	if k == TicketUnknown {
		return 1
	}
	return -1
}

// Ticket is a typed, possibly-timed reference count on a region.
type Ticket struct {
	Kind      TicketKind
	ticksLeft int64
}

// NewTicket returns a fresh ticket of the given kind.
func NewTicket(kind TicketKind) Ticket {
	return Ticket{Kind: kind, ticksLeft: kind.timeout()}
}

// TicketManager holds, per RegionPos, the multiset of tickets keeping that
// region resident, and drives the spawn/despawn lifecycle transitions.
// Lookup goes through an int64-keyed open-addressed map (brentp/intintmap),
// keyed by RegionPos.Hash, that stores the slot index into dense
// positions/buckets slices rather than a bucket directly (intintmap only
// stores int64 values); removal is a swap-remove against those slices, the
// same pattern region.go's RegionIndex applies to *Region lookup.
type TicketManager struct {
	slots     *intintmap.Map
	positions []RegionPos
	buckets   [][]Ticket
}

// NewTicketManager returns an empty TicketManager.
func NewTicketManager() *TicketManager {
	return &TicketManager{
		slots:     intintmap.New(64, 0.6),
		positions: make([]RegionPos, 0, 64),
		buckets:   make([][]Ticket, 0, 64),
	}
}

// Add pushes a new ticket of kind onto pos's bucket and re-sorts it so the
// strongest (lowest kind value) ticket is first. Reports whether the bucket
// was newly created (i.e. pos now has demand for the first time).
func (m *TicketManager) Add(pos RegionPos, kind TicketKind) (newDemand bool) {
	h := pos.Hash()
	slot, existed := m.slots.Get(h)
	if !existed {
		slot = int64(len(m.positions))
		m.slots.Put(h, slot)
		m.positions = append(m.positions, pos)
		m.buckets = append(m.buckets, nil)
	}

	bucket := append(m.buckets[slot], NewTicket(kind))
	slices.SortStableFunc(bucket, func(a, b Ticket) int { return int(a.Kind) - int(b.Kind) })
	m.buckets[slot] = bucket
	return !existed
}

// Remove deletes the first ticket of kind found in pos's bucket, if any. If
// the bucket becomes empty, its position is removed and becameEmpty is
// true, signalling the region should begin unloading.
func (m *TicketManager) Remove(pos RegionPos, kind TicketKind) (becameEmpty bool) {
	slot, ok := m.slots.Get(pos.Hash())
	if !ok {
		return false
	}
	bucket := m.buckets[slot]
	for i, t := range bucket {
		if t.Kind == kind {
			bucket = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(bucket) == 0 {
		m.removeSlot(pos)
		return true
	}
	m.buckets[slot] = bucket
	return false
}

// removeSlot deletes pos's slot via swap-remove: the last position/bucket
// pair takes its place and the map entry pointing at the old last slot is
// repointed to the freed index.
func (m *TicketManager) removeSlot(pos RegionPos) {
	h := pos.Hash()
	slot, ok := m.slots.Get(h)
	if !ok {
		return
	}
	m.slots.Del(h)

	last := int64(len(m.positions) - 1)
	if slot != last {
		m.positions[slot] = m.positions[last]
		m.buckets[slot] = m.buckets[last]
		m.slots.Put(m.positions[slot].Hash(), slot)
	}
	m.positions = m.positions[:last]
	m.buckets = m.buckets[:last]
}

// Contains reports whether pos currently has any ticket.
func (m *TicketManager) Contains(pos RegionPos) bool {
	_, ok := m.slots.Get(pos.Hash())
	return ok
}

// Demand returns every RegionPos currently holding at least one ticket. The
// returned slice is a snapshot safe to range over while mutating the
// manager.
func (m *TicketManager) Demand() []RegionPos {
	return append([]RegionPos(nil), m.positions...)
}

// TickTimeouts decrements ticksLeft for every timed ticket across all
// buckets, drops expired tickets, and returns the set of positions whose
// bucket became empty as a result (POST-tick ticket expiry).
func (m *TicketManager) TickTimeouts() []RegionPos {
	var emptied []RegionPos
	for i, bucket := range m.buckets {
		kept := bucket[:0]
		for _, t := range bucket {
			if t.ticksLeft < 0 {
				kept = append(kept, t)
				continue
			}
			t.ticksLeft--
			if t.ticksLeft < 0 {
				continue
			}
			kept = append(kept, t)
		}
		m.buckets[i] = kept
		if len(kept) == 0 {
			emptied = append(emptied, m.positions[i])
		}
	}
	for _, pos := range emptied {
		m.removeSlot(pos)
	}
	return emptied
}
