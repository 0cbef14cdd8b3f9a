package world

// BlockUpdateFlags is a bitset controlling how a BlockSetRequest propagates.
type BlockUpdateFlags uint8

const (
	// FlagNeighbors requests that neighbouring blocks be notified of the
	// change (meaning is opaque to this core — forwarded, never acted on).
	FlagNeighbors BlockUpdateFlags = 1 << iota
	// FlagClients requests the change be broadcast to viewers.
	FlagClients
	// FlagInvisible suppresses visual/particle side effects (opaque to
	// this core).
	FlagInvisible
	// FlagImmediate requests out-of-band, non-batched propagation (opaque
	// to this core; batching policy is unaffected by it at this layer).
	FlagImmediate
)

// BlockSetRequest is a single requested block change.
type BlockSetRequest struct {
	Dimension     int
	Pos           BlockPos
	NewState      BlockStateId
	Flags         BlockUpdateFlags
	RecursionLeft int16
}

// EditDispatcher applies queued BlockSetRequests and broadcasts the minimal
// network update (a single BlockUpdate or a batched SectionBlocksUpdate) to
// exactly the viewers whose tracking window contains the affected column
// (C8, §4.7).
type EditDispatcher struct {
	dirtyRegions map[RegionPos]struct{}
}

// NewEditDispatcher returns an empty EditDispatcher.
func NewEditDispatcher() *EditDispatcher {
	return &EditDispatcher{dirtyRegions: make(map[RegionPos]struct{})}
}

// Apply processes requests in arrival order against index, recording which
// regions accumulated new dirty positions this tick.
func (d *EditDispatcher) Apply(index *RegionIndex, requests []BlockSetRequest) {
	for _, req := range requests {
		regionPos := req.Pos.Region()
		r, ok := index.Get(regionPos)
		if !ok {
			continue
		}
		x, y, z := req.Pos.Local()
		old := r.Blocks.Set(x, y, z, req.NewState)
		if old == req.NewState {
			continue
		}
		if req.Flags&FlagClients != 0 {
			if len(r.Dirty) == 0 {
				d.dirtyRegions[regionPos] = struct{}{}
			}
			r.Dirty[req.Pos] = struct{}{}
		}
	}
}

// Broadcast emits the minimal packet (BlockUpdate or SectionBlocksUpdate)
// for every region whose dirty set changed this tick, to every viewer whose
// last tracking view contains the affected column at the viewer's own
// center-y — the edit's own y is never consulted (§4.7, §9 Open Question
// decision; §6 broadcast predicate).
func (d *EditDispatcher) Broadcast(index *RegionIndex, trackers []*ViewerTracker) {
	for regionPos := range d.dirtyRegions {
		r, ok := index.Get(regionPos)
		if !ok || len(r.Dirty) == 0 {
			continue
		}

		col := regionPos.ColumnPos()
		for _, t := range trackers {
			if !d.viewerSeesColumn(t, col) {
				continue
			}
			d.send(t, r)
		}
		clear(r.Dirty)
	}
	clear(d.dirtyRegions)
}

// viewerSeesColumn implements the §6 broadcast predicate: the affected
// column matches iff the viewer's last tracking view contains the region at
// (col.X, viewer's own center-y, col.Z).
func (d *EditDispatcher) viewerSeesColumn(t *ViewerTracker, col ColumnPos) bool {
	if t.lastView == nil {
		return false
	}
	affected := RegionPos{col.X, t.lastView.Center.Y, col.Z}
	return t.lastView.Contains(affected)
}

func (d *EditDispatcher) send(t *ViewerTracker, r *Region) {
	if len(r.Dirty) == 1 {
		for pos := range r.Dirty {
			x, y, z := pos.Local()
			clientPos := BlockPos{pos.X(), t.reposition.ToClient(pos.Y()), pos.Z()}
			t.viewer.ViewBlockUpdate(clientPos, r.Blocks.Get(x, y, z))
		}
		return
	}

	entries := make([]SectionBlockEntry, 0, len(r.Dirty))
	for pos := range r.Dirty {
		x, y, z := pos.Local()
		entries = append(entries, SectionBlockEntry{
			OffX: uint8(x), OffY: uint8(y), OffZ: uint8(z),
			State: r.Blocks.Get(x, y, z),
		})
	}
	t.viewer.ViewSectionBlocksUpdate(r.Pos, entries)
}
