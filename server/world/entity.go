package world

import (
	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// EntityID identifies an entity (typically a connected player, but the
// membership bookkeeping below is agnostic to that). Entities are out of
// scope beyond position/dimension bookkeeping.
type EntityID = uuid.UUID

// entityState is the position/dimension bookkeeping the core keeps per
// entity: the current and previous tick's snapshot, mirroring the
// OldTransform/OldDimension component pair the source keeps.
type entityState struct {
	id EntityID

	pos, oldPos       mgl64.Vec3
	dim, oldDim       int
	hasOld            bool
}

// EntityIndex maintains which entities inhabit which region, keyed on
// EntityID via an xxhash-backed map for the reverse entity->region lookup
// that the packed RegionPos hash doesn't serve.
type EntityIndex struct {
	entities map[uint64]*entityState
	byID     map[EntityID]uint64
}

// NewEntityIndex returns an empty EntityIndex.
func NewEntityIndex() *EntityIndex {
	return &EntityIndex{
		entities: make(map[uint64]*entityState),
		byID:     make(map[EntityID]uint64),
	}
}

func entityKey(id EntityID) uint64 {
	return xxhash.Sum64(id[:])
}

// Track starts tracking id at the given position and dimension. It is a
// no-op if id is already tracked.
func (idx *EntityIndex) Track(id EntityID, pos mgl64.Vec3, dim int) {
	k := entityKey(id)
	if _, ok := idx.entities[k]; ok {
		return
	}
	idx.entities[k] = &entityState{id: id, pos: pos, dim: dim}
	idx.byID[id] = k
}

// Untrack stops tracking id.
func (idx *EntityIndex) Untrack(id EntityID) {
	k, ok := idx.byID[id]
	if !ok {
		return
	}
	delete(idx.entities, k)
	delete(idx.byID, id)
}

// Move records a new position/dimension for id, ready for Reconcile to apply
// at POST-tick.
func (idx *EntityIndex) Move(id EntityID, pos mgl64.Vec3, dim int) {
	k, ok := idx.byID[id]
	if !ok {
		return
	}
	st := idx.entities[k]
	st.pos, st.dim = pos, dim
}

// position returns id's current position and dimension, as last set by
// Track or Move.
func (idx *EntityIndex) position(id EntityID) (pos mgl64.Vec3, dim int, ok bool) {
	k, tracked := idx.byID[id]
	if !tracked {
		return mgl64.Vec3{}, 0, false
	}
	st := idx.entities[k]
	return st.pos, st.dim, true
}

// regionOf returns the RegionPos enclosing a floating-point world position.
func regionOf(pos mgl64.Vec3) RegionPos {
	return BlockPos{int32(floorInt(pos.X())), int32(floorInt(pos.Y())), int32(floorInt(pos.Z()))}.Region()
}

func floorInt(v float64) int64 {
	i := int64(v)
	if v < 0 && float64(i) != v {
		i--
	}
	return i
}

// Reconcile updates region membership for every entity whose position or
// dimension changed since the last Reconcile, then snapshots the new
// position/dimension as "old" for the next tick (C9, §4.8). Missing regions
// are silently tolerated: an entity is simply not tracked by any region
// until the region housing it becomes resident.
func (idx *EntityIndex) Reconcile(index *RegionIndex) {
	for _, st := range idx.entities {
		if !st.hasOld {
			st.oldPos, st.oldDim, st.hasOld = st.pos, st.dim, true
			if r, ok := index.Get(regionOf(st.pos)); ok {
				r.Entities[st.id] = struct{}{}
			}
			continue
		}
		oldRegion, newRegion := regionOf(st.oldPos), regionOf(st.pos)
		if oldRegion == newRegion && st.oldDim == st.dim {
			continue
		}
		if st.oldDim == st.dim {
			if r, ok := index.Get(oldRegion); ok {
				delete(r.Entities, st.id)
			}
		}
		if r, ok := index.Get(newRegion); ok {
			r.Entities[st.id] = struct{}{}
		}
		st.oldPos, st.oldDim = st.pos, st.dim
	}
}
