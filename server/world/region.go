package world

import (
	"github.com/brentp/intintmap"
	"github.com/segmentio/fasthash/fnv1a"
)

// RegionSize is the edge length, in blocks, of one Region cube.
const RegionSize = 16

// RegionBits is the number of bits a block coordinate is shifted by to
// obtain the enclosing region coordinate.
const RegionBits = 4

// BlockPos is an absolute block coordinate in a dimension.
type BlockPos [3]int32

// X returns the x coordinate of the position.
func (p BlockPos) X() int32 { return p[0] }

// Y returns the y coordinate of the position.
func (p BlockPos) Y() int32 { return p[1] }

// Z returns the z coordinate of the position.
func (p BlockPos) Z() int32 { return p[2] }

// Region returns the RegionPos of the region that contains p.
func (p BlockPos) Region() RegionPos {
	return RegionPos{p[0] >> RegionBits, p[1] >> RegionBits, p[2] >> RegionBits}
}

// Local returns the coordinate of p local to its enclosing region, each
// component in [0, RegionSize).
func (p BlockPos) Local() (x, y, z int) {
	const mask = RegionSize - 1
	return int(p[0] & mask), int(p[1] & mask), int(p[2] & mask)
}

// RegionPos identifies a 16x16x16 cube of blocks: the unit of residency.
type RegionPos struct {
	X, Y, Z int32
}

// ColumnPos returns the horizontal projection of pos.
func (pos RegionPos) ColumnPos() ColumnPos {
	return ColumnPos{pos.X, pos.Z}
}

// Hash packs pos into a 64-bit key suitable for a flat integer map: 22 bits
// for X, 20 for Y and 22 for Z, matching the bit budget used throughout the
// lineage this core descends from for chunk-position hashing.
func (pos RegionPos) Hash() int64 {
	const (
		xBits = 22
		yBits = 20
		zBits = 22

		xMask = 1<<xBits - 1
		yMask = 1<<yBits - 1
		zMask = 1<<zBits - 1
	)
	x := int64(pos.X) & xMask
	y := int64(pos.Y) & yMask
	z := int64(pos.Z) & zMask
	return (x << (yBits + zBits)) | (z << yBits) | y
}

// Add returns pos offset by (dx, dy, dz).
func (pos RegionPos) Add(dx, dy, dz int32) RegionPos {
	return RegionPos{pos.X + dx, pos.Y + dy, pos.Z + dz}
}

// LogKey returns a short, stable correlation id for pos suitable for log
// sampling/dedup keys, independent of the Hash used for map lookups.
func (pos RegionPos) LogKey() uint64 {
	return fnv1a.HashUint64(uint64(pos.Hash()))
}

// ColumnPos is the horizontal projection of a RegionPos; the unit of network
// transmission. Columns carry exactly SectionsPerColumn regions stacked
// vertically in client space.
type ColumnPos struct {
	X, Z int32
}

// SectionsPerColumn is the fixed number of vertical sections a client column
// carries, regardless of how much of the server's Y range is actually
// resident.
const SectionsPerColumn = 16

// BlockStateId is an opaque numeric identifier for a block state. Zero
// denotes air.
type BlockStateId = uint16

// BiomeId is an opaque numeric identifier for a biome.
type BiomeId = uint8

// RegionStatus describes where a Region is in its load/unload lifecycle.
type RegionStatus int

const (
	// RegionLoading is the initial status: a region has been created
	// because of ticket demand but no generation task has claimed it.
	RegionLoading RegionStatus = iota
	// RegionGenerating means a generation worker has claimed the region
	// and is producing its contents.
	RegionGenerating
	// RegionLoaded means the region's contents are present and the
	// region may be sent to viewers.
	RegionLoaded
	// RegionUnloading means the region's ticket bucket emptied and the
	// region is scheduled for removal on the next POST stage.
	RegionUnloading
	// RegionUnloaded is the terminal status; the POST stage removes a
	// region from the index in the same pass that moves it here.
	RegionUnloaded
)

// Region is one resident 16x16x16 cube of a dimension.
type Region struct {
	Pos    RegionPos
	Status RegionStatus

	Blocks *PalettedContainer[BlockStateId]
	Biomes *PalettedContainer[BiomeId]

	Entities map[EntityID]struct{}
	Dirty    map[BlockPos]struct{}
}

// NewRegion returns a freshly created Region in RegionLoading status, with
// empty block/biome containers (air / biome zero everywhere).
func NewRegion(pos RegionPos) *Region {
	return &Region{
		Pos:      pos,
		Status:   RegionLoading,
		Blocks:   NewPalettedContainer[BlockStateId](16, 0),
		Biomes:   NewPalettedContainer[BiomeId](4, 0),
		Entities: make(map[EntityID]struct{}),
		Dirty:    make(map[BlockPos]struct{}),
	}
}

// RegionIndex maps RegionPos to *Region within one dimension. Lookup goes
// through an int64-keyed open-addressed map (brentp/intintmap), keyed by
// RegionPos.Hash, that stores the slot index into a dense []*Region rather
// than a pointer directly (intintmap only stores int64 values); removal is
// a swap-remove against that slice, the same index-maintained-slice pattern
// the teacher uses for its activeColumns/entityColumns bookkeeping.
type RegionIndex struct {
	slots   *intintmap.Map
	regions []*Region
}

// NewRegionIndex returns an empty RegionIndex.
func NewRegionIndex() *RegionIndex {
	return &RegionIndex{
		slots:   intintmap.New(64, 0.6),
		regions: make([]*Region, 0, 64),
	}
}

// Insert adds or replaces the region at r.Pos.
func (idx *RegionIndex) Insert(r *Region) {
	h := r.Pos.Hash()
	if slot, ok := idx.slots.Get(h); ok {
		idx.regions[slot] = r
		return
	}
	idx.slots.Put(h, int64(len(idx.regions)))
	idx.regions = append(idx.regions, r)
}

// Remove deletes the region at pos, if any.
func (idx *RegionIndex) Remove(pos RegionPos) {
	h := pos.Hash()
	slot, ok := idx.slots.Get(h)
	if !ok {
		return
	}
	idx.slots.Del(h)

	last := len(idx.regions) - 1
	if int(slot) != last {
		moved := idx.regions[last]
		idx.regions[slot] = moved
		idx.slots.Put(moved.Pos.Hash(), slot)
	}
	idx.regions[last] = nil
	idx.regions = idx.regions[:last]
}

// Get returns the region at pos and whether it is present.
func (idx *RegionIndex) Get(pos RegionPos) (*Region, bool) {
	slot, ok := idx.slots.Get(pos.Hash())
	if !ok {
		return nil, false
	}
	return idx.regions[slot], true
}

// Contains reports whether pos has a resident region.
func (idx *RegionIndex) Contains(pos RegionPos) bool {
	_, ok := idx.slots.Get(pos.Hash())
	return ok
}

// Len returns the number of resident regions.
func (idx *RegionIndex) Len() int {
	return len(idx.regions)
}

// Each calls f for every resident region. f must not mutate the index.
func (idx *RegionIndex) Each(f func(*Region)) {
	for _, r := range idx.regions {
		f(r)
	}
}
