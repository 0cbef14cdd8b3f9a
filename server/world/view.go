package world

// TrackingView is a viewer's desired axis-aligned box of regions.
type TrackingView struct {
	Center         RegionPos
	Horiz, Vert    uint8
}

func (v TrackingView) minX() int32 { return v.Center.X - int32(v.Horiz) }
func (v TrackingView) maxX() int32 { return v.Center.X + int32(v.Horiz) }
func (v TrackingView) minY() int32 { return v.Center.Y - int32(v.Vert) }
func (v TrackingView) maxY() int32 { return v.Center.Y + int32(v.Vert) }
func (v TrackingView) minZ() int32 { return v.Center.Z - int32(v.Horiz) }
func (v TrackingView) maxZ() int32 { return v.Center.Z + int32(v.Horiz) }

// Contains reports whether pos falls within v's AABB.
func (v TrackingView) Contains(pos RegionPos) bool {
	return abs32(pos.X-v.Center.X) <= int32(v.Horiz) &&
		abs32(pos.Z-v.Center.Z) <= int32(v.Horiz) &&
		abs32(pos.Y-v.Center.Y) <= int32(v.Vert)
}

// Intersects reports whether v and other's AABBs overlap on all three axes.
func (v TrackingView) Intersects(other TrackingView) bool {
	return v.minX() <= other.maxX() && v.maxX() >= other.minX() &&
		v.minZ() <= other.maxZ() && v.maxZ() >= other.minZ() &&
		v.minY() <= other.maxY() && v.maxY() >= other.minY()
}

// Size returns the number of regions contained in v.
func (v TrackingView) Size() int {
	return (int(v.Horiz)*2 + 1) * (int(v.Horiz)*2 + 1) * (int(v.Vert)*2 + 1)
}

// ForEach calls f once for every RegionPos contained in v.
func (v TrackingView) ForEach(f func(RegionPos)) {
	for y := v.minY(); y <= v.maxY(); y++ {
		for x := v.minX(); x <= v.maxX(); x++ {
			for z := v.minZ(); z <= v.maxZ(); z++ {
				f(RegionPos{x, y, z})
			}
		}
	}
}

// ViewAction is the kind of change DiffViews emits for a region position.
type ViewAction int

const (
	// ActionLoad means the position entered the new view and must be
	// loaded.
	ActionLoad ViewAction = iota
	// ActionUnload means the position left the old view and must be
	// unloaded.
	ActionUnload
)

// DiffViews computes the {load, unload} delta between old and new: equal
// views produce nothing; views whose AABBs don't intersect produce a full
// unload-old + load-new; an overlapping pair iterates the union AABB and
// emits exactly the positions whose membership changed.
func DiffViews(old, new_ TrackingView, emit func(RegionPos, ViewAction)) {
	if old == new_ {
		return
	}
	if !old.Intersects(new_) {
		old.ForEach(func(pos RegionPos) { emit(pos, ActionUnload) })
		new_.ForEach(func(pos RegionPos) { emit(pos, ActionLoad) })
		return
	}

	minY, maxY := min32(old.minY(), new_.minY()), max32(old.maxY(), new_.maxY())
	minX, maxX := min32(old.minX(), new_.minX()), max32(old.maxX(), new_.maxX())
	minZ, maxZ := min32(old.minZ(), new_.minZ()), max32(old.maxZ(), new_.maxZ())

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			for z := minZ; z <= maxZ; z++ {
				pos := RegionPos{x, y, z}
				oldIn, newIn := old.Contains(pos), new_.Contains(pos)
				if oldIn == newIn {
					continue
				}
				if newIn {
					emit(pos, ActionLoad)
				} else {
					emit(pos, ActionUnload)
				}
			}
		}
	}
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
