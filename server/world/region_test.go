package world

import "testing"

func TestBlockPosRegionAndLocal(t *testing.T) {
	p := BlockPos{20, -3, 17}
	region := p.Region()
	if region != (RegionPos{1, -1, 1}) {
		t.Fatalf("Region() = %v, want {1,-1,1}", region)
	}
	x, y, z := p.Local()
	if x != 4 || y != 13 || z != 1 {
		t.Fatalf("Local() = (%d,%d,%d), want (4,13,1)", x, y, z)
	}
}

func TestRegionIndexSwapRemove(t *testing.T) {
	idx := NewRegionIndex()
	positions := []RegionPos{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}}
	for _, pos := range positions {
		idx.Insert(NewRegion(pos))
	}
	if idx.Len() != len(positions) {
		t.Fatalf("Len() = %d, want %d", idx.Len(), len(positions))
	}

	idx.Remove(positions[1])
	if idx.Len() != 3 {
		t.Fatalf("Len() after remove = %d, want 3", idx.Len())
	}
	if idx.Contains(positions[1]) {
		t.Fatalf("removed position should no longer be contained")
	}
	for _, pos := range []RegionPos{positions[0], positions[2], positions[3]} {
		if !idx.Contains(pos) {
			t.Fatalf("surviving position %v lost after swap-remove", pos)
		}
		r, ok := idx.Get(pos)
		if !ok || r.Pos != pos {
			t.Fatalf("Get(%v) returned wrong region after swap-remove", pos)
		}
	}
}

func TestRegionIndexInsertReplaces(t *testing.T) {
	idx := NewRegionIndex()
	pos := RegionPos{7, 7, 7}
	first := NewRegion(pos)
	idx.Insert(first)
	second := NewRegion(pos)
	second.Status = RegionLoaded
	idx.Insert(second)

	if idx.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after re-inserting the same position", idx.Len())
	}
	got, _ := idx.Get(pos)
	if got != second {
		t.Fatalf("Get(%v) did not return the replacing region", pos)
	}
}
