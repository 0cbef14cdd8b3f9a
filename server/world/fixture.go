package world

import (
	"bytes"
	"fmt"

	"github.com/df-mc/goleveldb/leveldb"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// FixtureStore is a keyed byte-store of pre-generated region content, used
// in place of a live Generator when a test needs deterministic, disk-backed
// region content to replay (§4.4: Generate must be pure, but a fixture
// store lets a test fix the output ahead of time rather than relying on a
// particular Generator implementation's determinism). This is never the
// live residency path — persistent world storage is a Non-goal (§1).
type FixtureStore struct {
	db *leveldb.DB
}

// OpenFixtureStore opens (creating if absent) a FixtureStore at path.
func OpenFixtureStore(path string) (*FixtureStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open fixture store: %w", err)
	}
	return &FixtureStore{db: db}, nil
}

// Put records the block and biome content for pos.
func (f *FixtureStore) Put(pos RegionPos, blocks *PalettedContainer[BlockStateId], biomes *PalettedContainer[BiomeId]) error {
	var buf bytes.Buffer
	w := protocol.NewWriter(&buf, 0)
	WriteBlockPalette(w, blocks)
	WriteBiomePalette(w, biomes)
	return f.db.Put(fixtureKey(pos), buf.Bytes(), nil)
}

// Get returns the recorded content for pos, if any.
func (f *FixtureStore) Get(pos RegionPos) (blocks *PalettedContainer[BlockStateId], biomes *PalettedContainer[BiomeId], ok bool) {
	data, err := f.db.Get(fixtureKey(pos), nil)
	if err != nil {
		return nil, nil, false
	}
	r := protocol.NewReader(bytes.NewReader(data), 0, false)
	return ReadBlockPalette(r), ReadBiomePalette(r), true
}

// PutLegacy builds a region's block container from a legacy fill state and a
// sparse set of per-cell overrides, upgrading each through UpgradeBlockState
// and resolving it to a BlockStateId before storing, then records it the
// same way Put does. This is the path a fixture recorded against an older
// block-state schema takes before it ever reaches a PalettedContainer.
func (f *FixtureStore) PutLegacy(pos RegionPos, fill LegacyBlockState, overrides map[[3]int]LegacyBlockState, biomes *PalettedContainer[BiomeId]) error {
	blocks := NewPalettedContainer[BlockStateId](16, UpgradeToBlockStateId(fill))
	for cell, legacy := range overrides {
		blocks.Set(cell[0], cell[1], cell[2], UpgradeToBlockStateId(legacy))
	}
	return f.Put(pos, blocks, biomes)
}

// Close releases the underlying database handle.
func (f *FixtureStore) Close() error { return f.db.Close() }

func fixtureKey(pos RegionPos) []byte {
	return []byte(fmt.Sprintf("%d:%d:%d", pos.X, pos.Y, pos.Z))
}

// FixtureGenerator implements Generator by replaying recorded content from a
// FixtureStore, falling back to empty (all-air) regions for positions it
// has no fixture for.
type FixtureGenerator struct {
	Store *FixtureStore
}

// Generate implements Generator.
func (g FixtureGenerator) Generate(pos RegionPos, _ int64, _ GenerateParams) (*PalettedContainer[BlockStateId], *PalettedContainer[BiomeId]) {
	if blocks, biomes, ok := g.Store.Get(pos); ok {
		return blocks, biomes
	}
	return NewPalettedContainer[BlockStateId](16, 0), NewPalettedContainer[BiomeId](4, 0)
}
